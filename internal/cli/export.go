package cli

import (
	"encoding/csv"
	"fmt"
	"net/http"
	"os"
	"sort"
	"strconv"
	"time"

	"blazehammer/internal/runner"
	"blazehammer/internal/stats"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// ExportCSV writes one JMeter-style row per request.
// Schema: timeStamp,elapsed,label,responseCode,responseMessage,success,failureMessage,bytes,URL
func ExportCSV(records []runner.Record, url, filename string) error {
	f, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)

	header := []string{
		"timeStamp", "elapsed", "label", "responseCode", "responseMessage",
		"success", "failureMessage", "bytes", "URL",
	}
	if err := w.Write(header); err != nil {
		return err
	}

	for _, rec := range records {
		code := ""
		if rec.Success {
			code = strconv.Itoa(rec.Status)
		}

		row := []string{
			strconv.FormatInt(rec.Timestamp.UnixMilli(), 10),
			strconv.FormatInt(rec.Elapsed.Milliseconds(), 10),
			"Blaze Hammer Request",
			code,
			http.StatusText(rec.Status),
			strconv.FormatBool(rec.Success),
			rec.Err,
			strconv.FormatInt(rec.Bytes, 10),
			url,
		}

		if err := w.Write(row); err != nil {
			return err
		}
	}

	w.Flush()

	return w.Error()
}

// Report is the JSON form of a finished run.
type Report struct {
	RunID       string              `json:"run_id"`
	URL         string              `json:"url"`
	Method      string              `json:"method"`
	Requests    int                 `json:"requests"`
	Concurrency int                 `json:"concurrency"`
	Success     int                 `json:"success"`
	Failure     int                 `json:"failure"`
	DurationSec float64             `json:"duration_sec"`
	RPS         float64             `json:"rps"`
	AvgMs       float64             `json:"avg_ms"`
	P50Ms       float64             `json:"p50_ms"`
	P90Ms       float64             `json:"p90_ms"`
	P99Ms       float64             `json:"p99_ms"`
	MaxMs       float64             `json:"max_ms"`
	StatusCodes []stats.StatusShare `json:"status_codes"`
	Errors      []string            `json:"errors"`
}

func toMs(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}

func NewReport(runID string, cfg runner.Config, sum stats.Summary) Report {
	return Report{
		RunID:       runID,
		URL:         cfg.URL,
		Method:      cfg.Method,
		Requests:    cfg.Requests,
		Concurrency: cfg.Concurrency,
		Success:     sum.Success,
		Failure:     sum.Failure,
		DurationSec: sum.Duration.Seconds(),
		RPS:         sum.RPS,
		AvgMs:       toMs(sum.Average),
		P50Ms:       toMs(sum.P50),
		P90Ms:       toMs(sum.P90),
		P99Ms:       toMs(sum.P99),
		MaxMs:       toMs(sum.Max),
		StatusCodes: sum.StatusCodes,
		Errors:      sum.Errors,
	}
}

// ExportSummary writes the report as indented JSON.
func ExportSummary(report Report, filename string) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filename, data, 0644)
}

// TimeBucket counts the requests that completed within one wall clock second.
type TimeBucket struct {
	Timestamp int64 `json:"timestamp"`
	Requests  int   `json:"requests"`
	Errors    int   `json:"errors"`
}

// Timeline groups records by completion second, oldest first.
func Timeline(records []runner.Record) []TimeBucket {
	buckets := make(map[int64]*TimeBucket)

	for _, rec := range records {
		ts := rec.Timestamp.Unix()
		b, ok := buckets[ts]
		if !ok {
			b = &TimeBucket{Timestamp: ts}
			buckets[ts] = b
		}

		b.Requests++
		if !rec.Success {
			b.Errors++
		}
	}

	timeline := make([]TimeBucket, 0, len(buckets))
	for _, b := range buckets {
		timeline = append(timeline, *b)
	}

	sort.Slice(timeline, func(i, j int) bool {
		return timeline[i].Timestamp < timeline[j].Timestamp
	})

	return timeline
}

func ExportTimeline(records []runner.Record, filename string) error {
	data, err := json.MarshalIndent(Timeline(records), "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filename, data, 0644)
}

// WriteReports stores <prefix>.csv, <prefix>_summary.json and <prefix>_timeline.json.
func WriteReports(c *Console, prefix string, r *runner.Runner, sum stats.Summary) error {
	if prefix == "" {
		return nil
	}

	c.Print(fmt.Sprintf("\n💾 Generating reports with prefix: %s\n", prefix))

	records := r.Results()

	if err := ExportCSV(records, r.Cfg.URL, prefix+".csv"); err != nil {
		return fmt.Errorf("export csv: %w", err)
	}

	if err := ExportSummary(NewReport(r.ID, r.Cfg, sum), prefix+"_summary.json"); err != nil {
		return fmt.Errorf("export summary: %w", err)
	}

	if err := ExportTimeline(records, prefix+"_timeline.json"); err != nil {
		return fmt.Errorf("export timeline: %w", err)
	}

	c.Print(fmt.Sprintf("✅ Reports saved to %s.csv, %s_summary.json and %s_timeline.json\n", prefix, prefix, prefix))

	return nil
}
