package cli

import (
	"bytes"
	"context"
	"encoding/csv"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"blazehammer/internal/dummy"
	"blazehammer/internal/parsers"
	"blazehammer/internal/runner"
	"blazehammer/internal/stats"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleSummary() stats.Summary {
	s := stats.NewStats()
	s.RecordSuccess(200, 100*time.Millisecond, 10)
	s.RecordSuccess(404, 300*time.Millisecond, 10)
	for _, e := range []string{"e1", "e2", "e3", "e4"} {
		s.RecordFailure(e)
	}

	return s.Summarize(6, 2*time.Second)
}

func TestRenderSummary(t *testing.T) {
	out := RenderSummary(sampleSummary())

	assert.Contains(t, out, "Final Report")
	assert.Contains(t, out, "3.00")
	assert.Contains(t, out, "Average response time:")
	assert.Contains(t, out, "0.200s")
	assert.Contains(t, out, "50.0%")
	assert.Contains(t, out, "Sample Errors:")
	assert.Contains(t, out, " - e3")
	assert.NotContains(t, out, " - e4")
	assert.Less(t, strings.Index(out, "200"), strings.Index(out, "404"))
}

func TestRenderSummary_NoSuccess(t *testing.T) {
	s := stats.NewStats()
	s.RecordFailure("refused")

	out := RenderSummary(s.Summarize(1, time.Second))

	assert.NotContains(t, out, "Average response time:")
	assert.Contains(t, out, "refused")
}

func TestPrinter_Format(t *testing.T) {
	p := NewPrinter(NewConsole(&bytes.Buffer{}), parsers.Default(), runner.PrintFlags{Payload: true, Headers: true, Response: true})

	o := runner.Outcome{
		Success:    true,
		StatusCode: 200,
		Payload:    map[string]any{"id": "abc"},
		Headers:    map[string]string{"X-A": "1"},
		Response:   &runner.Response{Status: 200, Header: http.Header{}, Body: []byte(`{"msg":"welcome"}`)},
	}

	out := p.Format(time.Date(2024, 1, 1, 9, 5, 7, 0, time.UTC), o)

	assert.Contains(t, out, "09:05:07")
	assert.Contains(t, out, "- Not found in `headers parsers`")
	assert.Contains(t, out, `"id": "abc"`)
	assert.Contains(t, out, "- welcome")
	assert.Less(t, strings.Index(out, "Headers"), strings.Index(out, "Payload"))
	assert.Less(t, strings.Index(out, "Payload"), strings.Index(out, "Response"))
}

func TestPrinter_OnlySelected(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(NewConsole(&buf), nil, runner.PrintFlags{Response: true})

	p.Print(time.Now(), runner.Outcome{Success: true, StatusCode: 302, Response: &runner.Response{
		Status: 302, Header: http.Header{"Location": {"/next"}},
	}})

	assert.Contains(t, buf.String(), "- Redirected to: /next")
	assert.NotContains(t, buf.String(), "Payload")
}

func TestRun_WithPrinterAndExport(t *testing.T) {
	srv := httptest.NewServer(dummy.NewMux())
	defer srv.Close()

	var buf bytes.Buffer
	console := NewConsole(&buf)

	cfg := runner.Config{
		URL:         srv.URL + "/echo",
		Requests:    5,
		Concurrency: 2,
		Method:      runner.MethodPost,
		Payload:     map[string]any{"msg": "{choice(hi)}"},
		Print:       runner.PrintFlags{Response: true},
	}

	printer := NewPrinter(console, nil, cfg.Print)

	r, err := runner.NewRunner(cfg, nil, runner.WithOutput(printer.Print))
	require.NoError(t, err)

	sum := Run(context.Background(), console, r)
	require.Equal(t, 5, sum.Success)

	// the echo body has no top level msg
	assert.Equal(t, 5, strings.Count(buf.String(), "Response"))
	assert.Equal(t, 5, strings.Count(buf.String(), "- null"))

	prefix := filepath.Join(t.TempDir(), "run")
	require.NoError(t, WriteReports(console, prefix, r, sum))

	f, err := os.Open(prefix + ".csv")
	require.NoError(t, err)
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 6)
	assert.Equal(t, "timeStamp", rows[0][0])
	assert.Equal(t, "200", rows[1][3])
	assert.Equal(t, "true", rows[1][5])

	data, err := os.ReadFile(prefix + "_summary.json")
	require.NoError(t, err)

	var report Report
	require.NoError(t, json.Unmarshal(data, &report))
	assert.Equal(t, r.ID, report.RunID)
	assert.Equal(t, 5, report.Success)
	require.Len(t, report.StatusCodes, 1)
	assert.Equal(t, 200, report.StatusCodes[0].Code)

	data, err = os.ReadFile(prefix + "_timeline.json")
	require.NoError(t, err)

	var timeline []TimeBucket
	require.NoError(t, json.Unmarshal(data, &timeline))

	total := 0
	for _, b := range timeline {
		total += b.Requests
	}
	assert.Equal(t, 5, total)
}

func TestTimeline(t *testing.T) {
	base := time.Unix(1700000000, 0)
	records := []runner.Record{
		{Timestamp: base.Add(1500 * time.Millisecond), Success: true},
		{Timestamp: base, Success: true},
		{Timestamp: base.Add(200 * time.Millisecond), Err: "boom"},
	}

	timeline := Timeline(records)

	require.Len(t, timeline, 2)
	assert.Equal(t, TimeBucket{Timestamp: base.Unix(), Requests: 2, Errors: 1}, timeline[0])
	assert.Equal(t, TimeBucket{Timestamp: base.Unix() + 1, Requests: 1}, timeline[1])
}

func TestProgressLine(t *testing.T) {
	line := progressLine(runner.StatsSnapshot{Total: 4, Completed: 2, Success: 2})

	assert.Contains(t, line, " 50%")
	assert.Contains(t, line, "2/4")
	assert.Equal(t, "[███---]", progressBar(0.5, 6))
}

func TestConsole_NotATerminal(t *testing.T) {
	var buf bytes.Buffer
	c := NewConsole(&buf)

	c.drawProgress("progress")
	c.Print("block")

	assert.Equal(t, "block", buf.String())
}
