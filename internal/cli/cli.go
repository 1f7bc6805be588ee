package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"blazehammer/internal/runner"
	"blazehammer/internal/stats"
	"blazehammer/internal/tui/styles"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/mattn/go-isatty"
)

// Console serializes everything written to the terminal during a run. The progress
// line is only drawn when the writer is a terminal.
type Console struct {
	mu       sync.Mutex
	w        io.Writer
	tty      bool
	progress bool
}

func NewConsole(w io.Writer) *Console {
	c := &Console{w: w}

	if f, ok := w.(*os.File); ok {
		c.tty = isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}

	return c
}

// Print writes a block, clearing the progress line first.
func (c *Console) Print(s string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.clearProgress()
	fmt.Fprint(c.w, s)
}

func (c *Console) drawProgress(line string) {
	if !c.tty {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	fmt.Fprint(c.w, "\r"+line)
	c.progress = true
}

func (c *Console) clearProgress() {
	if c.progress {
		fmt.Fprint(c.w, "\r\033[K")
		c.progress = false
	}
}

// Run executes r with a progress line and returns the summary once every request
// has finished.
func Run(ctx context.Context, c *Console, r *runner.Runner) stats.Summary {
	done := make(chan stats.Summary, 1)
	go func() {
		done <- r.Run(ctx)
	}()

	for {
		select {
		case snap := <-r.Updates:
			c.drawProgress(progressLine(snap))
		case sum := <-done:
			c.mu.Lock()
			c.clearProgress()
			c.mu.Unlock()

			return sum
		}
	}
}

func progressLine(s runner.StatsSnapshot) string {
	pct := 1.0
	if s.Total > 0 {
		pct = float64(s.Completed) / float64(s.Total)
	}

	return fmt.Sprintf("%s %3.0f%% | %d/%d | %s | Inf: %3d | OK: %d | Err: %d",
		progressBar(pct, 20), pct*100,
		s.Completed, s.Total,
		s.Elapsed.Round(time.Second),
		s.Inflight,
		s.Success,
		s.Failure,
	)
}

func progressBar(pct float64, width int) string {
	filled := int(pct * float64(width))
	if filled > width {
		filled = width
	}
	if filled < 0 {
		filled = 0
	}
	return "[" + strings.Repeat("█", filled) + strings.Repeat("-", width-filled) + "]"
}

// PrintHeader describes the run about to start.
func PrintHeader(w io.Writer, cfg runner.Config, runID string, start time.Time) {
	fmt.Fprintf(w, "\n⚡ STARTING BLAZE HAMMER\n")
	fmt.Fprintf(w, "======================================================================\n")
	fmt.Fprintf(w, "Target URL  : %s\n", cfg.URL)
	fmt.Fprintf(w, "Method      : %s\n", cfg.Method)
	fmt.Fprintf(w, "Requests    : %d\n", cfg.Requests)
	fmt.Fprintf(w, "Concurrency : %d\n", cfg.Concurrency)
	if cfg.Delay > 0 {
		fmt.Fprintf(w, "Delay       : %s\n", cfg.Delay)
	}
	fmt.Fprintf(w, "Timeout     : %s\n", cfg.Timeout)
	fmt.Fprintf(w, "Run ID      : %s\n", runID)
	fmt.Fprintf(w, "======================================================================\n")
	fmt.Fprintf(w, "%s %s\n\n", styles.Subtle.Render("Time:"), start.Format("2006-01-02 15:04:05"))
}

// RenderSummary is the final report: totals, latencies, the status code
// distribution and a sample of errors.
func RenderSummary(sum stats.Summary) string {
	var b strings.Builder

	line := func(label, value string) {
		b.WriteString(styles.Label.Render(label) + " " + value + "\n")
	}

	b.WriteString("\n" + styles.Title.Render("Final Report") + "\n\n")

	line("Duration:", fmt.Sprintf("%.2fs", sum.Duration.Seconds()))
	line("Requests per second:", fmt.Sprintf("%.2f", sum.RPS))
	b.WriteString(styles.Success.Render("Successful:") + fmt.Sprintf(" %d\n", sum.Success))
	b.WriteString(styles.Error.Render("Failed:") + fmt.Sprintf(" %d\n", sum.Failure))

	if sum.Success > 0 {
		line("Average response time:", fmt.Sprintf("%.3fs", sum.Average.Seconds()))
		line("Latency:", fmt.Sprintf("P50 %s | P90 %s | P99 %s | Max %s",
			ms(sum.P50), ms(sum.P90), ms(sum.P99), ms(sum.Max)))
	}

	b.WriteString("\n" + styles.Accent.Render("Status Code Distribution:") + "\n")

	rows := make([][]string, 0, len(sum.StatusCodes))
	for _, sc := range sum.StatusCodes {
		rows = append(rows, []string{
			fmt.Sprint(sc.Code),
			fmt.Sprint(sc.Count),
			fmt.Sprintf("%.1f%%", sc.Percent),
		})
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(styles.ColorBorder)).
		Headers("Code", "Count", "Percentage").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return lipgloss.NewStyle().Bold(true).Padding(0, 1)
			}
			return lipgloss.NewStyle().Padding(0, 1)
		})

	b.WriteString(t.String() + "\n")

	if errs := sum.SampleErrors(3); len(errs) > 0 {
		b.WriteString("\n" + styles.Error.Bold(true).Render("Sample Errors:") + "\n")
		for _, e := range errs {
			b.WriteString(" - " + e + "\n")
		}
	}

	return b.String()
}

func ms(d time.Duration) string {
	return fmt.Sprintf("%.2fms", float64(d)/float64(time.Millisecond))
}
