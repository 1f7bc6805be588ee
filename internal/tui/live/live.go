// Package live is the full screen progress view of a running load test.
package live

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"blazehammer/internal/banner"
	"blazehammer/internal/runner"
	"blazehammer/internal/stats"
	"blazehammer/internal/tui/components"
	"blazehammer/internal/tui/styles"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type doneMsg struct{}

type Model struct {
	Stats    runner.StatsSnapshot
	Progress progress.Model

	RpsLine     components.Sparkline
	LatencyLine components.Sparkline

	LastUpdate    time.Time
	LastCompleted int64

	Width  int
	Height int

	// Stopping is set once the user asked to abort.
	Stopping bool
	Finished bool

	updates runner.StatsUpdateChan
	done    <-chan struct{}
	cancel  context.CancelFunc
}

func NewModel(updates runner.StatsUpdateChan, done <-chan struct{}, cancel context.CancelFunc) Model {
	return Model{
		Progress:    progress.New(progress.WithDefaultGradient()),
		RpsLine:     components.NewSparkline(40, "RPS", "req/s", styles.Active),
		LatencyLine: components.NewSparkline(40, "Mean latency", "ms", styles.Warn),
		LastUpdate:  time.Now(),
		updates:     updates,
		done:        done,
		cancel:      cancel,
	}
}

func waitForUpdate(ch runner.StatsUpdateChan) tea.Cmd {
	return func() tea.Msg {
		return <-ch
	}
}

func waitForDone(done <-chan struct{}) tea.Cmd {
	return func() tea.Msg {
		<-done
		return doneMsg{}
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(waitForUpdate(m.updates), waitForDone(m.done))
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case runner.StatsSnapshot:
		now := time.Now()
		dt := now.Sub(m.LastUpdate).Seconds()
		if dt < 0.01 {
			dt = 0.01
		}

		m.RpsLine.Add(float64(msg.Completed-m.LastCompleted) / dt)
		m.LatencyLine.Add(msg.MeanMs)

		m.Stats = msg
		m.LastCompleted = msg.Completed
		m.LastUpdate = now

		pct := 1.0
		if msg.Total > 0 {
			pct = float64(msg.Completed) / float64(msg.Total)
		}

		return m, tea.Batch(m.Progress.SetPercent(pct), waitForUpdate(m.updates))

	case doneMsg:
		m.Finished = true
		return m, tea.Quit

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			if !m.Stopping && m.cancel != nil {
				m.Stopping = true
				m.cancel()
			}
		}

		return m, nil

	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height
		m.Progress.Width = msg.Width - 4

		half := (msg.Width / 2) - 6
		if half < 10 {
			half = 10
		}
		m.RpsLine.Width = half
		m.LatencyLine.Width = half
		return m, nil

	case progress.FrameMsg:
		prog, cmd := m.Progress.Update(msg)
		m.Progress = prog.(progress.Model)
		return m, cmd
	}

	return m, nil
}

func (m Model) View() string {
	s := strings.Builder{}

	s.WriteString(banner.GetString())
	s.WriteString("\n")

	done := m.Stats.Success + m.Stats.Failure
	errRate := 0.0
	if done > 0 {
		errRate = float64(m.Stats.Failure) / float64(done) * 100
	}

	var errColor lipgloss.Style
	if errRate > 5.0 {
		errColor = styles.Error
	} else if errRate > 1.0 {
		errColor = styles.Warn
	} else {
		errColor = styles.Active
	}

	col1 := fmt.Sprintf("DONE: %d/%d\nINF: %d (peak %d)",
		m.Stats.Completed, m.Stats.Total, m.Stats.Inflight, m.Stats.PeakInflight)
	col2 := fmt.Sprintf("ERR: %.2f%%\nFAIL: %d", errRate, m.Stats.Failure)
	col3 := fmt.Sprintf("OK: %d\nKB: %d", m.Stats.Success, m.Stats.Bytes/1024)

	s.WriteString(lipgloss.JoinHorizontal(lipgloss.Top,
		styles.Box.Render(col1),
		styles.Box.Render(errColor.Render(col2)),
		styles.Box.Render(styles.Value.Render(col3)),
	))
	s.WriteString("\n\n")

	s.WriteString(lipgloss.JoinHorizontal(lipgloss.Top,
		styles.Box.Render(m.RpsLine.View()),
		styles.Box.Render(m.LatencyLine.View()),
	))
	s.WriteString("\n\n")

	s.WriteString(styles.Subtle.Render(fmt.Sprintf(
		"Elapsed: %s  |  Mean: %.2f ms  |  P99: %.2f ms",
		m.Stats.Elapsed.Round(100*time.Millisecond), m.Stats.MeanMs, m.Stats.P99Ms,
	)))
	s.WriteString("\n\n")

	s.WriteString(m.Progress.View())
	s.WriteString("\n\n")

	if m.Stopping {
		s.WriteString(styles.Warn.Render("Stopping, pending requests are counted as failed..."))
	} else {
		s.WriteString(banner.RenderKey("q", "abort run"))
	}
	s.WriteString("\n")

	return s.String()
}

// Run executes r while drawing the live view and returns the run summary. Aborting
// from the keyboard calls cancel; the run still finishes and is summarized.
func Run(ctx context.Context, cancel context.CancelFunc, r *runner.Runner) (stats.Summary, error) {
	done := make(chan struct{})

	var summary stats.Summary
	go func() {
		defer close(done)
		summary = r.Run(ctx)
	}()

	p := tea.NewProgram(NewModel(r.Updates, done, cancel), tea.WithContext(ctx))

	_, err := p.Run()
	if err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		cancel()
		<-done

		return summary, fmt.Errorf("live view: %w", err)
	}

	<-done

	return summary, nil
}
