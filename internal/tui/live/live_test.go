package live

import (
	"testing"

	"blazehammer/internal/runner"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestModel_Snapshot(t *testing.T) {
	m := NewModel(make(runner.StatsUpdateChan, 1), make(chan struct{}), nil)

	next, cmd := m.Update(runner.StatsSnapshot{Total: 10, Completed: 4, Success: 3, Failure: 1, MeanMs: 12})
	require.NotNil(t, cmd)

	got := next.(Model)
	assert.Equal(t, int64(4), got.LastCompleted)
	assert.Equal(t, []float64{12}, got.LatencyLine.Data)
	assert.Len(t, got.RpsLine.Data, 1)
	assert.Contains(t, got.View(), "DONE: 4/10")
	assert.Contains(t, got.View(), "ERR: 25.00%")
}

func TestModel_AbortCancelsOnce(t *testing.T) {
	calls := 0
	m := NewModel(make(runner.StatsUpdateChan, 1), make(chan struct{}), func() { calls++ })

	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	next, _ = next.(Model).Update(tea.KeyMsg{Type: tea.KeyCtrlC})

	assert.Equal(t, 1, calls)
	assert.True(t, next.(Model).Stopping)
	assert.Contains(t, next.(Model).View(), "Stopping")
}

func TestModel_DoneQuits(t *testing.T) {
	m := NewModel(make(runner.StatsUpdateChan, 1), make(chan struct{}), nil)

	next, cmd := m.Update(doneMsg{})

	assert.True(t, next.(Model).Finished)
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}

func TestModel_Resize(t *testing.T) {
	m := NewModel(make(runner.StatsUpdateChan, 1), make(chan struct{}), nil)

	next, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})

	got := next.(Model)
	assert.Equal(t, 44, got.RpsLine.Width)
	assert.Equal(t, 96, got.Progress.Width)
}
