package components

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
)

func TestSparkline_Window(t *testing.T) {
	s := NewSparkline(3, "RPS", "req/s", lipgloss.NewStyle())

	for _, v := range []float64{10, 2, 3, 4} {
		s.Add(v)
	}

	assert.Equal(t, []float64{2, 3, 4}, s.Data)
	assert.Equal(t, 4.0, s.Max)
	assert.Equal(t, 4.0, s.Last())
}

func TestSparkline_View(t *testing.T) {
	s := NewSparkline(4, "P99", "ms", lipgloss.NewStyle())
	s.Add(0)
	s.Add(8)

	lines := strings.Split(s.View(), "\n")

	assert.Equal(t, "P99 8.0 ms", lines[0])
	assert.Equal(t, " █  ", lines[1])
	assert.Empty(t, NewSparkline(0, "x", "", lipgloss.NewStyle()).View())
}
