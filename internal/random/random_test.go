package random

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"testing"

	apperrors "blazehammer/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmail(t *testing.T) {
	domains := []string{"example.com", "example.org"}

	for i := 0; i < 50; i++ {
		email, err := Email("Human", 5, domains)
		require.NoError(t, err)

		local, domain, ok := strings.Cut(email, "@")
		require.True(t, ok)
		assert.Contains(t, domains, domain)
		assert.True(t, strings.HasPrefix(local, "Human"))
		assert.Regexp(t, regexp.MustCompile(`^Human[A-Za-z0-9]{5}$`), local)
	}
}

func TestNumber(t *testing.T) {
	tests := []struct {
		name   string
		start  string
		length int
	}{
		{name: "prefix and random tail", start: "01", length: 4},
		{name: "default shape", start: "019", length: 11},
		{name: "prefix fills length", start: "1234", length: 4},
		{name: "empty prefix", start: "", length: 6},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Number(tt.start, tt.length)

			require.NoError(t, err)
			assert.Len(t, got, tt.length)
			assert.True(t, strings.HasPrefix(got, tt.start))
			assert.Regexp(t, regexp.MustCompile(`^[0-9]*$`), got)
		})
	}
}

func TestNumber_StartTooLong(t *testing.T) {
	_, err := Number("12345", 3)

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrStartTooLong))
	assert.Contains(t, err.Error(), "12345")
}

func TestString(t *testing.T) {
	s, err := String(8)
	require.NoError(t, err)
	assert.Len(t, s, 8)

	s, err = String(0)
	require.NoError(t, err)
	assert.Equal(t, "", s)

	s, err = String(32)
	require.NoError(t, err)
	assert.Regexp(t, regexp.MustCompile(`^[A-Za-z0-9]{32}$`), s)
}

func TestLengthBounds(t *testing.T) {
	huge := MaxLength + 1

	_, err := String(huge)
	assert.ErrorIs(t, err, apperrors.ErrInvalidArgument)

	_, err = Number("1", huge)
	assert.ErrorIs(t, err, apperrors.ErrInvalidArgument)

	_, err = Email("x", huge, nil)
	assert.ErrorIs(t, err, apperrors.ErrInvalidArgument)

	_, err = Password(huge, true, true, true, true)
	assert.ErrorIs(t, err, apperrors.ErrInvalidArgument)

	_, err = Float(0, 1, MaxPrecision+1)
	assert.ErrorIs(t, err, apperrors.ErrInvalidArgument)

	s, err := String(MaxLength)
	require.NoError(t, err)
	assert.Len(t, s, MaxLength)
}

func TestInt(t *testing.T) {
	for i := 0; i < 100; i++ {
		v, err := Int(3, 5)

		require.NoError(t, err)
		assert.GreaterOrEqual(t, v, 3)
		assert.LessOrEqual(t, v, 5)
	}

	_, err := Int(5, 1)
	assert.ErrorIs(t, err, apperrors.ErrInvalidArgument)
}

func TestInt_WideRanges(t *testing.T) {
	tests := []struct {
		name     string
		min, max int
	}{
		{name: "zero to max", min: 0, max: math.MaxInt},
		{name: "full range", min: math.MinInt, max: math.MaxInt},
		{name: "min to zero", min: math.MinInt, max: 0},
		{name: "single value", min: math.MaxInt, max: math.MaxInt},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for i := 0; i < 50; i++ {
				v, err := Int(tt.min, tt.max)

				require.NoError(t, err)
				assert.GreaterOrEqual(t, v, tt.min)
				assert.LessOrEqual(t, v, tt.max)
			}
		})
	}
}

func TestFloat(t *testing.T) {
	for i := 0; i < 100; i++ {
		s, err := Float(1.5, 2.5, 3)
		require.NoError(t, err)

		v, err := strconv.ParseFloat(s, 64)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, v, 1.5)
		assert.LessOrEqual(t, v, 2.5)

		_, frac, ok := strings.Cut(s, ".")
		require.True(t, ok)
		assert.Len(t, frac, 3)
	}
}

func TestPassword(t *testing.T) {
	t.Run("digits only", func(t *testing.T) {
		pw, err := Password(12, false, false, true, false)
		require.NoError(t, err)
		assert.Regexp(t, regexp.MustCompile(`^[0-9]{12}$`), pw)
	})

	t.Run("no class enabled", func(t *testing.T) {
		pw, err := Password(12, false, false, false, false)
		require.NoError(t, err)
		assert.Equal(t, NoCharsetDiagnostic, pw)
	})

	t.Run("symbols", func(t *testing.T) {
		pw, err := Password(64, false, false, false, true)
		require.NoError(t, err)

		assert.Len(t, pw, 64)
		for _, r := range pw {
			assert.Contains(t, symbols, string(r))
		}
	})
}

func TestIP(t *testing.T) {
	parts := strings.Split(IP(), ".")

	require.Len(t, parts, 4)
	for _, p := range parts {
		n, err := strconv.Atoi(p)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, n, 0)
		assert.LessOrEqual(t, n, 255)
	}
}

func TestChoice(t *testing.T) {
	assert.Equal(t, "", Choice(nil))
	assert.Contains(t, []string{"a", "b"}, Choice([]string{"a", "b"}))
}

func TestLineCache_Pick(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "names.txt")
	require.NoError(t, os.WriteFile(path, []byte("alice  \nbob\t\ncarol\n"), 0o644))

	c := NewLineCache()

	for i := 0; i < 20; i++ {
		assert.Contains(t, []string{"alice", "bob", "carol"}, c.Pick(path))
	}

	// The file is read once; later edits are not observed.
	require.NoError(t, os.WriteFile(path, []byte("dave\n"), 0o644))
	assert.NotEqual(t, "dave", c.Pick(path))
	assert.Equal(t, 1, c.Len())
}

func TestLineCache_PickMissingFile(t *testing.T) {
	c := NewLineCache()

	got := c.Pick(filepath.Join(t.TempDir(), "missing.txt"))

	assert.True(t, strings.HasPrefix(got, "[pick_line error:"))
	assert.Equal(t, 0, c.Len())
}

func TestLineCache_ConcurrentLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lines.txt")
	require.NoError(t, os.WriteFile(path, []byte("x\ny\n"), 0o644))

	c := NewLineCache()

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.Contains(t, []string{"x", "y"}, c.Pick(path))
		}()
	}
	wg.Wait()

	lines, err := c.Lines(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"x", "y"}, lines)
}
