package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	apperrors "blazehammer/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func write(t *testing.T, name, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	return path
}

func TestLoadDocument(t *testing.T) {
	path := write(t, "payload.json", `{
		// generated per request
		"id": "{uuid}",
		"n": 2,
	}`)

	doc, err := LoadDocument(path)
	require.NoError(t, err)

	assert.Equal(t, map[string]any{"id": "{uuid}", "n": float64(2)}, doc)
}

func TestLoadDocument_Malformed(t *testing.T) {
	_, err := LoadDocument(write(t, "bad.json", `{"a": `))
	assert.True(t, errors.Is(err, apperrors.ErrInvalidDocument))
}

func TestLoadOptional(t *testing.T) {
	missing := filepath.Join(t.TempDir(), DefaultPayloadFile)

	doc, err := LoadOptional(missing, false)
	require.NoError(t, err)
	assert.Nil(t, doc)

	_, err = LoadOptional(missing, true)
	assert.True(t, errors.Is(err, apperrors.ErrInvalidDocument))

	doc, err = LoadOptional("", true)
	require.NoError(t, err)
	assert.Nil(t, doc)

	// present but broken is fatal even when not named explicitly
	_, err = LoadOptional(write(t, DefaultHeadersFile, "nope"), false)
	assert.Error(t, err)
}

func TestHeaders(t *testing.T) {
	h, err := Headers(map[string]any{"X-A": "b"})
	require.NoError(t, err)
	assert.Equal(t, "b", h["X-A"])

	h, err = Headers(nil)
	require.NoError(t, err)
	assert.Nil(t, h)

	_, err = Headers([]any{"a"})
	assert.True(t, errors.Is(err, apperrors.ErrInvalidDocument))
}
