// Package config loads the payload and header documents of a run.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	apperrors "blazehammer/internal/errors"

	jsoniter "github.com/json-iterator/go"
	"github.com/tidwall/jsonc"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const (
	DefaultPayloadFile = "payload.json"
	DefaultHeadersFile = "headers.json"
)

// ParseDocument decodes JSON. Comments and trailing commas are tolerated.
func ParseDocument(data []byte) (any, error) {
	var doc any
	if err := json.Unmarshal(jsonc.ToJSON(data), &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrInvalidDocument, err)
	}

	return doc, nil
}

// LoadDocument reads and decodes a JSON file.
func LoadDocument(path string) (any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrInvalidDocument, err)
	}

	doc, err := ParseDocument(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return doc, nil
}

// LoadOptional is LoadDocument for files that may be absent. A missing file that was
// not named explicitly yields a nil document; every other failure is returned.
func LoadOptional(path string, explicit bool) (any, error) {
	if path == "" {
		return nil, nil
	}

	if !explicit {
		if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
	}

	return LoadDocument(path)
}

// Headers checks that a headers document is an object.
func Headers(doc any) (map[string]any, error) {
	switch h := doc.(type) {
	case nil:
		return nil, nil
	case map[string]any:
		return h, nil
	default:
		return nil, fmt.Errorf("%w: headers must be a JSON object, got %T", apperrors.ErrInvalidDocument, doc)
	}
}
