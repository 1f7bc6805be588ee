package random

import (
	"bufio"
	"bytes"
	"fmt"
	mrand "math/rand/v2"
	"os"
	"strings"

	"github.com/patrickmn/go-cache"
	"golang.org/x/sync/singleflight"
)

// LineCache keeps the lines of every file picked from. Entries never expire, so a
// file is read at most once for the lifetime of the cache.
type LineCache struct {
	lines *cache.Cache
	group singleflight.Group
}

// NewLineCache returns an empty cache.
func NewLineCache() *LineCache {
	return &LineCache{
		lines: cache.New(cache.NoExpiration, 0),
	}
}

// Pick returns a random line of path with trailing whitespace removed. A read failure
// is returned as a bracketed diagnostic and is not cached.
func (c *LineCache) Pick(path string) string {
	lines, err := c.Lines(path)
	if err != nil {
		return fmt.Sprintf("[pick_line error: %v]", err)
	}

	if len(lines) == 0 {
		return ""
	}

	return strings.TrimRight(lines[mrand.IntN(len(lines))], " \t\r\n")
}

// Lines returns the cached line list of path, loading it on first access.
func (c *LineCache) Lines(path string) ([]string, error) {
	if v, ok := c.lines.Get(path); ok {
		return v.([]string), nil
	}

	v, err, _ := c.group.Do(path, func() (any, error) {
		if v, ok := c.lines.Get(path); ok {
			return v, nil
		}

		loaded, err := readLines(path)
		if err != nil {
			return nil, err
		}

		c.lines.Set(path, loaded, cache.NoExpiration)

		return loaded, nil
	})
	if err != nil {
		return nil, err
	}

	return v.([]string), nil
}

// Len returns the number of cached files.
func (c *LineCache) Len() int {
	return c.lines.ItemCount()
}

func readLines(path string) ([]string, error) {
	if path == "" {
		return nil, fmt.Errorf("no file given")
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	scanner := bufio.NewScanner(bytes.NewReader(content))
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	var loaded []string
	for scanner.Scan() {
		loaded = append(loaded, scanner.Text())
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return loaded, nil
}
