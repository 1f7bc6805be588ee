// Package diff shows what placeholder expansion changed in a document.
package diff

import (
	"fmt"
	"reflect"
	"sort"

	"blazehammer/internal/tui/styles"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const (
	// Missing stands for a key the original document does not have.
	Missing = "<missing>"

	// RootKey names the whole document when it is not an object.
	RootKey = "$"

	NoDifferences = "No differences"
)

// Entry is one row of a comparison.
type Entry struct {
	Key     string
	Before  any
	After   any
	Missing bool
	Changed bool
}

// Compare lists every key of after, sorted, with the value it had in before.
func Compare(before, after any) []Entry {
	afterObj, ok := after.(map[string]any)
	if !ok {
		return []Entry{{
			Key:     RootKey,
			Before:  before,
			After:   after,
			Changed: !reflect.DeepEqual(before, after),
		}}
	}

	beforeObj, _ := before.(map[string]any)

	keys := make([]string, 0, len(afterObj))
	for k := range afterObj {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	entries := make([]Entry, 0, len(keys))
	for _, k := range keys {
		e := Entry{Key: k, After: afterObj[k]}

		b, found := beforeObj[k]
		if found {
			e.Before = b
			e.Changed = !reflect.DeepEqual(b, e.After)
		} else {
			e.Missing = true
			e.Changed = true
		}

		entries = append(entries, e)
	}

	return entries
}

// Changed counts the entries whose value differs.
func Changed(entries []Entry) int {
	n := 0
	for _, e := range entries {
		if e.Changed {
			n++
		}
	}

	return n
}

// FormatValue renders objects and lists as indented JSON and scalars as text.
func FormatValue(v any) string {
	switch val := v.(type) {
	case map[string]any, []any:
		b, err := json.MarshalIndent(val, "", "  ")
		if err != nil {
			return fmt.Sprint(val)
		}

		return string(b)
	case string:
		return val
	case nil:
		return "null"
	}

	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}

	return string(b)
}

// Render draws the entries as a three column table titled with the file name.
func Render(file string, entries []Entry, width int) string {
	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		before := Missing
		if !e.Missing {
			before = FormatValue(e.Before)
		}

		after := NoDifferences
		if e.Changed {
			after = FormatValue(e.After)
		}

		rows = append(rows, []string{e.Key, before, after})
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(styles.ColorBorder)).
		BorderRow(true).
		Headers("Key", "Before", "After").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			base := lipgloss.NewStyle().Padding(0, 1)

			if row == table.HeaderRow {
				return base.Foreground(styles.ColorPrimary).Bold(true)
			}

			e := entries[row]
			switch col {
			case 0:
				return base.Foreground(styles.ColorAccent).Bold(true)
			case 1:
				if e.Changed {
					return base.Foreground(styles.ColorError)
				}

				return base.Foreground(styles.ColorSecondary)
			default:
				if e.Changed {
					return base.Foreground(styles.ColorSecondary)
				}

				return base.Foreground(styles.ColorInfo)
			}
		})

	if width > 0 {
		t = t.Width(width)
	}

	title := styles.Title.Render("JSON Differences - " + file)

	return title + "\n" + t.String()
}
