// Package parsers turns request artifacts into one printable line per request.
//
// A parser file has three tables, response, payload and headers. Each maps an HTTP
// status code, or "all" as the fallback, to a rule. A rule is either a bare JMESPath
// expression or a mapping with the fields query, format and default:
//
//	response:
//	  200:
//	    query: body.msg
//	    format: "- {value}"
//	  all: headers.Location
//	headers:
//	  302: Referer
package parsers

import (
	_ "embed"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"strings"

	apperrors "blazehammer/internal/errors"

	"github.com/jmespath/go-jmespath"
	jsoniter "github.com/json-iterator/go"
	"gopkg.in/yaml.v3"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

//go:embed default.yaml
var defaultRules []byte

// FallbackKey selects the rule used when no status specific one exists.
const FallbackKey = "all"

// Kind names one of the three tables.
type Kind int

const (
	Response Kind = iota
	Payload
	Headers
)

func (k Kind) String() string {
	switch k {
	case Response:
		return "response"
	case Payload:
		return "payload"
	case Headers:
		return "headers"
	}

	return "unknown"
}

// Rule is one compiled table entry.
type Rule struct {
	Query   string
	Format  string
	Default string

	expr *jmespath.JMESPath
}

// Apply evaluates the rule against an artifact.
func (r *Rule) Apply(artifact any) string {
	v, err := r.expr.Search(artifact)
	if err != nil {
		return fmt.Sprintf("- Parser error: %v", err)
	}

	out := r.Default
	if v != nil || out == "" {
		out = render(v)
	}

	if r.Format == "" {
		return out
	}

	return strings.ReplaceAll(r.Format, "{value}", out)
}

// Table maps a status code ("200") or FallbackKey to a rule.
type Table map[string]*Rule

// Lookup prefers the rule of status and falls back to FallbackKey.
func (t Table) Lookup(status int) (*Rule, bool) {
	if r, ok := t[strconv.Itoa(status)]; ok {
		return r, true
	}

	r, ok := t[FallbackKey]

	return r, ok
}

// Set holds the three tables.
type Set struct {
	Response Table
	Payload  Table
	Headers  Table
}

func (s *Set) table(k Kind) Table {
	switch k {
	case Response:
		return s.Response
	case Payload:
		return s.Payload
	default:
		return s.Headers
	}
}

// Render formats artifact with the rule for status from table k.
func (s *Set) Render(k Kind, status int, artifact any) string {
	rule, ok := s.table(k).Lookup(status)
	if !ok {
		return fmt.Sprintf("- Not found in `%s parsers`", k)
	}

	return rule.Apply(artifact)
}

// Default returns the built-in tables.
func Default() *Set {
	s, err := Parse(defaultRules)
	if err != nil {
		panic(fmt.Sprintf("built-in parser table: %v", err))
	}

	return s
}

// Load reads a parser file.
func Load(path string) (*Set, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrInvalidParsers, err)
	}

	s, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return s, nil
}

// Parse compiles a YAML parser document. Unknown top-level sections are rejected.
func Parse(data []byte) (*Set, error) {
	s := &Set{Response: Table{}, Payload: Table{}, Headers: Table{}}

	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrInvalidParsers, err)
	}

	if len(doc.Content) == 0 {
		return s, nil
	}

	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("%w: top level must be a mapping", apperrors.ErrInvalidParsers)
	}

	for i := 0; i+1 < len(root.Content); i += 2 {
		name, body := root.Content[i].Value, root.Content[i+1]

		var t Table
		switch name {
		case "response":
			t = s.Response
		case "payload":
			t = s.Payload
		case "headers":
			t = s.Headers
		default:
			return nil, fmt.Errorf("%w: unknown section %q", apperrors.ErrInvalidParsers, name)
		}

		if err := parseTable(name, body, t); err != nil {
			return nil, err
		}
	}

	return s, nil
}

func parseTable(name string, node *yaml.Node, t Table) error {
	if node.Kind == yaml.ScalarNode && node.Tag == "!!null" {
		return nil
	}

	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("%w: section %s must be a mapping", apperrors.ErrInvalidParsers, name)
	}

	for i := 0; i+1 < len(node.Content); i += 2 {
		key := node.Content[i].Value

		if key != FallbackKey {
			if _, err := strconv.Atoi(key); err != nil {
				return fmt.Errorf("%w: %s: key %q is neither a status code nor %q",
					apperrors.ErrInvalidParsers, name, key, FallbackKey)
			}
		}

		rule := &Rule{}

		value := node.Content[i+1]
		switch value.Kind {
		case yaml.ScalarNode:
			rule.Query = value.Value
		case yaml.MappingNode:
			var fields struct {
				Query   string `yaml:"query"`
				Format  string `yaml:"format"`
				Default string `yaml:"default"`
			}
			if err := value.Decode(&fields); err != nil {
				return fmt.Errorf("%w: %s.%s: %v", apperrors.ErrInvalidParsers, name, key, err)
			}

			rule.Query, rule.Format, rule.Default = fields.Query, fields.Format, fields.Default
		default:
			return fmt.Errorf("%w: %s.%s: rule must be a string or a mapping", apperrors.ErrInvalidParsers, name, key)
		}

		expr, err := jmespath.Compile(rule.Query)
		if err != nil {
			return fmt.Errorf("%w: %s.%s: %v", apperrors.ErrInvalidParsers, name, key, err)
		}

		rule.expr = expr
		t[key] = rule
	}

	return nil
}

// ResponseArtifact builds the {status, headers, body} document rules run against.
// The body is decoded as JSON when possible and kept as text otherwise.
func ResponseArtifact(status int, header http.Header, body []byte) map[string]any {
	headers := make(map[string]any, len(header))
	for k := range header {
		headers[k] = header.Get(k)
	}

	var decoded any
	if err := json.Unmarshal(body, &decoded); err != nil {
		decoded = string(body)
	}

	return map[string]any{
		"status":  status,
		"headers": headers,
		"body":    decoded,
	}
}

// HeadersArtifact converts sent headers into a searchable document.
func HeadersArtifact(h map[string]string) map[string]any {
	out := make(map[string]any, len(h))
	for k, v := range h {
		out[k] = v
	}

	return out
}

func render(v any) string {
	switch val := v.(type) {
	case nil:
		return "null"
	case string:
		return val
	case map[string]any, []any:
		b, err := json.MarshalIndent(val, "", "  ")
		if err != nil {
			return fmt.Sprint(val)
		}

		return string(b)
	}

	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}

	return string(b)
}
