// Package placeholder expands {...} tokens inside JSON-like documents.
//
// A token is a brace span without nested braces. Its content is either a bare keyword
// ({uuid}, {timestamp}, {bool}, {ip}), a call with key=value arguments
// ({number(start=01,length=8)}, {choice(a,b,c)}, {date(format=%H:%M)}), or a provider
// path ({faker.name}, {faker.profile(field=job)}). Strings are rescanned after every
// pass so generated values that themselves contain tokens are expanded too.
package placeholder

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"blazehammer/internal/random"

	"github.com/google/uuid"
	"github.com/lestrrat-go/strftime"
)

const (
	// MaxDepth is the deepest nesting level that is still expanded.
	MaxDepth = 10

	// MaxPasses bounds the rescans of one string.
	MaxPasses = 16

	defaultDateFormat = "%Y-%m-%d"
)

// Engine expands placeholder tokens. It is safe for concurrent use.
type Engine struct {
	registry *Registry
	lines    *random.LineCache
	now      func() time.Time
	onError  func(tok Token, err error)
}

type Option func(*Engine)

// WithRegistry replaces the provider registry.
func WithRegistry(r *Registry) Option {
	return func(e *Engine) {
		e.registry = r
	}
}

// WithLineCache injects the cache used by {pick_line(file=...)}.
func WithLineCache(c *random.LineCache) Option {
	return func(e *Engine) {
		e.lines = c
	}
}

// WithClock sets the time source for {timestamp} and {date}.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

// WithErrorHook is called whenever a generator rejects its arguments. The token is
// still replaced with a diagnostic.
func WithErrorHook(fn func(tok Token, err error)) Option {
	return func(e *Engine) {
		e.onError = fn
	}
}

// NewEngine returns an engine with the default registry and a fresh line cache.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		now: time.Now,
	}

	for _, opt := range opts {
		opt(e)
	}

	if e.registry == nil {
		e.registry = DefaultRegistry()
	}

	if e.lines == nil {
		e.lines = random.NewLineCache()
	}

	return e
}

// Expand returns a copy of v with every string expanded. Maps and slices are rebuilt;
// other values are returned unchanged. Nodes deeper than MaxDepth are not touched.
func (e *Engine) Expand(v any) any {
	return e.expand(v, 0)
}

// ExpandMap is Expand for a top-level object.
func (e *Engine) ExpandMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}

	return e.expand(m, 0).(map[string]any)
}

func (e *Engine) expand(v any, depth int) any {
	if depth > MaxDepth {
		return v
	}

	switch node := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(node))
		for k, child := range node {
			out[k] = e.expand(child, depth+1)
		}

		return out
	case []any:
		out := make([]any, len(node))
		for i, child := range node {
			out[i] = e.expand(child, depth+1)
		}

		return out
	case map[string]string:
		out := make(map[string]string, len(node))
		for k, child := range node {
			out[k] = e.expand(child, depth+1).(string)
		}

		return out
	case string:
		return e.ExpandString(node)
	default:
		return v
	}
}

// ExpandString replaces tokens in s until a pass changes nothing or MaxPasses ran.
// Tokens that match no generator are kept verbatim, braces included.
func (e *Engine) ExpandString(s string) string {
	if !strings.Contains(s, "{") || !strings.Contains(s, "}") {
		return s
	}

	for pass := 0; pass < MaxPasses; pass++ {
		next := tokenPattern.ReplaceAllStringFunc(s, e.replace)
		if next == s {
			break
		}

		s = next
	}

	return s
}

func (e *Engine) replace(match string) string {
	tok := ParseToken(match[1 : len(match)-1])

	value, ok := e.Generate(tok)
	if !ok {
		return match
	}

	return value
}

// Generate produces the value of tok. ok is false for tokens of unknown kind.
func (e *Engine) Generate(tok Token) (value string, ok bool) {
	switch tok.Kind {
	case KindUUID:
		return uuid.New().String(), true
	case KindTimestamp:
		return strconv.FormatInt(e.now().Unix(), 10), true
	case KindBool:
		return random.Bool(), true
	case KindIP:
		return random.IP(), true
	case KindEmail:
		return e.checked(tok)(random.Email(
			tok.Args.String("prefix", "Human"),
			tok.Args.Int("length", 5),
			strings.Split(tok.Args.String("domains", "gmail.com"), "*"),
		))
	case KindNumber:
		return e.checked(tok)(random.Number(tok.Args.String("start", "019"), tok.Args.Int("length", 11)))
	case KindString:
		return e.checked(tok)(random.String(tok.Args.Int("length", 8)))
	case KindInt:
		n, err := random.Int(tok.Args.Int("min", 1), tok.Args.Int("max", 100))
		if err != nil {
			return e.diagnostic(tok, err), true
		}

		return strconv.Itoa(n), true
	case KindFloat:
		return e.checked(tok)(random.Float(
			tok.Args.Float("min", 0),
			tok.Args.Float("max", 1),
			tok.Args.Int("precision", 2),
		))
	case KindPassword:
		return e.checked(tok)(random.Password(
			tok.Args.Int("length", 8),
			tok.Args.Bool("uppercase", true),
			tok.Args.Bool("lowercase", true),
			tok.Args.Bool("digits", true),
			tok.Args.Bool("symbols", false),
		))
	case KindPickLine:
		return e.lines.Pick(tok.Args.String("file", "")), true
	case KindChoice:
		return random.Choice(tok.Choices), true
	case KindDate:
		out, err := strftime.Format(tok.Args.String("format", defaultDateFormat), e.now())
		if err != nil {
			return e.diagnostic(tok, err), true
		}

		return out, true
	case KindProvider:
		return e.registry.Resolve(tok), true
	}

	return "", false
}

// checked adapts a generator result to Generate, turning an error into a diagnostic.
func (e *Engine) checked(tok Token) func(string, error) (string, bool) {
	return func(v string, err error) (string, bool) {
		if err != nil {
			return e.diagnostic(tok, err), true
		}

		return v, true
	}
}

func (e *Engine) diagnostic(tok Token, err error) string {
	if e.onError != nil {
		e.onError(tok, err)
	}

	return fmt.Sprintf("[Invalid %s: %v]", tok.Kind, err)
}
