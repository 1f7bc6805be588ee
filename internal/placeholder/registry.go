package placeholder

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"sync"

	apperrors "blazehammer/internal/errors"
)

// Kwargs are literal-evaluated keyword arguments handed to a Generator.
type Kwargs map[string]any

func (kw Kwargs) String(key, def string) string {
	v, ok := kw[key]
	if !ok || v == nil {
		return def
	}

	return fmt.Sprint(v)
}

func (kw Kwargs) Int(key string, def int) int {
	switch v := kw[key].(type) {
	case int:
		return v
	case float64:
		return int(v)
	case string:
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}

	return def
}

// Generator produces one value for a provider path.
type Generator func(kw Kwargs) (string, error)

var providerPattern = regexp.MustCompile(`^((providers\.[\w.]+)|\w+)(\((.*?)\))?`)

// Registry maps provider names to generators. Plain names ("name") serve
// {faker.name} and {faker.custom(field=name)}; dotted names ("person.name") serve
// {faker.providers.person.name}. Profile fields are kept apart.
type Registry struct {
	mu         sync.RWMutex
	generators map[string]Generator
	profile    map[string]Generator
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		generators: make(map[string]Generator),
		profile:    make(map[string]Generator),
	}
}

// Register adds or replaces a generator.
func (r *Registry) Register(name string, gen Generator) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.generators[name] = gen
}

// RegisterProfileField adds a field served by {faker.profile(field=...)}.
func (r *Registry) RegisterProfileField(field string, gen Generator) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.profile[field] = gen
}

// Lookup returns the generator registered under name.
func (r *Registry) Lookup(name string) (Generator, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	gen, ok := r.generators[name]

	return gen, ok
}

// Names returns all registered generator names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.generators))
	for name := range r.generators {
		names = append(names, name)
	}

	sort.Strings(names)

	return names
}

// Call runs the named generator with kw.
func (r *Registry) Call(name string, kw Kwargs) (string, error) {
	gen, ok := r.Lookup(name)
	if !ok {
		return "", fmt.Errorf("%w: %s", apperrors.ErrUnknownGenerator, name)
	}

	return gen(kw)
}

// Resolve turns a provider token into its value or a bracketed diagnostic.
func (r *Registry) Resolve(tok Token) string {
	path := tok.Path

	switch {
	case strings.HasPrefix(path, "profile"):
		field := tok.Args.String("field", "job")

		r.mu.RLock()
		gen, ok := r.profile[field]
		r.mu.RUnlock()

		if !ok {
			return fmt.Sprintf("[Invalid profile field: %s]", field)
		}

		return r.run(gen, nil)
	case strings.HasPrefix(path, "custom"):
		field := tok.Args.String("field", "None")

		gen, ok := r.Lookup(field)
		if !ok {
			return fmt.Sprintf("[Invalid custom field: %s]", field)
		}

		return r.run(gen, nil)
	}

	m := providerPattern.FindStringSubmatch(path)
	if m == nil {
		return fmt.Sprintf("[Invalid faker field: %s]", path)
	}

	name := m[1]

	var kw Kwargs
	if m[4] != "" {
		kw = ParseArgs(m[4]).Kwargs()
		// locale selects a faker instance, it is not a method argument
		delete(kw, "locale")
	}

	if strings.HasPrefix(name, "providers.") {
		provider := strings.TrimPrefix(name, "providers.")

		gen, ok := r.Lookup(provider)
		if !ok {
			return fmt.Sprintf("[Provider error: unknown provider method %s]", provider)
		}

		return r.run(gen, kw)
	}

	gen, ok := r.Lookup(name)
	if !ok {
		return fmt.Sprintf("[Invalid faker field: %s]", name)
	}

	return r.run(gen, kw)
}

func (r *Registry) run(gen Generator, kw Kwargs) string {
	if kw == nil {
		kw = Kwargs{}
	}

	v, err := gen(kw)
	if err != nil {
		return fmt.Sprintf("[Provider error: %v]", err)
	}

	return v
}
