package placeholder

import (
	"regexp"
	"strconv"
	"strings"
)

var argsPattern = regexp.MustCompile(`(\w+)=([^,{}()]+)`)

// Args holds key=value arguments of a token. Values stay untyped until a generator
// reads them; unparsable values fall back to the generator default.
type Args map[string]string

// ParseArgs collects every key=value pair in content. Later keys win.
func ParseArgs(content string) Args {
	args := Args{}

	for _, m := range argsPattern.FindAllStringSubmatch(content, -1) {
		args[m[1]] = m[2]
	}

	return args
}

func (a Args) String(key, def string) string {
	if v, ok := a[key]; ok {
		return v
	}

	return def
}

func (a Args) Int(key string, def int) int {
	v, ok := a[key]
	if !ok {
		return def
	}

	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return def
	}

	return n
}

func (a Args) Float(key string, def float64) float64 {
	v, ok := a[key]
	if !ok {
		return def
	}

	f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil {
		return def
	}

	return f
}

// Bool is true only for a case-insensitive "true".
func (a Args) Bool(key string, def bool) bool {
	v, ok := a[key]
	if !ok {
		return def
	}

	return strings.EqualFold(strings.TrimSpace(v), "true")
}

// Literal evaluates a provider keyword value. Only integer, float, boolean, None and
// quoted string literals are recognized; anything else is returned as the raw string.
func Literal(v string) any {
	s := strings.TrimSpace(v)

	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return int(n)
	}

	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}

	switch s {
	case "True", "true":
		return true
	case "False", "false":
		return false
	case "None", "null":
		return nil
	}

	if len(s) >= 2 {
		first, last := s[0], s[len(s)-1]
		if (first == '\'' || first == '"') && first == last {
			return s[1 : len(s)-1]
		}
	}

	return v
}

// Kwargs converts the arguments into literal-evaluated keyword arguments.
func (a Args) Kwargs() Kwargs {
	kw := make(Kwargs, len(a))

	for k, v := range a {
		kw[k] = Literal(v)
	}

	return kw
}
