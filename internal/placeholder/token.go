package placeholder

import (
	"regexp"
	"strings"
)

// Kind identifies what a placeholder token generates.
type Kind int

const (
	KindUnknown Kind = iota
	KindUUID
	KindTimestamp
	KindBool
	KindIP
	KindEmail
	KindNumber
	KindString
	KindInt
	KindFloat
	KindPassword
	KindPickLine
	KindChoice
	KindDate
	KindProvider
)

var kindNames = map[Kind]string{
	KindUnknown:   "unknown",
	KindUUID:      "uuid",
	KindTimestamp: "timestamp",
	KindBool:      "bool",
	KindIP:        "ip",
	KindEmail:     "email",
	KindNumber:    "number",
	KindString:    "string",
	KindInt:       "int",
	KindFloat:     "float",
	KindPassword:  "password",
	KindPickLine:  "pick_line",
	KindChoice:    "choice",
	KindDate:      "date",
	KindProvider:  "provider",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}

	return "unknown"
}

var (
	tokenPattern  = regexp.MustCompile(`\{([^{}]+)\}`)
	choicePattern = regexp.MustCompile(`choice\((.*?)\)`)
)

// ProviderPrefix starts every provider path, e.g. {faker.name} or {faker.profile(field=job)}.
const ProviderPrefix = "faker."

// Token is the parsed content of one {...} span.
type Token struct {
	Kind Kind

	// Raw is the trimmed content between the braces.
	Raw string

	Args    Args
	Choices []string
	Path    string
}

// keyword prefixes that take key=value arguments, checked in order
var argKinds = []struct {
	prefix string
	kind   Kind
}{
	{"email", KindEmail},
	{"number", KindNumber},
	{"string", KindString},
	{"str", KindString},
	{"int", KindInt},
	{"float", KindFloat},
	{"password", KindPassword},
}

// ParseToken classifies placeholder content. It never fails: content that matches no
// form is returned as KindUnknown.
func ParseToken(content string) Token {
	raw := strings.TrimSpace(content)
	tok := Token{Kind: KindUnknown, Raw: raw}

	switch raw {
	case "uuid":
		tok.Kind = KindUUID
		return tok
	case "timestamp":
		tok.Kind = KindTimestamp
		return tok
	case "bool":
		tok.Kind = KindBool
		return tok
	case "ip":
		tok.Kind = KindIP
		return tok
	}

	for _, ak := range argKinds {
		if strings.HasPrefix(raw, ak.prefix) {
			tok.Kind = ak.kind
			tok.Args = ParseArgs(raw)
			return tok
		}
	}

	switch {
	case strings.HasPrefix(raw, "pick_line"):
		tok.Kind = KindPickLine
		tok.Args = ParseArgs(raw)
	case strings.HasPrefix(raw, "choice"):
		m := choicePattern.FindStringSubmatch(raw)
		if m == nil {
			return tok
		}

		tok.Kind = KindChoice
		for _, c := range strings.Split(m[1], ",") {
			tok.Choices = append(tok.Choices, strings.TrimSpace(c))
		}
	case strings.HasPrefix(raw, "date"):
		tok.Kind = KindDate
		tok.Args = ParseArgs(raw)
	case strings.HasPrefix(raw, ProviderPrefix):
		tok.Kind = KindProvider
		tok.Path = strings.TrimPrefix(raw, ProviderPrefix)
		tok.Args = ParseArgs(raw)
	}

	return tok
}

// FindTokens returns the contents of all non-nesting {...} spans in s.
func FindTokens(s string) []string {
	matches := tokenPattern.FindAllStringSubmatch(s, -1)
	contents := make([]string, 0, len(matches))

	for _, m := range matches {
		contents = append(contents, m[1])
	}

	return contents
}
