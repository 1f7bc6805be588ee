package placeholder

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_Resolve(t *testing.T) {
	r := NewRegistry()
	r.Register("greet", func(kw Kwargs) (string, error) {
		return "hello " + kw.String("who", "world"), nil
	})
	r.Register("group.greet", func(kw Kwargs) (string, error) {
		return "grouped", nil
	})
	r.Register("broken", func(Kwargs) (string, error) {
		return "", errors.New("boom")
	})
	r.RegisterProfileField("job", func(Kwargs) (string, error) { return "pilot", nil })

	tests := []struct {
		name    string
		content string
		want    string
	}{
		{name: "plain", content: "faker.greet", want: "hello world"},
		{name: "kwargs", content: "faker.greet(who='bob')", want: "hello bob"},
		{name: "locale is dropped", content: "faker.greet(locale=de_DE)", want: "hello world"},
		{name: "provider path", content: "faker.providers.group.greet", want: "grouped"},
		{name: "unknown provider", content: "faker.providers.group.nope", want: "[Provider error: unknown provider method group.nope]"},
		{name: "unknown field", content: "faker.nope", want: "[Invalid faker field: nope]"},
		{name: "generator error", content: "faker.broken", want: "[Provider error: boom]"},
		{name: "profile default field", content: "faker.profile", want: "pilot"},
		{name: "profile unknown field", content: "faker.profile(field=wings)", want: "[Invalid profile field: wings]"},
		{name: "custom", content: "faker.custom(field=greet)", want: "hello world"},
		{name: "custom unknown", content: "faker.custom(field=nope)", want: "[Invalid custom field: nope]"},
		{name: "custom without field", content: "faker.custom", want: "[Invalid custom field: None]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, r.Resolve(ParseToken(tt.content)))
		})
	}
}

func TestRegistry_Call(t *testing.T) {
	r := NewRegistry()

	_, err := r.Call("missing", nil)
	assert.Error(t, err)

	r.Register("one", func(Kwargs) (string, error) { return "1", nil })

	v, err := r.Call("one", nil)
	require.NoError(t, err)
	assert.Equal(t, "1", v)
	assert.Equal(t, []string{"one"}, r.Names())
}

func TestDefaultRegistry(t *testing.T) {
	r := DefaultRegistry()

	for _, name := range []string{"name", "email", "person.name", "lorem.sentence", "simple_example", "advanced_example"} {
		v, err := r.Call(name, Kwargs{})

		require.NoError(t, err, name)
		assert.NotEmpty(t, v, name)
	}

	e := NewEngine(WithRegistry(r))
	assert.NotContains(t, e.ExpandString("{faker.profile(field=job)}"), "[Invalid")
	assert.NotContains(t, e.ExpandString("{faker.providers.person.first_name}"), "[Provider error")
}

func TestExampleProviders(t *testing.T) {
	v, err := simpleExample(Kwargs{"category": "farewells"})
	require.NoError(t, err)
	assert.Contains(t, phraseBooks["en"]["farewells"], v)

	v, err = advancedExample(Kwargs{"category": "places", "language": "bn"})
	require.NoError(t, err)
	assert.Contains(t, phraseBooks["bn"]["places"], v)

	v, err = advancedExample(Kwargs{"complexity": "medium"})
	require.NoError(t, err)
	assert.Contains(t, v, " is at ")

	v, err = advancedExample(Kwargs{"complexity": "high"})
	require.NoError(t, err)
	assert.Contains(t, v, "is thinking of leaving")
}

func TestKwargs(t *testing.T) {
	kw := Kwargs{"n": 3, "f": 2.0, "s": "7", "x": "abc", "nil": nil}

	assert.Equal(t, 3, kw.Int("n", 0))
	assert.Equal(t, 2, kw.Int("f", 0))
	assert.Equal(t, 7, kw.Int("s", 0))
	assert.Equal(t, 9, kw.Int("x", 9))
	assert.Equal(t, "def", kw.String("nil", "def"))
	assert.Equal(t, "3", kw.String("n", ""))
}
