package intent

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryLookup(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	r.Register("social", "greeting", func(lang, msg string) Response {
		return Response{Text: "hello " + lang, Mode: "social"}
	})
	r.Register("social", "", func(lang, msg string) Response {
		return Response{Text: "generic social", Mode: "social"}
	})

	h, ok := r.Lookup("social", "greeting")
	require.True(t, ok)
	assert.Equal(t, "hello vi", h("vi", "chào").Text)

	// Unknown intent falls back to the type wildcard.
	h, ok = r.Lookup("social", "weather")
	require.True(t, ok)
	assert.Equal(t, "generic social", h("vi", "x").Text)

	_, ok = r.Lookup("question", "pricing")
	assert.False(t, ok)
}

func TestRegisterReplaces(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	r.Register("a", "b", func(_, _ string) Response { return Response{Text: "one"} })
	r.Register("a", "b", func(_, _ string) Response { return Response{Text: "two"} })

	h, ok := r.Lookup("a", "b")
	require.True(t, ok)
	assert.Equal(t, "two", h("vi", "").Text)
}
