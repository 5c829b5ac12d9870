package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEveryOrderedKeyHasDefinition(t *testing.T) {
	t.Parallel()
	assert.Len(t, AskOrder, 10)
	assert.ElementsMatch(t, AskOrder, ReviewOrder)
	for _, key := range AskOrder {
		def, ok := Lookup(key)
		require.True(t, ok, "key %q", key)
		assert.Equal(t, key, def.Key)
		assert.NotEmpty(t, def.DisplayName)
		assert.NotEmpty(t, def.Description)
		assert.NotEmpty(t, def.Keywords)
	}
}

func TestRequiredAndSkippableAreDisjoint(t *testing.T) {
	t.Parallel()
	for _, key := range AskOrder {
		def := MustLookup(key)
		assert.False(t, def.Required && def.Skippable, "key %q", key)
		assert.True(t, def.Required || def.Skippable, "key %q", key)
	}
}

func TestReviewOrderRequiredFirst(t *testing.T) {
	t.Parallel()
	seenOptional := false
	for _, key := range ReviewOrder {
		def := MustLookup(key)
		if !def.Required {
			seenOptional = true
			continue
		}
		assert.False(t, seenOptional, "required field %q after an optional one", key)
	}
}

func TestNextAfter(t *testing.T) {
	t.Parallel()
	assert.Equal(t, KeyType, NextAfter(KeyTitle))
	assert.Equal(t, KeyCreatedBy, NextAfter(KeyReferenceLink))
	assert.Equal(t, "", NextAfter(KeyCreatedBy))
	assert.Equal(t, "", NextAfter("bogus"))
}

func TestResolve(t *testing.T) {
	t.Parallel()
	cases := map[string]string{
		"title":         KeyTitle,
		"Request Title": KeyTitle,
		"due date":      KeyDueDate,
		"due_date":      KeyDueDate,
		"prio":          KeyPriority,
		"desc":          KeyDescription,
		"created by":    KeyCreatedBy,
	}
	for input, want := range cases {
		got, ok := Resolve(input)
		require.True(t, ok, "input %q", input)
		assert.Equal(t, want, got, "input %q", input)
	}

	for _, input := range []string{"bogus", "x", ""} {
		_, ok := Resolve(input)
		assert.False(t, ok, "input %q", input)
	}
}

func TestMustLookupPanics(t *testing.T) {
	t.Parallel()
	assert.Panics(t, func() { MustLookup("bogus") })
}
