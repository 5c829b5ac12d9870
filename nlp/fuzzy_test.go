package nlp

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

var (
	typeOptions     = []string{"Feature", "Bug", "Improvement"}
	priorityOptions = []string{"0 - Critical", "1 - High", "2 - Medium", "3 - Low"}
)

func TestMatchOptionExact(t *testing.T) {
	t.Parallel()
	got, ok := MatchOption("bug", typeOptions)
	assert.True(t, ok)
	assert.Equal(t, "Bug", got)

	got, ok = MatchOption("  FEATURE ", typeOptions)
	assert.True(t, ok)
	assert.Equal(t, "Feature", got)
}

func TestMatchOptionShortcuts(t *testing.T) {
	t.Parallel()
	cases := map[string]string{
		"there is an issue with login": "Bug",
		"new feature please":           "Feature",
		"small improvement":            "Improvement",
		"enhancement":                  "Improvement",
	}
	for input, want := range cases {
		got, ok := MatchOption(input, typeOptions)
		assert.True(t, ok, "input %q", input)
		assert.Equal(t, want, got, "input %q", input)
	}
}

func TestMatchOptionTypo(t *testing.T) {
	t.Parallel()
	got, ok := MatchOption("featur", typeOptions)
	assert.True(t, ok)
	assert.Equal(t, "Feature", got)

	got, ok = MatchOption("hihg", priorityOptions)
	assert.True(t, ok)
	assert.Equal(t, "1 - High", got)

	got, ok = MatchOption("criticl", priorityOptions)
	assert.True(t, ok)
	assert.Equal(t, "0 - Critical", got)
}

func TestMatchOptionMiss(t *testing.T) {
	t.Parallel()
	for _, input := range []string{"", "banana", "xyzzy"} {
		_, ok := MatchOption(input, typeOptions)
		assert.False(t, ok, "input %q", input)
	}
}
