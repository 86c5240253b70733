package matcher

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFuzzyExactPreferred(t *testing.T) {
	prog, tab := compile(t, "kitten")
	f := NewFuzzyString(prog, tab, "kitten", DefaultFuzzyConfig())
	assert.True(t, f.Matches())
	assert.Equal(t, uint8(0), f.Edits())
}

func TestFuzzySubstitution(t *testing.T) {
	prog, tab := compile(t, "kitten")
	f := NewFuzzyString(prog, tab, "sitten", DefaultFuzzyConfig())
	require.True(t, f.Matches())
	assert.Equal(t, "sitten", f.TextString())
	assert.Equal(t, uint8(1), f.Edits())
}

func TestFuzzyInsertion(t *testing.T) {
	prog, tab := compile(t, "kitten")
	f := NewFuzzyString(prog, tab, "kittten", DefaultFuzzyConfig())
	require.True(t, f.Matches())
	assert.Equal(t, uint8(1), f.Edits())
}

func TestFuzzyDeletion(t *testing.T) {
	prog, tab := compile(t, "kitten")
	f := NewFuzzyString(prog, tab, "kiten", DefaultFuzzyConfig())
	require.True(t, f.Matches())
	assert.Equal(t, uint8(1), f.Edits())
}

func TestFuzzyBudgetExhausted(t *testing.T) {
	prog, tab := compile(t, "kitten")
	f := NewFuzzyString(prog, tab, "sitteen", DefaultFuzzyConfig())
	assert.False(t, f.Matches())
}

func TestFuzzyEditKindsSelectable(t *testing.T) {
	prog, tab := compile(t, "kitten")
	cfg := FuzzyConfig{Max: 1, Insertions: true, Deletions: true}
	f := NewFuzzyString(prog, tab, "sitten", cfg)
	assert.False(t, f.Matches(),
		"substitution disabled, so a substituted byte must not match")

	cfg = FuzzyConfig{Max: 1, Substitutions: true}
	f = NewFuzzyString(prog, tab, "sitten", cfg)
	assert.True(t, f.Matches())
}

func TestFuzzyFindUnfiltered(t *testing.T) {
	// The needle "kitten" never occurs exactly; find must still locate the
	// edited occurrence.
	prog, tab := compile(t, "kitten")
	f := NewFuzzyString(prog, tab, "a sitten b", DefaultFuzzyConfig())
	require.Equal(t, 1, f.Find())
	assert.Equal(t, "sitten", f.TextString())
	assert.Equal(t, int64(2), f.First())
	assert.Equal(t, uint8(1), f.Edits())
}

func TestFuzzyZeroMaxPromoted(t *testing.T) {
	prog, tab := compile(t, "abc")
	f := NewFuzzyString(prog, tab, "abd", FuzzyConfig{Substitutions: true})
	assert.True(t, f.Matches())
	assert.Equal(t, uint8(1), f.Edits())
}

func TestFuzzyPrefersOverlappingExactMatch(t *testing.T) {
	// The edited match at offset 0 spans an exact occurrence at offset 1;
	// the exact one wins and costs no edits.
	prog, tab := compile(t, "kitten")
	f := NewFuzzyString(prog, tab, "akitten", DefaultFuzzyConfig())
	require.Equal(t, 1, f.Find())
	assert.Equal(t, "kitten", f.TextString())
	assert.Equal(t, int64(1), f.First())
	assert.Equal(t, uint8(0), f.Edits())
}

func TestFuzzyAlternativesKeepCaptures(t *testing.T) {
	prog, tab := compile(t, "foo|barbar")
	f := NewFuzzyString(prog, tab, "barbaX", DefaultFuzzyConfig())
	require.True(t, f.Matches())
	assert.Equal(t, 2, f.Accept())
	assert.Equal(t, uint8(1), f.Edits())
}
