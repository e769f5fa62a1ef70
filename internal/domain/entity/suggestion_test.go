package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestQualifiesForSuggestion(t *testing.T) {
	assert.False(t, QualifiesForSuggestion("abc", 4), "three characters are below the threshold")
	assert.False(t, QualifiesForSuggestion("  abc \n", 4), "surrounding whitespace does not count")
	assert.True(t, QualifiesForSuggestion("explain quantum computing", 4))
	assert.True(t, QualifiesForSuggestion("éèêë", 4), "length is counted in runes")
}

func TestGhostSuggestion_ValidFor(t *testing.T) {
	g := NewGhostSuggestion("hello world", "hello", 2)

	assert.True(t, g.ValidFor("hello", 2))
	assert.False(t, g.ValidFor("hello!", 2), "snapshot must match live input")
	assert.False(t, g.ValidFor("hello", 3), "epoch advance invalidates")

	g.Deactivate()
	assert.False(t, g.ValidFor("hello", 2))

	var none *GhostSuggestion
	assert.False(t, none.ValidFor("hello", 2))
}

func TestPendingSuggestionRequest_Lifecycle(t *testing.T) {
	req := &PendingSuggestionRequest{CorrelationID: "a"}
	assert.True(t, req.Live())

	req.Cancel()
	assert.True(t, req.Cancelled())
	assert.False(t, req.Live())

	other := &PendingSuggestionRequest{CorrelationID: "b"}
	other.Resolve()
	assert.False(t, other.Live())
	assert.False(t, other.Cancelled())
}

func TestDisplayable(t *testing.T) {
	assert.False(t, Displayable("", "abc"))
	assert.False(t, Displayable("   ", "abc"))
	assert.False(t, Displayable("same", "same"))
	assert.True(t, Displayable("same text, longer", "same"))
}
