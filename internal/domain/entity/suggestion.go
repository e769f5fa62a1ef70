package entity

import (
	"strings"
	"time"
	"unicode/utf8"
)

// PipelineState is the Suggestion Pipeline state.
type PipelineState string

const (
	PipelineIdle             PipelineState = "IDLE"
	PipelineDebouncing       PipelineState = "DEBOUNCING"
	PipelineAwaitingResponse PipelineState = "AWAITING_RESPONSE"
	PipelineShowing          PipelineState = "SHOWING"
)

// PendingSuggestionRequest is one outbound suggestion request.
type PendingSuggestionRequest struct {
	CorrelationID string
	Snapshot      string
	IssuedAt      time.Time
	Epoch         BindingEpoch

	cancelled bool
	resolved  bool
}

// Cancel marks the request superseded. Its eventual response is ignored.
func (r *PendingSuggestionRequest) Cancel() {
	if r != nil {
		r.cancelled = true
	}
}

// Cancelled reports whether the request was superseded.
func (r *PendingSuggestionRequest) Cancelled() bool {
	return r != nil && r.cancelled
}

// Resolve marks the request settled.
func (r *PendingSuggestionRequest) Resolve() {
	if r != nil {
		r.resolved = true
	}
}

// Live reports whether the request is neither cancelled nor resolved.
func (r *PendingSuggestionRequest) Live() bool {
	return r != nil && !r.cancelled && !r.resolved
}

// GhostSuggestion is a suggestion previewed as ghost text.
type GhostSuggestion struct {
	Text     string
	Snapshot string
	Epoch    BindingEpoch

	active bool
}

// NewGhostSuggestion creates an active suggestion computed against snapshot.
func NewGhostSuggestion(text, snapshot string, epoch BindingEpoch) *GhostSuggestion {
	return &GhostSuggestion{Text: text, Snapshot: snapshot, Epoch: epoch, active: true}
}

// Active reports whether the suggestion may still be shown.
func (g *GhostSuggestion) Active() bool {
	return g != nil && g.active
}

// Deactivate retires the suggestion.
func (g *GhostSuggestion) Deactivate() {
	if g != nil {
		g.active = false
	}
}

// ValidFor reports whether the suggestion may be shown or accepted against the
// live input at the current binding epoch.
func (g *GhostSuggestion) ValidFor(liveInput string, epoch BindingEpoch) bool {
	return g.Active() && g.Snapshot == liveInput && g.Epoch == epoch
}

// QualifiesForSuggestion reports whether input is long enough to ask for a
// suggestion. Length is counted in runes after trimming whitespace.
func QualifiesForSuggestion(input string, minLength int) bool {
	return utf8.RuneCountInString(strings.TrimSpace(input)) >= minLength
}

// Displayable reports whether a backend suggestion is worth showing for input.
func Displayable(suggestion, input string) bool {
	return strings.TrimSpace(suggestion) != "" && suggestion != input
}
