// Package entity holds the domain types of the text-injection engine.
package entity

import (
	"strings"
	"time"
)

// SurfaceKind tells the adapter which write mechanism an editable surface needs.
type SurfaceKind string

const (
	// SurfaceKindPlain is a form control (textarea, input) written through its value.
	SurfaceKindPlain SurfaceKind = "plain"
	// SurfaceKindRich is an editable region written through its text content.
	SurfaceKindRich SurfaceKind = "rich"
)

// ClassifySurface returns the kind of surface for an element tag name.
func ClassifySurface(tag string) SurfaceKind {
	switch strings.ToLower(tag) {
	case "textarea", "input":
		return SurfaceKindPlain
	default:
		return SurfaceKindRich
	}
}

// BindingEpoch counts surface rebinds. Any suggestion state created under an
// older epoch is stale.
type BindingEpoch uint64

// BindingState is the Mutation Watchdog state.
type BindingState string

const (
	BindingUnbound   BindingState = "UNBOUND"
	BindingBound     BindingState = "BOUND"
	BindingRebinding BindingState = "REBINDING"
)

// BoundSurface is the editable surface currently adopted by an engine.
// Element is the opaque document node handle; its concrete type belongs to the
// document implementation.
type BoundSurface struct {
	Element  any
	Kind     SurfaceKind
	Epoch    BindingEpoch
	Selector string // candidate selector or "deep-scan"
	BoundAt  time.Time
}

// CursorOffset locates the caret inside a surface's text.
// Line and Column are zero-based and counted in runes.
type CursorOffset struct {
	Line   int
	Column int
}

// CursorOffsetAt computes the caret position for a rune offset into text.
// Offsets outside the text are clamped.
func CursorOffsetAt(text string, offset int) CursorOffset {
	runes := []rune(text)
	if offset < 0 {
		offset = 0
	}
	if offset > len(runes) {
		offset = len(runes)
	}

	var pos CursorOffset
	for _, r := range runes[:offset] {
		if r == '\n' {
			pos.Line++
			pos.Column = 0
			continue
		}
		pos.Column++
	}
	return pos
}
