package port

import "github.com/bnema/gregify/internal/domain/entity"

// SurfaceAdapter normalizes read, write and event emission across surface kinds.
type SurfaceAdapter interface {
	Element() Element
	Kind() entity.SurfaceKind

	// Read returns the surface's current text.
	Read() string

	// Write replaces the surface's text using the kind's mechanism.
	Write(text string) error

	// EmitChangeSignals dispatches input, change and focus, in that order.
	EmitChangeSignals() error

	// LocateCursorOffset returns the caret position used to anchor ghost text.
	LocateCursorOffset() entity.CursorOffset
}
