package port

import (
	"context"

	"github.com/bnema/gregify/internal/domain/entity"
)

// OverlayRenderer draws the non-interactive ghost text preview.
type OverlayRenderer interface {
	// Show displays text anchored at the caret position.
	Show(ctx context.Context, text string, anchor entity.CursorOffset) error

	// Hide removes the preview. Hiding an absent preview is a no-op.
	Hide(ctx context.Context)
}
