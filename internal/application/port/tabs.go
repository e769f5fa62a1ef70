package port

import (
	"context"

	"github.com/bnema/gregify/internal/domain/entity"
)

// TabMessenger lets the background reach host tabs.
type TabMessenger interface {
	// ActiveTab returns the focused host tab, nil when there is none.
	ActiveTab(ctx context.Context) (*entity.Tab, error)

	// SendToTab sends a request to the engine of a tab and decodes its reply into out.
	SendToTab(ctx context.Context, id entity.TabID, action string, payload, out any) error

	// ExecInTab runs fn against the tab's document on the tab's loop,
	// bypassing its engine.
	ExecInTab(ctx context.Context, id entity.TabID, fn func(doc Document) error) error
}
