package usecase

import (
	"context"

	"github.com/bnema/gregify/internal/application/port"
	"github.com/bnema/gregify/internal/domain/entity"
)

// GhostTextUseCase owns the previewed suggestion and its overlay.
type GhostTextUseCase struct {
	renderer port.OverlayRenderer
	current  *entity.GhostSuggestion
}

// NewGhostTextUseCase creates a ghost text controller drawing with renderer.
func NewGhostTextUseCase(renderer port.OverlayRenderer) *GhostTextUseCase {
	return &GhostTextUseCase{renderer: renderer}
}

// Show previews s near anchor, replacing any previous suggestion.
func (uc *GhostTextUseCase) Show(ctx context.Context, s *entity.GhostSuggestion, anchor entity.CursorOffset) error {
	if uc.current != nil && uc.current != s {
		uc.current.Deactivate()
	}
	if err := uc.renderer.Show(ctx, s.Text, anchor); err != nil {
		s.Deactivate()
		uc.current = nil
		return err
	}
	uc.current = s
	return nil
}

// Hide retires the current suggestion and removes the overlay.
func (uc *GhostTextUseCase) Hide(ctx context.Context) {
	if uc.current == nil {
		return
	}
	uc.current.Deactivate()
	uc.current = nil
	uc.renderer.Hide(ctx)
}

// Active returns the shown suggestion, nil when nothing is shown.
func (uc *GhostTextUseCase) Active() *entity.GhostSuggestion {
	if !uc.current.Active() {
		return nil
	}
	return uc.current
}
