package usecase

import (
	"context"

	"github.com/bnema/gregify/internal/application/port"
	"github.com/bnema/gregify/internal/domain/entity"
	"github.com/bnema/gregify/internal/logging"
)

// Resolution is a located editable surface.
type Resolution struct {
	Element   port.Element
	Kind      entity.SurfaceKind
	Candidate string // candidate name, or entity.DeepScanSelector
	Selector  string
	DeepScan  bool
}

// ResolveSurfaceUseCase finds the editable surface of a host page.
type ResolveSurfaceUseCase struct {
	specs []entity.SurfaceCandidateSpec
}

// NewResolveSurfaceUseCase creates a resolver over specs, tried in order.
// An empty list selects the built-in candidates.
func NewResolveSurfaceUseCase(specs []entity.SurfaceCandidateSpec) *ResolveSurfaceUseCase {
	if len(specs) == 0 {
		specs = entity.DefaultCandidateSpecs()
	}
	owned := make([]entity.SurfaceCandidateSpec, len(specs))
	copy(owned, specs)
	return &ResolveSurfaceUseCase{specs: owned}
}

// Specs returns a copy of the candidate list.
func (uc *ResolveSurfaceUseCase) Specs() []entity.SurfaceCandidateSpec {
	out := make([]entity.SurfaceCandidateSpec, len(uc.specs))
	copy(out, uc.specs)
	return out
}

// Resolve returns the first element matching a candidate in priority order.
// When every candidate misses and allowDeepScan is set, it falls back to the
// first element in document order that carries editable markers.
// Resolve never mutates the document.
func (uc *ResolveSurfaceUseCase) Resolve(ctx context.Context, doc port.Document, allowDeepScan bool) (*Resolution, bool) {
	log := logging.FromContext(ctx)

	for _, spec := range uc.specs {
		el, err := doc.QuerySelector(spec.Selector)
		if err != nil {
			log.Debug().Err(err).Str("candidate", spec.Name).Msg("skipping invalid candidate selector")
			continue
		}
		if el == nil {
			continue
		}
		return &Resolution{
			Element:   el,
			Kind:      entity.ClassifySurface(el.TagName()),
			Candidate: spec.Name,
			Selector:  spec.Selector,
		}, true
	}

	if !allowDeepScan {
		return nil, false
	}

	var found port.Element
	doc.Walk(func(el port.Element) bool {
		if entity.IsEditableMarker(el) {
			found = el
			return false
		}
		return true
	})
	if found == nil {
		return nil, false
	}

	log.Debug().Str("tag", found.TagName()).Msg("surface found by deep scan")
	return &Resolution{
		Element:   found,
		Kind:      entity.ClassifySurface(found.TagName()),
		Candidate: entity.DeepScanSelector,
		Selector:  entity.DeepScanSelector,
		DeepScan:  true,
	}, true
}
