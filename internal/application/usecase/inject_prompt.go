package usecase

import (
	"context"
	"errors"

	"github.com/bnema/gregify/internal/application/port"
	"github.com/bnema/gregify/internal/domain/entity"
	"github.com/bnema/gregify/internal/logging"
)

// SuggestionAdopter lets the pipeline learn about externally written text.
type SuggestionAdopter interface {
	Adopt(ctx context.Context, text string)
}

// InjectConfig controls the optional submit after an injection.
type InjectConfig struct {
	AutoSubmit      bool
	SubmitSelectors []string
}

// InjectPromptUseCase writes externally supplied text into the bound surface,
// whatever the suggestion pipeline is doing.
type InjectPromptUseCase struct {
	doc     port.Document
	sched   port.Scheduler
	binding SurfaceBinding
	adopter SuggestionAdopter
	cfg     InjectConfig
}

// NewInjectPromptUseCase creates the injection path of an engine.
func NewInjectPromptUseCase(
	doc port.Document,
	sched port.Scheduler,
	binding SurfaceBinding,
	adopter SuggestionAdopter,
	cfg InjectConfig,
) *InjectPromptUseCase {
	return &InjectPromptUseCase{
		doc:     doc,
		sched:   sched,
		binding: binding,
		adopter: adopter,
		cfg:     cfg,
	}
}

// Configure replaces the submit settings.
func (uc *InjectPromptUseCase) Configure(cfg InjectConfig) {
	uc.cfg = cfg
}

// Execute writes text and dispatches change signals. A detached surface
// triggers re-resolution and reports failure; the same node is never retried.
func (uc *InjectPromptUseCase) Execute(ctx context.Context, text string) entity.InjectionResult {
	log := logging.FromContext(ctx)

	if text == "" {
		log.Debug().Msg("ignoring empty injection")
		return entity.InjectionResult{Success: false}
	}

	surface, _, ok := uc.binding.Current()
	if !ok {
		uc.binding.Invalidate(ctx)
		if surface, _, ok = uc.binding.Current(); !ok {
			log.Warn().Msg("injection failed: no editable surface")
			return entity.InjectionResult{Success: false}
		}
	}

	if uc.adopter != nil {
		uc.adopter.Adopt(ctx, text)
	}
	if err := surface.Write(text); err != nil {
		log.Warn().Err(err).Msg("injection write failed")
		uc.binding.Invalidate(ctx)
		return entity.InjectionResult{Success: false}
	}
	if err := surface.EmitChangeSignals(); err != nil {
		log.Warn().Err(err).Msg("injection change signals failed")
		uc.binding.Invalidate(ctx)
		return entity.InjectionResult{Success: false}
	}

	if uc.cfg.AutoSubmit {
		uc.sched.Post(func() { uc.submit(ctx) })
	}
	log.Info().Int("chars", len(text)).Msg("prompt injected")
	return entity.InjectionResult{Success: true}
}

func (uc *InjectPromptUseCase) submit(ctx context.Context) {
	log := logging.FromContext(ctx)
	for _, sel := range uc.cfg.SubmitSelectors {
		el, err := uc.doc.QuerySelector(sel)
		if err != nil || el == nil {
			continue
		}
		if err := uc.doc.Click(el); err != nil {
			log.Debug().Err(err).Str("selector", sel).Msg("submit click failed")
			continue
		}
		log.Debug().Str("selector", sel).Msg("prompt submitted")
		return
	}
	log.Debug().Msg("no submit control found")
}

// ErrFallbackTargetMissing is returned when the direct-write target is absent.
var ErrFallbackTargetMissing = errors.New("fallback injection target not found")

// InjectDirect writes text into the first element matching selector without
// going through an engine. It is the last-resort delivery path.
func InjectDirect(ctx context.Context, doc port.Document, selector, text string) error {
	el, err := doc.QuerySelector(selector)
	if err != nil {
		return err
	}
	if el == nil {
		return ErrFallbackTargetMissing
	}
	surface, err := doc.Surface(el, entity.ClassifySurface(el.TagName()))
	if err != nil {
		return err
	}
	if err := surface.Write(text); err != nil {
		return err
	}
	if err := surface.EmitChangeSignals(); err != nil {
		return err
	}
	logging.FromContext(ctx).Debug().Str("selector", selector).Msg("prompt written directly")
	return nil
}
