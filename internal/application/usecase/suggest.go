package usecase

import (
	"context"
	"time"

	"github.com/bnema/gregify/internal/application/port"
	"github.com/bnema/gregify/internal/domain/entity"
	"github.com/bnema/gregify/internal/logging"
)

const (
	// DefaultDebounce is the inactivity window before a request is issued.
	DefaultDebounce = 500 * time.Millisecond
	// DefaultMinLength is the minimum trimmed rune count worth a request.
	DefaultMinLength = 4
	// DefaultAcceptKey accepts a shown suggestion.
	DefaultAcceptKey = "Tab"
)

// SurfaceBinding is the read side of the watchdog used by the pipeline and
// the injection path.
type SurfaceBinding interface {
	Current() (port.SurfaceAdapter, entity.BindingEpoch, bool)
	Invalidate(ctx context.Context)
}

// SuggestConfig tunes the pipeline.
type SuggestConfig struct {
	Enabled   bool
	Debounce  time.Duration
	MinLength int
	AcceptKey string
}

// DefaultSuggestConfig returns the built-in pipeline settings.
func DefaultSuggestConfig() SuggestConfig {
	return SuggestConfig{
		Enabled:   true,
		Debounce:  DefaultDebounce,
		MinLength: DefaultMinLength,
		AcceptKey: DefaultAcceptKey,
	}
}

// SuggestUseCase is the suggestion pipeline of one engine:
// IDLE -> DEBOUNCING -> AWAITING_RESPONSE -> (IDLE | SHOWING).
// Every method must be called on the engine's loop.
type SuggestUseCase struct {
	cfg     SuggestConfig
	sched   port.Scheduler
	relay   port.SuggestionRelay
	binding SurfaceBinding
	ghost   *GhostTextUseCase
	newID   port.IDGenerator

	state     entity.PipelineState
	lastValue string
	timer     port.Timer
	pending   *entity.PendingSuggestionRequest
	issued    int
}

// NewSuggestUseCase creates a pipeline.
func NewSuggestUseCase(
	cfg SuggestConfig,
	sched port.Scheduler,
	relay port.SuggestionRelay,
	binding SurfaceBinding,
	ghost *GhostTextUseCase,
	newID port.IDGenerator,
) *SuggestUseCase {
	return &SuggestUseCase{
		cfg:     normalizeSuggestConfig(cfg),
		sched:   sched,
		relay:   relay,
		binding: binding,
		ghost:   ghost,
		newID:   newID,
		state:   entity.PipelineIdle,
	}
}

func normalizeSuggestConfig(cfg SuggestConfig) SuggestConfig {
	if cfg.Debounce <= 0 {
		cfg.Debounce = DefaultDebounce
	}
	if cfg.MinLength <= 0 {
		cfg.MinLength = DefaultMinLength
	}
	if cfg.AcceptKey == "" {
		cfg.AcceptKey = DefaultAcceptKey
	}
	return cfg
}

// Configure replaces the settings. Outstanding work is kept.
func (uc *SuggestUseCase) Configure(ctx context.Context, cfg SuggestConfig) {
	uc.cfg = normalizeSuggestConfig(cfg)
	if !uc.cfg.Enabled {
		uc.reset(ctx)
	}
}

// State returns the pipeline state.
func (uc *SuggestUseCase) State() entity.PipelineState {
	return uc.state
}

// LastValue returns the last recorded input.
func (uc *SuggestUseCase) LastValue() string {
	return uc.lastValue
}

// Pending returns the live request, nil when none is live.
func (uc *SuggestUseCase) Pending() *entity.PendingSuggestionRequest {
	if !uc.pending.Live() {
		return nil
	}
	return uc.pending
}

// Issued returns how many requests were sent.
func (uc *SuggestUseCase) Issued() int {
	return uc.issued
}

// OnInput records text and restarts the debounce window when it changed.
func (uc *SuggestUseCase) OnInput(ctx context.Context, text string) {
	if !uc.cfg.Enabled || text == uc.lastValue {
		return
	}
	uc.lastValue = text
	uc.cancelOutstanding(ctx)

	_, epoch, ok := uc.binding.Current()
	if !ok {
		uc.state = entity.PipelineIdle
		return
	}

	uc.state = entity.PipelineDebouncing
	uc.timer = uc.sched.AfterFunc(uc.cfg.Debounce, func() {
		uc.fire(ctx, text, epoch)
	})
}

// OnKey handles a keydown on the bound surface. It reports whether the key
// was consumed by accepting a suggestion.
func (uc *SuggestUseCase) OnKey(ctx context.Context, key string) bool {
	if key != uc.cfg.AcceptKey {
		uc.dismiss(ctx)
		return false
	}

	g := uc.ghost.Active()
	if uc.state != entity.PipelineShowing || g == nil {
		return false
	}

	surface, epoch, ok := uc.binding.Current()
	if !ok || !g.ValidFor(surface.Read(), epoch) {
		uc.dismiss(ctx)
		return false
	}

	uc.ghost.Hide(ctx)
	uc.state = entity.PipelineIdle
	// Recorded first so the synthetic input event is not re-suggested.
	uc.lastValue = g.Text

	if err := surface.Write(g.Text); err != nil {
		logging.FromContext(ctx).Debug().Err(err).Msg("accepting suggestion failed")
		uc.binding.Invalidate(ctx)
		return false
	}
	if err := surface.EmitChangeSignals(); err != nil {
		logging.FromContext(ctx).Debug().Err(err).Msg("change signals after accept failed")
		uc.binding.Invalidate(ctx)
	}
	return true
}

// OnBlur hides the preview without writing.
func (uc *SuggestUseCase) OnBlur(ctx context.Context) {
	uc.dismiss(ctx)
}

// OnRebind drops all state tied to the previous binding epoch.
func (uc *SuggestUseCase) OnRebind(ctx context.Context) {
	uc.reset(ctx)
	uc.lastValue = ""
}

// Revalidate hides a preview whose snapshot no longer matches the live
// surface text or binding epoch. The live text becomes the baseline so the
// host's own change is not suggested upon.
func (uc *SuggestUseCase) Revalidate(ctx context.Context) {
	g := uc.ghost.Active()
	if g == nil {
		return
	}
	surface, epoch, ok := uc.binding.Current()
	if ok && g.ValidFor(surface.Read(), epoch) {
		return
	}
	uc.dismiss(ctx)
	if ok {
		uc.lastValue = surface.Read()
	}
}

// Adopt records text written by an injection so it is not suggested upon.
func (uc *SuggestUseCase) Adopt(ctx context.Context, text string) {
	uc.reset(ctx)
	uc.lastValue = text
}

func (uc *SuggestUseCase) reset(ctx context.Context) {
	uc.cancelOutstanding(ctx)
	uc.state = entity.PipelineIdle
}

func (uc *SuggestUseCase) dismiss(ctx context.Context) {
	if uc.ghost.Active() == nil {
		return
	}
	uc.ghost.Hide(ctx)
	if uc.state == entity.PipelineShowing {
		uc.state = entity.PipelineIdle
	}
}

func (uc *SuggestUseCase) cancelOutstanding(ctx context.Context) {
	if uc.timer != nil {
		uc.timer.Stop()
		uc.timer = nil
	}
	if uc.pending != nil {
		uc.pending.Cancel()
		uc.pending = nil
	}
	uc.ghost.Hide(ctx)
}

func (uc *SuggestUseCase) fire(ctx context.Context, text string, epoch entity.BindingEpoch) {
	uc.timer = nil
	log := logging.FromContext(ctx)

	_, current, ok := uc.binding.Current()
	if !ok || current != epoch {
		uc.state = entity.PipelineIdle
		return
	}
	if !entity.QualifiesForSuggestion(text, uc.cfg.MinLength) {
		log.Trace().Int("len", len(text)).Msg("input below suggestion threshold")
		uc.state = entity.PipelineIdle
		return
	}

	if uc.pending != nil {
		uc.pending.Cancel()
	}
	req := &entity.PendingSuggestionRequest{
		CorrelationID: uc.newID(),
		Snapshot:      text,
		IssuedAt:      uc.sched.Now(),
		Epoch:         epoch,
	}
	uc.pending = req
	uc.state = entity.PipelineAwaitingResponse
	uc.issued++

	reqCtx := logging.WithCorrelationID(ctx, req.CorrelationID)
	logging.FromContext(reqCtx).Debug().Msg("requesting suggestion")

	id := req.CorrelationID
	go func() {
		resp, err := uc.relay.RequestSuggestion(reqCtx, id, entity.SuggestionRequest{InputText: text})
		uc.sched.Post(func() {
			uc.settle(reqCtx, req, resp, err)
		})
	}()
}

func (uc *SuggestUseCase) settle(
	ctx context.Context,
	req *entity.PendingSuggestionRequest,
	resp entity.SuggestionResponse,
	err error,
) {
	log := logging.FromContext(ctx)

	if req != uc.pending || !req.Live() {
		log.Debug().Msg("discarding response for superseded request")
		return
	}
	req.Resolve()
	uc.pending = nil
	uc.state = entity.PipelineIdle

	if err != nil {
		log.Debug().Err(err).Msg("suggestion unavailable")
		return
	}

	surface, epoch, ok := uc.binding.Current()
	if !ok || epoch != req.Epoch {
		log.Debug().Msg("discarding response from previous binding")
		return
	}
	live := surface.Read()
	if !resp.Success || live != req.Snapshot || !entity.Displayable(resp.SuggestionText, live) {
		return
	}

	g := entity.NewGhostSuggestion(resp.SuggestionText, req.Snapshot, req.Epoch)
	if err := uc.ghost.Show(ctx, g, surface.LocateCursorOffset()); err != nil {
		log.Debug().Err(err).Msg("ghost overlay unavailable")
		return
	}
	uc.state = entity.PipelineShowing
}
