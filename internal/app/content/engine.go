// Package content runs the text-injection engine inside one host document.
package content

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/bnema/gregify/internal/application/port"
	"github.com/bnema/gregify/internal/application/usecase"
	"github.com/bnema/gregify/internal/domain/entity"
	"github.com/bnema/gregify/internal/infrastructure/config"
	"github.com/bnema/gregify/internal/infrastructure/dom"
	"github.com/bnema/gregify/internal/infrastructure/relay"
	"github.com/bnema/gregify/internal/logging"
)

// ErrNotStarted is returned by loop hops on an engine that was stopped or
// never started.
var ErrNotStarted = errors.New("content engine is not running")

// Options holds everything an engine reads from configuration.
type Options struct {
	Suggest    usecase.SuggestConfig
	Inject     usecase.InjectConfig
	Candidates []entity.SurfaceCandidateSpec
	DeepScan   bool
}

// DefaultOptions returns the built-in engine settings.
func DefaultOptions() Options {
	return Options{
		Suggest:    usecase.DefaultSuggestConfig(),
		Inject:     usecase.InjectConfig{SubmitSelectors: config.DefaultSubmitSelectors()},
		Candidates: entity.DefaultCandidateSpecs(),
		DeepScan:   true,
	}
}

// OptionsFromConfig maps the loaded configuration onto engine options.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		Suggest: usecase.SuggestConfig{
			Enabled:   cfg.Suggestion.Enabled,
			Debounce:  cfg.Suggestion.Debounce(),
			MinLength: cfg.Suggestion.MinLength,
			AcceptKey: cfg.Suggestion.AcceptKey,
		},
		Inject: usecase.InjectConfig{
			AutoSubmit:      cfg.Injection.AutoSubmit,
			SubmitSelectors: cfg.Injection.SubmitSelectors,
		},
		Candidates: cfg.Surface.Candidates,
		DeepScan:   cfg.Surface.DeepScan,
	}
}

// Engine is the content-side engine of one document. It owns the watchdog,
// the suggestion pipeline, the ghost overlay and the injection path, and
// answers relay requests addressed to the page.
//
// Start, Stop, Configure and the accessors must be called on the loop the
// document was created with. Relay handlers hop onto that loop themselves.
type Engine struct {
	doc      *dom.Document
	sched    port.Scheduler
	endpoint *relay.Endpoint
	overlay  *dom.GhostOverlay

	watch   *usecase.WatchSurfaceUseCase
	ghost   *usecase.GhostTextUseCase
	suggest *usecase.SuggestUseCase
	inject  *usecase.InjectPromptUseCase

	ctx     context.Context
	removes []func()

	mu      sync.Mutex
	running bool
}

// New composes an engine over doc. Nothing observes the page until Start.
func New(doc *dom.Document, sched port.Scheduler, endpoint *relay.Endpoint, opts Options) *Engine {
	e := &Engine{
		doc:      doc,
		sched:    sched,
		endpoint: endpoint,
		overlay:  dom.NewGhostOverlay(doc),
	}

	resolver := usecase.NewResolveSurfaceUseCase(opts.Candidates)
	e.watch = usecase.NewWatchSurfaceUseCase(doc, resolver, sched, opts.DeepScan)
	e.ghost = usecase.NewGhostTextUseCase(e.overlay)
	e.suggest = usecase.NewSuggestUseCase(
		opts.Suggest, sched, NewSuggestionRelay(endpoint), e.watch, e.ghost, endpoint.NewID,
	)
	e.inject = usecase.NewInjectPromptUseCase(doc, sched, e.watch, e.suggest, opts.Inject)

	e.watch.OnBind(func(ctx context.Context, bound entity.BoundSurface, _ port.SurfaceAdapter) {
		logging.FromContext(logging.WithEpoch(ctx, uint64(bound.Epoch))).Info().
			Str("selector", bound.Selector).
			Str("kind", string(bound.Kind)).
			Msg("surface bound")
	})
	e.watch.OnUnbind(func(ctx context.Context, epoch entity.BindingEpoch) {
		logging.FromContext(logging.WithEpoch(ctx, uint64(epoch))).Debug().Msg("surface lost")
		e.suggest.OnRebind(ctx)
	})
	e.watch.OnBatch(func(ctx context.Context, _ port.MutationBatch) {
		e.suggest.Revalidate(ctx)
	})
	return e
}

// Start attaches listeners, performs the initial resolution, registers the
// relay handlers and announces the engine to the background.
func (e *Engine) Start(ctx context.Context) {
	e.mu.Lock()
	if e.running {
		e.mu.Unlock()
		return
	}
	e.running = true
	e.mu.Unlock()

	e.ctx = logging.WithComponent(ctx, "engine")

	e.removes = append(e.removes,
		e.doc.AddEventListener(nil, "input", e.onInput),
		e.doc.AddEventListener(nil, "keydown", e.onKeyDown),
		e.doc.AddEventListener(nil, "blur", e.onBlur),
		e.doc.AddEventListener(nil, "change", e.onValueSignal),
		e.doc.AddEventListener(nil, "focus", e.onValueSignal),
	)
	if !e.watch.Start(e.ctx) {
		logging.FromContext(e.ctx).Debug().Msg("no editable surface yet, watching for one")
	}

	e.endpoint.Handle(entity.ActionInjectPrompt, e.handleInjection)
	e.endpoint.Handle(entity.ActionPopulatePrompt, e.handleInjection)

	announce := entity.ContentScriptLoaded{URL: e.doc.URL()}
	go func() {
		if err := e.endpoint.Notify(e.ctx, entity.ActionContentScriptLoaded, announce); err != nil {
			logging.FromContext(e.ctx).Debug().Err(err).Msg("engine announcement not delivered")
		}
	}()
}

// Stop detaches listeners and stops observing the page. Outstanding
// suggestion work is dropped.
func (e *Engine) Stop() {
	e.mu.Lock()
	if !e.running {
		e.mu.Unlock()
		return
	}
	e.running = false
	e.mu.Unlock()

	for _, remove := range e.removes {
		remove()
	}
	e.removes = nil
	e.watch.Stop()
	e.suggest.OnRebind(e.ctx)
}

// Configure applies new settings to the pipeline and injection path.
// Candidates and deep scan are fixed for the lifetime of the engine.
func (e *Engine) Configure(opts Options) {
	ctx := e.ctx
	if ctx == nil {
		ctx = context.Background()
	}
	e.suggest.Configure(ctx, opts.Suggest)
	e.inject.Configure(opts.Inject)
}

// Inject writes text into the bound surface from the loop.
func (e *Engine) Inject(text string) entity.InjectionResult {
	return e.inject.Execute(e.ctx, text)
}

// State returns the suggestion pipeline state.
func (e *Engine) State() entity.PipelineState {
	return e.suggest.State()
}

// Binding returns the watchdog state and epoch.
func (e *Engine) Binding() (entity.BindingState, entity.BindingEpoch) {
	return e.watch.State(), e.watch.Epoch()
}

// Bound returns the current binding, if any.
func (e *Engine) Bound() (entity.BoundSurface, bool) {
	return e.watch.Bound()
}

// Ghost returns the shown suggestion, nil when nothing is shown.
func (e *Engine) Ghost() *entity.GhostSuggestion {
	return e.ghost.Active()
}

// Overlay returns the page overlay used for ghost text.
func (e *Engine) Overlay() *dom.GhostOverlay {
	return e.overlay
}

// Issued returns how many suggestion requests the engine sent.
func (e *Engine) Issued() int {
	return e.suggest.Issued()
}

// Document returns the page the engine runs in.
func (e *Engine) Document() *dom.Document {
	return e.doc
}

func (e *Engine) boundTarget(ev *port.Event) (port.SurfaceAdapter, bool) {
	surface, _, ok := e.watch.Current()
	if !ok || ev.Target == nil || ev.Target != surface.Element() {
		return nil, false
	}
	return surface, true
}

func (e *Engine) onInput(ev *port.Event) {
	if ev.Synthetic {
		return
	}
	surface, ok := e.boundTarget(ev)
	if !ok {
		return
	}
	e.suggest.OnInput(e.ctx, surface.Read())
}

func (e *Engine) onKeyDown(ev *port.Event) {
	if _, ok := e.boundTarget(ev); !ok {
		return
	}
	if e.suggest.OnKey(e.ctx, ev.Key) {
		ev.PreventDefault()
	}
}

func (e *Engine) onBlur(ev *port.Event) {
	if _, ok := e.boundTarget(ev); !ok {
		return
	}
	e.suggest.OnBlur(e.ctx)
}

// onValueSignal catches host value changes that produce no mutation.
func (e *Engine) onValueSignal(ev *port.Event) {
	if _, ok := e.boundTarget(ev); !ok {
		return
	}
	e.suggest.Revalidate(e.ctx)
}

func (e *Engine) handleInjection(ctx context.Context, payload json.RawMessage) (any, error) {
	var cmd entity.InjectionCommand
	if len(payload) > 0 {
		if err := json.Unmarshal(payload, &cmd); err != nil {
			return nil, fmt.Errorf("decode injection command: %w", err)
		}
	}

	var result entity.InjectionResult
	err := e.onLoop(ctx, func() {
		result = e.inject.Execute(ctx, cmd.Body())
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// onLoop runs fn on the engine's loop and waits for it.
func (e *Engine) onLoop(ctx context.Context, fn func()) error {
	e.mu.Lock()
	running := e.running
	e.mu.Unlock()
	if !running {
		return ErrNotStarted
	}

	done := make(chan struct{})
	e.sched.Post(func() {
		defer close(done)
		fn()
	})
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
