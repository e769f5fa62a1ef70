package usecase

import (
	"context"

	"github.com/bnema/gregify/internal/application/port"
	"github.com/bnema/gregify/internal/domain/entity"
	"github.com/bnema/gregify/internal/logging"
)

// BindListener is told about a newly bound surface.
type BindListener func(ctx context.Context, bound entity.BoundSurface, surface port.SurfaceAdapter)

// UnbindListener is told that the binding at the previous epoch is gone.
// epoch is the new, already incremented epoch.
type UnbindListener func(ctx context.Context, epoch entity.BindingEpoch)

// BatchListener sees every mutation batch that leaves the binding intact.
type BatchListener func(ctx context.Context, batch port.MutationBatch)

// WatchSurfaceUseCase keeps an engine bound to the host page's editable
// surface. It is the only writer of the binding and its epoch, and it only
// re-resolves in response to observed mutations or an explicit Invalidate.
type WatchSurfaceUseCase struct {
	doc      port.Document
	resolver *ResolveSurfaceUseCase
	sched    port.Scheduler
	deepScan bool

	state   entity.BindingState
	epoch   entity.BindingEpoch
	bound   *entity.BoundSurface
	surface port.SurfaceAdapter

	// deepScanSpent is set once the fallback scan ran for the current batch.
	deepScanSpent bool
	lastBatch     uint64

	onBind   []BindListener
	onUnbind []UnbindListener
	onBatch  []BatchListener

	ctx        context.Context
	disconnect func()
}

// NewWatchSurfaceUseCase creates a watchdog for doc. deepScan enables the
// structural fallback, at most once per mutation batch.
func NewWatchSurfaceUseCase(
	doc port.Document,
	resolver *ResolveSurfaceUseCase,
	sched port.Scheduler,
	deepScan bool,
) *WatchSurfaceUseCase {
	return &WatchSurfaceUseCase{
		doc:      doc,
		resolver: resolver,
		sched:    sched,
		deepScan: deepScan,
		state:    entity.BindingUnbound,
	}
}

// OnBind registers a listener for UNBOUND to BOUND transitions.
func (uc *WatchSurfaceUseCase) OnBind(fn BindListener) {
	uc.onBind = append(uc.onBind, fn)
}

// OnUnbind registers a listener for BOUND to UNBOUND transitions.
func (uc *WatchSurfaceUseCase) OnUnbind(fn UnbindListener) {
	uc.onUnbind = append(uc.onUnbind, fn)
}

// OnBatch registers a listener for batches observed while BOUND.
func (uc *WatchSurfaceUseCase) OnBatch(fn BatchListener) {
	uc.onBatch = append(uc.onBatch, fn)
}

// Start performs the initial resolution and begins observing mutations.
// It reports whether a surface was bound.
func (uc *WatchSurfaceUseCase) Start(ctx context.Context) bool {
	uc.ctx = logging.WithComponent(ctx, "watchdog")
	if uc.disconnect == nil {
		uc.disconnect = uc.doc.Observe(func(batch port.MutationBatch) {
			uc.HandleBatch(uc.ctx, batch)
		})
	}
	if uc.state == entity.BindingBound {
		return true
	}
	return uc.resolve(uc.ctx)
}

// Stop ends mutation observation. The binding is left as is.
func (uc *WatchSurfaceUseCase) Stop() {
	if uc.disconnect != nil {
		uc.disconnect()
		uc.disconnect = nil
	}
}

// State returns the watchdog state.
func (uc *WatchSurfaceUseCase) State() entity.BindingState {
	return uc.state
}

// Epoch returns the current binding epoch.
func (uc *WatchSurfaceUseCase) Epoch() entity.BindingEpoch {
	return uc.epoch
}

// Bound returns the current binding, if any.
func (uc *WatchSurfaceUseCase) Bound() (entity.BoundSurface, bool) {
	if uc.bound == nil {
		return entity.BoundSurface{}, false
	}
	return *uc.bound, true
}

// Current returns the adapter for the bound surface and the epoch it was
// bound at. ok is false while unbound.
func (uc *WatchSurfaceUseCase) Current() (port.SurfaceAdapter, entity.BindingEpoch, bool) {
	if uc.state != entity.BindingBound || uc.surface == nil {
		return nil, uc.epoch, false
	}
	return uc.surface, uc.epoch, true
}

// HandleBatch reacts to one batch of host mutations.
func (uc *WatchSurfaceUseCase) HandleBatch(ctx context.Context, batch port.MutationBatch) {
	if batch.Seq != uc.lastBatch {
		uc.lastBatch = batch.Seq
		uc.deepScanSpent = false
	}

	switch uc.state {
	case entity.BindingBound:
		if uc.bound != nil && uc.surface.Element().IsConnected() {
			for _, fn := range uc.onBatch {
				fn(ctx, batch)
			}
			return
		}
		logging.FromContext(ctx).Debug().Uint64("batch", batch.Seq).Msg("bound surface detached")
		uc.unbind(ctx)
		uc.resolve(ctx)
	case entity.BindingUnbound:
		uc.resolve(ctx)
	}
}

// Invalidate drops the current binding after a failed write and resolves
// again immediately instead of retrying the same node.
func (uc *WatchSurfaceUseCase) Invalidate(ctx context.Context) {
	if uc.state == entity.BindingBound {
		logging.FromContext(ctx).Debug().Msg("binding invalidated after write failure")
		uc.unbind(ctx)
	}
	uc.resolve(ctx)
}

func (uc *WatchSurfaceUseCase) unbind(ctx context.Context) {
	uc.state = entity.BindingRebinding
	uc.bound = nil
	uc.surface = nil
	uc.epoch++

	ctx = logging.WithEpoch(ctx, uint64(uc.epoch))
	for _, fn := range uc.onUnbind {
		fn(ctx, uc.epoch)
	}
	uc.state = entity.BindingUnbound
}

func (uc *WatchSurfaceUseCase) resolve(ctx context.Context) bool {
	allowDeepScan := uc.deepScan && !uc.deepScanSpent
	res, ok := uc.resolver.Resolve(ctx, uc.doc, allowDeepScan)
	if allowDeepScan && (!ok || res.DeepScan) {
		uc.deepScanSpent = true
	}
	if !ok {
		uc.state = entity.BindingUnbound
		return false
	}

	surface, err := uc.doc.Surface(res.Element, res.Kind)
	if err != nil {
		logging.FromContext(ctx).Warn().Err(err).Msg("cannot adapt resolved surface")
		uc.state = entity.BindingUnbound
		return false
	}

	uc.bound = &entity.BoundSurface{
		Element:  res.Element,
		Kind:     res.Kind,
		Epoch:    uc.epoch,
		Selector: res.Selector,
		BoundAt:  uc.sched.Now(),
	}
	uc.surface = surface
	uc.state = entity.BindingBound

	ctx = logging.WithEpoch(ctx, uint64(uc.epoch))
	logging.FromContext(ctx).Debug().
		Str("candidate", res.Candidate).
		Str("kind", string(res.Kind)).
		Msg("surface bound")
	for _, fn := range uc.onBind {
		fn(ctx, *uc.bound, surface)
	}
	return true
}
