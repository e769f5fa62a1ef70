package usecase_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bnema/gregify/internal/application/port"
	"github.com/bnema/gregify/internal/application/usecase"
	"github.com/bnema/gregify/internal/domain/entity"
	"github.com/bnema/gregify/internal/infrastructure/dom"
	"github.com/bnema/gregify/internal/infrastructure/mainloop"
)

// walkCounter counts deep scans.
type walkCounter struct {
	*dom.Document
	walks int
}

func (w *walkCounter) Walk(visit func(port.Element) bool) {
	w.walks++
	w.Document.Walk(visit)
}

func TestWatchSurfaceUseCase_BindsOnStart(t *testing.T) {
	f := newEngineFixture(t, chatPage)

	assert.Equal(t, entity.BindingBound, f.watch.State())
	assert.Equal(t, entity.BindingEpoch(0), f.watch.Epoch())

	bound, ok := f.watch.Bound()
	require.True(t, ok)
	assert.Equal(t, entity.SurfaceKindPlain, bound.Kind)
	assert.Equal(t, loopStart, bound.BoundAt)
	assert.Same(t, f.textarea(), bound.Element)
}

func TestWatchSurfaceUseCase_EpochIsMonotonicAcrossRebinds(t *testing.T) {
	f := newEngineFixture(t, chatPage)

	var unbinds []entity.BindingEpoch
	binds := 0
	f.watch.OnUnbind(func(_ context.Context, epoch entity.BindingEpoch) {
		unbinds = append(unbinds, epoch)
	})
	f.watch.OnBind(func(_ context.Context, b entity.BoundSurface, s port.SurfaceAdapter) {
		binds++
		assert.Equal(t, b.Element, s.Element())
	})

	for round := 1; round <= 3; round++ {
		require.NoError(t, f.doc.Remove(f.textarea()))
		f.loop.RunPending()
		assert.Equal(t, entity.BindingUnbound, f.watch.State(), "round %d", round)
		_, _, ok := f.watch.Current()
		assert.False(t, ok)

		_, err := f.doc.AppendHTML(f.doc.Body(), composerHTML)
		require.NoError(t, err)
		f.loop.RunPending()
		require.Equal(t, entity.BindingBound, f.watch.State(), "round %d", round)

		_, epoch, ok := f.watch.Current()
		require.True(t, ok)
		assert.Equal(t, entity.BindingEpoch(round), epoch)
	}

	assert.Equal(t, []entity.BindingEpoch{1, 2, 3}, unbinds)
	assert.Equal(t, 3, binds)
}

func TestWatchSurfaceUseCase_IgnoresUnrelatedMutations(t *testing.T) {
	f := newEngineFixture(t, chatPage)
	before, _ := f.watch.Bound()

	thread, err := f.doc.Find("#thread")
	require.NoError(t, err)
	_, err = f.doc.AppendHTML(thread, `<div class="message">hello</div>`)
	require.NoError(t, err)
	require.NoError(t, f.doc.SetAttr(thread, "data-busy", "true"))
	f.loop.RunPending()

	after, ok := f.watch.Bound()
	require.True(t, ok)
	assert.Equal(t, before, after)
	assert.Equal(t, entity.BindingEpoch(0), f.watch.Epoch())
}

func TestWatchSurfaceUseCase_DeepScanAtMostOncePerBatch(t *testing.T) {
	loop := mainloop.NewManual(loopStart)
	doc, err := dom.ParseString("https://chatgpt.com/", `<html><body><p>loading</p></body></html>`, loop.Post)
	require.NoError(t, err)
	counter := &walkCounter{Document: doc}

	watch := usecase.NewWatchSurfaceUseCase(counter, usecase.NewResolveSurfaceUseCase(nil), loop, true)
	assert.False(t, watch.Start(engineContext()))
	assert.Equal(t, 1, counter.walks)

	ctx := engineContext()
	watch.HandleBatch(ctx, port.MutationBatch{Seq: 7})
	watch.HandleBatch(ctx, port.MutationBatch{Seq: 7})
	watch.HandleBatch(ctx, port.MutationBatch{Seq: 7})
	assert.Equal(t, 2, counter.walks, "one scan for batch 7")

	watch.HandleBatch(ctx, port.MutationBatch{Seq: 8})
	assert.Equal(t, 3, counter.walks)
	assert.Equal(t, entity.BindingUnbound, watch.State())
}

func TestWatchSurfaceUseCase_DeepScanDisabled(t *testing.T) {
	loop := mainloop.NewManual(loopStart)
	doc, err := dom.ParseString("https://chatgpt.com/", `<html><body><div tabindex="0"></div></body></html>`, loop.Post)
	require.NoError(t, err)
	counter := &walkCounter{Document: doc}

	watch := usecase.NewWatchSurfaceUseCase(counter, usecase.NewResolveSurfaceUseCase(nil), loop, false)
	assert.False(t, watch.Start(engineContext()))
	assert.Zero(t, counter.walks)
}

func TestWatchSurfaceUseCase_BindsWhenSurfaceAppearsLater(t *testing.T) {
	loop := mainloop.NewManual(loopStart)
	doc, err := dom.ParseString("https://chatgpt.com/", `<html><body><main></main></body></html>`, loop.Post)
	require.NoError(t, err)

	watch := usecase.NewWatchSurfaceUseCase(doc, usecase.NewResolveSurfaceUseCase(nil), loop, true)
	require.False(t, watch.Start(engineContext()))

	loop.Advance(10 * time.Second)
	assert.Equal(t, entity.BindingUnbound, watch.State(), "no polling without mutations")

	_, err = doc.AppendHTML(doc.Body(), `<div id="prompt-textarea" contenteditable="true"></div>`)
	require.NoError(t, err)
	loop.RunPending()

	bound, ok := watch.Bound()
	require.True(t, ok)
	assert.Equal(t, entity.SurfaceKindRich, bound.Kind)
	assert.Equal(t, entity.BindingEpoch(0), bound.Epoch)
}

func TestWatchSurfaceUseCase_InvalidateRebindsElsewhere(t *testing.T) {
	f := newEngineFixture(t, chatPage)
	first := f.textarea()

	_, err := f.doc.AppendHTML(f.doc.Body(), `<textarea id="spare"></textarea>`)
	require.NoError(t, err)
	f.loop.RunPending()

	// Removal without a delivered batch: the watchdog only learns through Invalidate.
	require.NoError(t, f.doc.Remove(first))
	f.watch.Invalidate(f.ctx)

	bound, ok := f.watch.Bound()
	require.True(t, ok)
	spare, err := f.doc.Find("#spare")
	require.NoError(t, err)
	assert.Same(t, spare, bound.Element)
	assert.Equal(t, entity.BindingEpoch(1), bound.Epoch)
}

func TestWatchSurfaceUseCase_StopEndsObservation(t *testing.T) {
	f := newEngineFixture(t, chatPage)
	f.watch.Stop()

	require.NoError(t, f.doc.Remove(f.textarea()))
	f.loop.RunPending()

	assert.Equal(t, entity.BindingBound, f.watch.State())
}

func TestWatchSurfaceUseCase_BatchListenerSeesBoundBatches(t *testing.T) {
	f := newEngineFixture(t, chatPage)

	var seen []port.MutationKind
	f.watch.OnBatch(func(_ context.Context, b port.MutationBatch) {
		for _, rec := range b.Records {
			seen = append(seen, rec.Kind)
		}
	})

	require.NoError(t, f.doc.SetValue(f.textarea(), "cleared by the page"))
	f.loop.RunPending()
	assert.Equal(t, []port.MutationKind{port.MutationValue}, seen)

	require.NoError(t, f.doc.Remove(f.textarea()))
	f.loop.RunPending()
	assert.Len(t, seen, 1, "a batch that unbinds is not forwarded")
	assert.Equal(t, entity.BindingUnbound, f.watch.State())
}
