package usecase_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/bnema/gregify/internal/application/port/mocks"
	"github.com/bnema/gregify/internal/application/usecase"
	"github.com/bnema/gregify/internal/domain/entity"
	"github.com/bnema/gregify/internal/infrastructure/dom"
	"github.com/bnema/gregify/internal/infrastructure/mainloop"
	"github.com/bnema/gregify/internal/logging"
)

const settleTimeout = 2 * time.Second

var loopStart = time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)

const chatPage = `<!doctype html><html><body>
<main id="thread"></main>
<form id="composer">
  <textarea id="prompt-textarea" data-id="prompt-textarea"></textarea>
  <button data-testid="send-button" type="submit">Send</button>
</form>
</body></html>`

const composerHTML = `<form id="composer"><textarea id="prompt-textarea" data-id="prompt-textarea"></textarea></form>`

func engineContext() context.Context {
	return logging.WithContext(context.Background(), zerolog.Nop())
}

// engineFixture wires the engine use cases over a real document and a
// virtual-clock loop, with the relay mocked.
type engineFixture struct {
	t       *testing.T
	ctx     context.Context
	loop    *mainloop.Manual
	doc     *dom.Document
	overlay *dom.GhostOverlay
	relay   *mocks.MockSuggestionRelay
	watch   *usecase.WatchSurfaceUseCase
	ghost   *usecase.GhostTextUseCase
	suggest *usecase.SuggestUseCase
	ids     int
}

func newEngineFixture(t *testing.T, page string) *engineFixture {
	t.Helper()
	f := &engineFixture{t: t, ctx: engineContext()}
	f.loop = mainloop.NewManual(loopStart)

	doc, err := dom.ParseString("https://chatgpt.com/", page, f.loop.Post)
	require.NoError(t, err)
	f.doc = doc
	f.overlay = dom.NewGhostOverlay(doc)
	f.relay = mocks.NewMockSuggestionRelay(t)

	resolver := usecase.NewResolveSurfaceUseCase(nil)
	f.watch = usecase.NewWatchSurfaceUseCase(doc, resolver, f.loop, true)
	f.ghost = usecase.NewGhostTextUseCase(f.overlay)
	f.suggest = usecase.NewSuggestUseCase(
		usecase.DefaultSuggestConfig(), f.loop, f.relay, f.watch, f.ghost, f.nextID,
	)
	f.watch.OnUnbind(func(ctx context.Context, _ entity.BindingEpoch) {
		f.suggest.OnRebind(ctx)
	})
	f.watch.Start(f.ctx)
	return f
}

func (f *engineFixture) nextID() string {
	f.ids++
	return fmtID(f.ids)
}

func (f *engineFixture) textarea() *dom.Element {
	f.t.Helper()
	el, err := f.doc.Find("#prompt-textarea")
	require.NoError(f.t, err)
	require.NotNil(f.t, el)
	return el
}

// typeText simulates the user typing and the engine's input listener.
func (f *engineFixture) typeText(text string) {
	f.t.Helper()
	require.NoError(f.t, f.doc.Type(f.textarea(), text))
	f.suggest.OnInput(f.ctx, text)
}

// settle waits for the outstanding relay response to be handled.
func (f *engineFixture) settle() {
	f.t.Helper()
	ok := f.loop.RunUntil(func() bool {
		return f.suggest.State() != entity.PipelineAwaitingResponse
	}, settleTimeout)
	require.True(f.t, ok, "response never settled")
}

// waitTask waits until at least one task posted from another goroutine ran.
func (f *engineFixture) waitTask(before uint64) {
	f.t.Helper()
	ok := f.loop.RunUntil(func() bool { return f.loop.Ran() > before }, settleTimeout)
	require.True(f.t, ok, "posted task never ran")
	f.loop.RunPending()
}

func fmtID(n int) string {
	return fmt.Sprintf("req-%d", n)
}
