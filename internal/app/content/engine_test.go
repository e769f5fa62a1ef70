package content_test

import (
	"context"
	"encoding/json"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bnema/gregify/internal/app/content"
	"github.com/bnema/gregify/internal/domain/entity"
	"github.com/bnema/gregify/internal/infrastructure/dom"
	"github.com/bnema/gregify/internal/infrastructure/mainloop"
	"github.com/bnema/gregify/internal/infrastructure/relay"
	"github.com/bnema/gregify/internal/logging"
)

const waitTimeout = 2 * time.Second

const chatPage = `<!doctype html><html><body>
<main id="thread"></main>
<form id="composer">
  <textarea id="prompt-textarea" data-id="prompt-textarea"></textarea>
  <button data-testid="send-button" type="submit">Send</button>
</form>
</body></html>`

type engineHarness struct {
	t          *testing.T
	loop       *mainloop.Manual
	doc        *dom.Document
	background *relay.Endpoint
	engine     *content.Engine
	announced  chan string
	requests   atomic.Int32
}

func newEngineHarness(t *testing.T, opts content.Options) *engineHarness {
	t.Helper()
	h := &engineHarness{t: t, announced: make(chan string, 1)}
	h.loop = mainloop.NewManual(time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC))

	doc, err := dom.ParseString("https://chatgpt.com/c/1", chatPage, h.loop.Post)
	require.NoError(t, err)
	h.doc = doc

	a, b := relay.NewPipe()
	engineSide := relay.NewEndpoint(a)
	h.background = relay.NewEndpoint(b)
	t.Cleanup(func() {
		_ = engineSide.Close()
		_ = h.background.Close()
	})

	h.background.Handle(entity.ActionGetSuggestion, func(_ context.Context, payload json.RawMessage) (any, error) {
		h.requests.Add(1)
		var req entity.SuggestionRequest
		if err := json.Unmarshal(payload, &req); err != nil {
			return nil, err
		}
		return entity.SuggestionResponse{Success: true, SuggestionText: req.InputText + " in simple terms"}, nil
	})
	h.background.OnEvent(entity.ActionContentScriptLoaded, func(_ context.Context, payload json.RawMessage) {
		var ev entity.ContentScriptLoaded
		_ = json.Unmarshal(payload, &ev)
		h.announced <- ev.URL
	})

	ctx := logging.WithContext(context.Background(), zerolog.Nop())
	h.engine = content.New(doc, h.loop, engineSide, opts)
	h.engine.Start(ctx)
	h.loop.RunPending()
	return h
}

func (h *engineHarness) find(selector string) *dom.Element {
	h.t.Helper()
	el, err := h.doc.Find(selector)
	require.NoError(h.t, err)
	require.NotNil(h.t, el, selector)
	return el
}

func (h *engineHarness) suggestFor(text string) {
	h.t.Helper()
	require.NoError(h.t, h.doc.Type(h.find("#prompt-textarea"), text))
	h.loop.Advance(500 * time.Millisecond)
	ok := h.loop.RunUntil(func() bool {
		return h.engine.State() != entity.PipelineAwaitingResponse
	}, waitTimeout)
	require.True(h.t, ok, "suggestion never settled")
}

// sendFromBackground issues a request to the engine while pumping its loop.
func (h *engineHarness) sendFromBackground(action string, payload, out any) error {
	h.t.Helper()
	errs := make(chan error, 1)
	go func() {
		errs <- h.background.Send(context.Background(), action, payload, out)
	}()
	var err error
	ok := h.loop.RunUntil(func() bool {
		select {
		case err = <-errs:
			return true
		default:
			return false
		}
	}, waitTimeout)
	require.True(h.t, ok, "request never answered")
	return err
}

func TestEngine_AnnouncesItself(t *testing.T) {
	h := newEngineHarness(t, content.DefaultOptions())

	select {
	case url := <-h.announced:
		assert.Equal(t, "https://chatgpt.com/c/1", url)
	case <-time.After(waitTimeout):
		t.Fatal("engine never announced itself")
	}
	state, epoch := h.engine.Binding()
	assert.Equal(t, entity.BindingBound, state)
	assert.Equal(t, entity.BindingEpoch(0), epoch)
}

func TestEngine_TypingShowsGhostAndTabAccepts(t *testing.T) {
	h := newEngineHarness(t, content.DefaultOptions())
	textarea := h.find("#prompt-textarea")

	h.suggestFor("explain quantum computing")

	require.Equal(t, entity.PipelineShowing, h.engine.State())
	assert.Equal(t, "explain quantum computing in simple terms", h.engine.Overlay().Text())

	prevented, err := h.doc.KeyDown(textarea, "Tab")
	require.NoError(t, err)
	assert.True(t, prevented, "accepting must stop the host from moving focus")
	assert.Equal(t, "explain quantum computing in simple terms", h.doc.Value(textarea))
	assert.False(t, h.engine.Overlay().Visible())
	assert.Equal(t, entity.PipelineIdle, h.engine.State())

	h.loop.Advance(time.Second)
	assert.Equal(t, int32(1), h.requests.Load(), "the accepted text must not be re-suggested")
}

func TestEngine_OtherKeysAndBlurDismiss(t *testing.T) {
	for _, tc := range []struct {
		name string
		act  func(h *engineHarness, el *dom.Element)
	}{
		{name: "escape", act: func(h *engineHarness, el *dom.Element) {
			prevented, err := h.doc.KeyDown(el, "Escape")
			require.NoError(h.t, err)
			assert.False(h.t, prevented)
		}},
		{name: "blur", act: func(h *engineHarness, el *dom.Element) {
			require.NoError(h.t, h.doc.Blur(el))
		}},
	} {
		t.Run(tc.name, func(t *testing.T) {
			h := newEngineHarness(t, content.DefaultOptions())
			textarea := h.find("#prompt-textarea")
			h.suggestFor("explain quantum computing")
			require.True(t, h.engine.Overlay().Visible())

			tc.act(h, textarea)

			assert.False(t, h.engine.Overlay().Visible())
			assert.Nil(t, h.engine.Ghost())
			assert.Equal(t, "explain quantum computing", h.doc.Value(textarea))
		})
	}
}

func TestEngine_EventsOutsideSurfaceIgnored(t *testing.T) {
	h := newEngineHarness(t, content.DefaultOptions())
	inputs, err := h.doc.AppendHTML(h.find("#thread"), `<input id="search">`)
	require.NoError(t, err)
	h.loop.RunPending()

	require.NoError(t, h.doc.Type(inputs[0], "some other field"))
	h.loop.Advance(time.Second)

	assert.Equal(t, entity.PipelineIdle, h.engine.State())
	assert.Zero(t, h.engine.Issued())
}

func TestEngine_InjectPromptOverRelay(t *testing.T) {
	h := newEngineHarness(t, content.DefaultOptions())

	var res entity.InjectionResult
	err := h.sendFromBackground(entity.ActionInjectPrompt,
		entity.InjectionCommand{Action: entity.ActionInjectPrompt, Text: "Summarize this article"}, &res)

	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, "Summarize this article", h.doc.Value(h.find("#prompt-textarea")))

	h.loop.Advance(time.Second)
	assert.Zero(t, h.engine.Issued(), "injected text is adopted, not suggested upon")
}

func TestEngine_PopulatePromptAcceptsLegacyField(t *testing.T) {
	h := newEngineHarness(t, content.DefaultOptions())

	var res entity.InjectionResult
	err := h.sendFromBackground(entity.ActionPopulatePrompt,
		map[string]string{"enhancedPrompt": "Write a haiku about Go"}, &res)

	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, "Write a haiku about Go", h.doc.Value(h.find("#prompt-textarea")))
}

func TestEngine_InjectEmptyReportsFailure(t *testing.T) {
	h := newEngineHarness(t, content.DefaultOptions())

	var res entity.InjectionResult
	err := h.sendFromBackground(entity.ActionInjectPrompt, nil, &res)

	require.NoError(t, err)
	assert.False(t, res.Success)
}

func TestEngine_RemountRebindsAndHidesGhost(t *testing.T) {
	h := newEngineHarness(t, content.DefaultOptions())
	h.suggestFor("explain quantum computing")
	require.True(t, h.engine.Overlay().Visible())

	require.NoError(t, h.doc.Remove(h.find("#composer")))
	_, err := h.doc.AppendHTML(h.doc.Body(),
		`<form id="composer"><textarea id="prompt-textarea" data-id="prompt-textarea"></textarea></form>`)
	require.NoError(t, err)
	h.loop.RunPending()

	state, epoch := h.engine.Binding()
	assert.Equal(t, entity.BindingBound, state)
	assert.Equal(t, entity.BindingEpoch(1), epoch)
	assert.False(t, h.engine.Overlay().Visible())
	assert.Equal(t, entity.PipelineIdle, h.engine.State())

	var res entity.InjectionResult
	require.NoError(t, h.sendFromBackground(entity.ActionInjectPrompt,
		entity.InjectionCommand{Text: "after remount"}, &res))
	assert.True(t, res.Success)
	assert.Equal(t, "after remount", h.doc.Value(h.find("#prompt-textarea")))
}

func TestEngine_ConfigureDisablesSuggestions(t *testing.T) {
	h := newEngineHarness(t, content.DefaultOptions())
	opts := content.DefaultOptions()
	opts.Suggest.Enabled = false
	h.engine.Configure(opts)

	require.NoError(t, h.doc.Type(h.find("#prompt-textarea"), "explain quantum computing"))
	h.loop.Advance(time.Second)

	assert.Zero(t, h.engine.Issued())
	assert.Zero(t, h.requests.Load())
}

func TestEngine_StoppedEngineRejectsInjection(t *testing.T) {
	h := newEngineHarness(t, content.DefaultOptions())
	h.engine.Stop()

	var res entity.InjectionResult
	err := h.sendFromBackground(entity.ActionInjectPrompt, entity.InjectionCommand{Text: "late"}, &res)

	require.ErrorIs(t, err, relay.ErrRemote)
	assert.Empty(t, h.doc.Value(h.find("#prompt-textarea")))
}

func TestEngine_HostClearHidesGhost(t *testing.T) {
	h := newEngineHarness(t, content.DefaultOptions())
	textarea := h.find("#prompt-textarea")
	h.suggestFor("explain quantum computing")
	require.True(t, h.engine.Overlay().Visible())

	require.NoError(t, h.doc.SetValue(textarea, ""))
	h.loop.RunPending()
	h.loop.Advance(time.Second)

	assert.False(t, h.engine.Overlay().Visible())
	assert.Equal(t, entity.PipelineIdle, h.engine.State())
	assert.Nil(t, h.engine.Ghost())

	prevented, err := h.doc.KeyDown(textarea, "Tab")
	require.NoError(t, err)
	assert.False(t, prevented)
	assert.Empty(t, h.doc.Value(textarea))
	assert.Equal(t, int32(1), h.requests.Load(), "the cleared value is not suggested upon")
}

func TestEngine_FocusRevalidatesGhost(t *testing.T) {
	h := newEngineHarness(t, content.DefaultOptions())
	textarea := h.find("#prompt-textarea")
	h.suggestFor("explain quantum computing")

	// An engine-external write that records no mutation.
	surface, err := h.doc.Surface(textarea, entity.SurfaceKindPlain)
	require.NoError(t, err)
	require.NoError(t, surface.Write("something else entirely"))
	require.True(t, h.engine.Overlay().Visible())

	require.NoError(t, h.doc.Focus(textarea))

	assert.False(t, h.engine.Overlay().Visible())
	assert.Equal(t, entity.PipelineIdle, h.engine.State())
}
