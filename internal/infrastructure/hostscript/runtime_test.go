package hostscript_test

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bnema/gregify/internal/application/port"
	"github.com/bnema/gregify/internal/infrastructure/dom"
	"github.com/bnema/gregify/internal/infrastructure/hostscript"
	"github.com/bnema/gregify/internal/infrastructure/mainloop"
	"github.com/bnema/gregify/internal/logging"
)

const page = `<html><body>
<main id="thread"></main>
<form><textarea id="prompt-textarea"></textarea><button id="send">Send</button></form>
</body></html>`

const chatApp = `
state.userInputs = 0;
state.synthetic = 0;
page.on("input", function (ev) {
  if (ev.synthetic) { state.synthetic++; } else { state.userInputs++; }
  state.lastValue = ev.value;
});
page.on("click", function (ev) {
  if (ev.targetId !== "send") { return; }
  var text = page.value("#prompt-textarea");
  page.append("#thread", "<div class=\"msg\">" + text + "</div>");
  page.setValue("#prompt-textarea", "");
});
page.on("keydown", function (ev) {
  if (ev.key === "Escape") { ev.preventDefault(); }
});
`

func newRuntime(t *testing.T) (*hostscript.Runtime, *dom.Document, *mainloop.Manual) {
	t.Helper()
	loop := mainloop.NewManual(time.Time{})
	doc, err := dom.ParseString("https://chatgpt.com/", page, loop.Post)
	require.NoError(t, err)

	ctx := logging.WithContext(context.Background(), zerolog.Nop())
	rt, err := hostscript.New(ctx, doc)
	require.NoError(t, err)
	t.Cleanup(rt.Close)
	return rt, doc, loop
}

func TestRuntime_ReactsToDispatchedEvents(t *testing.T) {
	rt, doc, _ := newRuntime(t)
	require.NoError(t, rt.Run("chat-app.js", chatApp))

	ta, err := doc.Find("#prompt-textarea")
	require.NoError(t, err)
	require.NoError(t, doc.Type(ta, "hello"))

	surface, err := doc.Surface(ta, "plain")
	require.NoError(t, err)
	require.NoError(t, surface.Write("hello world"))
	require.NoError(t, surface.EmitChangeSignals())

	state := rt.State()
	assert.EqualValues(t, 1, state["userInputs"])
	assert.EqualValues(t, 1, state["synthetic"])
	assert.Equal(t, "hello world", state["lastValue"])

	send, err := doc.Find("#send")
	require.NoError(t, err)
	require.NoError(t, doc.Click(send))

	msg, err := doc.Find("#thread .msg")
	require.NoError(t, err)
	require.NotNil(t, msg)
	assert.Equal(t, "hello world", msg.Text())
	assert.Empty(t, doc.Value(ta))
}

func TestRuntime_PreventDefault(t *testing.T) {
	rt, doc, _ := newRuntime(t)
	require.NoError(t, rt.Run("chat-app.js", chatApp))
	ta, _ := doc.Find("#prompt-textarea")

	prevented, err := doc.KeyDown(ta, "Escape")
	require.NoError(t, err)
	assert.True(t, prevented)

	prevented, err = doc.KeyDown(ta, "a")
	require.NoError(t, err)
	assert.False(t, prevented)
}

func TestRuntime_RemountTriggersMutations(t *testing.T) {
	rt, doc, loop := newRuntime(t)
	var batches int
	doc.Observe(func(port.MutationBatch) { batches++ })

	require.NoError(t, rt.Run("remount.js", `
page.remove("form");
page.append("body", '<form><textarea id="prompt-textarea"></textarea></form>');
state.remounted = page.query("#prompt-textarea").connected;
`))
	loop.RunPending()

	assert.Equal(t, true, rt.State()["remounted"])
	assert.Equal(t, 1, batches)
}

func TestRuntime_ScriptErrors(t *testing.T) {
	rt, doc, _ := newRuntime(t)

	err := rt.Run("bad.js", `page.setValue("#missing", "x")`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad.js")

	require.Error(t, rt.Run("syntax.js", `page.on(`))
	require.Error(t, rt.Run("type.js", `page.on("click", 42)`))

	// A throwing listener does not break dispatch.
	require.NoError(t, rt.Run("throws.js", `page.on("click", function () { throw new Error("boom"); });`))
	send, _ := doc.Find("#send")
	assert.NoError(t, doc.Click(send))
}

func TestRuntime_CloseDetachesListeners(t *testing.T) {
	rt, doc, _ := newRuntime(t)
	require.NoError(t, rt.Run("chat-app.js", chatApp))
	rt.Close()

	ta, _ := doc.Find("#prompt-textarea")
	require.NoError(t, doc.Type(ta, "after close"))
	assert.EqualValues(t, 0, rt.State()["userInputs"])
	assert.ErrorIs(t, rt.Run("late.js", "1"), hostscript.ErrClosed)
}
