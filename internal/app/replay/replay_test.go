package replay_test

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bnema/gregify/internal/app/replay"
	"github.com/bnema/gregify/internal/logging"
)

func testContext() context.Context {
	return logging.WithContext(context.Background(), zerolog.Nop())
}

func TestRun_Golden(t *testing.T) {
	paths, err := filepath.Glob(filepath.Join("testdata", "scripts", "*.yaml"))
	require.NoError(t, err)
	require.NotEmpty(t, paths)

	for _, path := range paths {
		name := strings.TrimSuffix(filepath.Base(path), ".yaml")
		t.Run(name, func(t *testing.T) {
			script, err := replay.Load(path)
			require.NoError(t, err)

			transcript, err := replay.Run(testContext(), script)
			require.NoError(t, err, "transcript so far:\n%s", transcript)

			g := goldie.New(t,
				goldie.WithFixtureDir("testdata/golden"),
				goldie.WithNameSuffix(".golden"),
			)
			g.Assert(t, name, []byte(transcript))
		})
	}
}

func TestRun_FailedExpectationStopsTheReplay(t *testing.T) {
	script, err := replay.Parse(strings.NewReader(`
steps:
  - type: abc
  - expect: {state: SHOWING}
  - wait: 1s
`))
	require.NoError(t, err)

	transcript, err := replay.Run(testContext(), script)

	require.ErrorIs(t, err, replay.ErrExpectation)
	assert.Contains(t, err.Error(), "step 2")
	assert.Contains(t, err.Error(), "state DEBOUNCING, want SHOWING")
	assert.NotContains(t, transcript, "wait 1s")
}

func TestRun_CustomPageWithoutHostScript(t *testing.T) {
	script, err := replay.Parse(strings.NewReader(`
url: https://claude.ai/new
html: |
  <html><body><div contenteditable="true" id="editor"></div></body></html>
backend:
  - prompt: plan a trip to Lisbon
    suggestion: plan a three day trip to Lisbon
steps:
  - type: plan a trip to Lisbon
    target: "#editor"
  - wait: 500ms
  - expect:
      state: SHOWING
      ghost: plan a three day trip to Lisbon
  - key: Escape
  - expect: {state: IDLE, ghost: ""}
`))
	require.NoError(t, err)

	transcript, err := replay.Run(testContext(), script)

	require.NoError(t, err, transcript)
	assert.True(t, strings.HasPrefix(transcript, "+0ms open https://claude.ai/new -> state=IDLE binding=BOUND"))
	assert.Contains(t, transcript, `+500ms   backend reply #1 "plan a three day trip to Lisbon"`)
}

func TestRun_BackendFailure(t *testing.T) {
	script, err := replay.Parse(strings.NewReader(`
backend:
  - prompt: explain quantum computing
    fail: true
steps:
  - type: explain quantum computing
  - wait: 500ms
  - expect: {state: IDLE, ghost: "", requests: 1}
`))
	require.NoError(t, err)

	transcript, err := replay.Run(testContext(), script)

	require.NoError(t, err, transcript)
	assert.Contains(t, transcript, "+500ms   backend failure #1")
}

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		src     string
		wantErr string
	}{
		{
			name: "defaults the url",
			src:  "steps:\n  - type: hello\n",
		},
		{
			name:    "two actions in one step",
			src:     "steps:\n  - type: hello\n    key: Tab\n",
			wantErr: "step 1 sets 2 actions",
		},
		{
			name:    "empty step",
			src:     "steps:\n  - target: '#x'\n",
			wantErr: "step 1 sets 0 actions",
		},
		{
			name:    "unknown field",
			src:     "steps:\n  - typo: hello\n",
			wantErr: "field typo not found",
		},
		{
			name:    "append without target",
			src:     "steps:\n  - append: {html: '<p></p>'}\n",
			wantErr: "append needs a target",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			script, err := replay.Parse(strings.NewReader(tt.src))
			if tt.wantErr != "" {
				require.ErrorIs(t, err, replay.ErrInvalidScript)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "https://chatgpt.com/", script.URL)
		})
	}
}

func TestScript_Options(t *testing.T) {
	script, err := replay.Parse(strings.NewReader(`
suggestion:
  disabled: true
  debounce: 250ms
  min_length: 2
  accept_key: ArrowRight
injection:
  auto_submit: true
`))
	require.NoError(t, err)

	opts := script.Options()

	assert.False(t, opts.Suggest.Enabled)
	assert.Equal(t, "250ms", opts.Suggest.Debounce.String())
	assert.Equal(t, 2, opts.Suggest.MinLength)
	assert.Equal(t, "ArrowRight", opts.Suggest.AcceptKey)
	assert.True(t, opts.Inject.AutoSubmit)
	assert.NotEmpty(t, opts.Inject.SubmitSelectors)
}

func TestParse_NormalizesURL(t *testing.T) {
	script, err := replay.Parse(strings.NewReader("url: claude.ai/new\nsteps:\n  - type: hello\n"))

	require.NoError(t, err)
	assert.Equal(t, "https://claude.ai/new", script.URL)
}
