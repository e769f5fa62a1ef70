package cli_test

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/bnema/gregify/internal/app/session"
	"github.com/bnema/gregify/internal/application/port/mocks"
	"github.com/bnema/gregify/internal/cli"
	"github.com/bnema/gregify/internal/domain/entity"
	"github.com/bnema/gregify/internal/infrastructure/config"
	"github.com/bnema/gregify/internal/logging"
)

func openTabPage(t *testing.T) (*cli.TabPage, *mocks.MockSuggestionProvider) {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.Suggestion.DebounceMs = 50

	provider := mocks.NewMockSuggestionProvider(t)
	ctx := logging.WithContext(context.Background(), zerolog.Nop())
	s := session.New(ctx, session.Options{Config: cfg, Provider: provider})
	t.Cleanup(func() { assert.NoError(t, s.Shutdown()) })

	tab, err := s.Open(session.ChatPage("tab-1", "https://chatgpt.com/"))
	require.NoError(t, err)
	return &cli.TabPage{Tab: tab}, provider
}

func TestTabPage_TypeAcceptAndSend(t *testing.T) {
	page, provider := openTabPage(t)
	ctx := context.Background()
	provider.EXPECT().Suggest(mock.Anything, "explain quantum computing").
		Return("explain quantum computing in simple terms", nil).Once()

	require.NoError(t, page.Type(ctx, "explain quantum computing"))

	require.Eventually(t, func() bool {
		snap, err := page.Snapshot(ctx)
		return err == nil && snap.State == entity.PipelineShowing
	}, 3*time.Second, 10*time.Millisecond)

	snap, err := page.Snapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, "explain quantum computing in simple terms", snap.Ghost)
	assert.Equal(t, 1, snap.Requests)

	consumed, err := page.Key(ctx, "Tab")
	require.NoError(t, err)
	assert.True(t, consumed)

	consumed, err = page.Key(ctx, "Enter")
	require.NoError(t, err)
	assert.True(t, consumed, "the chat page handles Enter itself")

	require.Eventually(t, func() bool {
		snap, err = page.Snapshot(ctx)
		return err == nil && snap.Epoch == 1
	}, 3*time.Second, 10*time.Millisecond, "sending re-renders the composer")
	assert.Equal(t, []string{"explain quantum computing in simple terms"}, snap.Sent)
	assert.Empty(t, snap.Value)
}
