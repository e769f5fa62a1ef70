package usecase_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/bnema/gregify/internal/application/port"
	"github.com/bnema/gregify/internal/application/port/mocks"
	"github.com/bnema/gregify/internal/application/usecase"
	"github.com/bnema/gregify/internal/domain/entity"
	"github.com/bnema/gregify/internal/infrastructure/dom"
)

var deliverCfg = usecase.DeliverConfig{
	AllowedHosts:     []string{"chatgpt.com", "chat.openai.com"},
	FallbackSelector: "#prompt-textarea",
}

func populateCommand(text string) entity.InjectionCommand {
	return entity.InjectionCommand{Action: entity.ActionPopulatePrompt, Text: text}
}

func TestDeliverEnhancedPromptUseCase_DeliversToEngine(t *testing.T) {
	ctx := engineContext()
	tabs := mocks.NewMockTabMessenger(t)
	uc := usecase.NewDeliverEnhancedPromptUseCase(tabs, deliverCfg)

	tabs.EXPECT().ActiveTab(mock.Anything).Return(entity.NewTab("tab-1", "https://chatgpt.com/c/abc"), nil).Once()
	tabs.EXPECT().
		SendToTab(mock.Anything, entity.TabID("tab-1"), entity.ActionPopulatePrompt, populateCommand(enhancedPrompt), mock.Anything).
		Run(func(_ context.Context, _ entity.TabID, _ string, _ any, out any) {
			out.(*entity.InjectionResult).Success = true
		}).
		Return(nil).
		Once()

	res, err := uc.Execute(ctx, enhancedPrompt)
	require.NoError(t, err)
	assert.Equal(t, entity.DeliveryResult{Success: true, TabID: "tab-1"}, res)
	assert.Equal(t, enhancedPrompt, uc.LastPrompt())
}

func TestDeliverEnhancedPromptUseCase_FallsBackToDirectWrite(t *testing.T) {
	ctx := engineContext()
	f := newEngineFixture(t, chatPage)
	tabs := mocks.NewMockTabMessenger(t)
	uc := usecase.NewDeliverEnhancedPromptUseCase(tabs, deliverCfg)

	var signals []string
	for _, typ := range []string{"input", "change", "focus"} {
		f.doc.AddEventListener(nil, typ, func(ev *port.Event) { signals = append(signals, ev.Type) })
	}

	tabs.EXPECT().ActiveTab(mock.Anything).Return(entity.NewTab("tab-2", "https://chat.openai.com/"), nil).Once()
	tabs.EXPECT().
		SendToTab(mock.Anything, entity.TabID("tab-2"), entity.ActionPopulatePrompt, mock.Anything, mock.Anything).
		Return(errors.New("no receiving end")).
		Once()
	tabs.EXPECT().
		ExecInTab(mock.Anything, entity.TabID("tab-2"), mock.Anything).
		RunAndReturn(func(_ context.Context, _ entity.TabID, fn func(port.Document) error) error {
			return fn(f.doc)
		}).
		Once()

	res, err := uc.Execute(ctx, enhancedPrompt)
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.True(t, res.Fallback)
	assert.Equal(t, enhancedPrompt, f.doc.Value(f.textarea()))
	assert.Equal(t, []string{"input", "change", "focus"}, signals)
}

func TestDeliverEnhancedPromptUseCase_EngineRejectionIsNotBypassed(t *testing.T) {
	ctx := engineContext()
	tabs := mocks.NewMockTabMessenger(t)
	uc := usecase.NewDeliverEnhancedPromptUseCase(tabs, deliverCfg)

	tabs.EXPECT().ActiveTab(mock.Anything).Return(entity.NewTab("tab-2", "https://chatgpt.com/"), nil).Once()
	tabs.EXPECT().
		SendToTab(mock.Anything, entity.TabID("tab-2"), entity.ActionPopulatePrompt, mock.Anything, mock.Anything).
		Return(nil).
		Once()

	res, err := uc.Execute(ctx, enhancedPrompt)
	require.ErrorIs(t, err, usecase.ErrDeliveryFailed)
	require.ErrorIs(t, err, usecase.ErrEngineRejected)
	assert.False(t, res.Success)
	assert.False(t, res.Fallback)
	assert.Equal(t, entity.TabID("tab-2"), res.TabID)
}

func TestDeliverEnhancedPromptUseCase_FallbackTargetMissing(t *testing.T) {
	ctx := engineContext()
	doc, err := dom.ParseString("https://chatgpt.com/", `<html><body></body></html>`, func(func()) {})
	require.NoError(t, err)
	tabs := mocks.NewMockTabMessenger(t)
	uc := usecase.NewDeliverEnhancedPromptUseCase(tabs, deliverCfg)

	tabs.EXPECT().ActiveTab(mock.Anything).Return(entity.NewTab("tab-3", "https://chatgpt.com/"), nil).Once()
	tabs.EXPECT().SendToTab(mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(errors.New("closed")).Once()
	tabs.EXPECT().ExecInTab(mock.Anything, entity.TabID("tab-3"), mock.Anything).
		RunAndReturn(func(_ context.Context, _ entity.TabID, fn func(port.Document) error) error {
			return fn(doc)
		}).Once()

	res, err := uc.Execute(ctx, enhancedPrompt)
	require.ErrorIs(t, err, usecase.ErrDeliveryFailed)
	require.ErrorIs(t, err, usecase.ErrFallbackTargetMissing)
	assert.False(t, res.Success)
	assert.True(t, res.Fallback)
}

func TestDeliverEnhancedPromptUseCase_Rejections(t *testing.T) {
	tests := []struct {
		name    string
		prompt  string
		tab     *entity.Tab
		tabErr  error
		wantErr error
	}{
		{name: "empty prompt", prompt: "", wantErr: usecase.ErrEmptyPrompt},
		{name: "no tab", prompt: enhancedPrompt, wantErr: usecase.ErrNoActiveTab},
		{name: "tab lookup failed", prompt: enhancedPrompt, tabErr: errors.New("window closed"), wantErr: usecase.ErrNoActiveTab},
		{name: "host outside allow-list", prompt: enhancedPrompt, tab: entity.NewTab("t", "https://example.com/"), wantErr: usecase.ErrHostNotAllowed},
		{name: "suffix without dot", prompt: enhancedPrompt, tab: entity.NewTab("t", "https://notchatgpt.com/"), wantErr: usecase.ErrHostNotAllowed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tabs := mocks.NewMockTabMessenger(t)
			uc := usecase.NewDeliverEnhancedPromptUseCase(tabs, deliverCfg)
			if tt.prompt != "" {
				tabs.EXPECT().ActiveTab(mock.Anything).Return(tt.tab, tt.tabErr).Once()
			}

			res, err := uc.Execute(engineContext(), tt.prompt)
			require.ErrorIs(t, err, tt.wantErr)
			assert.False(t, res.Success)
			assert.NotEmpty(t, res.Reason)
		})
	}
}

func TestDeliverEnhancedPromptUseCase_SubdomainAllowed(t *testing.T) {
	tabs := mocks.NewMockTabMessenger(t)
	uc := usecase.NewDeliverEnhancedPromptUseCase(tabs, usecase.DeliverConfig{})
	uc.Configure(deliverCfg)

	tabs.EXPECT().ActiveTab(mock.Anything).Return(entity.NewTab("t", "https://beta.chatgpt.com/"), nil).Once()
	tabs.EXPECT().SendToTab(mock.Anything, entity.TabID("t"), mock.Anything, mock.Anything, mock.Anything).
		RunAndReturn(func(_ context.Context, _ entity.TabID, _ string, _ any, out any) error {
			out.(*entity.InjectionResult).Success = true
			return nil
		}).Once()

	res, err := uc.Execute(engineContext(), enhancedPrompt)
	require.NoError(t, err)
	assert.True(t, res.Success)
}
