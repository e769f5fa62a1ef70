package usecase_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/bnema/gregify/internal/application/port/mocks"
	"github.com/bnema/gregify/internal/application/usecase"
	"github.com/bnema/gregify/internal/domain/entity"
	repomocks "github.com/bnema/gregify/internal/domain/repository/mocks"
)

func TestPromptServiceUseCase_Suggest(t *testing.T) {
	tests := []struct {
		name        string
		text        string
		err         error
		wantSuccess bool
	}{
		{name: "success", text: quantumSuggestion, wantSuccess: true},
		{name: "provider error", err: errors.New("503")},
		{name: "blank text", text: "   "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			provider := mocks.NewMockSuggestionProvider(t)
			repo := repomocks.NewMockUsageRepository(t)
			uc := usecase.NewPromptServiceUseCase(provider, usecase.NewRecordUsageUseCase(repo))

			provider.EXPECT().Suggest(mock.Anything, quantumPrompt).Return(tt.text, tt.err).Once()
			repo.EXPECT().Record(mock.Anything, mock.MatchedBy(func(rec *entity.UsageRecord) bool {
				return rec.Kind == entity.UsageSuggestion && rec.Success == tt.wantSuccess
			})).Return(nil).Once()

			resp := uc.Suggest(engineContext(), entity.SuggestionRequest{InputText: quantumPrompt})
			assert.Equal(t, tt.wantSuccess, resp.Success)
			if tt.wantSuccess {
				assert.Equal(t, quantumSuggestion, resp.SuggestionText)
			} else {
				assert.Empty(t, resp.SuggestionText)
			}
		})
	}
}

func TestPromptServiceUseCase_SuggestBlankInputSkipsProvider(t *testing.T) {
	provider := mocks.NewMockSuggestionProvider(t)
	uc := usecase.NewPromptServiceUseCase(provider, nil)

	resp := uc.Suggest(engineContext(), entity.SuggestionRequest{InputText: "  \n"})
	assert.False(t, resp.Success)
}

func TestPromptServiceUseCase_Enhance(t *testing.T) {
	provider := mocks.NewMockSuggestionProvider(t)
	uc := usecase.NewPromptServiceUseCase(provider, nil)

	provider.EXPECT().Enhance(mock.Anything, quantumPrompt).Return(enhancedPrompt, nil).Once()
	got, err := uc.Enhance(engineContext(), quantumPrompt)
	require.NoError(t, err)
	assert.Equal(t, enhancedPrompt, got)
}

func TestPromptServiceUseCase_EnhanceFailures(t *testing.T) {
	providerErr := errors.New("backend unavailable")
	tests := []struct {
		name    string
		prompt  string
		text    string
		err     error
		wantErr error
	}{
		{name: "empty prompt", prompt: " ", wantErr: usecase.ErrEmptyPrompt},
		{name: "provider error", prompt: quantumPrompt, err: providerErr, wantErr: providerErr},
		{name: "empty enhancement", prompt: quantumPrompt, text: "", wantErr: usecase.ErrEmptyEnhancement},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			provider := mocks.NewMockSuggestionProvider(t)
			uc := usecase.NewPromptServiceUseCase(provider, nil)
			if tt.prompt != " " {
				provider.EXPECT().Enhance(mock.Anything, tt.prompt).Return(tt.text, tt.err).Once()
			}

			_, err := uc.Enhance(engineContext(), tt.prompt)
			require.ErrorIs(t, err, tt.wantErr)
		})
	}
}
