package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/bnema/gregify/internal/application/port"
	"github.com/bnema/gregify/internal/domain/entity"
	"github.com/bnema/gregify/internal/logging"
)

// ErrEmptyEnhancement is returned when the backend produced no text.
var ErrEmptyEnhancement = errors.New("backend returned an empty prompt")

// PromptServiceUseCase answers suggestion and enhancement requests in the
// background context.
type PromptServiceUseCase struct {
	provider port.SuggestionProvider
	usage    *RecordUsageUseCase
	now      func() time.Time
}

// NewPromptServiceUseCase creates the background prompt service.
func NewPromptServiceUseCase(provider port.SuggestionProvider, usage *RecordUsageUseCase) *PromptServiceUseCase {
	return &PromptServiceUseCase{provider: provider, usage: usage, now: time.Now}
}

// Suggest always produces a response. Provider failures become
// Success=false so the engine degrades silently.
func (uc *PromptServiceUseCase) Suggest(ctx context.Context, req entity.SuggestionRequest) entity.SuggestionResponse {
	log := logging.FromContext(ctx)
	if strings.TrimSpace(req.InputText) == "" {
		return entity.SuggestionResponse{Success: false}
	}

	start := uc.now()
	text, err := uc.provider.Suggest(ctx, req.InputText)
	ok := err == nil && strings.TrimSpace(text) != ""
	uc.usage.Record(ctx, entity.UsageSuggestion, req.InputText, ok, uc.now().Sub(start))

	if err != nil {
		log.Debug().Err(err).Msg("suggestion provider failed")
		return entity.SuggestionResponse{Success: false}
	}
	if !ok {
		return entity.SuggestionResponse{Success: false}
	}
	return entity.SuggestionResponse{Success: true, SuggestionText: text}
}

// Enhance runs a full enhancement of prompt.
func (uc *PromptServiceUseCase) Enhance(ctx context.Context, prompt string) (string, error) {
	if strings.TrimSpace(prompt) == "" {
		return "", ErrEmptyPrompt
	}

	start := uc.now()
	text, err := uc.provider.Enhance(ctx, prompt)
	if err == nil && strings.TrimSpace(text) == "" {
		err = ErrEmptyEnhancement
	}
	uc.usage.Record(ctx, entity.UsageEnhancement, prompt, err == nil, uc.now().Sub(start))
	if err != nil {
		return "", err
	}
	return text, nil
}
