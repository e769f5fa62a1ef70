package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/bnema/gregify/internal/application/port"
	"github.com/bnema/gregify/internal/domain/entity"
	"github.com/bnema/gregify/internal/logging"
)

// DeliverEnhancedPromptUseCase errors.
var (
	ErrEmptyPrompt    = errors.New("enhanced prompt is empty")
	ErrNoActiveTab    = errors.New("no active host tab")
	ErrHostNotAllowed = errors.New("active tab host is not allowed")
	ErrDeliveryFailed = errors.New("enhanced prompt delivery failed")
	ErrEngineRejected = errors.New("engine reported no writable surface")
)

// DeliverConfig holds the allow-list and the fallback target.
type DeliverConfig struct {
	AllowedHosts     []string
	FallbackSelector string
}

// DeliverEnhancedPromptUseCase forwards an enhanced prompt to the active host
// tab, falling back to a direct write when the message cannot be delivered.
// An engine that answers with failure is not bypassed.
type DeliverEnhancedPromptUseCase struct {
	tabs port.TabMessenger

	mu   sync.Mutex
	cfg  DeliverConfig
	last string
}

// NewDeliverEnhancedPromptUseCase creates the delivery use case.
func NewDeliverEnhancedPromptUseCase(tabs port.TabMessenger, cfg DeliverConfig) *DeliverEnhancedPromptUseCase {
	return &DeliverEnhancedPromptUseCase{tabs: tabs, cfg: cfg}
}

// Configure replaces allow-list and fallback target.
func (uc *DeliverEnhancedPromptUseCase) Configure(cfg DeliverConfig) {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	uc.cfg = cfg
}

// LastPrompt returns the most recent prompt handed to Execute.
func (uc *DeliverEnhancedPromptUseCase) LastPrompt() string {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	return uc.last
}

// Execute delivers prompt to the active tab.
func (uc *DeliverEnhancedPromptUseCase) Execute(ctx context.Context, prompt string) (entity.DeliveryResult, error) {
	if prompt == "" {
		return entity.DeliveryResult{Reason: ErrEmptyPrompt.Error()}, ErrEmptyPrompt
	}

	uc.mu.Lock()
	uc.last = prompt
	cfg := uc.cfg
	uc.mu.Unlock()

	tab, err := uc.tabs.ActiveTab(ctx)
	if err != nil {
		return entity.DeliveryResult{Reason: err.Error()}, fmt.Errorf("%w: %w", ErrNoActiveTab, err)
	}
	if tab == nil {
		return entity.DeliveryResult{Reason: ErrNoActiveTab.Error()}, ErrNoActiveTab
	}

	ctx = logging.WithTabID(ctx, string(tab.ID))
	log := logging.FromContext(ctx)

	if !entity.HostAllowed(tab.Host(), cfg.AllowedHosts) {
		log.Info().Str("host", tab.Host()).Msg("not delivering prompt to host outside allow-list")
		return entity.DeliveryResult{TabID: tab.ID, Reason: ErrHostNotAllowed.Error()},
			fmt.Errorf("%w: %s", ErrHostNotAllowed, tab.Host())
	}

	var res entity.InjectionResult
	cmd := entity.InjectionCommand{Action: entity.ActionPopulatePrompt, Text: prompt}
	err = uc.tabs.SendToTab(ctx, tab.ID, entity.ActionPopulatePrompt, cmd, &res)
	if err == nil {
		if !res.Success {
			// The engine answered but found nothing to write into.
			log.Warn().Msg("engine rejected prompt")
			return entity.DeliveryResult{TabID: tab.ID, Reason: ErrEngineRejected.Error()},
				fmt.Errorf("%w: %w", ErrDeliveryFailed, ErrEngineRejected)
		}
		log.Info().Msg("enhanced prompt delivered")
		return entity.DeliveryResult{Success: true, TabID: tab.ID}, nil
	}
	log.Warn().Err(err).Msg("prompt message not delivered, writing directly")

	err = uc.tabs.ExecInTab(ctx, tab.ID, func(doc port.Document) error {
		return InjectDirect(ctx, doc, cfg.FallbackSelector, prompt)
	})
	if err != nil {
		return entity.DeliveryResult{TabID: tab.ID, Fallback: true, Reason: err.Error()},
			fmt.Errorf("%w: %w", ErrDeliveryFailed, err)
	}
	log.Info().Msg("enhanced prompt delivered by direct write")
	return entity.DeliveryResult{Success: true, TabID: tab.ID, Fallback: true}, nil
}
