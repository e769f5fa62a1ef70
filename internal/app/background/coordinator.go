// Package background is the privileged context: it answers engines'
// suggestion requests, runs prompt enhancement and delivers enhanced prompts
// to the active host tab.
package background

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/bnema/gregify/internal/application/port"
	"github.com/bnema/gregify/internal/application/usecase"
	"github.com/bnema/gregify/internal/domain/entity"
	"github.com/bnema/gregify/internal/infrastructure/relay"
	"github.com/bnema/gregify/internal/logging"
)

// ErrUnknownTab is returned when addressing a tab that is not attached.
var ErrUnknownTab = errors.New("unknown tab")

// TabConn is what the coordinator holds for one attached host tab.
type TabConn struct {
	// Endpoint is the background end of the relay to the tab's engine.
	Endpoint *relay.Endpoint
	// Document and Scheduler give direct access to the page for the
	// fallback delivery path.
	Document  port.Document
	Scheduler port.Scheduler
}

type tabEntry struct {
	tab  *entity.Tab
	conn TabConn
}

// Coordinator routes relay traffic between host tabs, the panel and the
// prompt service. It implements port.TabMessenger for the delivery use case.
type Coordinator struct {
	ctx     context.Context
	prompts *usecase.PromptServiceUseCase
	deliver *usecase.DeliverEnhancedPromptUseCase

	mu      sync.Mutex
	tabs    *entity.TabList
	entries map[entity.TabID]*tabEntry
	now     func() time.Time
}

var _ port.TabMessenger = (*Coordinator)(nil)

// New creates a coordinator. prompts answers suggestion and enhancement
// requests; cfg configures enhanced prompt delivery.
func New(ctx context.Context, prompts *usecase.PromptServiceUseCase, cfg usecase.DeliverConfig) *Coordinator {
	c := &Coordinator{
		ctx:     logging.WithComponent(ctx, "background"),
		prompts: prompts,
		tabs:    entity.NewTabList(),
		entries: make(map[entity.TabID]*tabEntry),
		now:     time.Now,
	}
	c.deliver = usecase.NewDeliverEnhancedPromptUseCase(c, cfg)
	return c
}

// Configure replaces the delivery allow-list and fallback target.
func (c *Coordinator) Configure(cfg usecase.DeliverConfig) {
	c.deliver.Configure(cfg)
}

// LastPrompt returns the most recent enhanced prompt the coordinator tried
// to deliver.
func (c *Coordinator) LastPrompt() string {
	return c.deliver.LastPrompt()
}

// AttachTab registers a host tab and starts answering its engine.
func (c *Coordinator) AttachTab(id entity.TabID, rawURL string, conn TabConn) *entity.Tab {
	tab := entity.NewTab(id, rawURL)

	c.mu.Lock()
	c.tabs.Add(tab)
	c.entries[id] = &tabEntry{tab: tab, conn: conn}
	c.mu.Unlock()

	ctx := logging.WithTabID(c.ctx, string(id))
	conn.Endpoint.Handle(entity.ActionGetSuggestion, func(hctx context.Context, payload json.RawMessage) (any, error) {
		var req entity.SuggestionRequest
		if err := json.Unmarshal(payload, &req); err != nil {
			return nil, fmt.Errorf("decode suggestion request: %w", err)
		}
		return c.prompts.Suggest(logging.WithTabID(hctx, string(id)), req), nil
	})
	conn.Endpoint.OnEvent(entity.ActionContentScriptLoaded, func(_ context.Context, payload json.RawMessage) {
		var ev entity.ContentScriptLoaded
		if err := json.Unmarshal(payload, &ev); err != nil {
			logging.FromContext(ctx).Debug().Err(err).Msg("malformed engine announcement")
			return
		}
		c.markReady(id, ev.URL)
		logging.FromContext(ctx).Debug().Str("url", ev.URL).Msg("engine loaded")
	})
	return tab
}

// DetachTab forgets a tab. Its endpoint is left to the caller.
func (c *Coordinator) DetachTab(id entity.TabID) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, id)
	return c.tabs.Remove(id)
}

// Activate focuses a tab.
func (c *Coordinator) Activate(id entity.TabID) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.tabs.Activate(id)
}

// Tab returns a copy of a tab's registry entry.
func (c *Coordinator) Tab(id entity.TabID) (entity.Tab, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	tab := c.tabs.Find(id)
	if tab == nil {
		return entity.Tab{}, false
	}
	return *tab, true
}

// AttachPanel answers the settings panel on endpoint.
func (c *Coordinator) AttachPanel(endpoint *relay.Endpoint) {
	endpoint.Handle(entity.ActionEnhancedPromptReady, c.handleEnhancedPromptReady)
	endpoint.Handle(entity.ActionEnhancePrompt, c.handleEnhancePrompt)
}

func (c *Coordinator) handleEnhancedPromptReady(ctx context.Context, payload json.RawMessage) (any, error) {
	var msg entity.EnhancedPromptReady
	if err := json.Unmarshal(payload, &msg); err != nil {
		return nil, fmt.Errorf("decode enhanced prompt: %w", err)
	}
	result, err := c.deliver.Execute(ctx, msg.EnhancedPrompt)
	if err != nil {
		logging.FromContext(ctx).Warn().Err(err).Msg("enhanced prompt not delivered")
	}
	return result, nil
}

func (c *Coordinator) handleEnhancePrompt(ctx context.Context, payload json.RawMessage) (any, error) {
	var req entity.EnhanceRequest
	if err := json.Unmarshal(payload, &req); err != nil {
		return nil, fmt.Errorf("decode enhance request: %w", err)
	}
	text, err := c.prompts.Enhance(ctx, req.Prompt)
	if err != nil {
		return nil, err
	}
	return entity.EnhanceResponse{Success: true, EnhancedPrompt: text}, nil
}

func (c *Coordinator) markReady(id entity.TabID, rawURL string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	tab := c.tabs.Find(id)
	if tab == nil {
		return
	}
	tab.Ready = true
	tab.LoadedAt = c.now()
	if rawURL != "" {
		tab.URL = rawURL
	}
}

func (c *Coordinator) entry(id entity.TabID) (*tabEntry, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTab, id)
	}
	return e, nil
}

// ActiveTab returns a copy of the focused tab, nil when no tab is attached.
func (c *Coordinator) ActiveTab(_ context.Context) (*entity.Tab, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	tab := c.tabs.ActiveTab()
	if tab == nil {
		return nil, nil
	}
	cp := *tab
	return &cp, nil
}

// SendToTab sends a request to the tab's engine.
func (c *Coordinator) SendToTab(ctx context.Context, id entity.TabID, action string, payload, out any) error {
	e, err := c.entry(id)
	if err != nil {
		return err
	}
	return e.conn.Endpoint.Send(ctx, action, payload, out)
}

// ExecInTab runs fn against the tab's document on the tab's loop and waits
// for it to return.
func (c *Coordinator) ExecInTab(ctx context.Context, id entity.TabID, fn func(doc port.Document) error) error {
	e, err := c.entry(id)
	if err != nil {
		return err
	}

	done := make(chan error, 1)
	e.conn.Scheduler.Post(func() {
		done <- fn(e.conn.Document)
	})
	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}
