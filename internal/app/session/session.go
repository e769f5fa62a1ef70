// Package session runs host pages, their engines and the background
// coordinator together, one loop goroutine per page.
package session

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/bnema/gregify/internal/app/background"
	"github.com/bnema/gregify/internal/app/content"
	"github.com/bnema/gregify/internal/application/port"
	"github.com/bnema/gregify/internal/application/usecase"
	"github.com/bnema/gregify/internal/domain/entity"
	"github.com/bnema/gregify/internal/infrastructure/config"
	"github.com/bnema/gregify/internal/infrastructure/dom"
	"github.com/bnema/gregify/internal/infrastructure/hostscript"
	"github.com/bnema/gregify/internal/infrastructure/mainloop"
	"github.com/bnema/gregify/internal/infrastructure/relay"
	"github.com/bnema/gregify/internal/logging"
)

//go:embed pages/chat.html
var chatHTML string

//go:embed pages/chat.js
var chatScript string

// ErrDuplicateTab is returned when opening a tab id twice.
var ErrDuplicateTab = errors.New("tab already open")

// Script is a host page script.
type Script struct {
	Name   string
	Source string
}

// Page describes a host page to open.
type Page struct {
	ID      entity.TabID
	URL     string
	HTML    string
	Scripts []Script
}

// ChatPage returns the bundled chat front end at url.
func ChatPage(id entity.TabID, url string) Page {
	return Page{
		ID:      id,
		URL:     url,
		HTML:    chatHTML,
		Scripts: []Script{{Name: "chat.js", Source: chatScript}},
	}
}

// Options wires a session to its collaborators.
type Options struct {
	Config   *config.Config
	Provider port.SuggestionProvider
	Usage    *usecase.RecordUsageUseCase
}

// Tab is an open host page.
type Tab struct {
	ID     entity.TabID
	Loop   *mainloop.Loop
	Doc    *dom.Document
	Engine *content.Engine
	Script *hostscript.Runtime

	engineSide *relay.Endpoint
	bgSide     *relay.Endpoint
	stop       context.CancelFunc
}

// Do runs fn on the tab's loop and waits for it.
func (t *Tab) Do(ctx context.Context, fn func()) error {
	return t.Loop.Invoke(ctx, fn)
}

// Session owns every open tab, the background coordinator and the panel
// endpoint.
type Session struct {
	ctx    context.Context
	cancel context.CancelFunc
	group  *errgroup.Group

	coord   *background.Coordinator
	panel   *relay.Endpoint
	panelBG *relay.Endpoint

	mu   sync.Mutex
	cfg  *config.Config
	tabs map[entity.TabID]*Tab
}

// New starts a session. Tabs are opened with Open; Shutdown stops everything.
func New(ctx context.Context, opts Options) *Session {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.DefaultConfig()
	}

	ctx = logging.WithComponent(ctx, "session")
	ctx, cancel := context.WithCancel(ctx)
	group, gctx := errgroup.WithContext(ctx)

	prompts := usecase.NewPromptServiceUseCase(opts.Provider, opts.Usage)
	s := &Session{
		ctx:    gctx,
		cancel: cancel,
		group:  group,
		coord:  background.New(gctx, prompts, DeliverConfig(cfg)),
		cfg:    cfg,
		tabs:   make(map[entity.TabID]*Tab),
	}

	a, b := relay.NewPipe()
	s.panel = relay.NewEndpoint(a, s.endpointOptions()...)
	s.panelBG = relay.NewEndpoint(b, s.endpointOptions()...)
	s.coord.AttachPanel(s.panelBG)
	return s
}

// DeliverConfig maps configuration onto enhanced prompt delivery settings.
func DeliverConfig(cfg *config.Config) usecase.DeliverConfig {
	return usecase.DeliverConfig{
		AllowedHosts:     cfg.Hosts.Allow,
		FallbackSelector: cfg.Injection.FallbackSelector,
	}
}

func (s *Session) endpointOptions() []relay.Option {
	s.mu.Lock()
	timeout := s.cfg.Relay.Timeout()
	s.mu.Unlock()
	return []relay.Option{
		relay.WithTimeout(timeout),
		relay.WithLogger(*logging.FromContext(s.ctx)),
	}
}

// Open parses page, starts its loop, runs its scripts and starts an engine
// in it. The new tab becomes active.
func (s *Session) Open(page Page) (*Tab, error) {
	s.mu.Lock()
	if _, exists := s.tabs[page.ID]; exists {
		s.mu.Unlock()
		return nil, fmt.Errorf("%w: %s", ErrDuplicateTab, page.ID)
	}
	cfg := s.cfg
	s.mu.Unlock()

	ctx := logging.WithTabID(s.ctx, string(page.ID))
	tab := &Tab{ID: page.ID, Loop: mainloop.New()}

	doc, err := dom.ParseString(page.URL, page.HTML, tab.Loop.Post)
	if err != nil {
		return nil, err
	}
	tab.Doc = doc

	loopCtx, stop := context.WithCancel(s.ctx)
	tab.stop = stop
	s.group.Go(func() error {
		return tab.Loop.Run(loopCtx)
	})

	a, b := relay.NewPipe()
	tab.engineSide = relay.NewEndpoint(a, s.endpointOptions()...)
	tab.bgSide = relay.NewEndpoint(b, s.endpointOptions()...)
	tab.Engine = content.New(doc, tab.Loop, tab.engineSide, content.OptionsFromConfig(cfg))

	// Attached before the engine starts so its announcement is seen.
	s.coord.AttachTab(page.ID, page.URL, background.TabConn{
		Endpoint:  tab.bgSide,
		Document:  doc,
		Scheduler: tab.Loop,
	})

	var startErr error
	err = tab.Do(ctx, func() {
		if len(page.Scripts) > 0 {
			tab.Script, startErr = hostscript.New(ctx, doc)
			if startErr != nil {
				return
			}
			for _, sc := range page.Scripts {
				if startErr = tab.Script.Run(sc.Name, sc.Source); startErr != nil {
					return
				}
			}
		}
		tab.Engine.Start(ctx)
	})
	if err == nil {
		err = startErr
	}
	if err != nil {
		s.coord.DetachTab(page.ID)
		_ = tab.engineSide.Close()
		_ = tab.bgSide.Close()
		stop()
		return nil, fmt.Errorf("open tab %s: %w", page.ID, err)
	}

	s.mu.Lock()
	s.tabs[page.ID] = tab
	s.mu.Unlock()
	s.coord.Activate(page.ID)

	logging.FromContext(ctx).Debug().Str("url", page.URL).Msg("tab opened")
	return tab, nil
}

// Tab returns an open tab.
func (s *Session) Tab(id entity.TabID) (*Tab, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tabs[id]
	return t, ok
}

// Activate focuses a tab for enhanced prompt delivery.
func (s *Session) Activate(id entity.TabID) bool {
	return s.coord.Activate(id)
}

// CloseTab stops a tab's engine and scripts and forgets it.
func (s *Session) CloseTab(ctx context.Context, id entity.TabID) error {
	s.mu.Lock()
	tab, ok := s.tabs[id]
	delete(s.tabs, id)
	s.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: %s", background.ErrUnknownTab, id)
	}

	s.coord.DetachTab(id)
	err := tab.Do(ctx, func() {
		tab.Engine.Stop()
		if tab.Script != nil {
			tab.Script.Close()
		}
		tab.Doc.Close()
	})
	tab.stop()
	return errors.Join(err, tab.engineSide.Close(), tab.bgSide.Close())
}

// Coordinator returns the background coordinator.
func (s *Session) Coordinator() *background.Coordinator {
	return s.coord
}

// Inject sends an injection command to a tab's engine the way the panel
// would, and reports the engine's answer.
func (s *Session) Inject(ctx context.Context, id entity.TabID, text string) (entity.InjectionResult, error) {
	var res entity.InjectionResult
	cmd := entity.InjectionCommand{Action: entity.ActionInjectPrompt, Text: text}
	err := s.coord.SendToTab(ctx, id, entity.ActionInjectPrompt, cmd, &res)
	return res, err
}

// Enhance asks the background for a full prompt enhancement.
func (s *Session) Enhance(ctx context.Context, prompt string) (string, error) {
	var resp entity.EnhanceResponse
	if err := s.panel.Send(ctx, entity.ActionEnhancePrompt, entity.EnhanceRequest{Prompt: prompt}, &resp); err != nil {
		return "", err
	}
	return resp.EnhancedPrompt, nil
}

// DeliverEnhanced hands an enhanced prompt to the background for delivery
// to the active tab.
func (s *Session) DeliverEnhanced(ctx context.Context, prompt string) (entity.DeliveryResult, error) {
	var res entity.DeliveryResult
	err := s.panel.Send(ctx, entity.ActionEnhancedPromptReady, entity.EnhancedPromptReady{EnhancedPrompt: prompt}, &res)
	return res, err
}

// Apply re-applies configuration to the coordinator and to every engine on
// its own loop. Relay timeouts and surface candidates apply to tabs opened
// afterwards.
func (s *Session) Apply(cfg *config.Config) {
	s.mu.Lock()
	s.cfg = cfg
	tabs := make([]*Tab, 0, len(s.tabs))
	for _, t := range s.tabs {
		tabs = append(tabs, t)
	}
	s.mu.Unlock()

	s.coord.Configure(DeliverConfig(cfg))
	opts := content.OptionsFromConfig(cfg)
	for _, t := range tabs {
		t.Loop.Post(func() { t.Engine.Configure(opts) })
	}
	logging.FromContext(s.ctx).Info().Int("tabs", len(tabs)).Msg("configuration applied")
}

// Shutdown stops every loop and closes all endpoints.
func (s *Session) Shutdown() error {
	s.mu.Lock()
	tabs := make([]*Tab, 0, len(s.tabs))
	for _, t := range s.tabs {
		tabs = append(tabs, t)
	}
	s.tabs = make(map[entity.TabID]*Tab)
	s.mu.Unlock()

	var errs []error
	for _, t := range tabs {
		errs = append(errs, t.engineSide.Close(), t.bgSide.Close())
	}
	errs = append(errs, s.panel.Close(), s.panelBG.Close())

	s.cancel()
	errs = append(errs, s.group.Wait())
	for _, t := range tabs {
		t.Doc.Close()
	}
	return errors.Join(errs...)
}
