package cli

import (
	"context"
	"fmt"

	"github.com/bnema/gregify/internal/app/session"
	"github.com/bnema/gregify/internal/cli/model"
	"github.com/bnema/gregify/internal/infrastructure/dom"
)

// ComposerSelector locates the prompt input of the bundled chat page.
const ComposerSelector = "#prompt-textarea"

// TabPage drives an open session tab for the play screen.
type TabPage struct {
	Tab *session.Tab
}

var _ model.Page = (*TabPage)(nil)

// Type replaces the composer text as a user edit.
func (p *TabPage) Type(ctx context.Context, text string) error {
	var err error
	doErr := p.Tab.Do(ctx, func() {
		var el *dom.Element
		if el, err = p.composer(); err == nil {
			err = p.Tab.Doc.Type(el, text)
		}
	})
	if doErr != nil {
		return doErr
	}
	return err
}

// Key dispatches a keydown on the composer.
func (p *TabPage) Key(ctx context.Context, key string) (bool, error) {
	var (
		consumed bool
		err      error
	)
	doErr := p.Tab.Do(ctx, func() {
		var el *dom.Element
		if el, err = p.composer(); err == nil {
			consumed, err = p.Tab.Doc.KeyDown(el, key)
		}
	})
	if doErr != nil {
		return false, doErr
	}
	return consumed, err
}

// Snapshot reads the engine and the composer.
func (p *TabPage) Snapshot(ctx context.Context) (model.PageSnapshot, error) {
	var snap model.PageSnapshot
	err := p.Tab.Do(ctx, func() {
		snap = Snapshot(p.Tab)
	})
	return snap, err
}

// composer returns the current prompt input. The host re-renders it after
// every send, so it is looked up each time.
func (p *TabPage) composer() (*dom.Element, error) {
	el, err := p.Tab.Doc.Find(ComposerSelector)
	if err != nil {
		return nil, err
	}
	if el == nil {
		return nil, fmt.Errorf("no composer matches %s", ComposerSelector)
	}
	return el, nil
}

// Snapshot reads what the user sees in tab. It must run on the tab's loop.
func Snapshot(tab *session.Tab) model.PageSnapshot {
	snap := model.PageSnapshot{
		State:    tab.Engine.State(),
		Requests: tab.Engine.Issued(),
		Sent:     SentMessages(tab),
	}
	snap.Binding, snap.Epoch = tab.Engine.Binding()
	if ov := tab.Engine.Overlay(); ov.Visible() {
		snap.Ghost = ov.Text()
	}
	if el, err := tab.Doc.Find(ComposerSelector); err == nil && el != nil {
		snap.Value = tab.Doc.Value(el)
	}
	return snap
}

// SentMessages returns what the bundled chat page has sent so far. It must
// run on the tab's loop.
func SentMessages(tab *session.Tab) []string {
	if tab.Script == nil {
		return nil
	}
	raw, _ := tab.Script.State()["sent"].([]any)
	sent := make([]string, 0, len(raw))
	for _, v := range raw {
		if s, ok := v.(string); ok {
			sent = append(sent, s)
		}
	}
	return sent
}
