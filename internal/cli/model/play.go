// Package model provides Bubble Tea models for CLI commands.
package model

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/bnema/gregify/internal/cli/styles"
	"github.com/bnema/gregify/internal/domain/entity"
	"github.com/bnema/gregify/internal/logging"
)

const pollInterval = 50 * time.Millisecond

// Page is the host page the play screen drives. Every call runs on the
// page's loop.
type Page interface {
	// Type replaces the composer text as a user edit would.
	Type(ctx context.Context, text string) error
	// Key sends a keydown to the composer and reports whether the page
	// consumed it.
	Key(ctx context.Context, key string) (bool, error)
	// Snapshot reads what the user currently sees.
	Snapshot(ctx context.Context) (PageSnapshot, error)
}

// PageSnapshot is the visible state of a page.
type PageSnapshot struct {
	Value    string
	Ghost    string
	State    entity.PipelineState
	Binding  entity.BindingState
	Epoch    entity.BindingEpoch
	Requests int
	Sent     []string
}

// PlayModel is a terminal composer backed by a live engine: typing goes to
// the page, ghost text comes back from it.
type PlayModel struct {
	input textinput.Model
	theme *styles.Theme

	page PageSnapshot
	// flash is a one-line notice such as a config reload.
	flash string
	err   error
	width int

	ctx  context.Context
	host Page
}

// NewPlayModel creates the play screen for host.
func NewPlayModel(ctx context.Context, theme *styles.Theme, host Page) PlayModel {
	input := styles.NewPromptInput(theme)
	input.Focus()

	return PlayModel{
		input: input,
		theme: theme,
		ctx:   ctx,
		host:  host,
		width: 80,
	}
}

// snapshotMsg carries a fresh page snapshot.
type snapshotMsg struct {
	snap PageSnapshot
	err  error
}

// ConfigReloadedMsg tells the screen that configuration was re-applied.
type ConfigReloadedMsg struct{}

// Init implements tea.Model.
func (m PlayModel) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.poll(0))
}

func (m PlayModel) poll(after time.Duration) tea.Cmd {
	read := func() tea.Msg {
		snap, err := m.host.Snapshot(m.ctx)
		return snapshotMsg{snap: snap, err: err}
	}
	if after == 0 {
		return read
	}
	return tea.Tick(after, func(time.Time) tea.Msg { return read() })
}

// Update implements tea.Model.
func (m PlayModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case snapshotMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, tea.Quit
		}
		m.page = msg.snap
		return m, m.poll(pollInterval)

	case ConfigReloadedMsg:
		m.flash = "configuration reloaded"
		return m, nil

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyCtrlD:
			return m, tea.Quit
		case tea.KeyTab:
			return m.sendKey("Tab")
		case tea.KeyEsc:
			return m.sendKey("Escape")
		case tea.KeyEnter:
			return m.sendKey("Enter")
		}
	}

	before := m.input.Value()
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if after := m.input.Value(); after != before {
		m.flash = ""
		if err := m.host.Type(m.ctx, after); err != nil {
			logging.FromContext(m.ctx).Debug().Err(err).Msg("typing into page failed")
			m.flash = err.Error()
		}
	}
	return m, cmd
}

// sendKey forwards a key to the page and pulls the composer text back, since
// accepting or sending rewrites it.
func (m PlayModel) sendKey(key string) (tea.Model, tea.Cmd) {
	consumed, err := m.host.Key(m.ctx, key)
	if err != nil {
		m.err = err
		return m, tea.Quit
	}

	snap, err := m.host.Snapshot(m.ctx)
	if err != nil {
		m.err = err
		return m, tea.Quit
	}
	m.page = snap
	if consumed || snap.Value != m.input.Value() {
		m.input.SetValue(snap.Value)
		m.input.CursorEnd()
	}
	return m, nil
}

// Err returns the error that ended the screen, if any.
func (m PlayModel) Err() error {
	return m.err
}

// View implements tea.Model.
func (m PlayModel) View() string {
	var sb strings.Builder

	sb.WriteString("\n  " + m.theme.Title.Render("gregify play") + "  " + m.status() + "\n\n")

	for _, s := range m.page.Sent {
		sb.WriteString("  " + m.theme.BadgeMuted.Render("you") + " " + m.theme.Normal.Render(s) + "\n")
	}
	if len(m.page.Sent) > 0 {
		sb.WriteString("\n")
	}

	line := m.input.View()
	if m.page.Ghost != "" && m.page.State == entity.PipelineShowing {
		line += m.theme.GhostLine(m.input.Value(), m.page.Ghost)
	}
	boxWidth := max(m.width-4, 20)
	sb.WriteString(m.theme.InputFocused.Width(boxWidth).Render(line) + "\n")

	if m.flash != "" {
		sb.WriteString("  " + m.theme.Subtle.Render(m.flash) + "\n")
	}
	sb.WriteString("  " + m.help() + "\n")
	return sb.String()
}

func (m PlayModel) status() string {
	state := string(m.page.State)
	if state == "" {
		state = string(entity.PipelineIdle)
	}
	badge := m.theme.BadgeMuted
	if m.page.State == entity.PipelineShowing {
		badge = m.theme.Badge
	}
	binding := m.theme.Subtle.Render(fmt.Sprintf("%s epoch %d", strings.ToLower(string(m.page.Binding)), m.page.Epoch))
	requests := m.theme.Subtle.Render(fmt.Sprintf("%d requests", m.page.Requests))
	return lipgloss.JoinHorizontal(lipgloss.Center, badge.Render(state), "  ", binding, "  ", requests)
}

func (m PlayModel) help() string {
	keys := []struct{ key, desc string }{
		{"tab", "accept"},
		{"esc", "dismiss"},
		{"enter", "send"},
		{"ctrl+c", "quit"},
	}
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, m.theme.HelpKey.Render(k.key)+" "+m.theme.HelpDesc.Render(k.desc))
	}
	return strings.Join(parts, m.theme.HelpDesc.Render(" • "))
}
