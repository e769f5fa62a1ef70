package model

import (
	"errors"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/bnema/gregify/internal/cli/styles"
)

// ErrCancelled is returned when the user interrupts a task.
var ErrCancelled = errors.New("cancelled")

// TaskModel shows a spinner while a single blocking call runs.
type TaskModel struct {
	loading styles.LoadingModel
	run     func() error

	done bool
	err  error
}

// taskDoneMsg is sent when the call returns.
type taskDoneMsg struct {
	err error
}

// NewTaskModel creates a spinner for run.
func NewTaskModel(theme *styles.Theme, message string, run func() error) TaskModel {
	return TaskModel{
		loading: styles.NewLoading(theme, message),
		run:     run,
	}
}

// Init implements tea.Model.
func (m TaskModel) Init() tea.Cmd {
	return tea.Batch(m.loading.Spinner.Tick, func() tea.Msg {
		return taskDoneMsg{err: m.run()}
	})
}

// Update implements tea.Model.
func (m TaskModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			m.err = ErrCancelled
			return m, tea.Quit
		}
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.loading.Spinner, cmd = m.loading.Spinner.Update(msg)
		return m, cmd
	case taskDoneMsg:
		m.done = true
		m.err = msg.err
		return m, tea.Quit
	}
	return m, nil
}

// View implements tea.Model.
func (m TaskModel) View() string {
	if m.done {
		return ""
	}
	return "\n  " + m.loading.View() + "\n"
}

// Err returns the call's error, or ErrCancelled.
func (m TaskModel) Err() error {
	return m.err
}
