package cmd

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/bnema/gregify/internal/cli/model"
	"github.com/bnema/gregify/internal/cli/styles"
)

// runWithSpinner runs fn behind a spinner drawn on stderr so stdout only
// carries the result.
func runWithSpinner(theme *styles.Theme, message string, fn func() error) error {
	p := tea.NewProgram(model.NewTaskModel(theme, message, fn), tea.WithOutput(os.Stderr))
	final, err := p.Run()
	if err != nil {
		return fmt.Errorf("run spinner: %w", err)
	}
	task, ok := final.(model.TaskModel)
	if !ok {
		return fmt.Errorf("unexpected model type")
	}
	return task.Err()
}
