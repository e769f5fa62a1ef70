package cmd

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/bnema/gregify/internal/cli"
	"github.com/bnema/gregify/internal/cli/model"
	"github.com/bnema/gregify/internal/infrastructure/config"
	"github.com/bnema/gregify/internal/logging"
)

var playPage pageFlags

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Type into a chat page with live ghost-text suggestions",
	Long: `Open the bundled chat page with a running engine and drive its composer
from the terminal. Suggestions from the prompt service appear as ghost text
after the cursor; Tab accepts, Esc dismisses and Enter sends.

Edits to the config file are applied to the running engine.`,
	RunE: runPlay,
}

func init() {
	rootCmd.AddCommand(playCmd)
	playPage.register(playCmd)
}

func runPlay(_ *cobra.Command, _ []string) error {
	app, err := requireApp()
	if err != nil {
		return err
	}

	ctx, closeLog, err := playLogContext(app)
	if err != nil {
		return err
	}
	defer closeLog()
	ctx = logging.WithComponent(ctx, "play")
	s := app.NewSession(ctx, nil)
	defer func() { _ = s.Shutdown() }()

	tab, err := playPage.open(s)
	if err != nil {
		return err
	}

	p := tea.NewProgram(model.NewPlayModel(ctx, app.Theme, &cli.TabPage{Tab: tab}), tea.WithAltScreen())

	if app.Manager != nil {
		app.Manager.OnConfigChange(func(cfg *config.Config) {
			s.Apply(cfg)
			p.Send(model.ConfigReloadedMsg{})
		})
		if err := app.Manager.Watch(ctx); err != nil {
			logging.FromContext(ctx).Warn().Err(err).Msg("config watch unavailable")
		}
	}

	final, err := p.Run()
	if err != nil {
		return fmt.Errorf("run play: %w", err)
	}
	if m, ok := final.(model.PlayModel); ok && m.Err() != nil {
		return m.Err()
	}
	return nil
}

// playLogContext sends logs to a rotated file while the screen owns the
// terminal.
func playLogContext(app *cli.App) (context.Context, func(), error) {
	dirs, err := config.GetXDGDirs()
	if err != nil {
		return nil, nil, err
	}
	logs := app.Config.Logging
	w, err := logging.NewLogRotator(dirs.StateHome, "play.log", logs.MaxSizeMB, logs.MaxBackups, logs.MaxAgeDays, logs.Compress)
	if err != nil {
		return nil, nil, fmt.Errorf("open play log: %w", err)
	}

	logCfg := logging.DefaultConfig()
	logCfg.Level = logging.ParseLevel(logs.Level)
	logCfg.Format = "json"
	logCfg.Output = w
	ctx := logging.WithContext(context.Background(), logging.New(logCfg))
	return ctx, func() { _ = w.Close() }, nil
}
