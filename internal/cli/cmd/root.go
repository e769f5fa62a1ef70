// Package cmd provides Cobra CLI commands for gregify.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/bnema/gregify/internal/cli"
	"github.com/bnema/gregify/internal/domain/build"
)

var (
	app       *cli.App
	buildInfo build.Info
	rootCmd   = &cobra.Command{
		Use:   "gregify",
		Short: "Ghost-text prompt suggestions and prompt injection for chat front ends",
		Long: `gregify - inline prompt suggestions for chat front ends.

gregify binds to the prompt box of a chat page, asks a prompt service for a
better version of what you type and previews it as ghost text that Tab
accepts. Enhanced prompts can be injected into the page, and the page may
re-render its composer at any time without losing the binding.

Use 'gregify play' for an interactive composer, 'gregify replay' to run
scripted sessions on a virtual clock, and 'gregify usage' to see what the
prompt service was asked.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			switch cmd.Name() {
			case "help", "completion":
				return nil
			}

			var err error
			app, err = cli.NewApp()
			if err != nil {
				return fmt.Errorf("initialize app: %w", err)
			}
			app.BuildInfo = buildInfo
			return nil
		},
		PersistentPostRun: func(_ *cobra.Command, _ []string) {
			if app != nil {
				_ = app.Close()
			}
		},
	}
)

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// GetApp returns the initialized app (for use by subcommands).
func GetApp() *cli.App {
	return app
}

// SetBuildInfo sets the build information (called from main.go before Execute).
func SetBuildInfo(info build.Info) {
	buildInfo = info
}

func requireApp() (*cli.App, error) {
	if app == nil {
		return nil, fmt.Errorf("app not initialized")
	}
	return app, nil
}
