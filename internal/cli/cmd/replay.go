package cmd

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/bnema/gregify/internal/app/replay"
	"github.com/bnema/gregify/internal/cli/styles"
)

var replayRaw bool

var replayCmd = &cobra.Command{
	Use:   "replay <script.yaml>...",
	Short: "Run scripted sessions on a virtual clock",
	Long: `Run replay scripts against a fresh engine. Time is virtual, the prompt
service is replaced by the script's backend rules, and every step prints
what the user would see: pipeline state, binding, ghost text and composer.

--raw prints the plain transcript, in the format golden files use.

Example script:
  name: accept a suggestion
  backend:
    - prompt: explain quantum computing
      suggestion: explain quantum computing in simple terms
      delay: 200ms
  steps:
    - type: explain quantum computing
    - wait: 700ms
    - key: Tab
    - expect: {value: explain quantum computing in simple terms}`,
	Args: cobra.MinimumNArgs(1),
	RunE: runReplay,
}

func init() {
	rootCmd.AddCommand(replayCmd)
	replayCmd.Flags().BoolVar(&replayRaw, "raw", false, "print plain transcripts")
}

func runReplay(_ *cobra.Command, args []string) error {
	app, err := requireApp()
	if err != nil {
		return err
	}
	renderer := styles.NewResultRenderer(app.Theme)

	var failed []string
	for _, path := range args {
		script, err := replay.Load(path)
		if err != nil {
			fmt.Println(renderer.RenderError(err))
			failed = append(failed, path)
			continue
		}

		transcript, runErr := replay.Run(app.Ctx(), script)
		if runErr != nil {
			failed = append(failed, path)
		}

		if replayRaw {
			fmt.Print(transcript)
			if runErr != nil {
				fmt.Println(runErr)
			}
			continue
		}
		name := script.Name
		if name == "" {
			name = filepath.Base(path)
		}
		fmt.Print(renderer.RenderTranscript(name, transcript, runErr))
	}

	if len(failed) > 0 {
		return errors.New("replay failed: " + strings.Join(failed, ", "))
	}
	return nil
}
