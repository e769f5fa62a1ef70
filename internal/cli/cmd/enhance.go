package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/bnema/gregify/internal/cli/styles"
)

var (
	enhancePage    pageFlags
	enhanceDeliver bool
)

var enhanceCmd = &cobra.Command{
	Use:   "enhance <prompt>...",
	Short: "Ask the prompt service for an enhanced prompt",
	Long: `Send a prompt to the prompt service's enhancement endpoint through the
background coordinator. The call is recorded in the usage log.

With --deliver the enhanced prompt is then delivered to a chat page as an
enhancedPromptReady message, subject to the host allow-list.

Examples:
  gregify enhance "write a poem"
  gregify enhance --deliver --url https://chatgpt.com/ "write a poem"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runEnhance,
}

func init() {
	rootCmd.AddCommand(enhanceCmd)
	enhancePage.register(enhanceCmd)
	enhanceCmd.Flags().BoolVar(&enhanceDeliver, "deliver", false, "deliver the result to a chat page")
}

func runEnhance(_ *cobra.Command, args []string) error {
	app, err := requireApp()
	if err != nil {
		return err
	}
	renderer := styles.NewResultRenderer(app.Theme)
	prompt := strings.Join(args, " ")

	ctx := app.Ctx()
	s := app.NewSession(ctx, nil)
	defer func() { _ = s.Shutdown() }()

	var enhanced string
	err = runWithSpinner(app.Theme, "Enhancing prompt...", func() error {
		var callErr error
		enhanced, callErr = s.Enhance(ctx, prompt)
		return callErr
	})
	if err != nil {
		fmt.Println(renderer.RenderError(err))
		return err
	}
	fmt.Print(renderer.RenderEnhanced(prompt, enhanced))

	if !enhanceDeliver {
		return nil
	}
	res, err := deliver(ctx, s, &enhancePage, enhanced)
	if err != nil {
		fmt.Println(renderer.RenderError(err))
		return err
	}
	fmt.Print(renderer.RenderDelivery(res))
	return nil
}
