package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/bnema/gregify/internal/app/session"
	"github.com/bnema/gregify/internal/cli"
	"github.com/bnema/gregify/internal/cli/styles"
	"github.com/bnema/gregify/internal/domain/entity"
)

var (
	injectPage   pageFlags
	injectSubmit bool
)

var injectCmd = &cobra.Command{
	Use:   "inject <text>...",
	Short: "Inject a prompt into a chat page",
	Long: `Open a chat page, start an engine in it and send it an injectPrompt
command the way the extension panel would.

With --submit the page's send button is clicked after the write, and the
composer the page re-renders afterwards is shown.

Examples:
  gregify inject "Summarize the French revolution"
  gregify inject --submit "Plan a trip to Lisbon"
  gregify inject --page ./composer.html "hello"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runInject,
}

func init() {
	rootCmd.AddCommand(injectCmd)
	injectPage.register(injectCmd)
	injectCmd.Flags().BoolVar(&injectSubmit, "submit", false, "click the send button after injecting")
}

func runInject(_ *cobra.Command, args []string) error {
	app, err := requireApp()
	if err != nil {
		return err
	}
	renderer := styles.NewResultRenderer(app.Theme)

	cfg := *app.Config
	if injectSubmit {
		cfg.Injection.AutoSubmit = true
	}

	ctx := app.Ctx()
	s := app.NewSession(ctx, &cfg)
	defer func() { _ = s.Shutdown() }()

	tab, err := injectPage.open(s)
	if err != nil {
		fmt.Println(renderer.RenderError(err))
		return err
	}

	res, err := s.Inject(ctx, tab.ID, strings.Join(args, " "))
	if err != nil {
		fmt.Println(renderer.RenderError(err))
		return err
	}

	var (
		composer string
		sent     []string
	)
	err = tab.Do(context.Background(), func() {
		composer = cli.Snapshot(tab).Value
		sent = cli.SentMessages(tab)
	})
	if err != nil {
		return err
	}

	fmt.Print(renderer.RenderInjection(res, composer, sent))
	if !res.Success {
		return fmt.Errorf("injection failed")
	}
	return nil
}

// deliver opens the page in s and hands prompt to the background for
// delivery to it.
func deliver(ctx context.Context, s *session.Session, flags *pageFlags, prompt string) (entity.DeliveryResult, error) {
	if _, err := flags.open(s); err != nil {
		return entity.DeliveryResult{}, err
	}
	return s.DeliverEnhanced(ctx, prompt)
}
