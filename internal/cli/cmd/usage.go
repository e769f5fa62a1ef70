package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/bubbles/table"
	"github.com/spf13/cobra"

	"github.com/bnema/gregify/internal/cli/styles"
)

const (
	defaultUsageSince  = 7 * 24 * time.Hour
	defaultUsageRecent = 10
	usageTableWidth    = 80
)

var (
	usageSince  time.Duration
	usageRecent int
	usageJSON   bool
)

var usageCmd = &cobra.Command{
	Use:   "usage",
	Short: "Show prompt service usage",
	Long: `Summarize the suggestion and enhancement calls recorded in the usage log
and list the most recent ones. Prompts are never stored, only their length
and a fingerprint.`,
	RunE: runUsage,
}

func init() {
	rootCmd.AddCommand(usageCmd)
	usageCmd.Flags().DurationVar(&usageSince, "since", defaultUsageSince, "summarize calls newer than this")
	usageCmd.Flags().IntVar(&usageRecent, "recent", defaultUsageRecent, "number of recent calls to list")
	usageCmd.Flags().BoolVar(&usageJSON, "json", false, "output as JSON")
}

func runUsage(_ *cobra.Command, _ []string) error {
	app, err := requireApp()
	if err != nil {
		return err
	}
	ctx := app.Ctx()

	summaries, err := app.UsageUC.Summaries(ctx, time.Now().Add(-usageSince))
	if err != nil {
		return fmt.Errorf("read usage summaries: %w", err)
	}
	recent, err := app.UsageUC.Recent(ctx, usageRecent)
	if err != nil {
		return fmt.Errorf("read recent usage: %w", err)
	}

	if usageJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(map[string]any{
			"summaries": summaries,
			"recent":    recent,
		})
	}

	theme := app.Theme
	if len(summaries) == 0 && len(recent) == 0 {
		fmt.Printf("\n  %s %s\n", theme.Subtle.Render(styles.IconInfo), theme.Subtle.Render("No prompt service calls recorded yet."))
		return nil
	}

	summaryRows := make([]table.Row, 0, len(summaries))
	for _, s := range summaries {
		summaryRows = append(summaryRows, styles.UsageSummaryRow(s))
	}
	recentRows := make([]table.Row, 0, len(recent))
	for _, r := range recent {
		recentRows = append(recentRows, styles.UsageRecordRow(r))
	}

	summaryTable := styles.NewStyledTable(theme, styles.UsageSummaryColumns(), summaryRows,
		usageTableWidth, styles.TableHeight(len(summaryRows)))
	recentTable := styles.NewStyledTable(theme, styles.UsageRecordColumns(), recentRows,
		usageTableWidth, styles.TableHeight(len(recentRows)))

	fmt.Printf("\n  %s %s\n\n", theme.Highlight.Render(styles.IconClock),
		theme.Title.Render(fmt.Sprintf("Last %s", usageSince)))
	fmt.Println(summaryTable.View())
	fmt.Printf("\n  %s %s\n\n", theme.Highlight.Render(styles.IconDatabase), theme.Title.Render("Recent calls"))
	fmt.Println(recentTable.View())
	return nil
}
