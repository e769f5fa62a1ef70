package styles

import (
	"fmt"
	"strconv"
	"time"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"

	"github.com/bnema/gregify/internal/domain/entity"
)

// NewStyledTable creates a themed table model.
func NewStyledTable(theme *Theme, columns []table.Column, rows []table.Row, width, height int) table.Model {
	t := table.New(
		table.WithColumns(columns),
		table.WithRows(rows),
		table.WithFocused(false),
		table.WithHeight(height),
		table.WithWidth(width),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(theme.Border).
		BorderBottom(true).
		Foreground(theme.Accent).
		Bold(true)
	s.Selected = s.Cell.
		Foreground(theme.Text)
	s.Cell = s.Cell.
		Foreground(theme.Text)

	t.SetStyles(s)
	return t
}

// UsageSummaryColumns returns columns for the per-kind usage table.
func UsageSummaryColumns() []table.Column {
	return []table.Column{
		{Title: "Kind", Width: 12},
		{Title: "Calls", Width: 8},
		{Title: "Success", Width: 9},
		{Title: "Avg latency", Width: 12},
		{Title: "Last", Width: 18},
	}
}

// UsageRecordColumns returns columns for the recent calls table.
func UsageRecordColumns() []table.Column {
	return []table.Column{
		{Title: "When", Width: 18},
		{Title: "Kind", Width: 12},
		{Title: "Chars", Width: 7},
		{Title: "OK", Width: 4},
		{Title: "Latency", Width: 9},
		{Title: "Fingerprint", Width: 14},
	}
}

// UsageSummaryRow converts a summary to a table row.
func UsageSummaryRow(s entity.UsageSummary) table.Row {
	return table.Row{
		string(s.Kind),
		formatInt(s.Total),
		fmt.Sprintf("%.0f%%", s.SuccessRate()*100),
		formatLatency(s.AvgLatency),
		formatWhen(s.LastActivity),
	}
}

// UsageRecordRow converts a record to a table row.
func UsageRecordRow(r *entity.UsageRecord) table.Row {
	ok := IconX
	if r.Success {
		ok = IconCheck
	}
	fp := r.Fingerprint
	if len(fp) > 12 {
		fp = fp[:12]
	}
	return table.Row{
		formatWhen(r.CreatedAt),
		string(r.Kind),
		strconv.Itoa(r.InputChars),
		ok,
		formatLatency(r.Latency),
		fp,
	}
}

// TableHeight returns the height needed to show rows without scrolling.
func TableHeight(rows int) int {
	return rows + 1
}

// formatInt formats an integer for display.
func formatInt(n int) string {
	switch {
	case n >= 1000000:
		return formatFloat(float64(n)/1000000) + "M"
	case n >= 1000:
		return formatFloat(float64(n)/1000) + "K"
	default:
		return strconv.Itoa(n)
	}
}

// formatFloat formats a float with one decimal, dropping a zero decimal.
func formatFloat(f float64) string {
	i := int(f * 10)
	if i%10 == 0 {
		return strconv.Itoa(i / 10)
	}
	return strconv.Itoa(i/10) + "." + strconv.Itoa(i%10)
}

func formatLatency(d time.Duration) string {
	if d <= 0 {
		return "-"
	}
	return d.Round(time.Millisecond).String()
}

func formatWhen(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format("2006-01-02 15:04")
}
