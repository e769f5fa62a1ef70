package styles

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/bnema/gregify/internal/domain/entity"
)

// ResultRenderer renders the outcome of inject, enhance and replay.
type ResultRenderer struct {
	theme *Theme
}

// NewResultRenderer creates a result renderer with the given theme.
func NewResultRenderer(theme *Theme) *ResultRenderer {
	return &ResultRenderer{theme: theme}
}

// RenderInjection renders an injection result and the composer afterwards.
func (r *ResultRenderer) RenderInjection(res entity.InjectionResult, composer string, sent []string) string {
	var sb strings.Builder
	if res.Success {
		fmt.Fprintf(&sb, "\n  %s Prompt injected\n", r.theme.SuccessStyle.Render(IconCheck))
	} else {
		fmt.Fprintf(&sb, "\n  %s Injection failed: no editable surface\n", r.theme.ErrorStyle.Render(IconX))
	}
	fmt.Fprintf(&sb, "  %s Composer %s\n", r.icon(IconPrompt), r.quote(composer))
	for _, s := range sent {
		fmt.Fprintf(&sb, "  %s Sent     %s\n", r.icon(IconArrow), r.quote(s))
	}
	return sb.String()
}

// RenderEnhanced renders an enhanced prompt.
func (r *ResultRenderer) RenderEnhanced(original, enhanced string) string {
	header := fmt.Sprintf("%s %s", r.icon(IconMagic), r.theme.Title.Render("Enhanced prompt"))
	body := lipgloss.JoinVertical(lipgloss.Left,
		r.theme.Subtle.Render(original),
		"",
		r.theme.Normal.Render(enhanced),
	)
	return "\n  " + header + "\n" + r.theme.Box.Render(body) + "\n"
}

// RenderDelivery renders the delivery of an enhanced prompt to a page.
func (r *ResultRenderer) RenderDelivery(res entity.DeliveryResult) string {
	switch {
	case res.Success && res.Fallback:
		return fmt.Sprintf("  %s Delivered to %s with the direct writer\n",
			r.theme.WarningStyle.Render(IconWarning), res.TabID)
	case res.Success:
		return fmt.Sprintf("  %s Delivered to %s\n", r.theme.SuccessStyle.Render(IconCheck), res.TabID)
	default:
		return fmt.Sprintf("  %s Not delivered: %s\n", r.theme.ErrorStyle.Render(IconX), res.Reason)
	}
}

// RenderTranscript renders a replay transcript, dimming backend events.
func (r *ResultRenderer) RenderTranscript(name, transcript string, err error) string {
	var sb strings.Builder
	status := r.theme.SuccessStyle.Render(IconCheck)
	if err != nil {
		status = r.theme.ErrorStyle.Render(IconX)
	}
	fmt.Fprintf(&sb, "\n  %s %s\n", status, r.theme.Title.Render(name))

	for _, line := range strings.Split(strings.TrimRight(transcript, "\n"), "\n") {
		if line == "" {
			continue
		}
		if strings.Contains(line, "   backend ") {
			sb.WriteString("    " + r.theme.Subtle.Render(line) + "\n")
			continue
		}
		sb.WriteString("    " + r.theme.Normal.Render(line) + "\n")
	}
	if err != nil {
		fmt.Fprintf(&sb, "    %s\n", r.theme.ErrorStyle.Render(err.Error()))
	}
	return sb.String()
}

// RenderError renders a failed command.
func (r *ResultRenderer) RenderError(err error) string {
	return fmt.Sprintf("\n  %s %v\n", r.theme.ErrorStyle.Render(IconX), err)
}

func (r *ResultRenderer) icon(icon string) string {
	return lipgloss.NewStyle().Foreground(r.theme.Accent).Render(icon)
}

func (r *ResultRenderer) quote(s string) string {
	if s == "" {
		return r.theme.Subtle.Render("(empty)")
	}
	return r.theme.Highlight.Render(s)
}
