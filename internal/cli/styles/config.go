package styles

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

// ConfigRenderer renders config command output.
type ConfigRenderer struct {
	theme *Theme
}

// NewConfigRenderer creates a new config renderer with the given theme.
func NewConfigRenderer(theme *Theme) *ConfigRenderer {
	return &ConfigRenderer{theme: theme}
}

// RenderPaths renders the config, schema and database locations.
func (r *ConfigRenderer) RenderPaths(configFile, schemaFile, dbFile string, exists bool) string {
	iconStyle := lipgloss.NewStyle().Foreground(r.theme.Accent)
	pathStyle := r.theme.Subtle

	status := r.theme.SuccessStyle.Render(IconCheck)
	if !exists {
		status = r.theme.WarningStyle.Render("not created yet")
	}

	return fmt.Sprintf(
		"\n  %s Config   %s %s\n  %s Schema   %s\n  %s Database %s\n",
		iconStyle.Render(IconConfig), pathStyle.Render(configFile), status,
		iconStyle.Render(IconFolder), pathStyle.Render(schemaFile),
		iconStyle.Render(IconDatabase), pathStyle.Render(dbFile),
	)
}

// RenderSource renders where the effective configuration comes from.
func (r *ConfigRenderer) RenderSource(configFile string, defaults bool) string {
	iconStyle := lipgloss.NewStyle().Foreground(r.theme.Accent)
	if defaults {
		return fmt.Sprintf("  %s %s\n", r.theme.WarningStyle.Render(IconWarning),
			r.theme.Subtle.Render("built-in defaults (config file unavailable)"))
	}
	return fmt.Sprintf("  %s %s\n", iconStyle.Render(IconConfig), r.theme.Subtle.Render(configFile))
}

// RenderSchemaWritten confirms a schema export.
func (r *ConfigRenderer) RenderSchemaWritten(path string) string {
	return fmt.Sprintf(
		"\n  %s Schema written to %s\n",
		r.theme.SuccessStyle.Render(IconCheck),
		r.theme.Subtle.Render(path),
	)
}

// RenderError renders an error message.
func (r *ConfigRenderer) RenderError(err error) string {
	iconStyle := lipgloss.NewStyle().Foreground(r.theme.Error)

	return fmt.Sprintf(
		"\n  %s Config error: %v\n",
		iconStyle.Render(IconX),
		err,
	)
}
