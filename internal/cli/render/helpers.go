package render

import (
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/trebuchet-org/sling/internal/domain/models"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// FormatWarning formats a warning message with the warning icon
func FormatWarning(message string) string {
	return color.New(color.FgYellow).Sprintf("⚠️  %s", message)
}

// FormatError formats an error message with the error icon
func FormatError(message string) string {
	if len(message) > 0 {
		message = strings.ToUpper(message[:1]) + message[1:]
	}
	return color.New(color.FgRed).Sprintf("❌ %s", message)
}

// FormatSuccess formats a success message with the success icon
func FormatSuccess(message string) string {
	return color.New(color.FgGreen).Sprintf("✅ %s", message)
}

var titleCaser = cases.Title(language.English)

// statusStyle returns the icon and color used for a step status
func statusStyle(status models.StepStatus) (string, *color.Color) {
	switch status {
	case models.StepDeployed:
		return "✓", color.New(color.FgGreen, color.Bold)
	case models.StepExisting:
		return "=", color.New(color.FgCyan)
	case models.StepFailed:
		return "✗", color.New(color.FgRed, color.Bold)
	case models.StepBlocked:
		return "⊘", color.New(color.FgYellow)
	default:
		return "○", color.New(color.FgWhite, color.Faint)
	}
}

// FormatStatus renders a status as "✓ Deployed"
func FormatStatus(status models.StepStatus) string {
	icon, c := statusStyle(status)
	return c.Sprintf("%s %s", icon, titleCaser.String(string(status)))
}

// newTable returns a borderless table writing to out
func newTable(out io.Writer) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(out)
	t.SetStyle(table.StyleLight)
	t.Style().Options.SeparateRows = false
	t.Style().Options.DrawBorder = false
	t.Style().Options.SeparateColumns = false
	t.Style().Box = table.BoxStyle{
		PaddingRight:     "   ",
		MiddleHorizontal: "─",
	}
	return t
}
