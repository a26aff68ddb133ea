// Package console formats user-facing output: status messages, tables and
// lint reports. Styling is applied only when stdout is a terminal.
package console

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/getumbrel/umbrel-linter/pkg/tty"
)

var (
	colorError   = lipgloss.Color("#E74C3C")
	colorWarning = lipgloss.Color("#F4D03F")
	colorInfo    = lipgloss.Color("#3498DB")
	colorSuccess = lipgloss.Color("#2ECC71")
	colorMuted   = lipgloss.Color("#7F8C8D")
)

var (
	errorStyle   = lipgloss.NewStyle().Foreground(colorError)
	warningStyle = lipgloss.NewStyle().Foreground(colorWarning)
	infoStyle    = lipgloss.NewStyle().Foreground(colorInfo)
	successStyle = lipgloss.NewStyle().Foreground(colorSuccess)
	verboseStyle = lipgloss.NewStyle().Foreground(colorMuted).Italic(true)
	mutedStyle   = lipgloss.NewStyle().Foreground(colorMuted)
	boldStyle    = lipgloss.NewStyle().Bold(true)
	commandStyle = lipgloss.NewStyle().Foreground(colorInfo).Bold(true)

	tableHeaderStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	tableCellStyle   = lipgloss.NewStyle().Padding(0, 1)
	tableBorderStyle = lipgloss.NewStyle().Foreground(colorMuted)
	tableTitleStyle  = lipgloss.NewStyle().Bold(true)
)

// isTTY is swapped out in tests.
var isTTY = tty.IsStdoutTerminal

func applyStyle(style lipgloss.Style, text string) string {
	if isTTY() {
		return style.Render(text)
	}
	return text
}

// FormatSuccessMessage formats a success message.
func FormatSuccessMessage(message string) string {
	return applyStyle(successStyle, "✓ "+message)
}

// FormatInfoMessage formats an informational message.
func FormatInfoMessage(message string) string {
	return applyStyle(infoStyle, "ℹ ") + message
}

// FormatWarningMessage formats a warning message.
func FormatWarningMessage(message string) string {
	return applyStyle(warningStyle, "⚠ ") + message
}

// FormatErrorMessage formats an error message.
func FormatErrorMessage(message string) string {
	return applyStyle(errorStyle, "✗ ") + message
}

// FormatVerboseMessage formats a debug-level message.
func FormatVerboseMessage(message string) string {
	return applyStyle(verboseStyle, "🔍 "+message)
}

// FormatCommandMessage formats a command the user can run.
func FormatCommandMessage(command string) string {
	return applyStyle(commandStyle, "⚡ "+command)
}

// LogVerbose writes message to stderr when verbose is set.
func LogVerbose(verbose bool, message string) {
	if verbose {
		fmt.Fprintln(os.Stderr, FormatVerboseMessage(message))
	}
}

// TableConfig describes a table to render.
type TableConfig struct {
	Title     string
	Headers   []string
	Rows      [][]string
	ShowTotal bool
	TotalRow  []string
}

// RenderTable renders config as a bordered table followed by a newline.
// An empty table renders as the empty string.
func RenderTable(config TableConfig) string {
	if len(config.Headers) == 0 && len(config.Rows) == 0 {
		return ""
	}

	rows := config.Rows
	if config.ShowTotal && len(config.TotalRow) > 0 {
		rows = append(rows[:len(rows):len(rows)], config.TotalRow)
	}
	totalIndex := len(rows) - 1

	styled := isTTY()
	t := table.New().
		Border(lipgloss.NormalBorder()).
		StyleFunc(func(row, _ int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				if styled {
					return tableHeaderStyle
				}
				return tableCellStyle
			case config.ShowTotal && row == totalIndex && styled:
				return tableHeaderStyle
			}
			return tableCellStyle
		}).
		Headers(config.Headers...).
		Rows(rows...)
	if styled {
		t = t.BorderStyle(tableBorderStyle)
	}

	var b strings.Builder
	if config.Title != "" {
		b.WriteString(applyStyle(tableTitleStyle, config.Title))
		b.WriteString("\n")
	}
	b.WriteString(t.String())
	b.WriteString("\n")
	return b.String()
}
