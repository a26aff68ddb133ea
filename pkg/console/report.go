package console

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/getumbrel/umbrel-linter/pkg/finding"
)

// Format selects how a report is printed.
type Format string

const (
	FormatText  Format = "text"
	FormatJSON  Format = "json"
	FormatTable Format = "table"
)

// Formats lists the accepted output formats.
var Formats = []Format{FormatText, FormatJSON, FormatTable}

// ParseFormat accepts the names used on the command line.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatText, FormatJSON, FormatTable:
		return f, nil
	}
	return "", fmt.Errorf("unknown output format %q (expected text, json or table)", s)
}

// RenderReport renders a lint report. The summary counts always come from
// full; shown holds the findings left after log level and ignore filtering.
// JSON output always carries the full report.
func RenderReport(full, shown *finding.Report, format Format, verbose bool) (string, error) {
	switch format {
	case FormatJSON:
		data, err := json.MarshalIndent(full.JSON(), "", "  ")
		if err != nil {
			return "", fmt.Errorf("encode report: %w", err)
		}
		return string(data) + "\n", nil
	case FormatTable:
		return Summary(full) + "\n" + renderFindingsTable(shown), nil
	case FormatText, "":
		return Summary(full) + "\n" + renderText(shown, verbose), nil
	}
	return "", fmt.Errorf("unknown output format %q", format)
}

// Summary is the one line verdict of a report.
func Summary(r *finding.Report) string {
	switch {
	case r.Success() && r.Warnings() == 0 && r.Infos() == 0:
		return FormatSuccessMessage("No linting errors found!")
	case r.Success():
		var parts []string
		if r.Warnings() > 0 {
			parts = append(parts, fmt.Sprintf("%d warnings", r.Warnings()))
		}
		if r.Infos() > 0 {
			parts = append(parts, fmt.Sprintf("%d info messages", r.Infos()))
		}
		return FormatSuccessMessage("Linting passed with " + strings.Join(parts, ", "))
	}
	msg := fmt.Sprintf("Linting failed with %d errors", r.Errors())
	if r.Warnings() > 0 {
		msg += fmt.Sprintf(", %d warnings", r.Warnings())
	}
	if r.Infos() > 0 {
		msg += fmt.Sprintf(", %d info messages", r.Infos())
	}
	return applyStyle(errorStyle, "✗ "+msg)
}

func severityLabel(sev finding.Severity) string {
	switch sev {
	case finding.Error:
		return applyStyle(errorStyle, "✗ ERROR")
	case finding.Warning:
		return applyStyle(warningStyle, "⚠ WARNING")
	}
	return applyStyle(infoStyle, "ℹ INFO")
}

// renderText groups findings by file:
//
//	my-app/umbrel-app.yml
//	✗ ERROR Invalid tagline (tagline)
//	  Taglines should not end with a period
func renderText(r *finding.Report, verbose bool) string {
	files, groups := r.ByFile()
	var b strings.Builder
	for _, file := range files {
		fmt.Fprintf(&b, "\n%s\n", applyStyle(boldStyle, file))
		for _, f := range groups[file] {
			b.WriteString(severityLabel(f.Severity))
			b.WriteString(" ")
			b.WriteString(applyStyle(boldStyle, f.Title))
			if f.PropertiesPath != "" {
				b.WriteString(applyStyle(mutedStyle, " ("+f.PropertiesPath+")"))
			}
			b.WriteString("\n")
			for line := range strings.SplitSeq(f.Message, "\n") {
				b.WriteString(applyStyle(mutedStyle, "  "+line))
				b.WriteString("\n")
			}
			if verbose && f.Line != nil {
				b.WriteString(applyStyle(mutedStyle, "  Line "+formatRange(f.Line)))
				b.WriteString("\n")
			}
		}
	}
	return b.String()
}

func renderFindingsTable(r *finding.Report) string {
	if r.Len() == 0 {
		return ""
	}
	rows := make([][]string, 0, r.Len())
	for _, f := range r.Findings() {
		location := f.File
		if f.Line != nil {
			location += ":" + strconv.Itoa(f.Line.Start)
		}
		path := f.PropertiesPath
		if path == "" {
			path = "-"
		}
		rows = append(rows, []string{strings.ToUpper(string(f.Severity)), location, path, f.Title})
	}
	return RenderTable(TableConfig{
		Headers: []string{"Severity", "Location", "Path", "Title"},
		Rows:    rows,
	})
}

func formatRange(r *finding.Range) string {
	if r.Start == r.End {
		return strconv.Itoa(r.Start)
	}
	return fmt.Sprintf("%d-%d", r.Start, r.End)
}
