package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
)

// Output formats accepted by --output.
const (
	formatTable    = "table"
	formatJSON     = "json"
	formatCSV      = "csv"
	formatMarkdown = "markdown"
)

var outputFormats = []string{formatTable, formatJSON, formatCSV, formatMarkdown}

// tabular is a rendered listing: a header, its rows and the noun counted in
// the table footer. Records is what the JSON format encodes.
type tabular struct {
	Header  []string
	Rows    [][]any
	Noun    string
	Records any
}

func validateFormat(format string) error {
	switch format {
	case formatTable, formatJSON, formatCSV, formatMarkdown, "md":
		return nil
	}
	return fmt.Errorf("unknown output format %q\nHint: Use one of %s", format, strings.Join(outputFormats, ", "))
}

func renderOutput(w io.Writer, format string, t tabular) error {
	switch format {
	case formatJSON:
		return renderJSON(w, t.Records)
	case formatCSV:
		return renderCSV(w, t)
	case "md", formatMarkdown:
		return renderMarkdown(w, t)
	default:
		return renderTable(w, t)
	}
}

func renderTable(w io.Writer, t tabular) error {
	if len(t.Rows) == 0 {
		_, _ = fmt.Fprintf(w, "(0 %s)\n", t.Noun)
		return nil
	}

	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	tw.SetStyle(table.StyleLight)

	header := make(table.Row, len(t.Header))
	for i, col := range t.Header {
		header[i] = col
	}
	tw.AppendHeader(header)

	for _, r := range t.Rows {
		tw.AppendRow(table.Row(r))
	}

	tw.Render()
	_, _ = fmt.Fprintf(w, "(%d %s)\n", len(t.Rows), t.Noun)
	return nil
}

func renderJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func renderCSV(w io.Writer, t tabular) error {
	_, _ = fmt.Fprintln(w, strings.Join(t.Header, ","))
	for _, r := range t.Rows {
		values := make([]string, len(r))
		for i, v := range r {
			values[i] = escapeCSV(formatValue(v))
		}
		_, _ = fmt.Fprintln(w, strings.Join(values, ","))
	}
	return nil
}

func renderMarkdown(w io.Writer, t tabular) error {
	if len(t.Rows) == 0 {
		_, _ = fmt.Fprintf(w, "(0 %s)\n", t.Noun)
		return nil
	}

	_, _ = fmt.Fprintf(w, "| %s |\n", strings.Join(t.Header, " | "))
	seps := make([]string, len(t.Header))
	for i := range seps {
		seps[i] = "---"
	}
	_, _ = fmt.Fprintf(w, "| %s |\n", strings.Join(seps, " | "))

	for _, r := range t.Rows {
		values := make([]string, len(r))
		for i, v := range r {
			values[i] = strings.ReplaceAll(formatValue(v), "|", `\|`)
		}
		_, _ = fmt.Fprintf(w, "| %s |\n", strings.Join(values, " | "))
	}
	return nil
}

func formatValue(v any) string {
	if v == nil {
		return ""
	}
	return fmt.Sprintf("%v", v)
}

func escapeCSV(s string) string {
	if strings.ContainsAny(s, ",\"\n") {
		return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
	}
	return s
}
