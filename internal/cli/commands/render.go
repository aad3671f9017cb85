package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/leapstack-labs/leapstat/internal/field"
	"github.com/leapstack-labs/leapstat/internal/theme"
)

// renderDisplayValues writes resolved display values in the requested
// output format.
func renderDisplayValues(w io.Writer, values []field.DisplayValue, format string, th *theme.Theme) error {
	switch format {
	case "json":
		return renderValuesJSON(w, values)
	case "csv":
		return renderValuesCSV(w, values)
	case "md", "markdown":
		return renderValuesMarkdown(w, values)
	default:
		return renderValuesTable(w, values, th)
	}
}

func renderValuesTable(w io.Writer, values []field.DisplayValue, th *theme.Theme) error {
	if len(values) == 0 {
		_, _ = fmt.Fprintln(w, "(0 values)")
		return nil
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Title", "Value", "Numeric"})

	for _, v := range values {
		text := v.Text
		if th != nil && v.Color != "" {
			text = th.Style(v.Color).Render(text)
		}
		t.AppendRow(table.Row{v.Title, text, numericCell(v.Numeric)})
	}

	t.Render()
	count := fmt.Sprintf("(%d values)", len(values))
	if th != nil {
		count = theme.NewStyles(th).Muted.Render(count)
	}
	_, _ = fmt.Fprintln(w, count)
	return nil
}

// displayValueJSON is the serialized form of one display value.
type displayValueJSON struct {
	Title   string   `json:"title"`
	Text    string   `json:"text"`
	Numeric *float64 `json:"numeric"`
	Color   string   `json:"color,omitempty"`
}

func renderValuesJSON(w io.Writer, values []field.DisplayValue) error {
	out := make([]displayValueJSON, len(values))
	for i, v := range values {
		out[i] = displayValueJSON{Title: v.Title, Text: v.Text, Color: v.Color}
		if !math.IsNaN(v.Numeric) {
			n := v.Numeric
			out[i].Numeric = &n
		}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func renderValuesCSV(w io.Writer, values []field.DisplayValue) error {
	_, _ = fmt.Fprintln(w, "title,text,numeric,color")
	for _, v := range values {
		_, _ = fmt.Fprintf(w, "%s,%s,%s,%s\n",
			escapeCSV(v.Title), escapeCSV(v.Text), numericCell(v.Numeric), escapeCSV(v.Color))
	}
	return nil
}

func renderValuesMarkdown(w io.Writer, values []field.DisplayValue) error {
	if len(values) == 0 {
		_, _ = fmt.Fprintln(w, "(0 values)")
		return nil
	}
	_, _ = fmt.Fprintln(w, "| Title | Value | Numeric |")
	_, _ = fmt.Fprintln(w, "| --- | --- | --- |")
	for _, v := range values {
		_, _ = fmt.Fprintf(w, "| %s | %s | %s |\n", v.Title, v.Text, numericCell(v.Numeric))
	}
	return nil
}

func numericCell(f float64) string {
	if math.IsNaN(f) {
		return ""
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func escapeCSV(s string) string {
	if strings.ContainsAny(s, ",\"\n") {
		return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
	}
	return s
}
