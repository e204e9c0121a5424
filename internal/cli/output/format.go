package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// FormatHeader returns a markdown header.
func FormatHeader(level int, text string) string {
	if level < 1 {
		level = 1
	}
	return strings.Repeat("#", level) + " " + text
}

// FormatKeyValue returns a markdown list item with a bold key.
func FormatKeyValue(key, value string) string {
	return fmt.Sprintf("- **%s**: %s", key, value)
}

// FormatCodeBlock fences code with an optional language tag.
func FormatCodeBlock(lang, code string) string {
	return "```" + lang + "\n" + strings.TrimRight(code, "\n") + "\n```"
}

var titleCaser = cases.Title(language.English)

// Title title-cases s, treating underscores as spaces.
func Title(s string) string {
	return titleCaser.String(strings.ReplaceAll(s, "_", " "))
}

// Table renders rows under header. Markdown mode emits a pipe table; other
// modes draw a box table.
func (r *Renderer) Table(header []string, rows [][]string) {
	writeTable(r.out, header, rows, r.EffectiveMode() == ModeMarkdown)
}

func writeTable(w io.Writer, header []string, rows [][]string, markdown bool) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)

	hr := make(table.Row, len(header))
	for i, h := range header {
		hr[i] = h
	}
	t.AppendHeader(hr)
	for _, row := range rows {
		tr := make(table.Row, len(row))
		for i, c := range row {
			tr[i] = c
		}
		t.AppendRow(tr)
	}

	if markdown {
		t.RenderMarkdown()
		return
	}
	t.Render()
}
