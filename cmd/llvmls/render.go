package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"llvmls/internal/source"
)

const maxCellWidth = 48

var (
	headerColor = color.New(color.Bold)
	keyColor    = color.New(color.FgCyan)
	dimColor    = color.New(color.Faint)
	errColor    = color.New(color.FgRed, color.Bold)
)

// table lays out rows in aligned columns. Widths are measured in terminal
// cells so quoted identifiers with wide runes stay aligned.
type table struct {
	header []string
	rows   [][]string
}

func (t *table) add(cells ...string) {
	t.rows = append(t.rows, cells)
}

func (t *table) render(out io.Writer) {
	widths := make([]int, len(t.header))
	measure := func(cells []string) {
		for i, c := range cells {
			if i < len(widths) {
				widths[i] = max(widths[i], runewidth.StringWidth(truncate(c, maxCellWidth)))
			}
		}
	}
	measure(t.header)
	for _, r := range t.rows {
		measure(r)
	}

	writeRow := func(cells []string, paint *color.Color) {
		var b strings.Builder
		for i, c := range cells {
			if i >= len(widths) {
				break
			}
			c = truncate(c, maxCellWidth)
			if i == len(cells)-1 {
				b.WriteString(paint.Sprint(c))
				break
			}
			b.WriteString(paint.Sprint(runewidth.FillRight(c, widths[i])))
			b.WriteString("  ")
		}
		fmt.Fprintln(out, strings.TrimRight(b.String(), " "))
	}
	writeRow(t.header, headerColor)
	plain := color.New()
	for _, r := range t.rows {
		writeRow(r, plain)
	}
}

func truncate(value string, width int) string {
	if runewidth.StringWidth(value) <= width {
		return value
	}
	if width <= 3 {
		return runewidth.Truncate(value, width, "")
	}
	return runewidth.Truncate(value, width, "...")
}

// formatPos renders a zero-based position as 1-based line:col.
func formatPos(p source.Position) string {
	return fmt.Sprintf("%d:%d", p.Line+1, p.Col+1)
}

func formatRange(r source.Range) string {
	if r.Start.Line == r.End.Line {
		return fmt.Sprintf("%d:%d-%d", r.Start.Line+1, r.Start.Col+1, r.End.Col+1)
	}
	return fmt.Sprintf("%s-%s", formatPos(r.Start), formatPos(r.End))
}
