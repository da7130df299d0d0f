package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/mattn/go-runewidth"

	"jobschedule/internal/layout"
)

// ---------------------------------------------------------------------------
// Text Preview
// ---------------------------------------------------------------------------

// previewPointsPerChar maps PDF column widths to terminal columns.
const previewPointsPerChar = 4.5

// previewWidths converts the resolved PDF widths to display widths.
func previewWidths(columns []layout.ColumnSpec, usableWidth float64) []int {
	widths := make([]int, len(columns))
	for i, w := range layout.ResolveWidths(columns, usableWidth) {
		widths[i] = int(w / previewPointsPerChar)
		if widths[i] < 3 {
			widths[i] = 3
		}
	}
	return widths
}

// renderPreview prints the fit result and the table as text. Cells longer
// than their column are truncated.
func renderPreview(w io.Writer, s scheduleDocument) error {
	fit := s.Fit
	status := "fits"
	if !fit.Fits {
		status = "DOES NOT FIT"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s - %s (%s)\n", s.Title, s.Header.Subtitle, s.Reference)
	fmt.Fprintf(&b, "rows: %d  font: %.1fpt  padding: %.1fpt  height: %.1f/%.1fpt  %s\n\n",
		len(s.Rows), fit.FontSize, fit.CellPadding, fit.EstimatedHeight, fit.AvailableHeight, status)

	widths := previewWidths(s.Columns, s.Page.UsableWidth())
	border := previewBorder(widths)

	b.WriteString(border)
	b.WriteString(previewLine(layout.HeaderRow(s.Columns), widths))
	b.WriteString(border)
	for _, r := range s.Rows {
		b.WriteString(previewLine(r, widths))
	}
	b.WriteString(border)

	_, err := io.WriteString(w, b.String())
	return err
}

func previewBorder(widths []int) string {
	var b strings.Builder
	b.WriteString("+")
	for _, w := range widths {
		b.WriteString(strings.Repeat("-", w+2))
		b.WriteString("+")
	}
	b.WriteString("\n")
	return b.String()
}

func previewLine(r layout.Row, widths []int) string {
	var b strings.Builder
	b.WriteString("|")
	for i, w := range widths {
		text := ""
		if i < len(r) {
			text = strings.ReplaceAll(r[i], "\n", " ")
		}
		text = runewidth.Truncate(text, w, "~")
		b.WriteString(" ")
		b.WriteString(runewidth.FillRight(text, w))
		b.WriteString(" |")
	}
	b.WriteString("\n")
	return b.String()
}
