package render

import (
	"jobschedule/internal/layout"
)

// TableResult reports where the table ended.
type TableResult struct {
	FinalY float64
	Rows   int
}

// TableOptions controls optional table styling. GroupColumn is the column
// whose repeated consecutive values are printed only once, e.g. the date of a
// day with several jobs; -1 disables grouping.
type TableOptions struct {
	GroupColumn int
	Zebra       bool
}

// RenderTable draws the header row and body rows with the fitted font size
// and padding, starting at startY, and returns the position just below the
// last row. Long cell text wraps; the font is never changed here.
func RenderTable(doc *Document, rows []layout.Row, columns []layout.ColumnSpec, fit layout.FitResult, startY float64) TableResult {
	return RenderTableOptions(doc, rows, columns, fit, startY, TableOptions{GroupColumn: -1})
}

// RenderTableOptions is RenderTable with grouping and zebra striping.
func RenderTableOptions(doc *Document, rows []layout.Row, columns []layout.ColumnSpec, fit layout.FitResult, startY float64, opts TableOptions) TableResult {
	t := tableWriter{
		doc:     doc,
		columns: columns,
		widths:  layout.ResolveWidths(columns, doc.page.UsableWidth()),
		fit:     fit,
		y:       startY,
	}

	doc.pdf.SetCellMargin(fit.CellPadding)
	doc.pdf.SetDrawColor(90, 90, 90)
	doc.pdf.SetLineWidth(0.3)

	doc.pdf.SetFillColor(217, 217, 217)
	t.row(layout.HeaderRow(columns), "B", fit.HeaderFontSize(), true, nil)

	var prev layout.Row
	for i, r := range rows {
		fill := opts.Zebra && i%2 == 1
		if fill {
			doc.pdf.SetFillColor(244, 244, 244)
		}

		blank := map[int]bool{}
		if g := opts.GroupColumn; g >= 0 && prev != nil && cell(r, g) != "" && cell(r, g) == cell(prev, g) {
			blank[g] = true
		}
		t.row(r, "", fit.FontSize, fill, blank)
		prev = r
	}

	return TableResult{FinalY: t.y, Rows: len(rows)}
}

type tableWriter struct {
	doc     *Document
	columns []layout.ColumnSpec
	widths  []float64
	fit     layout.FitResult
	y       float64
}

// row draws one table row. All cells share the height of the tallest cell.
func (t *tableWriter) row(r layout.Row, style string, font float64, fill bool, blank map[int]bool) {
	pdf := t.doc.pdf
	t.doc.setFont(style, font)

	lineHeight := t.fit.LineHeight(font)
	padding := t.fit.CellPadding

	cells := make([][]string, len(t.columns))
	maxLines := 1
	for i := range t.columns {
		text := ""
		if !blank[i] {
			text = t.doc.text(cell(r, i))
		}
		cells[i] = t.doc.wrap(text, t.widths[i])
		if len(cells[i]) > maxLines {
			maxLines = len(cells[i])
		}
	}
	height := float64(maxLines)*lineHeight + 2*padding

	rectStyle := "D"
	if fill {
		rectStyle = "FD"
	}

	x := t.doc.page.Margin
	for i, c := range t.columns {
		w := t.widths[i]
		pdf.Rect(x, t.y, w, height, rectStyle)

		align := c.Align
		if align == "" {
			align = "L"
		}
		for k, line := range cells[i] {
			pdf.SetXY(x, t.y+padding+float64(k)*lineHeight)
			pdf.CellFormat(w, lineHeight, line, "", 0, align+"M", false, 0, "")
		}
		x += w
	}

	t.y += height
}

// cell returns the i-th value of r, or "" when the row is short.
func cell(r layout.Row, i int) string {
	if i < 0 || i >= len(r) {
		return ""
	}
	return r[i]
}
