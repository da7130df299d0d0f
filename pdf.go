package main

import (
	"bytes"

	"jobschedule/internal/render"
	"jobschedule/internal/workbook"
)

// ---------------------------------------------------------------------------
// PDF Generation
// ---------------------------------------------------------------------------

// createPDF draws the schedule page and reports where the table ended. The
// fit is solved before anything is drawn; the table never breaks across
// pages, only the footer may move to a second page when the table overflows.
func createPDF(s scheduleDocument) ([]byte, render.TableResult, error) {
	doc := render.New(s.Page, render.Options{
		Title:   s.Title,
		Author:  s.Header.Company,
		Subject: s.Reference,
	})

	render.RenderHeader(doc, s.Chrome, s.Header)

	// Table starts directly below the reserved header block
	table := render.RenderTableOptions(doc, s.Rows, s.Columns, s.Fit, s.tableTop(), render.TableOptions{
		GroupColumn: s.GroupColumn,
		Zebra:       true,
	})

	render.RenderFooter(doc, s.Chrome, table.FinalY, s.Footer)

	if err := doc.Err(); err != nil {
		return nil, table, err
	}
	data, err := doc.Bytes()
	return data, table, err
}

// tableTop is where the table starts, directly below the reserved header block.
func (s scheduleDocument) tableTop() float64 {
	return s.Page.Margin + s.Chrome.HeaderHeight
}

// tableOverflow reports whether the drawn table ends below the bottom margin,
// along with the drawn height and the room there was for it.
func (s scheduleDocument) tableOverflow(table render.TableResult) (drawn, room float64, over bool) {
	bottom := s.Page.Height - s.Page.Margin
	drawn = table.FinalY - s.tableTop()
	room = bottom - s.tableTop()
	return drawn, room, table.FinalY > bottom
}

// createXLSX writes the same table as a workbook.
func createXLSX(s scheduleDocument) ([]byte, error) {
	var buf bytes.Buffer
	err := workbook.Export(&buf, s.Columns, s.Rows, workbook.ExportOptions{
		Title:       s.Title + " " + s.Header.Subtitle,
		UsableWidth: s.Page.UsableWidth(),
		GroupColumn: s.GroupColumn,
	})
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
