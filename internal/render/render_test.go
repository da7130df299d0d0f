package render

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"math"
	"strings"
	"testing"

	"jobschedule/internal/layout"
)

var (
	a4     = layout.PageSpec{Width: 595, Height: 842, Margin: 28}
	chrome = layout.ChromeSpec{HeaderHeight: 42, FooterHeight: 90}

	columns = []layout.ColumnSpec{
		{ID: "date", Title: "Date", Width: 60},
		{ID: "job", Title: "Job No.", Width: 60},
		{ID: "scope", Title: "Scope", Remainder: true},
		{ID: "crew", Title: "Crew", Width: 120},
	}
)

func sampleRows(n int) []layout.Row {
	rows := make([]layout.Row, n)
	for i := range rows {
		rows[i] = layout.Row{"12.10.2026", fmt.Sprintf("J-%03d", i), "Load test", "A. Smith"}
	}
	return rows
}

func checkPDF(t *testing.T, doc *Document) []byte {
	t.Helper()
	data, err := doc.Bytes()
	if err != nil {
		t.Fatalf("Bytes() error = %v", err)
	}
	if len(data) < 4 || string(data[:4]) != "%PDF" {
		t.Fatal("output does not start with PDF magic bytes")
	}
	return data
}

func TestNewDocument(t *testing.T) {
	doc := New(a4, Options{Title: "Job Schedule", Author: "Ops"})
	if doc.PageCount() != 1 {
		t.Errorf("PageCount() = %d, want 1", doc.PageCount())
	}
	if doc.Page() != a4 {
		t.Errorf("Page() = %+v, want %+v", doc.Page(), a4)
	}
	checkPDF(t, doc)
}

func TestRenderTableMatchesEstimate(t *testing.T) {
	rows := sampleRows(12)
	fit := layout.Solve(rows, a4, chrome)
	doc := New(a4, Options{})

	startY := a4.Margin + chrome.HeaderHeight
	got := RenderTable(doc, rows, columns, fit, startY)

	if got.Rows != len(rows) {
		t.Errorf("Rows = %d, want %d", got.Rows, len(rows))
	}
	if math.Abs(got.FinalY-(startY+fit.EstimatedHeight)) > 1e-6 {
		t.Errorf("FinalY = %v, want %v", got.FinalY, startY+fit.EstimatedHeight)
	}
	if err := doc.Err(); err != nil {
		t.Fatalf("Err() = %v", err)
	}
	checkPDF(t, doc)
}

func TestRenderTableWrapsLongCells(t *testing.T) {
	rows := []layout.Row{{"12.10.2026", "J-1", "short", strings.Repeat("technician ", 20)}}
	fit := layout.Solve(rows, a4, chrome)
	doc := New(a4, Options{})

	got := RenderTable(doc, rows, columns, fit, 100)
	if got.FinalY <= 100+fit.EstimatedHeight {
		t.Errorf("FinalY = %v, expected wrapped row taller than estimate %v", got.FinalY, 100+fit.EstimatedHeight)
	}
	if doc.PageCount() != 1 {
		t.Errorf("table added a page: PageCount() = %d", doc.PageCount())
	}
}

func TestRenderTableShortAndLongRows(t *testing.T) {
	rows := []layout.Row{{"only one"}, {"a", "b", "c", "d", "ignored"}}
	fit := layout.Solve(rows, a4, chrome)
	doc := New(a4, Options{})

	got := RenderTable(doc, rows, columns, fit, 100)
	if math.Abs(got.FinalY-(100+fit.EstimatedHeight)) > 1e-6 {
		t.Errorf("FinalY = %v, want %v", got.FinalY, 100+fit.EstimatedHeight)
	}
	checkPDF(t, doc)
}

func TestRenderTableEmpty(t *testing.T) {
	fit := layout.Solve(nil, a4, chrome)
	doc := New(a4, Options{})

	got := RenderTable(doc, nil, columns, fit, 70)
	want := 70 + layout.RowHeight(fit.HeaderFontSize(), fit.CellPadding, fit.LineFactor)
	if math.Abs(got.FinalY-want) > 1e-6 {
		t.Errorf("FinalY = %v, want header-only %v", got.FinalY, want)
	}
}

func TestRenderTableGrouping(t *testing.T) {
	rows := sampleRows(4)
	fit := layout.Solve(rows, a4, chrome)
	doc := New(a4, Options{})

	got := RenderTableOptions(doc, rows, columns, fit, 70, TableOptions{GroupColumn: 0, Zebra: true})
	if math.Abs(got.FinalY-(70+fit.EstimatedHeight)) > 1e-6 {
		t.Errorf("FinalY = %v, want %v", got.FinalY, 70+fit.EstimatedHeight)
	}
	checkPDF(t, doc)
}

func TestRenderFooter(t *testing.T) {
	tests := []struct {
		name      string
		cursorY   float64
		wantPages int
	}{
		{"fits below table", 400, 1},
		{"exactly at page bottom", a4.Height - chrome.FooterHeight, 1},
		{"overflows onto second page", a4.Height - chrome.FooterHeight + 1, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := New(a4, Options{})
			RenderFooter(doc, chrome, tt.cursorY, FooterMeta{
				Note:       "Subject to change.",
				Signatures: []string{"Prepared by", "Checked by", "Approved by"},
				Reference:  "JS-2026-42-AB12",
			})
			if doc.PageCount() != tt.wantPages {
				t.Errorf("PageCount() = %d, want %d", doc.PageCount(), tt.wantPages)
			}
			checkPDF(t, doc)
		})
	}
}

func testPNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: 200, G: 30, B: 30, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestRenderHeader(t *testing.T) {
	meta := HeaderMeta{
		Title:    "Job Schedule",
		Company:  "Nordwerk Technical Services",
		Subtitle: "Week 42",
		Lines: []MetaLine{
			{Label: "Ref", Value: "JS-2026-42-AB12"},
			{Label: "Issued", Value: "15.10.2026"},
		},
	}

	t.Run("without logo", func(t *testing.T) {
		doc := New(a4, Options{})
		RenderHeader(doc, chrome, meta)
		if err := doc.Err(); err != nil {
			t.Fatalf("Err() = %v", err)
		}
		checkPDF(t, doc)
	})

	t.Run("with logo", func(t *testing.T) {
		doc := New(a4, Options{})
		m := meta
		m.Logo = testPNG(t, 120, 40)
		RenderHeader(doc, chrome, m)
		if err := doc.Err(); err != nil {
			t.Fatalf("Err() = %v", err)
		}
		checkPDF(t, doc)
	})
}

func TestEncodeCP1252(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"plain", "plain"},
		{"Größe", "Gr\xf6\xdfe"},
		{"5 €", "5 \x80"},
		{"漢字", "??"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := encodeCP1252(tt.in); got != tt.want {
				t.Errorf("encodeCP1252(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
