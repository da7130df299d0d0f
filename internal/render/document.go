// Package render draws the schedule page with go-pdf/fpdf: a fixed header
// block, the fitted table and a footer block. The layout numbers come from
// package layout; nothing here changes the font size chosen by the solver.
package render

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/go-pdf/fpdf"
	"golang.org/x/text/encoding/charmap"

	"jobschedule/internal/layout"
)

const (
	defaultFontFamily = "Helvetica"

	// pageAlias is replaced by the total page count when the PDF is written.
	pageAlias = "{nb}"
)

// Options carries document metadata.
type Options struct {
	Title      string
	Author     string
	Subject    string
	FontFamily string
}

// Document is one PDF under construction. It is passed explicitly to every
// renderer; there is no package-level document state.
type Document struct {
	pdf    *fpdf.Fpdf
	page   layout.PageSpec
	family string
	images int
}

// New creates a document with a single empty page of the given size, in
// points. Automatic page breaks are off: only the footer may add a page.
func New(page layout.PageSpec, opts Options) *Document {
	pdf := fpdf.NewCustom(&fpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "pt",
		Size:           fpdf.SizeType{Wd: page.Width, Ht: page.Height},
	})
	pdf.SetMargins(page.Margin, page.Margin, page.Margin)
	pdf.SetAutoPageBreak(false, page.Margin)
	pdf.AliasNbPages(pageAlias)

	d := &Document{pdf: pdf, page: page, family: opts.FontFamily}
	if d.family == "" {
		d.family = defaultFontFamily
	}

	if opts.Title != "" {
		pdf.SetTitle(opts.Title, true)
	}
	if opts.Author != "" {
		pdf.SetAuthor(opts.Author, true)
	}
	if opts.Subject != "" {
		pdf.SetSubject(opts.Subject, true)
	}
	pdf.SetCreator("jobschedule", true)

	pdf.AddPage()
	pdf.SetFont(d.family, "", layout.DefaultMaxFont)
	return d
}

// Page returns the page geometry the document was created with.
func (d *Document) Page() layout.PageSpec {
	return d.page
}

// PageCount returns the number of pages drawn so far.
func (d *Document) PageCount() int {
	return d.pdf.PageCount()
}

// Err returns the first error recorded by the PDF backend, if any.
func (d *Document) Err() error {
	return d.pdf.Error()
}

// Output writes the finished PDF to w.
func (d *Document) Output(w io.Writer) error {
	if err := d.pdf.Output(w); err != nil {
		return fmt.Errorf("failed to write PDF: %w", err)
	}
	return nil
}

// Bytes renders the finished PDF into memory.
func (d *Document) Bytes() ([]byte, error) {
	var buf bytes.Buffer
	if err := d.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ---------------------------------------------------------------------------
// Text Helpers
// ---------------------------------------------------------------------------

// text converts UTF-8 to Windows-1252, the encoding of the PDF core fonts.
// Runes outside the code page become '?'.
func (d *Document) text(s string) string {
	return encodeCP1252(s)
}

func encodeCP1252(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r < 0x80 {
			b.WriteByte(byte(r))
			continue
		}
		if c, ok := charmap.Windows1252.EncodeRune(r); ok {
			b.WriteByte(c)
			continue
		}
		b.WriteByte('?')
	}
	return b.String()
}

// setFont selects the document font family in the given style and size.
func (d *Document) setFont(style string, size float64) {
	d.pdf.SetFont(d.family, style, size)
}

// wrap splits already-encoded text into lines no wider than w, honouring the
// current cell margin. A cell always has at least one line.
func (d *Document) wrap(s string, w float64) []string {
	if s == "" || w <= 2*d.pdf.GetCellMargin() {
		return []string{s}
	}

	var lines []string
	for _, l := range d.pdf.SplitLines([]byte(s), w) {
		lines = append(lines, string(l))
	}
	if len(lines) == 0 {
		return []string{""}
	}
	return lines
}
