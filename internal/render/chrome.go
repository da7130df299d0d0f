package render

import (
	"bytes"
	"fmt"
	"math"
	"strings"

	"github.com/go-pdf/fpdf"

	"jobschedule/internal/layout"
)

// ---------------------------------------------------------------------------
// Header
// ---------------------------------------------------------------------------

const (
	headerInset     = 3.0
	titleFontSize   = 14.0
	companyFontSize = 8.0
	metaFontSize    = 6.5
	metaLineFactor  = 1.3
	ruleWidth       = 0.8
)

// MetaLine is one "label: value" pair printed on the right of the header.
type MetaLine struct {
	Label string
	Value string
}

// HeaderMeta is the content of the header block. Logo holds already decoded
// image bytes; LogoType is an fpdf image type ("PNG", "JPG", "GIF") and
// defaults to PNG.
type HeaderMeta struct {
	Title    string
	Company  string
	Subtitle string
	Lines    []MetaLine
	Logo     []byte
	LogoType string
}

// RenderHeader draws the header block on the current page. Positions depend
// only on the page margin and the header height.
func RenderHeader(doc *Document, chrome layout.ChromeSpec, meta HeaderMeta) {
	pdf := doc.pdf
	page := doc.page
	x, top := page.Margin, page.Margin
	width := page.UsableWidth()
	height := chrome.HeaderHeight

	logoWidth := 0.0
	if len(meta.Logo) > 0 {
		logoWidth = doc.drawLogo(meta, x, top, width/4, height)
	}

	// Metadata occupies the right quarter; the title is centred between.
	metaWidth := width / 4
	pdf.SetCellMargin(0)
	pdf.SetTextColor(40, 40, 40)

	doc.setFont("B", titleFontSize)
	pdf.SetXY(x+logoWidth, top+headerInset)
	pdf.CellFormat(width-logoWidth-metaWidth, titleFontSize*1.2, doc.text(strings.ToUpper(meta.Title)),
		"", 0, "C", false, 0, "")

	subtitle := meta.Company
	if meta.Subtitle != "" {
		if subtitle != "" {
			subtitle += " - "
		}
		subtitle += meta.Subtitle
	}
	if subtitle != "" {
		doc.setFont("", companyFontSize)
		pdf.SetXY(x+logoWidth, top+headerInset+titleFontSize*1.2)
		pdf.CellFormat(width-logoWidth-metaWidth, companyFontSize*1.3, doc.text(subtitle),
			"", 0, "C", false, 0, "")
	}

	lineHeight := metaFontSize * metaLineFactor
	for i, l := range meta.Lines {
		doc.setFont("", metaFontSize)
		pdf.SetXY(x+width-metaWidth, top+headerInset+float64(i)*lineHeight)
		pdf.CellFormat(metaWidth, lineHeight, doc.text(formatMetaLine(l)), "", 0, "R", false, 0, "")
	}

	pdf.SetDrawColor(0, 0, 0)
	pdf.SetLineWidth(ruleWidth)
	pdf.Line(x, top+height-ruleWidth, x+width, top+height-ruleWidth)
	pdf.SetTextColor(0, 0, 0)
}

func formatMetaLine(l MetaLine) string {
	if l.Label == "" {
		return l.Value
	}
	return fmt.Sprintf("%s: %s", l.Label, l.Value)
}

// drawLogo places the logo in the top left corner, scaled to the header
// height and capped at maxWidth. It returns the horizontal space used.
func (d *Document) drawLogo(meta HeaderMeta, x, y, maxWidth, height float64) float64 {
	imageType := meta.LogoType
	if imageType == "" {
		imageType = "PNG"
	}

	d.images++
	name := fmt.Sprintf("logo-%d", d.images)
	opts := fpdf.ImageOptions{ImageType: imageType}
	info := d.pdf.RegisterImageOptionsReader(name, opts, bytes.NewReader(meta.Logo))
	if info == nil || d.pdf.Err() || info.Height() <= 0 {
		return 0
	}

	h := height - 2*headerInset
	w := info.Width() / info.Height() * h
	if w > maxWidth {
		w = maxWidth
		h = w * info.Height() / info.Width()
	}

	d.pdf.ImageOptions(name, x, y+(height-h)/2, w, h, false, opts, 0, "")
	return w + headerInset
}

// ---------------------------------------------------------------------------
// Footer
// ---------------------------------------------------------------------------

const (
	footerFontSize   = 6.5
	footerLineHeight = 9.0
	signatureGap     = 12.0
	signatureLabelH  = 9.0
)

// FooterMeta is the content of the footer block.
type FooterMeta struct {
	Note       string
	Signatures []string
	Reference  string
}

// RenderFooter draws the footer block starting at cursorY, the position just
// below the table. If the block would run past the bottom of the page it is
// moved to the top of a new page; this is the only way a second page appears.
func RenderFooter(doc *Document, chrome layout.ChromeSpec, cursorY float64, meta FooterMeta) {
	pdf := doc.pdf
	page := doc.page
	x := page.Margin
	width := page.UsableWidth()
	height := chrome.FooterHeight

	y := cursorY
	if y+height > page.Height {
		pdf.AddPage()
		y = page.Margin
	}

	pdf.SetCellMargin(0)
	pdf.SetDrawColor(0, 0, 0)
	pdf.SetLineWidth(0.4)

	if meta.Note != "" {
		doc.setFont("I", footerFontSize)
		pdf.SetXY(x, y+2)
		pdf.CellFormat(width, footerLineHeight, doc.text(meta.Note), "", 0, "L", false, 0, "")
	}

	// Signature boxes share the space between the note and the bottom line.
	boxTop := y + footerLineHeight + 4
	boxHeight := math.Max(0, height-2*footerLineHeight-8)
	if n := len(meta.Signatures); n > 0 && boxHeight > 0 {
		boxWidth := (width - signatureGap*float64(n-1)) / float64(n)
		for i, label := range meta.Signatures {
			bx := x + float64(i)*(boxWidth+signatureGap)
			pdf.Rect(bx, boxTop, boxWidth, boxHeight, "D")

			doc.setFont("B", footerFontSize)
			pdf.SetXY(bx+2, boxTop+1)
			pdf.CellFormat(boxWidth-4, signatureLabelH, doc.text(label), "", 0, "L", false, 0, "")

			doc.setFont("", footerFontSize)
			pdf.SetXY(bx+2, boxTop+boxHeight-signatureLabelH-1)
			pdf.CellFormat(boxWidth-4, signatureLabelH, doc.text("Name / Signature / Date"), "T", 0, "L", false, 0, "")
		}
	}

	bottom := y + height - footerLineHeight
	doc.setFont("", footerFontSize)
	pdf.SetXY(x, bottom)
	pdf.CellFormat(width/2, footerLineHeight, doc.text(meta.Reference), "", 0, "L", false, 0, "")
	pdf.SetXY(x+width/2, bottom)
	pdf.CellFormat(width/2, footerLineHeight,
		fmt.Sprintf("Page %d of %s", pdf.PageNo(), pageAlias), "", 0, "R", false, 0, "")
}
