// Package layout computes the uniform font size and cell padding that make a
// table fit onto a single page. It is pure arithmetic over row counts and page
// geometry and knows nothing about the PDF backend.
package layout

import (
	"errors"
	"fmt"
	"math"
)

// ---------------------------------------------------------------------------
// Page Geometry
// ---------------------------------------------------------------------------

// PageSpec is the page size and uniform margin, in points.
type PageSpec struct {
	Width  float64
	Height float64
	Margin float64
}

// UsableWidth is the horizontal space between the left and right margins.
func (p PageSpec) UsableWidth() float64 {
	return p.Width - 2*p.Margin
}

// Validate checks the page invariants. The solver itself never calls it.
func (p PageSpec) Validate() error {
	if p.Width <= 0 || p.Height <= 0 || p.Margin <= 0 {
		return fmt.Errorf("page width, height and margin must be positive (got %gx%g, margin %g)",
			p.Width, p.Height, p.Margin)
	}
	if p.Margin >= p.Width/2 || p.Margin >= p.Height/2 {
		return fmt.Errorf("page margin %g leaves no room on a %gx%g page", p.Margin, p.Width, p.Height)
	}
	return nil
}

// ChromeSpec is the vertical space reserved for the header and footer blocks.
type ChromeSpec struct {
	HeaderHeight float64
	FooterHeight float64
}

// Validate checks that the chrome is smaller than the page.
func (c ChromeSpec) Validate(page PageSpec) error {
	if c.HeaderHeight < 0 || c.FooterHeight < 0 {
		return errors.New("header and footer height must not be negative")
	}
	if c.HeaderHeight+c.FooterHeight >= page.Height {
		return fmt.Errorf("header (%g) and footer (%g) do not fit a page of height %g",
			c.HeaderHeight, c.FooterHeight, page.Height)
	}
	return nil
}

// AvailableHeight returns the vertical space left for the table. It may be
// negative for pathological chrome.
func AvailableHeight(page PageSpec, chrome ChromeSpec) float64 {
	return page.Height - chrome.HeaderHeight - chrome.FooterHeight - 2*page.Margin
}

// ---------------------------------------------------------------------------
// Columns and Rows
// ---------------------------------------------------------------------------

// ColumnSpec describes one table column. Exactly one of Width or Remainder is
// meaningful: a remainder column absorbs whatever width the fixed columns leave.
type ColumnSpec struct {
	ID        string
	Title     string
	Width     float64
	Remainder bool
	Align     string // fpdf alignment: "L", "C" or "R"; empty means "L"
}

// Row is one table row, one cell per column.
type Row []string

// ErrMultipleRemainder is returned when more than one column asks for the
// leftover width.
var ErrMultipleRemainder = errors.New("at most one column may use the remaining width")

// ValidateColumns checks the column preconditions against the usable width.
func ValidateColumns(columns []ColumnSpec, usableWidth float64) error {
	if len(columns) == 0 {
		return errors.New("no columns configured")
	}

	remainders := 0
	var fixed float64
	for _, c := range columns {
		if c.Remainder {
			remainders++
			continue
		}
		if c.Width <= 0 {
			return fmt.Errorf("column %q needs a positive width", c.ID)
		}
		fixed += c.Width
	}

	if remainders > 1 {
		return ErrMultipleRemainder
	}
	if fixed > usableWidth {
		return fmt.Errorf("fixed column widths (%g) exceed usable width (%g)", fixed, usableWidth)
	}
	return nil
}

// ResolveWidths returns the drawn width of every column. The remainder column
// gets usableWidth minus the fixed widths, which is negative when the
// precondition checked by ValidateColumns is violated.
func ResolveWidths(columns []ColumnSpec, usableWidth float64) []float64 {
	widths := make([]float64, len(columns))
	remainder := -1
	var fixed float64

	for i, c := range columns {
		if c.Remainder && remainder < 0 {
			remainder = i
			continue
		}
		widths[i] = c.Width
		fixed += c.Width
	}

	if remainder >= 0 {
		widths[remainder] = usableWidth - fixed
	}
	return widths
}

// HeaderRow returns the column titles as a row.
func HeaderRow(columns []ColumnSpec) Row {
	row := make(Row, len(columns))
	for i, c := range columns {
		row[i] = c.Title
	}
	return row
}

// ---------------------------------------------------------------------------
// Fit Solver
// ---------------------------------------------------------------------------

// Default solver constants.
const (
	DefaultMaxFont     = 8.0
	DefaultMinFont     = 4.5
	DefaultFontStep    = 0.2
	DefaultPaddingStep = 0.1
	DefaultLineFactor  = 1.35
	DefaultHeaderBoost = 0.5
	DefaultPadding     = 2.0
	DefaultMinPadding  = 1.0
)

// Params tunes the solver. FontStep and PaddingStep are independent; the
// padding shrinks in lockstep with the font but by its own step.
type Params struct {
	MaxFont     float64
	MinFont     float64
	FontStep    float64
	PaddingStep float64
	LineFactor  float64
	HeaderBoost float64
	Padding     float64
	MinPadding  float64
}

// DefaultParams returns the reference constants.
func DefaultParams() Params {
	return Params{
		MaxFont:     DefaultMaxFont,
		MinFont:     DefaultMinFont,
		FontStep:    DefaultFontStep,
		PaddingStep: DefaultPaddingStep,
		LineFactor:  DefaultLineFactor,
		HeaderBoost: DefaultHeaderBoost,
		Padding:     DefaultPadding,
		MinPadding:  DefaultMinPadding,
	}
}

// WithDefaults fills in the defaults so that the shrink loop always
// terminates. MaxFont, MinFont, FontStep and LineFactor must be positive and
// take the default when they are not. PaddingStep, HeaderBoost, Padding and
// MinPadding may be zero, which turns them off; only negative values take the
// default.
func (p Params) WithDefaults() Params {
	d := DefaultParams()
	if p.MaxFont <= 0 {
		p.MaxFont = d.MaxFont
	}
	if p.MinFont <= 0 {
		p.MinFont = d.MinFont
	}
	if p.MinFont > p.MaxFont {
		p.MinFont = p.MaxFont
	}
	if p.FontStep <= 0 {
		p.FontStep = d.FontStep
	}
	if p.LineFactor <= 0 {
		p.LineFactor = d.LineFactor
	}
	if p.PaddingStep < 0 {
		p.PaddingStep = d.PaddingStep
	}
	if p.HeaderBoost < 0 {
		p.HeaderBoost = d.HeaderBoost
	}
	if p.Padding < 0 {
		p.Padding = d.Padding
	}
	if p.MinPadding < 0 {
		p.MinPadding = d.MinPadding
	}
	if p.MinPadding > p.Padding {
		p.MinPadding = p.Padding
	}
	return p
}

// MaxIterations is the upper bound on shrink steps for these params.
func (p Params) MaxIterations() int {
	p = p.WithDefaults()
	return int(math.Ceil((p.MaxFont - p.MinFont) / p.FontStep))
}

// FitResult is the outcome of one solve.
type FitResult struct {
	FontSize        float64
	CellPadding     float64
	HeaderBoost     float64
	LineFactor      float64
	EstimatedHeight float64
	AvailableHeight float64
	Iterations      int
	Fits            bool
}

// HeaderFontSize is the font size used for the header row.
func (r FitResult) HeaderFontSize() float64 {
	return r.FontSize + r.HeaderBoost
}

// LineHeight is the height of one text line at the given font size.
func (r FitResult) LineHeight(font float64) float64 {
	return font * r.LineFactor
}

// RowHeight estimates the height of a single-line row.
func RowHeight(font, padding, lineFactor float64) float64 {
	return font*lineFactor + padding*2
}

// EstimateHeight estimates the table height: one header row at the boosted
// font plus rowCount body rows.
func (p Params) EstimateHeight(rowCount int, font, padding float64) float64 {
	return RowHeight(font+p.HeaderBoost, padding, p.LineFactor) +
		float64(rowCount)*RowHeight(font, padding, p.LineFactor)
}

// Solve runs the shrink loop with the default params.
func Solve(rows []Row, page PageSpec, chrome ChromeSpec) FitResult {
	return DefaultParams().Solve(len(rows), page, chrome)
}

// Solve finds the largest font on the FontStep grid (and its matching padding)
// whose estimated table height fits the available height. If even MinFont does
// not fit, the result is MinFont with Fits false. It never fails.
//
// Font and padding are derived from the step count rather than accumulated, so
// identical inputs always give bit-identical results.
func (p Params) Solve(rowCount int, page PageSpec, chrome ChromeSpec) FitResult {
	p = p.WithDefaults()
	if rowCount < 0 {
		rowCount = 0
	}

	available := AvailableHeight(page, chrome)
	font, padding := p.MaxFont, p.Padding
	estimated := p.EstimateHeight(rowCount, font, padding)

	steps := 0
	for estimated > available && font > p.MinFont {
		steps++
		font = math.Max(p.MinFont, p.MaxFont-float64(steps)*p.FontStep)
		padding = math.Max(p.MinPadding, p.Padding-float64(steps)*p.PaddingStep)
		estimated = p.EstimateHeight(rowCount, font, padding)
	}

	return FitResult{
		FontSize:        font,
		CellPadding:     padding,
		HeaderBoost:     p.HeaderBoost,
		LineFactor:      p.LineFactor,
		EstimatedHeight: estimated,
		AvailableHeight: available,
		Iterations:      steps,
		Fits:            estimated <= available,
	}
}
