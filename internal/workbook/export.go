package workbook

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"jobschedule/internal/layout"
)

const (
	exportSheet = "Schedule"

	// pointsPerChar converts PDF column widths to Excel character widths.
	pointsPerChar = 5.25

	titleRow  = 1
	headerRow = 3
	firstRow  = 4
)

// ExportOptions controls the xlsx export.
type ExportOptions struct {
	Title string
	// Width used to size the remainder column, normally the page usable width.
	UsableWidth float64
	// GroupColumn is merged vertically over runs of equal values; -1 disables.
	GroupColumn int
}

// Export writes the table as a single-sheet workbook: a merged title row, a
// bold header row and one row per table row.
func Export(w io.Writer, columns []layout.ColumnSpec, rows []layout.Row, opts ExportOptions) error {
	if len(columns) == 0 {
		return fmt.Errorf("no columns to export")
	}

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName(f.GetSheetName(0), exportSheet); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	styles, err := newStyles(f)
	if err != nil {
		return err
	}

	last, err := excelize.ColumnNumberToName(len(columns))
	if err != nil {
		return err
	}

	// Title
	if opts.Title != "" {
		if err := f.SetCellValue(exportSheet, cellName(1, titleRow), opts.Title); err != nil {
			return err
		}
		if err := f.MergeCell(exportSheet, cellName(1, titleRow), fmt.Sprintf("%s%d", last, titleRow)); err != nil {
			return fmt.Errorf("failed to merge title: %w", err)
		}
		if err := f.SetCellStyle(exportSheet, cellName(1, titleRow), cellName(1, titleRow), styles.title); err != nil {
			return err
		}
	}

	// Header and column widths
	widths := layout.ResolveWidths(columns, opts.UsableWidth)
	for i, c := range columns {
		if err := f.SetCellValue(exportSheet, cellName(i+1, headerRow), c.Title); err != nil {
			return err
		}
		col, _ := excelize.ColumnNumberToName(i + 1)
		chars := widths[i] / pointsPerChar
		if chars < 6 {
			chars = 6
		}
		if err := f.SetColWidth(exportSheet, col, col, chars); err != nil {
			return fmt.Errorf("failed to set width of column %s: %w", col, err)
		}
	}
	if err := f.SetCellStyle(exportSheet, cellName(1, headerRow), fmt.Sprintf("%s%d", last, headerRow), styles.header); err != nil {
		return err
	}

	// Body
	for r, row := range rows {
		for i := range columns {
			v := ""
			if i < len(row) {
				v = row[i]
			}
			if err := f.SetCellValue(exportSheet, cellName(i+1, firstRow+r), v); err != nil {
				return err
			}
		}
	}
	if len(rows) > 0 {
		end := fmt.Sprintf("%s%d", last, firstRow+len(rows)-1)
		if err := f.SetCellStyle(exportSheet, cellName(1, firstRow), end, styles.body); err != nil {
			return err
		}
	}

	if err := mergeGroups(f, rows, opts.GroupColumn); err != nil {
		return err
	}

	if err := f.SetPanes(exportSheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      headerRow,
		TopLeftCell: cellName(1, firstRow),
		ActivePane:  "bottomLeft",
	}); err != nil {
		return fmt.Errorf("failed to freeze header: %w", err)
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

// mergeGroups merges consecutive equal cells of the group column.
func mergeGroups(f *excelize.File, rows []layout.Row, col int) error {
	if col < 0 {
		return nil
	}

	value := func(i int) string {
		if col >= len(rows[i]) {
			return ""
		}
		return rows[i][col]
	}

	start := 0
	for i := 1; i <= len(rows); i++ {
		if i < len(rows) && value(i) == value(start) && value(i) != "" {
			continue
		}
		if i-start > 1 {
			top, bottom := cellName(col+1, firstRow+start), cellName(col+1, firstRow+i-1)
			if err := f.MergeCell(exportSheet, top, bottom); err != nil {
				return fmt.Errorf("failed to merge %s:%s: %w", top, bottom, err)
			}
		}
		start = i
	}
	return nil
}

type exportStyles struct {
	title, header, body int
}

func newStyles(f *excelize.File) (exportStyles, error) {
	var s exportStyles
	var err error

	border := []excelize.Border{
		{Type: "left", Color: "808080", Style: 1},
		{Type: "right", Color: "808080", Style: 1},
		{Type: "top", Color: "808080", Style: 1},
		{Type: "bottom", Color: "808080", Style: 1},
	}

	s.title, err = f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 14},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return s, fmt.Errorf("failed to create title style: %w", err)
	}

	s.header, err = f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"D9D9D9"}, Pattern: 1},
		Border:    border,
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center", WrapText: true},
	})
	if err != nil {
		return s, fmt.Errorf("failed to create header style: %w", err)
	}

	s.body, err = f.NewStyle(&excelize.Style{
		Border:    border,
		Alignment: &excelize.Alignment{Vertical: "top", WrapText: true},
	})
	if err != nil {
		return s, fmt.Errorf("failed to create body style: %w", err)
	}
	return s, nil
}

func cellName(col, row int) string {
	name, _ := excelize.CoordinatesToCellName(col, row)
	return name
}
