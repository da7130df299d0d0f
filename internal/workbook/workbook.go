// Package workbook reads schedule sheets from xlsx, xls and csv files and
// writes the finished schedule back out as xlsx.
package workbook

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/extrame/xls"
	"github.com/xuri/excelize/v2"
)

// ErrNoWorksheet is returned when a file has no usable sheet.
var ErrNoWorksheet = errors.New("no worksheet found")

// ErrEmptySheet is returned when the sheet has no rows.
var ErrEmptySheet = errors.New("worksheet is empty")

// maxXLSRows bounds how many rows are read from legacy workbooks.
const maxXLSRows = 100000

// ReadRows returns all rows of one sheet. The format is chosen by file
// extension: .xls uses the legacy reader, .csv the CSV reader and everything
// else is opened as xlsx. sheet selects an xlsx sheet by name; empty means
// the first sheet.
func ReadRows(r io.Reader, filename, sheet string) ([][]string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", filename, err)
	}

	var rows [][]string
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".xls":
		rows, err = readXLS(data)
	case ".csv", ".txt":
		rows, err = readCSV(data)
	default:
		rows, err = readXLSX(data, sheet)
	}
	if err != nil {
		return nil, err
	}

	if len(rows) == 0 {
		return nil, ErrEmptySheet
	}
	return rows, nil
}

func readXLS(data []byte) ([][]string, error) {
	wb, err := xls.OpenReader(bytes.NewReader(data), "utf-8")
	if err != nil {
		return nil, fmt.Errorf("failed to open xls workbook: %w", err)
	}
	if wb.NumSheets() == 0 {
		return nil, ErrNoWorksheet
	}
	if wb.NumSheets() > 1 {
		return nil, fmt.Errorf("multiple worksheets found; save the schedule as a single sheet")
	}
	return wb.ReadAllCells(maxXLSRows), nil
}

func readXLSX(data []byte, sheet string) ([][]string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to open xlsx workbook: %w", err)
	}
	defer func() { _ = f.Close() }()

	if sheet == "" {
		sheet = f.GetSheetName(0)
	}
	if sheet == "" {
		return nil, ErrNoWorksheet
	}

	// Raw values keep date cells as serials whatever their number format.
	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheet, err)
	}
	return rows, nil
}

// readCSV accepts comma or semicolon separated files; the separator that
// occurs more often in the first line wins.
func readCSV(data []byte) ([][]string, error) {
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))

	first := data
	if i := bytes.IndexByte(data, '\n'); i >= 0 {
		first = data[:i]
	}

	r := csv.NewReader(bytes.NewReader(data))
	if bytes.Count(first, []byte(";")) > bytes.Count(first, []byte(",")) {
		r.Comma = ';'
	}
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true

	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse csv: %w", err)
	}
	return rows, nil
}
