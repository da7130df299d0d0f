package schedule

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// ErrMissingColumn is returned when the sheet lacks a required column.
var ErrMissingColumn = errors.New("missing required column")

// headerAliases maps normalized sheet headings to assignment fields.
var headerAliases = map[string]string{
	"date":          ColDate,
	"schedule date": ColDate,
	"job date":      ColDate,

	"shift": ColShift,

	"job":        ColJob,
	"job no":     ColJob,
	"job number": ColJob,
	"jobno":      ColJob,
	"job id":     ColJob,
	"work order": ColJob,
	"wo":         ColJob,

	"client":   ColClient,
	"customer": ColClient,

	"location": ColLocation,
	"site":     ColLocation,

	"scope":         ColScope,
	"scope of work": ColScope,
	"description":   ColScope,
	"equipment":     ColScope,
	"work":          ColScope,

	"technicians": ColTechnicians,
	"technician":  ColTechnicians,
	"crew":        ColTechnicians,
	"manpower":    ColTechnicians,
	"team":        ColTechnicians,

	"vehicle":   ColVehicle,
	"transport": ColVehicle,

	"remarks": ColRemarks,
	"remark":  ColRemarks,
	"notes":   ColRemarks,
	"note":    ColRemarks,
	"comment": ColRemarks,
}

// inputDateLayouts are tried in order when a date cell is not an Excel serial.
var inputDateLayouts = []string{
	"02.01.2006",
	"2.1.2006",
	"2006-01-02",
	"02/01/2006",
	"2/1/2006",
	"01-02-06",
	"02-Jan-06",
	"2-Jan-06",
	"02 Jan 2006",
	"2 Jan 2006",
}

func normalizeHeader(header string) string {
	h := strings.ToLower(strings.TrimSpace(header))
	h = strings.NewReplacer(".", "", "#", "", "_", " ", "-", " ").Replace(h)
	return strings.Join(strings.Fields(h), " ")
}

func cellValue(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

// ParseDate reads a date cell written in one of the accepted layouts or as an
// Excel date serial.
func ParseDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, errors.New("empty date")
	}

	if serial, err := strconv.ParseFloat(value, 64); err == nil {
		// Plain years and small counters are not dates.
		if serial >= 20000 && serial <= 80000 {
			t, err := excelize.ExcelDateToTime(serial, false)
			if err == nil {
				return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
			}
		}
		return time.Time{}, fmt.Errorf("unrecognized date %q", value)
	}

	for _, l := range inputDateLayouts {
		if t, err := time.Parse(l, value); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", value)
}

// FromRecords converts sheet rows into assignments. The first row holds the
// headings; date and job columns are required. Blank rows are skipped.
func FromRecords(records [][]string) ([]Assignment, error) {
	if len(records) == 0 {
		return nil, errors.New("no rows")
	}

	index := map[string]int{}
	for i, h := range records[0] {
		field, ok := headerAliases[normalizeHeader(h)]
		if !ok {
			continue
		}
		if _, seen := index[field]; !seen {
			index[field] = i
		}
	}
	for _, required := range []string{ColDate, ColJob} {
		if _, ok := index[required]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingColumn, required)
		}
	}

	get := func(row []string, field string) string {
		idx, ok := index[field]
		if !ok {
			return ""
		}
		return cellValue(row, idx)
	}

	caser := cases.Title(language.English)

	var out []Assignment
	for n, row := range records[1:] {
		if isBlank(row) {
			continue
		}

		date, err := ParseDate(get(row, ColDate))
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", n+2, err)
		}

		out = append(out, Assignment{
			Date:        date,
			Shift:       caser.String(get(row, ColShift)),
			JobNo:       get(row, ColJob),
			Client:      get(row, ColClient),
			Location:    get(row, ColLocation),
			Scope:       get(row, ColScope),
			Technicians: get(row, ColTechnicians),
			Vehicle:     get(row, ColVehicle),
			Remarks:     get(row, ColRemarks),
		})
	}
	return out, nil
}

func isBlank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
