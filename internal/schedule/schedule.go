// Package schedule holds the job assignments shown on the schedule and the
// explicit mapping from an assignment to a table row.
package schedule

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"jobschedule/internal/layout"
)

// Assignment is one job booked for one day and shift.
type Assignment struct {
	Date        time.Time
	Shift       string
	JobNo       string
	Client      string
	Location    string
	Scope       string
	Technicians string
	Vehicle     string
	Remarks     string

	// Set by Annotate.
	NonWorkday bool
	Holiday    string
}

// Column IDs understood by ColumnMapper.
const (
	ColDate        = "date"
	ColDay         = "day"
	ColShift       = "shift"
	ColJob         = "job"
	ColClient      = "client"
	ColLocation    = "location"
	ColScope       = "scope"
	ColTechnicians = "technicians"
	ColVehicle     = "vehicle"
	ColRemarks     = "remarks"
)

// DefaultDateLayout is the date format printed in the table.
const DefaultDateLayout = "02.01.2006"

// DefaultColumns returns the column set used when the configuration does not
// define one. Widths are in points and sized for A4 portrait.
func DefaultColumns() []layout.ColumnSpec {
	return []layout.ColumnSpec{
		{ID: ColDate, Title: "Date", Width: 48, Align: "C"},
		{ID: ColShift, Title: "Shift", Width: 30, Align: "C"},
		{ID: ColJob, Title: "Job No.", Width: 46},
		{ID: ColClient, Title: "Client", Width: 70},
		{ID: ColLocation, Title: "Location", Width: 62},
		{ID: ColScope, Title: "Scope of Work", Remainder: true},
		{ID: ColTechnicians, Title: "Technicians", Width: 85},
		{ID: ColVehicle, Title: "Vehicle", Width: 40, Align: "C"},
		{ID: ColRemarks, Title: "Remarks", Width: 58},
	}
}

// Mapper turns an assignment into a table row.
type Mapper func(Assignment) layout.Row

// ColumnMapper builds a Mapper that fills each column from the assignment
// field named by the column ID. Unknown IDs are rejected up front.
func ColumnMapper(columns []layout.ColumnSpec, dateLayout string) (Mapper, error) {
	if dateLayout == "" {
		dateLayout = DefaultDateLayout
	}

	getters := make([]func(Assignment) string, len(columns))
	for i, c := range columns {
		g, ok := fieldGetter(c.ID, dateLayout)
		if !ok {
			return nil, fmt.Errorf("unknown column id %q", c.ID)
		}
		getters[i] = g
	}

	return func(a Assignment) layout.Row {
		row := make(layout.Row, len(getters))
		for i, g := range getters {
			row[i] = g(a)
		}
		return row
	}, nil
}

func fieldGetter(id, dateLayout string) (func(Assignment) string, bool) {
	switch id {
	case ColDate:
		return func(a Assignment) string { return a.Date.Format(dateLayout) }, true
	case ColDay:
		return func(a Assignment) string { return a.Date.Format("Mon") }, true
	case ColShift:
		return func(a Assignment) string { return a.Shift }, true
	case ColJob:
		return func(a Assignment) string { return a.JobNo }, true
	case ColClient:
		return func(a Assignment) string { return a.Client }, true
	case ColLocation:
		return func(a Assignment) string { return a.Location }, true
	case ColScope:
		return func(a Assignment) string { return a.Scope }, true
	case ColTechnicians:
		return func(a Assignment) string { return a.Technicians }, true
	case ColVehicle:
		return func(a Assignment) string { return a.Vehicle }, true
	case ColRemarks:
		return remarks, true
	}
	return nil, false
}

// remarks prefixes the free-text remarks with the holiday note, if any.
func remarks(a Assignment) string {
	switch {
	case a.Holiday != "" && a.Remarks != "":
		return a.Holiday + "; " + a.Remarks
	case a.Holiday != "":
		return a.Holiday
	}
	return a.Remarks
}

// Rows maps all assignments.
func Rows(as []Assignment, m Mapper) []layout.Row {
	rows := make([]layout.Row, len(as))
	for i, a := range as {
		rows[i] = m(a)
	}
	return rows
}

// ---------------------------------------------------------------------------
// Week Selection
// ---------------------------------------------------------------------------

// StartOfWeek returns the Monday of the week containing t, at midnight.
func StartOfWeek(t time.Time) time.Time {
	w := int(t.Weekday())
	if w == 0 {
		w = 7
	}
	return time.Date(t.Year(), t.Month(), t.Day()-w+1, 0, 0, 0, 0, t.Location())
}

// Between returns the assignments dated in [from, to).
func Between(as []Assignment, from, to time.Time) []Assignment {
	var out []Assignment
	for _, a := range as {
		if !a.Date.Before(from) && a.Date.Before(to) {
			out = append(out, a)
		}
	}
	return out
}

// Week returns the assignments of the Monday-to-Sunday week starting at start.
func Week(as []Assignment, start time.Time) []Assignment {
	return Between(as, start, start.AddDate(0, 0, 7))
}

// shiftRank orders day shifts before night shifts; anything else sorts last.
func shiftRank(s string) int {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "day", "d", "am":
		return 0
	case "night", "n", "pm":
		return 1
	}
	return 2
}

// Sort orders assignments by date, shift and job number.
func Sort(as []Assignment) {
	sort.SliceStable(as, func(i, j int) bool {
		a, b := as[i], as[j]
		if !a.Date.Equal(b.Date) {
			return a.Date.Before(b.Date)
		}
		if ra, rb := shiftRank(a.Shift), shiftRank(b.Shift); ra != rb {
			return ra < rb
		}
		return a.JobNo < b.JobNo
	})
}

// ---------------------------------------------------------------------------
// Calendar Annotation
// ---------------------------------------------------------------------------

// WorkCalendar answers whether a day is worked and names its holiday.
type WorkCalendar interface {
	IsWorkday(date time.Time) bool
	HolidayName(date time.Time) string
}

// Annotate marks assignments booked on non-working days and records the
// holiday name where there is one.
func Annotate(as []Assignment, cal WorkCalendar) {
	for i := range as {
		as[i].NonWorkday = !cal.IsWorkday(as[i].Date)
		as[i].Holiday = cal.HolidayName(as[i].Date)
	}
}

// CountNonWorkdays returns how many assignments fall on non-working days.
func CountNonWorkdays(as []Assignment) int {
	n := 0
	for _, a := range as {
		if a.NonWorkday {
			n++
		}
	}
	return n
}
