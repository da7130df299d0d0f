package main

import (
	"bytes"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"jobschedule/internal/layout"
	"jobschedule/internal/schedule"
)

var weekStart = time.Date(2026, 10, 12, 0, 0, 0, 0, time.UTC)

func TestFormatDate(t *testing.T) {
	tests := []struct {
		name     string
		date     time.Time
		expected string
	}{
		{"single digit day and month", time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC), "05.01.2026"},
		{"double digit day and month", time.Date(2026, 12, 25, 0, 0, 0, 0, time.UTC), "25.12.2026"},
		{"leap year date", time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC), "29.02.2024"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := formatDate(tt.date)
			if got != tt.expected {
				t.Errorf("formatDate(%s) = %q, want %q", tt.date, got, tt.expected)
			}
		})
	}
}

func TestFormatPeriod(t *testing.T) {
	got := formatPeriod(weekStart)
	if got != "12.10.2026 - 18.10.2026" {
		t.Errorf("formatPeriod() = %q", got)
	}

	// Week spanning the new year
	got = formatPeriod(time.Date(2025, 12, 29, 0, 0, 0, 0, time.UTC))
	if got != "29.12.2025 - 04.01.2026" {
		t.Errorf("formatPeriod() = %q", got)
	}
}

func TestWeekLabelAndFilename(t *testing.T) {
	if got := weekLabel(weekStart); got != "Week 42/2026" {
		t.Errorf("weekLabel() = %q", got)
	}
	if got := scheduleFilename(weekStart, "pdf"); got != "2026-W42_Job_Schedule.pdf" {
		t.Errorf("scheduleFilename() = %q", got)
	}

	// ISO year differs from the calendar year
	newYear := time.Date(2025, 12, 29, 0, 0, 0, 0, time.UTC)
	if got := scheduleFilename(newYear, "xlsx"); got != "2026-W01_Job_Schedule.xlsx" {
		t.Errorf("scheduleFilename() = %q", got)
	}
}

func TestDocumentID(t *testing.T) {
	id := documentID(weekStart)

	// Check prefix
	if !strings.HasPrefix(id, "JS-2026-42-") {
		t.Errorf("documentID() = %q, want prefix JS-2026-42-", id)
	}

	// Check total length: "JS-2026-42-XXXX" = 15
	if len(id) != 15 {
		t.Errorf("documentID length = %d, want 15", len(id))
	}

	// Check suffix is alphanumeric
	suffix := id[11:]
	for _, c := range suffix {
		if !((c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')) {
			t.Errorf("documentID suffix %q contains invalid character %c", suffix, c)
		}
	}

	// Check uniqueness (two calls should differ)
	id2 := documentID(weekStart)
	if id == id2 {
		t.Logf("Warning: two documentID calls returned same value %q (possible but unlikely)", id)
	}
}

func TestBuildSubject(t *testing.T) {
	if got := buildSubject(&Config{}, weekStart); got != "Job Schedule Week 42/2026" {
		t.Errorf("buildSubject() = %q", got)
	}
	if got := buildSubject(&Config{Title: "Site Plan"}, weekStart); got != "Site Plan Week 42/2026" {
		t.Errorf("buildSubject() = %q", got)
	}
}

func TestBuildFooterMeta(t *testing.T) {
	got := buildFooterMeta(&Config{Company: "Nordwerk", Note: "Subject to change"}, "JS-2026-42-AAAA")

	if len(got.Signatures) != len(defaultSignatures) {
		t.Errorf("Signatures = %v, want defaults", got.Signatures)
	}
	if got.Reference != "Nordwerk | JS-2026-42-AAAA" {
		t.Errorf("Reference = %q", got.Reference)
	}
	if got.Note != "Subject to change" {
		t.Errorf("Note = %q", got.Note)
	}

	custom := buildFooterMeta(&Config{Signatures: []string{"Site lead"}}, "REF")
	if len(custom.Signatures) != 1 || custom.Reference != "REF" {
		t.Errorf("custom footer = %+v", custom)
	}
}

func TestGroupColumn(t *testing.T) {
	if got := groupColumn(schedule.DefaultColumns()); got != 0 {
		t.Errorf("groupColumn(default) = %d, want 0", got)
	}
	if got := groupColumn([]layout.ColumnSpec{{ID: schedule.ColJob}}); got != -1 {
		t.Errorf("groupColumn(no date) = %d, want -1", got)
	}
}

func sampleWeek(n int) []schedule.Assignment {
	week := make([]schedule.Assignment, n)
	for i := range week {
		week[i] = schedule.Assignment{
			Date:        weekStart.AddDate(0, 0, i%5),
			Shift:       "Day",
			JobNo:       "J-" + strings.Repeat("1", i%3+1),
			Client:      "Harbor Cranes",
			Location:    "Pier 4",
			Scope:       "Proof load test of overhead crane",
			Technicians: "A. Smith, B. Jones",
			Vehicle:     "VAN-2",
		}
	}
	schedule.Sort(week)
	return week
}

func TestBuildSchedule(t *testing.T) {
	now := time.Date(2026, 10, 15, 0, 0, 0, 0, time.UTC)
	doc, err := buildSchedule(&Config{Company: "Nordwerk"}, sampleWeek(10), weekStart, now)
	if err != nil {
		t.Fatalf("buildSchedule() error = %v", err)
	}

	if len(doc.Rows) != 10 {
		t.Errorf("Rows = %d, want 10", len(doc.Rows))
	}
	if doc.Fit.FontSize != layout.DefaultMaxFont || !doc.Fit.Fits {
		t.Errorf("Fit = %+v, want max font and fit", doc.Fit)
	}
	if doc.Header.Subtitle != "Week 42/2026" || doc.Title != defaultTitle {
		t.Errorf("header = %+v", doc.Header)
	}
	if doc.GroupColumn != 0 {
		t.Errorf("GroupColumn = %d, want 0", doc.GroupColumn)
	}
}

func TestBuildScheduleMissingLogo(t *testing.T) {
	cfg := &Config{Logo: filepath.Join(t.TempDir(), "missing.png")}
	if _, err := buildSchedule(cfg, nil, weekStart, weekStart); err == nil {
		t.Error("expected error for missing logo")
	}
}

func TestCreatePDF(t *testing.T) {
	logoPath := filepath.Join(t.TempDir(), "logo.png")
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewGray(image.Rect(0, 0, 90, 30))); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(logoPath, buf.Bytes(), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg := &Config{Company: "Nordwerk Technical Services", Logo: logoPath, PreparedBy: "Ops desk"}
	doc, err := buildSchedule(cfg, sampleWeek(25), weekStart, weekStart)
	if err != nil {
		t.Fatalf("buildSchedule() error = %v", err)
	}

	data, _, err := createPDF(doc)
	if err != nil {
		t.Fatalf("createPDF() error = %v", err)
	}
	if len(data) < 4 || string(data[:4]) != "%PDF" {
		t.Error("createPDF() output does not start with PDF magic bytes")
	}
}

func TestCreatePDFEmpty(t *testing.T) {
	doc, err := buildSchedule(&Config{}, nil, weekStart, weekStart)
	if err != nil {
		t.Fatalf("buildSchedule() error = %v", err)
	}

	data, _, err := createPDF(doc)
	if err != nil {
		t.Fatalf("createPDF() with empty input error = %v", err)
	}
	if len(data) == 0 {
		t.Error("createPDF() with empty input returned empty data")
	}
}

func TestCreatePDFWrappedRowsOverflow(t *testing.T) {
	week := sampleWeek(30)
	for i := range week {
		week[i].Scope = strings.Repeat("Inspect hoist brake, limit switches and rope drum. ", 3)
	}

	doc, err := buildSchedule(&Config{}, week, weekStart, weekStart)
	if err != nil {
		t.Fatalf("buildSchedule() error = %v", err)
	}
	if !doc.Fit.Fits {
		t.Fatalf("estimate should fit for 30 single-line rows: %+v", doc.Fit)
	}

	_, table, err := createPDF(doc)
	if err != nil {
		t.Fatalf("createPDF() error = %v", err)
	}
	drawn, room, over := doc.tableOverflow(table)
	if !over {
		t.Errorf("tableOverflow() = %v/%v, want overflow for wrapped rows", drawn, room)
	}
	if drawn <= doc.Fit.EstimatedHeight {
		t.Errorf("drawn height %v should exceed estimate %v", drawn, doc.Fit.EstimatedHeight)
	}
}

func TestTableOverflowSingleLineRows(t *testing.T) {
	week := sampleWeek(30)
	for i := range week {
		week[i].Scope = "Load test"
	}

	doc, err := buildSchedule(&Config{}, week, weekStart, weekStart)
	if err != nil {
		t.Fatalf("buildSchedule() error = %v", err)
	}

	_, table, err := createPDF(doc)
	if err != nil {
		t.Fatalf("createPDF() error = %v", err)
	}
	if drawn, room, over := doc.tableOverflow(table); over {
		t.Errorf("tableOverflow() = %v/%v, want no overflow", drawn, room)
	}
}

func TestCreateXLSX(t *testing.T) {
	doc, err := buildSchedule(&Config{}, sampleWeek(6), weekStart, weekStart)
	if err != nil {
		t.Fatalf("buildSchedule() error = %v", err)
	}

	data, err := createXLSX(doc)
	if err != nil {
		t.Fatalf("createXLSX() error = %v", err)
	}
	// xlsx files are zip archives
	if len(data) < 2 || string(data[:2]) != "PK" {
		t.Error("createXLSX() output is not a zip archive")
	}
}

func TestRenderPreview(t *testing.T) {
	doc, err := buildSchedule(&Config{}, sampleWeek(4), weekStart, weekStart)
	if err != nil {
		t.Fatalf("buildSchedule() error = %v", err)
	}

	var buf bytes.Buffer
	if err := renderPreview(&buf, doc); err != nil {
		t.Fatalf("renderPreview() error = %v", err)
	}

	// Skip the two summary lines and the blank line; every table line has the same width.
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")[3:]
	if len(lines) != 4+4 {
		t.Fatalf("got %d table lines, want 8", len(lines))
	}
	width := len(lines[0])
	for i, l := range lines {
		if len(l) != width {
			t.Errorf("line %d has width %d, want %d: %q", i, len(l), width, l)
		}
	}
}
