package main

import (
	"crypto/rand"
	"fmt"
	"strings"
	"time"

	"jobschedule/internal/layout"
	"jobschedule/internal/logo"
	"jobschedule/internal/render"
	"jobschedule/internal/schedule"
)

// ---------------------------------------------------------------------------
// Document Generation Helpers
// ---------------------------------------------------------------------------

const (
	defaultTitle  = "Job Schedule"
	dateLayout    = "02.01.2006"
	logoMaxHeight = 240
)

var defaultSignatures = []string{"Prepared by", "Checked by", "Approved by"}

// documentID generates a structured document reference number.
// Format: JS-YYYY-WW-XXXX with the ISO year and week (e.g., JS-2026-42-A7K2)
func documentID(weekStart time.Time) string {
	const charset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

	b := make([]byte, 4)
	rand.Read(b)
	for i := range b {
		b[i] = charset[int(b[i])%len(charset)]
	}

	year, week := weekStart.ISOWeek()
	return fmt.Sprintf("JS-%d-%02d-%s", year, week, string(b))
}

// formatDate formats a date as DD.MM.YYYY.
func formatDate(t time.Time) string {
	return t.Format(dateLayout)
}

// formatPeriod formats the Monday-to-Sunday range starting at weekStart.
func formatPeriod(weekStart time.Time) string {
	return formatDate(weekStart) + " - " + formatDate(weekStart.AddDate(0, 0, 6))
}

// weekLabel returns e.g. "Week 42/2026".
func weekLabel(weekStart time.Time) string {
	year, week := weekStart.ISOWeek()
	return fmt.Sprintf("Week %02d/%d", week, year)
}

// scheduleFilename returns e.g. "2026-W42_Job_Schedule.pdf".
func scheduleFilename(weekStart time.Time, ext string) string {
	year, week := weekStart.ISOWeek()
	return fmt.Sprintf("%d-W%02d_Job_Schedule.%s", year, week, ext)
}

// buildSubject creates the email subject line.
func buildSubject(cfg *Config, weekStart time.Time) string {
	title := cfg.Title
	if title == "" {
		title = defaultTitle
	}
	return fmt.Sprintf("%s %s", title, weekLabel(weekStart))
}

// ---------------------------------------------------------------------------
// Document Content Builders
// ---------------------------------------------------------------------------

// scheduleDocument is everything needed to draw one schedule page.
type scheduleDocument struct {
	Title       string
	Reference   string
	Page        layout.PageSpec
	Chrome      layout.ChromeSpec
	Columns     []layout.ColumnSpec
	Rows        []layout.Row
	Fit         layout.FitResult
	GroupColumn int
	Header      render.HeaderMeta
	Footer      render.FooterMeta
}

// buildSchedule maps the week's assignments to rows and solves the page fit.
// Nothing is drawn yet.
func buildSchedule(cfg *Config, week []schedule.Assignment, weekStart, now time.Time) (scheduleDocument, error) {
	page, err := cfg.PageSpec()
	if err != nil {
		return scheduleDocument{}, err
	}
	chrome := cfg.ChromeSpec()
	columns := cfg.ColumnSpecs()

	mapper, err := schedule.ColumnMapper(columns, cfg.DateLayout)
	if err != nil {
		return scheduleDocument{}, err
	}
	rows := schedule.Rows(week, mapper)

	title := cfg.Title
	if title == "" {
		title = defaultTitle
	}
	ref := documentID(weekStart)

	header, err := buildHeaderMeta(cfg, title, ref, weekStart, now)
	if err != nil {
		return scheduleDocument{}, err
	}

	return scheduleDocument{
		Title:       title,
		Reference:   ref,
		Page:        page,
		Chrome:      chrome,
		Columns:     columns,
		Rows:        rows,
		Fit:         cfg.FitParams().Solve(len(rows), page, chrome),
		GroupColumn: groupColumn(columns),
		Header:      header,
		Footer:      buildFooterMeta(cfg, ref),
	}, nil
}

// groupColumn returns the index of the date column, or -1.
func groupColumn(columns []layout.ColumnSpec) int {
	for i, c := range columns {
		if c.ID == schedule.ColDate {
			return i
		}
	}
	return -1
}

// buildHeaderMeta creates the header block content. The logo is loaded here
// so the renderer only ever sees decoded bytes.
func buildHeaderMeta(cfg *Config, title, ref string, weekStart, now time.Time) (render.HeaderMeta, error) {
	meta := render.HeaderMeta{
		Title:    title,
		Company:  cfg.Company,
		Subtitle: weekLabel(weekStart),
		Lines: []render.MetaLine{
			{Label: "Ref.", Value: ref},
			{Label: "Period", Value: formatPeriod(weekStart)},
			{Label: "Issued", Value: formatDate(now)},
		},
	}
	if cfg.PreparedBy != "" {
		meta.Lines = append(meta.Lines, render.MetaLine{Label: "Prepared by", Value: cfg.PreparedBy})
	}

	if cfg.Logo != "" {
		img, err := logo.Load(cfg.Logo, logoMaxHeight)
		if err != nil {
			return meta, err
		}
		meta.Logo = img.PNG
		meta.LogoType = "PNG"
	}
	return meta, nil
}

// buildFooterMeta creates the footer block content.
func buildFooterMeta(cfg *Config, ref string) render.FooterMeta {
	signatures := cfg.Signatures
	if len(signatures) == 0 {
		signatures = defaultSignatures
	}

	reference := ref
	if cfg.Company != "" {
		reference = strings.Join([]string{cfg.Company, ref}, " | ")
	}

	return render.FooterMeta{
		Note:       cfg.Note,
		Signatures: signatures,
		Reference:  reference,
	}
}
