// Package main generates the weekly job schedule of a technical-services
// company as a single-page PDF. The schedule table is always fitted onto one
// page by shrinking a single, uniform font size; only the signature footer may
// move to a second page.
//
// Assignments are read from an xlsx, xls or csv sheet, restricted to the week
// containing the requested date and annotated with public holidays. The PDF
// can optionally be exported as xlsx and emailed.
//
// Usage: jobschedule [flags] <assignments.xlsx|.xls|.csv>
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/rickar/cal/v2"
	"github.com/rickar/cal/v2/de"
	"gopkg.in/yaml.v3"

	"jobschedule/internal/layout"
	"jobschedule/internal/schedule"
	"jobschedule/internal/workbook"
)

// ---------------------------------------------------------------------------
// Constants
// ---------------------------------------------------------------------------

const (
	// Version
	version = "1.2.0"

	// Default page chrome, in points
	defaultMargin       = 28.0
	defaultHeaderHeight = 42.0
	defaultFooterHeight = 90.0

	defaultConfigName = "config.yaml"
)

// weekArgRegex matches ISO week arguments: YYYY-Www or YYYYWww
var weekArgRegex = regexp.MustCompile(`^(20[0-9]{2})-?W(0[1-9]|[1-4][0-9]|5[0-3])$`)

// ErrUsage is returned for invalid command line arguments.
var ErrUsage = errors.New("usage")

// ErrDoesNotFit is returned in strict mode when the table overflows the page.
var ErrDoesNotFit = errors.New("schedule does not fit on one page")

// pageSizes are portrait sizes in points.
var pageSizes = map[string]layout.PageSpec{
	"A3":     {Width: 841.89, Height: 1190.55},
	"A4":     {Width: 595.28, Height: 841.89},
	"A5":     {Width: 420.94, Height: 595.28},
	"LETTER": {Width: 612, Height: 792},
	"LEGAL":  {Width: 612, Height: 1008},
}

// ---------------------------------------------------------------------------
// Configuration
// ---------------------------------------------------------------------------

type SMTPConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"user"`
	Password string `yaml:"pass"`
}

type EmailConfig struct {
	From string   `yaml:"from"`
	To   string   `yaml:"to"`
	Cc   []string `yaml:"cc"`
}

// PageConfig selects a named paper size or explicit dimensions in points.
type PageConfig struct {
	Size        string  `yaml:"size"`
	Orientation string  `yaml:"orientation"` // "portrait" or "landscape"
	Width       float64 `yaml:"width"`
	Height      float64 `yaml:"height"`
	Margin      float64 `yaml:"margin"`
}

type ChromeConfig struct {
	HeaderHeight float64 `yaml:"headerHeight"`
	FooterHeight float64 `yaml:"footerHeight"`
}

// ColumnConfig is one table column; width is in points.
type ColumnConfig struct {
	ID        string  `yaml:"id"`
	Title     string  `yaml:"title"`
	Width     float64 `yaml:"width"`
	Remainder bool    `yaml:"remainder"`
	Align     string  `yaml:"align"`
}

// FitConfig overrides the solver constants; omitted keys keep the defaults.
type FitConfig struct {
	MaxFont     *float64 `yaml:"maxFont"`
	MinFont     *float64 `yaml:"minFont"`
	FontStep    *float64 `yaml:"fontStep"`
	PaddingStep *float64 `yaml:"paddingStep"`
	LineFactor  *float64 `yaml:"lineFactor"`
	HeaderBoost *float64 `yaml:"headerBoost"`
	Padding     *float64 `yaml:"padding"`
	MinPadding  *float64 `yaml:"minPadding"`
}

type Config struct {
	Company    string         `yaml:"company"`
	Title      string         `yaml:"title"`
	Logo       string         `yaml:"logo"`
	PreparedBy string         `yaml:"preparedBy"`
	DateLayout string         `yaml:"dateLayout"`
	Note       string         `yaml:"note"`
	Signatures []string       `yaml:"signatures"`
	Page       PageConfig     `yaml:"page"`
	Chrome     ChromeConfig   `yaml:"chrome"`
	Columns    []ColumnConfig `yaml:"columns"`
	Fit        FitConfig      `yaml:"fit"`

	// German state abbreviation for public holidays (e.g., "BW", "BY")
	Province         string `yaml:"province"`
	ChristmasWeekOff *bool  `yaml:"christmasWeekOff"`

	SMTP  SMTPConfig  `yaml:"smtp"`
	Email EmailConfig `yaml:"email"`
}

// ChristmasWeekOffEnabled reports whether Dec 24 and Dec 27-31 count as days
// off. Defaults to true.
func (c *Config) ChristmasWeekOffEnabled() bool {
	return c.ChristmasWeekOff == nil || *c.ChristmasWeekOff
}

// PageSpec resolves the configured paper size, orientation and margin.
func (c *Config) PageSpec() (layout.PageSpec, error) {
	p := c.Page
	var page layout.PageSpec

	switch {
	case p.Width > 0 && p.Height > 0:
		page = layout.PageSpec{Width: p.Width, Height: p.Height}
	default:
		name := p.Size
		if name == "" {
			name = "A4"
		}
		size, ok := pageSizes[strings.ToUpper(name)]
		if !ok {
			return layout.PageSpec{}, fmt.Errorf("unknown page size %q", p.Size)
		}
		page = size
	}

	switch p.Orientation {
	case "", "portrait", "P":
	case "landscape", "L":
		page.Width, page.Height = page.Height, page.Width
	default:
		return layout.PageSpec{}, fmt.Errorf("unknown orientation %q", p.Orientation)
	}

	page.Margin = p.Margin
	if page.Margin == 0 {
		page.Margin = defaultMargin
	}
	return page, page.Validate()
}

// ChromeSpec returns the header and footer reservation.
func (c *Config) ChromeSpec() layout.ChromeSpec {
	chrome := layout.ChromeSpec{HeaderHeight: c.Chrome.HeaderHeight, FooterHeight: c.Chrome.FooterHeight}
	if chrome.HeaderHeight == 0 {
		chrome.HeaderHeight = defaultHeaderHeight
	}
	if chrome.FooterHeight == 0 {
		chrome.FooterHeight = defaultFooterHeight
	}
	return chrome
}

// ColumnSpecs returns the configured columns or the default column set.
func (c *Config) ColumnSpecs() []layout.ColumnSpec {
	if len(c.Columns) == 0 {
		return schedule.DefaultColumns()
	}
	columns := make([]layout.ColumnSpec, len(c.Columns))
	for i, col := range c.Columns {
		columns[i] = layout.ColumnSpec{
			ID:        col.ID,
			Title:     col.Title,
			Width:     col.Width,
			Remainder: col.Remainder,
			Align:     col.Align,
		}
	}
	return columns
}

// FitParams returns the solver parameters: the configured values over the
// defaults. An explicit zero boost or padding turns it off.
func (c *Config) FitParams() layout.Params {
	p := layout.DefaultParams()
	set := func(dst *float64, v *float64) {
		if v != nil {
			*dst = *v
		}
	}
	set(&p.MaxFont, c.Fit.MaxFont)
	set(&p.MinFont, c.Fit.MinFont)
	set(&p.FontStep, c.Fit.FontStep)
	set(&p.PaddingStep, c.Fit.PaddingStep)
	set(&p.LineFactor, c.Fit.LineFactor)
	set(&p.HeaderBoost, c.Fit.HeaderBoost)
	set(&p.Padding, c.Fit.Padding)
	set(&p.MinPadding, c.Fit.MinPadding)
	return p.WithDefaults()
}

// loadConfig reads and validates the YAML configuration. Explicit paths are
// tried in order; without any, name is looked up in the working directory and
// next to the executable.
func loadConfig(name string, paths ...string) (*Config, error) {
	candidates := paths
	if len(candidates) == 0 {
		candidates = []string{name}
		if exe, err := os.Executable(); err == nil {
			candidates = append(candidates, filepath.Join(filepath.Dir(exe), name))
		}
	}

	var data []byte
	var err error
	for _, p := range candidates {
		if data, err = os.ReadFile(p); err == nil {
			break
		}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	page, err := c.PageSpec()
	if err != nil {
		return err
	}
	if err := c.ChromeSpec().Validate(page); err != nil {
		return err
	}
	columns := c.ColumnSpecs()
	if err := layout.ValidateColumns(columns, page.UsableWidth()); err != nil {
		return err
	}
	if _, err := schedule.ColumnMapper(columns, c.DateLayout); err != nil {
		return err
	}
	if c.Province != "" {
		if _, ok := provinceHolidays[c.Province]; !ok {
			return fmt.Errorf("unknown province %q", c.Province)
		}
	}
	return nil
}

// ---------------------------------------------------------------------------
// Business Calendar
// ---------------------------------------------------------------------------

// provinceHolidays maps German state abbreviations to their holiday slices.
var provinceHolidays = map[string][]*cal.Holiday{
	"BW": de.HolidaysBW, // Baden-Württemberg
	"BY": de.HolidaysBY, // Bayern (Bavaria)
	"BE": de.HolidaysBE, // Berlin
	"BB": de.HolidaysBB, // Brandenburg
	"HB": de.HolidaysHB, // Bremen
	"HH": de.HolidaysHH, // Hamburg
	"HE": de.HolidaysHE, // Hessen (Hesse)
	"MV": de.HolidaysMV, // Mecklenburg-Vorpommern
	"NI": de.HolidaysNI, // Niedersachsen (Lower Saxony)
	"NW": de.HolidaysNW, // Nordrhein-Westfalen (North Rhine-Westphalia)
	"RP": de.HolidaysRP, // Rheinland-Pfalz (Rhineland-Palatinate)
	"SL": de.HolidaysSL, // Saarland
	"SN": de.HolidaysSN, // Sachsen (Saxony)
	"ST": de.HolidaysST, // Sachsen-Anhalt (Saxony-Anhalt)
	"SH": de.HolidaysSH, // Schleswig-Holstein
	"TH": de.HolidaysTH, // Thüringen (Thuringia)
}

// newBusinessCalendar creates a calendar with German holidays for the given province.
func newBusinessCalendar(province string) *cal.BusinessCalendar {
	c := cal.NewBusinessCalendar()
	c.Name = "Job schedule"
	c.Description = "Company calendar for schedule annotations"

	holidays, ok := provinceHolidays[province]
	if !ok {
		// Default to Baden-Württemberg if invalid province
		holidays = de.HolidaysBW
	}
	c.AddHoliday(holidays...)
	return c
}

// isWorkday checks if a date is a regular working day.
// Excludes weekends, holidays and, if enabled, Dec 24 and Dec 27-31.
func isWorkday(c *cal.BusinessCalendar, date time.Time, christmasWeekOff bool) bool {
	if !c.IsWorkday(date) {
		return false
	}

	if christmasWeekOff && date.Month() == time.December {
		day := date.Day()
		if day == 24 || (day >= 27 && day <= 31) {
			return false
		}
	}

	return true
}

// holidayCalendar adapts a business calendar to schedule.WorkCalendar.
type holidayCalendar struct {
	cal              *cal.BusinessCalendar
	christmasWeekOff bool
}

func newHolidayCalendar(cfg *Config) holidayCalendar {
	return holidayCalendar{
		cal:              newBusinessCalendar(cfg.Province),
		christmasWeekOff: cfg.ChristmasWeekOffEnabled(),
	}
}

func (h holidayCalendar) IsWorkday(date time.Time) bool {
	return isWorkday(h.cal, date, h.christmasWeekOff)
}

func (h holidayCalendar) HolidayName(date time.Time) string {
	actual, observed, holiday := h.cal.IsHoliday(date)
	if (actual || observed) && holiday != nil {
		return holiday.Name
	}
	return ""
}

// ---------------------------------------------------------------------------
// Command Line
// ---------------------------------------------------------------------------

type options struct {
	configPath string
	input      string
	sheet      string
	date       time.Time
	outDir     string
	xlsx       bool
	preview    bool
	mail       bool
	strict     bool
	verbose    bool
	version    bool
}

// parseArgs parses flags and the input file argument.
func parseArgs(args []string, now time.Time, stderr io.Writer) (options, error) {
	var opts options

	fs := flag.NewFlagSet("jobschedule", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&opts.configPath, "config", "", "path to config file (default config.yaml)")
	dateArg := fs.String("date", "", "any date in the week to print (DD.MM.YYYY, YYYY-MM-DD or YYYY-Www)")
	fs.StringVar(&opts.sheet, "sheet", "", "xlsx sheet name (default first sheet)")
	fs.StringVar(&opts.outDir, "out", ".", "output directory")
	fs.BoolVar(&opts.xlsx, "xlsx", false, "also write the schedule as xlsx")
	fs.BoolVar(&opts.preview, "preview", false, "print the fitted table instead of writing files")
	fs.BoolVar(&opts.mail, "mail", false, "email the generated files")
	fs.BoolVar(&opts.strict, "strict", false, "fail when the table does not fit on one page")
	fs.BoolVar(&opts.verbose, "v", false, "verbose logging")
	fs.BoolVar(&opts.version, "version", false, "print version and exit")

	if err := fs.Parse(args); err != nil {
		return opts, fmt.Errorf("%w: %v", ErrUsage, err)
	}
	if opts.version {
		return opts, nil
	}

	if fs.NArg() != 1 {
		return opts, fmt.Errorf("%w: jobschedule [flags] <assignments.xlsx|.xls|.csv>", ErrUsage)
	}
	opts.input = fs.Arg(0)

	date, err := parseWeekDate(*dateArg, now)
	if err != nil {
		return opts, fmt.Errorf("%w: %v", ErrUsage, err)
	}
	opts.date = date
	return opts, nil
}

// parseWeekDate reads the -date argument. Empty means today.
func parseWeekDate(s string, now time.Time) (time.Time, error) {
	if s == "" {
		y, m, d := now.Date()
		return time.Date(y, m, d, 0, 0, 0, 0, time.UTC), nil
	}

	if m := weekArgRegex.FindStringSubmatch(s); m != nil {
		year, _ := strconv.Atoi(m[1])
		week, _ := strconv.Atoi(m[2])
		start := isoWeekStart(year, week)
		// Only some years have a week 53.
		if y, w := start.ISOWeek(); y != year || w != week {
			return time.Time{}, fmt.Errorf("%d has no week %d", year, week)
		}
		return start, nil
	}

	for _, l := range []string{"02.01.2006", "2.1.2006", "2006-01-02"} {
		if t, err := time.Parse(l, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date %q", s)
}

// isoWeekStart returns the Monday of the given ISO week.
func isoWeekStart(year, week int) time.Time {
	// Jan 4th is always in week 1.
	jan4 := time.Date(year, time.January, 4, 0, 0, 0, 0, time.UTC)
	return schedule.StartOfWeek(jan4).AddDate(0, 0, (week-1)*7)
}

// readAssignments loads the assignment sheet.
func readAssignments(path, sheet string) ([]schedule.Assignment, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open assignments: %w", err)
	}
	defer f.Close()

	rows, err := workbook.ReadRows(f, path, sheet)
	if err != nil {
		return nil, err
	}

	assignments, err := schedule.FromRecords(rows)
	if err != nil {
		return nil, fmt.Errorf("failed to read assignments from %s: %w", path, err)
	}
	return assignments, nil
}

// newLogger creates the text logger used for progress and warnings.
func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// reportOverflow logs a table that does not fit the page. In strict mode it
// returns ErrDoesNotFit instead.
func reportOverflow(logger *slog.Logger, strict bool, msg string, rows int, needed, available float64) error {
	if strict {
		return fmt.Errorf("%w: %d rows need %.1fpt, %.1fpt available", ErrDoesNotFit, rows, needed, available)
	}
	logger.Warn(msg, "rows", rows, "needed", needed, "available", available)
	return nil
}

// ---------------------------------------------------------------------------
// Main
// ---------------------------------------------------------------------------

func main() {
	if err := run(os.Args[1:], time.Now(), os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "jobschedule: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, now time.Time, stdout, stderr io.Writer) error {
	opts, err := parseArgs(args, now, stderr)
	if err != nil {
		return err
	}
	if opts.version {
		fmt.Fprintf(stdout, "jobschedule v%s\n", version)
		return nil
	}

	logger := newLogger(stderr, opts.verbose)

	// Load configuration
	var cfg *Config
	if opts.configPath != "" {
		cfg, err = loadConfig(defaultConfigName, opts.configPath)
	} else {
		cfg, err = loadConfig(defaultConfigName)
	}
	if err != nil {
		return err
	}

	// Read the week's assignments
	assignments, err := readAssignments(opts.input, opts.sheet)
	if err != nil {
		return err
	}
	start := schedule.StartOfWeek(opts.date)
	week := schedule.Week(assignments, start)
	schedule.Sort(week)
	schedule.Annotate(week, newHolidayCalendar(cfg))

	logger.Info("assignments loaded",
		"file", opts.input,
		"total", len(assignments),
		"week", start.Format("2006-01-02"),
		"selected", len(week))
	if n := schedule.CountNonWorkdays(week); n > 0 {
		logger.Warn("assignments on non-working days", "count", n)
	}

	// Lay out the page
	doc, err := buildSchedule(cfg, week, start, now)
	if err != nil {
		return err
	}
	logger.Debug("fit solved",
		"rows", len(doc.Rows),
		"font", doc.Fit.FontSize,
		"padding", doc.Fit.CellPadding,
		"estimated", doc.Fit.EstimatedHeight,
		"available", doc.Fit.AvailableHeight,
		"iterations", doc.Fit.Iterations)

	if !doc.Fit.Fits {
		err := reportOverflow(logger, opts.strict, "table exceeds the page at minimum font size",
			len(doc.Rows), doc.Fit.EstimatedHeight, doc.Fit.AvailableHeight)
		if err != nil {
			return err
		}
	}

	if opts.preview {
		return renderPreview(stdout, doc)
	}

	// Generate files in memory
	pdfData, table, err := createPDF(doc)
	if err != nil {
		return err
	}

	// Wrapped cells can make the drawn table taller than the estimate
	if doc.Fit.Fits {
		if drawn, room, over := doc.tableOverflow(table); over {
			err := reportOverflow(logger, opts.strict, "wrapped rows run past the bottom margin",
				len(doc.Rows), drawn, room)
			if err != nil {
				return err
			}
		}
	}
	attachments := []Attachment{{Filename: scheduleFilename(start, "pdf"), Data: pdfData}}

	if opts.xlsx {
		xlsxData, err := createXLSX(doc)
		if err != nil {
			return err
		}
		attachments = append(attachments, Attachment{Filename: scheduleFilename(start, "xlsx"), Data: xlsxData})
	}

	for _, a := range attachments {
		path := filepath.Join(opts.outDir, a.Filename)
		if err := os.WriteFile(path, a.Data, 0o644); err != nil {
			return fmt.Errorf("failed to write %s: %w", path, err)
		}
		logger.Info("written", "file", path, "bytes", len(a.Data))
	}

	if opts.mail {
		if err := sendEmail(cfg, buildSubject(cfg, start), attachments...); err != nil {
			return fmt.Errorf("failed to send email: %w", err)
		}
		logger.Info("emailed", "to", cfg.Email.To)
	}
	return nil
}
