package normalize

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata" // source zones must resolve on hosts without a zoneinfo database
)

var (
	ErrUnrecognizedDate = errors.New("unrecognized date")
	ErrBadClock         = errors.New("unrecognized clock time")
	ErrBadOffset        = errors.New("unrecognized GMT offset")
)

const dateLayout = "2006-01-02"

// Span is a date range as month-day pairs ("03-14"). An endpoint that could
// not be read is empty.
type Span struct {
	Start string
	End   string
}

// Dates combines the span with year into YYYY-MM-DD dates. When the end
// month-day precedes the start, the range crosses New Year and the end falls
// in year+1. Endpoints that are empty or not a real calendar date stay empty.
func (s Span) Dates(year int) (start, end string) {
	endYear := year
	if s.Start != "" && s.End != "" && s.End < s.Start {
		endYear++
	}
	return joinDate(year, s.Start), joinDate(endYear, s.End)
}

// Window resolves the year of a session day inside an event's date range.
// When the range crosses New Year, months before the start month belong to
// the closing year.
type Window struct {
	StartYear  int
	StartMonth time.Month
	EndYear    int
}

// InYear is a window that does not cross New Year
func InYear(year int) Window {
	return Window{StartYear: year, EndYear: year}
}

// Window returns the year window of the span as listed under year, matching
// the dates produced by Dates.
func (s Span) Window(year int) Window {
	start, end := s.Dates(year)
	return WindowOf(start, end, year)
}

// WindowOf builds a window from YYYY-MM-DD endpoints. Unreadable endpoints
// fall back to InYear(year).
func WindowOf(start, end string, year int) Window {
	from, err := time.Parse(dateLayout, start)
	if err != nil {
		return InYear(year)
	}
	to, err := time.Parse(dateLayout, end)
	if err != nil || to.Year() <= from.Year() {
		return InYear(from.Year())
	}
	return Window{StartYear: from.Year(), StartMonth: from.Month(), EndYear: to.Year()}
}

// YearOf returns the year a day in month falls in
func (w Window) YearOf(month time.Month) int {
	if w.EndYear > w.StartYear && month < w.StartMonth {
		return w.EndYear
	}
	return w.StartYear
}

func joinDate(year int, monthDay string) string {
	if monthDay == "" {
		return ""
	}
	date := fmt.Sprintf("%04d-%s", year, monthDay)
	if _, err := time.Parse(dateLayout, date); err != nil {
		return ""
	}
	return date
}

// Instant is a normalized session start. When TBD is set, Time holds local
// midnight of Date and carries no time-of-day information.
type Instant struct {
	Time time.Time
	TBD  bool
	Date string // local calendar date, YYYY-MM-DD
}

// monthDay formats a month and a day number as "MM-DD", or "" if either is invalid
func monthDay(month time.Month, day string) string {
	d, err := strconv.Atoi(strings.TrimSpace(day))
	if err != nil || d < 1 || d > 31 || month < time.January || month > time.December {
		return ""
	}
	return fmt.Sprintf("%02d-%02d", int(month), d)
}

var monthNames = []string{
	"january", "february", "march", "april", "may", "june",
	"july", "august", "september", "october", "november", "december",
}

// MonthFromName maps an English month name or abbreviation ("Mar", "March",
// "Sept.") to a time.Month. Matching is case-insensitive.
func MonthFromName(name string) (time.Month, bool) {
	name = strings.ToLower(strings.TrimSuffix(strings.TrimSpace(name), "."))
	if len(name) < 3 {
		return 0, false
	}
	for i, full := range monthNames {
		if strings.HasPrefix(full, name) {
			return time.Month(i + 1), true
		}
	}
	return 0, false
}

// IsTBD reports whether a clock-time fragment announces no time of day
func IsTBD(clock string) bool {
	switch strings.ToUpper(strings.TrimSpace(clock)) {
	case "", "TBD", "TBA", "TBC", "未定", "-", "–", "—":
		return true
	}
	return false
}

// Zone loads an IANA zone. The embedded tzdata makes failures a programming error.
func Zone(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		panic(fmt.Sprintf("normalize: loading zone %q: %v", name, err))
	}
	return loc
}

// clockParser reads a clock-time fragment into hour and minute
type clockParser func(string) (int, int, error)

// instantAt builds an Instant from calendar parts and a clock fragment read in loc.
// An impossible date (e.g. 31 Feb) is ErrUnrecognizedDate rather than an overflow
// into the next month.
func instantAt(year int, month time.Month, day int, clock string, parse clockParser, loc *time.Location) (Instant, error) {
	midnight := time.Date(year, month, day, 0, 0, 0, 0, loc)
	if midnight.Year() != year || midnight.Month() != month || midnight.Day() != day {
		return Instant{}, fmt.Errorf("%w: %04d-%02d-%02d", ErrUnrecognizedDate, year, int(month), day)
	}
	date := midnight.Format(dateLayout)

	if IsTBD(clock) {
		return Instant{Time: midnight, TBD: true, Date: date}, nil
	}

	hour, minute, err := parse(clock)
	if err != nil {
		return Instant{}, err
	}
	t := time.Date(year, month, day, hour, minute, 0, 0, loc)
	return Instant{Time: t.UTC(), Date: date}, nil
}
