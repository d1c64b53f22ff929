package normalize

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// F1Zone is the zone formula1.com session times are read in
var F1Zone = Zone("Asia/Tokyo")

var (
	// "14 - 16 Mar" or "30 May - 01 Jun"
	f1RangePattern = regexp.MustCompile(`^(\d{1,2})(?:\s+([A-Za-z]{3}))?\s*[-–]\s*(\d{1,2})\s+([A-Za-z]{3})$`)
	// "14Mar", "14 Mar", "14 MAR"
	f1DayPattern = regexp.MustCompile(`^(\d{1,2})\s*([A-Za-z]{3})`)
)

// IsF1Range reports whether text has the shape of a formula1.com date range
func IsF1Range(text string) bool {
	return f1RangePattern.MatchString(strings.TrimSpace(text))
}

// ParseF1Range reads "14 - 16 Mar" → {03-14, 03-16} and
// "30 May - 01 Jun" → {05-30, 06-01}. A single month name applies to both ends.
func ParseF1Range(text string) Span {
	m := f1RangePattern.FindStringSubmatch(strings.TrimSpace(text))
	if m == nil {
		return Span{}
	}
	startMonthName := m[2]
	if startMonthName == "" {
		startMonthName = m[4]
	}
	startMonth, _ := MonthFromName(startMonthName)
	endMonth, _ := MonthFromName(m[4])
	return Span{
		Start: monthDay(startMonth, m[1]),
		End:   monthDay(endMonth, m[3]),
	}
}

// ParseF1Session reads a session day cell ("14Mar") and 24-hour clock ("13:30")
// in F1Zone. The year comes from w.
func ParseF1Session(dayText, timeText string, w Window) (Instant, error) {
	m := f1DayPattern.FindStringSubmatch(strings.TrimSpace(dayText))
	if m == nil {
		return Instant{}, fmt.Errorf("%w: %q", ErrUnrecognizedDate, dayText)
	}
	month, ok := MonthFromName(m[2])
	if !ok {
		return Instant{}, fmt.Errorf("%w: month %q", ErrUnrecognizedDate, m[2])
	}
	day, _ := strconv.Atoi(m[1])
	return instantAt(w.YearOf(month), month, day, FirstClock(timeText), ParseClock24, F1Zone)
}
