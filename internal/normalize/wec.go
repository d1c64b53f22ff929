package normalize

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// WECZone is used when an event page carries no usable GMT offset
var WECZone = Zone("Europe/Paris")

var (
	// "From 18 to 20 April 2025", "From 30 May to 1 June 2025",
	// "From 30 December 2025 to 1 January 2026"
	wecRangePattern = regexp.MustCompile(`(?i)^from\s+(\d{1,2})(?:st|nd|rd|th)?(?:\s+([a-z]+))?(?:\s+(\d{4}))?\s+to\s+(\d{1,2})(?:st|nd|rd|th)?\s+([a-z]+)\s+(\d{4})$`)
	// "April 19th"
	wecDayPattern = regexp.MustCompile(`^([A-Za-z]+)\.?\s+(\d{1,2})(?:st|nd|rd|th)?\b`)
)

// ParseWECRange reads a fiawec.com range into YYYY-MM-DD dates and the year
// the event is listed under (the year closing the range). Unreadable input
// yields empty dates and year 0.
func ParseWECRange(text string) (start, end string, year int) {
	m := wecRangePattern.FindStringSubmatch(strings.Join(strings.Fields(text), " "))
	if m == nil {
		return "", "", 0
	}
	year, _ = strconv.Atoi(m[6])
	endMonth, _ := MonthFromName(m[5])

	startMonth := endMonth
	if m[2] != "" {
		startMonth, _ = MonthFromName(m[2])
	}
	startYear := year
	switch {
	case m[3] != "":
		startYear, _ = strconv.Atoi(m[3])
	case startMonth > endMonth:
		startYear = year - 1
	}

	return joinDate(startYear, monthDay(startMonth, m[1])), joinDate(year, monthDay(endMonth, m[4])), year
}

// ParseWECSession reads a schedule day ("April 19th") and clock ("03:30 PM",
// optionally followed by "/ <other zone>") at the page's GMT offset. The
// year comes from w, so a December day in a range closing in January keeps
// the earlier year.
func ParseWECSession(w Window, dayText, timeText, offsetGMT string) (Instant, error) {
	m := wecDayPattern.FindStringSubmatch(strings.TrimSpace(dayText))
	if m == nil {
		return Instant{}, fmt.Errorf("%w: %q", ErrUnrecognizedDate, dayText)
	}
	month, ok := MonthFromName(m[1])
	if !ok {
		return Instant{}, fmt.Errorf("%w: month %q", ErrUnrecognizedDate, m[1])
	}
	day, _ := strconv.Atoi(m[2])

	loc, err := ParseOffset(offsetGMT)
	if err != nil {
		loc = WECZone
	}

	clock, _, _ := strings.Cut(timeText, "/")
	return instantAt(w.YearOf(month), month, day, strings.TrimSpace(clock), parseClockAny, loc)
}

// WECOffset extracts the trailing GMT offset of an ISO-8601 timestamp
// ("2025-04-18T10:00:00+02:00" → "+02:00"), or "" if it has none.
func WECOffset(isoTimestamp string) string {
	t, err := time.Parse(time.RFC3339, strings.TrimSpace(isoTimestamp))
	if err != nil {
		s := strings.TrimSpace(isoTimestamp)
		if len(s) >= 6 {
			if _, err := ParseOffset(s[len(s)-6:]); err == nil {
				return s[len(s)-6:]
			}
		}
		return ""
	}
	_, secs := t.Zone()
	if secs == 0 {
		return "00:00"
	}
	return t.Format("-07:00")
}
