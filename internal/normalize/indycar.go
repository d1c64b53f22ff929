package normalize

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// IndyCarZone is the zone indycar.com publishes session times in (ET)
var IndyCarZone = Zone("America/New_York")

var (
	// "February 27 - March 1", "March 6 - 7", "May 25", optional trailing year
	indyRangePattern = regexp.MustCompile(`^([A-Za-z]+)\.?\s+(\d{1,2})(?:\s*[-–]\s*(?:([A-Za-z]+)\.?\s+)?(\d{1,2}))?(?:,?\s+\d{4})?$`)
	// "Saturday, March 1"
	indyHeaderPattern = regexp.MustCompile(`^(?:[A-Za-z]+,\s*)?([A-Za-z]+)\.?\s+(\d{1,2})`)
	indyZoneSuffix    = regexp.MustCompile(`\s*\b(ET|EDT|EST)\b\s*$`)
)

// ParseIndyCarRange reads the month-first ranges on indycar.com event pages
func ParseIndyCarRange(text string) Span {
	m := indyRangePattern.FindStringSubmatch(strings.TrimSpace(text))
	if m == nil {
		return Span{}
	}
	startMonth, _ := MonthFromName(m[1])
	start := monthDay(startMonth, m[2])

	if m[4] == "" {
		return Span{Start: start, End: start}
	}
	endMonth := startMonth
	if m[3] != "" {
		endMonth, _ = MonthFromName(m[3])
	}
	return Span{Start: start, End: monthDay(endMonth, m[4])}
}

// ParseIndyCarSession reads a schedule day header ("Saturday, March 1") and a
// 12-hour time cell ("3:30 PM ET") in IndyCarZone. The year comes from w.
func ParseIndyCarSession(dayHeader, timeText string, w Window) (Instant, error) {
	m := indyHeaderPattern.FindStringSubmatch(strings.TrimSpace(dayHeader))
	if m == nil {
		return Instant{}, fmt.Errorf("%w: %q", ErrUnrecognizedDate, dayHeader)
	}
	month, ok := MonthFromName(m[1])
	if !ok {
		return Instant{}, fmt.Errorf("%w: month %q", ErrUnrecognizedDate, m[1])
	}
	day, _ := strconv.Atoi(m[2])

	clock := indyZoneSuffix.ReplaceAllString(strings.TrimSpace(timeText), "")
	return instantAt(w.YearOf(month), month, day, FirstClock(clock), ParseClock12, IndyCarZone)
}
