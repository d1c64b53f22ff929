package normalize

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	clock24Pattern  = regexp.MustCompile(`^(\d{1,2})[:：](\d{2})(?::\d{2})?$`)
	clock12Pattern  = regexp.MustCompile(`^(\d{1,2}):(\d{2})\s*([AP])M$`)
	meridiemSuffix  = regexp.MustCompile(`(?i)\s*([ap])\.?m\.?$`)
	offsetPattern   = regexp.MustCompile(`^([+-])?(\d{1,2}):?(\d{2})$`)
	clockRangeSplit = regexp.MustCompile(`\s*[-–~～]\s*`)
)

// ParseClock24 reads "9:00", "13:30" or "13:30:00"
func ParseClock24(s string) (int, int, error) {
	m := clock24Pattern.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return 0, 0, fmt.Errorf("%w: %q", ErrBadClock, s)
	}
	hour, _ := strconv.Atoi(m[1])
	minute, _ := strconv.Atoi(m[2])
	if hour > 23 || minute > 59 {
		return 0, 0, fmt.Errorf("%w: %q", ErrBadClock, s)
	}
	return hour, minute, nil
}

// Canonical12 rewrites a 12-hour clock ("3:30PM", "03:30 pm", "3:30 p.m.") into
// the canonical "03:30 PM" shape.
func Canonical12(s string) (string, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	s = strings.ReplaceAll(s, ".", "")
	m := clock12Pattern.FindStringSubmatch(s)
	if m == nil {
		return "", fmt.Errorf("%w: %q", ErrBadClock, s)
	}
	hour, _ := strconv.Atoi(m[1])
	minute, _ := strconv.Atoi(m[2])
	if hour < 1 || hour > 12 || minute > 59 {
		return "", fmt.Errorf("%w: %q", ErrBadClock, s)
	}
	return fmt.Sprintf("%02d:%s %sM", hour, m[2], m[3]), nil
}

// ParseClock12 reads a 12-hour clock. 12 AM is hour 0 and PM hours other than
// 12 add 12.
func ParseClock12(s string) (int, int, error) {
	canonical, err := Canonical12(s)
	if err != nil {
		return 0, 0, err
	}
	t, err := time.Parse("03:04 PM", canonical)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: %q", ErrBadClock, s)
	}
	return t.Hour(), t.Minute(), nil
}

// parseClockAny accepts either a 12-hour or a 24-hour clock
func parseClockAny(s string) (int, int, error) {
	if meridiemSuffix.MatchString(strings.TrimSpace(s)) {
		return ParseClock12(s)
	}
	return ParseClock24(s)
}

// FirstClock returns the start of a clock range ("9:00-10:30" → "9:00").
// A meridiem that only appears after the end ("3:30 - 4:30 PM") is carried
// over to the start.
func FirstClock(s string) string {
	parts := clockRangeSplit.Split(strings.TrimSpace(s), -1)
	first := strings.TrimSpace(parts[0])
	if len(parts) > 1 && !meridiemSuffix.MatchString(first) {
		if m := meridiemSuffix.FindStringSubmatch(parts[len(parts)-1]); m != nil {
			first += " " + strings.ToUpper(m[1]) + "M"
		}
	}
	return first
}

// ParseOffset reads a GMT offset ("-06:00", "+0100", "05:30"). A zero offset
// resolves to time.UTC rather than a "+00:00" fixed zone.
func ParseOffset(s string) (*time.Location, error) {
	s = strings.TrimSpace(s)
	if strings.EqualFold(s, "Z") {
		return time.UTC, nil
	}
	m := offsetPattern.FindStringSubmatch(s)
	if m == nil {
		return nil, fmt.Errorf("%w: %q", ErrBadOffset, s)
	}
	hours, _ := strconv.Atoi(m[2])
	minutes, _ := strconv.Atoi(m[3])
	if hours > 14 || minutes > 59 {
		return nil, fmt.Errorf("%w: %q", ErrBadOffset, s)
	}
	seconds := hours*3600 + minutes*60
	if seconds == 0 {
		return time.UTC, nil
	}
	sign := "+"
	if m[1] == "-" {
		sign = "-"
		seconds = -seconds
	}
	return time.FixedZone(fmt.Sprintf("UTC%s%02d:%02d", sign, hours, minutes), seconds), nil
}
