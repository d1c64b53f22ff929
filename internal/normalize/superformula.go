package normalize

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// SuperFormulaZone is the zone superformula.net timetables are published in
var SuperFormulaZone = Zone("Asia/Tokyo")

const rangeDash = `[～〜~\-–]`

var (
	// "3月8日(土)～9日(日)", "5月31日～6月1日"
	sfKanjiRange = regexp.MustCompile(`(?:^|\D)(\d{1,2})月(\d{1,2})日(?:\s*[（(][^)）]*[)）])?\s*` + rangeDash + `\s*(?:(\d{1,2})月)?(\d{1,2})日`)
	sfKanjiDay   = regexp.MustCompile(`(?:^|\D)(\d{1,2})月(\d{1,2})日`)
	// "3.8-9", "3.8(土)-3.9(日)", "5.31～6.1"
	sfDotRange = regexp.MustCompile(`(?:^|\D)(\d{1,2})\.(\d{1,2})(?:\s*[（(][^)）]*[)）])?\s*` + rangeDash + `\s*(?:(\d{1,2})\.)?(\d{1,2})(?:\D|$)`)
	// timetable captions "3.8(土)" or "3月8日(土)"
	sfCaption = regexp.MustCompile(`^(\d{1,2})(?:\.|月)(\d{1,2})`)
)

// ParseSuperFormulaRange reads the Japanese or dotted month.day ranges used on
// superformula.net race cards. A single month applies to both ends.
func ParseSuperFormulaRange(text string) Span {
	text = strings.TrimSpace(text)
	for _, pattern := range []*regexp.Regexp{sfKanjiRange, sfDotRange} {
		if m := pattern.FindStringSubmatch(text); m != nil {
			return sfSpan(m[1], m[2], m[3], m[4])
		}
	}
	if m := sfKanjiDay.FindStringSubmatch(text); m != nil {
		return sfSpan(m[1], m[2], "", m[2])
	}
	return Span{}
}

func sfSpan(startMonth, startDay, endMonth, endDay string) Span {
	sm, _ := strconv.Atoi(startMonth)
	em := sm
	if endMonth != "" {
		em, _ = strconv.Atoi(endMonth)
	}
	return Span{
		Start: monthDay(time.Month(sm), startDay),
		End:   monthDay(time.Month(em), endDay),
	}
}

// ParseSuperFormulaCaption reads a timetable caption into a "MM-DD" month-day
func ParseSuperFormulaCaption(caption string) string {
	m := sfCaption.FindStringSubmatch(strings.TrimSpace(caption))
	if m == nil {
		return ""
	}
	month, _ := strconv.Atoi(m[1])
	return monthDay(time.Month(month), m[2])
}

// ParseSuperFormulaSession reads a timetable caption ("3.8(土)") and a time
// cell ("9:00-10:30") in SuperFormulaZone. The year comes from w.
func ParseSuperFormulaSession(caption, timeText string, w Window) (Instant, error) {
	md := ParseSuperFormulaCaption(caption)
	if md == "" {
		return Instant{}, fmt.Errorf("%w: %q", ErrUnrecognizedDate, caption)
	}
	month, _ := strconv.Atoi(md[:2])
	day, _ := strconv.Atoi(md[3:])
	return instantAt(w.YearOf(time.Month(month)), time.Month(month), day, FirstClock(timeText), ParseClock24, SuperFormulaZone)
}
