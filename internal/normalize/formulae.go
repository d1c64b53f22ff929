package normalize

import (
	"fmt"
	"strings"
	"time"
)

// ParseFormulaESession reads the pulselive session fields: a "2025-01-11" date,
// a "14:05" local start and the venue's "-06:00" GMT offset. An empty offset is
// read as UTC.
func ParseFormulaESession(date, startTime, offsetGMT string) (Instant, error) {
	d, err := time.Parse(dateLayout, strings.TrimSpace(date))
	if err != nil {
		return Instant{}, fmt.Errorf("%w: %q", ErrUnrecognizedDate, date)
	}

	loc := time.UTC
	if strings.TrimSpace(offsetGMT) != "" {
		if loc, err = ParseOffset(offsetGMT); err != nil {
			return Instant{}, err
		}
	}
	return instantAt(d.Year(), d.Month(), d.Day(), startTime, ParseClock24, loc)
}
