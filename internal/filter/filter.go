// Package filter narrows a crawled series down to the sessions a user wants.
//
// Filters combine these criteria, all optional:
//   - Date range (from/to dates, inclusive)
//   - Session types (Practice, Qualifying, Race, Testing, Other)
//   - Event names (substring matching, case-insensitive)
//   - Locations (substring matching, case-insensitive)
//   - Weekends only (Saturday/Sunday sessions)
//
// Example usage:
//
//	// Race sessions in March
//	f := filter.NewFilter()
//	f.Types = []event.SessionType{event.SessionRace}
//	f.DateFrom, f.DateTo, _ = filter.ParseDateRange("March", time.Now())
//
//	// Apply filter to a series
//	filtered := f.Apply(series)
package filter

import (
	"fmt"
	"strings"
	"time"

	"github.com/pfrederiksen/racecal/internal/event"
)

// Filter represents session filtering criteria. It decodes from the
// "filter:" block of the config file.
type Filter struct {
	// Date range filtering, compared against local calendar dates
	DateFrom *time.Time `yaml:"date_from,omitempty"`
	DateTo   *time.Time `yaml:"date_to,omitempty"`

	// Session type filtering
	Types []event.SessionType `yaml:"types,omitempty"`

	// Event name filtering (case-insensitive substring match)
	Names []string `yaml:"names,omitempty"`

	// Location filtering (case-insensitive substring match)
	Locations []string `yaml:"locations,omitempty"`

	// Weekend-only filtering (Saturday/Sunday)
	WeekendsOnly bool `yaml:"weekends_only,omitempty"`
}

// NewFilter creates a new empty filter with no active criteria.
// The filter will match every session until criteria are added.
func NewFilter() *Filter {
	return &Filter{
		Types:     []event.SessionType{},
		Names:     []string{},
		Locations: []string{},
	}
}

// IsEmpty checks if the filter has any active criteria
func (f *Filter) IsEmpty() bool {
	return f.DateFrom == nil &&
		f.DateTo == nil &&
		len(f.Types) == 0 &&
		len(f.Names) == 0 &&
		len(f.Locations) == 0 &&
		!f.WeekendsOnly
}

// hasSessionCriteria reports whether any criterion looks at individual sessions
func (f *Filter) hasSessionCriteria() bool {
	return f.DateFrom != nil || f.DateTo != nil || len(f.Types) > 0 || f.WeekendsOnly
}

// MatchesEvent checks the event-level criteria: name, location and, when the
// event has dates, that its range overlaps the date window.
func (f *Filter) MatchesEvent(evt *event.Event) bool {
	if len(f.Names) > 0 && !containsAny(evt.Name, f.Names) {
		return false
	}
	if len(f.Locations) > 0 && !containsAny(evt.Location, f.Locations) {
		return false
	}

	start := parseDate(evt.StartDate)
	end := parseDate(evt.EndDate)
	if start != nil && end == nil {
		end = start
	}
	if f.DateTo != nil && start != nil && start.After(*f.DateTo) {
		return false
	}
	if f.DateFrom != nil && end != nil && end.Before(*f.DateFrom) {
		return false
	}
	return true
}

// MatchesSession checks the session-level criteria: type, date window and weekend
func (f *Filter) MatchesSession(s *event.Session) bool {
	if len(f.Types) > 0 {
		matched := false
		for _, t := range f.Types {
			if s.Type == t {
				matched = true
				break
			}
		}
		if !matched {
			return false
		}
	}

	date := parseDate(s.Date)
	if date == nil {
		return f.DateFrom == nil && f.DateTo == nil && !f.WeekendsOnly
	}
	if f.DateFrom != nil && date.Before(*f.DateFrom) {
		return false
	}
	if f.DateTo != nil && date.After(*f.DateTo) {
		return false
	}
	if f.WeekendsOnly {
		weekday := date.Weekday()
		if weekday != time.Saturday && weekday != time.Sunday {
			return false
		}
	}
	return true
}

// Apply returns a copy of series holding only matching events, each with only
// its matching sessions. An event whose sessions are all filtered out is
// dropped; an event that never had sessions is kept when it matches.
// If the filter is empty, returns the original series unchanged.
func (f *Filter) Apply(series *event.Series) *event.Series {
	if f.IsEmpty() {
		return series
	}

	out := *series
	out.Events = make([]*event.Event, 0, len(series.Events))
	for _, evt := range series.Events {
		if !f.MatchesEvent(evt) {
			continue
		}
		if !f.hasSessionCriteria() || len(evt.Sessions) == 0 {
			if len(evt.Sessions) == 0 && len(f.Types) > 0 {
				continue
			}
			out.Events = append(out.Events, evt)
			continue
		}

		kept := *evt
		kept.Sessions = make([]*event.Session, 0, len(evt.Sessions))
		for _, s := range evt.Sessions {
			if f.MatchesSession(s) {
				kept.Sessions = append(kept.Sessions, s)
			}
		}
		if len(kept.Sessions) > 0 {
			out.Events = append(out.Events, &kept)
		}
	}
	return &out
}

// String returns a human-readable description of the active filter criteria.
// Format: "From: Mar 1, 2025 | To: Mar 31, 2025 | Types: Race | Weekends only"
func (f *Filter) String() string {
	if f.IsEmpty() {
		return "No active filters"
	}

	var parts []string

	if f.DateFrom != nil {
		parts = append(parts, fmt.Sprintf("From: %s", f.DateFrom.Format("Jan 2, 2006")))
	}

	if f.DateTo != nil {
		parts = append(parts, fmt.Sprintf("To: %s", f.DateTo.Format("Jan 2, 2006")))
	}

	if len(f.Types) > 0 {
		types := make([]string, len(f.Types))
		for i, t := range f.Types {
			types[i] = string(t)
		}
		parts = append(parts, fmt.Sprintf("Types: %s", strings.Join(types, ", ")))
	}

	if len(f.Names) > 0 {
		parts = append(parts, fmt.Sprintf("Events: %s", strings.Join(f.Names, ", ")))
	}

	if len(f.Locations) > 0 {
		parts = append(parts, fmt.Sprintf("Locations: %s", strings.Join(f.Locations, ", ")))
	}

	if f.WeekendsOnly {
		parts = append(parts, "Weekends only")
	}

	return strings.Join(parts, " | ")
}

// Clone creates a deep copy of the filter. A nil filter clones to an empty one.
func (f *Filter) Clone() *Filter {
	if f == nil {
		return NewFilter()
	}
	clone := &Filter{WeekendsOnly: f.WeekendsOnly}

	if f.DateFrom != nil {
		df := *f.DateFrom
		clone.DateFrom = &df
	}

	if f.DateTo != nil {
		dt := *f.DateTo
		clone.DateTo = &dt
	}

	clone.Types = append([]event.SessionType{}, f.Types...)
	clone.Names = append([]string{}, f.Names...)
	clone.Locations = append([]string{}, f.Locations...)

	return clone
}

func containsAny(s string, needles []string) bool {
	lower := strings.ToLower(s)
	for _, n := range needles {
		if strings.Contains(lower, strings.ToLower(n)) {
			return true
		}
	}
	return false
}

// parseDate reads a YYYY-MM-DD date, returning nil when it is empty or invalid
func parseDate(s string) *time.Time {
	t, err := time.Parse(event.DateLayout, strings.TrimSpace(s))
	if err != nil {
		return nil
	}
	return &t
}
