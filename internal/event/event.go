package event

import (
	"crypto/sha1"
	"encoding/json"
	"fmt"
	"time"
)

// SessionType classifies a session within a race weekend
type SessionType string

const (
	SessionPractice   SessionType = "Practice"
	SessionQualifying SessionType = "Qualifying"
	SessionRace       SessionType = "Race"
	SessionTesting    SessionType = "Testing"
	SessionOther      SessionType = "Other"
)

// SessionTypes lists every valid SessionType in display order
var SessionTypes = []SessionType{SessionPractice, SessionQualifying, SessionRace, SessionTesting, SessionOther}

// Valid reports whether t is one of the enumerated session types
func (t SessionType) Valid() bool {
	for _, s := range SessionTypes {
		if s == t {
			return true
		}
	}
	return false
}

const (
	// TimeTBD is the wire value for a session whose date is known but whose
	// time of day has not been announced.
	TimeTBD = "TBD"

	// InstantLayout is the UTC ISO-8601 layout used for sessionDatetime.
	InstantLayout = "2006-01-02T15:04:05.000Z"

	// DateLayout is the calendar date layout for event start/end dates.
	DateLayout = "2006-01-02"
)

// Series is one publisher's championship and its events
type Series struct {
	Name      string   `json:"name"`
	Genre     string   `json:"genre"`
	SeriesURL string   `json:"seriesUrl"`
	LogoURL   string   `json:"logoUrl"`
	Events    []*Event `json:"events"`
}

// Event is a race weekend. StartDate and EndDate are YYYY-MM-DD or empty when
// the source's date range could not be read.
type Event struct {
	Name      string     `json:"eventName"`
	URL       string     `json:"eventUrl"`
	StartDate string     `json:"eventStartDate"`
	EndDate   string     `json:"eventEndDate"`
	Location  string     `json:"location"`
	Sessions  []*Session `json:"sessions"`
}

// Session is a single on-track session.
// When TBD is set, Start holds local midnight of the session's date.
type Session struct {
	Start time.Time
	TBD   bool
	Date  string // local calendar date as published, YYYY-MM-DD
	Name  string
	Type  SessionType
}

type sessionJSON struct {
	Datetime string      `json:"sessionDatetime"`
	Name     string      `json:"sessionName"`
	Type     SessionType `json:"sessionType"`
}

// Datetime returns the wire representation of the session start
func (s *Session) Datetime() string {
	if s.TBD {
		return TimeTBD
	}
	return s.Start.UTC().Format(InstantLayout)
}

// MarshalJSON implements json.Marshaler
func (s *Session) MarshalJSON() ([]byte, error) {
	return json.Marshal(sessionJSON{
		Datetime: s.Datetime(),
		Name:     s.Name,
		Type:     s.Type,
	})
}

// MarshalJSON keeps an empty event list as [] on the wire
func (s *Series) MarshalJSON() ([]byte, error) {
	type plain Series
	out := plain(*s)
	if out.Events == nil {
		out.Events = []*Event{}
	}
	return json.Marshal(out)
}

// MarshalJSON keeps an empty session list as [] on the wire
func (e *Event) MarshalJSON() ([]byte, error) {
	type plain Event
	out := plain(*e)
	if out.Sessions == nil {
		out.Sessions = []*Session{}
	}
	return json.Marshal(out)
}

// NewSeries creates a Series with an empty event list
func NewSeries(name, genre, seriesURL, logoURL string) *Series {
	return &Series{
		Name:      name,
		Genre:     genre,
		SeriesURL: seriesURL,
		LogoURL:   logoURL,
		Events:    make([]*Event, 0),
	}
}

// NewEvent creates an Event with an empty session list
func NewEvent(name, url, location string) *Event {
	return &Event{
		Name:     name,
		URL:      url,
		Location: location,
		Sessions: make([]*Session, 0),
	}
}

// AddSession appends a session, keeping discovery order
func (e *Event) AddSession(s *Session) {
	e.Sessions = append(e.Sessions, s)
}

// FillDatesFromSessions sets StartDate and EndDate to the earliest and latest
// session date, which for a chronological timetable are the first and last
// session. With no dated sessions both fall back to the given date.
func (e *Event) FillDatesFromSessions(fallback string) {
	start, end := "", ""
	for _, s := range e.Sessions {
		if s.Date == "" {
			continue
		}
		if start == "" || s.Date < start {
			start = s.Date
		}
		if end == "" || s.Date > end {
			end = s.Date
		}
	}
	if start == "" {
		start, end = fallback, fallback
	}
	e.StartDate = start
	e.EndDate = end
}

// GenerateID creates a deterministic ID for a session based on its event URL,
// name and start. Used as a stable UID in calendar exports.
func GenerateID(eventURL string, s *Session) string {
	h := sha1.New()
	h.Write([]byte(eventURL + "|" + s.Name + "|" + s.Datetime()))
	return fmt.Sprintf("%x", h.Sum(nil))
}
