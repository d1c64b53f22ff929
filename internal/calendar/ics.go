// Package calendar exports a crawled series as an iCalendar feed.
package calendar

import (
	"fmt"
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"

	"github.com/pfrederiksen/racecal/internal/event"
)

const (
	ProductID = "-//racecal//racecal//EN"
	uidDomain = "racecal"
)

// sessionLength is the block a session occupies in the calendar. Publishers
// give start times only.
var sessionLength = map[event.SessionType]time.Duration{
	event.SessionPractice:   time.Hour,
	event.SessionQualifying: time.Hour,
	event.SessionRace:       2 * time.Hour,
	event.SessionTesting:    8 * time.Hour,
	event.SessionOther:      time.Hour,
}

// GenerateICS renders every session of series as a VEVENT. Sessions with an
// unannounced time become tentative all-day entries on their date; an event
// without sessions becomes one all-day entry over its date range.
func GenerateICS(series *event.Series, now time.Time) string {
	cal := ics.NewCalendar()
	cal.SetProductId(ProductID)
	cal.SetMethod(ics.MethodPublish)
	cal.SetXWRCalName(series.Name)

	for _, evt := range series.Events {
		if len(evt.Sessions) == 0 {
			addEventRange(cal, series, evt, now)
			continue
		}
		for _, s := range evt.Sessions {
			addSession(cal, series, evt, s, now)
		}
	}
	return cal.Serialize()
}

func addSession(cal *ics.Calendar, series *event.Series, evt *event.Event, s *event.Session, now time.Time) {
	ve := cal.AddEvent(fmt.Sprintf("%s@%s", event.GenerateID(evt.URL, s), uidDomain))
	ve.SetDtStampTime(now.UTC())
	ve.SetSummary(fmt.Sprintf("%s - %s - %s", series.Name, evt.Name, s.Name))
	ve.SetDescription(description(series, evt, s))
	ve.AddProperty(ics.ComponentPropertyCategories, string(s.Type))
	if evt.Location != "" {
		ve.SetLocation(evt.Location)
	}
	if evt.URL != "" {
		ve.SetURL(evt.URL)
	}

	if s.TBD {
		day, err := time.Parse(event.DateLayout, s.Date)
		if err != nil {
			day = time.Date(s.Start.Year(), s.Start.Month(), s.Start.Day(), 0, 0, 0, 0, time.UTC)
		}
		ve.SetAllDayStartAt(day)
		ve.SetAllDayEndAt(day.AddDate(0, 0, 1))
		ve.SetStatus(ics.ObjectStatusTentative)
		return
	}

	length, ok := sessionLength[s.Type]
	if !ok {
		length = time.Hour
	}
	ve.SetStartAt(s.Start.UTC())
	ve.SetEndAt(s.Start.UTC().Add(length))
	ve.SetStatus(ics.ObjectStatusConfirmed)
}

func addEventRange(cal *ics.Calendar, series *event.Series, evt *event.Event, now time.Time) {
	start, err := time.Parse(event.DateLayout, evt.StartDate)
	if err != nil {
		return
	}
	end, err := time.Parse(event.DateLayout, evt.EndDate)
	if err != nil || end.Before(start) {
		end = start
	}

	ve := cal.AddEvent(fmt.Sprintf("%s@%s", event.GenerateID(evt.URL, &event.Session{Name: evt.Name, TBD: true}), uidDomain))
	ve.SetDtStampTime(now.UTC())
	ve.SetSummary(fmt.Sprintf("%s - %s", series.Name, evt.Name))
	ve.SetAllDayStartAt(start)
	ve.SetAllDayEndAt(end.AddDate(0, 0, 1))
	ve.SetStatus(ics.ObjectStatusTentative)
	if evt.Location != "" {
		ve.SetLocation(evt.Location)
	}
	if evt.URL != "" {
		ve.SetURL(evt.URL)
	}
}

func description(series *event.Series, evt *event.Event, s *event.Session) string {
	lines := []string{
		fmt.Sprintf("%s: %s", s.Type, s.Name),
		fmt.Sprintf("Event: %s", evt.Name),
	}
	if s.TBD {
		lines = append(lines, "Time: TBD")
	}
	if evt.StartDate != "" {
		lines = append(lines, fmt.Sprintf("Dates: %s to %s", evt.StartDate, evt.EndDate))
	}
	lines = append(lines, series.SeriesURL)
	return strings.Join(lines, "\n")
}
