package source

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/pfrederiksen/racecal/internal/classify"
	"github.com/pfrederiksen/racecal/internal/event"
	"github.com/pfrederiksen/racecal/internal/logger"
	"github.com/pfrederiksen/racecal/internal/normalize"
	"github.com/pfrederiksen/racecal/internal/pipeline"
)

const (
	formulaEAPI             = "https://api.formula-e.pulselive.com/formula-e/v1"
	formulaEChampionships   = formulaEAPI + "/championships?statuses=Past,Present"
	formulaERacesURL        = formulaEAPI + "/races?championshipId=%s"
	formulaESessionsURL     = formulaEAPI + "/races/%s/sessions?groupQualifyings=true&onlyActualEvents=true"
	formulaEEventBase       = "https://www.fiaformulae.com/en"
	formulaESeasonsToFollow = 3
)

var (
	errInvalidJSON = errors.New("invalid JSON")

	// "2025 Mexico City E-Prix" → "Mexico City E-Prix"
	formulaEYearPrefix = regexp.MustCompile(`^\d{4}\s+`)
)

// FormulaE reads the Formula E results API
type FormulaE struct{}

// NewFormulaE creates the formula-e source
func NewFormulaE() *FormulaE {
	return &FormulaE{}
}

func (FormulaE) Slug() string { return "formula-e" }

func (FormulaE) Series() *event.Series {
	return event.NewSeries(
		"Formula E",
		"Open-Wheel",
		"https://www.fiaformulae.com/",
		"https://www.fiaformulae.com/resources/v4.35.17/i/elements/formula-e-logo-championship.svg",
	)
}

// formulaERace is one entry of a championship's race list
type formulaERace struct {
	ID       string
	Name     string
	City     string
	Date     string
	RacePath string
}

func parseJSON(body string) (gjson.Result, error) {
	if !gjson.Valid(body) {
		return gjson.Result{}, errInvalidJSON
	}
	return gjson.Parse(body), nil
}

// parseFormulaEChampionships returns the ids of the most recent championships,
// oldest first
func parseFormulaEChampionships(body string, keep int) ([]string, error) {
	doc, err := parseJSON(body)
	if err != nil {
		return nil, err
	}
	var ids []string
	for _, id := range doc.Get("championships.#.id").Array() {
		if id.String() != "" {
			ids = append(ids, id.String())
		}
	}
	if len(ids) > keep {
		ids = ids[len(ids)-keep:]
	}
	return ids, nil
}

func parseFormulaERaces(body string) ([]formulaERace, error) {
	doc, err := parseJSON(body)
	if err != nil {
		return nil, err
	}
	var races []formulaERace
	doc.Get("races").ForEach(func(_, race gjson.Result) bool {
		races = append(races, formulaERace{
			ID:       race.Get("id").String(),
			Name:     formulaEYearPrefix.ReplaceAllString(strings.TrimSpace(race.Get("name").String()), ""),
			City:     strings.TrimSpace(race.Get("city").String()),
			Date:     calendarDate(race.Get("date").String()),
			RacePath: strings.TrimSpace(race.Get("metadata.racePath").String()),
		})
		return true
	})
	return races, nil
}

// calendarDate keeps the date part of "2025-01-11" or "2025-01-11T00:00:00Z"
func calendarDate(s string) string {
	date, _, _ := strings.Cut(strings.TrimSpace(s), "T")
	return date
}

// formulaESession is one entry of a race's session list
type formulaESession struct {
	Name      string
	Date      string
	StartTime string
	OffsetGMT string
}

func parseFormulaESessions(body string) ([]formulaESession, error) {
	doc, err := parseJSON(body)
	if err != nil {
		return nil, err
	}
	var sessions []formulaESession
	doc.Get("sessions").ForEach(func(_, s gjson.Result) bool {
		sessions = append(sessions, formulaESession{
			Name:      strings.TrimSpace(s.Get("sessionName").String()),
			Date:      strings.TrimSpace(s.Get("sessionDate").String()),
			StartTime: strings.TrimSpace(s.Get("startTime").String()),
			OffsetGMT: strings.TrimSpace(s.Get("offsetGMT").String()),
		})
		return true
	})
	return sessions, nil
}

func (f FormulaE) Crawl(c *pipeline.Crawl) {
	body, ok := c.FetchCalendar(formulaEChampionships, "championships")
	if !ok {
		return
	}
	championships, err := parseFormulaEChampionships(body, formulaESeasonsToFollow)
	if err != nil {
		c.Logger().Warn("skipping championship list", logger.Fields{"error": err.Error()})
		return
	}

	for _, id := range championships {
		if c.Cancelled() {
			return
		}
		body, ok := c.FetchCalendar(fmt.Sprintf(formulaERacesURL, id), id)
		if !ok {
			continue
		}
		races, err := parseFormulaERaces(body)
		if err != nil {
			c.Logger().Warn("skipping championship", logger.Fields{"championship": id, "error": err.Error()})
			continue
		}
		for _, race := range races {
			f.crawlRace(c, race)
		}
	}
}

func (FormulaE) crawlRace(c *pipeline.Crawl, race formulaERace) {
	if race.RacePath == "" || race.ID == "" {
		c.Logger().Debug("race without page", logger.Fields{"race": race.Name})
		return
	}
	url := formulaEEventBase + race.RacePath
	if !c.Visit(url) {
		return
	}
	body, ok := c.FetchEvent(fmt.Sprintf(formulaESessionsURL, race.ID))
	if !ok {
		return
	}
	rows, err := parseFormulaESessions(body)
	if err != nil {
		c.Logger().Warn("skipping event", logger.Fields{"url": url, "error": err.Error()})
		return
	}

	evt := event.NewEvent(race.Name, url, race.City)
	for _, row := range rows {
		inst, err := normalize.ParseFormulaESession(row.Date, row.StartTime, row.OffsetGMT)
		addSession(c, evt, row.Name, classify.FormulaE, inst, err)
	}
	evt.FillDatesFromSessions(race.Date)
	c.Add(evt)
}
