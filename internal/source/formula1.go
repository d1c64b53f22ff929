package source

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/pfrederiksen/racecal/internal/classify"
	"github.com/pfrederiksen/racecal/internal/event"
	"github.com/pfrederiksen/racecal/internal/logger"
	"github.com/pfrederiksen/racecal/internal/normalize"
	"github.com/pfrederiksen/racecal/internal/pipeline"
)

const (
	formula1Base        = "https://www.formula1.com"
	formula1CalendarURL = formula1Base + "/en/racing/%d"
	formula1NameMarker  = "FORMULA 1"
)

// Formula1 reads the formula1.com season pages
type Formula1 struct{}

// NewFormula1 creates the formula1 source
func NewFormula1() *Formula1 {
	return &Formula1{}
}

func (Formula1) Slug() string { return "formula1" }

func (Formula1) Series() *event.Series {
	return event.NewSeries(
		"Formula 1",
		"Open-Wheel",
		"https://www.formula1.com/",
		"https://www.formula1.com/assets/home/_next/static/media/f1-logo.43a01c6b.svg",
	)
}

// formula1Card is one race card of a season page
type formula1Card struct {
	URL       string
	Name      string
	Location  string
	DateRange string
}

// parseFormula1Calendar extracts the race cards of a season page
func parseFormula1Calendar(body string) ([]formula1Card, error) {
	doc, err := newDocument(body)
	if err != nil {
		return nil, err
	}

	var cards []formula1Card
	doc.Find("div.grid > a").Each(func(i int, card *goquery.Selection) {
		href, _ := card.Attr("href")
		cards = append(cards, formula1Card{
			URL:       absoluteURL(formula1Base, href),
			Name:      formula1EventName(card.Find("div > div > span").Eq(2).Text()),
			Location:  strings.TrimSpace(card.Find("div > div p").First().Text()),
			DateRange: formula1DateRange(card),
		})
	})
	return cards, nil
}

// formula1EventName keeps the text after the "FORMULA 1" sponsor prefix
func formula1EventName(text string) string {
	if _, after, found := strings.Cut(text, formula1NameMarker); found {
		return cleanText(after)
	}
	return cleanText(text)
}

// formula1DateRange tries the nodes the range has been rendered in, in turn
func formula1DateRange(card *goquery.Selection) string {
	candidates := []string{
		card.Find("div > div > div > span").Eq(0).Text(),
		card.Find("div > div > span > span > span").Text(),
		card.Find("div > div > div > span").Eq(3).Text(),
	}
	for _, text := range candidates {
		text = cleanText(text)
		if normalize.IsF1Range(text) {
			return text
		}
	}
	return ""
}

// parseFormula1Sessions extracts the timetable of an event page
func parseFormula1Sessions(body string) ([]rawSession, error) {
	doc, err := newDocument(body)
	if err != nil {
		return nil, err
	}

	var sessions []rawSession
	doc.Find("ul.grid").First().Find("li").Each(func(i int, row *goquery.Selection) {
		spans := row.ChildrenFiltered("span")
		sessions = append(sessions, rawSession{
			Day:   strings.TrimSpace(spans.First().Text()),
			Time:  strings.TrimSpace(row.Find("time").First().Text()),
			Label: strings.TrimSpace(spans.Eq(2).Find("span").First().Text()),
		})
	})
	return sessions, nil
}

func (f Formula1) Crawl(c *pipeline.Crawl) {
	for _, year := range c.Years() {
		if c.Cancelled() {
			return
		}
		body, ok := c.FetchCalendar(fmt.Sprintf(formula1CalendarURL, year), year)
		if !ok {
			continue
		}
		cards, err := parseFormula1Calendar(body)
		if err != nil {
			c.Logger().Warn("skipping calendar page", logger.Fields{"year": year, "error": err.Error()})
			continue
		}
		for _, card := range cards {
			f.crawlEvent(c, card, year)
		}
	}
}

func (Formula1) crawlEvent(c *pipeline.Crawl, card formula1Card, year int) {
	if card.URL == "" || !c.Visit(card.URL) {
		return
	}
	body, ok := c.FetchEvent(card.URL)
	if !ok {
		return
	}
	rows, err := parseFormula1Sessions(body)
	if err != nil {
		c.Logger().Warn("skipping event", logger.Fields{"url": card.URL, "error": err.Error()})
		return
	}

	evt := event.NewEvent(card.Name, card.URL, card.Location)
	span := normalize.ParseF1Range(card.DateRange)
	evt.StartDate, evt.EndDate = span.Dates(year)
	window := span.Window(year)
	for _, row := range rows {
		inst, err := normalize.ParseF1Session(row.Day, row.Time, window)
		addSession(c, evt, row.Label, classify.Formula1, inst, err)
	}
	c.Add(evt)
}
