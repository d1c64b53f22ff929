package source

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/pfrederiksen/racecal/internal/classify"
	"github.com/pfrederiksen/racecal/internal/event"
	"github.com/pfrederiksen/racecal/internal/logger"
	"github.com/pfrederiksen/racecal/internal/normalize"
	"github.com/pfrederiksen/racecal/internal/pipeline"
)

const (
	superFormulaBase        = "https://superformula.net"
	superFormulaCalendarURL = superFormulaBase + "/sf3/race_taxonomy/%d/"
)

var superFormulaRound = regexp.MustCompile(`\d+`)

// SuperFormula reads the superformula.net race lists and timetables
type SuperFormula struct{}

// NewSuperFormula creates the super-formula source
func NewSuperFormula() *SuperFormula {
	return &SuperFormula{}
}

func (SuperFormula) Slug() string { return "super-formula" }

func (SuperFormula) Series() *event.Series {
	return event.NewSeries(
		"Super Formula",
		"Open-Wheel",
		"https://superformula.net/",
		"https://superformula.net/sf3/common/img/logo_sf3.svg",
	)
}

// superFormulaCard is one entry of a season's race list
type superFormulaCard struct {
	URL       string
	Name      string
	Location  string
	DateRange string
}

// parseSuperFormulaCalendar extracts the race list of a season page. Cards
// without a name are titled after their round and venue.
func parseSuperFormulaCalendar(body string) ([]superFormulaCard, error) {
	doc, err := newDocument(body)
	if err != nil {
		return nil, err
	}

	var cards []superFormulaCard
	doc.Find("ul.common_race_list01 > li").Each(func(i int, card *goquery.Selection) {
		href, _ := card.Find("a").Attr("href")
		location := cleanText(card.Find(".en").Text())
		name := cleanText(card.Find(".name").Text())
		if name == "" {
			name = strings.TrimSpace(fmt.Sprintf("Round %s %s", superFormulaRoundNumber(card, i), location))
		}
		cards = append(cards, superFormulaCard{
			URL:       absoluteURL(superFormulaBase, href),
			Name:      name,
			Location:  location,
			DateRange: cleanText(card.Find(".date").Text()),
		})
	})
	return cards, nil
}

// superFormulaRoundNumber reads the card's round label ("Rd.3"), falling back
// to its position in the list
func superFormulaRoundNumber(card *goquery.Selection, index int) string {
	if round := superFormulaRound.FindString(card.Find(".round").Text()); round != "" {
		return round
	}
	return strconv.Itoa(index + 1)
}

// parseSuperFormulaTimetable extracts the timetable of an event page. Each
// table is one day and its caption ("3.8(土)") is the day of every row.
func parseSuperFormulaTimetable(body string) ([]rawSession, error) {
	doc, err := newDocument(body)
	if err != nil {
		return nil, err
	}

	var sessions []rawSession
	doc.Find("div.table_time_schedule > div > table").Each(func(i int, table *goquery.Selection) {
		caption := cleanText(table.Find("caption").Text())
		table.Find("tbody > tr").Each(func(j int, row *goquery.Selection) {
			sessions = append(sessions, rawSession{
				Day:   caption,
				Time:  cleanText(row.Find("th").Text()),
				Label: cleanText(row.Find("td").Text()),
			})
		})
	})
	return sessions, nil
}

func (s SuperFormula) Crawl(c *pipeline.Crawl) {
	for _, year := range c.Years() {
		if c.Cancelled() {
			return
		}
		body, ok := c.FetchCalendar(fmt.Sprintf(superFormulaCalendarURL, year), year)
		if !ok {
			continue
		}
		cards, err := parseSuperFormulaCalendar(body)
		if err != nil {
			c.Logger().Warn("skipping calendar page", logger.Fields{"year": year, "error": err.Error()})
			continue
		}
		for _, card := range cards {
			s.crawlEvent(c, card, year)
		}
	}
}

func (SuperFormula) crawlEvent(c *pipeline.Crawl, card superFormulaCard, year int) {
	if card.URL == "" || !c.Visit(card.URL) {
		return
	}
	body, ok := c.FetchEvent(card.URL)
	if !ok {
		return
	}
	rows, err := parseSuperFormulaTimetable(body)
	if err != nil {
		c.Logger().Warn("skipping event", logger.Fields{"url": card.URL, "error": err.Error()})
		return
	}

	evt := event.NewEvent(card.Name, card.URL, card.Location)
	span := normalize.ParseSuperFormulaRange(card.DateRange)
	if span.Start == "" && span.End == "" && len(rows) > 0 {
		span = normalize.Span{
			Start: normalize.ParseSuperFormulaCaption(rows[0].Day),
			End:   normalize.ParseSuperFormulaCaption(rows[len(rows)-1].Day),
		}
	}
	evt.StartDate, evt.EndDate = span.Dates(year)
	window := span.Window(year)

	for _, row := range rows {
		inst, err := normalize.ParseSuperFormulaSession(row.Day, row.Time, window)
		addSession(c, evt, row.Label, classify.SuperFormula, inst, err)
	}
	c.Add(evt)
}
