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
	indyCarBase        = "https://www.indycar.com"
	indyCarCalendarURL = indyCarBase + "/Schedule?year=%d"
)

// IndyCar reads the indycar.com schedule and its event pages
type IndyCar struct{}

// NewIndyCar creates the indycar source
func NewIndyCar() *IndyCar {
	return &IndyCar{}
}

func (IndyCar) Slug() string { return "indycar" }

func (IndyCar) Series() *event.Series {
	return event.NewSeries(
		"IndyCar",
		"Open-Wheel",
		"https://www.indycar.com/",
		"https://www.indycar.com/-/media/IndyCar/Logos/INDYCAR-Dark.png",
	)
}

// parseIndyCarCalendar extracts the event page URLs of a schedule page
func parseIndyCarCalendar(body string) ([]string, error) {
	doc, err := newDocument(body)
	if err != nil {
		return nil, err
	}

	var urls []string
	doc.Find(".schedule-list-container .event-card").Each(func(i int, card *goquery.Selection) {
		href, _ := card.Find("a").Attr("href")
		urls = append(urls, absoluteURL(indyCarBase, href))
	})
	return urls, nil
}

// indyCarPage is the raw content of an event page
type indyCarPage struct {
	Name      string
	DateRange string
	Location  string
	Sessions  []rawSession
}

// parseIndyCarEvent extracts an event page. The subhead reads
// "March 1 - 2 | St. Petersburg, Florida"; schedule rows follow the h3 day
// header they belong to.
func parseIndyCarEvent(body string) (indyCarPage, error) {
	doc, err := newDocument(body)
	if err != nil {
		return indyCarPage{}, err
	}

	page := indyCarPage{Name: cleanText(doc.Find("h1.headline").Text())}
	dateRange, location, _ := strings.Cut(doc.Find(".subhead").Text(), "|")
	page.DateRange = cleanText(dateRange)
	page.Location = cleanText(location)

	day := ""
	doc.Find("#schedule-content .schedule-table").First().Children().Each(func(i int, row *goquery.Selection) {
		if goquery.NodeName(row) == "h3" {
			day = cleanText(row.Text())
			return
		}
		if !row.HasClass("schedule-entry") {
			return
		}
		page.Sessions = append(page.Sessions, rawSession{
			Day:   day,
			Time:  cleanText(row.Find(".schedule-time").Text()),
			Label: cleanText(row.Find(".schedule-description").Text()),
		})
	})
	return page, nil
}

func (i IndyCar) Crawl(c *pipeline.Crawl) {
	for _, year := range c.Years() {
		if c.Cancelled() {
			return
		}
		body, ok := c.FetchCalendar(fmt.Sprintf(indyCarCalendarURL, year), year)
		if !ok {
			continue
		}
		urls, err := parseIndyCarCalendar(body)
		if err != nil {
			c.Logger().Warn("skipping calendar page", logger.Fields{"year": year, "error": err.Error()})
			continue
		}
		for _, url := range urls {
			i.crawlEvent(c, url, year)
		}
	}
}

func (IndyCar) crawlEvent(c *pipeline.Crawl, url string, year int) {
	if url == "" || !c.Visit(url) {
		return
	}
	body, ok := c.FetchEvent(url)
	if !ok {
		return
	}
	page, err := parseIndyCarEvent(body)
	if err != nil {
		c.Logger().Warn("skipping event", logger.Fields{"url": url, "error": err.Error()})
		return
	}

	evt := event.NewEvent(page.Name, url, page.Location)
	span := normalize.ParseIndyCarRange(page.DateRange)
	evt.StartDate, evt.EndDate = span.Dates(year)
	window := span.Window(year)
	for _, row := range page.Sessions {
		inst, err := normalize.ParseIndyCarSession(row.Day, row.Time, window)
		addSession(c, evt, row.Label, classify.IndyCar, inst, err)
	}
	c.Add(evt)
}
