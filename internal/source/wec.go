package source

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/pfrederiksen/racecal/internal/classify"
	"github.com/pfrederiksen/racecal/internal/event"
	"github.com/pfrederiksen/racecal/internal/logger"
	"github.com/pfrederiksen/racecal/internal/normalize"
	"github.com/pfrederiksen/racecal/internal/pipeline"
)

const (
	wecBase        = "https://www.fiawec.com"
	wecCalendarURL = wecBase + "/en/"
)

// venue names on fiawec.com carry a championship or circuit affix
var wecVenueAffixes = []string{"WEC - ", "ELMS - ", "International Circuit"}

// WEC reads the fiawec.com season overview and its event pages
type WEC struct{}

// NewWEC creates the wec source
func NewWEC() *WEC {
	return &WEC{}
}

func (WEC) Slug() string { return "wec" }

func (WEC) Series() *event.Series {
	return event.NewSeries(
		"FIA WEC",
		"Endurance",
		"https://www.fiawec.com/en/#",
		"https://www.fiawec.com/uploads/logo-wec-cyan-navy-67f5358f785c2353364808-688b8233b14d7197474917-1-68b85665871a1417001656.png",
	)
}

// parseWECCalendar extracts the event page links of the season overview
func parseWECCalendar(body string) ([]string, error) {
	doc, err := newDocument(body)
	if err != nil {
		return nil, err
	}

	var urls []string
	doc.Find(".season-content a").Each(func(i int, link *goquery.Selection) {
		href, _ := link.Attr("href")
		urls = append(urls, absoluteURL(wecBase, href))
	})
	return urls, nil
}

// wecPage is the raw content of an event page
type wecPage struct {
	Name      string
	DateRange string
	Venue     string
	StartDate string
	Sessions  []rawSession
}

// parseWECEvent extracts an event page. Venue and start timestamp come from
// the page's last ld+json block; the range is the line under the heading.
func parseWECEvent(body string) (wecPage, error) {
	doc, err := newDocument(body)
	if err != nil {
		return wecPage{}, err
	}

	heading := doc.Find(".text-center .ff-headings").First()
	page := wecPage{
		Name:      cleanText(heading.Text()),
		DateRange: cleanText(heading.Next().Text()),
	}

	ldJSON := doc.Find(`script[type="application/ld+json"]`).Last().Text()
	if data, err := parseJSON(ldJSON); err == nil {
		page.Venue = strings.TrimSpace(data.Get("location.name").String())
		page.StartDate = strings.TrimSpace(data.Get("startDate").String())
	}

	doc.Find("div.grid").First().ChildrenFiltered("div").Each(func(i int, dayBlock *goquery.Selection) {
		divs := dayBlock.Find("div")
		day := cleanText(divs.First().Text())
		divs.Eq(1).Find("div").Each(func(j int, row *goquery.Selection) {
			cells := row.Find("div")
			label := cleanText(cells.First().Text())
			if label == "" {
				return
			}
			page.Sessions = append(page.Sessions, rawSession{
				Day:   day,
				Time:  cleanText(cells.Eq(1).Text()),
				Label: label,
			})
		})
	})
	return page, nil
}

// wecLocation strips the championship or circuit affix from a venue name.
// Le Mans pages name the venue after the circuit, so the event name decides.
// A venue with no known affix is returned as published, never "".
func wecLocation(venue, eventName string) string {
	for _, affix := range wecVenueAffixes {
		if strings.Contains(venue, affix) {
			return strings.TrimSpace(strings.Replace(venue, affix, "", 1))
		}
	}
	if strings.Contains(eventName, "Le Mans") {
		return "Le Mans"
	}
	return venue
}

func (w WEC) Crawl(c *pipeline.Crawl) {
	body, ok := c.FetchCalendar(wecCalendarURL, c.Year())
	if !ok {
		return
	}
	urls, err := parseWECCalendar(body)
	if err != nil {
		c.Logger().Warn("skipping calendar page", logger.Fields{"error": err.Error()})
		return
	}
	for _, url := range urls {
		if c.Cancelled() {
			return
		}
		w.crawlEvent(c, url)
	}
}

func (WEC) crawlEvent(c *pipeline.Crawl, url string) {
	if url == "" || !c.Visit(url) {
		return
	}
	body, ok := c.FetchEvent(url)
	if !ok {
		return
	}
	page, err := parseWECEvent(body)
	if err != nil {
		c.Logger().Warn("skipping event", logger.Fields{"url": url, "error": err.Error()})
		return
	}

	evt := event.NewEvent(page.Name, url, wecLocation(page.Venue, page.Name))
	var year int
	evt.StartDate, evt.EndDate, year = normalize.ParseWECRange(page.DateRange)
	if year == 0 {
		year = c.Year()
	}
	window := normalize.WindowOf(evt.StartDate, evt.EndDate, year)
	offset := normalize.WECOffset(page.StartDate)
	for _, row := range page.Sessions {
		inst, err := normalize.ParseWECSession(window, row.Day, row.Time, offset)
		addSession(c, evt, row.Label, classify.WEC, inst, err)
	}
	c.Add(evt)
}
