package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/pfrederiksen/racecal/internal/event"
	"github.com/pfrederiksen/racecal/internal/fetcher"
	"github.com/pfrederiksen/racecal/internal/logger"
)

// State is a step of a pipeline run
type State int

const (
	Idle State = iota
	FetchingSeriesMetadata
	FetchingCalendarPages
	FetchingEventPages
	Assembling
	Done
)

var stateNames = map[State]string{
	Idle:                   "Idle",
	FetchingSeriesMetadata: "FetchingSeriesMetadata",
	FetchingCalendarPages:  "FetchingCalendarPages",
	FetchingEventPages:     "FetchingEventPages",
	Assembling:             "Assembling",
	Done:                   "Done",
}

func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// canMove reports whether a run may go from s to next. Calendar and event
// fetching alternate freely; everything else only moves forward.
func (s State) canMove(next State) bool {
	switch s {
	case Idle:
		return next == FetchingSeriesMetadata
	case FetchingSeriesMetadata:
		return next == FetchingCalendarPages || next == FetchingEventPages || next == Assembling
	case FetchingCalendarPages, FetchingEventPages:
		return next == FetchingCalendarPages || next == FetchingEventPages || next == Assembling
	default:
		return false
	}
}

// Source is one upstream calendar publisher
type Source interface {
	// Slug is the short name used on the command line and in router paths.
	Slug() string
	// Series returns the series metadata with no events.
	Series() *event.Series
	// Crawl fetches the source's pages through c and adds each assembled event.
	Crawl(c *Crawl)
}

// Runner runs sources for a fixed calendar year
type Runner struct {
	fetcher fetcher.Fetcher
	year    int
	log     *logger.Logger
	metrics *logger.Metrics
}

// NewRunner creates a Runner. year is the reference year the source's calendar
// URLs are built around.
func NewRunner(f fetcher.Fetcher, year int, log *logger.Logger) *Runner {
	if log == nil {
		log = logger.Default()
	}
	return &Runner{
		fetcher: f,
		year:    year,
		log:     log,
		metrics: logger.DefaultMetrics(),
	}
}

// WithMetrics sets the metrics tracker runs record into
func (r *Runner) WithMetrics(m *logger.Metrics) *Runner {
	r.metrics = m
	return r
}

// Year returns the reference year
func (r *Runner) Year() int {
	return r.year
}

// Run crawls src and returns its series. It never fails: upstream problems
// only shrink the event list.
func (r *Runner) Run(ctx context.Context, src Source) *event.Series {
	start := time.Now()
	c := r.newCrawl(ctx, src.Slug())

	c.moveTo(FetchingSeriesMetadata)
	series := src.Series()
	c.log.Info("crawl started", logger.Fields{"year": r.year})

	src.Crawl(c)

	c.moveTo(Assembling)
	series.Events = c.assembler.Events()

	c.moveTo(Done)
	r.metrics.RecordTiming("pipeline."+src.Slug(), time.Since(start))
	r.metrics.SetGauge("pipeline."+src.Slug()+".events", float64(len(series.Events)))
	c.log.Info("crawl finished", logger.Fields{
		"events":   len(series.Events),
		"skipped":  c.skipped,
		"duration": time.Since(start).String(),
	})
	return series
}

func (r *Runner) newCrawl(ctx context.Context, slug string) *Crawl {
	return &Crawl{
		ctx:       ctx,
		year:      r.year,
		fetcher:   r.fetcher,
		log:       r.log.With(logger.Fields{"source": slug}),
		metrics:   r.metrics,
		assembler: event.NewAssembler(),
		state:     Idle,
		history:   []State{Idle},
	}
}

// Crawl is the state of a single pipeline run. It is not safe for concurrent use.
type Crawl struct {
	ctx       context.Context
	year      int
	fetcher   fetcher.Fetcher
	log       *logger.Logger
	metrics   *logger.Metrics
	assembler *event.Assembler
	state     State
	history   []State
	skipped   int
}

// Year returns the reference year
func (c *Crawl) Year() int {
	return c.year
}

// Years returns the calendar years a yearly listing is read for: the previous,
// the reference and the next year.
func (c *Crawl) Years() []int {
	return []int{c.year - 1, c.year, c.year + 1}
}

// Logger returns the run's logger, tagged with the source slug
func (c *Crawl) Logger() *logger.Logger {
	return c.log
}

// State returns the current state
func (c *Crawl) State() State {
	return c.state
}

// History returns every state the run has been in, in order, collapsing
// consecutive repeats.
func (c *Crawl) History() []State {
	out := make([]State, len(c.history))
	copy(out, c.history)
	return out
}

func (c *Crawl) moveTo(next State) bool {
	if c.state == next {
		return true
	}
	if !c.state.canMove(next) {
		c.log.Warn("invalid state transition", logger.Fields{"from": c.state.String(), "to": next.String()})
		return false
	}
	c.state = next
	c.history = append(c.history, next)
	return true
}

// FetchCalendar fetches a listing page. label identifies the unit skipped on
// failure in logs (a year, a championship id).
func (c *Crawl) FetchCalendar(url string, label any) (string, bool) {
	if !c.moveTo(FetchingCalendarPages) {
		return "", false
	}
	body, ok := c.fetcher.Fetch(c.ctx, url)
	if !ok {
		c.skipped++
		c.log.Warn("skipping calendar page", logger.Fields{"url": url, "unit": label})
	}
	return body, ok
}

// FetchEvent fetches an event page
func (c *Crawl) FetchEvent(url string) (string, bool) {
	if !c.moveTo(FetchingEventPages) {
		return "", false
	}
	body, ok := c.fetcher.Fetch(c.ctx, url)
	if !ok {
		c.skipped++
		c.log.Warn("skipping event", logger.Fields{"url": url})
	}
	return body, ok
}

// Visit marks an event URL as seen. It returns false when the URL was already
// visited in this run, in which case the caller skips the event and its fetch.
func (c *Crawl) Visit(url string) bool {
	if c.assembler.Visit(url) {
		return true
	}
	c.log.Debug("already visited", logger.Fields{"url": url})
	return false
}

// Add hands an assembled event to the run
func (c *Crawl) Add(evt *event.Event) bool {
	if c.state == Assembling || c.state == Done {
		return false
	}
	if !c.assembler.Add(evt) {
		return false
	}
	c.log.Debug("event assembled", logger.Fields{
		"event":    evt.Name,
		"location": evt.Location,
		"start":    evt.StartDate,
		"end":      evt.EndDate,
		"sessions": len(evt.Sessions),
	})
	return true
}

// Cancelled reports whether the run's context has been cancelled
func (c *Crawl) Cancelled() bool {
	return c.ctx.Err() != nil
}
