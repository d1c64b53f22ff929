package source

import (
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/antzucaro/matchr"

	"github.com/pfrederiksen/racecal/internal/classify"
	"github.com/pfrederiksen/racecal/internal/event"
	"github.com/pfrederiksen/racecal/internal/logger"
	"github.com/pfrederiksen/racecal/internal/normalize"
	"github.com/pfrederiksen/racecal/internal/pipeline"
)

// ErrUnknownSource is returned for a slug no source is registered under
var ErrUnknownSource = errors.New("unknown source")

// minSuggestSimilarity is the Jaro-Winkler score a slug needs to be suggested
const minSuggestSimilarity = 0.8

// All returns every source in display order
func All() []pipeline.Source {
	return []pipeline.Source{
		NewFormula1(),
		NewIndyCar(),
		NewFormulaE(),
		NewSuperFormula(),
		NewWEC(),
	}
}

// Registry looks sources up by slug
type Registry struct {
	bySlug map[string]pipeline.Source
	order  []string
}

// NewRegistry creates a registry of the given sources. A later source with the
// same slug replaces an earlier one.
func NewRegistry(sources ...pipeline.Source) *Registry {
	r := &Registry{bySlug: make(map[string]pipeline.Source)}
	for _, src := range sources {
		if _, exists := r.bySlug[src.Slug()]; !exists {
			r.order = append(r.order, src.Slug())
		}
		r.bySlug[src.Slug()] = src
	}
	return r
}

// Default returns a registry of All sources
func Default() *Registry {
	return NewRegistry(All()...)
}

// Get returns the source registered under slug
func (r *Registry) Get(slug string) (pipeline.Source, error) {
	src, ok := r.bySlug[strings.ToLower(strings.TrimSpace(slug))]
	if !ok {
		if guess := r.Suggest(slug); guess != "" {
			return nil, fmt.Errorf("%w: %q (did you mean %q?)", ErrUnknownSource, slug, guess)
		}
		return nil, fmt.Errorf("%w: %q (available: %s)", ErrUnknownSource, slug, strings.Join(r.Slugs(), ", "))
	}
	return src, nil
}

// Suggest returns the registered slug closest to slug, or "" when none is
// close enough
func (r *Registry) Suggest(slug string) string {
	slug = strings.ToLower(strings.TrimSpace(slug))
	var best string
	var bestScore float64
	for _, candidate := range r.order {
		score := matchr.JaroWinkler(slug, candidate, false)
		if score > bestScore {
			best, bestScore = candidate, score
		}
	}
	if bestScore < minSuggestSimilarity {
		return ""
	}
	return best
}

// Slugs returns the registered slugs in registration order
func (r *Registry) Slugs() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// Sources returns the registered sources in registration order
func (r *Registry) Sources() []pipeline.Source {
	out := make([]pipeline.Source, 0, len(r.order))
	for _, slug := range r.order {
		out = append(out, r.bySlug[slug])
	}
	return out
}

// Subset returns a registry holding only the named sources, keeping this
// registry's order. An empty list selects every source.
func (r *Registry) Subset(slugs []string) (*Registry, error) {
	if len(slugs) == 0 {
		return r, nil
	}
	wanted := make(map[string]bool, len(slugs))
	var unknown []string
	for _, slug := range slugs {
		if _, ok := r.bySlug[slug]; !ok {
			unknown = append(unknown, slug)
			continue
		}
		wanted[slug] = true
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return nil, fmt.Errorf("%w: %s", ErrUnknownSource, strings.Join(unknown, ", "))
	}

	var picked []pipeline.Source
	for _, slug := range r.order {
		if wanted[slug] {
			picked = append(picked, r.bySlug[slug])
		}
	}
	return NewRegistry(picked...), nil
}

// rawSession is one timetable row as published
type rawSession struct {
	Day   string
	Time  string
	Label string
}

func newDocument(body string) (*goquery.Document, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parsing HTML: %w", err)
	}
	return doc, nil
}

// cleanText trims s and collapses inner whitespace runs to one space
func cleanText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// absoluteURL resolves href against base. An empty href yields "".
func absoluteURL(base, href string) string {
	href = strings.TrimSpace(href)
	if href == "" {
		return ""
	}
	b, err := url.Parse(base)
	if err != nil {
		return ""
	}
	ref, err := url.Parse(href)
	if err != nil {
		return ""
	}
	return b.ResolveReference(ref).String()
}

// addSession classifies label and, when the source keeps it, appends the
// normalized session. Unreadable dates drop the session.
func addSession(c *pipeline.Crawl, evt *event.Event, label string, classifier classify.Func, inst normalize.Instant, err error) {
	result, keep := classifier(label)
	if !keep {
		c.Logger().Debug("session dropped", logger.Fields{"event": evt.URL, "label": label})
		return
	}
	if err != nil {
		c.Logger().Debug("session time unreadable", logger.Fields{"event": evt.URL, "label": label, "error": err.Error()})
		return
	}
	evt.AddSession(&event.Session{
		Start: inst.Time,
		TBD:   inst.TBD,
		Date:  inst.Date,
		Name:  result.Name,
		Type:  result.Type,
	})
}
