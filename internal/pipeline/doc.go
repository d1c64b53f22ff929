// Package pipeline runs one source's crawl from series metadata to an assembled
// Series.
//
// A Runner owns nothing between runs. Each call to Run creates a Crawl, the
// per-run handle through which a Source fetches pages and hands over events.
// The Crawl owns the visited-URL set and tracks the run's state:
//
//	Idle → FetchingSeriesMetadata → FetchingCalendarPages ⇄ FetchingEventPages → Assembling → Done
//
// Fetches happen one at a time in the order the source asks for them. A page
// that cannot be fetched skips that year or event; a run always ends in Done
// with a Series, possibly with no events.
package pipeline
