// Package cli implements the command-line interface for racecal.
//
// The cli package provides the Cobra-based CLI: crawling a single source for a
// season and printing it as text, JSON or iCalendar, narrowing the output with
// session filters, listing the registered sources, and running the HTTP router.
// It coordinates the config, fetcher, pipeline, source and server packages.
package cli
