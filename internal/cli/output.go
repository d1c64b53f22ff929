package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/mattn/go-runewidth"

	"github.com/pfrederiksen/racecal/internal/calendar"
	"github.com/pfrederiksen/racecal/internal/event"
	"github.com/pfrederiksen/racecal/internal/pipeline"
)

// OutputFormat specifies the output format
type OutputFormat string

const (
	FormatText OutputFormat = "text"
	FormatJSON OutputFormat = "json"
	FormatICS  OutputFormat = "ics"
)

// maxNameWidth caps session names in text tables, in terminal cells
const maxNameWidth = 40

// Valid reports whether f is a known format
func (f OutputFormat) Valid() bool {
	switch f {
	case FormatText, FormatJSON, FormatICS:
		return true
	}
	return false
}

// WriteOutput writes the series in the specified format
func WriteOutput(w io.Writer, series *event.Series, format OutputFormat, now time.Time, verbose bool) error {
	switch format {
	case FormatJSON:
		return writeJSON(w, series)
	case FormatICS:
		_, err := io.WriteString(w, calendar.GenerateICS(series, now))
		return err
	case FormatText:
		return writeText(w, series, verbose)
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}

// writeJSON outputs the series as JSON
func writeJSON(w io.Writer, series *event.Series) error {
	encoder := json.NewEncoder(w)
	encoder.SetEscapeHTML(false)
	encoder.SetIndent("", "  ")
	return encoder.Encode(series)
}

// writeText outputs one table per event
func writeText(w io.Writer, series *event.Series, verbose bool) error {
	fmt.Fprintf(w, "%s (%s)\n", series.Name, series.Genre)

	if len(series.Events) == 0 {
		fmt.Fprintln(w, "No events found.")
		return nil
	}

	sessions := 0
	for _, evt := range series.Events {
		fmt.Fprintf(w, "\n%s\n", eventHeading(evt))
		if verbose && evt.URL != "" {
			fmt.Fprintf(w, "%s\n", evt.URL)
		}
		if len(evt.Sessions) == 0 {
			fmt.Fprintln(w, "  No sessions published.")
			continue
		}
		sessions += len(evt.Sessions)

		t := table.NewWriter()
		t.SetOutputMirror(w)
		header := table.Row{"Date", "Time (UTC)", "Session", "Type"}
		if verbose {
			header = append(header, "ID")
		}
		t.AppendHeader(header)

		for _, s := range evt.Sessions {
			row := table.Row{s.Date, sessionTime(s), runewidth.Truncate(s.Name, maxNameWidth, "…"), s.Type}
			if verbose {
				row = append(row, event.GenerateID(evt.URL, s))
			}
			t.AppendRow(row)
		}
		t.SetStyle(table.StyleRounded)
		t.Render()
	}

	fmt.Fprintf(w, "\nTotal: %d events, %d sessions\n", len(series.Events), sessions)
	return nil
}

func eventHeading(evt *event.Event) string {
	heading := evt.Name
	if evt.Location != "" {
		heading += " - " + evt.Location
	}
	switch {
	case evt.StartDate == "":
	case evt.EndDate == "" || evt.EndDate == evt.StartDate:
		heading += fmt.Sprintf(" [%s]", evt.StartDate)
	default:
		heading += fmt.Sprintf(" [%s to %s]", evt.StartDate, evt.EndDate)
	}
	return heading
}

func sessionTime(s *event.Session) string {
	if s.TBD {
		return "TBD"
	}
	return s.Start.UTC().Format("15:04")
}

// WriteSources lists the registered sources as a table
func WriteSources(w io.Writer, sources []pipeline.Source) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.AppendHeader(table.Row{"Slug", "Series", "Genre", "URL"})
	for _, src := range sources {
		meta := src.Series()
		t.AppendRow(table.Row{src.Slug(), meta.Name, meta.Genre, meta.SeriesURL})
	}
	t.SetStyle(table.StyleRounded)
	t.Render()
}
