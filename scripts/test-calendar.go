package main

import (
	"fmt"
	"os"
	"time"

	"github.com/pfrederiksen/racecal/internal/calendar"
	"github.com/pfrederiksen/racecal/internal/event"
)

func main() {
	// A sample weekend: one timed session, one unannounced race
	series := event.NewSeries("Formula 1", "OW", "https://www.formula1.com", "")
	evt := event.NewEvent("Japanese Grand Prix", "https://www.formula1.com/en/racing/2026/japan", "Suzuka")
	evt.AddSession(&event.Session{
		Start: time.Date(2026, 3, 27, 2, 30, 0, 0, time.UTC),
		Date:  "2026-03-27",
		Name:  "Practice 1",
		Type:  event.SessionPractice,
	})
	evt.AddSession(&event.Session{
		Start: time.Date(2026, 3, 29, 0, 0, 0, 0, time.UTC),
		TBD:   true,
		Date:  "2026-03-29",
		Name:  "Race",
		Type:  event.SessionRace,
	})
	evt.FillDatesFromSessions("")
	series.Events = append(series.Events, evt)

	icsContent := calendar.GenerateICS(series, time.Now())

	// Write to file (owner read/write only for security)
	filename := "test-racecal.ics"
	if err := os.WriteFile(filename, []byte(icsContent), 0600); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing file: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("✅ Generated calendar file: %s\n\n", filename)
	fmt.Println("Test it by:")
	fmt.Println("1. Open the .ics file with your calendar app (double-click)")
	fmt.Println("2. Or import it into Google Calendar, Apple Calendar, or Outlook")
	fmt.Println("\nFile contents preview:")
	fmt.Println("---")
	fmt.Println(icsContent)
}
