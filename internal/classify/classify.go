// Package classify maps raw session labels to session types.
//
// Each source has its own keyword table and its own policy for labels that match
// nothing: some keep them as Other or Testing, others drop them. A classifier
// returns ok=false for a dropped label.
package classify

import (
	"regexp"
	"strings"

	"github.com/pfrederiksen/racecal/internal/event"
)

// Result is a classified session label
type Result struct {
	Name string
	Type event.SessionType
}

// Func classifies one raw label
type Func func(label string) (Result, bool)

// Formula1 keeps every session; unknown labels are Testing
func Formula1(label string) (Result, bool) {
	label = strings.TrimSpace(label)
	if label == "" {
		return Result{}, false
	}
	switch {
	case strings.Contains(label, "Practice"):
		return Result{label, event.SessionPractice}, true
	case strings.Contains(label, "Qualifying"):
		return Result{label, event.SessionQualifying}, true
	case label == "Race" || label == "Sprint":
		return Result{label, event.SessionRace}, true
	default:
		return Result{label, event.SessionTesting}, true
	}
}

// IndyCarPrefix marks the series' own sessions in indycar.com schedules
const IndyCarPrefix = "NTT INDYCAR SERIES -"

// IndyCar keeps only labels carrying IndyCarPrefix, stripped; the rest of the
// support-paddock schedule is dropped. Unknown series sessions are Other.
func IndyCar(label string) (Result, bool) {
	label = strings.TrimSpace(label)
	if !strings.HasPrefix(label, IndyCarPrefix) {
		return Result{}, false
	}
	name := strings.TrimSpace(strings.TrimPrefix(label, IndyCarPrefix))
	switch {
	case strings.Contains(name, "Practice"), strings.Contains(name, "Warmup"):
		return Result{name, event.SessionPractice}, true
	case strings.Contains(name, "Qualifications"), strings.Contains(name, "Qualifying"):
		return Result{name, event.SessionQualifying}, true
	case strings.Contains(name, "Race"):
		return Result{name, event.SessionRace}, true
	default:
		return Result{name, event.SessionOther}, true
	}
}

// FormulaE keeps every session; the API spells qualifying in capitals
func FormulaE(label string) (Result, bool) {
	label = strings.TrimSpace(label)
	if label == "" {
		return Result{}, false
	}
	switch {
	case strings.Contains(label, "Practice"):
		return Result{label, event.SessionPractice}, true
	case strings.Contains(label, "QUALIFYING"):
		return Result{label, event.SessionQualifying}, true
	case strings.Contains(label, "Race"):
		return Result{label, event.SessionRace}, true
	default:
		return Result{label, event.SessionOther}, true
	}
}

var (
	sfPracticeNumber = regexp.MustCompile(`FP\d+`)
	sfRound          = regexp.MustCompile(`Rd\.\d+`)
)

// SuperFormula reads the Japanese timetable labels. Only the Q1 heat of group A
// (or Q1 when qualifying is not split into groups) stands for qualifying.
func SuperFormula(label string) (Result, bool) {
	label = strings.TrimSpace(label)
	switch {
	case strings.Contains(label, "FP"):
		name := sfPracticeNumber.FindString(label)
		if name == "" {
			name = "Practice"
		}
		return Result{name, event.SessionPractice}, true
	case strings.Contains(label, "予選"):
		if !strings.Contains(label, "Q1") {
			return Result{}, false
		}
		if strings.Contains(label, "Gr") && !strings.Contains(label, "GrA") {
			return Result{}, false
		}
		return Result{withRound(label, "Qualifying"), event.SessionQualifying}, true
	case strings.Contains(label, "決勝"):
		return Result{withRound(label, "Race"), event.SessionRace}, true
	case strings.Contains(label, "Session"):
		return Result{label, event.SessionOther}, true
	default:
		return Result{}, false
	}
}

func withRound(label, name string) string {
	if round := sfRound.FindString(label); round != "" {
		return round + " " + name
	}
	return name
}

// WECQualifying is the qualifying session that stands for the whole grid
const WECQualifying = "Qualifying - LMGT3"

// WEC keeps practice, the LMGT3 qualifying (renamed Qualifying) and races
func WEC(label string) (Result, bool) {
	label = strings.TrimSpace(label)
	switch {
	case strings.Contains(label, "Practice"):
		return Result{label, event.SessionPractice}, true
	case strings.Contains(label, WECQualifying):
		return Result{"Qualifying", event.SessionQualifying}, true
	case strings.Contains(label, "Race"):
		return Result{label, event.SessionRace}, true
	default:
		return Result{}, false
	}
}
