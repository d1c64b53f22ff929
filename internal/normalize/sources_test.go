package normalize

import (
	"errors"
	"testing"
	"time"
)

func TestParseF1Range(t *testing.T) {
	tests := []struct {
		text string
		want Span
	}{
		{"14 - 16 Mar", Span{"03-14", "03-16"}},
		{"30 May - 01 Jun", Span{"05-30", "06-01"}},
		{"4 - 6 Apr", Span{"04-04", "04-06"}},
		{"14 – 16 Mar", Span{"03-14", "03-16"}},
		{"14 - 16 Xyz", Span{"", ""}},
		{"30 Xyz - 01 Jun", Span{"", "06-01"}},
		{"Round 1", Span{}},
		{"", Span{}},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			if got := ParseF1Range(tt.text); got != tt.want {
				t.Errorf("ParseF1Range(%q) = %+v, want %+v", tt.text, got, tt.want)
			}
		})
	}
}

func TestIsF1Range(t *testing.T) {
	if !IsF1Range("14 - 16 Mar") || !IsF1Range("30 May - 01 Jun") {
		t.Error("expected valid F1 ranges to match")
	}
	if IsF1Range("Chequered Flag") || IsF1Range("16 Mar") {
		t.Error("expected non-range text to be rejected")
	}
}

func TestParseF1Range_WithYear(t *testing.T) {
	start, end := ParseF1Range("30 May - 01 Jun").Dates(2025)
	if start != "2025-05-30" || end != "2025-06-01" {
		t.Errorf("got (%s, %s), want (2025-05-30, 2025-06-01)", start, end)
	}
}

func TestParseF1Session(t *testing.T) {
	got, err := ParseF1Session("14Mar", "12:30", InYear(2025))
	if err != nil {
		t.Fatalf("ParseF1Session() error = %v", err)
	}
	if want := time.Date(2025, 3, 14, 3, 30, 0, 0, time.UTC); !got.Time.Equal(want) {
		t.Errorf("Time = %v, want %v", got.Time, want)
	}
	if got.Date != "2025-03-14" {
		t.Errorf("Date = %q, want 2025-03-14", got.Date)
	}

	tbd, err := ParseF1Session("16 Mar", "", InYear(2025))
	if err != nil || !tbd.TBD {
		t.Errorf("empty clock should be TBD, got %+v, %v", tbd, err)
	}

	if _, err := ParseF1Session("Sunday", "12:30", InYear(2025)); !errors.Is(err, ErrUnrecognizedDate) {
		t.Errorf("bad day cell error = %v, want ErrUnrecognizedDate", err)
	}
	if _, err := ParseF1Session("14Mar", "half past", InYear(2025)); !errors.Is(err, ErrBadClock) {
		t.Errorf("bad clock error = %v, want ErrBadClock", err)
	}
}

func TestParseIndyCarRange(t *testing.T) {
	tests := []struct {
		text string
		want Span
	}{
		{"February 27 - March 1", Span{"02-27", "03-01"}},
		{"March 6 - 7", Span{"03-06", "03-07"}},
		{"May 25", Span{"05-25", "05-25"}},
		{"Aug. 29 - 31, 2025", Span{"08-29", "08-31"}},
		{"Smarch 6 - 7", Span{"", ""}},
		{"", Span{}},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			if got := ParseIndyCarRange(tt.text); got != tt.want {
				t.Errorf("ParseIndyCarRange(%q) = %+v, want %+v", tt.text, got, tt.want)
			}
		})
	}
}

func TestParseIndyCarSession(t *testing.T) {
	tests := []struct {
		name    string
		header  string
		clock   string
		want    time.Time
		wantTBD bool
		wantErr error
	}{
		{
			name:   "afternoon EDT",
			header: "Saturday, May 24",
			clock:  "3:30 PM ET",
			want:   time.Date(2025, 5, 24, 19, 30, 0, 0, time.UTC),
		},
		{
			name:   "no space before meridiem",
			header: "Sunday, March 2",
			clock:  "12:00PM ET",
			want:   time.Date(2025, 3, 2, 17, 0, 0, 0, time.UTC),
		},
		{
			name:   "time range",
			header: "Friday, August 29",
			clock:  "10:00 - 11:00 AM ET",
			want:   time.Date(2025, 8, 29, 14, 0, 0, 0, time.UTC),
		},
		{name: "TBD", header: "Sunday, March 2", clock: "TBD", wantTBD: true},
		{name: "bad header", header: "Race Day", clock: "3:30 PM ET", wantErr: ErrUnrecognizedDate},
		{name: "24 hour clock", header: "Sunday, March 2", clock: "15:30 ET", wantErr: ErrBadClock},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseIndyCarSession(tt.header, tt.clock, InYear(2025))
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got.TBD != tt.wantTBD {
				t.Errorf("TBD = %v, want %v", got.TBD, tt.wantTBD)
			}
			if !tt.wantTBD && !got.Time.Equal(tt.want) {
				t.Errorf("Time = %v, want %v", got.Time, tt.want)
			}
		})
	}
}

func TestParseFormulaESession(t *testing.T) {
	tests := []struct {
		name    string
		date    string
		clock   string
		offset  string
		want    time.Time
		wantTBD bool
		wantErr error
	}{
		{"negative offset", "2025-01-11", "14:05", "-06:00", time.Date(2025, 1, 11, 20, 5, 0, 0, time.UTC), false, nil},
		{"zero offset is UTC", "2025-05-03", "15:00", "00:00", time.Date(2025, 5, 3, 15, 0, 0, 0, time.UTC), false, nil},
		{"unsigned positive offset", "2025-05-17", "15:05", "09:00", time.Date(2025, 5, 17, 6, 5, 0, 0, time.UTC), false, nil},
		{"missing offset is UTC", "2025-05-17", "15:05", "", time.Date(2025, 5, 17, 15, 5, 0, 0, time.UTC), false, nil},
		{"missing start time", "2025-05-17", "", "09:00", time.Time{}, true, nil},
		{"broken date", "2025-02-30", "15:05", "09:00", time.Time{}, false, ErrUnrecognizedDate},
		{"broken offset", "2025-05-17", "15:05", "JST", time.Time{}, false, ErrBadOffset},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseFormulaESession(tt.date, tt.clock, tt.offset)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got.TBD != tt.wantTBD {
				t.Errorf("TBD = %v, want %v", got.TBD, tt.wantTBD)
			}
			if !tt.wantTBD && !got.Time.Equal(tt.want) {
				t.Errorf("Time = %v, want %v", got.Time, tt.want)
			}
			if got.Date != tt.date {
				t.Errorf("Date = %q, want %q", got.Date, tt.date)
			}
		})
	}
}

func TestParseSuperFormulaRange(t *testing.T) {
	tests := []struct {
		text string
		want Span
	}{
		{"3月8日(土)～9日(日)", Span{"03-08", "03-09"}},
		{"5月31日～6月1日", Span{"05-31", "06-01"}},
		{"2025年4月19日～20日", Span{"04-19", "04-20"}},
		{"3.8-9", Span{"03-08", "03-09"}},
		{"3.8(土)-3.9(日)", Span{"03-08", "03-09"}},
		{"5.31～6.1", Span{"05-31", "06-01"}},
		{"11月23日", Span{"11-23", "11-23"}},
		{"未定", Span{}},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			if got := ParseSuperFormulaRange(tt.text); got != tt.want {
				t.Errorf("ParseSuperFormulaRange(%q) = %+v, want %+v", tt.text, got, tt.want)
			}
		})
	}
}

func TestParseSuperFormulaSession(t *testing.T) {
	got, err := ParseSuperFormulaSession("3.9(日)", "14:30-", InYear(2025))
	if err != nil {
		t.Fatalf("ParseSuperFormulaSession() error = %v", err)
	}
	if want := time.Date(2025, 3, 9, 5, 30, 0, 0, time.UTC); !got.Time.Equal(want) {
		t.Errorf("Time = %v, want %v", got.Time, want)
	}

	tbd, err := ParseSuperFormulaSession("3月9日(日)", "未定", InYear(2025))
	if err != nil || !tbd.TBD || tbd.Date != "2025-03-09" {
		t.Errorf("未定 should be TBD on 2025-03-09, got %+v, %v", tbd, err)
	}

	if _, err := ParseSuperFormulaSession("決勝日", "14:30", InYear(2025)); !errors.Is(err, ErrUnrecognizedDate) {
		t.Errorf("error = %v, want ErrUnrecognizedDate", err)
	}
}

func TestParseWECRange(t *testing.T) {
	tests := []struct {
		text      string
		wantStart string
		wantEnd   string
		wantYear  int
	}{
		{"From 18 to 20 April 2025", "2025-04-18", "2025-04-20", 2025},
		{"From 30 May to 1 June 2025", "2025-05-30", "2025-06-01", 2025},
		{"From 30 December to 1 January 2026", "2025-12-30", "2026-01-01", 2026},
		{"From  12  to 15 June   2025", "2025-06-12", "2025-06-15", 2025},
		{"From 12 to 15 Juin 2025", "", "", 2025},
		{"Coming soon", "", "", 0},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			start, end, year := ParseWECRange(tt.text)
			if start != tt.wantStart || end != tt.wantEnd || year != tt.wantYear {
				t.Errorf("ParseWECRange(%q) = (%q, %q, %d), want (%q, %q, %d)",
					tt.text, start, end, year, tt.wantStart, tt.wantEnd, tt.wantYear)
			}
		})
	}
}

func TestParseWECSession(t *testing.T) {
	got, err := ParseWECSession(InYear(2025), "June 14th", "04:00 PM / 4:00 PM CEST", "+02:00")
	if err != nil {
		t.Fatalf("ParseWECSession() error = %v", err)
	}
	if want := time.Date(2025, 6, 14, 14, 0, 0, 0, time.UTC); !got.Time.Equal(want) {
		t.Errorf("Time = %v, want %v", got.Time, want)
	}

	noOffset, err := ParseWECSession(InYear(2025), "June 14th", "16:00", "")
	if err != nil {
		t.Fatalf("ParseWECSession() without offset error = %v", err)
	}
	if want := time.Date(2025, 6, 14, 14, 0, 0, 0, time.UTC); !noOffset.Time.Equal(want) {
		t.Errorf("default zone Time = %v, want %v", noOffset.Time, want)
	}

	tbc, err := ParseWECSession(InYear(2025), "June 15th", "TBC", "+02:00")
	if err != nil || !tbc.TBD {
		t.Errorf("TBC should be TBD, got %+v, %v", tbc, err)
	}

	if _, err := ParseWECSession(InYear(2025), "June 31st", "04:00 PM", "+02:00"); !errors.Is(err, ErrUnrecognizedDate) {
		t.Errorf("June 31 error = %v, want ErrUnrecognizedDate", err)
	}
}

func TestParseWECSession_AcrossNewYear(t *testing.T) {
	start, end, year := ParseWECRange("From 30 December 2025 to 1 January 2026")
	w := WindowOf(start, end, year)

	tests := []struct {
		day  string
		want time.Time
	}{
		{"December 31st", time.Date(2025, 12, 31, 14, 30, 0, 0, time.UTC)},
		{"January 1st", time.Date(2026, 1, 1, 14, 30, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		t.Run(tt.day, func(t *testing.T) {
			got, err := ParseWECSession(w, tt.day, "03:30 PM", "+01:00")
			if err != nil {
				t.Fatalf("ParseWECSession() error = %v", err)
			}
			if !got.Time.Equal(tt.want) {
				t.Errorf("Time = %v, want %v", got.Time, tt.want)
			}
			if got.Date < start || got.Date > end {
				t.Errorf("Date %s outside event range %s..%s", got.Date, start, end)
			}
		})
	}
}

// Sessions of a range crossing New Year land inside the event's dates.
func TestSessionsAcrossNewYear(t *testing.T) {
	tests := []struct {
		name  string
		span  Span
		parse func(Window) (Instant, error)
		want  string
	}{
		{
			name:  "formula1",
			span:  ParseF1Range("30 Dec - 01 Jan"),
			parse: func(w Window) (Instant, error) { return ParseF1Session("01Jan", "13:00", w) },
			want:  "2026-01-01",
		},
		{
			name:  "indycar",
			span:  ParseIndyCarRange("December 31 - January 2"),
			parse: func(w Window) (Instant, error) { return ParseIndyCarSession("Friday, January 2", "3:30 PM ET", w) },
			want:  "2026-01-02",
		},
		{
			name:  "indycar december",
			span:  ParseIndyCarRange("December 31 - January 2"),
			parse: func(w Window) (Instant, error) { return ParseIndyCarSession("Wednesday, December 31", "3:30 PM ET", w) },
			want:  "2025-12-31",
		},
		{
			name:  "super formula",
			span:  ParseSuperFormulaRange("12.30-1.1"),
			parse: func(w Window) (Instant, error) { return ParseSuperFormulaSession("1.1(木)", "14:30", w) },
			want:  "2026-01-01",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start, end := tt.span.Dates(2025)
			got, err := tt.parse(tt.span.Window(2025))
			if err != nil {
				t.Fatalf("parse error = %v", err)
			}
			if got.Date != tt.want {
				t.Errorf("Date = %s, want %s", got.Date, tt.want)
			}
			if got.Date < start || got.Date > end {
				t.Errorf("Date %s outside event range %s..%s", got.Date, start, end)
			}
		})
	}
}

func TestWECOffset(t *testing.T) {
	tests := []struct{ in, want string }{
		{"2025-04-18T10:00:00+02:00", "+02:00"},
		{"2025-02-28T08:00:00-03:00", "-03:00"},
		{"2025-11-01T09:00:00Z", "00:00"},
		{"2025-04-18", ""},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := WECOffset(tt.in); got != tt.want {
				t.Errorf("WECOffset(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

// Scenario: a 12-hour time with AM/PM and a zero offset is the same instant as
// the 24-hour form at that offset.
func TestTwelveAndTwentyFourHourClocksAgree(t *testing.T) {
	pm, err := ParseWECSession(InYear(2025), "April 19th", "03:30 PM", "+00:00")
	if err != nil {
		t.Fatalf("12-hour parse error = %v", err)
	}
	h24, err := ParseWECSession(InYear(2025), "April 19th", "15:30", "+00:00")
	if err != nil {
		t.Fatalf("24-hour parse error = %v", err)
	}
	if !pm.Time.Equal(h24.Time) {
		t.Errorf("03:30 PM = %v, 15:30 = %v, want equal", pm.Time, h24.Time)
	}
}

// Every supported range yields start <= end as YYYY-MM-DD with valid dates.
func TestRangesAreOrdered(t *testing.T) {
	spans := []Span{
		ParseF1Range("14 - 16 Mar"),
		ParseF1Range("30 May - 01 Jun"),
		ParseF1Range("28 Nov - 30 Nov"),
		ParseIndyCarRange("February 27 - March 1"),
		ParseIndyCarRange("December 31 - January 2"),
		ParseSuperFormulaRange("5月31日～6月1日"),
		ParseSuperFormulaRange("12.30-1.1"),
	}

	for _, year := range []int{2024, 2025, 2026} {
		for _, span := range spans {
			start, end := span.Dates(year)
			if start == "" || end == "" {
				t.Errorf("%+v in %d produced an empty endpoint", span, year)
				continue
			}
			for _, d := range []string{start, end} {
				if _, err := time.Parse(dateLayout, d); err != nil {
					t.Errorf("%q is not a valid date: %v", d, err)
				}
			}
			if start > end {
				t.Errorf("%+v in %d: start %s after end %s", span, year, start, end)
			}
		}
	}
}
