package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pfrederiksen/racecal/internal/config"
	"github.com/pfrederiksen/racecal/internal/event"
	"github.com/pfrederiksen/racecal/internal/fetcher"
	"github.com/pfrederiksen/racecal/internal/filter"
	"github.com/pfrederiksen/racecal/internal/logger"
	"github.com/pfrederiksen/racecal/internal/pipeline"
	"github.com/pfrederiksen/racecal/internal/source"
)

// stubSource reads one event name per word from a per-year calendar page and
// gives each a Saturday practice and a Sunday race in March
type stubSource struct{}

func (stubSource) Slug() string { return "stub" }

func (stubSource) Series() *event.Series {
	return event.NewSeries("Stub Series", "OW", "https://stub.example", "https://stub.example/logo.png")
}

func (stubSource) Crawl(c *pipeline.Crawl) {
	body, ok := c.FetchCalendar(fmt.Sprintf("https://stub.example/%d", c.Year()), c.Year())
	if !ok {
		return
	}
	for i, name := range strings.Fields(body) {
		url := "https://stub.example/" + name
		if !c.Visit(url) {
			continue
		}
		sat := time.Date(c.Year(), 3, 15+7*i, 0, 0, 0, 0, time.UTC)
		evt := event.NewEvent(name, url, "Circuit "+name)
		evt.AddSession(&event.Session{Start: sat.Add(2 * time.Hour), Date: sat.Format(event.DateLayout), Name: "Practice 1", Type: event.SessionPractice})
		evt.AddSession(&event.Session{Start: sat.AddDate(0, 0, 1), TBD: true, Date: sat.AddDate(0, 0, 1).Format(event.DateLayout), Name: "Race", Type: event.SessionRace})
		evt.FillDatesFromSessions("")
		c.Add(evt)
	}
}

type result struct {
	code   int
	stdout string
	stderr string
}

func execute(t *testing.T, pages fetcher.Static, args ...string) result {
	t.Helper()
	var stdout, stderr bytes.Buffer
	a := &app{
		stdout:   &stdout,
		stderr:   &stderr,
		registry: source.NewRegistry(stubSource{}),
		newFetcher: func(*config.Config, *logger.Logger) fetcher.Fetcher {
			return pages
		},
		now: func() time.Time { return time.Date(2025, 2, 10, 9, 0, 0, 0, time.UTC) },
	}
	cmd := newRootCmd(a)
	cmd.SetArgs(args)
	code := run(cmd)
	return result{code: code, stdout: stdout.String(), stderr: stderr.String()}
}

var stubPages = fetcher.Static{
	"https://stub.example/2025": "bahrain jeddah",
	"https://stub.example/2024": "imola",
}

func TestCrawl_JSON(t *testing.T) {
	res := execute(t, stubPages, "crawl", "stub", "--format", "json")
	require.Equal(t, ExitSuccess, res.code, res.stderr)

	var got struct {
		Name   string `json:"name"`
		Events []struct {
			Name     string `json:"eventName"`
			Start    string `json:"eventStartDate"`
			End      string `json:"eventEndDate"`
			Sessions []struct {
				Datetime string `json:"sessionDatetime"`
				Name     string `json:"sessionName"`
			} `json:"sessions"`
		} `json:"events"`
	}
	require.NoError(t, json.Unmarshal([]byte(res.stdout), &got))

	assert.Equal(t, "Stub Series", got.Name)
	require.Len(t, got.Events, 2)
	assert.Equal(t, "bahrain", got.Events[0].Name)
	assert.Equal(t, "2025-03-15", got.Events[0].Start)
	assert.Equal(t, "2025-03-16", got.Events[0].End)
	require.Len(t, got.Events[0].Sessions, 2)
	assert.Equal(t, "2025-03-15T02:00:00.000Z", got.Events[0].Sessions[0].Datetime)
	assert.Equal(t, "TBD", got.Events[0].Sessions[1].Datetime)
}

func TestCrawl_Year(t *testing.T) {
	res := execute(t, stubPages, "crawl", "stub", "--format", "json", "--year", "2024")
	require.Equal(t, ExitSuccess, res.code, res.stderr)
	assert.Contains(t, res.stdout, `"eventName": "imola"`)
	assert.NotContains(t, res.stdout, "bahrain")
}

func TestCrawl_Text(t *testing.T) {
	res := execute(t, stubPages, "crawl", "stub")
	require.Equal(t, ExitSuccess, res.code, res.stderr)

	out := res.stdout
	assert.Contains(t, out, "Stub Series (OW)")
	assert.Contains(t, out, "bahrain - Circuit bahrain [2025-03-15 to 2025-03-16]")
	assert.Contains(t, out, "Practice 1")
	assert.Contains(t, out, "02:00")
	assert.Contains(t, out, "TBD")
	assert.Contains(t, out, "Total: 2 events, 4 sessions")
}

func TestCrawl_ICS(t *testing.T) {
	res := execute(t, stubPages, "crawl", "stub", "--format", "ICS")
	require.Equal(t, ExitSuccess, res.code, res.stderr)
	assert.True(t, strings.HasPrefix(res.stdout, "BEGIN:VCALENDAR"))
	assert.Contains(t, res.stdout, "SUMMARY:Stub Series - jeddah - Race")
}

func TestCrawl_Filters(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		events   []string
		sessions int
	}{
		{"type", []string{"--type", "race"}, []string{"bahrain", "jeddah"}, 2},
		{"from", []string{"--from", "2025-03-20"}, []string{"jeddah"}, 2},
		{"to", []string{"--to", "2025-03-15"}, []string{"bahrain"}, 1},
		{"dates", []string{"--dates", "Mar 20-31"}, []string{"jeddah"}, 2},
		{"name", []string{"--name", "JEDDAH"}, []string{"jeddah"}, 2},
		{"location", []string{"--location", "circuit bah"}, []string{"bahrain"}, 2},
		{"weekends", []string{"--weekends", "--type", "Practice"}, []string{"bahrain", "jeddah"}, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := append([]string{"crawl", "stub", "--format", "json"}, tt.args...)
			res := execute(t, stubPages, args...)
			require.Equal(t, ExitSuccess, res.code, res.stderr)

			var raw struct {
				Events []struct {
					Name     string            `json:"eventName"`
					Sessions []json.RawMessage `json:"sessions"`
				} `json:"events"`
			}
			require.NoError(t, json.Unmarshal([]byte(res.stdout), &raw))

			names := []string{}
			sessions := 0
			for _, e := range raw.Events {
				names = append(names, e.Name)
				sessions += len(e.Sessions)
			}
			assert.Equal(t, tt.events, names)
			assert.Equal(t, tt.sessions, sessions)
		})
	}
}

func TestCrawl_ConfigFilter(t *testing.T) {
	path := filepath.Join(t.TempDir(), "racecal.yaml")
	cfg := "logging:\n  level: error\nfilter:\n  types: [Race]\n  date_from: 2025-03-20\n"
	require.NoError(t, os.WriteFile(path, []byte(cfg), 0o600))

	tests := []struct {
		name    string
		args    []string
		events  []string
		session string
	}{
		{"config only", nil, []string{"jeddah"}, `"sessionName": "Race"`},
		{"flag type replaces config type", []string{"--type", "practice"}, []string{"jeddah"}, `"sessionName": "Practice 1"`},
		{"flag dates replace config dates", []string{"--from", "2025-03-01"}, []string{"bahrain", "jeddah"}, `"sessionName": "Race"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := append([]string{"--config", path, "crawl", "stub", "--format", "json"}, tt.args...)
			res := execute(t, stubPages, args...)
			require.Equal(t, ExitSuccess, res.code, res.stderr)

			var got struct {
				Events []struct {
					Name     string            `json:"eventName"`
					Sessions []json.RawMessage `json:"sessions"`
				} `json:"events"`
			}
			require.NoError(t, json.Unmarshal([]byte(res.stdout), &got))

			names := []string{}
			for _, e := range got.Events {
				names = append(names, e.Name)
				assert.Len(t, e.Sessions, 1)
			}
			assert.Equal(t, tt.events, names)
			assert.Contains(t, res.stdout, tt.session)
		})
	}
}

func TestCrawl_NoEvents(t *testing.T) {
	res := execute(t, fetcher.Static{}, "crawl", "stub", "--format", "json")
	assert.Equal(t, ExitNoEvents, res.code)
	assert.Contains(t, res.stdout, `"events": []`)
	assert.NotContains(t, res.stderr, "Error:")
}

func TestCrawl_FilteredToNothing(t *testing.T) {
	res := execute(t, stubPages, "crawl", "stub", "--name", "monaco")
	assert.Equal(t, ExitNoEvents, res.code)
	assert.Contains(t, res.stdout, "No events found.")
}

func TestCrawl_Errors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"unknown source", []string{"crawl", "nascar"}, "unknown source"},
		{"missing source", []string{"crawl"}, "accepts 1 arg"},
		{"bad format", []string{"crawl", "stub", "--format", "xml"}, "invalid format"},
		{"bad type", []string{"crawl", "stub", "--type", "warmup"}, filter.ErrUnknownType.Error()},
		{"bad date", []string{"crawl", "stub", "--from", "15/03/2025"}, filter.ErrBadDate.Error()},
		{"reversed range", []string{"crawl", "stub", "--from", "2025-04-01", "--to", "2025-03-01"}, "--to is before --from"},
		{"dates with from", []string{"crawl", "stub", "--dates", "March", "--from", "2025-03-01"}, "none of the others can be"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := execute(t, stubPages, tt.args...)
			assert.Equal(t, ExitError, res.code)
			assert.Contains(t, res.stderr, tt.want)
		})
	}
}

func TestSources(t *testing.T) {
	res := execute(t, stubPages, "sources")
	require.Equal(t, ExitSuccess, res.code, res.stderr)
	assert.Contains(t, res.stdout, "stub")
	assert.Contains(t, res.stdout, "Stub Series")
	assert.Contains(t, res.stdout, "https://stub.example")
}

func TestConfigFlag(t *testing.T) {
	dir := t.TempDir()

	good := filepath.Join(dir, "good.yaml")
	require.NoError(t, os.WriteFile(good, []byte("logging:\n  level: error\n"), 0o600))
	res := execute(t, stubPages, "--config", good, "crawl", "stub", "--format", "json")
	assert.Equal(t, ExitSuccess, res.code, res.stderr)
	assert.Empty(t, res.stderr, "error level suppresses info logs")

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("fetch:\n  timeout_sec: 0\n"), 0o600))
	res = execute(t, stubPages, "--config", bad, "sources")
	assert.Equal(t, ExitError, res.code)
	assert.Contains(t, res.stderr, "loading config")

	res = execute(t, stubPages, "--config", filepath.Join(dir, "missing.yaml"), "sources")
	assert.Equal(t, ExitError, res.code)
}

func TestVerboseLogsToStderr(t *testing.T) {
	res := execute(t, stubPages, "--verbose", "crawl", "stub", "--format", "json")
	require.Equal(t, ExitSuccess, res.code)
	assert.Contains(t, res.stderr, `"level":"DEBUG"`)
	assert.Contains(t, res.stderr, "crawl finished")
}
