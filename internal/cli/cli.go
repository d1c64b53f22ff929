package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/pfrederiksen/racecal/internal/config"
	"github.com/pfrederiksen/racecal/internal/fetcher"
	"github.com/pfrederiksen/racecal/internal/filter"
	"github.com/pfrederiksen/racecal/internal/logger"
	"github.com/pfrederiksen/racecal/internal/pipeline"
	"github.com/pfrederiksen/racecal/internal/server"
	"github.com/pfrederiksen/racecal/internal/source"
)

const (
	ExitSuccess = 0
	ExitError   = 1
	// ExitNoEvents is returned by crawl when nothing survived the run and filters
	ExitNoEvents = 2
)

// errNoEvents makes Execute exit with ExitNoEvents without printing an error
var errNoEvents = errors.New("no events")

// app holds what the commands share. Tests replace the fetcher and clock.
type app struct {
	stdout io.Writer
	stderr io.Writer

	registry   *source.Registry
	newFetcher func(cfg *config.Config, log *logger.Logger) fetcher.Fetcher
	now        func() time.Time

	configPath string
	verbose    bool

	cfg *config.Config
	log *logger.Logger
}

func defaultApp() *app {
	return &app{
		stdout:   os.Stdout,
		stderr:   os.Stderr,
		registry: source.Default(),
		newFetcher: func(cfg *config.Config, log *logger.Logger) fetcher.Fetcher {
			return fetcher.New(cfg.FetchOptions(log))
		},
		now: time.Now,
	}
}

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	return newRootCmd(defaultApp())
}

func newRootCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "racecal",
		Short: "Crawl motorsport race calendars",
		Long: `A CLI tool that crawls the official calendars of Formula 1, IndyCar,
Formula E, Super Formula and the FIA WEC and reports every event with its
sessions as UTC instants.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
	}

	cmd.PersistentFlags().StringVar(&a.configPath, "config", "", "Path to a YAML config file")
	cmd.PersistentFlags().BoolVar(&a.verbose, "verbose", false, "Enable verbose logging")

	cmd.SetOut(a.stdout)
	cmd.SetErr(a.stderr)

	cmd.AddCommand(newCrawlCmd(a), newServeCmd(a), newSourcesCmd(a))
	return cmd
}

// setup loads the config and installs the logger before any subcommand runs
func (a *app) setup(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	a.cfg = cfg

	level := cfg.LogLevel()
	if a.verbose {
		level = logger.LevelDebug
	}
	a.log = logger.New(level, a.stderr)
	logger.SetDefault(a.log)
	return nil
}

type crawlOptions struct {
	year      int
	format    string
	types     string
	from      string
	to        string
	dates     string
	names     []string
	locations []string
	weekends  bool
}

func newCrawlCmd(a *app) *cobra.Command {
	opts := &crawlOptions{}
	cmd := &cobra.Command{
		Use:   "crawl <source>",
		Short: "Crawl one source and print its season",
		Long: fmt.Sprintf(`Crawl one source for a season and print the assembled events.

Available sources: %s`, strings.Join(a.registry.Slugs(), ", ")),
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runCrawl(cmd, args[0], opts)
		},
	}

	cmd.Flags().IntVar(&opts.year, "year", 0, "Season year (default: current year)")
	cmd.Flags().StringVar(&opts.format, "format", string(FormatText), "Output format: text, json or ics")
	cmd.Flags().StringVar(&opts.types, "type", "", "Comma-separated session types (e.g., Race,Qualifying)")
	cmd.Flags().StringVar(&opts.from, "from", "", "Earliest session date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&opts.to, "to", "", "Latest session date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&opts.dates, "dates", "", "Date range such as 'Mar 1-15' or 'March'")
	cmd.Flags().StringSliceVar(&opts.names, "name", nil, "Event name contains (repeatable)")
	cmd.Flags().StringSliceVar(&opts.locations, "location", nil, "Event location contains (repeatable)")
	cmd.Flags().BoolVar(&opts.weekends, "weekends", false, "Only sessions on Saturday or Sunday")

	cmd.MarkFlagsMutuallyExclusive("dates", "from")
	cmd.MarkFlagsMutuallyExclusive("dates", "to")
	return cmd
}

// buildFilter layers the crawl flags over base, the config file's filter.
// Flag types and dates replace the base ones; names and locations add to them.
func (o *crawlOptions) buildFilter(base *filter.Filter, now time.Time) (*filter.Filter, error) {
	f := base.Clone()

	if o.types != "" {
		types, err := filter.ParseTypes(o.types)
		if err != nil {
			return nil, err
		}
		f.Types = types
	}
	if o.dates != "" {
		from, to, err := filter.ParseDateRange(o.dates, now)
		if err != nil {
			return nil, err
		}
		f.DateFrom, f.DateTo = from, to
	}
	if o.from != "" {
		from, err := filter.ParseDate(o.from, false)
		if err != nil {
			return nil, err
		}
		f.DateFrom = from
	}
	if o.to != "" {
		to, err := filter.ParseDate(o.to, true)
		if err != nil {
			return nil, err
		}
		f.DateTo = to
	}
	if f.DateFrom != nil && f.DateTo != nil && f.DateTo.Before(*f.DateFrom) {
		return nil, fmt.Errorf("%w: --to is before --from", filter.ErrBadRange)
	}

	f.Names = append(f.Names, o.names...)
	f.Locations = append(f.Locations, o.locations...)
	f.WeekendsOnly = f.WeekendsOnly || o.weekends
	return f, nil
}

func (a *app) runCrawl(cmd *cobra.Command, slug string, opts *crawlOptions) error {
	src, err := a.registry.Get(slug)
	if err != nil {
		return err
	}

	format := OutputFormat(strings.ToLower(opts.format))
	if !format.Valid() {
		return fmt.Errorf("invalid format: %s (must be 'text', 'json' or 'ics')", opts.format)
	}

	now := a.now()
	f, err := opts.buildFilter(a.cfg.Filter, now)
	if err != nil {
		return fmt.Errorf("invalid filter: %w", err)
	}

	year := opts.year
	if year == 0 {
		year = now.Year()
	}

	a.log.Debug("crawling", logger.Fields{"source": src.Slug(), "year": year, "filter": f.String()})

	runner := pipeline.NewRunner(a.newFetcher(a.cfg, a.log), year, a.log)
	series := runner.Run(cmd.Context(), src)
	if !f.IsEmpty() {
		series = f.Apply(series)
	}

	if err := WriteOutput(a.stdout, series, format, now, a.verbose); err != nil {
		return fmt.Errorf("writing output: %w", err)
	}

	if len(series.Events) == 0 {
		return errNoEvents
	}
	return nil
}

func newServeCmd(a *app) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve crawls over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr != "" {
				a.cfg.Server.Addr = addr
			}

			registry := a.registry
			if len(a.cfg.Sources) > 0 {
				sub, err := registry.Subset(a.cfg.Sources)
				if err != nil {
					return fmt.Errorf("config sources: %w", err)
				}
				registry = sub
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			srv := server.NewServer(server.Options{
				Registry: registry,
				Fetcher:  a.newFetcher(a.cfg, a.log),
				Logger:   a.log,
				Now:      a.now,
			})
			return srv.ListenAndServe(ctx, a.cfg.Server.Addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default from config, :8080)")
	return cmd
}

func newSourcesCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "sources",
		Short: "List the available sources",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			WriteSources(a.stdout, a.registry.Sources())
			return nil
		},
	}
}

// Execute runs the CLI
func Execute() {
	os.Exit(run(NewRootCmd()))
}

func run(cmd *cobra.Command) int {
	err := cmd.Execute()
	switch {
	case err == nil:
		return ExitSuccess
	case errors.Is(err, errNoEvents):
		return ExitNoEvents
	default:
		fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", err)
		return ExitError
	}
}
