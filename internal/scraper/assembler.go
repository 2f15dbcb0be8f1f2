package scraper

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"kanabus/internal/config"
	"kanabus/internal/domain"
	"kanabus/internal/holiday"
	"kanabus/internal/store"
	"kanabus/pkg/kanachu"
)

// Fallback supplies a timetable for a route whose scrape failed.
type Fallback interface {
	Load(route string) domain.RouteTimetable
}

// Publisher receives the artifacts after they are written to disk.
type Publisher interface {
	Publish(ctx context.Context, bundle domain.TimetableBundle, holidays domain.HolidayMap) error
}

type Options struct {
	Routes          []config.Route
	DayTypes        []domain.DayType
	Fetcher         kanachu.PageFetcher
	Strategy        kanachu.Strategy
	Fallback        Fallback
	Calendar        holiday.Calendar
	LookaheadMonths int
	TimetablePath   string
	HolidaysPath    string
	Publisher       Publisher
	Now             func() time.Time
}

// Assembler runs one scrape pass: every route is fetched and parsed in
// turn, failed routes are replaced with sample data, and both artifacts
// are written.
type Assembler struct {
	opts   Options
	logger *slog.Logger
}

func New(opts Options, logger *slog.Logger) *Assembler {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Calendar == nil {
		opts.Calendar = holiday.Rules{}
	}
	if len(opts.DayTypes) == 0 {
		opts.DayTypes = domain.DayTypes
	}
	return &Assembler{
		opts:   opts,
		logger: logger.With("component", "assembler"),
	}
}

// RouteResult is the outcome for one route. Err is set when the scrape
// failed and Timetable then holds the fallback data.
type RouteResult struct {
	Route      string
	Timetable  domain.RouteTimetable
	Err        error
	FromSample bool
}

type Report struct {
	RunID    string
	Routes   []RouteResult
	Holidays int
	Duration time.Duration
}

// Fallbacks counts the routes served from sample data.
func (r *Report) Fallbacks() int {
	n := 0
	for _, rr := range r.Routes {
		if rr.FromSample {
			n++
		}
	}
	return n
}

// Run performs the pass. Scrape failures never abort it; only a failure
// to write an artifact does, reported as *domain.SerializationError.
func (a *Assembler) Run(ctx context.Context) (*Report, error) {
	start := time.Now()
	runID := uuid.New().String()
	logger := a.logger.With("run_id", runID)

	logger.Info("starting scrape", "routes", len(a.opts.Routes), "strategy", a.opts.Strategy.Name())

	bundle, results := a.Assemble(ctx, logger)
	holidays := holiday.Generate(a.opts.Calendar, a.opts.Now().In(domain.JST), a.opts.LookaheadMonths)

	if err := store.WriteJSON(a.opts.TimetablePath, bundle); err != nil {
		logger.Error("failed to write timetable", "path", a.opts.TimetablePath, "error", err)
		return nil, err
	}
	logger.Info("saved timetable", "path", a.opts.TimetablePath)

	if err := store.WriteJSON(a.opts.HolidaysPath, holidays); err != nil {
		logger.Error("failed to write holidays", "path", a.opts.HolidaysPath, "error", err)
		return nil, err
	}
	logger.Info("saved holidays", "path", a.opts.HolidaysPath, "holidays", len(holidays))

	if a.opts.Publisher != nil {
		if err := a.opts.Publisher.Publish(ctx, bundle, holidays); err != nil {
			logger.Warn("failed to mirror artifacts", "error", err)
		}
	}

	report := &Report{
		RunID:    runID,
		Routes:   results,
		Holidays: len(holidays),
		Duration: time.Since(start),
	}

	logger.Info("scrape completed",
		"routes", len(results),
		"fallbacks", report.Fallbacks(),
		"holidays", report.Holidays,
		"duration_ms", report.Duration.Milliseconds(),
	)
	return report, nil
}

// Assemble scrapes every configured route sequentially and builds the
// bundle. It has no side effects beyond the fetches.
func (a *Assembler) Assemble(ctx context.Context, logger *slog.Logger) (domain.TimetableBundle, []RouteResult) {
	bundle := make(domain.TimetableBundle, len(a.opts.Routes))
	results := make([]RouteResult, 0, len(a.opts.Routes))

	for _, route := range a.opts.Routes {
		res := a.ScrapeRoute(ctx, route)
		if res.Err != nil {
			logger.Warn("scrape failed, using sample data",
				"route", route.Key,
				"kind", errorKind(res.Err),
				"error", res.Err,
			)
		} else {
			logger.Info("scraped route", "route", route.Key, "departures", res.Timetable.Count())
		}
		bundle[route.Key] = res.Timetable
		results = append(results, res)
	}
	return bundle, results
}

// ScrapeRoute returns live data for route, or the fallback timetable with
// Err set.
func (a *Assembler) ScrapeRoute(ctx context.Context, route config.Route) RouteResult {
	start := time.Now()

	rt, err := a.opts.Strategy.Scrape(ctx, a.opts.Fetcher, route.URL, a.opts.DayTypes)
	if err != nil {
		return RouteResult{
			Route:      route.Key,
			Timetable:  a.opts.Fallback.Load(route.Key),
			Err:        fmt.Errorf("scrape %s: %w", route.Key, err),
			FromSample: true,
		}
	}

	a.logger.Debug("route parsed", "route", route.Key, "duration_ms", time.Since(start).Milliseconds())
	return RouteResult{Route: route.Key, Timetable: rt.Normalize()}
}

func errorKind(err error) string {
	switch {
	case domain.IsFetch(err):
		return "fetch"
	case domain.IsParseMismatch(err):
		return "parse_mismatch"
	default:
		return "other"
	}
}
