package sample

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"kanabus/internal/domain"
)

// Loader reads per-route snapshots from a bundled sample file. It never
// fails: anything missing degrades to an empty timetable.
type Loader struct {
	path   string
	logger *slog.Logger
}

func NewLoader(path string, logger *slog.Logger) *Loader {
	return &Loader{
		path:   path,
		logger: logger.With("component", "sample_loader"),
	}
}

// Load returns the sample timetable for route with all day types present.
func (l *Loader) Load(route string) domain.RouteTimetable {
	rt, err := l.load(route)
	if err != nil {
		l.logger.Warn("sample data unavailable, using empty timetable", "route", route, "error", err)
		return domain.EmptyRouteTimetable()
	}
	return rt.Normalize()
}

func (l *Loader) load(route string) (domain.RouteTimetable, error) {
	data, err := os.ReadFile(l.path)
	if err != nil {
		return nil, &domain.FallbackUnavailableError{Path: l.path, Route: route, Cause: err}
	}

	var bundle domain.TimetableBundle
	if err := json.Unmarshal(data, &bundle); err != nil {
		return nil, &domain.FallbackUnavailableError{Path: l.path, Route: route, Cause: fmt.Errorf("decode: %w", err)}
	}

	rt, ok := bundle[route]
	if !ok || rt == nil {
		return nil, &domain.FallbackUnavailableError{Path: l.path, Route: route}
	}
	return rt, nil
}
