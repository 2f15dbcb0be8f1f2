package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"kanabus/internal/domain"
	"kanabus/internal/store"
)

const (
	defaultDepartures = 2
	maxDepartures     = 10
)

// Mirror is the optional shared copy of the artifacts.
type Mirror interface {
	Timetable(ctx context.Context) (domain.TimetableBundle, bool, error)
	Holidays(ctx context.Context) (domain.HolidayMap, bool, error)
}

type TimetableHandler struct {
	snapshot *store.Snapshot
	mirror   Mirror
	logger   *slog.Logger
	now      func() time.Time
}

func NewTimetableHandler(snapshot *store.Snapshot, mirror Mirror, logger *slog.Logger) *TimetableHandler {
	return &TimetableHandler{
		snapshot: snapshot,
		mirror:   mirror,
		logger:   logger.With("component", "timetable_handler"),
		now:      time.Now,
	}
}

func (h *TimetableHandler) GetTimetable(w http.ResponseWriter, r *http.Request) {
	bundle := h.timetable(r.Context())
	if bundle == nil {
		respondError(w, http.StatusServiceUnavailable, "timetable not loaded")
		return
	}
	respondJSON(w, http.StatusOK, bundle)
}

func (h *TimetableHandler) GetHolidays(w http.ResponseWriter, r *http.Request) {
	holidays := h.holidays(r.Context())
	if holidays == nil {
		holidays = domain.HolidayMap{}
	}
	respondJSON(w, http.StatusOK, holidays)
}

type DeparturesResponse struct {
	Route      string             `json:"route"`
	DayType    domain.DayType     `json:"dayType"`
	Departures []domain.Departure `json:"departures"`
	ServerTime time.Time          `json:"serverTime"`
}

func (h *TimetableHandler) GetDepartures(w http.ResponseWriter, r *http.Request) {
	route := r.PathValue("route")
	if route == "" {
		respondError(w, http.StatusBadRequest, "missing route")
		return
	}

	limit := defaultDepartures
	if s := r.URL.Query().Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 || n > maxDepartures {
			respondError(w, http.StatusBadRequest, "invalid limit parameter: must be 1-10")
			return
		}
		limit = n
	}

	bundle := h.timetable(r.Context())
	if bundle == nil {
		respondError(w, http.StatusServiceUnavailable, "timetable not loaded")
		return
	}
	rt, ok := bundle[route]
	if !ok {
		respondError(w, http.StatusNotFound, "route not found")
		return
	}

	now := h.now().In(domain.JST)
	dayType := domain.DayTypeFor(now, h.holidays(r.Context()))
	departures := domain.Upcoming(rt[dayType], now.Hour()*60+now.Minute(), limit)
	if departures == nil {
		departures = []domain.Departure{}
	}

	respondJSON(w, http.StatusOK, DeparturesResponse{
		Route:      route,
		DayType:    dayType,
		Departures: departures,
		ServerTime: now,
	})
}

func (h *TimetableHandler) timetable(ctx context.Context) domain.TimetableBundle {
	if h.mirror != nil {
		bundle, ok, err := h.mirror.Timetable(ctx)
		if err != nil {
			h.logger.Warn("mirror read failed", "key", "timetable", "error", err)
		} else if ok {
			return bundle
		}
	}
	return h.snapshot.Timetable()
}

func (h *TimetableHandler) holidays(ctx context.Context) domain.HolidayMap {
	if h.mirror != nil {
		holidays, ok, err := h.mirror.Holidays(ctx)
		if err != nil {
			h.logger.Warn("mirror read failed", "key", "holidays", "error", err)
		} else if ok {
			return holidays
		}
	}
	return h.snapshot.Holidays()
}

type errorResponse struct {
	Error string `json:"error"`
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, errorResponse{Error: message})
}
