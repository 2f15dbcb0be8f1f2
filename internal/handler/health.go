package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"kanabus/internal/store"
)

type ReadinessChecker interface {
	IsReady() bool
}

type HealthHandler struct {
	checker  ReadinessChecker
	snapshot *store.Snapshot
}

func NewHealthHandler(checker ReadinessChecker, s *store.Snapshot) *HealthHandler {
	return &HealthHandler{
		checker:  checker,
		snapshot: s,
	}
}

func (h *HealthHandler) Healthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

type ReadyResponse struct {
	Ready      bool      `json:"ready"`
	RouteCount int       `json:"routeCount"`
	LastUpdate time.Time `json:"lastUpdate"`
	ServerTime time.Time `json:"serverTime"`
}

func (h *HealthHandler) Readyz(w http.ResponseWriter, r *http.Request) {
	ready := h.checker.IsReady() && h.snapshot.IsLoaded()
	status := http.StatusOK
	if !ready {
		status = http.StatusServiceUnavailable
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(ReadyResponse{
		Ready:      ready,
		RouteCount: len(h.snapshot.Timetable()),
		LastUpdate: h.snapshot.LastUpdate(),
		ServerTime: time.Now(),
	})
}
