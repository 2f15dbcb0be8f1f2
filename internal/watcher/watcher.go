package watcher

import (
	"context"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"kanabus/internal/hub"
)

type Reloader interface {
	Reload() (bool, error)
}

type Broadcaster interface {
	Broadcast(n hub.Notification)
}

// Watcher polls the artifacts on disk and notifies connected browsers when
// a scrape run replaced them.
type Watcher struct {
	snapshot    Reloader
	broadcaster Broadcaster
	interval    time.Duration
	files       []string
	logger      *slog.Logger

	ready   bool
	readyMu sync.RWMutex
}

func New(snapshot Reloader, broadcaster Broadcaster, interval time.Duration, paths []string, logger *slog.Logger) *Watcher {
	files := make([]string, 0, len(paths))
	for _, p := range paths {
		files = append(files, filepath.Base(p))
	}
	return &Watcher{
		snapshot:    snapshot,
		broadcaster: broadcaster,
		interval:    interval,
		files:       files,
		logger:      logger.With("component", "watcher"),
	}
}

func (w *Watcher) Run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.check(false)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.check(true)
		}
	}
}

// check reloads the snapshot. The first pass only primes it so that a
// server start does not look like an update.
func (w *Watcher) check(notify bool) {
	changed, err := w.snapshot.Reload()
	if err != nil {
		w.logger.Warn("reload failed", "error", err)
		return
	}

	w.setReady(true)
	if !changed {
		return
	}

	w.logger.Info("artifacts reloaded", "notify", notify)
	if notify && w.broadcaster != nil {
		w.broadcaster.Broadcast(hub.Notification{
			Type:      hub.TypeDataUpdated,
			Files:     w.files,
			UpdatedAt: time.Now().UTC(),
		})
	}
}

func (w *Watcher) IsReady() bool {
	w.readyMu.RLock()
	defer w.readyMu.RUnlock()
	return w.ready
}

func (w *Watcher) setReady(ready bool) {
	w.readyMu.Lock()
	w.ready = ready
	w.readyMu.Unlock()
}
