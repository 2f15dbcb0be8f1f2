package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"kanabus/internal/cache"
	"kanabus/internal/handler"
	"kanabus/internal/hub"
	"kanabus/internal/store"
	"kanabus/internal/watcher"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the viewer and the generated data over HTTP",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().String("output-dir", "", "directory the artifacts are read from (overrides OUTPUT_DIR)")
	serveCmd.Flags().String("addr", "", "listen address (overrides HTTP_ADDR)")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, logger, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("addr") {
		cfg.HTTPAddr, _ = cmd.Flags().GetString("addr")
	}

	logger.Info("starting kanabus server",
		"log_level", cfg.LogLevel.String(),
		"http_addr", cfg.HTTPAddr,
		"static_dir", cfg.StaticDir,
		"redis_enabled", cfg.RedisEnabled,
	)

	snapshot := store.NewSnapshot(cfg.TimetablePath(), cfg.HolidaysPath())
	wsHub := hub.NewHub(logger)
	watch := watcher.New(snapshot, wsHub, cfg.WatchInterval,
		[]string{cfg.TimetablePath(), cfg.HolidaysPath()}, logger)

	var mirror handler.Mirror
	if cfg.RedisEnabled {
		rc, err := cache.NewRedisCache(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, cfg.CacheTTL, logger)
		if err != nil {
			logger.Warn("redis unavailable, serving from disk", "addr", cfg.RedisAddr, "error", err)
		} else {
			defer rc.Close()
			mirror = rc
		}
	}

	timetableHandler := handler.NewTimetableHandler(snapshot, mirror, logger)
	wsHandler := handler.NewWSHandler(wsHub, snapshot, logger)
	healthHandler := handler.NewHealthHandler(watch, snapshot)
	metrics := handler.NewMetrics(wsHub, snapshot)

	api := http.NewServeMux()
	api.HandleFunc("GET /v1/timetable", timetableHandler.GetTimetable)
	api.HandleFunc("GET /v1/holidays", timetableHandler.GetHolidays)
	api.HandleFunc("GET /v1/departures/{route}", timetableHandler.GetDepartures)
	api.HandleFunc("GET /healthz", healthHandler.Healthz)
	api.HandleFunc("GET /readyz", healthHandler.Readyz)
	api.Handle("GET /metrics", metrics.Handler())
	api.Handle("/", handler.NewStaticHandler(cfg.StaticDir))

	mux := http.NewServeMux()
	mux.HandleFunc("/v1/ws", wsHandler.ServeWS)
	mux.Handle("/", handler.GzipMiddleware(handler.CORSMiddleware(api)))

	srv := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      metrics.Middleware(mux),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go wsHub.Run(ctx)
	go watch.Run(ctx)

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting HTTP server", "addr", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	var serveErr error
	select {
	case <-sigChan:
		logger.Info("shutdown signal received")
	case serveErr = <-errCh:
		logger.Error("HTTP server error", "error", serveErr)
	}

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown error", "error", err)
	}

	logger.Info("shutdown complete")
	return serveErr
}
