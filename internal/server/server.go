package server

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/strefethen/sonos-gateway-go/internal/api"
	"github.com/strefethen/sonos-gateway-go/internal/config"
	"github.com/strefethen/sonos-gateway-go/internal/db"
	"github.com/strefethen/sonos-gateway-go/internal/gateway"
	"github.com/strefethen/sonos-gateway-go/internal/history"
	"github.com/strefethen/sonos-gateway-go/internal/speakers"
	"github.com/strefethen/sonos-gateway-go/internal/statestream"
)

// responseWriter wraps http.ResponseWriter to capture status code
type responseWriter struct {
	http.ResponseWriter
	status int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.status = code
	rw.ResponseWriter.WriteHeader(code)
}

// requestLoggerMiddleware logs all incoming HTTP requests
func requestLoggerMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrapped := &responseWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(wrapped, r)
		log.Printf("%s %s %d %s", r.Method, r.URL.Path, wrapped.status, time.Since(start).Round(time.Millisecond))
	})
}

// NewHandler builds the HTTP handler and returns a shutdown function.
func NewHandler(cfg config.Config) (http.Handler, func(context.Context) error, error) {
	log.Printf("Using database: %s", cfg.SQLiteDBPath)
	dbPair, err := db.Init(cfg.SQLiteDBPath)
	if err != nil {
		return nil, nil, err
	}

	router := chi.NewRouter()
	router.Use(middleware.StripSlashes)
	router.Use(requestLoggerMiddleware)
	router.Use(api.RequestIDMiddleware)
	router.Use(api.RecovererMiddleware)

	registerHealthRoutes(router)

	gw := gateway.NewClient(
		cfg.SonosAPIURL,
		cfg.FileServerHost,
		cfg.PlaybackStrategy,
		time.Duration(cfg.SonosTimeoutMs)*time.Millisecond,
		nil,
	)

	historyService, err := history.NewService(dbPair, nil, cfg.HistoryRetentionDays, cfg.HistoryPruneSchedule)
	if err != nil {
		_ = dbPair.Close()
		return nil, nil, err
	}
	history.RegisterRoutes(router, historyService)
	historyService.StartPruneJob()

	speakerService := speakers.NewService(gw, historyService, nil)
	speakers.RegisterRoutes(router, speakerService)

	streamer := statestream.NewStreamer(gw, time.Duration(cfg.StatePushIntervalMs)*time.Millisecond, nil)
	statestream.RegisterRoutes(router, streamer)

	shutdown := func(ctx context.Context) error {
		historyService.StopPruneJob()
		return dbPair.Close()
	}

	return router, shutdown, nil
}

func registerHealthRoutes(router chi.Router) {
	router.Method(http.MethodGet, "/v1/health", api.Handler(func(w http.ResponseWriter, r *http.Request) error {
		response := map[string]any{
			"status":    "healthy",
			"service":   "sonos-gateway",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		}
		return api.WriteJSON(w, http.StatusOK, response)
	}))
	router.Method(http.MethodGet, "/v1/health/live", api.Handler(func(w http.ResponseWriter, r *http.Request) error {
		return api.WriteJSON(w, http.StatusOK, map[string]any{"status": "ok"})
	}))
	router.Method(http.MethodGet, "/v1/health/ready", api.Handler(func(w http.ResponseWriter, r *http.Request) error {
		return api.WriteJSON(w, http.StatusOK, map[string]any{"status": "ready"})
	}))
}
