package server

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/dgnsrekt/notifications-monitor/internal/connector"
)

// Monitor is the connector surface exposed over HTTP.
type Monitor interface {
	Status() connector.Status
	StartCycle() bool
}

// NewRouter builds the HTTP surface. wsHandler may be nil when the websocket
// sink is disabled.
func NewRouter(monitor Monitor, wsHandler http.Handler, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(zapLoggerMiddleware(logger))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Get("/status", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, monitor.Status())
	})

	r.Post("/trigger", func(w http.ResponseWriter, r *http.Request) {
		if !monitor.StartCycle() {
			writeJSON(w, http.StatusConflict, map[string]string{"error": connector.ErrBusy.Error()})
			return
		}
		writeJSON(w, http.StatusAccepted, map[string]string{"status": "cycle started"})
	})

	if wsHandler != nil {
		r.Handle("/ws", wsHandler)
	}

	return r
}

func zapLoggerMiddleware(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			logger.Debug("request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.String("requestID", middleware.GetReqID(r.Context())),
			)
			next.ServeHTTP(w, r)
		})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
