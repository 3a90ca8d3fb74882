package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/wonny/tokenscout/internal/api/handlers"
	"github.com/wonny/tokenscout/pkg/logger"
)

// NewRouter creates and configures the HTTP router.
// metricsHandler may be nil when metrics are disabled.
// ⭐ SSOT: 라우팅 설정은 이 함수에서만
func NewRouter(h *handlers.ScoutHandler, metricsHandler http.Handler, log *logger.Logger) http.Handler {
	r := mux.NewRouter()

	// Health check
	r.HandleFunc("/health", healthCheckHandler).Methods("GET")
	if metricsHandler != nil {
		r.Handle("/metrics", metricsHandler).Methods("GET")
	}

	// Full paths on the root router; a PathPrefix subrouter answers a
	// method mismatch with 404 instead of 405.

	// Pipeline phases
	r.HandleFunc("/api/discover", h.Discover).Methods("POST")
	r.HandleFunc("/api/screen", h.Screen).Methods("POST")
	r.HandleFunc("/api/evaluate/{id}", h.Evaluate).Methods("POST")
	r.HandleFunc("/api/dd/{id}", h.RunDD).Methods("POST")
	r.HandleFunc("/api/alerts", h.IngestAlert).Methods("POST")

	// Watchlist & execution hand-off
	r.HandleFunc("/api/watchlist", h.GetWatchlist).Methods("GET")
	r.HandleFunc("/api/watchlist", h.AddToWatchlist).Methods("POST")
	r.HandleFunc("/api/watchlist/{id}", h.RemoveFromWatchlist).Methods("DELETE")
	r.HandleFunc("/api/trade-ready", h.GetTradeReady).Methods("GET")

	// Session
	r.HandleFunc("/api/session", h.GetSession).Methods("GET")
	r.HandleFunc("/api/config", h.GetConfig).Methods("GET")
	r.HandleFunc("/api/config", h.UpdateConfig).Methods("PUT")
	r.HandleFunc("/api/snapshot", h.GetSnapshot).Methods("GET")
	r.HandleFunc("/api/snapshot", h.SaveSnapshot).Methods("POST")
	r.HandleFunc("/api/reset", h.Reset).Methods("POST")
	r.HandleFunc("/api/reports", h.GetReports).Methods("GET")

	// Apply middleware
	r.Use(loggingMiddleware(log))
	r.Use(recoveryMiddleware(log))

	return r
}

// healthCheckHandler returns server health status
func healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"status":  "ok",
		"service": "tokenscout-api",
	})
}

// statusRecorder captures the response status for logging
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

// loggingMiddleware logs HTTP requests
func loggingMiddleware(log *logger.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

			next.ServeHTTP(rec, r)

			log.WithFields(map[string]interface{}{
				"method":   r.Method,
				"path":     r.URL.Path,
				"status":   rec.status,
				"duration": time.Since(start),
			}).Debug("HTTP request")
		})
	}
}

// recoveryMiddleware recovers from panics
func recoveryMiddleware(log *logger.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					log.WithFields(map[string]interface{}{
						"error": err,
						"path":  r.URL.Path,
					}).Error("Panic recovered")

					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					json.NewEncoder(w).Encode(map[string]interface{}{
						"success": false,
						"error": map[string]string{
							"code":    "INTERNAL",
							"message": "Internal server error",
						},
					})
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}
