package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/MikeSquared-Agency/Suitability/internal/hermes"
	"github.com/MikeSquared-Agency/Suitability/internal/scoring"
	"github.com/MikeSquared-Agency/Suitability/internal/store"
)

// NewRouter builds the public API. s and h may be nil, in which case
// evaluation history and event publishing are off.
func NewRouter(sc *scoring.Scorer, rl *scoring.Reloader, s store.Store, h hermes.Client, adminToken string, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.RequestID)
	r.Use(RequestLogger(logger))
	r.Use(RateLimitMiddleware(600))

	evaluate := NewEvaluateHandler(sc, s, h, logger)
	rules := NewRuleBaseHandler(sc, rl)
	evaluations := NewEvaluationsHandler(s)

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/evaluate", evaluate.Evaluate)
		r.Post("/evaluate/batch", evaluate.Batch)
		r.Post("/candidates/score", evaluate.Candidates)
		r.Get("/explain", evaluate.Explain)

		r.Get("/rulebase", rules.Get)
		r.Get("/evaluations", evaluations.List)
		r.Get("/evaluations/{id}", evaluations.Get)

		r.Group(func(r chi.Router) {
			r.Use(AdminAuthMiddleware(adminToken))
			r.Put("/rulebase", rules.Put)
		})
	})

	return r
}

func NewMetricsRouter() http.Handler {
	r := chi.NewRouter()
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.Handler())
	return r
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
