package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/studypulse/ranking-server/pkg/httpserver"
)

const requestTimeout = 30 * time.Second

// NewRouter wires the ranking API routes with the shared middleware stack.
func NewRouter(h *Handlers, logger *zap.Logger, allowedOrigins []string) http.Handler {
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"http://localhost:3000"}
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Recoverer)
	r.Use(httpserver.LoggingMiddleware(logger))
	r.Use(middleware.Timeout(requestTimeout))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
		ExposedHeaders: []string{"Content-Length"},
		MaxAge:         300,
	}))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/v1", func(r chi.Router) {
		r.Route("/rankings", func(r chi.Router) {
			r.Get("/schools/{schoolID}", h.GetSchoolRanking)
			r.Get("/schools/{schoolID}/students/{studentID}", h.GetStudentSchoolRank)
			r.Get("/districts/{districtID}", h.GetDistrictRanking)
		})
		r.Route("/students/{studentID}", func(r chi.Router) {
			r.Get("/metrics", h.GetStudentMetrics)
			r.Get("/history", h.GetStudentHistory)
		})
		r.Route("/snapshots", func(r chi.Router) {
			r.Post("/", h.CreateSnapshots)
			r.Get("/{scopeType}/{scopeID}", h.GetScopeHistory)
		})
	})

	return r
}
