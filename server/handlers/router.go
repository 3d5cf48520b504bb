package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/sirupsen/logrus"

	"github.com/nnnkkk7/sql-playground/server/apierror"
)

// RouterConfig holds the handlers and HTTP policies of the API.
type RouterConfig struct {
	Query  *QueryHandler
	Health *HealthHandler
	Logger logrus.FieldLogger

	// IncludeDetails attaches driver messages to error responses.
	IncludeDetails bool
	// CORSOrigins is the origin allow-list. "*" allows any origin.
	CORSOrigins []string
	// RateLimitRequests per RateLimitWindow and client IP, applied under /api.
	RateLimitRequests int
	RateLimitWindow   time.Duration
}

// NewRouter builds the HTTP API. Every route is served both at the root and under /api;
// only the /api variants are rate limited.
func NewRouter(cfg RouterConfig) http.Handler {
	log := cfg.Logger
	if log == nil {
		log = logrus.StandardLogger()
	}
	ew := errorWriter{log: log, details: cfg.IncludeDetails}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RequestLogger(&middleware.DefaultLogFormatter{Logger: log, NoColor: true}))
	r.Use(ew.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
		AllowedHeaders: []string{"Content-Type"},
		ExposedHeaders: []string{QueryIDHeader},
		MaxAge:         300,
	}))

	r.NotFound(ew.NotFound)
	r.MethodNotAllowed(ew.NotFound)

	routes := func(r chi.Router) {
		r.Post("/query", cfg.Query.ExecuteQuery)
		r.Get("/health", cfg.Health.Check)
	}

	routes(r)
	r.Route("/api", func(r chi.Router) {
		if cfg.RateLimitRequests > 0 && cfg.RateLimitWindow > 0 {
			r.Use(httprate.Limit(
				cfg.RateLimitRequests,
				cfg.RateLimitWindow,
				httprate.WithKeyByRealIP(),
				httprate.WithLimitHandler(func(w http.ResponseWriter, req *http.Request) {
					ew.send(w, req, apierror.NewRateLimitedError())
				}),
			))
		}
		routes(r)
	})

	return r
}
