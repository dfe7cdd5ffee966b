// Package server assembles the HTTP router of the link shortener.
package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/cors"
	"go.uber.org/zap"

	"github.com/atinyakov/linkshort/internal/app/handler"
	"github.com/atinyakov/linkshort/internal/app/service"
	"github.com/atinyakov/linkshort/internal/middleware"
)

// Options tunes the router.
type Options struct {
	// AllowedOrigins for CORS. Empty means any origin.
	AllowedOrigins []string

	// Started is reported as the start of uptime by the health endpoint.
	Started time.Time
}

// Init builds the router serving the JSON API, redirects and health checks.
func Init(svc service.LinkServiceIface, logger *zap.Logger, opts Options) http.Handler {
	postHandler := handler.NewPost(svc, logger)
	getHandler := handler.NewGet(svc, logger)
	deleteHandler := handler.NewDelete(svc, logger)
	healthHandler := handler.NewHealth(opts.Started, logger)

	r := chi.NewRouter()
	r.Use(middleware.WithRequestID)
	r.Use(middleware.WithRequestLogging(logger))
	r.Use(middleware.WithGzip)

	r.Get("/getHealthz", healthHandler.Healthz)
	r.Get("/ping", getHandler.PingDB)

	r.Route("/api/links", func(r chi.Router) {
		r.Post("/", postHandler.Create)
		r.Get("/", getHandler.List)
		r.Get("/{code}", getHandler.ByCode)
		r.Delete("/{code}", deleteHandler.ByCode)
	})

	r.Get("/{code}", getHandler.Redirect)

	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "Not found", http.StatusNotFound)
	})

	origins := opts.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	c := cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete},
		AllowedHeaders: []string{"Content-Type", middleware.RequestIDHeader},
		ExposedHeaders: []string{middleware.RequestIDHeader},
	})

	return c.Handler(r)
}
