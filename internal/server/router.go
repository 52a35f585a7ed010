package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/kraenzle-ritter/resources/internal/server/handlers"
	"github.com/kraenzle-ritter/resources/internal/server/middleware"
	"github.com/kraenzle-ritter/resources/internal/server/response"
)

// setupRouter creates the HTTP handler with routes and middleware.
func (s *Server) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(
		middleware.Recovery(s.logger),
		middleware.RequestID,
		middleware.Logger(s.logger),
		chimiddleware.StripSlashes,
	)

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		response.NotFound(w, "Not found", "")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		response.MethodNotAllowed(w, r.Method)
	})

	s.registerRoutes(r, handlers.New(s.client, s.config.Version))

	return r
}

// registerRoutes registers all HTTP routes.
func (s *Server) registerRoutes(r chi.Router, h *handlers.Handlers) {
	// Favicon handler (return 204 No Content to avoid 404 logs)
	r.Get("/favicon.ico", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	r.Get("/health", h.HandleHealth)

	if s.config.MetricsEnabled && s.gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}

	r.Route(s.config.PathPrefix, func(r chi.Router) {
		r.Get("/health", h.HandleHealth)

		r.Get("/providers", h.HandleListProviders)
		r.Get("/providers/{key}", h.HandleGetProvider)

		r.Get("/resolve/{provider}/{id}", h.HandleResolve)
		r.Get("/search/{provider}", h.HandleSearch)

		r.Route("/subjects/{type}/{id}", func(r chi.Router) {
			r.Get("/resources", h.HandleListResources)
			r.Post("/resources", h.HandleSaveResource)
			r.Post("/sync/{provider}", h.HandleSync)
		})

		r.Delete("/resources/{rid}", h.HandleDeleteResource)
	})
}
