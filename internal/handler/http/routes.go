package http

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func (h *Handler) Init() *chi.Mux {
	router := chi.NewRouter()
	router.Use(middleware.Recoverer)
	router.Use(h.withTraceID)
	router.Use(h.withLogging)

	router.Get("/api/version", h.getVersion)

	// JSON API, compressed when the caller accepts gzip
	router.Group(func(r chi.Router) {
		r.Use(withGZip)

		r.Get("/api/sync/status", h.getSyncStatus)
		r.Post("/api/sync/refresh", h.refreshSync)
		r.Get("/api/sync/queue", h.getQueue)
		r.Get("/api/sync/dead-letters", h.getDeadLetters)
		r.Post("/api/sync/dead-letters/{entityType}/{id}/requeue", h.requeueDeadLetter)
	})

	// promhttp negotiates its own compression
	router.Method("GET", "/metrics", promhttp.HandlerFor(h.gatherer, promhttp.HandlerOpts{}))

	router.MethodNotAllowed(CheckHTTPMethod(router))

	return router
}
