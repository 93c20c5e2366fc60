// Package server exposes the raster tile priority queue over HTTP for
// debugging, metrics scraping, and benchmarking — grounded on the
// teacher's pkg/server/rest router/handler/metrics layering.
package server

import (
	"net/http/pprof"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/tileforge/rasterpq/internal/tilestore"
)

// NewRouter assembles the chi router the same way cmd/auto/main.go
// assembles its router: request logger, CORS, prometheus middleware,
// route groups, pprof, and swagger.
func NewRouter(m *Metrics, store *tilestore.Store) *chi.Mux {
	h := NewQueueHandler(m, store)

	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(PromHTTPMiddleware(m))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"https://*", "http://*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))

	Router(r, h)

	r.Get("/metrics", promhttp.Handler().ServeHTTP)
	r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))

	r.HandleFunc("/debug/pprof/*", pprof.Index)
	r.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
	r.HandleFunc("/debug/pprof/profile", pprof.Profile)
	r.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
	r.HandleFunc("/debug/pprof/trace", pprof.Trace)

	return r
}
