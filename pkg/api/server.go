/*
blobcaskd REST API

This is the blob store REST API for blobcaskd.

Version: 1.0.0
Host: localhost:8080
BasePath: /api/v1

SecurityDefinitions:
  - ApiKeyAuth:
    type: apiKey
    in: header
    name: X-API-Key

swagger:meta
*/
package api

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"
)

// NewRouter assembles the full blobcaskd HTTP router: CORS, request
// logging/recovery, Prometheus metrics, API-key-gated blob routes, and
// unprotected health/metrics/swagger routes.
func NewRouter(blobs BlobStore, config ServerConfig, metrics *Metrics) chi.Router {
	server := NewServer(blobs, config, metrics)
	go server.startMetricsUpdater()

	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Handle("/metrics", promhttp.Handler())
	r.Get("/health", metrics.InstrumentHandler("GET", "/health", server.handleHealth))

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(metrics.InstrumentAuthMiddleware(apiKeyMiddleware(config.APIKey)))

		r.Put("/blobs", metrics.InstrumentHandler("PUT", "/api/v1/blobs", server.handlePut))
		r.Get("/blobs/{id}", metrics.InstrumentHandler("GET", "/api/v1/blobs/{id}", server.handleGet))
		r.Delete("/blobs/{id}", metrics.InstrumentHandler("DELETE", "/api/v1/blobs/{id}", server.handleDelete))
		r.Get("/blobs/{id}/header", metrics.InstrumentHandler("GET", "/api/v1/blobs/{id}/header", server.handleHeader))

		r.Get("/stats", metrics.InstrumentHandler("GET", "/api/v1/stats", server.handleStats))
	})

	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL(fmt.Sprintf("http://localhost:%d/swagger/doc.json", config.Port)),
	))

	return r
}

// StartServer starts the HTTP server with all routes configured.
func StartServer(blobs BlobStore, config ServerConfig) error {
	metrics := NewMetrics()
	r := NewRouter(blobs, config, metrics)

	addr := fmt.Sprintf(":%d", config.Port)
	fmt.Printf("Starting blobcaskd REST API server on %s\n", addr)
	fmt.Printf("Metrics available at: http://localhost:%d/metrics\n", config.Port)
	return http.ListenAndServe(addr, r)
}
