// Package api serves the read-only dashboard endpoints over the metadata
// store and object listing.
package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	json "github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/hozaki45/NEXUS-ENA/internal/storage"
)

// apiVersion is reported by the health endpoint.
const apiVersion = "1.0.0"

// availableEndpoints is the route list returned with 404 responses.
var availableEndpoints = []string{
	"/health",
	"/api/data-sources",
	"/api/dashboard/summary",
	"/api/data-sources/{source}/recent",
	"/api/files",
}

// Server handles the dashboard's read-only HTTP queries.
type Server struct {
	objects     storage.ObjectStore
	metadata    storage.MetadataStore
	bucket      string
	environment string
	log         zerolog.Logger
	router      chi.Router
	now         func() time.Time
}

// NewServer wires the API server from explicit dependencies.
func NewServer(objects storage.ObjectStore, metadata storage.MetadataStore, bucket, environment string, log zerolog.Logger) *Server {
	s := &Server{
		objects:     objects,
		metadata:    metadata,
		bucket:      bucket,
		environment: environment,
		log:         log,
		now:         time.Now,
	}
	s.router = s.routes()
	return s
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()

	r.Use(s.requestLogger)
	r.Use(preflight)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type", "Authorization", "X-Amz-Date", "X-Api-Key", "X-Amz-Security-Token"},
		MaxAge:         86400,
	}))

	r.Get("/health", s.handleHealth)
	r.Get("/api/data-sources", s.handleDataSources)
	r.Get("/api/dashboard/summary", s.handleDashboardSummary)
	r.Get("/api/data-sources/{source}/recent", s.handleRecent)
	r.Get("/api/files", s.handleFiles)

	r.NotFound(s.handleNotFound)
	r.MethodNotAllowed(s.handleNotFound)

	return r
}

// preflight answers OPTIONS on any path with permissive CORS headers.
func preflight(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodOptions {
			h := w.Header()
			h.Set("Access-Control-Allow-Origin", "*")
			h.Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
			h.Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Amz-Date, X-Api-Key, X-Amz-Security-Token")
			h.Set("Access-Control-Max-Age", "86400")
			writeJSON(w, http.StatusOK, map[string]any{"message": "CORS preflight successful"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Dur("elapsed", time.Since(start)).
			Msg("request handled")
	})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// writeError sends the structured error body every failure path returns.
func (s *Server) writeError(w http.ResponseWriter, status int, message string, err error) {
	s.log.Error().Err(err).Str("error", message).Msg("request failed")
	writeJSON(w, status, map[string]any{
		"error":   message,
		"message": err.Error(),
	})
}

func (s *Server) handleNotFound(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusNotFound, map[string]any{
		"error":               "Endpoint not found",
		"path":                r.URL.Path,
		"method":              r.Method,
		"available_endpoints": availableEndpoints,
	})
}
