// Package server exposes the cover matching pipeline over HTTP: a streaming
// SSE endpoint for processing queries plus health and library listing.
package server

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/ryanseay/covermatch/internal/cache"
	"github.com/ryanseay/covermatch/pkg/covermatch"
)

// Server wires the pipeline, the optional result cache, and the HTTP layer.
type Server struct {
	pipeline *covermatch.Pipeline
	results  *cache.ResultCache
	log      covermatch.Logger

	port           int
	allowedOrigins []string
}

// Config holds the HTTP server settings.
type Config struct {
	Port           int
	AllowedOrigins []string
}

// New builds a Server. The result cache may be nil to disable caching.
func New(pipeline *covermatch.Pipeline, results *cache.ResultCache, log covermatch.Logger, cfg Config) *Server {
	return &Server{
		pipeline:       pipeline,
		results:        results,
		log:            log,
		port:           cfg.Port,
		allowedOrigins: cfg.AllowedOrigins,
	}
}

// Router assembles the route table.
func (s *Server) Router() http.Handler {
	r := mux.NewRouter()

	r.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/api/process", s.handleProcess).Methods(http.MethodPost, http.MethodOptions)
	r.HandleFunc("/api/library", s.handleLibrary).Methods(http.MethodGet)

	r.Use(corsMiddleware(s.allowedOrigins))
	return r
}

// Start runs the HTTP server until it fails.
func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.port)
	s.log.Infof("covermatch server listening on %s (%d reference tracks)",
		addr, s.pipeline.Library().Len())
	return http.ListenAndServe(addr, s.Router())
}

// corsMiddleware adds CORS headers and answers preflight requests.
func corsMiddleware(allowedOrigins []string) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")

			allowed := false
			if len(allowedOrigins) == 0 || (len(allowedOrigins) == 1 && allowedOrigins[0] == "*") {
				w.Header().Set("Access-Control-Allow-Origin", "*")
				allowed = true
			} else {
				for _, o := range allowedOrigins {
					if strings.EqualFold(o, origin) {
						w.Header().Set("Access-Control-Allow-Origin", origin)
						allowed = true
						break
					}
				}
			}

			if allowed {
				w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
				w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
				w.Header().Set("Access-Control-Max-Age", "3600")
			}

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
