// Package adminhttp serves health, readiness, and debug endpoints for
// operators. It is a small auxiliary HTTP surface bound to its own
// address, entirely separate from the UDP DogStatsD data plane.
package adminhttp

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/dogproxy/statsdproxy"
)

// StatsSource reports the current pipeline throughput snapshot. *statsdproxy.Server
// satisfies this.
type StatsSource interface {
	Stats() statsdproxy.Stats
}

// Server is a chi-routed HTTP server exposing /healthz, /readyz, and
// /debug/stats.
type Server struct {
	http   *http.Server
	source StatsSource
}

// New builds an admin HTTP server bound to addr, reporting stats from
// source. It does not start listening until Run is called.
func New(addr string, source StatsSource) *Server {
	s := &Server{source: source}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Get("/healthz", s.handleHealthz)
	r.Get("/readyz", s.handleReadyz)
	r.Get("/debug/stats", s.handleStats)

	s.http = &http.Server{Addr: addr, Handler: r}
	return s
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

func (s *Server) handleReadyz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ready"))
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(s.source.Stats())
}

// Run starts serving and blocks until the listener fails or Shutdown is
// called, matching the http.Server ErrServerClosed contract.
func (s *Server) Run() error {
	return s.http.ListenAndServe()
}

// Shutdown gracefully stops the admin server.
func (s *Server) Shutdown() error {
	return s.http.Shutdown(context.Background())
}
