package metrics

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Server exposes the Prometheus scrape endpoint on its own port so the
// API and worker processes share one scrape layout.
type Server struct {
	server *http.Server
	port   int
}

// NewServer builds the scrape server for the given port.
func NewServer(port int) *Server {
	return &Server{
		server: &http.Server{
			Addr:         fmt.Sprintf(":%d", port),
			Handler:      scrapeMux(),
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
		},
		port: port,
	}
}

func scrapeMux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/livez", livenessHandler)
	return mux
}

// Start blocks serving scrapes until Shutdown is called.
func (s *Server) Start() error {
	fmt.Printf("Starting metrics server on port %d\n", s.port)
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start metrics server: %w", err)
	}
	return nil
}

// Shutdown gracefully shuts down the metrics server
func (s *Server) Shutdown(ctx context.Context) error {
	fmt.Println("Shutting down metrics server...")
	return s.server.Shutdown(ctx)
}

// livenessHandler answers container liveness checks. Readiness lives on
// the main API port where the database is reachable.
func livenessHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}
