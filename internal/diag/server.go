package diag

import (
	"context"
	"log"
	"net/http"

	"github.com/john/chatter/internal/chatlog"
)

// Server provides the health check endpoint and the chat log state dump.
type Server struct {
	server *http.Server
}

// New creates a new diagnostics server.
func New(addr string, manager *chatlog.Manager) *Server {
	mux := http.NewServeMux()

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	mux.HandleFunc("/logs", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		manager.Dump(w)
	})

	return &Server{
		server: &http.Server{
			Addr:    addr,
			Handler: mux,
		},
	}
}

// Start begins serving HTTP requests.
func (s *Server) Start() error {
	log.Printf("Diagnostics server listening on %s", s.server.Addr)
	if err := s.server.ListenAndServe(); err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	log.Println("Shutting down diagnostics server...")
	return s.server.Shutdown(ctx)
}
