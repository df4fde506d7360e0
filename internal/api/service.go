package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/dmdmdm-nz/linkmond/internal/netmon"
)

const shutdownTimeout = 5 * time.Second

// LinkSource is the part of the link monitor the API serves.
type LinkSource interface {
	Links() []netmon.LinkState
	Link(name string) (netmon.LinkState, bool)
	IsReady() bool
	Subscribe() (<-chan netmon.InterfaceEvent, func())
}

// Service represents the HTTP server for the API
type Service struct {
	address string
	port    int
	links   LinkSource
	metrics http.Handler

	listening chan struct{}
	done      chan struct{}
	closeOnce sync.Once

	mu       sync.Mutex
	listener net.Listener
}

// NewService creates the API. metrics may be nil, in which case /metrics
// is not served.
func NewService(host string, port int, links LinkSource, metrics http.Handler) *Service {
	return &Service{
		address:   host,
		port:      port,
		links:     links,
		metrics:   metrics,
		listening: make(chan struct{}),
		done:      make(chan struct{}),
	}
}

// Start listens and serves until ctx is cancelled.
func (s *Service) Start(ctx context.Context) error {
	addr := net.JoinHostPort(s.address, fmt.Sprint(s.port))
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("error listening on %s: %w", addr, err)
	}

	s.mu.Lock()
	s.listener = ln
	s.mu.Unlock()
	close(s.listening)

	server := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	log.WithField("address", ln.Addr().String()).Info("Starting LinkMonD API service")
	defer log.Info("Stopping LinkMonD API service")

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("error serving API: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.stopStreams()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Warn("API server did not shut down cleanly")
	}
	return nil
}

// Listening is closed once the listener is bound.
func (s *Service) Listening() <-chan struct{} {
	return s.listening
}

// Addr returns the bound address, or nil before Listening is closed.
func (s *Service) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Close ends every open link stream.
func (s *Service) Close() error {
	s.stopStreams()
	return nil
}

func (s *Service) stopStreams() {
	s.closeOnce.Do(func() { close(s.done) })
}

// Handler returns the API routes.
func (s *Service) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			w.WriteHeader(http.StatusOK)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	})
	mux.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			if !s.links.IsReady() {
				writeJSON(w, http.StatusServiceUnavailable, StatusResponse{Status: "waiting for link snapshot"})
				return
			}
			writeJSON(w, http.StatusOK, StatusResponse{Status: "ready"})
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	})
	mux.HandleFunc("GET /links", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, s.links.Links())
	})
	mux.HandleFunc("GET /links/{name}", func(w http.ResponseWriter, r *http.Request) {
		name := r.PathValue("name")
		link, ok := s.links.Link(name)
		if !ok {
			http.Error(w, fmt.Sprintf("No such interface: %s", name), http.StatusNotFound)
			return
		}
		writeJSON(w, http.StatusOK, link)
	})
	mux.HandleFunc("GET /ws/links", func(w http.ResponseWriter, r *http.Request) {
		StreamLinks(s, w, r)
	})
	if s.metrics != nil {
		mux.Handle("GET /metrics", s.metrics)
	}
	return mux
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Add("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.WithError(err).Debug("Failed to encode response")
	}
}
