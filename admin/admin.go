// File: admin/admin.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

// Package admin serves the optional HTTP introspection surface: Prometheus
// metrics, control stats and the loop event journal. It runs on its own
// goroutines and only reads snapshots; it never touches descriptors owned by
// the main loop.
package admin

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/momentics/hioload-mux/api"
	"github.com/momentics/hioload-mux/control"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Sources is what the admin surface reads from.
type Sources struct {
	Control  api.Control
	Journal  *control.Journal
	Gatherer prometheus.Gatherer
}

// Server is the admin HTTP server.
type Server struct {
	src  Sources
	log  *slog.Logger
	http *http.Server
	ln   net.Listener
	done chan struct{}
}

// New builds an admin server. A nil logger means slog.Default().
func New(src Sources, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		src:  src,
		log:  logger.With("component", "admin"),
		done: make(chan struct{}),
	}
	s.http = &http.Server{
		Handler:           s.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

// Router returns the admin routes.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.NoCache)

	if s.src.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.src.Gatherer, promhttp.HandlerOpts{}))
	}
	r.Route("/debug", func(r chi.Router) {
		r.Get("/state", s.handleState)
		r.Get("/config", s.handleConfig)
		r.Get("/events", s.handleEvents)
	})
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	return r
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.src.Control.Stats())
}

func (s *Server) handleConfig(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.src.Control.GetConfig())
}

// handleEvents returns journal entries, optionally only those after ?since=N.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	if s.src.Journal == nil {
		writeJSON(w, http.StatusOK, []control.Entry{})
		return
	}
	entries := s.src.Journal.Snapshot()
	if v := r.URL.Query().Get("since"); v != "" {
		seq, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "since: " + err.Error()})
			return
		}
		entries = s.src.Journal.Since(seq)
	}
	if entries == nil {
		entries = []control.Entry{}
	}
	writeJSON(w, http.StatusOK, entries)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}

// Start listens on addr and serves in the background.
func (s *Server) Start(addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("admin listen %s: %w", addr, err)
	}
	s.ln = ln
	s.log.Info("admin listening", "addr", ln.Addr().String())
	go func() {
		defer close(s.done)
		if err := s.http.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log.Error("admin serve", "error", err)
		}
	}()
	return nil
}

// Addr returns the bound address, or "" before Start.
func (s *Server) Addr() string {
	if s.ln == nil {
		return ""
	}
	return s.ln.Addr().String()
}

// Close stops the admin server, waiting for in-flight requests until ctx
// expires.
func (s *Server) Close(ctx context.Context) error {
	if s.ln == nil {
		return nil
	}
	err := s.http.Shutdown(ctx)
	select {
	case <-s.done:
	case <-ctx.Done():
	}
	return err
}
