// File: server/server.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

// Package server implements the hioload-mux single-slot TCP server: one
// listener, at most one active connection, and a control signal delivered
// through a latch without racing the readiness wait.
package server

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/momentics/hioload-mux/adapters"
	"github.com/momentics/hioload-mux/api"
	"github.com/momentics/hioload-mux/control"
	"github.com/momentics/hioload-mux/internal/concurrency"
	"github.com/momentics/hioload-mux/internal/transport"
	"github.com/momentics/hioload-mux/reactor"
	"github.com/prometheus/client_golang/prometheus"
)

// Server owns the listener, the connection slot, the readiness multiplexer
// and the signal latch. Everything except Shutdown and the read-only
// accessors belongs to the goroutine that calls Run.
type Server struct {
	cfg     *Config
	log     *slog.Logger
	control *adapters.ControlAdapter
	metrics *control.MetricsRegistry
	journal *control.Journal

	mux     reactor.Multiplexer
	latch   *concurrency.Latch
	signals *signalForwarder
	ln      *transport.Listener
	slot    Slot

	watch, ready reactor.FDSet
	buf          []byte

	mu       sync.Mutex // serializes lifecycle transitions
	state    atomic.Int32
	stopping atomic.Bool
}

var _ api.GracefulShutdown = (*Server)(nil)

// New performs the startup phase: it creates the multiplexer, starts catching
// the control signal, and binds the listener. Signals delivered between New
// and Run stay latched and are reported by the first loop iteration.
//
// Any failure releases what was acquired and returns an error wrapping
// api.ErrStartup.
func New(cfg *Config, opts ...ServerOption) (*Server, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	c := *cfg
	s := &Server{cfg: &c}
	for _, opt := range opts {
		opt(s)
	}
	s.log = s.cfg.Logger
	if s.log == nil {
		s.log = slog.Default()
	}
	s.log = s.log.With("component", "server")
	if s.cfg.ReadBufferSize <= 0 {
		s.cfg.ReadBufferSize = DefaultConfig().ReadBufferSize
	}
	s.buf = make([]byte, s.cfg.ReadBufferSize)
	s.state.Store(int32(StateStartup))

	s.control = adapters.NewControlAdapter(s.cfg.Registry, s.cfg.JournalCapacity)
	s.metrics = s.control.Metrics()
	s.journal = s.control.Journal()

	if err := s.startup(); err != nil {
		s.state.Store(int32(StateTerminated))
		s.log.Error("startup failed", "error", err)
		return nil, err
	}
	s.publish()
	return s, nil
}

func (s *Server) startup() error {
	if s.cfg.ControlSignal == nil {
		return fmt.Errorf("%w: control signal: %w", api.ErrStartup, api.ErrInvalidArgument)
	}

	mux, err := reactor.New()
	if err != nil {
		return fmt.Errorf("%w: multiplexer: %w", api.ErrStartup, err)
	}
	s.mux = mux
	s.latch = concurrency.NewLatch(mux)
	s.signals = forwardSignals(s.latch, s.cfg.ControlSignal)

	ln, err := transport.Listen(transport.ListenConfig{
		Host:      s.cfg.Host,
		Port:      s.cfg.Port,
		Backlog:   s.cfg.Backlog,
		ReuseAddr: true,
	})
	if err != nil {
		s.signals.stop()
		s.mux.Close()
		return api.NewError(api.ErrCodeStartup, "listener", fmt.Errorf("%w: %w", api.ErrStartup, err)).
			WithContext("host", s.cfg.Host).
			WithContext("port", s.cfg.Port)
	}
	s.ln = ln

	port := ln.Addr().Port()
	s.log.Info("server is listening", "port", port, "addr", ln.Addr().String(), "backlog", ln.Backlog())
	s.journal.Record(control.Entry{Kind: control.KindListening, Peer: ln.Addr().String()})
	return nil
}

// publish exposes the effective configuration and live probes.
func (s *Server) publish() {
	s.control.SetConfig(map[string]any{
		"listen.addr":         s.ln.Addr().String(),
		"listen.port":         int(s.ln.Addr().Port()),
		"listen.backlog":      s.ln.Backlog(),
		"read.buffer_size":    s.cfg.ReadBufferSize,
		"control.signal":      s.cfg.ControlSignal.String(),
		"evict_on_read_error": s.cfg.EvictOnReadError,
		"loop.cpu":            s.cfg.LoopCPU,
	})
	s.control.RegisterDebugProbe("server.state", func() any { return s.State().String() })
	s.control.RegisterDebugProbe("slot", func() any { return s.slot.Info() })
	s.control.RegisterDebugProbe("latch", func() any { return s.LatchStats() })
}

// Addr returns the bound listener address.
func (s *Server) Addr() string {
	return s.ln.Addr().String()
}

// Port returns the bound listener port.
func (s *Server) Port() int {
	return int(s.ln.Addr().Port())
}

// State returns the current lifecycle state.
func (s *Server) State() State {
	return State(s.state.Load())
}

// SlotInfo describes the active connection, if any.
func (s *Server) SlotInfo() SlotInfo {
	return s.slot.Info()
}

// Control returns the control plane (config, stats, reload hooks, probes).
func (s *Server) Control() *adapters.ControlAdapter {
	return s.control
}

// Journal returns the loop event journal.
func (s *Server) Journal() *control.Journal {
	return s.journal
}

// Gatherer exposes the loop metrics to Prometheus exporters.
func (s *Server) Gatherer() prometheus.Gatherer {
	return s.metrics.Gatherer()
}

// LatchStats reports control signal accounting.
type LatchStats struct {
	Raised  uint64 `json:"raised"`
	Drained uint64 `json:"drained"`
	Pending uint64 `json:"pending"`
}

// LatchStats returns the signal latch counters.
func (s *Server) LatchStats() LatchStats {
	return LatchStats{
		Raised:  s.latch.Raised(),
		Drained: s.latch.Drained(),
		Pending: s.latch.Pending(),
	}
}

// Shutdown asks the server to stop. A running loop is woken and tears down on
// its own goroutine; a server that never ran is torn down immediately.
// Shutdown is safe to call from any goroutine, any number of times.
func (s *Server) Shutdown() {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch s.State() {
	case StateStartup:
		s.stopping.Store(true)
		s.teardown()
	case StateRunning:
		s.stopping.Store(true)
		if err := s.mux.Wake(); err != nil {
			s.log.Warn("wake failed", "error", err)
		}
	}
}

// teardown is the SHUTTING_DOWN phase: close the connection and listener,
// stop catching the signal and release the multiplexer.
func (s *Server) teardown() {
	s.state.Store(int32(StateShuttingDown))

	var errs []error
	if c := s.slot.Current(); c != nil {
		s.recordEviction(c, control.EvictShutdown)
		errs = append(errs, s.slot.Clear())
	}
	errs = append(errs, s.ln.Close())
	s.signals.stop()
	errs = append(errs, s.mux.Close())
	s.metrics.SlotOccupied.Set(0)

	if err := errors.Join(errs...); err != nil {
		s.log.Warn("teardown", "error", err)
	}
	s.journal.Record(control.Entry{Kind: control.KindStopped})
	s.log.Info("server stopped")
	s.state.Store(int32(StateTerminated))
}
