// File: server/options.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package server

import (
	"log/slog"
	"os"

	"github.com/prometheus/client_golang/prometheus"
)

// ServerOption customizes server initialization. Options run before any
// descriptor is created.
type ServerOption func(*Server)

// WithLogger routes status lines to logger.
func WithLogger(logger *slog.Logger) ServerOption {
	return func(s *Server) {
		s.cfg.Logger = logger
	}
}

// WithRegistry registers the loop metrics on reg.
func WithRegistry(reg *prometheus.Registry) ServerOption {
	return func(s *Server) {
		s.cfg.Registry = reg
	}
}

// WithControlSignal overrides the control signal (SIGHUP by default).
func WithControlSignal(sig os.Signal) ServerOption {
	return func(s *Server) {
		s.cfg.ControlSignal = sig
	}
}

// WithEvictOnReadError makes a read error drop the active connection instead
// of leaving it installed.
func WithEvictOnReadError(evict bool) ServerOption {
	return func(s *Server) {
		s.cfg.EvictOnReadError = evict
	}
}

// WithJournalCapacity bounds the event journal.
func WithJournalCapacity(n int) ServerOption {
	return func(s *Server) {
		s.cfg.JournalCapacity = n
	}
}

// WithLoopCPU pins the main loop thread to cpu; -1 disables pinning.
func WithLoopCPU(cpu int) ServerOption {
	return func(s *Server) {
		s.cfg.LoopCPU = cpu
	}
}
