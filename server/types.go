// File: server/types.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package server

import (
	"log/slog"
	"os"
	"syscall"

	"github.com/momentics/hioload-mux/control"
	"github.com/momentics/hioload-mux/internal/transport"
	"github.com/prometheus/client_golang/prometheus"
)

// Config holds all server-side configuration parameters.
type Config struct {
	Host             string    // bind address; empty binds every IPv4 address
	Port             int       // TCP port; 0 picks an ephemeral one
	Backlog          int       // listen(2) queue depth
	ReadBufferSize   int       // bytes per read on the active connection
	ControlSignal    os.Signal // asynchronous, non-terminating control signal
	EvictOnReadError bool      // drop the active connection on a read error
	JournalCapacity  int       // retained loop events
	LoopCPU          int       // pin the loop thread to this CPU (-1 = off)

	// Logger receives status lines. If nil, slog.Default() is used.
	Logger *slog.Logger

	// Registry receives the loop metrics. If nil, a private registry is used.
	Registry *prometheus.Registry
}

// DefaultConfig returns the defaults of the original single-slot server:
// port 8080, backlog 5, 1024-byte reads, SIGHUP as control signal and a
// broken connection left in place after a read error.
func DefaultConfig() *Config {
	return &Config{
		Port:            8080,
		Backlog:         transport.DefaultBacklog,
		ReadBufferSize:  1024,
		ControlSignal:   syscall.SIGHUP,
		JournalCapacity: control.DefaultJournalCapacity,
		LoopCPU:         -1,
	}
}

// State is a phase of the server lifecycle.
type State int32

const (
	StateStartup State = iota
	StateRunning
	StateShuttingDown
	StateTerminated
)

func (s State) String() string {
	switch s {
	case StateStartup:
		return "startup"
	case StateRunning:
		return "running"
	case StateShuttingDown:
		return "shutting_down"
	case StateTerminated:
		return "terminated"
	default:
		return "unknown"
	}
}
