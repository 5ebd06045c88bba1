// File: api/shutdown.go
// Package api defines unified graceful shutdown contract.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package api

// GracefulShutdown is implemented by components that own descriptors or
// goroutines and can release them on request.
type GracefulShutdown interface {
	// Shutdown asks the component to stop and release its resources.
	// It must be safe to call more than once.
	Shutdown()
}
