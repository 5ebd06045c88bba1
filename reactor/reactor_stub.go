//go:build !unix

// File: reactor/reactor_stub.go
// Author: momentics <momentics@gmail.com>
//
// Stub implementation for unsupported platforms.

package reactor

import (
	"github.com/momentics/hioload-mux/api"
)

// New returns an error for unsupported platforms.
func New() (Multiplexer, error) {
	return nil, api.NewError(api.ErrCodeNotSupported, "reactor", api.ErrNotSupported)
}
