//go:build !linux
// +build !linux

// File: affinity/affinity_stub.go
// Author: momentics <momentics@gmail.com>
//
// Stub implementation for unsupported platforms.
// Returns error to indicate unavailability.

package affinity

import (
	"github.com/momentics/hioload-mux/api"
)

// setAffinityPlatform is a stub for platforms where CPU affinity is not supported.
func setAffinityPlatform(cpuID int) error {
	return api.NewError(api.ErrCodeNotSupported, "affinity", api.ErrNotSupported).
		WithContext("cpu", cpuID)
}
