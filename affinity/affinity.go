// File: affinity/affinity.go
// Author: momentics <momentics@gmail.com>
//
// Platform-neutral API for CPU affinity. Platform-specific implementations are located
// in separate files (affinity_linux.go, affinity_stub.go) guarded by build tags.

package affinity

import (
	"github.com/momentics/hioload-mux/api"
)

// SetAffinity pins the current OS thread to a given logical CPU. The caller
// must hold runtime.LockOSThread for the pin to stay meaningful.
// On unsupported platforms returns an error wrapping api.ErrNotSupported.
func SetAffinity(cpuID int) error {
	if cpuID < 0 {
		return api.NewError(api.ErrCodeInvalidArgument, "affinity", api.ErrInvalidArgument).
			WithContext("cpu", cpuID)
	}
	return setAffinityPlatform(cpuID)
}
