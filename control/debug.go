// control/debug.go
// Author: momentics <momentics@gmail.com>
//
// Named probes evaluated on demand by Stats() and the admin surface.

package control

import (
	"fmt"
	"sync"
)

// ProbeFunc reports one live value. It runs on the caller's goroutine, which
// is never the main loop.
type ProbeFunc func() any

// DebugProbes is a registry of named probes.
type DebugProbes struct {
	mu     sync.RWMutex
	probes map[string]ProbeFunc
}

// NewDebugProbes creates an empty registry.
func NewDebugProbes() *DebugProbes {
	return &DebugProbes{probes: make(map[string]ProbeFunc)}
}

// RegisterProbe binds name to fn, replacing an earlier probe of that name.
func (dp *DebugProbes) RegisterProbe(name string, fn func() any) {
	dp.mu.Lock()
	dp.probes[name] = fn
	dp.mu.Unlock()
}

// DumpState evaluates every probe. Probes run without the registry lock; a
// probe that panics is reported as "probe panic: <value>" instead of its
// value.
func (dp *DebugProbes) DumpState() map[string]any {
	dp.mu.RLock()
	fns := make(map[string]ProbeFunc, len(dp.probes))
	for name, fn := range dp.probes {
		fns[name] = fn
	}
	dp.mu.RUnlock()

	out := make(map[string]any, len(fns))
	for name, fn := range fns {
		out[name] = evalProbe(fn)
	}
	return out
}

func evalProbe(fn ProbeFunc) (v any) {
	defer func() {
		if r := recover(); r != nil {
			v = fmt.Sprintf("probe panic: %v", r)
		}
	}()
	return fn()
}
