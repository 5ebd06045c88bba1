// File: api/control.go
// Package api defines Control interface.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package api

// Control manages dynamic config, runtime metrics and reload hooks.
type Control interface {
	GetConfig() map[string]any
	SetConfig(cfg map[string]any) error
	Stats() map[string]any
	// OnReload registers fn to run whenever the control signal is observed.
	OnReload(fn func())
	// Reload runs all registered reload hooks synchronously.
	Reload()
	RegisterDebugProbe(name string, fn func() any)
}
