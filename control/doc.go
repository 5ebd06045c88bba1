// Package control
// Author: momentics <momentics@gmail.com>
//
// Reload hooks, runtime metrics, the loop event journal and debug
// introspection for hioload-mux.
//
// Provides concurrent-safe state handling primitives including:
//   - Reload hooks fired when the control signal is observed
//   - Prometheus-backed counters with a flat snapshot view
//   - A bounded journal of loop events
//   - Debug probe registration and state export
//
// Everything here may be read from goroutines other than the main loop.
package control
