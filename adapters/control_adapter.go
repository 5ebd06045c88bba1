// Package adapters
// Author: momentics <momentics@gmail.com>
//
// Control adapter implementing api.Control interface using control package primitives.

package adapters

import (
	"sync"

	"github.com/momentics/hioload-mux/api"
	"github.com/momentics/hioload-mux/control"
	"github.com/prometheus/client_golang/prometheus"
)

// ControlAdapter bundles the control plane of one server: the published
// configuration, metrics, probes, reload hooks and the journal.
type ControlAdapter struct {
	mu     sync.RWMutex
	config map[string]any

	metrics *control.MetricsRegistry
	debug   *control.DebugProbes
	reload  *control.ReloadHooks
	journal *control.Journal
}

var _ api.Control = (*ControlAdapter)(nil)

// NewControlAdapter wires a control plane around reg (nil for a private
// registry) and a journal of the given capacity.
func NewControlAdapter(reg *prometheus.Registry, journalCapacity int) *ControlAdapter {
	adapter := &ControlAdapter{
		config:  make(map[string]any),
		metrics: control.NewMetricsRegistry(reg),
		debug:   control.NewDebugProbes(),
		reload:  control.NewReloadHooks(),
		journal: control.NewJournal(journalCapacity),
	}
	control.RegisterPlatformProbes(adapter.debug)
	return adapter
}

// GetConfig returns a copy of the published configuration.
func (c *ControlAdapter) GetConfig() map[string]any {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make(map[string]any, len(c.config))
	for k, v := range c.config {
		out[k] = v
	}
	return out
}

// SetConfig merges cfg into the published configuration. Empty keys are
// rejected and nothing is merged.
func (c *ControlAdapter) SetConfig(cfg map[string]any) error {
	if _, ok := cfg[""]; ok {
		return api.NewError(api.ErrCodeInvalidArgument, "config", api.ErrInvalidArgument).
			WithContext("key", "")
	}
	c.mu.Lock()
	for k, v := range cfg {
		c.config[k] = v
	}
	c.mu.Unlock()
	return nil
}

// Stats merges config, metrics and debug probes; probes are prefixed with
// "debug.".
func (c *ControlAdapter) Stats() map[string]any {
	combined := c.GetConfig()
	for k, v := range c.metrics.GetSnapshot() {
		combined[k] = v
	}
	for k, v := range c.debug.DumpState() {
		combined["debug."+k] = v
	}
	return combined
}

func (c *ControlAdapter) OnReload(fn func()) {
	c.reload.Register(fn)
}

// Reload runs the reload hooks on the calling goroutine.
func (c *ControlAdapter) Reload() {
	c.reload.TriggerSync()
}

func (c *ControlAdapter) RegisterDebugProbe(name string, fn func() any) {
	c.debug.RegisterProbe(name, fn)
}

// Metrics returns the Prometheus-backed registry.
func (c *ControlAdapter) Metrics() *control.MetricsRegistry {
	return c.metrics
}

// Journal returns the loop event journal.
func (c *ControlAdapter) Journal() *control.Journal {
	return c.journal
}
