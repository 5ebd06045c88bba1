// File: control/hotreload.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Reload hooks fired when the control signal (SIGHUP by default) is drained
// by the main loop.

package control

import "sync"

// ReloadHooks is an ordered list of reload listeners.
type ReloadHooks struct {
	mu    sync.Mutex
	hooks []func()
	fired uint64
}

// NewReloadHooks returns an empty hook list.
func NewReloadHooks() *ReloadHooks {
	return &ReloadHooks{}
}

// Register adds a new component reload listener.
func (r *ReloadHooks) Register(fn func()) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.hooks = append(r.hooks, fn)
}

// TriggerSync invokes all hooks in registration order on the calling
// goroutine. The main loop uses it, so hooks must not block.
func (r *ReloadHooks) TriggerSync() {
	for _, fn := range r.snapshot() {
		fn()
	}
}

// Fired returns how many times the hooks were triggered.
func (r *ReloadHooks) Fired() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.fired
}

func (r *ReloadHooks) snapshot() []func() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fired++
	return append([]func(){}, r.hooks...)
}
