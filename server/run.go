// File: server/run.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package server

import (
	"context"
	"errors"
	"fmt"
	"runtime"

	"github.com/momentics/hioload-mux/affinity"
	"github.com/momentics/hioload-mux/api"
	"github.com/momentics/hioload-mux/control"
)

// Run is the RUNNING phase. It blocks until Shutdown is called, ctx is
// cancelled, or the readiness wait fails for a reason other than signal
// interruption; in the last case the returned error wraps api.ErrFatalWait.
// Teardown happens before Run returns.
func (s *Server) Run(ctx context.Context) error {
	s.mu.Lock()
	if s.State() != StateStartup || s.stopping.Load() {
		s.mu.Unlock()
		return api.ErrAlreadyRunning
	}
	s.state.Store(int32(StateRunning))
	s.mu.Unlock()

	stop := context.AfterFunc(ctx, s.Shutdown)
	defer stop()

	if s.cfg.LoopCPU >= 0 {
		runtime.LockOSThread()
		defer runtime.UnlockOSThread()
		if err := affinity.SetAffinity(s.cfg.LoopCPU); err != nil {
			s.log.Warn("loop affinity", "cpu", s.cfg.LoopCPU, "error", err)
		}
	}

	err := s.loop()

	s.mu.Lock()
	s.teardown()
	s.mu.Unlock()
	return err
}

func (s *Server) loop() error {
	for !s.stopping.Load() {
		s.watch.Reset()
		s.watch.Add(s.ln.Fd())
		conn := s.slot.Current()
		if conn != nil {
			s.watch.Add(conn.Fd())
		}

		if err := s.mux.WaitReady(&s.watch, &s.ready); err != nil {
			if errors.Is(err, api.ErrInterrupted) {
				s.metrics.WaitInterrupts.Inc()
				continue
			}
			ferr := api.NewError(api.ErrCodeFatalWait, "main loop", fmt.Errorf("%w: %w", api.ErrFatalWait, err))
			s.log.Error("readiness wait failed", "code", ferr.Code.String(), "error", err)
			s.journal.Record(control.Entry{Kind: control.KindFatal, Code: ferr.Code.String(), Err: err.Error()})
			return ferr
		}

		// The signal is observed before any I/O of the same iteration.
		s.drainSignal()
		if s.stopping.Load() {
			break
		}

		if s.ready.Has(s.ln.Fd()) {
			s.handleAccept()
		}
		// A connection evicted by the accept above is never read.
		if conn != nil && conn == s.slot.Current() && s.ready.Has(conn.Fd()) {
			s.handleData(conn)
		}
	}
	return nil
}
