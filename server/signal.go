// File: server/signal.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package server

import (
	"os"
	"os/signal"
	"sync"

	"github.com/momentics/hioload-mux/internal/concurrency"
)

// signalForwarder is the asynchronous handler: it turns control signal
// deliveries into latch raises and does nothing else.
type signalForwarder struct {
	ch   chan os.Signal
	done chan struct{}
	wg   sync.WaitGroup
	once sync.Once
}

// forwardSignals starts catching sig. From here on the signal no longer has
// its default disposition; deliveries are held in the latch until the main
// loop drains it.
func forwardSignals(latch *concurrency.Latch, sig os.Signal) *signalForwarder {
	f := &signalForwarder{
		ch:   make(chan os.Signal, 1),
		done: make(chan struct{}),
	}
	signal.Notify(f.ch, sig)
	f.wg.Add(1)
	go func() {
		defer f.wg.Done()
		for {
			select {
			case <-f.ch:
				latch.Raise()
			case <-f.done:
				return
			}
		}
	}()
	return f
}

// stop stops catching the signal and waits for the forwarder to exit.
func (f *signalForwarder) stop() {
	f.once.Do(func() {
		signal.Stop(f.ch)
		close(f.done)
		f.wg.Wait()
	})
}
