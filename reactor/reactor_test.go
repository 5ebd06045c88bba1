//go:build unix

package reactor_test

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/momentics/hioload-mux/api"
	"github.com/momentics/hioload-mux/internal/concurrency"
	"github.com/momentics/hioload-mux/reactor"
	"golang.org/x/sys/unix"
)

func newMux(t *testing.T) reactor.Multiplexer {
	t.Helper()
	m, err := reactor.New()
	if err != nil {
		t.Fatalf("reactor.New: %v", err)
	}
	t.Cleanup(func() { m.Close() })
	return m
}

func socketPair(t *testing.T) (int, int) {
	t.Helper()
	fds, err := unix.Socketpair(unix.AF_UNIX, unix.SOCK_STREAM, 0)
	if err != nil {
		t.Fatalf("socketpair: %v", err)
	}
	return fds[0], fds[1]
}

// wait retries through signal interruptions, like the main loop does.
func wait(m reactor.Multiplexer, watch, ready *reactor.FDSet) error {
	for {
		err := m.WaitReady(watch, ready)
		if errors.Is(err, api.ErrInterrupted) {
			continue
		}
		return err
	}
}

func TestFDSet(t *testing.T) {
	var s reactor.FDSet
	s.Add(3)
	s.Add(3)
	s.Add(-1)
	s.Add(7)
	if s.Len() != 2 || !s.Has(3) || !s.Has(7) || s.Has(-1) {
		t.Fatalf("unexpected set contents: %v", s.FDs())
	}
	s.Reset()
	if s.Len() != 0 || s.Has(3) {
		t.Fatal("Reset must empty the set")
	}
}

func TestWaitReportsReadableDescriptor(t *testing.T) {
	m := newMux(t)
	a, b := socketPair(t)
	defer unix.Close(a)
	defer unix.Close(b)

	if _, err := unix.Write(b, []byte("x")); err != nil {
		t.Fatal(err)
	}
	var watch, ready reactor.FDSet
	watch.Add(a)
	if err := wait(m, &watch, &ready); err != nil {
		t.Fatalf("WaitReady: %v", err)
	}
	if !ready.Has(a) {
		t.Fatalf("expected fd %d ready, got %v", a, ready.FDs())
	}
}

func TestWakeBeforeWaitIsNotLost(t *testing.T) {
	m := newMux(t)
	if err := m.Wake(); err != nil {
		t.Fatal(err)
	}
	var watch, ready reactor.FDSet

	done := make(chan error, 1)
	go func() { done <- wait(m, &watch, &ready) }()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("WaitReady: %v", err)
		}
		if ready.Len() != 0 {
			t.Errorf("wake-up must not surface as a ready descriptor: %v", ready.FDs())
		}
	case <-time.After(5 * time.Second):
		t.Fatal("wake issued before the wait was lost")
	}
}

func TestUnwatchedDescriptorIsNotReported(t *testing.T) {
	m := newMux(t)
	a, b := socketPair(t)
	defer unix.Close(a)
	defer unix.Close(b)

	var watch, ready reactor.FDSet
	watch.Add(a)
	unix.Write(b, []byte("x"))
	if err := wait(m, &watch, &ready); err != nil {
		t.Fatal(err)
	}

	// a stays readable but leaves the watch set.
	watch.Reset()
	m.Wake()
	if err := wait(m, &watch, &ready); err != nil {
		t.Fatal(err)
	}
	if ready.Has(a) {
		t.Fatal("descriptor removed from the watch set was still reported")
	}
}

func TestReusedDescriptorNumberIsWatched(t *testing.T) {
	m := newMux(t)
	a, b := socketPair(t)
	var watch, ready reactor.FDSet
	watch.Add(a)
	unix.Write(b, []byte("x"))
	if err := wait(m, &watch, &ready); err != nil {
		t.Fatal(err)
	}
	unix.Close(a)
	unix.Close(b)

	// The kernel hands out the lowest free numbers, so the new pair usually
	// reuses a; the test holds either way.
	c, d := socketPair(t)
	defer unix.Close(c)
	defer unix.Close(d)
	watch.Reset()
	watch.Add(c)
	unix.Write(d, []byte("y"))
	if err := wait(m, &watch, &ready); err != nil {
		t.Fatal(err)
	}
	if !ready.Has(c) {
		t.Fatalf("expected reused fd %d ready, got %v", c, ready.FDs())
	}
}

func TestCloseIsIdempotentAndSilencesWake(t *testing.T) {
	m, err := reactor.New()
	if err != nil {
		t.Fatal(err)
	}
	if err := m.Close(); err != nil {
		t.Fatal(err)
	}
	if err := m.Close(); err != nil {
		t.Errorf("second Close: %v", err)
	}
	if err := m.Wake(); err != nil {
		t.Errorf("Wake after Close: %v", err)
	}
	var watch, ready reactor.FDSet
	if err := m.WaitReady(&watch, &ready); !errors.Is(err, api.ErrClosed) {
		t.Errorf("expected ErrClosed, got %v", err)
	}
}

// TestLatchRaceNoLostSignal raises the latch from a concurrent goroutine while
// the loop repeatedly waits and drains. A raise landing between the drain and
// the next wait must still end that wait, otherwise the loop hangs.
func TestLatchRaceNoLostSignal(t *testing.T) {
	const sent = 20000
	m := newMux(t)
	latch := concurrency.NewLatch(m)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < sent; i++ {
			latch.Raise()
		}
	}()

	type result struct {
		observed, drains uint64
		err              error
	}
	res := make(chan result, 1)
	go func() {
		var r result
		var watch, ready reactor.FDSet
		for r.observed < sent {
			if err := wait(m, &watch, &ready); err != nil {
				r.err = err
				break
			}
			if n := latch.DrainCount(); n > 0 {
				r.observed += n
				r.drains++
			}
		}
		res <- r
	}()

	select {
	case r := <-res:
		if r.err != nil {
			t.Fatalf("wait failed: %v", r.err)
		}
		if r.observed != sent {
			t.Fatalf("observed %d raises, sent %d", r.observed, sent)
		}
		if r.drains > sent || r.drains == 0 {
			t.Errorf("unexpected drain count %d for %d raises", r.drains, sent)
		}
	case <-time.After(20 * time.Second):
		t.Fatalf("loop stalled: raised=%d drained=%d pending=%d",
			latch.Raised(), latch.Drained(), latch.Pending())
	}
	wg.Wait()
}
