// File: reactor/reactor.go
// Author: momentics <momentics@gmail.com>
//
// Platform-neutral readiness multiplexer contract and descriptor sets.

package reactor

// Multiplexer waits for read readiness on a caller-supplied watch set.
//
// WaitReady and Close belong to a single goroutine (the main loop). Wake may
// be called from any goroutine at any time, including before the wait starts:
// the wake-up is level-triggered, so it is held until the next WaitReady
// observes and clears it.
type Multiplexer interface {
	// WaitReady blocks until a descriptor in watch is readable or Wake was
	// called. Ready descriptors are written into ready, which is reset first.
	// ready may be empty when only the wake-up fired.
	//
	// Signal interruption yields api.ErrInterrupted; the caller retries with a
	// freshly computed watch set. Any other error is fatal.
	WaitReady(watch, ready *FDSet) error

	// Wake makes the current or next WaitReady return. After Close it is a
	// no-op.
	Wake() error

	// Close releases the multiplexer descriptors. Watched descriptors are not
	// closed. Close is idempotent.
	Close() error
}

// FDSet is a small ordered set of descriptors. The zero value is empty and
// ready for use. It is rebuilt every loop iteration, so it reuses its backing
// array instead of allocating.
type FDSet struct {
	fds []int
}

// Reset empties the set, keeping capacity.
func (s *FDSet) Reset() {
	s.fds = s.fds[:0]
}

// Add inserts fd. Negative and duplicate descriptors are ignored.
func (s *FDSet) Add(fd int) {
	if fd < 0 || s.Has(fd) {
		return
	}
	s.fds = append(s.fds, fd)
}

// Has reports whether fd is in the set.
func (s *FDSet) Has(fd int) bool {
	if fd < 0 {
		return false
	}
	for _, v := range s.fds {
		if v == fd {
			return true
		}
	}
	return false
}

// Len returns the number of descriptors.
func (s *FDSet) Len() int {
	return len(s.fds)
}

// FDs returns the descriptors in insertion order. The slice is owned by the
// set and is only valid until the next mutation.
func (s *FDSet) FDs() []int {
	return s.fds
}
