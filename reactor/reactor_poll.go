//go:build unix && !linux

// File: reactor/reactor_poll.go
// Author: momentics <momentics@gmail.com>
//
// poll(2)-based multiplexer with a self-pipe wake-up source for the BSDs,
// Darwin and other non-Linux unix systems.

package reactor

import (
	"errors"
	"fmt"
	"sync"

	"github.com/momentics/hioload-mux/api"
	"golang.org/x/sys/unix"
)

type pollMultiplexer struct {
	mu     sync.RWMutex
	closed bool

	wakeR, wakeW int
	pollfds      []unix.PollFd
}

// New constructs the platform multiplexer.
func New() (Multiplexer, error) {
	p := make([]int, 2)
	if err := unix.Pipe(p); err != nil {
		return nil, fmt.Errorf("pipe: %w", err)
	}
	for _, fd := range p {
		unix.CloseOnExec(fd)
		if err := unix.SetNonblock(fd, true); err != nil {
			unix.Close(p[0])
			unix.Close(p[1])
			return nil, fmt.Errorf("pipe nonblock: %w", err)
		}
	}
	return &pollMultiplexer{wakeR: p[0], wakeW: p[1]}, nil
}

// WaitReady implements Multiplexer. poll(2) has no persistent interest set, so
// the watch set is rebuilt into pollfds on every call.
func (m *pollMultiplexer) WaitReady(watch, ready *FDSet) error {
	ready.Reset()
	if m.isClosed() {
		return api.ErrClosed
	}
	m.pollfds = append(m.pollfds[:0], unix.PollFd{Fd: int32(m.wakeR), Events: unix.POLLIN})
	for _, fd := range watch.FDs() {
		m.pollfds = append(m.pollfds, unix.PollFd{Fd: int32(fd), Events: unix.POLLIN})
	}

	_, err := unix.Poll(m.pollfds, -1)
	if err != nil {
		if errors.Is(err, unix.EINTR) {
			return api.ErrInterrupted
		}
		return fmt.Errorf("poll: %w", err)
	}
	for i, pfd := range m.pollfds {
		if pfd.Revents&unix.POLLNVAL != 0 {
			return fmt.Errorf("poll fd=%d: %w", pfd.Fd, unix.EBADF)
		}
		if pfd.Revents&(unix.POLLIN|unix.POLLHUP|unix.POLLERR) == 0 {
			continue
		}
		if i == 0 {
			m.drainWake()
			continue
		}
		ready.Add(int(pfd.Fd))
	}
	return nil
}

// Wake implements Multiplexer.
func (m *pollMultiplexer) Wake() error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return nil
	}
	buf := [1]byte{1}
	for {
		_, err := unix.Write(m.wakeW, buf[:])
		switch {
		case err == nil, errors.Is(err, unix.EAGAIN):
			// EAGAIN: pipe already full of pending wake-ups.
			return nil
		case errors.Is(err, unix.EINTR):
			continue
		default:
			return fmt.Errorf("wake pipe write: %w", err)
		}
	}
}

func (m *pollMultiplexer) drainWake() {
	var buf [64]byte
	for {
		n, err := unix.Read(m.wakeR, buf[:])
		if errors.Is(err, unix.EINTR) {
			continue
		}
		if err != nil || n < len(buf) {
			return
		}
	}
}

func (m *pollMultiplexer) isClosed() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.closed
}

// Close implements Multiplexer.
func (m *pollMultiplexer) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil
	}
	m.closed = true
	return errors.Join(unix.Close(m.wakeR), unix.Close(m.wakeW))
}
