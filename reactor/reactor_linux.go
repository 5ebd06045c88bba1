//go:build linux
// +build linux

// File: reactor/reactor_linux.go
// Author: momentics <momentics@gmail.com>
//
// Linux epoll(7)-based multiplexer with an eventfd(2) wake-up source.

package reactor

import (
	"encoding/binary"
	"errors"
	"fmt"
	"sync"

	"github.com/momentics/hioload-mux/api"
	"golang.org/x/sys/unix"
)

// linuxMultiplexer keeps a level-triggered epoll interest set in sync with the
// caller's watch set. The eventfd is registered once and never reported.
type linuxMultiplexer struct {
	mu     sync.RWMutex // guards wakeFd against Close while Wake runs
	closed bool

	epfd       int
	wakeFd     int
	registered map[int]struct{}
	events     []unix.EpollEvent
}

// New constructs the platform multiplexer.
func New() (Multiplexer, error) {
	epfd, err := unix.EpollCreate1(unix.EPOLL_CLOEXEC)
	if err != nil {
		return nil, fmt.Errorf("epoll create: %w", err)
	}
	wfd, err := unix.Eventfd(0, unix.EFD_CLOEXEC|unix.EFD_NONBLOCK)
	if err != nil {
		unix.Close(epfd)
		return nil, fmt.Errorf("eventfd: %w", err)
	}
	ev := unix.EpollEvent{Events: unix.EPOLLIN, Fd: int32(wfd)}
	if err := unix.EpollCtl(epfd, unix.EPOLL_CTL_ADD, wfd, &ev); err != nil {
		unix.Close(wfd)
		unix.Close(epfd)
		return nil, fmt.Errorf("epoll ctl add eventfd: %w", err)
	}
	return &linuxMultiplexer{
		epfd:       epfd,
		wakeFd:     wfd,
		registered: make(map[int]struct{}),
		events:     make([]unix.EpollEvent, 8),
	}, nil
}

// WaitReady implements Multiplexer.
func (m *linuxMultiplexer) WaitReady(watch, ready *FDSet) error {
	ready.Reset()
	if m.isClosed() {
		return api.ErrClosed
	}
	if err := m.sync(watch); err != nil {
		return err
	}
	if need := watch.Len() + 1; len(m.events) < need {
		m.events = make([]unix.EpollEvent, need)
	}

	n, err := unix.EpollWait(m.epfd, m.events, -1)
	if err != nil {
		if errors.Is(err, unix.EINTR) {
			return api.ErrInterrupted
		}
		return fmt.Errorf("epoll wait: %w", err)
	}
	for i := 0; i < n; i++ {
		fd := int(m.events[i].Fd)
		if fd == m.wakeFd {
			m.drainWake()
			continue
		}
		// EPOLLHUP and EPOLLERR count as readable, as with select(2): the
		// following read reports the condition.
		if watch.Has(fd) {
			ready.Add(fd)
		}
	}
	return nil
}

// sync reconciles the epoll interest set with watch. A descriptor closed by
// its owner drops out of epoll on its own, and its number may come back for a
// new socket, so every watched descriptor is re-added and EEXIST is benign.
func (m *linuxMultiplexer) sync(watch *FDSet) error {
	for fd := range m.registered {
		if watch.Has(fd) {
			continue
		}
		err := unix.EpollCtl(m.epfd, unix.EPOLL_CTL_DEL, fd, nil)
		if err != nil && !errors.Is(err, unix.ENOENT) && !errors.Is(err, unix.EBADF) {
			return fmt.Errorf("epoll ctl del fd=%d: %w", fd, err)
		}
		delete(m.registered, fd)
	}
	for _, fd := range watch.FDs() {
		ev := unix.EpollEvent{Events: unix.EPOLLIN, Fd: int32(fd)}
		err := unix.EpollCtl(m.epfd, unix.EPOLL_CTL_ADD, fd, &ev)
		if err != nil && !errors.Is(err, unix.EEXIST) {
			return fmt.Errorf("epoll ctl add fd=%d: %w", fd, err)
		}
		m.registered[fd] = struct{}{}
	}
	return nil
}

// Wake implements Multiplexer.
func (m *linuxMultiplexer) Wake() error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return nil
	}
	var buf [8]byte
	binary.NativeEndian.PutUint64(buf[:], 1)
	for {
		_, err := unix.Write(m.wakeFd, buf[:])
		switch {
		case err == nil, errors.Is(err, unix.EAGAIN):
			// EAGAIN: counter saturated, the wait is already due to return.
			return nil
		case errors.Is(err, unix.EINTR):
			continue
		default:
			return fmt.Errorf("eventfd write: %w", err)
		}
	}
}

func (m *linuxMultiplexer) drainWake() {
	var buf [8]byte
	for {
		_, err := unix.Read(m.wakeFd, buf[:])
		if !errors.Is(err, unix.EINTR) {
			return
		}
	}
}

func (m *linuxMultiplexer) isClosed() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.closed
}

// Close implements Multiplexer.
func (m *linuxMultiplexer) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil
	}
	m.closed = true
	m.registered = nil
	return errors.Join(unix.Close(m.wakeFd), unix.Close(m.epfd))
}
