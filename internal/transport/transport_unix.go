//go:build unix

// internal/transport/transport_unix.go
//
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// socket(2)/bind(2)/listen(2)/accept(2) via golang.org/x/sys/unix.

package transport

import (
	"errors"
	"fmt"
	"net/netip"
	"syscall"

	"golang.org/x/sys/unix"
)

func sysListen(addr netip.AddrPort, backlog int, reuse bool) (int, netip.AddrPort, error) {
	family := unix.AF_INET
	if addr.Addr().Is6() {
		family = unix.AF_INET6
	}

	// ForkLock keeps the descriptor from leaking into a concurrent exec
	// before close-on-exec is set.
	syscall.ForkLock.RLock()
	fd, err := unix.Socket(family, unix.SOCK_STREAM, unix.IPPROTO_TCP)
	if err == nil {
		unix.CloseOnExec(fd)
	}
	syscall.ForkLock.RUnlock()
	if err != nil {
		return -1, netip.AddrPort{}, fmt.Errorf("socket: %w", err)
	}

	fail := func(op string, err error) (int, netip.AddrPort, error) {
		unix.Close(fd)
		return -1, netip.AddrPort{}, fmt.Errorf("%s: %w", op, err)
	}
	if err := unix.SetNonblock(fd, true); err != nil {
		return fail("set nonblock", err)
	}
	if reuse {
		if err := unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_REUSEADDR, 1); err != nil {
			return fail("setsockopt SO_REUSEADDR", err)
		}
	}
	if err := unix.Bind(fd, toSockaddr(addr)); err != nil {
		return fail("bind "+addr.String(), err)
	}
	if err := unix.Listen(fd, backlog); err != nil {
		return fail("listen", err)
	}
	sa, err := unix.Getsockname(fd)
	if err != nil {
		return fail("getsockname", err)
	}
	return fd, fromSockaddr(sa), nil
}

func sysAccept(lfd int) (int, netip.AddrPort, error) {
	syscall.ForkLock.RLock()
	nfd, sa, err := unix.Accept(lfd)
	if err == nil {
		unix.CloseOnExec(nfd)
	}
	syscall.ForkLock.RUnlock()
	if err != nil {
		return -1, netip.AddrPort{}, err
	}
	if err := unix.SetNonblock(nfd, true); err != nil {
		unix.Close(nfd)
		return -1, netip.AddrPort{}, err
	}
	return nfd, fromSockaddr(sa), nil
}

func sysRead(fd int, p []byte) (int, error) {
	n, err := unix.Read(fd, p)
	if errors.Is(err, unix.EAGAIN) {
		return 0, fmt.Errorf("%w: %w", ErrWouldBlock, err)
	}
	if err != nil {
		return 0, err
	}
	return n, nil
}

func sysClose(fd int) error {
	err := unix.Close(fd)
	if errors.Is(err, unix.EINTR) {
		// The descriptor is released even when close(2) is interrupted.
		return nil
	}
	return err
}

func toSockaddr(ap netip.AddrPort) unix.Sockaddr {
	if ap.Addr().Is6() {
		sa := &unix.SockaddrInet6{Port: int(ap.Port()), Addr: ap.Addr().As16()}
		return sa
	}
	return &unix.SockaddrInet4{Port: int(ap.Port()), Addr: ap.Addr().As4()}
}

func fromSockaddr(sa unix.Sockaddr) netip.AddrPort {
	switch v := sa.(type) {
	case *unix.SockaddrInet4:
		return netip.AddrPortFrom(netip.AddrFrom4(v.Addr), uint16(v.Port))
	case *unix.SockaddrInet6:
		return netip.AddrPortFrom(netip.AddrFrom16(v.Addr).Unmap(), uint16(v.Port))
	default:
		return netip.AddrPort{}
	}
}
