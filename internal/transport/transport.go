// File: internal/transport/transport.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Platform-independent listener and connection types. Platform code lives in
// transport_unix.go and transport_other.go.

package transport

import (
	"errors"
	"fmt"
	"io"
	"net/netip"

	"github.com/momentics/hioload-mux/api"
)

// DefaultBacklog is the listen(2) queue depth used when none is configured.
const DefaultBacklog = 5

// ErrWouldBlock is wrapped around EAGAIN from a read on a connection that
// was reported readable but had nothing to deliver.
var ErrWouldBlock = errors.New("operation would block")

// ListenConfig describes the listening socket.
type ListenConfig struct {
	Host      string // literal IP; empty means the IPv4 wildcard
	Port      int    // 0 picks an ephemeral port
	Backlog   int    // listen(2) backlog; <= 0 means DefaultBacklog
	ReuseAddr bool   // set SO_REUSEADDR before bind
}

func (c ListenConfig) bindAddr() (netip.AddrPort, error) {
	if c.Port < 0 || c.Port > 65535 {
		return netip.AddrPort{}, api.NewError(api.ErrCodeInvalidArgument, "port out of range", api.ErrInvalidArgument).
			WithContext("port", c.Port)
	}
	ip := netip.IPv4Unspecified()
	if c.Host != "" {
		parsed, err := netip.ParseAddr(c.Host)
		if err != nil {
			return netip.AddrPort{}, api.NewError(api.ErrCodeInvalidArgument, "host is not a literal IP", api.ErrInvalidArgument).
				WithContext("host", c.Host)
		}
		ip = parsed.Unmap()
	}
	return netip.AddrPortFrom(ip, uint16(c.Port)), nil
}

// Listener is a bound, passively-open, non-blocking TCP socket.
type Listener struct {
	fd      int
	addr    netip.AddrPort
	backlog int
	closed  bool
}

// Listen creates, binds and listens according to cfg.
func Listen(cfg ListenConfig) (*Listener, error) {
	addr, err := cfg.bindAddr()
	if err != nil {
		return nil, err
	}
	backlog := cfg.Backlog
	if backlog <= 0 {
		backlog = DefaultBacklog
	}
	fd, bound, err := sysListen(addr, backlog, cfg.ReuseAddr)
	if err != nil {
		return nil, err
	}
	return &Listener{fd: fd, addr: bound, backlog: backlog}, nil
}

// Fd returns the listening descriptor, or -1 once closed.
func (l *Listener) Fd() int {
	if l.closed {
		return -1
	}
	return l.fd
}

// Addr returns the bound address; the port is the real one when 0 was asked.
func (l *Listener) Addr() netip.AddrPort { return l.addr }

// Backlog returns the listen queue depth in effect.
func (l *Listener) Backlog() int { return l.backlog }

// Accept takes one pending connection. It never blocks: with nothing pending
// it returns an error wrapping EAGAIN.
func (l *Listener) Accept() (*Conn, error) {
	if l.closed {
		return nil, api.ErrClosed
	}
	fd, peer, err := sysAccept(l.fd)
	if err != nil {
		return nil, fmt.Errorf("accept: %w", err)
	}
	return &Conn{fd: fd, peer: peer}, nil
}

// Close closes the listening socket. It is idempotent.
func (l *Listener) Close() error {
	if l.closed {
		return nil
	}
	l.closed = true
	if err := sysClose(l.fd); err != nil {
		return fmt.Errorf("close listener: %w", err)
	}
	return nil
}

// Conn is an accepted, non-blocking TCP connection.
type Conn struct {
	fd     int
	peer   netip.AddrPort
	closed bool
}

// Fd returns the connection descriptor, or -1 once closed.
func (c *Conn) Fd() int {
	if c.closed {
		return -1
	}
	return c.fd
}

// Peer returns the remote address and port.
func (c *Conn) Peer() netip.AddrPort { return c.peer }

// Read performs one read(2). An orderly close by the peer is reported as
// io.EOF; a short count is a valid partial read. With nothing to read the
// error wraps ErrWouldBlock.
func (c *Conn) Read(p []byte) (int, error) {
	if c.closed {
		return 0, api.ErrClosed
	}
	n, err := sysRead(c.fd, p)
	if err != nil {
		return 0, fmt.Errorf("read: %w", err)
	}
	if n == 0 && len(p) > 0 {
		return 0, io.EOF
	}
	return n, nil
}

// Close closes the descriptor without draining pending data. It is idempotent.
func (c *Conn) Close() error {
	if c.closed {
		return nil
	}
	c.closed = true
	if err := sysClose(c.fd); err != nil {
		return fmt.Errorf("close conn: %w", err)
	}
	return nil
}

// String renders the peer for logs.
func (c *Conn) String() string {
	return c.peer.String()
}
