// File: server/slot.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package server

import (
	"net/netip"
	"sync/atomic"
)

// Conn is the view of a peer connection the slot and handlers need.
// *transport.Conn satisfies it.
type Conn interface {
	Fd() int
	Peer() netip.AddrPort
	Read(p []byte) (int, error)
	Close() error
}

// SlotInfo is a point-in-time description of the slot, safe to read from any
// goroutine.
type SlotInfo struct {
	Occupied bool   `json:"occupied"`
	Peer     string `json:"peer,omitempty"`
	Fd       int    `json:"fd"`
}

var emptySlotInfo = SlotInfo{Fd: -1}

// Slot holds at most one active connection. Installing a connection closes
// the previous one: the latest peer always wins.
//
// Slot methods other than Info are not synchronized; only the main loop
// calls them.
type Slot struct {
	conn Conn
	info atomic.Pointer[SlotInfo]
}

// IsOccupied reports whether a connection is installed.
func (s *Slot) IsOccupied() bool {
	return s.conn != nil
}

// Current returns the installed connection or nil.
func (s *Slot) Current() Conn {
	return s.conn
}

// Install closes any installed connection, abruptly and without draining it,
// then installs c. The evicted connection is returned together with the
// error from closing it.
func (s *Slot) Install(c Conn) (evicted Conn, err error) {
	if s.conn != nil {
		evicted = s.conn
		err = evicted.Close()
	}
	s.conn = c
	s.publish()
	return evicted, err
}

// Clear closes the installed connection, if any, and empties the slot.
func (s *Slot) Clear() error {
	if s.conn == nil {
		return nil
	}
	err := s.conn.Close()
	s.conn = nil
	s.publish()
	return err
}

// Info returns the last published state of the slot.
func (s *Slot) Info() SlotInfo {
	if p := s.info.Load(); p != nil {
		return *p
	}
	return emptySlotInfo
}

func (s *Slot) publish() {
	info := emptySlotInfo
	if s.conn != nil {
		info = SlotInfo{Occupied: true, Peer: s.conn.Peer().String(), Fd: s.conn.Fd()}
	}
	s.info.Store(&info)
}
