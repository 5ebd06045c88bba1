// File: server/data.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package server

import (
	"errors"
	"io"

	"github.com/momentics/hioload-mux/api"
	"github.com/momentics/hioload-mux/control"
	"github.com/momentics/hioload-mux/internal/transport"
)

// handleData performs a single read on the active connection. Data is
// reported and discarded; an orderly close empties the slot; a read error is
// reported and, unless EvictOnReadError is set, the connection is kept.
// Readiness without data (EAGAIN) is not an error and changes nothing.
func (s *Server) handleData(c Conn) {
	n, err := c.Read(s.buf)
	peer := c.Peer().String()
	switch {
	case err == nil:
		s.log.Info("received bytes", "bytes", n, "peer", peer)
		s.metrics.Reads.WithLabelValues(control.ReadData).Inc()
		s.metrics.BytesReceived.Add(float64(n))
		s.journal.Record(control.Entry{Kind: control.KindReceived, Peer: peer, Bytes: n})

	case errors.Is(err, transport.ErrWouldBlock):
		s.log.Debug("spurious readiness", "peer", peer)
		s.metrics.Reads.WithLabelValues(control.ReadWouldBlock).Inc()

	case errors.Is(err, io.EOF):
		s.log.Info("connection closed by client", "peer", peer)
		s.metrics.Reads.WithLabelValues(control.ReadEOF).Inc()
		s.metrics.Evictions.WithLabelValues(control.EvictPeerClosed).Inc()
		if err := s.slot.Clear(); err != nil {
			s.log.Warn("closing connection", "peer", peer, "error", err)
		}
		s.metrics.SlotOccupied.Set(0)
		s.journal.Record(control.Entry{Kind: control.KindPeerClosed, Peer: peer})

	default:
		retained := !s.cfg.EvictOnReadError
		rerr := api.NewError(api.ErrCodeRead, "read", err).WithContext("peer", peer)
		s.log.Error("read failed", "peer", peer, "code", rerr.Code.String(), "error", err, "retained", retained)
		s.metrics.Reads.WithLabelValues(control.ReadError).Inc()
		s.journal.Record(control.Entry{
			Kind:     control.KindReadError,
			Peer:     peer,
			Code:     rerr.Code.String(),
			Err:      rerr.Error(),
			Retained: retained,
		})
		if retained {
			return
		}
		s.recordEviction(c, control.EvictReadError)
		if err := s.slot.Clear(); err != nil {
			s.log.Warn("closing connection", "peer", peer, "error", err)
		}
		s.metrics.SlotOccupied.Set(0)
	}
}

// drainSignal consumes the latch. Deliveries that arrived since the last
// drain are reported once, with their count.
func (s *Server) drainSignal() {
	n := s.latch.DrainCount()
	if n == 0 {
		return
	}
	s.log.Info("received control signal", "signal", s.cfg.ControlSignal.String(), "coalesced", n)
	s.metrics.SignalsRaised.Add(float64(n))
	s.metrics.SignalDrains.Inc()
	s.journal.Record(control.Entry{Kind: control.KindSignal, Signals: n})
	s.control.Reload()
}
