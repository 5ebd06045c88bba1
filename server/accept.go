// File: server/accept.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package server

import (
	"github.com/momentics/hioload-mux/api"
	"github.com/momentics/hioload-mux/control"
)

// handleAccept accepts one pending connection and installs it in the slot,
// evicting whatever was there. An accept failure is logged and the loop
// keeps going.
func (s *Server) handleAccept() {
	c, err := s.ln.Accept()
	if err != nil {
		aerr := api.NewError(api.ErrCodeAccept, "accept", err)
		s.log.Warn("accept failed", "code", aerr.Code.String(), "error", err)
		s.metrics.AcceptErrors.Inc()
		s.journal.Record(control.Entry{Kind: control.KindAcceptError, Code: aerr.Code.String(), Err: aerr.Error()})
		return
	}

	peer := c.Peer()
	s.log.Info("new connection", "addr", peer.Addr().String(), "port", peer.Port(), "fd", c.Fd())

	if prev := s.slot.Current(); prev != nil {
		s.recordEviction(prev, control.EvictReplaced)
	}
	if _, err := s.slot.Install(c); err != nil {
		s.log.Warn("closing replaced connection", "error", err)
	}
	s.metrics.Accepted.Inc()
	s.metrics.SlotOccupied.Set(1)
	s.journal.Record(control.Entry{Kind: control.KindAccepted, Peer: peer.String()})
}

func (s *Server) recordEviction(c Conn, reason string) {
	peer := c.Peer().String()
	s.log.Info("closing connection", "peer", peer, "reason", reason)
	s.metrics.Evictions.WithLabelValues(reason).Inc()
	s.journal.Record(control.Entry{Kind: control.KindEvicted, Peer: peer, Reason: reason})
}
