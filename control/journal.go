// control/journal.go
// Author: momentics <momentics@gmail.com>
//
// Bounded FIFO of loop events. The main loop appends; the admin surface and
// tests read snapshots.

package control

import (
	"sync"
	"time"

	"github.com/eapache/queue"
)

// DefaultJournalCapacity bounds the journal when no capacity is configured.
const DefaultJournalCapacity = 256

// Kind classifies a journal entry.
type Kind string

const (
	KindListening   Kind = "listening"
	KindAccepted    Kind = "accepted"
	KindAcceptError Kind = "accept_error"
	KindEvicted     Kind = "evicted"
	KindReceived    Kind = "received"
	KindPeerClosed  Kind = "peer_closed"
	KindReadError   Kind = "read_error"
	KindSignal      Kind = "signal"
	KindFatal       Kind = "fatal"
	KindStopped     Kind = "stopped"
)

// Entry is one observable loop event.
type Entry struct {
	Seq      uint64    `json:"seq"`
	At       time.Time `json:"at"`
	Kind     Kind      `json:"kind"`
	Peer     string    `json:"peer,omitempty"`
	Bytes    int       `json:"bytes,omitempty"`
	Signals  uint64    `json:"signals,omitempty"`
	Reason   string    `json:"reason,omitempty"`
	Retained bool      `json:"retained,omitempty"`
	Code     string    `json:"code,omitempty"`
	Err      string    `json:"error,omitempty"`
}

// Journal keeps the most recent entries, dropping the oldest when full.
type Journal struct {
	mu       sync.Mutex
	q        *queue.Queue
	capacity int
	seq      uint64
}

// NewJournal creates a journal holding at most capacity entries.
func NewJournal(capacity int) *Journal {
	if capacity <= 0 {
		capacity = DefaultJournalCapacity
	}
	return &Journal{q: queue.New(), capacity: capacity}
}

// Record stamps e with a sequence number and time and appends it.
func (j *Journal) Record(e Entry) Entry {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.seq++
	e.Seq = j.seq
	if e.At.IsZero() {
		e.At = time.Now()
	}
	for j.q.Length() >= j.capacity {
		j.q.Remove()
	}
	j.q.Add(e)
	return e
}

// Snapshot returns the retained entries, oldest first.
func (j *Journal) Snapshot() []Entry {
	return j.Since(0)
}

// Since returns retained entries with Seq > seq, oldest first.
func (j *Journal) Since(seq uint64) []Entry {
	j.mu.Lock()
	defer j.mu.Unlock()
	out := make([]Entry, 0, j.q.Length())
	for i := 0; i < j.q.Length(); i++ {
		e := j.q.Get(i).(Entry)
		if e.Seq > seq {
			out = append(out, e)
		}
	}
	return out
}

// Len returns the number of retained entries.
func (j *Journal) Len() int {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.q.Length()
}

// LastSeq returns the sequence number of the newest entry ever recorded.
func (j *Journal) LastSeq() uint64 {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.seq
}
