package server_test

import (
	"errors"
	"fmt"
	"io"
	"math/rand"
	"net/netip"
	"testing"

	"github.com/momentics/hioload-mux/server"
)

// fakeConn records closes. The slot never reads.
type fakeConn struct {
	fd       int
	peer     netip.AddrPort
	closed   int
	closeErr error
}

func newFakeConn(fd int) *fakeConn {
	return &fakeConn{
		fd:   fd,
		peer: netip.MustParseAddrPort(fmt.Sprintf("127.0.0.1:%d", 40000+fd)),
	}
}

func (c *fakeConn) Fd() int {
	if c.closed > 0 {
		return -1
	}
	return c.fd
}

func (c *fakeConn) Peer() netip.AddrPort { return c.peer }

func (c *fakeConn) Read(p []byte) (int, error) {
	return 0, io.EOF
}

func (c *fakeConn) Close() error {
	c.closed++
	return c.closeErr
}

func TestSlotEmpty(t *testing.T) {
	var s server.Slot
	if s.IsOccupied() || s.Current() != nil {
		t.Fatal("zero slot must be empty")
	}
	if info := s.Info(); info.Occupied || info.Fd != -1 {
		t.Errorf("unexpected info %+v", info)
	}
	if err := s.Clear(); err != nil {
		t.Errorf("Clear on empty slot: %v", err)
	}
}

func TestSlotReplacementIsDeterministic(t *testing.T) {
	var s server.Slot
	a, b := newFakeConn(10), newFakeConn(11)

	if evicted, err := s.Install(a); evicted != nil || err != nil {
		t.Fatalf("first install evicted %v err %v", evicted, err)
	}
	evicted, err := s.Install(b)
	if err != nil {
		t.Fatal(err)
	}
	if evicted != a {
		t.Fatalf("expected A evicted, got %v", evicted)
	}
	if a.closed != 1 {
		t.Errorf("A must be closed exactly once by installing B, closed=%d", a.closed)
	}
	if s.Current() != b || b.closed != 0 {
		t.Error("slot must report B, still open")
	}
	info := s.Info()
	if !info.Occupied || info.Fd != 11 || info.Peer != "127.0.0.1:40011" {
		t.Errorf("unexpected info %+v", info)
	}
}

func TestSlotClear(t *testing.T) {
	var s server.Slot
	c := newFakeConn(5)
	c.closeErr = errors.New("boom")
	s.Install(c)

	if err := s.Clear(); err == nil {
		t.Error("close error must be reported")
	}
	if s.IsOccupied() || c.closed != 1 {
		t.Errorf("slot occupied=%v closed=%d", s.IsOccupied(), c.closed)
	}
	if s.Info().Occupied {
		t.Error("published info still occupied")
	}
}

// TestSlotAtMostOne drives random install/clear sequences and checks that at
// every step at most one installed connection is open.
func TestSlotAtMostOne(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	var s server.Slot
	var all []*fakeConn

	for i := 0; i < 1000; i++ {
		if rng.Intn(3) == 0 {
			s.Clear()
		} else {
			c := newFakeConn(i)
			all = append(all, c)
			s.Install(c)
		}
		open := 0
		for _, c := range all {
			if c.closed == 0 {
				open++
			}
		}
		want := 0
		if s.IsOccupied() {
			want = 1
		}
		if open != want {
			t.Fatalf("step %d: %d open connections, slot occupied=%v", i, open, s.IsOccupied())
		}
	}
}
