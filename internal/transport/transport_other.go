//go:build !unix

// internal/transport/transport_other.go
//
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package transport

import (
	"net/netip"

	"github.com/momentics/hioload-mux/api"
)

var errUnsupported = api.NewError(api.ErrCodeNotSupported, "transport", api.ErrNotSupported)

func sysListen(netip.AddrPort, int, bool) (int, netip.AddrPort, error) {
	return -1, netip.AddrPort{}, errUnsupported
}

func sysAccept(int) (int, netip.AddrPort, error) {
	return -1, netip.AddrPort{}, errUnsupported
}

func sysRead(int, []byte) (int, error) { return 0, errUnsupported }

func sysClose(int) error { return errUnsupported }
