//go:build !unix

// File: cmd/hioload-mux/signals_other.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package main

import "syscall"

var controlSignals = map[string]syscall.Signal{
	"hup": syscall.SIGHUP,
}
