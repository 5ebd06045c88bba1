// File: internal/transport/doc.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

// Package transport provides raw, non-blocking TCP descriptors for the
// hioload-mux core: a listener with an explicit backlog and the accepted
// connections it produces. Descriptors are plain ints so they can be handed to
// the readiness multiplexer; the Go network poller is not involved.
package transport
