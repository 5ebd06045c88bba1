// Copyright (c) 2025
// Author: momentics <momentics@gmail.com>

// Package reactor provides the readiness multiplexer of hioload-mux: one
// blocking wait over a small set of read descriptors plus an internal wake-up
// source that turns a latched signal into readiness. Linux uses epoll(7) and
// eventfd(2); other unix systems use poll(2) and a self-pipe.
package reactor
