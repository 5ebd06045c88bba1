// File: internal/concurrency/doc.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

// Package concurrency holds the primitives shared by the hioload-mux core.
// The only state that crosses goroutines in the core is the signal latch, so
// this package stays small: a lock-free counting latch and the Waker contract
// it pokes.
package concurrency
