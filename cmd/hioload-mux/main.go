// File: cmd/hioload-mux/main.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

// Command hioload-mux runs the single-slot TCP server.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/momentics/hioload-mux/api"
	"github.com/spf13/cobra"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// Exit statuses.
const (
	exitOK      = 0
	exitStartup = 1
	exitFatal   = 2
)

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "hioload-mux",
		Short: "Single-slot TCP server with a race-free control signal",
		Long: `hioload-mux accepts TCP connections on one port and reads from at most
one of them at a time: every new connection replaces the previous one.

SIGHUP is caught as a reload hint and reported by the event loop without
ever being lost between the readiness check and the wait.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.AddCommand(
		serveCmd(),
		versionCmd(),
	)
	return rootCmd
}

func main() {
	err := newRootCmd().ExecuteContext(context.Background())
	if err != nil {
		if code := api.CodeOf(err); code != api.ErrCodeInternal {
			fmt.Fprintf(os.Stderr, "Error [%s]: %s\n", code, err)
		} else {
			fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		}
	}
	os.Exit(exitCode(err))
}

// exitCode maps a command error to the process exit status.
func exitCode(err error) int {
	switch {
	case err == nil:
		return exitOK
	case errors.Is(err, api.ErrFatalWait):
		return exitFatal
	default:
		return exitStartup
	}
}
