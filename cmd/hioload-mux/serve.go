// File: cmd/hioload-mux/serve.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/momentics/hioload-mux/admin"
	"github.com/momentics/hioload-mux/control"
	"github.com/momentics/hioload-mux/server"
	"github.com/spf13/cobra"
)

type serveOptions struct {
	host             string
	port             int
	backlog          int
	readBuffer       int
	signal           string
	evictOnReadError bool
	journalCapacity  int
	loopCPU          int
	logLevel         string
	logFormat        string
	adminAddr        string
}

func defaultServeOptions() *serveOptions {
	d := server.DefaultConfig()
	return &serveOptions{
		host:            d.Host,
		port:            d.Port,
		backlog:         d.Backlog,
		readBuffer:      d.ReadBufferSize,
		signal:          "hup",
		journalCapacity: d.JournalCapacity,
		loopCPU:         d.LoopCPU,
		logLevel:        "info",
		logFormat:       "text",
	}
}

func serveCmd() *cobra.Command {
	return newServeCmd(defaultServeOptions())
}

func newServeCmd(o *serveOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the server",
		Long: `Run the server until it is killed.

Examples:
  hioload-mux serve
  hioload-mux serve --port=9000 --log-format=json
  hioload-mux serve --admin-addr=127.0.0.1:9090`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), o, cmd.ErrOrStderr())
		},
	}

	f := cmd.Flags()
	f.StringVarP(&o.host, "host", "H", o.host, "Address to bind to (empty for all IPv4 addresses)")
	f.IntVarP(&o.port, "port", "p", o.port, "TCP port to listen on (0 for ephemeral)")
	f.IntVar(&o.backlog, "backlog", o.backlog, "Pending connection queue length")
	f.IntVar(&o.readBuffer, "read-buffer", o.readBuffer, "Bytes read per readiness event")
	f.StringVar(&o.signal, "signal", o.signal, "Control signal: hup, usr1 or usr2")
	f.BoolVar(&o.evictOnReadError, "evict-on-read-error", o.evictOnReadError, "Close the active connection when a read fails")
	f.IntVar(&o.journalCapacity, "journal-capacity", o.journalCapacity, "Loop events retained for /debug/events")
	f.IntVar(&o.loopCPU, "loop-cpu", o.loopCPU, "Pin the event loop thread to this CPU (-1 disables)")
	f.StringVar(&o.logLevel, "log-level", o.logLevel, "Log level: debug, info, warn or error")
	f.StringVar(&o.logFormat, "log-format", o.logFormat, "Log format: text or json")
	f.StringVar(&o.adminAddr, "admin-addr", o.adminAddr, "Serve metrics and debug endpoints on this address")

	return cmd
}

// logger builds the slog logger selected by the flags.
func (o *serveOptions) logger(w io.Writer) (*slog.Logger, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(o.logLevel)); err != nil {
		return nil, fmt.Errorf("--log-level: %w", err)
	}
	opts := &slog.HandlerOptions{Level: level}
	switch strings.ToLower(o.logFormat) {
	case "text":
		return slog.New(slog.NewTextHandler(w, opts)), nil
	case "json":
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	default:
		return nil, fmt.Errorf("--log-format: unknown format %q", o.logFormat)
	}
}

// config maps the flags onto a server configuration.
func (o *serveOptions) config(logger *slog.Logger) (*server.Config, error) {
	sig, ok := controlSignals[strings.ToLower(o.signal)]
	if !ok {
		return nil, fmt.Errorf("--signal: unknown signal %q", o.signal)
	}
	if o.readBuffer <= 0 {
		return nil, fmt.Errorf("--read-buffer: must be positive, got %d", o.readBuffer)
	}
	if o.journalCapacity <= 0 {
		o.journalCapacity = control.DefaultJournalCapacity
	}
	cfg := server.DefaultConfig()
	cfg.Host = o.host
	cfg.Port = o.port
	cfg.Backlog = o.backlog
	cfg.ReadBufferSize = o.readBuffer
	cfg.ControlSignal = sig
	cfg.EvictOnReadError = o.evictOnReadError
	cfg.JournalCapacity = o.journalCapacity
	cfg.LoopCPU = o.loopCPU
	cfg.Logger = logger
	return cfg, nil
}

func runServe(ctx context.Context, o *serveOptions, logOut io.Writer) error {
	logger, err := o.logger(logOut)
	if err != nil {
		return err
	}
	cfg, err := o.config(logger)
	if err != nil {
		return err
	}

	srv, err := server.New(cfg)
	if err != nil {
		return err
	}

	if o.adminAddr != "" {
		a := admin.New(admin.Sources{
			Control:  srv.Control(),
			Journal:  srv.Journal(),
			Gatherer: srv.Gatherer(),
		}, logger)
		if err := a.Start(o.adminAddr); err != nil {
			srv.Shutdown()
			return err
		}
		defer func() {
			sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := a.Close(sctx); err != nil {
				logger.Warn("admin shutdown", "error", err)
			}
		}()
	}

	srv.Control().OnReload(func() {
		logger.Info("reload hint", "pid", os.Getpid())
	})

	return srv.Run(ctx)
}
