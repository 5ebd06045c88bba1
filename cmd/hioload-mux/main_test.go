//go:build unix

package main

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"
	"syscall"
	"testing"

	"github.com/momentics/hioload-mux/api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExitCode(t *testing.T) {
	assert.Equal(t, exitOK, exitCode(nil))
	assert.Equal(t, exitStartup, exitCode(fmt.Errorf("%w: listener: %w", api.ErrStartup, syscall.EADDRINUSE)))
	assert.Equal(t, exitFatal, exitCode(fmt.Errorf("%w: epoll wait: %w", api.ErrFatalWait, syscall.EBADF)))
	assert.Equal(t, exitStartup, exitCode(errors.New("unknown flag")))
}

func TestServeFlagsMapToConfig(t *testing.T) {
	o := defaultServeOptions()
	cmd := newServeCmd(o)
	require.NoError(t, cmd.ParseFlags([]string{
		"--host=127.0.0.1",
		"--port=9000",
		"--backlog=16",
		"--read-buffer=4096",
		"--signal=usr1",
		"--evict-on-read-error",
		"--loop-cpu=0",
	}))

	cfg, err := o.config(nil)
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1", cfg.Host)
	assert.Equal(t, 9000, cfg.Port)
	assert.Equal(t, 16, cfg.Backlog)
	assert.Equal(t, 4096, cfg.ReadBufferSize)
	assert.Equal(t, syscall.SIGUSR1, cfg.ControlSignal)
	assert.True(t, cfg.EvictOnReadError)
	assert.Equal(t, 0, cfg.LoopCPU)
}

func TestServeDefaults(t *testing.T) {
	cfg, err := defaultServeOptions().config(nil)
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, 5, cfg.Backlog)
	assert.Equal(t, 1024, cfg.ReadBufferSize)
	assert.Equal(t, syscall.SIGHUP, cfg.ControlSignal)
	assert.False(t, cfg.EvictOnReadError)
	assert.Equal(t, -1, cfg.LoopCPU)
}

func TestServeRejectsBadFlags(t *testing.T) {
	o := defaultServeOptions()
	o.signal = "term"
	_, err := o.config(nil)
	assert.ErrorContains(t, err, "--signal")

	o = defaultServeOptions()
	o.readBuffer = 0
	_, err = o.config(nil)
	assert.ErrorContains(t, err, "--read-buffer")

	o = defaultServeOptions()
	o.logFormat = "xml"
	_, err = o.logger(io.Discard)
	assert.ErrorContains(t, err, "--log-format")

	o = defaultServeOptions()
	o.logLevel = "loud"
	_, err = o.logger(io.Discard)
	assert.ErrorContains(t, err, "--log-level")
}

func TestJSONLogger(t *testing.T) {
	o := defaultServeOptions()
	o.logFormat = "json"
	var buf bytes.Buffer
	logger, err := o.logger(&buf)
	require.NoError(t, err)
	logger.Info("server is listening", "port", 8080)
	assert.True(t, strings.HasPrefix(buf.String(), "{"))
	assert.Contains(t, buf.String(), `"port":8080`)
}

func TestVersion(t *testing.T) {
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"version", "--short"})
	require.NoError(t, cmd.Execute())
	assert.Equal(t, version+"\n", out.String())
}
