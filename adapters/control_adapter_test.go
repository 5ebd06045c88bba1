package adapters_test

import (
	"errors"
	"testing"

	"github.com/momentics/hioload-mux/adapters"
	"github.com/momentics/hioload-mux/api"
)

func TestControlAdapterBasic(t *testing.T) {
	ctrl := adapters.NewControlAdapter(nil, 16)
	cfg := ctrl.GetConfig()
	if len(cfg) != 0 {
		t.Error("Expected empty config on init")
	}
	err := ctrl.SetConfig(map[string]any{"k": 1})
	if err != nil {
		t.Fatal(err)
	}
	stats := ctrl.Stats()
	if stats["k"] != 1 {
		t.Error("SetConfig did not apply")
	}
	if _, ok := stats["debug.platform.cpus"]; !ok {
		t.Error("platform probes missing from Stats")
	}
	if _, ok := stats["hioload_mux_connections_accepted_total"]; !ok {
		t.Error("metrics missing from Stats")
	}

	called := 0
	ctrl.OnReload(func() { called++ })
	ctrl.Reload()
	if called != 1 {
		t.Errorf("Reload hook called %d times", called)
	}
}

func TestControlAdapterProbes(t *testing.T) {
	ctrl := adapters.NewControlAdapter(nil, 16)
	ctrl.RegisterDebugProbe("slot.peer", func() any { return "127.0.0.1:1" })
	ctrl.RegisterDebugProbe("broken", func() any { panic("nil slot") })

	stats := ctrl.Stats()
	if stats["debug.slot.peer"] != "127.0.0.1:1" {
		t.Errorf("probe value %v", stats["debug.slot.peer"])
	}
	if stats["debug.broken"] != "probe panic: nil slot" {
		t.Errorf("panicking probe reported as %v", stats["debug.broken"])
	}
	if ctrl.Journal() == nil || ctrl.Metrics() == nil {
		t.Fatal("accessors must not return nil")
	}
}

func TestControlAdapterConfigIsCopied(t *testing.T) {
	ctrl := adapters.NewControlAdapter(nil, 16)
	if err := ctrl.SetConfig(map[string]any{"listen.port": 8080}); err != nil {
		t.Fatal(err)
	}
	snap := ctrl.GetConfig()
	snap["listen.port"] = 1
	if ctrl.GetConfig()["listen.port"] != 8080 {
		t.Error("mutating a snapshot leaked into the adapter")
	}
}

func TestControlAdapterRejectsEmptyKey(t *testing.T) {
	ctrl := adapters.NewControlAdapter(nil, 16)
	err := ctrl.SetConfig(map[string]any{"": 1, "k": 2})
	if !errors.Is(err, api.ErrInvalidArgument) || api.CodeOf(err) != api.ErrCodeInvalidArgument {
		t.Fatalf("expected invalid_argument, got %v", err)
	}
	if len(ctrl.GetConfig()) != 0 {
		t.Error("a rejected config must not be merged")
	}
}
