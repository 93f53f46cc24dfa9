package cli

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/tessro/rig/internal/config"
	"github.com/tessro/rig/internal/locate"
)

func TestManagerConfig(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("RIG_DIR", dir)

	exe := filepath.Join(dir, "app")
	if err := os.WriteFile(exe, []byte("#!/bin/sh\n"), 0755); err != nil {
		t.Fatal(err)
	}

	cfg := &config.Config{
		App: config.AppConfig{
			Version:  "2024.1",
			Exe:      exe,
			Args:     []string{"--automation"},
			Endpoint: "http://127.0.0.1:8123",
		},
		Launch: config.LaunchConfig{
			Maintenance:    [][]string{{"-maintenance", "clear-cache"}},
			StrayProcesses: []string{"apphelper"},
			ReadyTimeout:   "90s",
			StopGrace:      "5s",
		},
	}

	mc, err := managerConfig(cfg)
	if err != nil {
		t.Fatalf("managerConfig() error = %v", err)
	}

	if mc.Version != "2024.1" {
		t.Errorf("Version = %q, want %q", mc.Version, "2024.1")
	}
	if mc.Endpoint != "http://127.0.0.1:8123" {
		t.Errorf("Endpoint = %q, want %q", mc.Endpoint, "http://127.0.0.1:8123")
	}
	if mc.ReadyTimeout != 90*time.Second {
		t.Errorf("ReadyTimeout = %v, want %v", mc.ReadyTimeout, 90*time.Second)
	}
	if mc.StopGrace != 5*time.Second {
		t.Errorf("StopGrace = %v, want %v", mc.StopGrace, 5*time.Second)
	}
	if len(mc.Maintenance) != 1 || len(mc.StrayProcesses) != 1 {
		t.Error("maintenance or stray list not carried over")
	}
	if mc.State == nil {
		t.Error("state store not wired")
	}
	if mc.AppLogDir != filepath.Join(dir, "logs") {
		t.Errorf("AppLogDir = %q, want %q", mc.AppLogDir, filepath.Join(dir, "logs"))
	}

	// With app.exe set, versions resolve to that executable directly.
	if _, ok := mc.Locator.(locate.Fixed); !ok {
		t.Errorf("Locator = %T, want locate.Fixed", mc.Locator)
	}
	install, err := mc.Locator.Resolve("anything")
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if install.Exe != exe {
		t.Errorf("resolved exe = %q, want %q", install.Exe, exe)
	}
}

func TestManagerConfigUsesRegistry(t *testing.T) {
	t.Setenv("RIG_DIR", t.TempDir())

	cfg := &config.Config{App: config.AppConfig{Version: "2024.1"}}
	mc, err := managerConfig(cfg)
	if err != nil {
		t.Fatalf("managerConfig() error = %v", err)
	}
	if _, ok := mc.Locator.(locate.Fixed); ok {
		t.Error("Locator is locate.Fixed without app.exe set")
	}
}

func TestInstanceEnv(t *testing.T) {
	env := instanceEnv("http://127.0.0.1:8750", "ab12cd34", "2024.1", 4001)

	want := map[string]bool{
		"RIG_ENDPOINT=http://127.0.0.1:8750": false,
		"RIG_LAUNCH_ID=ab12cd34":             false,
		"RIG_APP_VERSION=2024.1":             false,
		"RIG_APP_PID=4001":                   false,
	}
	for _, kv := range env {
		if _, ok := want[kv]; !ok {
			t.Errorf("unexpected env entry %q", kv)
			continue
		}
		want[kv] = true
	}
	for kv, seen := range want {
		if !seen {
			t.Errorf("missing env entry %q", kv)
		}
	}
}
