package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "server.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, "server:\n  host: 127.0.0.1\n"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Host != "127.0.0.1" || cfg.Server.Port != 8080 {
		t.Fatalf("unexpected server config: %+v", cfg.Server)
	}
	if cfg.Storage.Driver != "memory" || cfg.Catalog.RetryAttempts != 3 || cfg.Catalog.RetryBackoff != 200*time.Millisecond {
		t.Fatalf("defaults not applied: %+v %+v", cfg.Storage, cfg.Catalog)
	}
	if cfg.Planner.MainWidth != 10 || cfg.Planner.CharmHeight != 3 {
		t.Fatalf("unexpected grid defaults: %+v", cfg.Planner)
	}
}

func TestLoadYAMLAndEnvOverrides(t *testing.T) {
	path := writeConfig(t, `
storage:
  driver: sqlite
  sqlite_path: /tmp/a.db
catalog:
  retry_backoff: 1s
planner:
  main_width: 12
classes:
  - name: Paladin
    weapons: [Sword, Mace]
`)
	t.Setenv("BUILDPLANNER_STORAGE_SQLITE_PATH", "/tmp/b.db")
	t.Setenv("BUILDPLANNER_SERVER_PORT", "9090")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Storage.SQLitePath != "/tmp/b.db" {
		t.Fatalf("env must override yaml, got %s", cfg.Storage.SQLitePath)
	}
	if cfg.Server.Port != 9090 || cfg.Catalog.RetryBackoff != time.Second || cfg.Planner.MainWidth != 12 {
		t.Fatalf("unexpected config: %+v", cfg)
	}
	if len(cfg.Classes) != 1 || cfg.Classes[0].Name != "Paladin" || len(cfg.Classes[0].Weapons) != 2 {
		t.Fatalf("classes not loaded: %+v", cfg.Classes)
	}
}

func TestLoadRejectsBadStorage(t *testing.T) {
	if _, err := Load(writeConfig(t, "storage:\n  driver: postgres\n")); err == nil {
		t.Fatalf("expected unknown driver error")
	}
	if _, err := Load(writeConfig(t, "storage:\n  driver: redis\n")); err == nil {
		t.Fatalf("redis storage without an address must fail")
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatalf("expected read error")
	}
}
