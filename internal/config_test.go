package internal

import (
	"path/filepath"
	"testing"

	"localchat/testutil"
)

func TestResolveConfigDefaults(t *testing.T) {
	dir := testutil.CreateTempDir(t)
	t.Setenv("HOME", testutil.CreateTempDir(t))
	t.Setenv("LOCALCHAT_ENDPOINT", "")
	t.Setenv("LOCALCHAT_DATA_DIR", "")

	cfg, err := ResolveConfig("", dir)
	if err != nil {
		t.Fatalf("ResolveConfig failed: %v", err)
	}
	if cfg.Endpoint != DefaultEndpoint {
		t.Errorf("Expected default endpoint, got %q", cfg.Endpoint)
	}
	if cfg.DataDir != dir {
		t.Errorf("Expected flag data dir, got %q", cfg.DataDir)
	}
}

func TestResolveConfigEnvOverridesDefault(t *testing.T) {
	dir := testutil.CreateTempDir(t)
	t.Setenv("LOCALCHAT_ENDPOINT", "http://env-host:11434")
	t.Setenv("LOCALCHAT_DATA_DIR", dir)

	cfg, err := ResolveConfig("", "")
	if err != nil {
		t.Fatalf("ResolveConfig failed: %v", err)
	}
	if cfg.Endpoint != "http://env-host:11434" {
		t.Errorf("Expected env endpoint, got %q", cfg.Endpoint)
	}
	if cfg.DataDir != dir {
		t.Errorf("Expected env data dir, got %q", cfg.DataDir)
	}
}

func TestResolveConfigFlagBeatsEnv(t *testing.T) {
	dir := testutil.CreateTempDir(t)
	t.Setenv("LOCALCHAT_ENDPOINT", "http://env-host:11434")

	cfg, err := ResolveConfig("http://flag-host:11434", dir)
	if err != nil {
		t.Fatalf("ResolveConfig failed: %v", err)
	}
	if cfg.Endpoint != "http://flag-host:11434" {
		t.Errorf("Expected flag endpoint to win, got %q", cfg.Endpoint)
	}
}

func TestResolveConfigCreatesDataDir(t *testing.T) {
	base := testutil.CreateTempDir(t)
	nested := filepath.Join(base, "deep", "nested", "dir")

	cfg, err := ResolveConfig("", nested)
	if err != nil {
		t.Fatalf("ResolveConfig failed: %v", err)
	}
	// DatabasePath must live under the created directory.
	if got := cfg.DatabasePath(); got != filepath.Join(nested, "state.db") {
		t.Errorf("Unexpected database path %q", got)
	}
	db, err := OpenDatabase(cfg.DatabasePath())
	if err != nil {
		t.Fatalf("Expected the data directory to be usable: %v", err)
	}
	db.Close()
}

func TestDatabasePath(t *testing.T) {
	cfg := Config{DataDir: "/var/data/localchat"}
	if got := cfg.DatabasePath(); got != filepath.Join("/var/data/localchat", "state.db") {
		t.Errorf("DatabasePath = %q", got)
	}
}
