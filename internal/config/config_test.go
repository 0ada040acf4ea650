package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_WritesDefaults(t *testing.T) {
	dir := t.TempDir()
	t.Setenv(HomeEnv, dir)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.DBPath != filepath.Join(dir, "tasktally.db") {
		t.Errorf("Unexpected db path %s", cfg.DBPath)
	}
	if cfg.ListenAddr != "127.0.0.1:7466" {
		t.Errorf("Unexpected listen addr %s", cfg.ListenAddr)
	}
	if _, err := os.Stat(filepath.Join(dir, "config.toml")); err != nil {
		t.Errorf("Config file should be written on first load: %v", err)
	}
}

func TestLoad_ReadsExistingFile(t *testing.T) {
	dir := t.TempDir()
	t.Setenv(HomeEnv, dir)

	data := "db_path = \"~/data/tally.db\"\nlisten_addr = \"127.0.0.1:9000\"\ninclude_terminal = true\n"
	if err := os.WriteFile(filepath.Join(dir, "config.toml"), []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	home, _ := os.UserHomeDir()
	if cfg.DBPath != filepath.Join(home, "data", "tally.db") {
		t.Errorf("Expected ~ to expand, got %s", cfg.DBPath)
	}
	if cfg.ListenAddr != "127.0.0.1:9000" || !cfg.IncludeTerminal {
		t.Errorf("Unexpected config %+v", cfg)
	}
	if cfg.CategoriesFile != filepath.Join(dir, "categories.yaml") {
		t.Errorf("Unset keys should keep defaults, got %s", cfg.CategoriesFile)
	}
}

func TestSaveRoundTrip(t *testing.T) {
	dir := t.TempDir()
	t.Setenv(HomeEnv, dir)

	cfg := DefaultConfig()
	cfg.ListenAddr = "0.0.0.0:8080"
	if err := Save(cfg); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	got, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if got.ListenAddr != "0.0.0.0:8080" {
		t.Errorf("Expected saved listen addr, got %s", got.ListenAddr)
	}
}

func TestLockPath(t *testing.T) {
	dir := t.TempDir()
	t.Setenv(HomeEnv, dir)
	p, err := LockPath()
	if err != nil {
		t.Fatal(err)
	}
	if p != filepath.Join(dir, "daemon.lock") {
		t.Errorf("Unexpected lock path %s", p)
	}
}
