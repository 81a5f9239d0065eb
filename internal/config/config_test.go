package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir()) // keep a stray ./config.yaml out of the test

	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}

	if cfg.CacheTTL != "1h" {
		t.Errorf("CacheTTL = %q, want 1h", cfg.CacheTTL)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("LogLevel = %q, want info", cfg.LogLevel)
	}
	if cfg.AA.BaseURL != "https://artificialanalysis.ai/api/v2" {
		t.Errorf("AA.BaseURL = %q", cfg.AA.BaseURL)
	}
	if cfg.MDev.URL != "https://models.dev/api.json" {
		t.Errorf("MDev.URL = %q", cfg.MDev.URL)
	}
	if cfg.Remote.Tag != "data/latest" {
		t.Errorf("Remote.Tag = %q", cfg.Remote.Tag)
	}
	if cfg.CacheDir == "" {
		t.Error("CacheDir empty")
	}
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := strings.Join([]string{
		"cache_ttl: 30m",
		"log_level: debug",
		"artificialanalysis:",
		"  api_key: file-key",
	}, "\n")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}

	if cfg.CacheTTL != "30m" {
		t.Errorf("CacheTTL = %q, want 30m", cfg.CacheTTL)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %q, want debug", cfg.LogLevel)
	}
	if cfg.AA.APIKey != "file-key" {
		t.Errorf("AA.APIKey = %q", cfg.AA.APIKey)
	}
	// Unset values keep their defaults.
	if cfg.MDev.URL != "https://models.dev/api.json" {
		t.Errorf("MDev.URL = %q", cfg.MDev.URL)
	}
}

func TestLoadEnvOverride(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("AA_API_KEY", "env-key")
	t.Setenv("MODELFUSE_CACHE_DIR", "/tmp/env-cache")

	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}

	if cfg.AA.APIKey != "env-key" {
		t.Errorf("AA.APIKey = %q, want env-key", cfg.AA.APIKey)
	}
	if cfg.CacheDir != "/tmp/env-cache" {
		t.Errorf("CacheDir = %q, want /tmp/env-cache", cfg.CacheDir)
	}
}

func TestWriteDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "conf", "config.yaml")

	if err := WriteDefault(path); err != nil {
		t.Fatal(err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	// API keys may land here, so the file must not be world-readable.
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Errorf("perm = %o, want 600", perm)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Remote.Owner != "everstacklabs" || cfg.Remote.Repo != "modelfuse" {
		t.Errorf("remote = %+v", cfg.Remote)
	}

	// Refuses to clobber an existing file.
	if err := WriteDefault(path); err == nil {
		t.Error("expected error when config already exists")
	}
}
