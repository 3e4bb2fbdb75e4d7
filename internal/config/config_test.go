package config

import (
	"os"
	"path/filepath"
	"testing"
)

// ─── Defaults ───

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Host != DefaultHost {
		t.Errorf("Host = %q, want %q", cfg.Host, DefaultHost)
	}
	if cfg.Port != DefaultPort {
		t.Errorf("Port = %d, want %d", cfg.Port, DefaultPort)
	}
	if cfg.Model != DefaultModel {
		t.Errorf("Model = %q, want %q", cfg.Model, DefaultModel)
	}
	if cfg.MemoryBackend != "memory" {
		t.Errorf("MemoryBackend = %q, want memory", cfg.MemoryBackend)
	}
	if cfg.AgentMaxIter != DefaultAgentMaxIter {
		t.Errorf("AgentMaxIter = %d, want %d", cfg.AgentMaxIter, DefaultAgentMaxIter)
	}
	if !cfg.EnableAuth {
		t.Error("expected auth enabled by default")
	}
}

// ─── Environment Overrides ───

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("REAGENT_PORT", "9090")
	t.Setenv("REAGENT_LOG_LEVEL", "debug")
	t.Setenv("REAGENT_MODEL", "claude-haiku-4-5")
	t.Setenv("REAGENT_API_KEYS", "key-1,key-2")
	t.Setenv("REAGENT_MEMORY_BACKEND", "postgres")
	t.Setenv("POSTGRES_DSN", "postgres://localhost/reagent")
	t.Setenv("ENABLE_AUTH", "false")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Port != 9090 {
		t.Errorf("Port = %d, want 9090", cfg.Port)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %q, want debug", cfg.LogLevel)
	}
	if cfg.Model != "claude-haiku-4-5" {
		t.Errorf("Model = %q", cfg.Model)
	}
	if len(cfg.APIKeys) != 2 || cfg.APIKeys[0] != "key-1" {
		t.Errorf("APIKeys = %v", cfg.APIKeys)
	}
	if cfg.MemoryBackend != "postgres" {
		t.Errorf("MemoryBackend = %q, want postgres", cfg.MemoryBackend)
	}
	if cfg.PostgresDSN == "" {
		t.Error("expected PostgresDSN set")
	}
	if cfg.EnableAuth {
		t.Error("expected auth disabled")
	}
}

func TestLoadInvalidPortIgnored(t *testing.T) {
	t.Setenv("REAGENT_PORT", "not-a-port")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Port != DefaultPort {
		t.Errorf("Port = %d, want default %d", cfg.Port, DefaultPort)
	}
}

// ─── JSON Config File ───

func TestLoadJSONFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	data := []byte(`{"host": "127.0.0.1", "port": 8100, "model": "claude-opus-4-6", "mcp_server_url": "http://localhost:8800/mcp"}`)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("REAGENT_CONFIG", path)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Host != "127.0.0.1" {
		t.Errorf("Host = %q", cfg.Host)
	}
	if cfg.Port != 8100 {
		t.Errorf("Port = %d", cfg.Port)
	}
	if cfg.MCPServerURL != "http://localhost:8800/mcp" {
		t.Errorf("MCPServerURL = %q", cfg.MCPServerURL)
	}
}

func TestLoadJSONFileThenEnvWins(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(`{"port": 8100}`), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("REAGENT_CONFIG", path)
	t.Setenv("REAGENT_PORT", "8200")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Port != 8200 {
		t.Errorf("Port = %d, want env override 8200", cfg.Port)
	}
}

func TestLoadMissingConfigFile(t *testing.T) {
	t.Setenv("REAGENT_CONFIG", filepath.Join(t.TempDir(), "nope.json"))

	if _, err := Load(); err == nil {
		t.Error("expected error for missing config file")
	}
}
