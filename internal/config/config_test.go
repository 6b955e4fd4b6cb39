package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Server.Addr != ":3000" {
		t.Errorf("Server.Addr = %s, want :3000", cfg.Server.Addr)
	}
	if cfg.Database.Path == "" {
		t.Error("Database.Path should not be empty")
	}
	if cfg.Secrets.KeyFile == "" {
		t.Error("Secrets.KeyFile should not be empty")
	}
	if cfg.Agent.Backend != AgentMemory {
		t.Errorf("Agent.Backend = %s, want %s", cfg.Agent.Backend, AgentMemory)
	}
	if cfg.Keyfiles.Debounce.Duration() != 500*time.Millisecond {
		t.Errorf("Keyfiles.Debounce = %s, want 500ms", cfg.Keyfiles.Debounce.Duration())
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() error: %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(*Config) {}, false},
		{"redis backend", func(c *Config) { c.Agent.Backend = AgentRedis }, false},
		{"no agent", func(c *Config) { c.Agent.Backend = AgentNone }, false},
		{"unknown backend", func(c *Config) { c.Agent.Backend = "vault" }, true},
		{"unknown level", func(c *Config) { c.Log.Level = "trace" }, true},
		{"unknown format", func(c *Config) { c.Log.Format = "xml" }, true},
		{"watch without dir", func(c *Config) { c.Keyfiles.Watch = true }, true},
		{"watch with dir", func(c *Config) {
			c.Keyfiles.Watch = true
			c.Keyfiles.Dir = "/etc/connsettings/keyfiles"
		}, false},
		{"negative debounce", func(c *Config) { c.Keyfiles.Debounce = Duration(-time.Second) }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestSaveAndLoad(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "nested", "config.yaml")

	cfg := DefaultConfig()
	cfg.Server.Addr = "127.0.0.1:8080"
	cfg.Keyfiles.Dir = "/etc/connsettings/keyfiles"
	cfg.Keyfiles.Watch = true
	cfg.Keyfiles.Debounce = Duration(2 * time.Second)
	cfg.Agent.Backend = AgentRedis
	cfg.Agent.RedisAddr = "redis:6379"

	if err := cfg.Save(configPath); err != nil {
		t.Fatalf("Save() error: %v", err)
	}

	loaded, path, err := LoadFromPath(configPath)
	if err != nil {
		t.Fatalf("LoadFromPath() error: %v", err)
	}
	if path != configPath {
		t.Errorf("path = %s, want %s", path, configPath)
	}

	if loaded.Server.Addr != "127.0.0.1:8080" {
		t.Errorf("Server.Addr = %s, want 127.0.0.1:8080", loaded.Server.Addr)
	}
	if !loaded.Keyfiles.Watch || loaded.Keyfiles.Dir != "/etc/connsettings/keyfiles" {
		t.Errorf("Keyfiles = %+v", loaded.Keyfiles)
	}
	if loaded.Keyfiles.Debounce.Duration() != 2*time.Second {
		t.Errorf("Keyfiles.Debounce = %s, want 2s", loaded.Keyfiles.Debounce.Duration())
	}
	if loaded.Agent.Backend != AgentRedis || loaded.Agent.RedisAddr != "redis:6379" {
		t.Errorf("Agent = %+v", loaded.Agent)
	}
}

func TestLoadAppliesDefaults(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(configPath, []byte("server:\n  addr: \":9000\"\n"), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, _, err := LoadFromPath(configPath)
	if err != nil {
		t.Fatalf("LoadFromPath() error: %v", err)
	}
	if cfg.Server.Addr != ":9000" {
		t.Errorf("Server.Addr = %s, want :9000", cfg.Server.Addr)
	}
	if cfg.Log.Level != "info" || cfg.Log.Format != "text" {
		t.Errorf("Log = %+v, want info/text defaults", cfg.Log)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"malformed yaml", "server: [\n"},
		{"bad duration", "keyfiles:\n  debounce: soon\n"},
		{"bad backend", "agent:\n  backend: ldap\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			configPath := filepath.Join(t.TempDir(), "config.yaml")
			if err := os.WriteFile(configPath, []byte(tt.body), 0600); err != nil {
				t.Fatal(err)
			}
			if _, _, err := LoadFromPath(configPath); err == nil {
				t.Error("LoadFromPath() should fail")
			}
		})
	}
}

func TestEnvOverrides(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	if err := DefaultConfig().Save(configPath); err != nil {
		t.Fatal(err)
	}

	t.Setenv("CONNSETTINGS_ADDR", ":4000")
	t.Setenv("CONNSETTINGS_KEYFILE_DIR", "/srv/keyfiles")
	t.Setenv("CONNSETTINGS_KEYFILE_WATCH", "true")
	t.Setenv("CONNSETTINGS_KEYFILE_DEBOUNCE", "250ms")
	t.Setenv("CONNSETTINGS_AGENT", "none")
	t.Setenv("CONNSETTINGS_LOG_FORMAT", "json")

	cfg, _, err := LoadFromPath(configPath)
	if err != nil {
		t.Fatalf("LoadFromPath() error: %v", err)
	}
	if cfg.Server.Addr != ":4000" {
		t.Errorf("Server.Addr = %s, want :4000", cfg.Server.Addr)
	}
	if cfg.Keyfiles.Dir != "/srv/keyfiles" || !cfg.Keyfiles.Watch {
		t.Errorf("Keyfiles = %+v", cfg.Keyfiles)
	}
	if cfg.Keyfiles.Debounce.Duration() != 250*time.Millisecond {
		t.Errorf("Keyfiles.Debounce = %s, want 250ms", cfg.Keyfiles.Debounce.Duration())
	}
	if cfg.Agent.Backend != AgentNone {
		t.Errorf("Agent.Backend = %s, want none", cfg.Agent.Backend)
	}
	if cfg.Log.Format != "json" {
		t.Errorf("Log.Format = %s, want json", cfg.Log.Format)
	}
	// Untouched values come from the file.
	if cfg.Database.Path != "./connsettings.db" {
		t.Errorf("Database.Path = %s, want ./connsettings.db", cfg.Database.Path)
	}
}

func TestEnvOverrideBadBool(t *testing.T) {
	t.Setenv("CONNSETTINGS_KEYFILE_WATCH", "maybe")

	cfg := DefaultConfig()
	if err := cfg.applyEnv(); err == nil {
		t.Error("applyEnv() should reject a non-boolean watch flag")
	}
}

func TestFindConfigPath(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, ConfigFileName)

	cfg := DefaultConfig()
	if err := cfg.Save(configPath); err != nil {
		t.Fatalf("Save() error: %v", err)
	}

	t.Chdir(tmpDir)
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	found := FindConfigPath()
	if found == "" {
		t.Error("FindConfigPath() should find config in working directory")
	}

	// Explicit path doesn't exist, should fall back
	t.Setenv(EnvConfigPath, "/nonexistent/path.yaml")
	found = FindConfigPath()
	if found == "" {
		t.Error("FindConfigPath() should fall back when env path doesn't exist")
	}

	explicit := filepath.Join(t.TempDir(), "explicit.yaml")
	if err := cfg.Save(explicit); err != nil {
		t.Fatal(err)
	}
	t.Setenv(EnvConfigPath, explicit)
	if found := FindConfigPath(); found != explicit {
		t.Errorf("FindConfigPath() = %s, want %s", found, explicit)
	}
}

func TestUserLayout(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/xdg/config")
	t.Setenv("XDG_STATE_HOME", "/xdg/state")

	l := UserLayout()
	tests := []struct {
		name string
		got  string
		want string
	}{
		{"config file", l.ConfigFile(), "/xdg/config/connsettings/config.yaml"},
		{"keyfile dir", l.KeyfileDir(), "/xdg/config/connsettings/system-connections"},
		{"database", l.Database(), "/xdg/state/connsettings/connections.db"},
		{"key file", l.KeyFile(), "/xdg/state/connsettings/secrets.key"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("got %s, want %s", tt.got, tt.want)
			}
		})
	}

	t.Setenv("XDG_STATE_HOME", "")
	t.Setenv("HOME", "/home/alice")
	if got := UserLayout().Database(); got != "/home/alice/.local/state/connsettings/connections.db" {
		t.Errorf("Database() without XDG_STATE_HOME = %s", got)
	}
}

func TestLayoutDefaults(t *testing.T) {
	l := Layout{ConfigDir: filepath.Join(t.TempDir(), "etc"), StateDir: filepath.Join(t.TempDir(), "state")}

	cfg := l.Defaults()
	if cfg.Database.Path != l.Database() || cfg.Secrets.KeyFile != l.KeyFile() || cfg.Keyfiles.Dir != l.KeyfileDir() {
		t.Errorf("Defaults() did not place files in the layout: %+v", cfg)
	}
	if cfg.Server.Addr != ":3000" || cfg.Agent.Backend != AgentMemory {
		t.Errorf("Defaults() lost the ordinary defaults: %+v", cfg)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() error: %v", err)
	}

	if err := l.Create(); err != nil {
		t.Fatalf("Create() error: %v", err)
	}
	fi, err := os.Stat(l.StateDir)
	if err != nil {
		t.Fatalf("state dir: %v", err)
	}
	if perm := fi.Mode().Perm(); perm&0077 != 0 {
		t.Errorf("state dir mode = %v, want owner only", perm)
	}
	if _, err := os.Stat(l.KeyfileDir()); err != nil {
		t.Errorf("keyfile dir: %v", err)
	}
}

func TestDuration(t *testing.T) {
	d := Duration(5 * time.Minute)

	if d.Duration() != 5*time.Minute {
		t.Errorf("Duration() = %s, want 5m", d.Duration())
	}

	marshaled, err := d.MarshalYAML()
	if err != nil {
		t.Fatalf("MarshalYAML() error: %v", err)
	}
	if marshaled != "5m0s" {
		t.Errorf("MarshalYAML() = %v, want 5m0s", marshaled)
	}
}

func TestSummary(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Keyfiles.Dir = "/srv/keyfiles"
	if s := cfg.Summary(); s == "" {
		t.Error("Summary() should not be empty")
	}
}
