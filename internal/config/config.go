// Package config provides configuration management for connsettings.
//
// Settings come from a YAML file, then environment variables override
// individual values. Config file locations (priority order):
//  1. $CONNSETTINGS_CONFIG
//  2. ./connsettings.yaml
//  3. $XDG_CONFIG_HOME/connsettings/config.yaml (~/.config by default)
//  4. /etc/connsettings/config.yaml
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joeshaw/envdecode"
	"gopkg.in/yaml.v3"
)

// envOverrides are the environment variables that override file values.
// Empty values leave the file value alone.
type envOverrides struct {
	Addr           string        `env:"CONNSETTINGS_ADDR"`
	DatabasePath   string        `env:"CONNSETTINGS_DB"`
	KeyfileDir     string        `env:"CONNSETTINGS_KEYFILE_DIR"`
	KeyfileWatch   string        `env:"CONNSETTINGS_KEYFILE_WATCH"`
	Debounce       time.Duration `env:"CONNSETTINGS_KEYFILE_DEBOUNCE"`
	KeyFile        string        `env:"CONNSETTINGS_KEY_FILE"`
	Passphrase     string        `env:"CONNSETTINGS_PASSPHRASE"`
	AgentBackend   string        `env:"CONNSETTINGS_AGENT"`
	RedisAddr      string        `env:"CONNSETTINGS_REDIS_ADDR"`
	AgentKeyPrefix string        `env:"CONNSETTINGS_AGENT_KEY_PREFIX"`
	LogLevel       string        `env:"CONNSETTINGS_LOG_LEVEL"`
	LogFormat      string        `env:"CONNSETTINGS_LOG_FORMAT"`
}

// Load finds and loads the config file, or returns defaults if none found.
// Environment overrides apply either way.
func Load() (*Config, string, error) {
	path := FindConfigPath()

	if path == "" {
		cfg := DefaultConfig()
		if err := cfg.applyEnv(); err != nil {
			return nil, "", err
		}
		return cfg, "", cfg.Validate()
	}

	return LoadFromPath(path)
}

// LoadFromPath loads config from a specific path
func LoadFromPath(path string) (*Config, string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, path, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, path, fmt.Errorf("parse config: %w", err)
	}

	cfg.applyDefaults()
	if err := cfg.applyEnv(); err != nil {
		return nil, path, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, path, err
	}

	return &cfg, path, nil
}

// Save writes config to the specified path
func (c *Config) Save(path string) error {
	if err := EnsureConfigDir(path); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	return os.WriteFile(path, data, 0600)
}

// DefaultConfig returns sensible defaults for a new installation
func DefaultConfig() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// applyDefaults fills in missing values with defaults
func (c *Config) applyDefaults() {
	if c.Server.Addr == "" {
		c.Server.Addr = ":3000"
	}
	if c.Database.Path == "" {
		c.Database.Path = "./connsettings.db"
	}
	if c.Keyfiles.Debounce == 0 {
		c.Keyfiles.Debounce = Duration(500 * time.Millisecond)
	}
	if c.Secrets.KeyFile == "" {
		c.Secrets.KeyFile = "./connsettings.key"
	}
	if c.Agent.Backend == "" {
		c.Agent.Backend = AgentMemory
	}
	if c.Agent.RedisAddr == "" {
		c.Agent.RedisAddr = "localhost:6379"
	}
	if c.Agent.KeyPrefix == "" {
		c.Agent.KeyPrefix = "connsettings:secrets:"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
}

// applyEnv overrides values from CONNSETTINGS_* environment variables
func (c *Config) applyEnv() error {
	var env envOverrides
	if err := envdecode.Decode(&env); err != nil {
		if errors.Is(err, envdecode.ErrNoTargetFieldsAreSet) {
			return nil
		}
		return fmt.Errorf("environment: %w", err)
	}

	set := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	set(&c.Server.Addr, env.Addr)
	set(&c.Database.Path, env.DatabasePath)
	set(&c.Keyfiles.Dir, env.KeyfileDir)
	set(&c.Secrets.KeyFile, env.KeyFile)
	set(&c.Secrets.Passphrase, env.Passphrase)
	set(&c.Agent.Backend, env.AgentBackend)
	set(&c.Agent.RedisAddr, env.RedisAddr)
	set(&c.Agent.KeyPrefix, env.AgentKeyPrefix)
	set(&c.Log.Level, env.LogLevel)
	set(&c.Log.Format, env.LogFormat)

	if env.KeyfileWatch != "" {
		watch, err := strconv.ParseBool(env.KeyfileWatch)
		if err != nil {
			return fmt.Errorf("CONNSETTINGS_KEYFILE_WATCH: %w", err)
		}
		c.Keyfiles.Watch = watch
	}
	if env.Debounce != 0 {
		c.Keyfiles.Debounce = Duration(env.Debounce)
	}
	return nil
}

// Validate reports the first invalid value
func (c *Config) Validate() error {
	switch c.Agent.Backend {
	case AgentNone, AgentMemory, AgentRedis:
	default:
		return fmt.Errorf("agent.backend: unknown backend %q", c.Agent.Backend)
	}
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level: unknown level %q", c.Log.Level)
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("log.format: unknown format %q", c.Log.Format)
	}
	if c.Keyfiles.Watch && c.Keyfiles.Dir == "" {
		return errors.New("keyfiles.watch requires keyfiles.dir")
	}
	if c.Keyfiles.Debounce < 0 {
		return errors.New("keyfiles.debounce must not be negative")
	}
	return nil
}

// Summary returns a human-readable config summary
func (c *Config) Summary() string {
	summary := fmt.Sprintf("Listen: %s, Database: %s\n", c.Server.Addr, c.Database.Path)
	if c.Keyfiles.Dir != "" {
		summary += fmt.Sprintf("Keyfiles: %s (watch: %v)\n", c.Keyfiles.Dir, c.Keyfiles.Watch)
	}
	summary += fmt.Sprintf("Secret agent: %s", c.Agent.Backend)
	return summary
}
