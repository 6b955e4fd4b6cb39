package config

import (
	"time"
)

// Config is the root configuration structure
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Keyfiles KeyfilesConfig `yaml:"keyfiles"`
	Secrets  SecretsConfig  `yaml:"secrets"`
	Agent    AgentConfig    `yaml:"agent"`
	Log      LogConfig      `yaml:"log"`
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// DatabaseConfig holds database settings
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// KeyfilesConfig names a directory of connection documents
type KeyfilesConfig struct {
	Dir      string   `yaml:"dir,omitempty"`
	Watch    bool     `yaml:"watch"`
	Debounce Duration `yaml:"debounce"`
}

// SecretsConfig locates the key sealing stored secrets. With a passphrase
// the key file holds the derivation salt instead of the key.
type SecretsConfig struct {
	KeyFile    string `yaml:"key_file"`
	Passphrase string `yaml:"passphrase,omitempty"`
}

// Secret agent backends
const (
	AgentNone   = "none"
	AgentMemory = "memory"
	AgentRedis  = "redis"
)

// AgentConfig selects where agent-owned secrets live
type AgentConfig struct {
	Backend   string `yaml:"backend"`
	RedisAddr string `yaml:"redis_addr,omitempty"`
	KeyPrefix string `yaml:"key_prefix,omitempty"`
}

// LogConfig holds logging settings
type LogConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text, json
}

// Duration wraps time.Duration for YAML unmarshaling
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler
func (d *Duration) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML implements yaml.Marshaler
func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

// Duration returns the underlying time.Duration
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}
