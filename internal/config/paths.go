package config

import (
	"os"
	"path/filepath"
)

const (
	// EnvConfigPath names an explicit config file
	EnvConfigPath = "CONNSETTINGS_CONFIG"
	// ConfigFileName is looked up in the working directory
	ConfigFileName = "connsettings.yaml"
)

// Layout places the files of one installation. Configuration and keyfile
// connections live under ConfigDir; the connection store and the key that
// seals its secrets live under StateDir.
type Layout struct {
	ConfigDir string
	StateDir  string
}

// SystemLayout is the layout of a system-wide installation
var SystemLayout = Layout{
	ConfigDir: "/etc/connsettings",
	StateDir:  "/var/lib/connsettings",
}

// UserLayout follows the XDG base directories of the current user
func UserLayout() Layout {
	home, _ := os.UserHomeDir()
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		configHome = filepath.Join(home, ".config")
	}
	stateHome := os.Getenv("XDG_STATE_HOME")
	if stateHome == "" {
		stateHome = filepath.Join(home, ".local", "state")
	}
	return Layout{
		ConfigDir: filepath.Join(configHome, "connsettings"),
		StateDir:  filepath.Join(stateHome, "connsettings"),
	}
}

func (l Layout) ConfigFile() string { return filepath.Join(l.ConfigDir, "config.yaml") }
func (l Layout) KeyfileDir() string { return filepath.Join(l.ConfigDir, "system-connections") }
func (l Layout) Database() string   { return filepath.Join(l.StateDir, "connections.db") }
func (l Layout) KeyFile() string    { return filepath.Join(l.StateDir, "secrets.key") }

// Defaults returns the default config with every file placed in l
func (l Layout) Defaults() *Config {
	cfg := &Config{
		Database: DatabaseConfig{Path: l.Database()},
		Keyfiles: KeyfilesConfig{Dir: l.KeyfileDir()},
		Secrets:  SecretsConfig{KeyFile: l.KeyFile()},
	}
	cfg.applyDefaults()
	return cfg
}

// Create makes the layout's directories. The state directory holds key
// material and is private to the owner.
func (l Layout) Create() error {
	if err := os.MkdirAll(l.KeyfileDir(), 0755); err != nil {
		return err
	}
	return os.MkdirAll(l.StateDir, 0700)
}

// FindConfigPath returns the first config file found in
// $CONNSETTINGS_CONFIG, ./connsettings.yaml, the user layout and the system
// layout, or "" when there is none
func FindConfigPath() string {
	candidates := []string{
		os.Getenv(EnvConfigPath),
		ConfigFileName,
		UserLayout().ConfigFile(),
		SystemLayout.ConfigFile(),
	}
	for _, path := range candidates {
		if path == "" {
			continue
		}
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if abs, err := filepath.Abs(path); err == nil {
			return abs
		}
		return path
	}
	return ""
}

// EnsureConfigDir creates the directory holding configPath
func EnsureConfigDir(configPath string) error {
	return os.MkdirAll(filepath.Dir(configPath), 0755)
}
