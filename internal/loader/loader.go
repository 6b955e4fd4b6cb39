// Package loader reads connection keyfiles from disk
package loader

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"connsettings/internal/codec"
	"connsettings/internal/connection"
	"connsettings/internal/setting"
)

// Keyfile is one connection read from a directory
type Keyfile struct {
	Path       string
	Connection *connection.Connection
	Err        error
}

// LoadFile reads and parses one connection document. The codec is picked
// by file extension. The connection is not verified.
func LoadFile(path string) (*connection.Connection, error) {
	c, err := codec.ForPath(path)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	defer f.Close()

	w, err := c.Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	conn, err := connection.FromWire(w)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return conn, nil
}

// LoadDir reads every supported document in dir, in name order. Files
// that fail to parse are returned with Err set; only a failure to list the
// directory is an error.
func LoadDir(dir string) ([]Keyfile, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory: %w", err)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() || !codec.Supported(e.Name()) {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)

	out := make([]Keyfile, 0, len(names))
	for _, name := range names {
		path := filepath.Join(dir, name)
		conn, err := LoadFile(path)
		out = append(out, Keyfile{Path: path, Connection: conn, Err: err})
	}
	return out, nil
}

// SaveFile writes conn to path in the format its extension names. The
// file is replaced atomically.
func SaveFile(path string, conn *connection.Connection, mode os.FileMode) error {
	c, err := codec.ForPath(path)
	if err != nil {
		return err
	}
	w, err := conn.ToWire(setting.SerializeAll)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := c.Export(w, tmp); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Chmod(mode); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to set permissions: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to replace file: %w", err)
	}
	return nil
}
