// Package vault seals system-owned secrets before they are persisted.
// Sealing uses XChaCha20-Poly1305; the key is either random and kept in a
// key file, or derived from a passphrase with Argon2id.
package vault

import (
	"crypto/cipher"
	"crypto/rand"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/chacha20poly1305"
)

// KeySize is the size of a vault key
const KeySize = chacha20poly1305.KeySize

const saltSize = 16

// Argon2id parameters
const (
	argonTime    = 1
	argonMemory  = 64 * 1024
	argonThreads = 4
)

var (
	// ErrInvalidKey is returned for keys of the wrong size
	ErrInvalidKey = errors.New("invalid vault key")
	// ErrOpen is returned when sealed data fails authentication
	ErrOpen = errors.New("cannot open sealed data")
)

// Vault seals and opens byte strings
type Vault struct {
	aead cipher.AEAD
}

// New creates a vault from a raw key
func New(key []byte) (*Vault, error) {
	if len(key) != KeySize {
		return nil, fmt.Errorf("%w: %d bytes, want %d", ErrInvalidKey, len(key), KeySize)
	}
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, err
	}
	return &Vault{aead: aead}, nil
}

// FromPassphrase derives the vault key from a passphrase and salt
func FromPassphrase(passphrase string, salt []byte) (*Vault, error) {
	if passphrase == "" {
		return nil, fmt.Errorf("%w: empty passphrase", ErrInvalidKey)
	}
	key := argon2.IDKey([]byte(passphrase), salt, argonTime, argonMemory, argonThreads, KeySize)
	return New(key)
}

// Open creates a vault from configuration. With a passphrase, path holds
// the salt; otherwise it holds the raw key. A missing file is created with
// fresh random content.
func Open(path, passphrase string) (*Vault, error) {
	size := KeySize
	if passphrase != "" {
		size = saltSize
	}
	data, err := loadOrCreate(path, size)
	if err != nil {
		return nil, err
	}
	if passphrase != "" {
		return FromPassphrase(passphrase, data)
	}
	return New(data)
}

func loadOrCreate(path string, size int) ([]byte, error) {
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if len(data) != size {
			return nil, fmt.Errorf("%w: %s holds %d bytes, want %d", ErrInvalidKey, path, len(data), size)
		}
		return data, nil
	case !errors.Is(err, os.ErrNotExist):
		return nil, fmt.Errorf("failed to read key file: %w", err)
	}

	data = make([]byte, size)
	if _, err := rand.Read(data); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("failed to create key directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return nil, fmt.Errorf("failed to write key file: %w", err)
	}
	return data, nil
}

// Seal encrypts plaintext. aad is authenticated but not encrypted; the
// same aad must be passed to Unseal.
func (v *Vault) Seal(plaintext, aad []byte) ([]byte, error) {
	nonce := make([]byte, v.aead.NonceSize(), v.aead.NonceSize()+len(plaintext)+v.aead.Overhead())
	if _, err := rand.Read(nonce); err != nil {
		return nil, err
	}
	return v.aead.Seal(nonce, nonce, plaintext, aad), nil
}

// Unseal decrypts data produced by Seal
func (v *Vault) Unseal(sealed, aad []byte) ([]byte, error) {
	n := v.aead.NonceSize()
	if len(sealed) < n+v.aead.Overhead() {
		return nil, fmt.Errorf("%w: too short", ErrOpen)
	}
	plain, err := v.aead.Open(nil, sealed[:n], sealed[n:], aad)
	if err != nil {
		return nil, ErrOpen
	}
	return plain, nil
}
