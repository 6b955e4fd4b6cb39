package repository

import (
	"context"
	"time"

	"connsettings/internal/wire"
)

// Record is a stored connection. Settings holds the wire form without
// secrets.
type Record struct {
	UUID      string
	ID        string
	Type      string
	Source    string
	Visible   bool
	Settings  wire.Connection
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Repository defines the interface for connection data access
type Repository interface {
	// Connections
	ListConnections(ctx context.Context) ([]*Record, error)
	ListBySource(ctx context.Context, source string) ([]*Record, error)
	GetConnection(ctx context.Context, uuid string) (*Record, error)
	UpsertConnection(ctx context.Context, rec *Record) error
	DeleteConnection(ctx context.Context, uuid string) error
	SetVisible(ctx context.Context, uuid string, visible bool) error

	// Sealed system-owned secrets, one blob per setting
	GetSecrets(ctx context.Context, uuid, settingName string) ([]byte, error)
	SaveSecrets(ctx context.Context, uuid string, sealed map[string][]byte) error
	DeleteSecrets(ctx context.Context, uuid string) error

	// Close releases resources
	Close() error
}
