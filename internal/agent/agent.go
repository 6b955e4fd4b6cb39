// Package agent stores agent-owned secrets: secrets the user keeps outside
// the system's persistent storage. Connections refer to them by UUID and
// setting name.
package agent

import (
	"context"
	"sync"

	"connsettings/internal/wire"
)

// Agent keeps the agent-owned secrets of connections
type Agent interface {
	// GetSecrets returns the secrets of one setting, or nil if none are
	// stored
	GetSecrets(ctx context.Context, uuid, settingName string) (wire.Map, error)
	// SaveSecrets replaces the stored secrets of every setting in secrets.
	// Settings with an empty map are removed.
	SaveSecrets(ctx context.Context, uuid string, secrets wire.Connection) error
	// DeleteSecrets forgets every secret of a connection
	DeleteSecrets(ctx context.Context, uuid string) error
}

// Memory is an in-process Agent
type Memory struct {
	mu      sync.RWMutex
	secrets map[string]wire.Connection
}

// NewMemory creates an empty in-memory agent
func NewMemory() *Memory {
	return &Memory{secrets: make(map[string]wire.Connection)}
}

func (m *Memory) GetSecrets(_ context.Context, uuid, settingName string) (wire.Map, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.secrets[uuid][settingName]
	if !ok {
		return nil, nil
	}
	return s.Clone(), nil
}

func (m *Memory) SaveSecrets(_ context.Context, uuid string, secrets wire.Connection) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	conn := m.secrets[uuid]
	if conn == nil {
		conn = make(wire.Connection)
	}
	for name, s := range secrets {
		if len(s) == 0 {
			delete(conn, name)
			continue
		}
		conn[name] = s.Clone()
	}
	if len(conn) == 0 {
		delete(m.secrets, uuid)
		return nil
	}
	m.secrets[uuid] = conn
	return nil
}

func (m *Memory) DeleteSecrets(_ context.Context, uuid string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.secrets, uuid)
	return nil
}
