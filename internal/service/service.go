package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"connsettings/internal/agent"
	"connsettings/internal/connection"
	"connsettings/internal/repository"
	"connsettings/internal/setting"
	"connsettings/internal/vault"
	"connsettings/internal/wire"
)

var (
	// ErrNotFound is returned for an unknown connection UUID
	ErrNotFound = errors.New("connection not found")
	// ErrExists is returned when adding a connection whose UUID is taken
	ErrExists = errors.New("connection already exists")
	// ErrUUIDMismatch is returned when replacement settings name another UUID
	ErrUUIDMismatch = errors.New("settings belong to another connection")
)

// Entry is one connection as the service reports it. Connection never
// carries secrets; use GetSecrets.
type Entry struct {
	Connection *connection.Connection
	Source     string
	Visible    bool
	// Unsaved is set while in-memory settings differ from storage
	Unsaved   bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// entry is the live state of one connection. conn holds system-owned
// secrets in memory.
type entry struct {
	conn      *connection.Connection
	source    string
	visible   bool
	unsaved   bool
	createdAt time.Time
	updatedAt time.Time
}

// ConnectionService provides business logic for stored connections
type ConnectionService struct {
	repo     repository.Repository
	vault    *vault.Vault
	agent    agent.Agent
	eventBus *EventBus
	logger   *slog.Logger

	mu    sync.RWMutex
	conns map[string]*entry
}

// NewConnectionService creates a new connection service. agent may be nil,
// in which case agent-owned secrets are dropped at commit.
func NewConnectionService(repo repository.Repository, v *vault.Vault, a agent.Agent, eventBus *EventBus) *ConnectionService {
	return &ConnectionService{
		repo:     repo,
		vault:    v,
		agent:    a,
		eventBus: eventBus,
		logger:   slog.Default(),
		conns:    make(map[string]*entry),
	}
}

// SetLogger replaces the service's logger
func (s *ConnectionService) SetLogger(l *slog.Logger) {
	s.logger = l
}

// Load reads every stored connection and its system-owned secrets into
// memory. Records that no longer parse are logged and skipped.
func (s *ConnectionService) Load(ctx context.Context) error {
	recs, err := s.repo.ListConnections(ctx)
	if err != nil {
		return err
	}

	loaded := make(map[string]*entry, len(recs))
	for _, rec := range recs {
		conn, err := connection.FromWire(rec.Settings)
		if err != nil {
			s.logger.Warn("skipping stored connection", "uuid", rec.UUID, "error", err)
			continue
		}
		if err := s.loadSecrets(ctx, rec.UUID, conn); err != nil {
			s.logger.Warn("failed to load secrets", "uuid", rec.UUID, "error", err)
		}
		loaded[rec.UUID] = &entry{
			conn:      conn,
			source:    rec.Source,
			visible:   rec.Visible,
			createdAt: rec.CreatedAt,
			updatedAt: rec.UpdatedAt,
		}
	}

	s.mu.Lock()
	s.conns = loaded
	s.mu.Unlock()

	s.logger.Info("loaded connections", "count", len(loaded))
	return nil
}

// List returns every connection ordered by id
func (s *ConnectionService) List(ctx context.Context) ([]*Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*Entry, 0, len(s.conns))
	for _, e := range s.conns {
		pub, err := e.public()
		if err != nil {
			return nil, err
		}
		out = append(out, pub)
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i].Connection, out[j].Connection
		if a.ID() != b.ID() {
			return a.ID() < b.ID()
		}
		return a.UUID() < b.UUID()
	})
	return out, nil
}

// Get returns one connection
func (s *ConnectionService) Get(ctx context.Context, uuid string) (*Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.conns[uuid]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, uuid)
	}
	return e.public()
}

// Add normalizes, verifies and commits a new connection. A connection
// without a UUID gets a random one.
func (s *ConnectionService) Add(ctx context.Context, conn *connection.Connection, source string) (*Entry, error) {
	if con := conn.ConnectionSetting(); con != nil && con.UUID == "" {
		con.UUID = uuid.NewString()
	}
	if _, err := conn.Normalize(); err != nil {
		return nil, err
	}

	id := conn.UUID()
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.conns[id]; ok {
		return nil, fmt.Errorf("%w: %s", ErrExists, id)
	}

	e := &entry{conn: conn, source: source, visible: true, unsaved: true}
	if err := s.commit(ctx, id, e); err != nil {
		return nil, err
	}
	s.conns[id] = e

	s.logger.Info("connection added", "uuid", id, "id", conn.ID(), "type", conn.Type())
	s.eventBus.Publish(Event{Type: EventConnectionAdded, Payload: connectionPayload(id, conn.ID())})
	return e.public()
}

// ReplaceSettings replaces a connection's settings in memory without
// writing them. Secrets missing from w are carried over from the current
// settings.
func (s *ConnectionService) ReplaceSettings(ctx context.Context, uuid string, w wire.Connection) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.replace(uuid, w)
	return err
}

// CommitChanges writes a connection's in-memory settings to storage
func (s *ConnectionService) CommitChanges(ctx context.Context, uuid string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.conns[uuid]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, uuid)
	}
	if err := e.conn.Verify(); err != nil {
		return err
	}
	if err := s.commit(ctx, uuid, e); err != nil {
		return err
	}
	s.eventBus.Publish(Event{Type: EventConnectionUpdated, Payload: connectionPayload(uuid, e.conn.ID())})
	return nil
}

// ReplaceAndCommit replaces a connection's settings and writes them. The
// in-memory settings and their unsaved state are restored if the write
// fails.
func (s *ConnectionService) ReplaceAndCommit(ctx context.Context, uuid string, w wire.Connection) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.conns[uuid]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, uuid)
	}
	wasUnsaved := e.unsaved
	old, err := s.replace(uuid, w)
	if err != nil {
		return err
	}
	if err := s.commit(ctx, uuid, e); err != nil {
		e.conn, e.unsaved = old, wasUnsaved
		return err
	}
	s.eventBus.Publish(Event{Type: EventConnectionUpdated, Payload: connectionPayload(uuid, e.conn.ID())})
	return nil
}

// replace swaps in new settings and returns the previous connection.
// Callers hold s.mu.
func (s *ConnectionService) replace(id string, w wire.Connection) (*connection.Connection, error) {
	e, ok := s.conns[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	conn, err := connection.FromWire(w)
	if err != nil {
		return nil, err
	}
	if con := conn.ConnectionSetting(); con != nil {
		switch con.UUID {
		case "":
			con.UUID = id
		case id:
		default:
			return nil, fmt.Errorf("%w: %s", ErrUUIDMismatch, con.UUID)
		}
	}
	if _, err := conn.Normalize(); err != nil {
		return nil, err
	}
	if err := carrySecrets(e.conn, conn); err != nil {
		return nil, err
	}

	old := e.conn
	if !old.Compare(conn, setting.CompareExact) {
		e.unsaved = true
	}
	e.conn = conn
	s.logger.Debug("connection settings replaced", "uuid", id, "unsaved", e.unsaved)
	return old, nil
}

// Delete removes a connection and every secret it owns
func (s *ConnectionService) Delete(ctx context.Context, uuid string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.conns[uuid]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, uuid)
	}
	if err := s.repo.DeleteConnection(ctx, uuid); err != nil {
		return err
	}
	if s.agent != nil {
		if err := s.agent.DeleteSecrets(ctx, uuid); err != nil {
			s.logger.Warn("failed to delete agent secrets", "uuid", uuid, "error", err)
		}
	}
	delete(s.conns, uuid)

	s.logger.Info("connection removed", "uuid", uuid, "id", e.conn.ID())
	s.eventBus.Publish(Event{Type: EventConnectionRemoved, Payload: connectionPayload(uuid, e.conn.ID())})
	return nil
}

// SetVisible changes whether a connection is visible
func (s *ConnectionService) SetVisible(ctx context.Context, uuid string, visible bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.conns[uuid]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, uuid)
	}
	if e.visible == visible {
		return nil
	}
	if err := s.repo.SetVisible(ctx, uuid, visible); err != nil {
		return err
	}
	e.visible = visible

	s.eventBus.Publish(Event{
		Type: EventConnectionVisibility,
		Payload: map[string]interface{}{
			"uuid":    uuid,
			"visible": visible,
		},
	})
	return nil
}

// IsVisible reports whether a connection is visible
func (s *ConnectionService) IsVisible(uuid string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.conns[uuid]
	return ok && e.visible
}

// commit writes e's settings and secrets. Callers hold s.mu.
func (s *ConnectionService) commit(ctx context.Context, id string, e *entry) error {
	settings, err := e.conn.ToWire(setting.SerializeNoSecrets)
	if err != nil {
		return err
	}
	rec := &repository.Record{
		UUID:      id,
		ID:        e.conn.ID(),
		Type:      e.conn.Type(),
		Source:    e.source,
		Visible:   e.visible,
		Settings:  settings,
		CreatedAt: e.createdAt,
	}
	if err := s.repo.UpsertConnection(ctx, rec); err != nil {
		return err
	}
	if err := s.saveSecrets(ctx, id, e.conn); err != nil {
		return err
	}

	e.createdAt, e.updatedAt = rec.CreatedAt, rec.UpdatedAt
	e.unsaved = false
	return nil
}

// public copies e with secrets removed
func (e *entry) public() (*Entry, error) {
	conn, err := e.conn.Duplicate()
	if err != nil {
		return nil, err
	}
	conn.ClearSecrets()
	return &Entry{
		Connection: conn,
		Source:     e.source,
		Visible:    e.visible,
		Unsaved:    e.unsaved,
		CreatedAt:  e.createdAt,
		UpdatedAt:  e.updatedAt,
	}, nil
}
