package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"connsettings/internal/repository"
	"connsettings/internal/setting"

	_ "modernc.org/sqlite"
)

// Repository implements repository.Repository using SQLite
type Repository struct {
	db  *sql.DB
	reg *setting.Registry
}

var _ repository.Repository = (*Repository)(nil)

// New creates a new SQLite repository. ":memory:" opens a private
// in-memory database.
func New(dbPath string) (*Repository, error) {
	dsn := "file::memory:?_pragma=foreign_keys(1)"
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0o700); err != nil {
			return nil, fmt.Errorf("failed to create database dir: %w", err)
		}
		dsn = fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)", dbPath)
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)

	repo := &Repository{db: db, reg: setting.Default}
	if err := repo.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return repo, nil
}

func (r *Repository) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS connections (
		uuid TEXT PRIMARY KEY,
		id TEXT NOT NULL,
		type TEXT NOT NULL,
		source TEXT,
		visible INTEGER NOT NULL DEFAULT 1,
		settings TEXT NOT NULL,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS secrets (
		uuid TEXT NOT NULL,
		setting TEXT NOT NULL,
		sealed BLOB NOT NULL,
		PRIMARY KEY (uuid, setting),
		FOREIGN KEY (uuid) REFERENCES connections(uuid) ON DELETE CASCADE
	);

	CREATE INDEX IF NOT EXISTS idx_connections_source ON connections(source);
	CREATE INDEX IF NOT EXISTS idx_connections_type ON connections(type);
	`

	_, err := r.db.Exec(schema)
	return err
}

// ListConnections returns every stored connection ordered by id
func (r *Repository) ListConnections(ctx context.Context) ([]*repository.Record, error) {
	return r.queryConnections(ctx, `SELECT `+connectionColumns+` FROM connections ORDER BY id, uuid`)
}

// ListBySource returns the connections loaded from source
func (r *Repository) ListBySource(ctx context.Context, source string) ([]*repository.Record, error) {
	return r.queryConnections(ctx,
		`SELECT `+connectionColumns+` FROM connections WHERE source = ? ORDER BY id, uuid`, source)
}

func (r *Repository) queryConnections(ctx context.Context, query string, args ...interface{}) ([]*repository.Record, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query connections: %w", err)
	}
	defer rows.Close()

	var recs []*repository.Record
	for rows.Next() {
		var row connectionRow
		if err := rows.Scan(row.scanArgs()...); err != nil {
			return nil, fmt.Errorf("failed to scan connection: %w", err)
		}
		rec, err := row.toRecord(r.reg)
		if err != nil {
			return nil, fmt.Errorf("connection %s: %w", row.UUID, err)
		}
		recs = append(recs, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating connections: %w", err)
	}
	return recs, nil
}

// GetConnection retrieves a connection by UUID
func (r *Repository) GetConnection(ctx context.Context, uuid string) (*repository.Record, error) {
	var row connectionRow
	err := r.db.QueryRowContext(ctx,
		`SELECT `+connectionColumns+` FROM connections WHERE uuid = ?`, uuid,
	).Scan(row.scanArgs()...)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get connection: %w", err)
	}
	return row.toRecord(r.reg)
}

// UpsertConnection inserts or replaces a connection. CreatedAt is kept
// from the existing row; zero timestamps are set to now.
func (r *Repository) UpsertConnection(ctx context.Context, rec *repository.Record) error {
	now := time.Now().UTC()
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = now
	}
	rec.UpdatedAt = now

	args, err := connectionInsertArgs(rec)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO connections (`+connectionColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(uuid) DO UPDATE SET
			id = excluded.id,
			type = excluded.type,
			source = excluded.source,
			visible = excluded.visible,
			settings = excluded.settings,
			updated_at = excluded.updated_at
	`, args...)
	if err != nil {
		return fmt.Errorf("failed to upsert connection: %w", err)
	}
	return nil
}

// DeleteConnection deletes a connection and its secrets
func (r *Repository) DeleteConnection(ctx context.Context, uuid string) error {
	_, err := r.db.ExecContext(ctx, "DELETE FROM connections WHERE uuid = ?", uuid)
	if err != nil {
		return fmt.Errorf("failed to delete connection: %w", err)
	}
	return nil
}

// SetVisible updates a connection's visibility
func (r *Repository) SetVisible(ctx context.Context, uuid string, visible bool) error {
	_, err := r.db.ExecContext(ctx,
		"UPDATE connections SET visible = ?, updated_at = ? WHERE uuid = ?",
		boolToInt(visible), ts(time.Now()), uuid)
	if err != nil {
		return fmt.Errorf("failed to set visibility: %w", err)
	}
	return nil
}

// GetSecrets returns the sealed secrets of one setting, or nil
func (r *Repository) GetSecrets(ctx context.Context, uuid, settingName string) ([]byte, error) {
	var sealed []byte
	err := r.db.QueryRowContext(ctx,
		"SELECT sealed FROM secrets WHERE uuid = ? AND setting = ?", uuid, settingName,
	).Scan(&sealed)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get secrets: %w", err)
	}
	return sealed, nil
}

// SaveSecrets replaces every sealed secret of a connection
func (r *Repository) SaveSecrets(ctx context.Context, uuid string, sealed map[string][]byte) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM secrets WHERE uuid = ?", uuid); err != nil {
		return fmt.Errorf("failed to clear secrets: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, "INSERT INTO secrets (uuid, setting, sealed) VALUES (?, ?, ?)")
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for name, blob := range sealed {
		if _, err := stmt.ExecContext(ctx, uuid, name, blob); err != nil {
			return fmt.Errorf("failed to save secrets for %s: %w", name, err)
		}
	}

	return tx.Commit()
}

// DeleteSecrets removes every sealed secret of a connection
func (r *Repository) DeleteSecrets(ctx context.Context, uuid string) error {
	_, err := r.db.ExecContext(ctx, "DELETE FROM secrets WHERE uuid = ?", uuid)
	if err != nil {
		return fmt.Errorf("failed to delete secrets: %w", err)
	}
	return nil
}

// Close closes the database connection
func (r *Repository) Close() error {
	return r.db.Close()
}
