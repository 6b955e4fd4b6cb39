package sqlite

import (
	"database/sql"
	"fmt"
	"time"

	"connsettings/internal/codec"
	"connsettings/internal/repository"
	"connsettings/internal/setting"
)

// ============================================================================
// Null Type Conversion Helpers
// ============================================================================

// nullToString safely converts sql.NullString to string
func nullToString(ns sql.NullString) string {
	if ns.Valid {
		return ns.String
	}
	return ""
}

// stringToNull safely converts string to sql.NullString
func stringToNull(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

// nullToBool converts sql.NullInt64 to bool (0 = false, non-zero = true)
func nullToBool(ni sql.NullInt64) bool {
	return ni.Valid && ni.Int64 != 0
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// ts formats timestamps for TEXT columns
func ts(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTS(s string) (time.Time, error) {
	return time.Parse(time.RFC3339Nano, s)
}

// ============================================================================
// Connection Row Scanner
// ============================================================================
//
// To add a new column to the connections table:
// 1. Add field to connectionRow
// 2. APPEND it to scanArgs() and connectionColumns
// 3. Map it in toRecord() and connectionInsertArgs()
// 4. Add a migration in sqlite.go migrate()

// connectionRow holds all columns from a connection query for scanning
type connectionRow struct {
	UUID         string
	ID           string
	Type         string
	Source       sql.NullString
	Visible      sql.NullInt64
	SettingsJSON string
	CreatedAt    string
	UpdatedAt    string
}

// scanArgs returns pointers to all fields for sql.Scan()
// MUST match connectionColumns order exactly
func (r *connectionRow) scanArgs() []interface{} {
	return []interface{}{
		&r.UUID,         // 1
		&r.ID,           // 2
		&r.Type,         // 3
		&r.Source,       // 4
		&r.Visible,      // 5
		&r.SettingsJSON, // 6
		&r.CreatedAt,    // 7
		&r.UpdatedAt,    // 8
	}
}

// toRecord converts the scanned row, decoding settings against reg
func (r *connectionRow) toRecord(reg *setting.Registry) (*repository.Record, error) {
	rec := &repository.Record{
		UUID:    r.UUID,
		ID:      r.ID,
		Type:    r.Type,
		Source:  nullToString(r.Source),
		Visible: nullToBool(r.Visible),
	}

	var err error
	if rec.CreatedAt, err = parseTS(r.CreatedAt); err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}
	if rec.UpdatedAt, err = parseTS(r.UpdatedAt); err != nil {
		return nil, fmt.Errorf("parse updated_at: %w", err)
	}

	if rec.Settings, err = codec.DecodeJSON(reg, []byte(r.SettingsJSON)); err != nil {
		return nil, fmt.Errorf("unmarshal settings: %w", err)
	}
	return rec, nil
}

// connectionColumns is the SELECT column list for connection queries
const connectionColumns = `uuid, id, type, source, visible, settings, created_at, updated_at`

// connectionInsertArgs returns the values for connectionColumns
func connectionInsertArgs(rec *repository.Record) ([]interface{}, error) {
	data, err := codec.EncodeJSON(rec.Settings)
	if err != nil {
		return nil, fmt.Errorf("marshal settings: %w", err)
	}
	return []interface{}{
		rec.UUID,
		rec.ID,
		rec.Type,
		stringToNull(rec.Source),
		boolToInt(rec.Visible),
		string(data),
		ts(rec.CreatedAt),
		ts(rec.UpdatedAt),
	}, nil
}
