// Package repository defines the data access interfaces for stored
// connections.
//
// Connections are persisted in their wire form with every secret removed.
// System-owned secrets are kept apart, one sealed blob per connection and
// setting; the repository never sees them in the clear. The actual
// implementation is in the sqlite subpackage.
//
// # SQLite Implementation
//
// The sqlite implementation uses modernc.org/sqlite with WAL mode. It
// handles:
//
// - CRUD operations for connections
// - JSON serialization of the settings document
// - Cascade deletes from connections to their secrets
// - Lookup by source so keyfile reconciliation can find its own records
//
// Not-found lookups return nil with a nil error.
package repository
