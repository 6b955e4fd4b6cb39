// Package service implements the connection store's business logic.
//
// ConnectionService keeps the live set of connections in memory, backed by
// a repository. Connections are normalized and verified before they are
// accepted. Committing a connection writes its secret-free settings to
// the repository and routes every secret by its flags:
//
// - no flags: sealed with the vault and stored next to the connection
// - agent-owned: handed to the secret agent
// - not-saved: never written anywhere
//
// Keyfile directories are reconciled into the same store; connections
// loaded from a file carry its path as their source.
//
// # Event System
//
// The service publishes connection-added, connection-updated,
// connection-removed and connection-visibility events via EventBus for
// real-time updates to Server-Sent Events clients.
package service
