// Package handler implements the HTTP API of the connection store.
//
// # Routes
//
//	GET    /api/types                           registered setting types
//	GET    /api/types/{name}/schema             JSON Schema of one type
//	GET    /api/connections                     connection summaries
//	POST   /api/connections                     add a connection document
//	GET    /api/connections/{uuid}              one connection, secrets removed
//	PUT    /api/connections/{uuid}              replace settings (?commit=false keeps them unsaved)
//	DELETE /api/connections/{uuid}              remove a connection
//	GET    /api/connections/{uuid}/secrets/{setting}   secrets of one setting
//	POST   /api/connections/{uuid}/visible      change visibility
//	POST   /api/diff                            compare two documents
//
// Connection documents are JSON objects mapping setting names to property
// maps, the same shape the json codec reads and writes.
//
// # Response Format
//
// Success responses return JSON data with appropriate status codes (200, 201).
// Error responses return JSON with {error, details} structure.
package handler
