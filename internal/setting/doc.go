// Package setting implements the property-schema engine connection
// settings are built on.
//
// # Types and classes
//
// Every concrete setting type describes itself with a Class: a unique
// name, a priority (0 for the connection setting, 1 for hardware/base
// types, up to 4 for IP-level settings), an error domain, a constructor and
// a table of native properties bound to struct fields. A class may name an
// abstract Parent whose properties and overrides it inherits.
//
// Classes are registered with a Registry, normally setting.Default from an
// init function. Registration checks the name/type/error-domain bijection
// and the shape of the property table; violations are programming errors
// and MustRegister panics on them.
//
// # Schemas
//
// The first time a type is used its Schema is materialized: the ordered
// descriptor list that merges native properties with overrides (custom
// get/set hooks, paired wire transforms, or wire-only virtual properties).
// Derived overrides shadow ancestor overrides with the same name. Each
// secret property with a flags field gets a companion "<name>-flags"
// descriptor so secret flags travel on the wire. Schemas are built at most
// once per type and never change afterwards.
//
// # Operations
//
// Serialization (ToWire, FromWire), comparison (Compare, Diff), secret
// handling (ClearSecrets, UpdateSecrets, GetSecretFlags, ...) and
// verification all walk the cached schema. Concrete types customize
// behaviour by implementing the optional capability interfaces in
// capability.go; anything they do not implement falls back to the engine
// defaults.
package setting
