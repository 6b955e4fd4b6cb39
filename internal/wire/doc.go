// Package wire defines the neutral value representation settings are
// serialized to and parsed from.
//
// # Values
//
// A Value is a tagged union. Its Kind selects which payload is meaningful:
// booleans, signed and unsigned integers (8/32/64-bit), doubles, strings,
// byte sequences, string sequences, nested string-keyed maps and lists of
// such maps. The zero Value is invalid and stands for "absent".
//
// # Maps
//
// A Map holds the properties of one setting keyed by property name. A
// Connection holds one Map per setting keyed by setting name. Neither type
// carries ordering; Keys returns sorted keys where a stable order matters.
//
// # Decoding
//
// Text formats (JSON, YAML, TOML) lose the exact integer width of a value.
// FromAny coerces a decoded generic value back into a specific Kind, with
// range checks, so codecs can rebuild wire values when the expected kind is
// known from a schema. Infer guesses a kind when it is not.
package wire
