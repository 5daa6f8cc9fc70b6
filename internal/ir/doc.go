// Package ir defines the structured value model shared by events, commits,
// and conflict payloads: a sealed, JSON-like recursive value type with
// structural equality, canonical serialization, and content hashing.
//
// Canonical serialization follows RFC 8785 (JCS): object keys sorted by
// UTF-16 code units, NFC-normalized strings, no HTML escaping. It is the
// only encoding used for content-addressed identity.
package ir
