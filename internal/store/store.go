// Package store provides the byte-level storage collaborator the version
// core persists through: a flat keyspace of byte blobs with read, write,
// list, delete, and conditional-write operations.
//
// Three backends ship here (in-memory, filesystem, and SQLite), all
// covered by one conformance suite. The core issues plain writes and
// assumes single-writer-per-ref discipline; WriteConditional exists so a
// caller can layer compare-and-swap ref updates on top.
package store

import (
	"context"
	"errors"
)

// Store is the storage contract consumed by the version core. Keys are
// slash-separated path-like strings ("HEAD", "refs/main", commit hashes).
type Store interface {
	// Read returns the blob at key, or a NotFoundError.
	Read(ctx context.Context, key string) ([]byte, error)

	// Write creates or overwrites the blob at key.
	Write(ctx context.Context, key string, data []byte) error

	// WriteConditional writes data iff the current blob content equals
	// expected; expected nil means the key must not exist. Returns a
	// ConditionFailedError otherwise.
	WriteConditional(ctx context.Context, key string, data, expected []byte) error

	// Delete removes the blob at key. Deleting an absent key returns a
	// NotFoundError.
	Delete(ctx context.Context, key string) error

	// List returns all keys with the given prefix, sorted.
	List(ctx context.Context, prefix string) ([]string, error)
}

// NotFoundError reports a missing key. Distinguishable from a successful
// empty result.
type NotFoundError struct {
	Key string
}

func (e *NotFoundError) Error() string {
	return "key not found: " + e.Key
}

// ConditionFailedError reports a WriteConditional whose expectation did
// not hold.
type ConditionFailedError struct {
	Key string
}

func (e *ConditionFailedError) Error() string {
	return "conditional write failed: " + e.Key
}

// IsNotFound reports whether err is a NotFoundError, unwrapping as needed.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

// IsConditionFailed reports whether err is a ConditionFailedError.
func IsConditionFailed(err error) bool {
	var cf *ConditionFailedError
	return errors.As(err, &cf)
}
