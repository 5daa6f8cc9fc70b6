package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Domain prefixes for content-addressed identity. The version suffix
// enables future algorithm migration without ambiguity.
const (
	DomainCommit = "verso/commit/v1"
)

// HashValue computes the content address of a value under a domain:
// SHA256(domain + 0x00 + canonical(v)), hex-encoded. The null byte
// separator prevents domain/data boundary ambiguity.
func HashValue(domain string, v Value) (string, error) {
	canonical, err := MarshalCanonical(v)
	if err != nil {
		return "", fmt.Errorf("HashValue: %w", err)
	}
	return hashWithDomain(domain, canonical), nil
}

func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// MustHashValue is like HashValue but panics on error. Use only in tests
// or when inputs are known to be canonicalizable.
func MustHashValue(domain string, v Value) string {
	hash, err := HashValue(domain, v)
	if err != nil {
		panic(err)
	}
	return hash
}
