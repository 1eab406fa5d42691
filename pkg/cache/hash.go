package cache

import (
	"crypto/sha256"
	"encoding/hex"
)

// Hash computes a SHA-256 hash of the input data.
// Returns the full 64-character hex string.
func Hash(data []byte) string {
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}

// Key builds a namespaced cache key, hashing the raw part so that
// arbitrary package names are safe across all backends.
func Key(namespace, raw string) string {
	return namespace + ":" + Hash([]byte(raw))
}
