// Package cache holds fetched clause tables and built matrices in memory.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Cache defines the interface for caching raw bytes
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration) error
	Delete(key string) error
	Clear() error
}

const keyPrefix = "clausematrix:v1:"

// Key generates a cache key from a URL
func Key(url string) string {
	hash := sha256.Sum256([]byte(url))
	return keyPrefix + "src:" + hex.EncodeToString(hash[:])
}

// ContentKey generates a cache key for a built matrix from the raw table it
// was parsed from and the options that shaped the parse
func ContentKey(content string, options string) string {
	h := sha256.New()
	h.Write([]byte(options))
	h.Write([]byte{0})
	h.Write([]byte(content))
	return keyPrefix + "matrix:" + hex.EncodeToString(h.Sum(nil))
}
