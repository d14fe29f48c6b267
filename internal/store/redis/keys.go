package redis

import (
	"fmt"
	"strings"
)

const (
	// KeyCatalog holds the last catalog snapshot (JSON array, storefront order)
	KeyCatalog = "bikeyard:catalog"
	// KeyCatalogMeta holds the snapshot metadata hash (count, saved_at, source)
	KeyCatalogMeta = "bikeyard:catalog:meta"
	// KeyPrefixSession is the prefix for per-session query keys
	KeyPrefixSession = "bikeyard:session:"
)

// CatalogKey returns the key of the catalog snapshot
func CatalogKey() string {
	return KeyCatalog
}

// CatalogMetaKey returns the key of the catalog snapshot metadata
func CatalogMetaKey() string {
	return KeyCatalogMeta
}

// SessionKey returns the Redis key for a session query by session ID
func SessionKey(id string) string {
	return KeyPrefixSession + id
}

// ExtractSessionID extracts the session ID from a Redis key
func ExtractSessionID(key string) (string, error) {
	id, ok := strings.CutPrefix(key, KeyPrefixSession)
	if !ok || id == "" {
		return "", fmt.Errorf("invalid session key: %s", key)
	}
	return id, nil
}
