// Package cache abstracts the lookup cache with in-memory and Redis
// backends. Memory suits a single node; Redis keeps nodes consistent
// when the service runs replicated.
package cache

import "time"

// Cache is a byte-value cache with per-entry TTL.
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration)
	Delete(key string)
}
