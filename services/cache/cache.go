// Package cache provides the short-lived cache used to pause fetching after
// the source rate-limits us.
package cache

import (
	"time"
)

// Cache is a generic expiring key-value cache.
type Cache interface {
	// Get retrieves a value; returns an error on miss
	Get(key string) ([]byte, error)

	// Set stores a value with an expiration time
	Set(key string, value []byte, expiration time.Duration) error

	// Delete removes a value
	Delete(key string) error
}
