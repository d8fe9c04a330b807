// Package cache implements a tag-invalidated byte cache for upstream reads.
//
// Every entry is stored under a key with a TTL and any number of tags.
// Invalidating a tag drops every entry stored with it, which is how webhooks
// and cart mutations make subsequent reads go back to the platform.
package cache

import (
	"context"
	"time"
)

// Tags attached to cached platform reads.
const (
	TagProducts    = "products"
	TagCollections = "collections"
)

// Store is a tagged key/value cache.
type Store interface {
	// Get returns the value for key. A miss is reported with false and a nil
	// error.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores value under key for ttl, associated with tags. A ttl of zero
	// or less keeps the entry until it is invalidated.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration, tags ...string) error
	// Invalidate drops every entry associated with any of tags.
	Invalidate(ctx context.Context, tags ...string) error
}
