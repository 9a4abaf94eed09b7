package cache

import (
	"context"
	"time"
)

// Cache is a process local key value cache. Values are shared pointers and must
// be treated as read only by callers.
type Cache interface {
	// Get returns the value and whether the key was present and unexpired
	Get(ctx context.Context, key string) (interface{}, bool)

	// Set stores value under key. An expiration of 0 uses the configured TTL.
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration)

	Delete(ctx context.Context, key string)

	// DeleteByPrefix drops every key of one entity type, e.g. after a plan change
	DeleteByPrefix(ctx context.Context, prefix string)
}

// PrefixAccount namespaces cached accounts. Bump the version when the account shape changes.
const PrefixAccount = "account:v1:"

// AccountKey is the cache key of one account
func AccountKey(accountID string) string {
	return PrefixAccount + accountID
}
