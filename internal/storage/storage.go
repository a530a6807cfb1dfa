// Package storage holds the durable key/value stores carts are persisted to.
package storage

import "context"

// KeyValueStore is a string-valued store. Get reports found=false for a
// missing key rather than an error.
type KeyValueStore interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key string, value string) error
	Remove(ctx context.Context, key string) error
	Close() error
}

func Key(prefix string, id string) string {
	return prefix + ":" + id
}
