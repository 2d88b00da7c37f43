// Package store maps the working state to a handful of logical keys on a
// durable key/value Backend, and reads back both the current key layout and
// the legacy one it replaced.
package store

import "context"

// Backend is a durable string-keyed blob store.
//
// Get returns (nil, nil) for a missing key. SetMany must apply all pairs or
// none as far as the backend allows; callers always pass the full snapshot.
type Backend interface {
	Get(ctx context.Context, key string) ([]byte, error)
	SetMany(ctx context.Context, kv map[string][]byte) error
	Delete(ctx context.Context, keys ...string) error
	Close() error
}
