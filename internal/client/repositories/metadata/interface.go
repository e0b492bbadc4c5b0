// Package metadata is a small key/value store on top of the client's sqlite
// database. The draft and session stores keep their JSON documents here.
package metadata

import (
	"context"
)

// Repository stores opaque values under string keys. Get reports a missing
// key with common.ErrNotFound.
type Repository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	List(ctx context.Context, prefix string) (map[string][]byte, error)
	DeletePrefix(ctx context.Context, prefix string) error
}
