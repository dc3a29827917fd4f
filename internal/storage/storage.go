package storage

import (
	"context"
)

// Storage is an object store for archived data.
type Storage interface {
	Put(ctx context.Context, key string, content []byte, contentType string) error
	Delete(ctx context.Context, key string) error
}
