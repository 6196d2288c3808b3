package storage

import (
	"context"
	"io"
)

// ObjectStorage defines the interface for object storage operations
type ObjectStorage interface {
	// Upload uploads an object to storage
	Upload(ctx context.Context, key string, reader io.Reader, size int64, contentType string) error

	// List returns the keys under a prefix
	List(ctx context.Context, prefix string) ([]string, error)

	// Move copies an object to a new key and removes the original
	Move(ctx context.Context, srcKey, dstKey string) error

	// Delete deletes an object from storage
	Delete(ctx context.Context, key string) error

	// Exists checks if an object exists
	Exists(ctx context.Context, key string) (bool, error)
}
