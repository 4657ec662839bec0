// Package storage holds the blob backends used by the photo store.
package storage

import (
	"context"
	"errors"
	"io"
)

// ErrInvalidName is returned for names that are empty or contain a path
var ErrInvalidName = errors.New("invalid blob name")

// BlobStore persists uploaded files under flat names.
// Remove must succeed when the blob is already gone.
type BlobStore interface {
	Save(ctx context.Context, name string, r io.Reader, size int64, contentType string) error
	Remove(ctx context.Context, name string) error
	// Location is the path or URL recorded for name
	Location(name string) string
	// List returns every stored blob name
	List(ctx context.Context) ([]string, error)
}
