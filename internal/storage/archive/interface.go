// internal/storage/archive/interface.go
package archive

import "context"

// Storage is a flat key/value blob store for archived snapshots.
// Paths are slash-separated and relative to the backend root.
type Storage interface {
	Write(ctx context.Context, path string, data []byte) error
	Read(ctx context.Context, path string) ([]byte, error)

	// List returns all paths under prefix, sorted
	List(ctx context.Context, prefix string) ([]string, error)

	Delete(ctx context.Context, path string) error
	Exists(ctx context.Context, path string) (bool, error)
}
