package storage

import (
	"context"
	"io"
	"time"
)

// ObjectInfo describes one stored object.
type ObjectInfo struct {
	Name    string
	ModTime time.Time
}

// Backend abstracts where asset bytes live. Names are flat file names
// (no separators); the AssetStore owns the mapping to public paths.
// Implementations must be safe for concurrent use.
type Backend interface {
	// Write streams r to name. Either the whole object is persisted or
	// nothing is visible under name.
	Write(ctx context.Context, name string, r io.Reader, size int64, contentType string) error

	// Delete removes name. Silently succeeds if it does not exist.
	Delete(ctx context.Context, name string) error

	Exists(ctx context.Context, name string) (bool, error)

	// List returns every stored object with its last modification time.
	List(ctx context.Context) ([]ObjectInfo, error)

	// Locate returns the backend-specific location of name (a filesystem
	// path or bucket/key), for logging and UploadedAsset.AbsolutePath.
	Locate(name string) string

	Ping(ctx context.Context) error
}
