package object

import (
	"context"
	"io"
)

// ObjectStore defines the contract for archiving and retrieving run-log
// artifacts and rendered analysis reports under explicit storage keys.
type ObjectStore interface {
	SaveWithKey(ctx context.Context, storageKey string, contentType string, r io.Reader) (int64, error)
	Open(ctx context.Context, storageKey string) (io.ReadCloser, error)
}
