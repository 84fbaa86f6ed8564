// Package storage holds the blob store: opaque byte streams addressed by a
// unique name, kept on the local filesystem or in an S3 bucket.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// ErrBlobNotFound is returned by Get for names that hold no blob.
var ErrBlobNotFound = errors.New("blob not found")

// ErrInvalidName is returned for names that could escape the store.
var ErrInvalidName = errors.New("invalid blob name")

// Store persists blobs. Implementations are safe for concurrent use.
type Store interface {
	// Save writes r under name and returns the stored name.
	Save(ctx context.Context, name string, r io.Reader) (string, error)
	// Get opens the blob for reading. The caller must close it.
	Get(ctx context.Context, name string) (io.ReadCloser, error)
	// Delete removes the blob, reporting false when it did not exist.
	Delete(ctx context.Context, name string) (bool, error)
}

func validateName(name string) error {
	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, `/\`) || strings.ContainsRune(name, 0) {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return nil
}
