// Package ports defines interfaces for external service communication.
package ports

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Blob.Read when the blob does not exist yet.
var ErrNotFound = errors.New("blob not found")

// Blob is a single readable/writable durable blob backing one store.
// Implementations must make Write atomic: after a failed write the
// previously stored bytes remain readable.
type Blob interface {
	// Read returns the stored bytes, or ErrNotFound when nothing has been
	// written yet.
	Read(ctx context.Context) ([]byte, error)

	// Write replaces the stored bytes.
	Write(ctx context.Context, data []byte) error
}
