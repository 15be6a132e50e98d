package mocks

import (
	"context"
	"sync"

	"github.com/leo4life/ethan-core/internal/domain/ports"
)

// Blob is an in-memory implementation of ports.Blob.
type Blob struct {
	mu sync.Mutex

	// Configured behavior.
	ReadErr  error
	WriteErr error

	data   []byte
	exists bool
	writes int
}

// NewBlob creates an empty blob that reports ports.ErrNotFound until the
// first write.
func NewBlob() *Blob {
	return &Blob{}
}

// NewBlobWith creates a blob pre-seeded with data.
func NewBlobWith(data []byte) *Blob {
	return &Blob{data: append([]byte{}, data...), exists: true}
}

// Read returns the stored bytes, the configured error, or ports.ErrNotFound.
func (m *Blob) Read(_ context.Context) ([]byte, error) {
	if m.ReadErr != nil {
		return nil, m.ReadErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.exists {
		return nil, ports.ErrNotFound
	}
	return append([]byte{}, m.data...), nil
}

// Write stores the bytes or returns the configured error, leaving the
// previous bytes untouched.
func (m *Blob) Write(_ context.Context, data []byte) error {
	if m.WriteErr != nil {
		return m.WriteErr
	}
	m.mu.Lock()
	m.data = append([]byte{}, data...)
	m.exists = true
	m.writes++
	m.mu.Unlock()
	return nil
}

// Bytes returns a copy of the stored bytes.
func (m *Blob) Bytes() []byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]byte{}, m.data...)
}

// Writes returns how many successful writes happened.
func (m *Blob) Writes() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.writes
}
