/*
Package save
File: backend.go
Description:
    Durable storage for the session record. A Backend only moves bytes; the
    Adapter on top of it owns encoding, validation and the failure policy.

    Backends:
    - FileBackend:   one JSON file, atomically replaced, guarded by a lock file.
    - SQLiteBackend: one row per save key in a local SQLite database.
    - MemoryBackend: process-local, for tests and throwaway sessions.
*/

package save

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
)

// DefaultKey is the namespaced key the session record is stored under.
const DefaultKey = "cat-petter.save.v1"

// ErrWouldBlock is returned when another process holds the save lock.
var ErrWouldBlock = errors.New("save is locked by another process")

// Backend kinds accepted by OpenBackend.
const (
	KindFile   = "file"
	KindSQLite = "sqlite"
	KindMemory = "memory"
)

// OpenBackend opens the backend of the given kind. The key only matters to
// the sqlite backend, which can hold several saves in one database.
func OpenBackend(ctx context.Context, kind, path, key string) (Backend, error) {
	switch kind {
	case KindFile, "":
		b, err := NewFileBackend(path)
		if err != nil {
			return nil, err
		}
		return b, nil
	case KindSQLite:
		b, err := OpenSQLite(ctx, path, key)
		if err != nil {
			return nil, err
		}
		return b, nil
	case KindMemory:
		return NewMemoryBackend(), nil
	default:
		return nil, fmt.Errorf("unknown save backend %q", kind)
	}
}

// Backend is a single-record durable store.
type Backend interface {
	// Read returns the stored bytes, or (nil, nil) when nothing is stored.
	Read() ([]byte, error)
	// Write replaces the stored bytes.
	Write(data []byte) error
	// Remove deletes the record. Removing a missing record is not an error.
	Remove() error
	// Close releases any resources held by the backend.
	Close() error
}

// MemoryBackend keeps the record in memory.
type MemoryBackend struct {
	mu     sync.Mutex
	data   []byte
	fail   error
	writes int
}

// NewMemoryBackend returns an empty in-memory backend.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{}
}

// SetFail makes every following operation return err. Pass nil to recover.
func (m *MemoryBackend) SetFail(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fail = err
}

// Writes reports how many successful writes the backend has seen.
func (m *MemoryBackend) Writes() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.writes
}

func (m *MemoryBackend) Read() ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil {
		return nil, m.fail
	}
	return slices.Clone(m.data), nil
}

func (m *MemoryBackend) Write(data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil {
		return m.fail
	}
	m.data = slices.Clone(data)
	m.writes++
	return nil
}

func (m *MemoryBackend) Remove() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil {
		return m.fail
	}
	m.data = nil
	return nil
}

func (m *MemoryBackend) Close() error { return nil }

var _ Backend = (*MemoryBackend)(nil)
