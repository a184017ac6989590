// Package storage holds the snapshot backends the repositories persist to.
//
// A Document is read and written whole: every mutation replaces the full
// snapshot, there is no partial write and no log. Two writers racing on the
// same document lose one update (last write wins).
package storage

import (
	"context"
	"sync"
)

// Document is a single named JSON snapshot.
type Document interface {
	// Load returns the stored snapshot, or nil when nothing was written yet.
	Load(ctx context.Context) ([]byte, error)
	// Save replaces the stored snapshot with body.
	Save(ctx context.Context, body []byte) error
}

// Memory is an in-process Document. Nothing survives a restart.
type Memory struct {
	mu   sync.RWMutex
	body []byte
}

var _ Document = (*Memory)(nil)

func NewMemory() *Memory {
	return &Memory{}
}

func (m *Memory) Load(_ context.Context) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.body == nil {
		return nil, nil
	}
	return append([]byte(nil), m.body...), nil
}

func (m *Memory) Save(_ context.Context, body []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.body = append([]byte(nil), body...)
	return nil
}
