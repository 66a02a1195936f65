package repository

import (
	"context"
	"sync"
	"time"
)

// MemoryStore keeps the document in process memory. Contents are lost on exit.
type MemoryStore struct {
	mu   sync.RWMutex
	data []byte
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Load implements Store.Load.
func (s *MemoryStore) Load(_ context.Context) (data []byte, err error) {
	defer func(start time.Time) { observe(BackendMemory, "load", start, err) }(time.Now())

	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.data == nil {
		return nil, ErrNoDocument
	}
	return append([]byte(nil), s.data...), nil
}

// Save implements Store.Save.
func (s *MemoryStore) Save(_ context.Context, data []byte) (err error) {
	defer func(start time.Time) { observe(BackendMemory, "save", start, err) }(time.Now())

	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = append(make([]byte, 0, len(data)), data...)
	return nil
}
