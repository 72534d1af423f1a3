package store

import (
	"bytes"
	"context"
	"errors"
	"sync"
)

var errClosed = errors.New("store closed")

// Memory is an in-process Store. It is used when no store path is
// configured and in tests.
type Memory struct {
	mu      sync.RWMutex
	seq     ID
	records map[ID]Record
	closed  bool
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{records: make(map[ID]Record)}
}

// Put stores a copy of data.
func (m *Memory) Put(ctx context.Context, name string, data []byte) (ID, error) {
	if err := ctx.Err(); err != nil {
		return 0, wrap("put", err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return 0, wrap("put", errClosed)
	}

	m.seq++
	buf := make([]byte, len(data))
	copy(buf, data)
	m.records[m.seq] = Record{ID: m.seq, Name: name, Data: buf}
	return m.seq, nil
}

// Get returns the record stored under id.
func (m *Memory) Get(ctx context.Context, id ID) (Record, error) {
	if err := ctx.Err(); err != nil {
		return Record{}, wrap("get", err)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return Record{}, wrap("get", errClosed)
	}

	rec, ok := m.records[id]
	if !ok {
		return Record{}, wrap("get", ErrNotFound)
	}
	rec.Data = bytes.Clone(rec.Data)
	return rec, nil
}

// Clear removes every record. IDs keep increasing afterwards.
func (m *Memory) Clear(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return wrap("clear", err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return wrap("clear", errClosed)
	}
	m.records = make(map[ID]Record)
	return nil
}

// Close releases the store. Later calls fail.
func (m *Memory) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	m.records = nil
	return nil
}
