package store

import (
	"bytes"
	"context"
	"sort"
	"strings"
	"sync"
)

// Memory is an in-process Store backed by a map. Safe for concurrent use.
// Intended for tests and embedded single-process callers.
type Memory struct {
	mu    sync.RWMutex
	blobs map[string][]byte
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{blobs: make(map[string][]byte)}
}

func (m *Memory) Read(_ context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	data, ok := m.blobs[key]
	if !ok {
		return nil, &NotFoundError{Key: key}
	}
	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}

func (m *Memory) Write(_ context.Context, key string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.blobs[key] = append([]byte(nil), data...)
	return nil
}

func (m *Memory) WriteConditional(_ context.Context, key string, data, expected []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	current, exists := m.blobs[key]
	if expected == nil {
		if exists {
			return &ConditionFailedError{Key: key}
		}
	} else if !exists || !bytes.Equal(current, expected) {
		return &ConditionFailedError{Key: key}
	}

	m.blobs[key] = append([]byte(nil), data...)
	return nil
}

func (m *Memory) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.blobs[key]; !ok {
		return &NotFoundError{Key: key}
	}
	delete(m.blobs, key)
	return nil
}

func (m *Memory) List(_ context.Context, prefix string) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var keys []string
	for k := range m.blobs {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys, nil
}
