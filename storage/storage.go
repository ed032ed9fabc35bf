// Package storage defines the object-storage collaborator for upload
// bytes.
package storage

import (
	"context"
	"fmt"
	"sync"
)

// Uploader accepts a byte buffer under a key and returns a public URL.
// No retry or backoff; failures surface to the caller.
type Uploader interface {
	Upload(ctx context.Context, key, contentType string, data []byte) (string, error)
	Delete(ctx context.Context, key string) error
}

// Memory is an in-process Uploader for tests and local development.
type Memory struct {
	mu      sync.RWMutex
	objects map[string][]byte
}

// NewMemory creates an empty in-memory uploader.
func NewMemory() *Memory {
	return &Memory{objects: make(map[string][]byte)}
}

// Upload stores the bytes and returns a mem:// URL for the key.
func (m *Memory) Upload(_ context.Context, key, _ string, data []byte) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	buf := make([]byte, len(data))
	copy(buf, data)
	m.objects[key] = buf
	return "mem://" + key, nil
}

// Delete removes the object for the key.
func (m *Memory) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.objects[key]; !ok {
		return fmt.Errorf("storage: object %q not found", key)
	}
	delete(m.objects, key)
	return nil
}

// Get returns a stored object's bytes, for test assertions.
func (m *Memory) Get(key string) ([]byte, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	data, ok := m.objects[key]
	return data, ok
}
