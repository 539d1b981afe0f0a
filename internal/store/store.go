// Package store provides retention for finished import results so operators
// can reopen a summary after the in-memory session has expired.
package store

import (
	"context"
	"sync"
	"time"

	"github.com/salesops/crm-import/internal/core"
)

// Memory is an in-process ResultStore used in tests and redis-less deploys.
type Memory struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
}

type memoryEntry struct {
	result    core.ImportResult
	expiresAt time.Time
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{entries: make(map[string]memoryEntry)}
}

// Save stores a result until ttl elapses.
func (m *Memory) Save(_ context.Context, id string, result core.ImportResult, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[id] = memoryEntry{result: result, expiresAt: time.Now().Add(ttl)}
	return nil
}

// Get returns a stored result, reporting false when absent or expired.
func (m *Memory) Get(_ context.Context, id string) (core.ImportResult, bool, error) {
	m.mu.RLock()
	entry, ok := m.entries[id]
	m.mu.RUnlock()

	if !ok || time.Now().After(entry.expiresAt) {
		return core.ImportResult{}, false, nil
	}
	return entry.result, true, nil
}
