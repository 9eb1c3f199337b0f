package idempotency

import (
	"context"
	"sync"
	"time"
)

type clocker interface {
	Now() time.Time
}

type memoryItem struct {
	value     string
	expiresAt time.Time
}

// MemoryStore is the single-process Store used when redis is disabled.
type MemoryStore struct {
	mu    sync.Mutex
	clock clocker
	items map[string]memoryItem
}

func NewMemoryStore(clock clocker) *MemoryStore {
	return &MemoryStore{clock: clock, items: make(map[string]memoryItem)}
}

func (m *MemoryStore) SetNX(_ context.Context, key, value string, ttl time.Duration) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.clock.Now()
	if it, ok := m.items[key]; ok && now.Before(it.expiresAt) {
		return false, nil
	}
	m.items[key] = memoryItem{value: value, expiresAt: now.Add(ttl)}
	return true, nil
}

func (m *MemoryStore) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	it, ok := m.items[key]
	if !ok {
		return "", false, nil
	}
	if !m.clock.Now().Before(it.expiresAt) {
		delete(m.items, key)
		return "", false, nil
	}
	return it.value, true, nil
}

func (m *MemoryStore) Set(_ context.Context, key, value string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.items[key] = memoryItem{value: value, expiresAt: m.clock.Now().Add(ttl)}
	return nil
}

func (m *MemoryStore) Del(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.items, key)
	return nil
}
