package cache

import (
	"bytes"
	"context"
	"encoding/json"
	"path"
	"sync"
	"time"
)

type entry struct {
	value   []byte
	expires time.Time
}

// Memory is an in-process Cache. It serves single-instance deployments and tests.
type Memory struct {
	mu      sync.Mutex
	entries map[string]entry
	now     func() time.Time
}

var _ Cache = (*Memory)(nil)

// NewMemory creates an empty in-process cache.
func NewMemory() *Memory {
	return &Memory{entries: make(map[string]entry), now: time.Now}
}

// SetClock replaces the time source used for expiry.
func (m *Memory) SetClock(now func() time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = now
}

// lookup returns a live entry; the caller holds the lock.
func (m *Memory) lookup(key string) (entry, bool) {
	e, ok := m.entries[key]
	if !ok {
		return entry{}, false
	}
	if !m.now().Before(e.expires) {
		delete(m.entries, key)
		return entry{}, false
	}
	return e, true
}

func (m *Memory) GetJSON(_ context.Context, key string, out any) (bool, error) {
	m.mu.Lock()
	e, ok := m.lookup(key)
	m.mu.Unlock()
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(e.value, out); err != nil {
		return false, err
	}
	return true, nil
}

func (m *Memory) SetJSON(_ context.Context, key string, value any, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	b, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = entry{value: b, expires: m.now().Add(ttl)}
	return nil
}

func (m *Memory) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, key)
	return nil
}

func (m *Memory) DeleteByPattern(_ context.Context, pattern string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for k := range m.entries {
		if ok, _ := path.Match(pattern, k); ok {
			delete(m.entries, k)
		}
	}
	return nil
}

func (m *Memory) SetIfNotExists(_ context.Context, key, value string, ttl time.Duration) (bool, error) {
	if ttl <= 0 {
		ttl = DefaultLockTTL
	}
	b, err := json.Marshal(value)
	if err != nil {
		return false, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.lookup(key); ok {
		return false, nil
	}
	m.entries[key] = entry{value: b, expires: m.now().Add(ttl)}
	return true, nil
}

func (m *Memory) DeleteIfValue(_ context.Context, key, value string) (bool, error) {
	b, err := json.Marshal(value)
	if err != nil {
		return false, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.lookup(key)
	if !ok || !bytes.Equal(e.value, b) {
		return false, nil
	}
	delete(m.entries, key)
	return true, nil
}
