package cache

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

type memEntry struct {
	value     string
	count     int64
	expiresAt time.Time
}

// Memory is an in-process Cache used by tests and single-node local runs.
type Memory struct {
	mu      sync.Mutex
	entries map[string]*memEntry
	now     func() time.Time
}

var _ Cache = (*Memory)(nil)

func NewMemory() *Memory {
	return &Memory{entries: make(map[string]*memEntry), now: time.Now}
}

func (m *Memory) Ping(_ context.Context) error { return nil }

// live returns the entry for key, dropping it first if it has expired.
func (m *Memory) live(key string) *memEntry {
	e, ok := m.entries[key]
	if !ok {
		return nil
	}
	if !e.expiresAt.IsZero() && !m.now().Before(e.expiresAt) {
		delete(m.entries, key)
		return nil
	}
	return e
}

func (m *Memory) IncrWithExpiry(_ context.Context, key string, expiry time.Duration) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e := m.live(key)
	if e == nil {
		e = &memEntry{}
		m.entries[key] = e
	}
	e.count++
	e.expiresAt = m.now().Add(expiry)
	return e.count, nil
}

func (m *Memory) AcquireLock(_ context.Context, key string, ttl time.Duration) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.live(key) != nil {
		return "", ErrLockHeld
	}
	token := uuid.NewString()
	m.entries[key] = &memEntry{value: token, expiresAt: m.now().Add(ttl)}
	return token, nil
}

func (m *Memory) ReleaseLock(_ context.Context, key, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if e := m.live(key); e != nil && e.value == token {
		delete(m.entries, key)
	}
	return nil
}
