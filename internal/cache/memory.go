package cache

import (
	"context"
	"sync"
	"time"
)

var _ Store = (*Memory)(nil)

type entry struct {
	value   []byte
	expires time.Time
}

func (e entry) expired(now time.Time) bool {
	return !e.expires.IsZero() && !now.Before(e.expires)
}

// Memory is an in-process Store used when no Redis is configured.
type Memory struct {
	mu      sync.Mutex
	entries map[string]entry
	tags    map[string]map[string]struct{}
	now     func() time.Time
}

// NewMemory creates an empty Memory store.
func NewMemory() *Memory {
	return &Memory{
		entries: make(map[string]entry),
		tags:    make(map[string]map[string]struct{}),
		now:     time.Now,
	}
}

func (m *Memory) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[key]
	if !ok {
		return nil, false, nil
	}
	if e.expired(m.now()) {
		delete(m.entries, key)
		return nil, false, nil
	}
	return e.value, true, nil
}

func (m *Memory) Set(_ context.Context, key string, value []byte, ttl time.Duration, tags ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	e := entry{value: append([]byte(nil), value...)}
	if ttl > 0 {
		e.expires = m.now().Add(ttl)
	}
	m.entries[key] = e

	for _, tag := range tags {
		keys, ok := m.tags[tag]
		if !ok {
			keys = make(map[string]struct{})
			m.tags[tag] = keys
		}
		keys[key] = struct{}{}
	}
	return nil
}

func (m *Memory) Invalidate(_ context.Context, tags ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, tag := range tags {
		for key := range m.tags[tag] {
			delete(m.entries, key)
		}
		delete(m.tags, tag)
	}
	return nil
}

// Sweep removes expired entries and returns how many were dropped. Tag
// indexes are pruned along the way.
func (m *Memory) Sweep() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	dropped := 0
	for key, e := range m.entries {
		if e.expired(now) {
			delete(m.entries, key)
			dropped++
		}
	}
	for tag, keys := range m.tags {
		for key := range keys {
			if _, ok := m.entries[key]; !ok {
				delete(keys, key)
			}
		}
		if len(keys) == 0 {
			delete(m.tags, tag)
		}
	}
	return dropped
}

// Len returns the number of stored entries, expired ones included.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}
