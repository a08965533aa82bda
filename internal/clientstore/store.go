package clientstore

import (
	"context"
	"sync"
	"time"
)

// Storage keys. The layout matches what the browser keeps in sessionStorage.
const (
	KeyToken               = "token"
	KeyUser                = "user"
	KeySignedIn            = "SIGNED_IN"
	KeyAccountType         = "accountType"
	KeyOnboarded           = "onboarded"
	KeySkipAutoNavigation  = "skipAutoNavigation"
	KeyInitialLoadComplete = "initialLoadComplete"

	// KeyFlash holds toasts queued for the next rendered page.
	KeyFlash = "flash"
)

// SessionKeys are the five keys that make up a persisted session.
var SessionKeys = []string{KeyToken, KeyUser, KeySignedIn, KeyAccountType, KeyOnboarded}

// controlKeys are one-shot navigation flags that die with the session.
var controlKeys = []string{KeySkipAutoNavigation, KeyInitialLoadComplete}

// Store is a synchronous key/value store scoped to one browser tab.
// Reads observe the latest write; concurrent writers race with last-write-wins.
type Store interface {
	Get(key string) (string, bool)
	Set(key, value string)
	Remove(key string)
}

// Tabs hands out the Store that belongs to a browser tab.
type Tabs interface {
	Tab(id string) Store
}

// ClearSession removes every session key and navigation flag from s.
func ClearSession(s Store) {
	for _, key := range SessionKeys {
		s.Remove(key)
	}
	for _, key := range controlKeys {
		s.Remove(key)
	}
}

// Memory is an in-process Store.
type Memory struct {
	mu     sync.RWMutex
	values map[string]string
}

// NewMemory creates an empty in-memory store
func NewMemory() *Memory {
	return &Memory{values: make(map[string]string)}
}

func (m *Memory) Get(key string) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.values[key]
	return v, ok
}

func (m *Memory) Set(key, value string) {
	m.mu.Lock()
	m.values[key] = value
	m.mu.Unlock()
}

func (m *Memory) Remove(key string) {
	m.mu.Lock()
	delete(m.values, key)
	m.mu.Unlock()
}

// MemoryTabs keeps one Memory store per tab id. Used by tests and by
// deployments that run without a database.
type MemoryTabs struct {
	mu       sync.Mutex
	tabs     map[string]*Memory
	lastSeen map[string]time.Time
	now      func() time.Time
}

func NewMemoryTabs() *MemoryTabs {
	return &MemoryTabs{
		tabs:     make(map[string]*Memory),
		lastSeen: make(map[string]time.Time),
		now:      time.Now,
	}
}

func (t *MemoryTabs) Tab(id string) Store {
	t.mu.Lock()
	defer t.mu.Unlock()
	store, ok := t.tabs[id]
	if !ok {
		store = NewMemory()
		t.tabs[id] = store
	}
	t.lastSeen[id] = t.now()
	return store
}

// PruneTabs drops every tab not seen since before.
func (t *MemoryTabs) PruneTabs(_ context.Context, before time.Time) (int64, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	var removed int64
	for id, seen := range t.lastSeen {
		if seen.Before(before) {
			delete(t.tabs, id)
			delete(t.lastSeen, id)
			removed++
		}
	}
	return removed, nil
}
