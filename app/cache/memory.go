package cache

import (
	"context"
	"slices"
	"strings"
	"sync"
	"time"
)

// Clock returns the current time. Tests substitute a fake.
type Clock func() time.Time

type entry struct {
	value   []byte
	expires time.Time
}

// DefaultMaxEntries caps a MemoryStore unless WithMaxEntries says otherwise.
const DefaultMaxEntries = 300

// MemoryStore keeps entries in a process-local map. Set drops expired
// entries, and when the store is still full it culls a third of it,
// soonest to expire first.
type MemoryStore struct {
	mu         sync.RWMutex
	entries    map[string]entry
	now        Clock
	maxEntries int
}

// NewMemoryStore creates an empty store. A nil clock means time.Now.
func NewMemoryStore(now Clock) *MemoryStore {
	if now == nil {
		now = time.Now
	}
	return &MemoryStore{entries: make(map[string]entry), now: now, maxEntries: DefaultMaxEntries}
}

// WithMaxEntries sets the entry cap. n < 1 keeps the current one.
func (s *MemoryStore) WithMaxEntries(n int) *MemoryStore {
	if n > 0 {
		s.maxEntries = n
	}
	return s
}

func (s *MemoryStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	s.mu.RLock()
	e, ok := s.entries[key]
	s.mu.RUnlock()
	if !ok {
		return nil, false, nil
	}
	if !s.now().Before(e.expires) {
		s.mu.Lock()
		// Re-check: a concurrent Set may have refreshed it.
		if cur, ok := s.entries[key]; ok && !s.now().Before(cur.expires) {
			delete(s.entries, key)
		}
		s.mu.Unlock()
		return nil, false, nil
	}
	return append([]byte(nil), e.value...), true, nil
}

func (s *MemoryStore) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.makeRoom(key)
	s.entries[key] = entry{
		value:   append([]byte(nil), value...),
		expires: s.now().Add(ttl),
	}
	return nil
}

// makeRoom drops expired entries and leaves space to store key.
// Callers hold mu.
func (s *MemoryStore) makeRoom(key string) {
	now := s.now()
	for k, e := range s.entries {
		if !now.Before(e.expires) {
			delete(s.entries, k)
		}
	}
	if _, ok := s.entries[key]; ok || len(s.entries) < s.maxEntries {
		return
	}
	keys := make([]string, 0, len(s.entries))
	for k := range s.entries {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, func(a, b string) int {
		return s.entries[a].expires.Compare(s.entries[b].expires)
	})
	cull := max(len(keys)/3, 1)
	for _, k := range keys[:cull] {
		delete(s.entries, k)
	}
}

func (s *MemoryStore) DeletePrefix(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for k := range s.entries {
		if k == key || strings.HasPrefix(k, key+":") {
			delete(s.entries, k)
		}
	}
	return nil
}

// Len reports the number of stored entries, expired ones included.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}
