package cache

import (
	"sort"
	"sync"
)

// MemoryStore keeps the cache in process memory. Used in tests and for
// runs that should not persist anything.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]Entry
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string]Entry)}
}

func (s *MemoryStore) Get(text, sourceLang, targetLang string) (Entry, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.entries[Key(text, sourceLang, targetLang)]
	return entry, ok, nil
}

func (s *MemoryStore) Put(entry Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[Key(entry.Source, entry.SourceLang, entry.TargetLang)] = entry
	return nil
}

func (s *MemoryStore) Stats() (Stats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	pairs := make(map[string]struct{})
	for _, e := range s.entries {
		pairs[e.SourceLang+"→"+e.TargetLang] = struct{}{}
	}

	stats := Stats{TotalEntries: len(s.entries)}
	for pair := range pairs {
		stats.LanguagePairs = append(stats.LanguagePairs, pair)
	}
	sort.Strings(stats.LanguagePairs)

	return stats, nil
}

func (s *MemoryStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries = make(map[string]Entry)
	return nil
}

func (s *MemoryStore) Close() error {
	return nil
}
