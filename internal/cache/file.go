package cache

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
)

// FileStore keeps the cache in a single JSON file keyed by entry hash.
// Zero setup, suitable for a single machine; the whole map is loaded
// and rewritten per mutation, which is fine at subtitle-file scale.
type FileStore struct {
	path string
	mu   sync.Mutex
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (s *FileStore) Get(text, sourceLang, targetLang string) (Entry, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.load()
	if err != nil {
		return Entry{}, false, err
	}

	entry, ok := entries[Key(text, sourceLang, targetLang)]
	return entry, ok, nil
}

func (s *FileStore) Put(entry Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.load()
	if err != nil {
		return err
	}

	entries[Key(entry.Source, entry.SourceLang, entry.TargetLang)] = entry
	return s.save(entries)
}

func (s *FileStore) Stats() (Stats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.load()
	if err != nil {
		return Stats{}, err
	}

	pairs := make(map[string]struct{})
	for _, e := range entries {
		pairs[e.SourceLang+"→"+e.TargetLang] = struct{}{}
	}

	stats := Stats{TotalEntries: len(entries)}
	for pair := range pairs {
		stats.LanguagePairs = append(stats.LanguagePairs, pair)
	}
	sort.Strings(stats.LanguagePairs)

	return stats, nil
}

func (s *FileStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to clear cache file: %w", err)
	}
	return nil
}

func (s *FileStore) Close() error {
	return nil
}

func (s *FileStore) load() (map[string]Entry, error) {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return make(map[string]Entry), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read cache file: %w", err)
	}

	var entries map[string]Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		// a corrupt cache is discarded, not fatal
		return make(map[string]Entry), nil
	}
	return entries, nil
}

func (s *FileStore) save(entries map[string]Entry) error {
	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create cache directory: %w", err)
		}
	}

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode cache: %w", err)
	}

	if err := os.WriteFile(s.path, data, 0644); err != nil {
		return fmt.Errorf("failed to write cache file: %w", err)
	}
	return nil
}
