package cache

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
)

// a cached translation record
type Entry struct {
	Source      string `json:"source"`
	Translation string `json:"translation"`
	SourceLang  string `json:"source_lang"`
	TargetLang  string `json:"target_lang"`
}

// cache usage statistics
type Stats struct {
	TotalEntries  int
	LanguagePairs []string
}

// Store is a keyed translation cache. Put is an idempotent upsert: the
// value is deterministic per key, so concurrent read-then-write races
// resolve to the same content regardless of ordering.
type Store interface {
	Get(text, sourceLang, targetLang string) (Entry, bool, error)
	Put(entry Entry) error
	Stats() (Stats, error)
	Clear() error
	Close() error
}

// cache backend
type Backend string

const (
	BackendFile   Backend = "file"
	BackendSQLite Backend = "sqlite"
	BackendMemory Backend = "memory"
)

// creates a Store for the backend, using path as its location
func Open(backend Backend, path string) (Store, error) {
	switch backend {
	case BackendFile:
		return NewFileStore(path), nil
	case BackendSQLite:
		return NewSQLiteStore(path)
	case BackendMemory:
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unsupported cache backend: %s", backend)
	}
}

// Key derives the cache key for a text and language pair.
func Key(text, sourceLang, targetLang string) string {
	content := fmt.Sprintf("%s:%s:%s", sourceLang, targetLang, text)
	sum := md5.Sum([]byte(content))
	return hex.EncodeToString(sum[:])
}
