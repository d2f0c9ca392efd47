package cache

import (
	"path/filepath"
	"testing"
)

func openTestStores(t *testing.T) map[string]Store {
	t.Helper()
	tmpDir := t.TempDir()

	sqlite, err := NewSQLiteStore(filepath.Join(tmpDir, "cache.db"))
	if err != nil {
		t.Fatalf("NewSQLiteStore error: %v", err)
	}
	t.Cleanup(func() { sqlite.Close() })

	return map[string]Store{
		"file":   NewFileStore(filepath.Join(tmpDir, "cache.json")),
		"sqlite": sqlite,
		"memory": NewMemoryStore(),
	}
}

func TestStorePutGet(t *testing.T) {
	for name, store := range openTestStores(t) {
		t.Run(name, func(t *testing.T) {
			entry := Entry{
				Source:      "こんにちは",
				Translation: "Bonjour",
				SourceLang:  "ja",
				TargetLang:  "fr",
			}

			if _, ok, err := store.Get(entry.Source, "ja", "fr"); err != nil || ok {
				t.Fatalf("expected miss before put, ok=%v err=%v", ok, err)
			}

			if err := store.Put(entry); err != nil {
				t.Fatalf("Put error: %v", err)
			}

			got, ok, err := store.Get(entry.Source, "ja", "fr")
			if err != nil {
				t.Fatalf("Get error: %v", err)
			}
			if !ok || got.Translation != "Bonjour" {
				t.Errorf("Get = (%+v, %v)", got, ok)
			}

			// different language pair is a different key
			if _, ok, _ := store.Get(entry.Source, "ja", "en"); ok {
				t.Error("language pair should partition the key space")
			}
		})
	}
}

func TestStoreUpsertIdempotent(t *testing.T) {
	for name, store := range openTestStores(t) {
		t.Run(name, func(t *testing.T) {
			entry := Entry{Source: "text", Translation: "texte", SourceLang: "en", TargetLang: "fr"}

			if err := store.Put(entry); err != nil {
				t.Fatalf("first Put error: %v", err)
			}
			if err := store.Put(entry); err != nil {
				t.Fatalf("second Put error: %v", err)
			}

			stats, err := store.Stats()
			if err != nil {
				t.Fatalf("Stats error: %v", err)
			}
			if stats.TotalEntries != 1 {
				t.Errorf("TotalEntries = %d, want 1", stats.TotalEntries)
			}
		})
	}
}

func TestStoreStatsAndClear(t *testing.T) {
	for name, store := range openTestStores(t) {
		t.Run(name, func(t *testing.T) {
			entries := []Entry{
				{Source: "a", Translation: "x", SourceLang: "ja", TargetLang: "fr"},
				{Source: "b", Translation: "y", SourceLang: "ja", TargetLang: "fr"},
				{Source: "c", Translation: "z", SourceLang: "en", TargetLang: "de"},
			}
			for _, e := range entries {
				if err := store.Put(e); err != nil {
					t.Fatalf("Put error: %v", err)
				}
			}

			stats, err := store.Stats()
			if err != nil {
				t.Fatalf("Stats error: %v", err)
			}
			if stats.TotalEntries != 3 {
				t.Errorf("TotalEntries = %d, want 3", stats.TotalEntries)
			}
			if len(stats.LanguagePairs) != 2 {
				t.Errorf("LanguagePairs = %v, want 2 pairs", stats.LanguagePairs)
			}

			if err := store.Clear(); err != nil {
				t.Fatalf("Clear error: %v", err)
			}
			stats, err = store.Stats()
			if err != nil {
				t.Fatalf("Stats after clear error: %v", err)
			}
			if stats.TotalEntries != 0 {
				t.Errorf("TotalEntries after clear = %d", stats.TotalEntries)
			}
		})
	}
}

func TestKeyDeterministic(t *testing.T) {
	k1 := Key("hello", "en", "fr")
	k2 := Key("hello", "en", "fr")
	if k1 != k2 {
		t.Errorf("key not deterministic: %s vs %s", k1, k2)
	}
	if Key("hello", "en", "de") == k1 {
		t.Error("target language must affect the key")
	}
	if Key("hello", "ja", "fr") == k1 {
		t.Error("source language must affect the key")
	}
}

func TestOpenUnknownBackend(t *testing.T) {
	if _, err := Open(Backend("bogus"), ""); err == nil {
		t.Error("expected error for unknown backend")
	}
}
