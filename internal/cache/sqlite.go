package cache

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// SQLiteStore backs the cache with a SQLite database. Preferable over
// the JSON file when several runs share one cache concurrently.
type SQLiteStore struct {
	db *sql.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS translations (
	key         TEXT PRIMARY KEY,
	source      TEXT NOT NULL,
	translation TEXT NOT NULL,
	source_lang TEXT NOT NULL,
	target_lang TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_translations_langs
	ON translations (source_lang, target_lang);
`

func NewSQLiteStore(path string) (*SQLiteStore, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create cache directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open cache database: %w", err)
	}

	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to configure cache database: %w", err)
		}
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize cache schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Get(text, sourceLang, targetLang string) (Entry, bool, error) {
	var entry Entry
	err := s.db.QueryRow(
		`SELECT source, translation, source_lang, target_lang
		 FROM translations WHERE key = ?`,
		Key(text, sourceLang, targetLang),
	).Scan(&entry.Source, &entry.Translation, &entry.SourceLang, &entry.TargetLang)

	if err == sql.ErrNoRows {
		return Entry{}, false, nil
	}
	if err != nil {
		return Entry{}, false, fmt.Errorf("cache lookup failed: %w", err)
	}

	return entry, true, nil
}

func (s *SQLiteStore) Put(entry Entry) error {
	_, err := s.db.Exec(
		`INSERT INTO translations (key, source, translation, source_lang, target_lang)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET translation = excluded.translation`,
		Key(entry.Source, entry.SourceLang, entry.TargetLang),
		entry.Source, entry.Translation, entry.SourceLang, entry.TargetLang,
	)
	if err != nil {
		return fmt.Errorf("cache upsert failed: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Stats() (Stats, error) {
	var stats Stats

	if err := s.db.QueryRow(
		`SELECT COUNT(*) FROM translations`,
	).Scan(&stats.TotalEntries); err != nil {
		return Stats{}, fmt.Errorf("cache stats failed: %w", err)
	}

	rows, err := s.db.Query(
		`SELECT DISTINCT source_lang, target_lang FROM translations
		 ORDER BY source_lang, target_lang`,
	)
	if err != nil {
		return Stats{}, fmt.Errorf("cache stats failed: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var src, tgt string
		if err := rows.Scan(&src, &tgt); err != nil {
			return Stats{}, fmt.Errorf("cache stats failed: %w", err)
		}
		stats.LanguagePairs = append(stats.LanguagePairs, src+"→"+tgt)
	}

	return stats, rows.Err()
}

func (s *SQLiteStore) Clear() error {
	if _, err := s.db.Exec(`DELETE FROM translations`); err != nil {
		return fmt.Errorf("failed to clear cache: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
