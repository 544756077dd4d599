// Package cache persists fragment translations in a local sqlite database
// so repeated runs only pay for text that actually changed. Entries are
// keyed by fragment hash, provider, model, and target language; a different
// model or language never sees another's translations.
package cache

import (
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

const schema = `
CREATE TABLE IF NOT EXISTS translations (
	hash       TEXT NOT NULL,
	provider   TEXT NOT NULL,
	model      TEXT NOT NULL,
	lang       TEXT NOT NULL,
	translated TEXT NOT NULL,
	created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
	PRIMARY KEY (hash, provider, model, lang)
);`

// Store is a sqlite-backed translation cache. Safe for concurrent use; the
// database serializes writers.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the cache database at path.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("opening cache %s: %w", path, err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("initializing cache schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// Key hashes a fragment for use as a cache key.
func Key(fragment string) string {
	sum := sha256.Sum256([]byte(fragment))
	return hex.EncodeToString(sum[:])
}

// Get returns the cached translation of fragment, if present.
func (s *Store) Get(fragment, provider, model, lang string) (string, bool, error) {
	var translated string
	err := s.db.QueryRow(
		`SELECT translated FROM translations WHERE hash = ? AND provider = ? AND model = ? AND lang = ?`,
		Key(fragment), provider, model, lang,
	).Scan(&translated)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("cache lookup: %w", err)
	}
	return translated, true, nil
}

// Put stores (or replaces) the translation of fragment.
func (s *Store) Put(fragment, provider, model, lang, translated string) error {
	_, err := s.db.Exec(
		`INSERT OR REPLACE INTO translations (hash, provider, model, lang, translated) VALUES (?, ?, ?, ?, ?)`,
		Key(fragment), provider, model, lang, translated,
	)
	if err != nil {
		return fmt.Errorf("cache store: %w", err)
	}
	return nil
}
