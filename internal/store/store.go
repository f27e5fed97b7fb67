// Package store persists visibility snapshots between CLI invocations.
//
// Two backends implement visibility.Store:
//   - FileStore: one JSON file per transcript, flock-guarded
//   - SQLiteStore: snapshot history in a SQLite database
//
// The visibility controller never reaches for a store on its own; the
// session layer loads before and saves after an interaction.
package store

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/harrison/teachtree/internal/visibility"
)

// Backend names accepted by Open
const (
	BackendNone   = "none"
	BackendFile   = "file"
	BackendSQLite = "sqlite"
)

// sqliteFileName is used when the configured sqlite path is a directory
const sqliteFileName = "state.db"

// Open returns the store for backend. BackendNone (or "") yields a nil store.
// For sqlite, a path without an extension is treated as a directory.
func Open(backend, path string) (visibility.Store, error) {
	switch backend {
	case "", BackendNone:
		return nil, nil
	case BackendFile:
		fs, err := NewFileStore(path)
		if err != nil {
			return nil, err
		}
		return fs, nil
	case BackendSQLite:
		if path != ":memory:" && filepath.Ext(path) == "" {
			path = filepath.Join(path, sqliteFileName)
		}
		ss, err := NewSQLiteStore(path)
		if err != nil {
			return nil, err
		}
		return ss, nil
	default:
		return nil, fmt.Errorf("unknown state backend %q (supported: none, file, sqlite)", backend)
	}
}

// Close releases s if the backend holds resources
func Close(s visibility.Store) error {
	if c, ok := s.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
