package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/gofrs/flock"
	"github.com/harrison/teachtree/internal/visibility"
)

// FileStore keeps one JSON snapshot per key in a directory.
// Writers take an exclusive flock on <key>.json.lock and replace the file
// through a temp-file rename, so concurrent processes never see a torn write.
type FileStore struct {
	dir string
}

// NewFileStore creates a FileStore rooted at dir, creating it if needed
func NewFileStore(dir string) (*FileStore, error) {
	if dir == "" {
		return nil, errors.New("state directory cannot be empty")
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create state directory: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

// Dir returns the directory snapshots are written to
func (fs *FileStore) Dir() string {
	return fs.dir
}

// Path returns the snapshot file used for key
func (fs *FileStore) Path(key string) string {
	return filepath.Join(fs.dir, sanitizeKey(key)+".json")
}

// Save writes snap for key, replacing any previous snapshot
func (fs *FileStore) Save(ctx context.Context, key string, snap visibility.Snapshot) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}

	path := fs.Path(key)
	lock := flock.New(path + ".lock")
	if err := lock.Lock(); err != nil {
		return fmt.Errorf("failed to acquire lock on %s: %w", path, err)
	}
	defer lock.Unlock()

	return atomicWrite(path, data)
}

// Load reads the snapshot for key. A missing file is not an error.
func (fs *FileStore) Load(ctx context.Context, key string) (visibility.Snapshot, bool, error) {
	if err := ctx.Err(); err != nil {
		return visibility.Snapshot{}, false, err
	}

	path := fs.Path(key)
	lock := flock.New(path + ".lock")
	if err := lock.RLock(); err != nil {
		return visibility.Snapshot{}, false, fmt.Errorf("failed to acquire read lock on %s: %w", path, err)
	}
	defer lock.Unlock()

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return visibility.Snapshot{}, false, nil
	}
	if err != nil {
		return visibility.Snapshot{}, false, fmt.Errorf("read snapshot: %w", err)
	}

	var snap visibility.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return visibility.Snapshot{}, false, fmt.Errorf("invalid snapshot file %s: %w", path, err)
	}
	return snap, true, nil
}

// Delete removes the snapshot for key. Deleting a missing key is not an error.
func (fs *FileStore) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	path := fs.Path(key)
	lock := flock.New(path + ".lock")
	if err := lock.Lock(); err != nil {
		return fmt.Errorf("failed to acquire lock on %s: %w", path, err)
	}
	defer lock.Unlock()

	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("delete snapshot: %w", err)
	}
	return nil
}

// atomicWrite writes data to a temp file in the target directory and renames
// it over path.
func atomicWrite(path string, data []byte) error {
	dir := filepath.Dir(path)
	tempFile, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tempPath := tempFile.Name()

	defer func() {
		if tempFile != nil {
			tempFile.Close()
			os.Remove(tempPath)
		}
	}()

	if _, err := tempFile.Write(data); err != nil {
		return fmt.Errorf("failed to write to temp file: %w", err)
	}
	if err := tempFile.Sync(); err != nil {
		return fmt.Errorf("failed to sync temp file: %w", err)
	}
	if err := tempFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Chmod(tempPath, 0644); err != nil {
		return fmt.Errorf("failed to set permissions: %w", err)
	}
	if err := os.Rename(tempPath, path); err != nil {
		return fmt.Errorf("failed to rename temp file to %s: %w", path, err)
	}

	tempFile = nil
	return nil
}

// sanitizeKey maps a key onto a safe file name: letters and digits (any
// script), '-', '_' and '.' are kept, everything else becomes '_'.
func sanitizeKey(key string) string {
	key = strings.TrimLeft(strings.TrimSpace(key), ".")
	if key == "" {
		return "default"
	}
	return strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-' || r == '_' || r == '.' {
			return r
		}
		return '_'
	}, key)
}
