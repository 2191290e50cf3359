package session

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
)

// BlobStore abstracts persistence for the single session slot.
type BlobStore interface {
	Load() ([]byte, error)
	Save([]byte) error
}

// FileBlobStore writes the session slot to a JSON file on disk.
type FileBlobStore struct {
	path string
	lock *flock.Flock
}

// NewFileBlobStore builds a FileBlobStore rooted at the provided path.
func NewFileBlobStore(path string) *FileBlobStore {
	return &FileBlobStore{
		path: path,
		lock: flock.New(path + ".lock"),
	}
}

// Load reads the slot from disk. A missing file resolves to a nil blob.
func (s *FileBlobStore) Load() ([]byte, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read session state: %w", err)
	}
	return data, nil
}

// Save persists the slot to disk with restricted permissions. Writes are
// serialized across processes via a sidecar lock file.
func (s *FileBlobStore) Save(data []byte) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("ensure session state directory: %w", err)
	}

	if err := s.lock.Lock(); err != nil {
		return fmt.Errorf("lock session state: %w", err)
	}
	defer func() { _ = s.lock.Unlock() }()

	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return fmt.Errorf("write session state: %w", err)
	}
	return nil
}
