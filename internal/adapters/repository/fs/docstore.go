// Package fs provides a filesystem-backed document store; collections
// are file paths relative to the store's root.
package fs

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/jwwelbor/AgentMap-sub007/internal/core/storage"
)

// DocumentStore implements storage.DocumentStore over the filesystem.
// PRINCIPLES:
// - KISS: One file per collection
// - DIP: Implements the storage.DocumentStore interface
type DocumentStore struct {
	root string
}

// NewDocumentStore creates a store rooted at dir. An empty root means
// collections are treated as absolute or cwd-relative paths.
func NewDocumentStore(root string) *DocumentStore {
	return &DocumentStore{root: root}
}

func (s *DocumentStore) path(collection string) string {
	if s.root == "" || filepath.IsAbs(collection) {
		return collection
	}
	return filepath.Join(s.root, collection)
}

// Write persists data under the collection, creating parent directories
// as needed.
func (s *DocumentStore) Write(_ context.Context, collection string, data []byte, mode storage.WriteMode) error {
	path := s.path(collection)
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("%w: %v", storage.ErrWriteFailed, err)
		}
	}

	if mode == storage.ModeAppend {
		f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
		if err != nil {
			return fmt.Errorf("%w: %v", storage.ErrWriteFailed, err)
		}
		defer f.Close()
		if _, err := f.Write(data); err != nil {
			return fmt.Errorf("%w: %v", storage.ErrWriteFailed, err)
		}
		return nil
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("%w: %v", storage.ErrWriteFailed, err)
	}
	return nil
}

// Read returns the collection's content, or storage.ErrNotFound.
func (s *DocumentStore) Read(_ context.Context, collection string) ([]byte, error) {
	data, err := os.ReadFile(s.path(collection))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, storage.ErrNotFound
		}
		return nil, err
	}
	return data, nil
}
