// Package storage persists rendered export files and signs download tokens.
package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// FileStore keeps files on disk under a fixed root directory.
type FileStore struct {
	root string
}

// NewFileStore ensures the root directory exists and returns a handle.
func NewFileStore(root string) (*FileStore, error) {
	if root == "" {
		root = "./exports"
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create storage root: %w", err)
	}
	return &FileStore{root: root}, nil
}

// Save writes data under the given relative name.
func (s *FileStore) Save(name string, data []byte) (string, error) {
	path := filepath.Join(s.root, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("prepare storage directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write file: %w", err)
	}
	return name, nil
}

// Open returns a read-only handle for the stored file.
func (s *FileStore) Open(name string) (*os.File, error) {
	file, err := os.Open(filepath.Join(s.root, name))
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	return file, nil
}

// Remove deletes a stored file, tolerating absence.
func (s *FileStore) Remove(name string) error {
	if err := os.Remove(filepath.Join(s.root, name)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove file: %w", err)
	}
	return nil
}

// Sweep deletes files older than the given age and reports how many went.
func (s *FileStore) Sweep(olderThan time.Duration) (int, error) {
	cutoff := time.Now().Add(-olderThan)
	removed := 0
	err := filepath.WalkDir(s.root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		if info.ModTime().After(cutoff) {
			return nil
		}
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return err
		}
		removed++
		return nil
	})
	if err != nil {
		return removed, fmt.Errorf("sweep storage: %w", err)
	}
	return removed, nil
}
