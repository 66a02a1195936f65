package repository

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"
)

const defaultFileMode = 0o644

// FileStore keeps the document in a single JSON file.
type FileStore struct {
	path string
	mode os.FileMode
}

// NewFileStore returns a store for the file at path. The file is not touched
// until the first Save.
func NewFileStore(path string, opts ...FileOption) *FileStore {
	s := &FileStore{path: path, mode: defaultFileMode}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Path returns the document location.
func (s *FileStore) Path() string { return s.path }

// Load implements Store.Load.
func (s *FileStore) Load(_ context.Context) (data []byte, err error) {
	defer func(start time.Time) { observe(BackendFile, "load", start, err) }(time.Now())

	data, err = os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNoDocument
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", s.path, err)
	}
	return data, nil
}

// Save implements Store.Save. The document is written to a sibling temp file
// and renamed over the target, so readers see either the old or the new file.
func (s *FileStore) Save(_ context.Context, data []byte) (err error) {
	defer func(start time.Time) { observe(BackendFile, "save", start, err) }(time.Now())

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("create dir %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() {
		if err != nil {
			_ = os.Remove(tmpName)
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err = tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err = os.Chmod(tmpName, s.mode); err != nil {
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err = os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("replace %s: %w", s.path, err)
	}
	return nil
}
