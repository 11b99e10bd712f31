// Package storage persists claim attachment files.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/google/uuid"
)

var ErrNotFound = errors.New("file not found")

// StoredFile describes a persisted attachment.
type StoredFile struct {
	Path      string
	SizeBytes int64
}

type Store interface {
	Save(ctx context.Context, claimID snowflake.ID, fileName string, r io.Reader) (StoredFile, error)
	Open(ctx context.Context, path string) (io.ReadCloser, error)
	Remove(ctx context.Context, path string) error
}

// DiskStore writes attachments under a base directory, one subdirectory per
// claim. Stored names are opaque so original names never touch the filesystem.
type DiskStore struct {
	baseDir string
}

func NewDiskStore(baseDir string) (*DiskStore, error) {
	if strings.TrimSpace(baseDir) == "" {
		return nil, errors.New("storage: empty base directory")
	}
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("storage: create base directory: %w", err)
	}
	return &DiskStore{baseDir: baseDir}, nil
}

func (s *DiskStore) Save(ctx context.Context, claimID snowflake.ID, fileName string, r io.Reader) (StoredFile, error) {
	dir := filepath.Join(s.baseDir, claimID.String())
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return StoredFile{}, err
	}

	storedName := uuid.NewString() + strings.ToLower(filepath.Ext(fileName))
	path := filepath.Join(dir, storedName)

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return StoredFile{}, err
	}
	written, err := io.Copy(f, r)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(path)
		return StoredFile{}, err
	}

	return StoredFile{Path: path, SizeBytes: written}, nil
}

func (s *DiskStore) Open(ctx context.Context, path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return f, nil
}

func (s *DiskStore) Remove(ctx context.Context, path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
