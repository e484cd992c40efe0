// Package fsstore keeps rendered pages as <itemID>.html files in a directory.
package fsstore

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"

	"pagesync/internal/domain"
)

type Store struct {
	dir string
}

func New(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create page dir: %w", err)
	}
	return &Store{dir: dir}, nil
}

func (s *Store) path(itemID int64) string {
	return filepath.Join(s.dir, strconv.FormatInt(itemID, 10)+".html")
}

// Put writes to a temp file in the same directory and renames it over the target,
// so readers never observe a partially written page.
func (s *Store) Put(ctx context.Context, itemID int64, content []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(s.dir, ".page-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(content); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return err
	}
	return os.Rename(tmpName, s.path(itemID))
}

func (s *Store) Delete(ctx context.Context, itemID int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	err := os.Remove(s.path(itemID))
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

func (s *Store) Get(ctx context.Context, itemID int64) ([]byte, error) {
	b, err := os.ReadFile(s.path(itemID))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, domain.NotFound("page not found")
	}
	return b, err
}
