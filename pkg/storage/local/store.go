package local

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// Store writes document blobs beneath a root directory. Uploads are buffered
// to disk synchronously within the request before the metadata row is written.
type Store struct {
	root string
}

// Pinger exposes the health-check surface.
type Pinger interface {
	Ping(ctx context.Context) error
}

// New ensures the root directory exists and returns a store bound to it.
func New(root string) (*Store, error) {
	if root == "" {
		return nil, errors.New("storage root is required")
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create storage root %q: %w", root, err)
	}
	return &Store{root: root}, nil
}

// Save streams the payload to a freshly named file and returns its relative path.
func (s *Store) Save(ctx context.Context, r io.Reader) (string, int64, error) {
	if err := ctx.Err(); err != nil {
		return "", 0, err
	}
	name := uuid.NewString()
	dst, err := os.Create(filepath.Join(s.root, name))
	if err != nil {
		return "", 0, fmt.Errorf("create blob file: %w", err)
	}

	written, err := io.Copy(dst, r)
	if cerr := dst.Close(); cerr != nil && err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(filepath.Join(s.root, name))
		return "", 0, fmt.Errorf("write blob: %w", err)
	}
	return name, written, nil
}

// Open returns a reader for the stored blob at path.
func (s *Store) Open(ctx context.Context, path string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	clean, err := s.resolve(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(clean)
	if err != nil {
		return nil, fmt.Errorf("open blob %q: %w", path, err)
	}
	return f, nil
}

// Remove deletes the blob at path; missing blobs are not an error.
func (s *Store) Remove(ctx context.Context, path string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	clean, err := s.resolve(path)
	if err != nil {
		return err
	}
	if err := os.Remove(clean); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove blob %q: %w", path, err)
	}
	return nil
}

// Ping verifies the root directory is still writable.
func (s *Store) Ping(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	info, err := os.Stat(s.root)
	if err != nil {
		return fmt.Errorf("stat storage root: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("storage root %q is not a directory", s.root)
	}
	return nil
}

func (s *Store) resolve(path string) (string, error) {
	if path == "" {
		return "", errors.New("blob path is required")
	}
	clean := filepath.Join(s.root, filepath.Base(path))
	return clean, nil
}
