package storage

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path"

	"github.com/spf13/afero"
)

// LocalStore writes media to an afero filesystem, normally a directory on disk.
type LocalStore struct {
	fs      afero.Fs
	baseURL string
}

// NewLocalStore wraps fs. baseURL is the public prefix, e.g. "/media/".
func NewLocalStore(fs afero.Fs, baseURL string) *LocalStore {
	return &LocalStore{fs: fs, baseURL: baseURL}
}

// NewDiskStore stores media under root on the OS filesystem.
func NewDiskStore(root, baseURL string) (*LocalStore, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create media root: %w", err)
	}
	return NewLocalStore(afero.NewBasePathFs(afero.NewOsFs(), root), baseURL), nil
}

func (s *LocalStore) Save(_ context.Context, key string, data []byte, _ string) error {
	key, err := cleanKey(key)
	if err != nil {
		return err
	}
	name := fsPath(key)
	if err := s.fs.MkdirAll(path.Dir(name), 0o755); err != nil {
		return fmt.Errorf("create media dir: %w", err)
	}
	if err := afero.WriteFile(s.fs, name, data, 0o644); err != nil {
		return fmt.Errorf("write media file: %w", err)
	}
	return nil
}

// Delete ignores keys that are already gone.
func (s *LocalStore) Delete(_ context.Context, key string) error {
	key, err := cleanKey(key)
	if err != nil {
		return err
	}
	if err := s.fs.Remove(fsPath(key)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("delete media file: %w", err)
	}
	return nil
}

// fsPath roots key so lookups through HTTPFileSystem resolve to the same file.
func fsPath(key string) string {
	return "/" + key
}

func (s *LocalStore) URL(key string) string {
	return s.baseURL + key
}

// HTTPFileSystem exposes the stored files for fiber's filesystem middleware.
func (s *LocalStore) HTTPFileSystem() http.FileSystem {
	return afero.NewHttpFs(s.fs)
}
