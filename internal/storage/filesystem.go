package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// FileSystemStorage keeps images under <root>/posts
type FileSystemStorage struct {
	root string
}

func NewFileSystemStorage(root string) (*FileSystemStorage, error) {
	if err := os.MkdirAll(filepath.Join(root, Prefix), 0o755); err != nil {
		return nil, fmt.Errorf("create media root: %w", err)
	}
	return &FileSystemStorage{root: root}, nil
}

func (s *FileSystemStorage) path(ref string) string {
	return filepath.Join(s.root, filepath.FromSlash(ref))
}

func (s *FileSystemStorage) Save(_ context.Context, ext string, r io.Reader) (string, error) {
	ref := newRef(ext)
	f, err := os.OpenFile(s.path(ref), os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", err
	}
	return ref, f.Close()
}

func (s *FileSystemStorage) Open(_ context.Context, ref string) (io.ReadCloser, error) {
	if err := checkRef(ref); err != nil {
		return nil, err
	}
	f, err := os.Open(s.path(ref))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNotFound
	}
	return f, err
}

func (s *FileSystemStorage) Delete(_ context.Context, ref string) error {
	if err := checkRef(ref); err != nil {
		return err
	}
	err := os.Remove(s.path(ref))
	if errors.Is(err, fs.ErrNotExist) {
		return ErrNotFound
	}
	return err
}

func (s *FileSystemStorage) List(_ context.Context) ([]Image, error) {
	entries, err := os.ReadDir(filepath.Join(s.root, Prefix))
	if err != nil {
		return nil, err
	}
	images := make([]Image, 0, len(entries))
	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}
		info, err := entry.Info()
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, err
		}
		images = append(images, Image{Ref: Prefix + entry.Name(), SavedAt: info.ModTime()})
	}
	return images, nil
}
