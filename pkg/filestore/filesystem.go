package filestore

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// FileSystemStore keeps dataset files under a base directory. References
// are relative paths; traversal outside the base is rejected.
type FileSystemStore struct {
	basePath string
}

// NewFileSystemStore creates the base directory if needed
func NewFileSystemStore(basePath string) (*FileSystemStore, error) {
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create file store directory: %w", err)
	}
	return &FileSystemStore{basePath: basePath}, nil
}

// Fetch reads the referenced file's text
func (fs *FileSystemStore) Fetch(_ context.Context, ref string) (string, error) {
	path, err := fs.resolve(ref)
	if err != nil {
		return "", err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("%w: %s", ErrNotFound, ref)
		}
		return "", fmt.Errorf("failed to read %s: %w", ref, err)
	}
	return string(data), nil
}

// Put writes the referenced file, creating parent directories
func (fs *FileSystemStore) Put(_ context.Context, ref string, content string) error {
	path, err := fs.resolve(ref)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", ref, err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", ref, err)
	}
	return nil
}

// Delete removes the referenced file
func (fs *FileSystemStore) Delete(_ context.Context, ref string) error {
	path, err := fs.resolve(ref)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrNotFound, ref)
		}
		return fmt.Errorf("failed to delete %s: %w", ref, err)
	}
	return nil
}

func (fs *FileSystemStore) resolve(ref string) (string, error) {
	if ref == "" {
		return "", fmt.Errorf("%w: empty reference", ErrNotFound)
	}
	clean := filepath.Clean(ref)
	if strings.HasPrefix(clean, "..") || filepath.IsAbs(clean) {
		return "", fmt.Errorf("invalid file reference: %s", ref)
	}
	return filepath.Join(fs.basePath, clean), nil
}
