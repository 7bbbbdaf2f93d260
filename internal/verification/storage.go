package verification

import (
	"fmt"
	"os"
	"path/filepath"
)

// Storage defines the interface for archiving receipt documents
type Storage interface {
	// Save archives a document and returns the path/filename
	Save(filename string, data []byte) (string, error)

	// Get retrieves an archived document by path
	Get(path string) ([]byte, error)

	// Delete removes an archived document
	Delete(path string) error
}

// LocalStorage implements the Storage interface using local filesystem
type LocalStorage struct {
	basePath string
}

// NewLocalStorage creates a new LocalStorage instance
func NewLocalStorage(basePath string) (*LocalStorage, error) {
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("creating archive directory: %w", err)
	}

	return &LocalStorage{
		basePath: basePath,
	}, nil
}

// Save archives a document to local storage
func (l *LocalStorage) Save(filename string, data []byte) (string, error) {
	path := filepath.Join(l.basePath, filename)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("writing document: %w", err)
	}
	return filename, nil
}

// Get retrieves an archived document from local storage
func (l *LocalStorage) Get(path string) ([]byte, error) {
	fullPath := filepath.Join(l.basePath, path)
	data, err := os.ReadFile(fullPath)
	if err != nil {
		return nil, fmt.Errorf("reading document: %w", err)
	}
	return data, nil
}

// Delete removes an archived document from local storage
func (l *LocalStorage) Delete(path string) error {
	fullPath := filepath.Join(l.basePath, path)
	if err := os.Remove(fullPath); err != nil {
		return fmt.Errorf("deleting document: %w", err)
	}
	return nil
}
