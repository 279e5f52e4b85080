package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sync"
)

// Store is a durable key-value store of named text records.
// Set replaces the whole record.
type Store interface {
	Get(ctx context.Context, name string) (value string, ok bool, err error)
	Set(ctx context.Context, name, value string) error
}

// Record is one named text record.
type Record struct {
	Name  string
	Value string
}

// BatchStore is a Store that replaces several records at once: either all
// of them are written or none is.
type BatchStore interface {
	Store
	SetAll(ctx context.Context, records []Record) error
}

var validName = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// FileStore keeps every record in its own file under basePath.
type FileStore struct {
	basePath string
	mu       sync.Mutex
}

// NewFileStore creates a new FileStore and ensures the base directory exists.
func NewFileStore(basePath string) (*FileStore, error) {
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory %s: %w", basePath, err)
	}
	return &FileStore{basePath: basePath}, nil
}

func (s *FileStore) path(name string) (string, error) {
	if !validName.MatchString(name) {
		return "", fmt.Errorf("invalid record name %q", name)
	}
	return filepath.Join(s.basePath, name+".json"), nil
}

// Get reads a record. A missing file means the record is absent.
func (s *FileStore) Get(_ context.Context, name string) (string, bool, error) {
	p, err := s.path(name)
	if err != nil {
		return "", false, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(p)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("failed to read record file: %w", err)
	}
	return string(data), true, nil
}

// Set writes the record to a temp file and renames it over the old one,
// so readers never see a half-written record.
func (s *FileStore) Set(_ context.Context, name, value string) error {
	p, err := s.path(name)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tmp, err := os.CreateTemp(s.basePath, name+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp record file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.WriteString(value); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write record file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close record file: %w", err)
	}
	if err := os.Rename(tmp.Name(), p); err != nil {
		return fmt.Errorf("failed to replace record file: %w", err)
	}
	return nil
}

// MemoryStore is an in-process Store, used by tests and the chat command
// when nothing should touch the disk.
type MemoryStore struct {
	mu      sync.Mutex
	records map[string]string
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string]string)}
}

// Get returns the record stored under name.
func (m *MemoryStore) Get(_ context.Context, name string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.records[name]
	return v, ok, nil
}

// SetAll replaces every record under one lock.
func (m *MemoryStore) SetAll(_ context.Context, records []Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range records {
		m.records[r.Name] = r.Value
	}
	return nil
}

// Set replaces the record stored under name.
func (m *MemoryStore) Set(_ context.Context, name, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records[name] = value
	return nil
}
