package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"dailybrief/pkg/domain"
)

// FileStore keeps dispatch records as a JSON map on disk. The default
// backend: one operator, one scheduler instance, no coordination needed
// beyond durable read-modify-write across process restarts.
type FileStore struct {
	path string
	mu   sync.Mutex
}

// NewFileStore creates a file store at path, creating parent directories as
// needed
func NewFileStore(path string) (*FileStore, error) {
	if path == "" {
		return nil, fmt.Errorf("file store path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create store directory: %w", err)
	}
	return &FileStore{path: path}, nil
}

// Get returns the record for key, or (nil, nil) when none exists
func (s *FileStore) Get(ctx context.Context, key string) (*domain.DispatchRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.load()
	if err != nil {
		return nil, err
	}
	record, ok := records[key]
	if !ok {
		return nil, nil
	}
	return &record, nil
}

// Put upserts the record for its key. The file is rewritten atomically via
// a temp file and rename so a crash mid-write never corrupts the record set.
func (s *FileStore) Put(ctx context.Context, record domain.DispatchRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.load()
	if err != nil {
		return err
	}
	records[record.RequestKey] = record

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal dispatch records: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write dispatch records: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace dispatch records: %w", err)
	}
	return nil
}

// Close is a no-op for the file store
func (s *FileStore) Close(ctx context.Context) error {
	return nil
}

// load reads the record map, treating a missing file as empty
func (s *FileStore) load() (map[string]domain.DispatchRecord, error) {
	records := make(map[string]domain.DispatchRecord)

	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return records, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read dispatch records: %w", err)
	}

	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("parse dispatch records: %w", err)
	}
	return records, nil
}
