package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// FileStore keeps the whole key space in one JSON file that is rewritten on
// every change.
type FileStore struct {
	mu       sync.Mutex
	filePath string
	data     map[string]json.RawMessage
}

// NewFileStore loads filePath, starting empty if the file doesn't exist.
func NewFileStore(filePath string) (*FileStore, error) {
	data, err := loadFile(filePath)
	if err != nil {
		return nil, err
	}
	return &FileStore{filePath: filePath, data: data}, nil
}

func loadFile(filePath string) (map[string]json.RawMessage, error) {
	raw, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return make(map[string]json.RawMessage), nil
		}
		return nil, fmt.Errorf("read state file: %w", err)
	}
	data := make(map[string]json.RawMessage)
	if len(raw) == 0 {
		return data, nil
	}
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("decode state file: %w", err)
	}
	return data, nil
}

func (f *FileStore) Get(key string) ([]byte, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.data[key]
	if !ok {
		return nil, false
	}
	return append([]byte(nil), v...), true
}

func (f *FileStore) Set(key string, value []byte) error {
	if !json.Valid(value) {
		return fmt.Errorf("value for %s is not valid JSON", key)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.data[key] = append(json.RawMessage(nil), value...)
	return f.save()
}

func (f *FileStore) Delete(key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.data, key)
	return f.save()
}

func (f *FileStore) Close() error { return nil }

func (f *FileStore) save() error {
	out, err := json.MarshalIndent(f.data, "", "  ")
	if err != nil {
		return err
	}
	if dir := filepath.Dir(f.filePath); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create state dir: %w", err)
		}
	}
	return os.WriteFile(f.filePath, out, 0644)
}
