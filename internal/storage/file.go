package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// FileStorage keeps every item in a single JSON document. The document is
// rewritten through a temp file and rename on each mutation.
type FileStorage struct {
	path  string
	mu    sync.RWMutex
	items map[string]string
}

func NewFileStorage(path string) (*FileStorage, error) {
	f := &FileStorage{path: path, items: make(map[string]string)}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return f, nil
		}
		return nil, fmt.Errorf("reading storage file %s: %w", path, err)
	}

	if len(data) > 0 {
		if err := json.Unmarshal(data, &f.items); err != nil {
			return nil, fmt.Errorf("decoding storage file %s: %w", path, err)
		}
	}

	return f, nil
}

func (f *FileStorage) GetItem(_ context.Context, key string) (string, bool, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	value, ok := f.items[key]
	return value, ok, nil
}

func (f *FileStorage) SetItem(_ context.Context, key, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	prev, had := f.items[key]
	f.items[key] = value
	if err := f.flush(); err != nil {
		if had {
			f.items[key] = prev
		} else {
			delete(f.items, key)
		}
		return err
	}
	return nil
}

func (f *FileStorage) RemoveItem(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	prev, had := f.items[key]
	if !had {
		return nil
	}
	delete(f.items, key)
	if err := f.flush(); err != nil {
		f.items[key] = prev
		return err
	}
	return nil
}

// flush must be called with f.mu held.
func (f *FileStorage) flush() error {
	data, err := json.MarshalIndent(f.items, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding storage file: %w", err)
	}

	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating storage dir %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(f.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp storage file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("writing storage file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing storage file: %w", err)
	}

	if err := os.Rename(tmp.Name(), f.path); err != nil {
		return fmt.Errorf("replacing storage file: %w", err)
	}
	return nil
}
