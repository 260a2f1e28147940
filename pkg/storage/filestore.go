package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	toml "github.com/pelletier/go-toml/v2"
)

// FileStore is a Store persisted to a TOML file of key = "value" pairs.
//
// The full key set lives in memory; every Set and Delete rewrites the file.
// Change notifications are in-process only — the file carries state across
// restarts, not between running processes.
type FileStore struct {
	path     string
	notifier keyNotifier

	mu   sync.Mutex
	data map[string]string
}

// NewFileStore opens the store at path, creating an empty one if the file
// does not exist. An unreadable or unparseable file degrades to an empty
// store rather than failing, so a corrupt state file never blocks startup.
func NewFileStore(path string) (*FileStore, error) {
	resolved, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve path: %w", err)
	}

	f := &FileStore{
		path: resolved,
		data: make(map[string]string),
	}

	bytes, err := os.ReadFile(resolved)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return f, nil
		}
		return f, nil // Graceful degradation
	}

	data := make(map[string]string)
	if err := toml.Unmarshal(bytes, &data); err != nil {
		return f, nil // Graceful degradation
	}
	f.data = data

	return f, nil
}

// Path returns the absolute path of the backing file.
func (f *FileStore) Path() string {
	return f.path
}

// Get returns the value for key, or ok=false when absent.
func (f *FileStore) Get(key string) (string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	value, ok := f.data[key]
	return value, ok
}

// Set stores value under key, rewrites the backing file, and notifies the
// key's subscribers. The in-memory value is updated even when the write
// fails; the error reports the persistence failure.
func (f *FileStore) Set(key, value string) error {
	f.mu.Lock()
	f.data[key] = value
	err := f.persist()
	f.mu.Unlock()

	f.notifier.notify(key, value, true)
	return err
}

// Delete removes key, rewrites the backing file, and notifies the key's
// subscribers.
func (f *FileStore) Delete(key string) error {
	f.mu.Lock()
	_, existed := f.data[key]
	if !existed {
		f.mu.Unlock()
		return nil
	}
	delete(f.data, key)
	err := f.persist()
	f.mu.Unlock()

	f.notifier.notify(key, "", false)
	return err
}

// Subscribe registers fn for changes to key.
func (f *FileStore) Subscribe(key string, fn func(value string, ok bool)) (cancel func()) {
	return f.notifier.subscribe(key, fn)
}

// persist writes the full key set to the backing file, creating directories
// as needed. Caller holds f.mu.
func (f *FileStore) persist() error {
	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create store dir: %w", err)
	}

	bytes, err := toml.Marshal(f.data)
	if err != nil {
		return fmt.Errorf("marshal store: %w", err)
	}

	if err := os.WriteFile(f.path, bytes, 0o644); err != nil {
		return fmt.Errorf("write store: %w", err)
	}

	return nil
}

var _ Store = (*FileStore)(nil)
