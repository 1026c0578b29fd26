package prefs

import (
	"errors"
	"fmt"
	"io/fs"
	"maps"
	"os"
	"path/filepath"
	"sort"

	"github.com/pelletier/go-toml/v2"
)

// File is a PrefStore kept in a TOML file. Values are read once when the file is opened; writes are buffered until Flush(),
// which rewrites the whole file atomically.
type File struct {
	path   string
	values map[string]any
	dirty  bool
	closed bool
}

// OpenFile opens the TOML preferences file at path. A missing file is fine, and is created on the first Flush().
func OpenFile(path string) (*File, error) {

	file := &File{
		path:   path,
		values: map[string]any{},
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return file, nil
	} else if err != nil {
		return nil, fmt.Errorf("prefs: reading %s: %w", path, err)
	}

	if err := toml.Unmarshal(data, &file.values); err != nil {
		return nil, fmt.Errorf("prefs: parsing %s: %w", path, err)
	}

	return file, nil

}

// Path returns the path of the file backing the store.
func (file *File) Path() string {
	return file.path
}

// Keys returns every key in the store, sorted.
func (file *File) Keys() []string {
	keys := make([]string, 0, len(file.values))
	for k := range file.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (file *File) set(key string, value any) error {
	if file.closed {
		return ErrClosed
	}
	if existing, ok := file.values[key]; ok && existing == value {
		return nil
	}
	file.values[key] = value
	file.dirty = true
	return nil
}

func (file *File) GetBool(key string, def bool) bool {
	if b, ok := toBool(file.values[key]); ok {
		return b
	}
	return def
}

func (file *File) SetBool(key string, value bool) error { return file.set(key, value) }

func (file *File) GetFloat(key string, def float64) float64 {
	if f, ok := toFloat(file.values[key]); ok {
		return f
	}
	return def
}

func (file *File) SetFloat(key string, value float64) error { return file.set(key, value) }

func (file *File) GetString(key string, def string) string {
	if s, ok := file.values[key].(string); ok {
		return s
	}
	return def
}

func (file *File) SetString(key string, value string) error { return file.set(key, value) }

// Flush writes the store to disk if anything changed since the last Flush().
func (file *File) Flush() error {

	if file.closed {
		return ErrClosed
	}

	if !file.dirty {
		return nil
	}

	data, err := toml.Marshal(maps.Clone(file.values))
	if err != nil {
		return fmt.Errorf("prefs: encoding %s: %w", file.path, err)
	}

	if err := os.MkdirAll(filepath.Dir(file.path), 0o755); err != nil {
		return fmt.Errorf("prefs: creating %s: %w", filepath.Dir(file.path), err)
	}

	tmp := file.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("prefs: writing %s: %w", tmp, err)
	}

	if err := os.Rename(tmp, file.path); err != nil {
		return fmt.Errorf("prefs: replacing %s: %w", file.path, err)
	}

	file.dirty = false

	return nil

}

// Close flushes the store and closes it.
func (file *File) Close() error {
	if file.closed {
		return nil
	}
	err := file.Flush()
	file.closed = true
	return err
}
