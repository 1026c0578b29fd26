package boneoverlay

import "errors"

// ErrPrefsReadOnly is returned by a MemoryPrefs store's setters while it's marked read-only.
var ErrPrefsReadOnly = errors.New("preference store is read-only")

// MemoryPrefs is a PrefStore that keeps values in memory only. It's the store an OverlayState uses when no other store is given.
type MemoryPrefs struct {
	values map[string]any
	// ReadOnly makes every setter fail with ErrPrefsReadOnly, without changing the stored values.
	ReadOnly bool
	// Writes counts successful writes.
	Writes int
}

// NewMemoryPrefs returns an empty MemoryPrefs store.
func NewMemoryPrefs() *MemoryPrefs {
	return &MemoryPrefs{values: map[string]any{}}
}

func (prefs *MemoryPrefs) set(key string, value any) error {
	if prefs.ReadOnly {
		return ErrPrefsReadOnly
	}
	prefs.values[key] = value
	prefs.Writes++
	return nil
}

func (prefs *MemoryPrefs) GetBool(key string, def bool) bool {
	if v, ok := prefs.values[key].(bool); ok {
		return v
	}
	return def
}

func (prefs *MemoryPrefs) SetBool(key string, value bool) error { return prefs.set(key, value) }

func (prefs *MemoryPrefs) GetFloat(key string, def float64) float64 {
	if v, ok := prefs.values[key].(float64); ok {
		return v
	}
	return def
}

func (prefs *MemoryPrefs) SetFloat(key string, value float64) error { return prefs.set(key, value) }

func (prefs *MemoryPrefs) GetString(key string, def string) string {
	if v, ok := prefs.values[key].(string); ok {
		return v
	}
	return def
}

func (prefs *MemoryPrefs) SetString(key string, value string) error { return prefs.set(key, value) }

// Has returns if a value has been stored under the key.
func (prefs *MemoryPrefs) Has(key string) bool {
	_, ok := prefs.values[key]
	return ok
}
