// Package prefs provides persistent PrefStores for the bone overlay's settings: a TOML file (the default) and a SQLite
// database. Both buffer writes in memory until Flush() is called, which OverlayState does after persisting its whole record.
package prefs

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/mitchellh/go-homedir"
	"github.com/solarlune/boneoverlay"
)

// DefaultPath is where the TOML preferences file lives unless told otherwise.
const DefaultPath = "~/.config/boneoverlay/prefs.toml"

// ErrClosed is returned by a store's methods after it's been closed.
var ErrClosed = errors.New("prefs: store is closed")

// Store is a PrefStore that can be flushed and closed.
type Store interface {
	boneoverlay.PrefStore
	boneoverlay.Flusher
	Close() error
}

var (
	_ Store = (*File)(nil)
	_ Store = (*SQLite)(nil)
)

// Open opens the store of the kind given ("toml" or "sqlite") at path. An empty path uses DefaultPath for TOML stores, and
// the same directory with a .db extension for SQLite. A leading ~ is expanded to the user's home directory.
func Open(kind, path string) (Store, error) {

	if path == "" {
		path = DefaultPath
		if kind == "sqlite" {
			path = "~/.config/boneoverlay/prefs.db"
		}
	}

	expanded, err := homedir.Expand(path)
	if err != nil {
		return nil, fmt.Errorf("prefs: expanding %s: %w", path, err)
	}

	switch kind {
	case "", "toml":
		return OpenFile(expanded)
	case "sqlite":
		return OpenSQLite(expanded)
	}

	return nil, fmt.Errorf("prefs: unknown store kind %q (expected toml or sqlite)", kind)

}

// toFloat converts a decoded preference value to a float64.
func toFloat(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int64:
		return float64(v), true
	case int:
		return float64(v), true
	case string:
		f, err := strconv.ParseFloat(v, 64)
		return f, err == nil
	}
	return 0, false
}

// toBool converts a decoded preference value to a bool.
func toBool(value any) (bool, bool) {
	switch v := value.(type) {
	case bool:
		return v, true
	case string:
		b, err := strconv.ParseBool(v)
		return b, err == nil
	}
	return false, false
}
