package main

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/solarlune/boneoverlay"
	"github.com/solarlune/boneoverlay/prefs"
	"github.com/spf13/cobra"
)

var version = "0.1.0-dev"

// options holds the flags shared by every command.
type options struct {
	prefsPath string
	storeKind string
	logLevel  string

	logger *slog.Logger
}

func newRootCmd() *cobra.Command {

	opts := &options{}

	rootCmd := &cobra.Command{
		Use:     "boneoverlay",
		Short:   "Inspect the bones of glTF and VRM models",
		Version: version,
		Long: `boneoverlay finds the bone-like nodes of a glTF / VRM scene (through skins, humanoid rigs,
animations, and bone-like names) and draws them as an interactive overlay.

Overlay settings are persisted between runs, in a TOML file by default.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			logger, err := newLogger(opts.logLevel, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			opts.logger = logger
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVar(&opts.prefsPath, "prefs", "", "Path to the preferences store (default "+prefs.DefaultPath+")")
	rootCmd.PersistentFlags().StringVar(&opts.storeKind, "store", "toml", "Preferences store kind: toml|sqlite")
	rootCmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "info", "Log level: debug|info|warn|error")

	rootCmd.AddCommand(newViewCmd(opts), newDetectCmd(opts), newPrefsCmd(opts))

	return rootCmd

}

func newLogger(level string, w io.Writer) (*slog.Logger, error) {

	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.ToUpper(level))); err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}

	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl})), nil

}

// openStore opens the preferences store named by the shared flags.
func (opts *options) openStore() (prefs.Store, error) {
	store, err := prefs.Open(opts.storeKind, opts.prefsPath)
	if err != nil {
		return nil, fmt.Errorf("open preferences: %w", err)
	}
	return store, nil
}

// scratchPrefs reads through to a persistent store, but keeps every write in memory so one-off flags don't change the saved
// settings.
type scratchPrefs struct {
	base    boneoverlay.PrefStore
	scratch *boneoverlay.MemoryPrefs
}

func newScratchPrefs(base boneoverlay.PrefStore) *scratchPrefs {
	return &scratchPrefs{base: base, scratch: boneoverlay.NewMemoryPrefs()}
}

func (p *scratchPrefs) GetBool(key string, def bool) bool {
	if p.scratch.Has(key) {
		return p.scratch.GetBool(key, def)
	}
	return p.base.GetBool(key, def)
}

func (p *scratchPrefs) SetBool(key string, value bool) error { return p.scratch.SetBool(key, value) }

func (p *scratchPrefs) GetFloat(key string, def float64) float64 {
	if p.scratch.Has(key) {
		return p.scratch.GetFloat(key, def)
	}
	return p.base.GetFloat(key, def)
}

func (p *scratchPrefs) SetFloat(key string, value float64) error { return p.scratch.SetFloat(key, value) }

func (p *scratchPrefs) GetString(key string, def string) string {
	if p.scratch.Has(key) {
		return p.scratch.GetString(key, def)
	}
	return p.base.GetString(key, def)
}

func (p *scratchPrefs) SetString(key string, value string) error { return p.scratch.SetString(key, value) }
