package main

import (
	"fmt"

	"github.com/pelletier/go-toml/v2"
	"github.com/solarlune/boneoverlay"
	"github.com/spf13/cobra"
)

func newPrefsCmd(opts *options) *cobra.Command {

	prefsCmd := &cobra.Command{
		Use:   "prefs",
		Short: "Show or change the saved overlay settings",
	}

	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Print the current settings as TOML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := opts.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			state := boneoverlay.NewOverlayState(newScratchPrefs(store), opts.logger)

			out, err := toml.Marshal(state.Settings())
			if err != nil {
				return fmt.Errorf("encode settings: %w", err)
			}
			_, err = cmd.OutOrStdout().Write(out)
			return err
		},
	}

	setCmd := &cobra.Command{
		Use:   "set KEY VALUE",
		Short: "Change a single setting",
		Long: `Change a single setting by name, for example:

  boneoverlay prefs set MaxRenderDistance 120
  boneoverlay prefs set SelectedColor 1,0.5,0,1
  boneoverlay prefs set BoneNamePatterns bone,joint,mixamorig`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withState(func(state *boneoverlay.OverlayState) error {
				return state.SetByName(args[0], args[1])
			})
		},
	}

	resetCmd := &cobra.Command{
		Use:   "reset",
		Short: "Restore every setting to its default",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withState(func(state *boneoverlay.OverlayState) error {
				state.ResetToDefaults()
				return nil
			})
		},
	}

	prefsCmd.AddCommand(showCmd, setCmd, resetCmd)

	return prefsCmd

}

// withState opens the saved settings, runs fn on them, and then writes them back.
func (opts *options) withState(fn func(state *boneoverlay.OverlayState) error) error {

	store, err := opts.openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	state := boneoverlay.NewOverlayState(store, opts.logger)

	if err := fn(state); err != nil {
		return err
	}

	return state.Save()

}
