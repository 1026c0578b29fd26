package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/solarlune/boneoverlay"
	"github.com/spf13/cobra"
)

func newDetectCmd(opts *options) *cobra.Command {

	var (
		patterns     []string
		includeEmpty bool
		scene        int
	)

	cmd := &cobra.Command{
		Use:   "detect FILE",
		Short: "List the bones found in a glTF / VRM file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {

			store, err := opts.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			state := boneoverlay.NewOverlayState(newScratchPrefs(store), opts.logger)

			if cmd.Flags().Changed("patterns") {
				state.SetBoneNamePatterns(patterns)
			}
			if cmd.Flags().Changed("include-empty") {
				state.SetIncludeEmptyNodes(includeEmpty)
			}

			loadOptions := boneoverlay.DefaultGLTFLoadOptions()
			loadOptions.SceneIndex = scene
			loadOptions.Logger = opts.logger

			graph, err := boneoverlay.LoadGLTFFile(args[0], loadOptions)
			if err != nil {
				return err
			}

			detector := boneoverlay.NewBoneDetector(graph, &boneoverlay.FrameCounter{}, state, opts.logger)
			bones := detector.DetectBones()

			printBones(cmd.OutOrStdout(), graph, bones)
			fmt.Fprintf(cmd.OutOrStdout(), "%d bones, %d excluded\n", len(bones), detector.ExcludedCount())

			return nil

		},
	}

	cmd.Flags().StringSliceVar(&patterns, "patterns", nil, "Bone name patterns to match instead of the saved ones")
	cmd.Flags().BoolVar(&includeEmpty, "include-empty", false, "Match childless nodes against the name patterns too")
	cmd.Flags().IntVar(&scene, "scene", -1, "Index of the glTF scene to load (-1 for the file's default)")

	return cmd

}

// printBones writes the bones as an indented tree, in detection order.
func printBones(w io.Writer, graph *boneoverlay.Scene, bones []*boneoverlay.BoneInfo) {

	for _, bone := range bones {

		var tags []string
		if bone.IsFromSkin {
			tags = append(tags, "skin")
		}
		if bone.IsFromRig {
			tags = append(tags, "rig")
		}

		line := strings.Repeat("  ", bone.Depth) + graph.Name(bone.Node)
		if len(tags) > 0 {
			line += " [" + strings.Join(tags, ", ") + "]"
		}

		fmt.Fprintln(w, line)

	}

}
