package main

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/solarlune/boneoverlay"
	"github.com/solarlune/boneoverlay/ebitenhost"
	"github.com/spf13/cobra"
)

// reloadDelay is how long the watcher waits for a file to stop changing before loading it again.
const reloadDelay = 200 * time.Millisecond

func newViewCmd(opts *options) *cobra.Command {

	var (
		watch         bool
		width, height int
		near, far     float64
	)

	cmd := &cobra.Command{
		Use:   "view FILE",
		Short: "Open a window showing the bones of a glTF / VRM file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {

			path := args[0]

			if near <= 0 || far <= near {
				return fmt.Errorf("clipping planes must satisfy 0 < near < far (got near %g, far %g)", near, far)
			}

			loadOptions := boneoverlay.DefaultGLTFLoadOptions()
			loadOptions.Logger = opts.logger

			scene, err := boneoverlay.LoadGLTFFile(path, loadOptions)
			if err != nil {
				return err
			}

			store, err := opts.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			appOptions := ebitenhost.AppOptions{
				Width:  width,
				Height: height,
				Store:  store,
				Logger: opts.logger,
			}

			if watch {
				ctx, cancel := context.WithCancel(cmd.Context())
				defer cancel()

				reloads, err := watchScene(ctx, path, loadOptions, opts.logger)
				if err != nil {
					return err
				}
				appOptions.Reloads = reloads
			}

			app := ebitenhost.NewApp(scene, appOptions)
			app.Camera.SetNear(near)
			app.Camera.SetFar(far)

			return ebitenhost.Run(app, "boneoverlay - "+filepath.Base(path))

		},
	}

	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "Reload the file whenever it changes on disk")
	cmd.Flags().IntVar(&width, "width", 1280, "Window width")
	cmd.Flags().IntVar(&height, "height", 720, "Window height")
	cmd.Flags().Float64Var(&near, "near", 0.1, "Camera near clipping plane")
	cmd.Flags().Float64Var(&far, "far", 1000, "Camera far clipping plane")

	return cmd

}

// watchScene loads the file at path again whenever it changes, sending each result on the returned channel until ctx is
// done. The file's directory is watched rather than the file itself, as many tools save by replacing the file.
func watchScene(ctx context.Context, path string, loadOptions *boneoverlay.GLTFLoadOptions, logger *slog.Logger) (<-chan ebitenhost.Reload, error) {

	path, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("watch %s: %w", path, err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("watch %s: %w", path, err)
	}

	if err := watcher.Add(filepath.Dir(path)); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("watch %s: %w", path, err)
	}

	reloads := make(chan ebitenhost.Reload, 1)

	go func() {

		defer watcher.Close()
		defer close(reloads)

		timer := time.NewTimer(reloadDelay)
		timer.Stop()

		for {
			select {

			case <-ctx.Done():
				return

			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != path || !event.Has(fsnotify.Write|fsnotify.Create|fsnotify.Rename) {
					continue
				}
				logger.Debug("scene file changed", "file", path, "op", event.Op.String())
				timer.Reset(reloadDelay)

			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logger.Warn("file watcher error", "error", err)

			case <-timer.C:
				scene, err := boneoverlay.LoadGLTFFile(path, loadOptions)
				select {
				case reloads <- ebitenhost.Reload{Scene: scene, Err: err}:
				case <-ctx.Done():
					return
				}

			}
		}

	}()

	return reloads, nil

}
