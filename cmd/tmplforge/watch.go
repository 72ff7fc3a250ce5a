package main

import (
	"fmt"
	"os"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Recompile the manifest's templates whenever a source file changes",
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := loadManifest()
		if err != nil {
			return err
		}
		if err := compileAll(m); err != nil {
			fmt.Fprintln(os.Stderr, "generate:", err)
		}
		return watchLoop(m)
	},
}

func watchLoop(m *Manifest) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("starting watcher: %w", err)
	}
	defer w.Close()

	for _, root := range m.Roots {
		if err := w.Add(root); err != nil {
			return fmt.Errorf("watching %q: %w", root, err)
		}
	}

	fmt.Fprintln(os.Stderr, "watching for changes, ctrl-c to stop")
	for {
		select {
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			fmt.Fprintln(os.Stderr, "changed:", ev.Name)
			if err := compileAll(m); err != nil {
				fmt.Fprintln(os.Stderr, "generate:", err)
			}
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			fmt.Fprintln(os.Stderr, "watcher error:", err)
		}
	}
}
