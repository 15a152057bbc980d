package main

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"slices"
	"time"

	"github.com/fsnotify/fsnotify"
)

const watchDebounce = 200 * time.Millisecond

// inputWatcher watches the directories of the descriptions, since editors
// often replace a file instead of writing it in place.
type inputWatcher struct {
	fs     *fsnotify.Watcher
	inputs map[string]bool
}

func newInputWatcher(inputs []string) (*inputWatcher, error) {
	fs, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}
	w := &inputWatcher{fs: fs, inputs: make(map[string]bool, len(inputs))}
	var dirs []string
	for _, path := range inputs {
		abs, err := filepath.Abs(path)
		if err != nil {
			_ = fs.Close()
			return nil, err
		}
		w.inputs[abs] = true
		dirs = append(dirs, filepath.Dir(abs))
	}
	slices.Sort(dirs)
	for _, dir := range slices.Compact(dirs) {
		if err := fs.Add(dir); err != nil {
			_ = fs.Close()
			return nil, fmt.Errorf("failed to watch %s: %w", dir, err)
		}
	}
	return w, nil
}

func (w *inputWatcher) Close() error { return w.fs.Close() }

func (w *inputWatcher) relevant(ev fsnotify.Event) bool {
	if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
		return false
	}
	abs, err := filepath.Abs(ev.Name)
	return err == nil && w.inputs[abs]
}

// run calls rerun once a burst of changes settles, until ctx is done.
// Errors of rerun are printed to log and do not stop the loop.
func (w *inputWatcher) run(ctx context.Context, debounce time.Duration, rerun func() error, log io.Writer) error {
	timer := time.NewTimer(debounce)
	timer.Stop()
	defer timer.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.fs.Events:
			if !ok {
				return nil
			}
			if w.relevant(ev) {
				timer.Reset(debounce)
			}
		case err, ok := <-w.fs.Errors:
			if !ok {
				return nil
			}
			fmt.Fprintf(log, "watch: %v\n", err)
		case <-timer.C:
			if err := rerun(); err != nil {
				fmt.Fprintf(log, "%v\n", err)
			}
		}
	}
}
