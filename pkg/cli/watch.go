package cli

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/getumbrel/umbrel-linter/pkg/console"
	"github.com/getumbrel/umbrel-linter/pkg/constants"
	"github.com/getumbrel/umbrel-linter/pkg/logger"
)

var watchLog = logger.New("cli:watch")

// watchDebounce batches the burst of events an editor save or git checkout
// produces into one run.
const watchDebounce = 300 * time.Millisecond

// watchAndRun calls run once, then again after every batch of changes below
// root, until ctx is cancelled.
func watchAndRun(ctx context.Context, root string, stderr io.Writer, run func()) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer watcher.Close()

	if err := addWatchTree(watcher, root); err != nil {
		return err
	}

	run()
	fmt.Fprintln(stderr, console.FormatInfoMessage("Watching for changes (press Ctrl+C to stop)..."))

	onEvent := func(event fsnotify.Event) {
		if !event.Has(fsnotify.Create) {
			return
		}
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if err := addWatchTree(watcher, event.Name); err != nil {
				watchLog.Printf("Failed to watch new directory %s: %v", event.Name, err)
			}
		}
	}
	onChange := func() {
		fmt.Fprintln(stderr)
		run()
		fmt.Fprintln(stderr, console.FormatInfoMessage("Watching for changes (press Ctrl+C to stop)..."))
	}
	return watchLoop(ctx, watcher.Events, watcher.Errors, watchDebounce, onEvent, onChange)
}

// addWatchTree watches root and every directory below it except hidden ones.
func addWatchTree(watcher *fsnotify.Watcher, root string) error {
	count := 0
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			watchLog.Printf("Skipping %s: %v", path, err)
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && isHiddenName(d.Name()) {
			return filepath.SkipDir
		}
		if err := watcher.Add(path); err != nil {
			return fmt.Errorf("failed to watch %s: %w", path, err)
		}
		count++
		return nil
	})
	watchLog.Printf("Watching %d directories below %s", count, root)
	return err
}

// watchLoop debounces relevant events into onChange calls. onEvent sees every
// relevant event as it arrives. Returns nil when ctx is done or the watcher
// closes its channels.
func watchLoop(ctx context.Context, events <-chan fsnotify.Event, errs <-chan error, debounce time.Duration, onEvent func(fsnotify.Event), onChange func()) error {
	var timer *time.Timer
	var fire <-chan time.Time
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-events:
			if !ok {
				return nil
			}
			if !relevantEvent(event) {
				continue
			}
			watchLog.Printf("Change detected: %s", event)
			if onEvent != nil {
				onEvent(event)
			}
			if timer == nil {
				timer = time.NewTimer(debounce)
			} else {
				timer.Reset(debounce)
			}
			fire = timer.C
		case err, ok := <-errs:
			if !ok {
				return nil
			}
			watchLog.Printf("Watcher error: %v", err)
		case <-fire:
			fire = nil
			onChange()
		}
	}
}

// relevantEvent drops permission changes and hidden or backup files.
// .gitkeep files count since they decide whether a directory is empty.
func relevantEvent(event fsnotify.Event) bool {
	if event.Op == fsnotify.Chmod {
		return false
	}
	name := filepath.Base(event.Name)
	if name == constants.GitkeepFile {
		return true
	}
	return !isHiddenName(name) && !strings.HasSuffix(name, "~")
}

func isHiddenName(name string) bool {
	return strings.HasPrefix(name, ".") && name != "." && name != ".."
}
