//go:build !integration

package cli

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRelevantEvent(t *testing.T) {
	tests := []struct {
		name  string
		event fsnotify.Event
		want  bool
	}{
		{name: "manifest write", event: fsnotify.Event{Name: "store/alpha/umbrel-app.yml", Op: fsnotify.Write}, want: true},
		{name: "new directory", event: fsnotify.Event{Name: "store/beta", Op: fsnotify.Create}, want: true},
		{name: "removed file", event: fsnotify.Event{Name: "store/alpha/docker-compose.yml", Op: fsnotify.Remove}, want: true},
		{name: "gitkeep", event: fsnotify.Event{Name: "store/alpha/data/.gitkeep", Op: fsnotify.Create}, want: true},
		{name: "chmod only", event: fsnotify.Event{Name: "store/alpha/umbrel-app.yml", Op: fsnotify.Chmod}, want: false},
		{name: "swap file", event: fsnotify.Event{Name: "store/alpha/.umbrel-app.yml.swp", Op: fsnotify.Write}, want: false},
		{name: "backup file", event: fsnotify.Event{Name: "store/alpha/umbrel-app.yml~", Op: fsnotify.Write}, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, relevantEvent(tt.event))
		})
	}
}

func TestWatchLoopDebounces(t *testing.T) {
	events := make(chan fsnotify.Event)
	errs := make(chan error)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var changes atomic.Int32
	var seen []string
	done := make(chan error, 1)
	go func() {
		done <- watchLoop(ctx, events, errs, 20*time.Millisecond,
			func(e fsnotify.Event) { seen = append(seen, filepath.Base(e.Name)) },
			func() { changes.Add(1) })
	}()

	events <- fsnotify.Event{Name: "store/alpha/umbrel-app.yml", Op: fsnotify.Write}
	events <- fsnotify.Event{Name: "store/alpha/docker-compose.yml", Op: fsnotify.Write}
	events <- fsnotify.Event{Name: "store/alpha/.umbrel-app.yml.swp", Op: fsnotify.Write}
	events <- fsnotify.Event{Name: "store/alpha/docker-compose.yml", Op: fsnotify.Chmod}
	errs <- errors.New("watcher overflow")

	assert.Eventually(t, func() bool { return changes.Load() == 1 }, time.Second, 5*time.Millisecond,
		"a burst of events should produce one change")

	events <- fsnotify.Event{Name: "store/alpha/data/.gitkeep", Op: fsnotify.Create}
	assert.Eventually(t, func() bool { return changes.Load() == 2 }, time.Second, 5*time.Millisecond)

	cancel()
	require.NoError(t, <-done)
	assert.Equal(t, []string{"umbrel-app.yml", "docker-compose.yml", ".gitkeep"}, seen)
}

func TestWatchLoopStopsWhenWatcherCloses(t *testing.T) {
	events := make(chan fsnotify.Event)
	errs := make(chan error)
	close(events)

	err := watchLoop(context.Background(), events, errs, time.Millisecond, nil, func() {
		t.Error("onChange should not be called")
	})
	assert.NoError(t, err)
}

func TestAddWatchTreeSkipsHiddenDirectories(t *testing.T) {
	root := writeStore(t, true, "alpha")
	require.NoError(t, os.MkdirAll(filepath.Join(root, ".git", "objects"), 0o755))

	watcher, err := fsnotify.NewWatcher()
	require.NoError(t, err)
	defer watcher.Close()

	require.NoError(t, addWatchTree(watcher, root))
	watched := watcher.WatchList()
	assert.Contains(t, watched, root)
	assert.Contains(t, watched, filepath.Join(root, "alpha"))
	assert.Contains(t, watched, filepath.Join(root, "alpha", "data"))
	assert.NotContains(t, watched, filepath.Join(root, ".git"))
	assert.NotContains(t, watched, filepath.Join(root, ".git", "objects"))
}

func TestWatchAndRunRelintsOnChange(t *testing.T) {
	root := writeStore(t, true, "alpha")
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var runs atomic.Int32
	var stderr bytes.Buffer
	done := make(chan error, 1)
	go func() {
		done <- watchAndRun(ctx, root, &stderr, func() { runs.Add(1) })
	}()

	require.Eventually(t, func() bool { return runs.Load() == 1 }, 2*time.Second, 10*time.Millisecond)
	// The first run happens after the watches are in place.
	require.NoError(t, os.WriteFile(filepath.Join(root, "alpha", "README.md"), []byte("notes\n"), 0o644))
	assert.Eventually(t, func() bool { return runs.Load() >= 2 }, 5*time.Second, 20*time.Millisecond)

	cancel()
	require.NoError(t, <-done)
}
