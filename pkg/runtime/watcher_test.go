package runtime

import (
	"context"
	"io"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/cuemby/kiln/pkg/log"
)

func TestMain(m *testing.M) {
	log.Init(log.Config{Level: "error", Output: io.Discard})
	os.Exit(m.Run())
}

func TestListAvailableCachesWhileWatching(t *testing.T) {
	root := t.TempDir()
	installRuntime(t, root, "python", "3.10.2", "python3")

	r := NewRegistry(root)
	r.mu.Lock()
	r.watching = true
	r.mu.Unlock()

	first := r.ListAvailable()
	assert.Len(t, first, 1)

	// A new install is invisible until the cache is dropped
	installRuntime(t, root, "python", "3.11.9", "python3")
	assert.Equal(t, first, r.ListAvailable())

	r.invalidate()
	assert.Len(t, r.ListAvailable(), 2)
}

func TestWatchStopsOnContextCancel(t *testing.T) {
	r := NewRegistry(t.TempDir())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- r.Watch(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("watcher did not stop on context cancel")
	}

	// Cache must not be served once the watcher is gone
	r.mu.RLock()
	assert.False(t, r.watching)
	r.mu.RUnlock()
}
