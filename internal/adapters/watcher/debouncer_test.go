package watcher_test

import (
	"sync"
	"testing"
	"testing/synctest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/strata/internal/adapters/watcher"
)

func TestDebouncer_SingleEvent(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		var callCount int
		var received []string

		d := watcher.NewDebouncer(100*time.Millisecond, func(paths []string) {
			callCount++
			received = paths
		})

		d.Add("/project/strata.yaml")

		time.Sleep(150 * time.Millisecond)
		synctest.Wait()

		require.Equal(t, 1, callCount)
		require.Equal(t, []string{"/project/strata.yaml"}, received)
	})
}

func TestDebouncer_CoalescesBurst(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		var callCount int
		var received []string

		d := watcher.NewDebouncer(100*time.Millisecond, func(paths []string) {
			callCount++
			received = paths
		})

		// Editors produce bursts: several writes to the manifest and pin
		// within one window must collapse into a single invalidation.
		d.Add("/project/strata.yaml")
		d.Add("/project/nixpkgs.json")
		d.Add("/project/strata.yaml")

		time.Sleep(150 * time.Millisecond)
		synctest.Wait()

		require.Equal(t, 1, callCount)
		require.Len(t, received, 2)
		assert.Contains(t, received, "/project/strata.yaml")
		assert.Contains(t, received, "/project/nixpkgs.json")
	})
}

func TestDebouncer_WindowRestartsOnAdd(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		var mu sync.Mutex
		var callCount int

		d := watcher.NewDebouncer(100*time.Millisecond, func([]string) {
			mu.Lock()
			callCount++
			mu.Unlock()
		})

		d.Add("/project/strata.yaml")
		time.Sleep(50 * time.Millisecond)
		d.Add("/project/nixpkgs.json")
		time.Sleep(50 * time.Millisecond)

		// 100ms after the first add, but the second add restarted the window.
		synctest.Wait()
		mu.Lock()
		count := callCount
		mu.Unlock()
		assert.Equal(t, 0, count)

		time.Sleep(60 * time.Millisecond)
		synctest.Wait()

		mu.Lock()
		count = callCount
		mu.Unlock()
		require.Equal(t, 1, count)
	})
}

func TestDebouncer_Flush(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		var callCount int
		var received []string

		d := watcher.NewDebouncer(100*time.Millisecond, func(paths []string) {
			callCount++
			received = paths
		})

		d.Add("/project/strata.yaml")
		d.Flush()

		require.Equal(t, 1, callCount)
		require.Equal(t, []string{"/project/strata.yaml"}, received)

		// The stopped timer must not deliver a second batch.
		time.Sleep(150 * time.Millisecond)
		synctest.Wait()
		assert.Equal(t, 1, callCount)
	})
}

func TestDebouncer_FlushEmpty(t *testing.T) {
	var callCount int

	d := watcher.NewDebouncer(100*time.Millisecond, func([]string) {
		callCount++
	})

	d.Flush()
	assert.Equal(t, 0, callCount)
}

func TestDebouncer_NilCallback(t *testing.T) {
	synctest.Test(t, func(_ *testing.T) {
		d := watcher.NewDebouncer(50*time.Millisecond, nil)

		d.Add("/project/strata.yaml")
		time.Sleep(100 * time.Millisecond)
		synctest.Wait()

		d.Flush()
	})
}
