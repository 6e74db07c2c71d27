package shop

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// maxConcurrent runs workers goroutines through acquire/release and
// reports the highest concurrency observed inside the gate.
func maxConcurrent(t *testing.T, ov *Oven, workers int) int64 {
	t.Helper()
	var cur, max int64
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, ov.Acquire(context.Background()))
			n := atomic.AddInt64(&cur, 1)
			for {
				m := atomic.LoadInt64(&max)
				if n <= m || atomic.CompareAndSwapInt64(&max, m, n) {
					break
				}
			}
			time.Sleep(5 * time.Millisecond)
			atomic.AddInt64(&cur, -1)
			ov.Release()
		}()
	}
	wg.Wait()
	return atomic.LoadInt64(&max)
}

func TestOvenCapacityBound(t *testing.T) {
	ov := NewOven(4, 2)
	assert.LessOrEqual(t, maxConcurrent(t, ov, 8), int64(2))
}

func TestOvenOpeningsBound(t *testing.T) {
	ov := NewOven(1, 6)
	assert.LessOrEqual(t, maxConcurrent(t, ov, 6), int64(1))
}

func TestOvenAcquireObservesCancellation(t *testing.T) {
	ov := NewOven(1, 1)
	require.NoError(t, ov.Acquire(context.Background()))

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- ov.Acquire(ctx) }()
	cancel()

	select {
	case err := <-errCh:
		require.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("cancelled acquire did not return")
	}

	// The cancelled waiter must not have leaked a permit.
	ov.Release()
	assert.True(t, ov.TryAcquire())
	ov.Release()
}
