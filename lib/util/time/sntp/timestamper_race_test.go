package sntp

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSelectRandomServer(t *testing.T) {
	assert.NotPanics(t, func() {
		assert.Equal(t, "", selectRandomServer(nil))
	})
	assert.Equal(t, "time.example.org", selectRandomServer([]string{"time.example.org"}))
}

// TestReadersDuringSync reads the offset from many goroutines while query
// cycles apply new offsets. Run with -race.
func TestReadersDuringSync(t *testing.T) {
	rt := NewTimestamper(&MockNTPClient{ClockOffset: time.Second}, DefaultConfig())
	ctx := context.Background()

	var wg sync.WaitGroup
	stop := make(chan struct{})
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-stop:
					return
				default:
					rt.Now()
					rt.Offset()
					rt.WellSynced()
				}
			}
		}()
	}

	for i := 0; i < 20; i++ {
		require.NoError(t, rt.SyncOnce(ctx))
	}
	close(stop)
	wg.Wait()

	// stampTime rounds to the second, so the applied offset is within
	// half a second of the sample.
	assert.InDelta(t, float64(time.Second), float64(rt.Offset()), float64(600*time.Millisecond))
}

// TestListenerChurnDuringSync adds and removes listeners while cycles
// notify them.
func TestListenerChurnDuringSync(t *testing.T) {
	rt := NewTimestamper(&MockNTPClient{}, DefaultConfig())
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			l := &MockListener{id: fmt.Sprintf("listener-%d", n)}
			for j := 0; j < 20; j++ {
				rt.AddListener(l)
				rt.RemoveListener(l)
			}
		}(i)
	}
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 10; i++ {
			assert.NoError(t, rt.SyncOnce(ctx))
		}
	}()
	wg.Wait()

	rt.mutex.Lock()
	defer rt.mutex.Unlock()
	assert.Empty(t, rt.listeners)
}

// TestTimestampNowConcurrentWithStartStop triggers cycles while the loop
// starts and stops.
func TestTimestampNowConcurrentWithStartStop(t *testing.T) {
	rt := NewTimestamper(&MockNTPClient{}, DefaultConfig())

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				rt.TimestampNow()
				rt.Now()
			}
		}()
	}
	wg.Add(1)
	go func() {
		defer wg.Done()
		rt.Start()
	}()

	wg.Wait()
	require.NoError(t, rt.Close())
}

// TestTimestampNowDuringStop triggers cycles while Stop is waiting for the
// loop. Once Stop returns no cycle may be scheduled. Run with -race.
func TestTimestampNowDuringStop(t *testing.T) {
	rt := NewTimestamper(&MockNTPClient{}, DefaultConfig())
	rt.Start()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, rt.WaitForInitialization(ctx))

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				rt.TimestampNow()
			}
		}()
	}
	rt.Stop()
	wg.Wait()

	assert.False(t, rt.TimestampNow(), "stopped timestamper must not schedule cycles")
}
