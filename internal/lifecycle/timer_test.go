package lifecycle

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCountdownFires(t *testing.T) {
	var fired atomic.Int32
	c := NewCountdown(20*time.Millisecond, func() { fired.Add(1) })
	defer c.Cancel()

	require.Eventually(t, func() bool {
		return fired.Load() == 1
	}, time.Second, 5*time.Millisecond)
}

func TestCountdownPauseReturnsRemaining(t *testing.T) {
	var fired atomic.Int32
	c := NewCountdown(time.Second, func() { fired.Add(1) })
	defer c.Cancel()

	remaining := c.Pause()
	assert.True(t, c.Paused())
	assert.Greater(t, remaining, time.Duration(0))
	assert.LessOrEqual(t, remaining, time.Second)

	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, int32(0), fired.Load())
}

func TestCountdownPausedPastDeadlineNeverFires(t *testing.T) {
	var fired atomic.Int32
	c := NewCountdown(30*time.Millisecond, func() { fired.Add(1) })
	c.Pause()

	// Sleep well past the original deadline
	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, int32(0), fired.Load())
	c.Cancel()
}

func TestCountdownResumeWaitsFullRemaining(t *testing.T) {
	fired := make(chan time.Time, 1)
	c := NewCountdown(time.Hour, func() { fired <- time.Now() })
	defer c.Cancel()

	c.Pause()

	start := time.Now()
	c.Resume(100 * time.Millisecond)
	require.False(t, c.Paused())

	select {
	case at := <-fired:
		assert.GreaterOrEqual(t, at.Sub(start), 100*time.Millisecond)
	case <-time.After(2 * time.Second):
		t.Fatal("countdown never fired after resume")
	}
}

func TestCountdownResumeDefaultsToStoredRemaining(t *testing.T) {
	var fired atomic.Int32
	c := NewCountdown(30*time.Millisecond, func() { fired.Add(1) })
	defer c.Cancel()

	c.Pause()
	c.Resume(0)

	require.Eventually(t, func() bool {
		return fired.Load() == 1
	}, time.Second, 5*time.Millisecond)
}

func TestCountdownCancelSuppressesFire(t *testing.T) {
	var fired atomic.Int32
	c := NewCountdown(20*time.Millisecond, func() { fired.Add(1) })
	c.Cancel()

	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, int32(0), fired.Load())
}

func TestCountdownResumeAfterCancelDoesNothing(t *testing.T) {
	var fired atomic.Int32
	c := NewCountdown(time.Hour, func() { fired.Add(1) })
	c.Cancel()
	c.Resume(10 * time.Millisecond)

	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, int32(0), fired.Load())
}
