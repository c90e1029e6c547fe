package mc_operator

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTimer_Fires(t *testing.T) {
	timer := NewTimer()
	var fired atomic.Int32

	timer.Schedule(5*time.Millisecond, func() { fired.Add(1) })
	assert.True(t, timer.Scheduled())

	assert.Eventually(t, func() bool { return fired.Load() == 1 }, time.Second, time.Millisecond)
	assert.Eventually(t, func() bool { return !timer.Scheduled() }, time.Second, time.Millisecond)
}

func TestTimer_StopCancels(t *testing.T) {
	timer := NewTimer()
	var fired atomic.Int32

	timer.Schedule(20*time.Millisecond, func() { fired.Add(1) })
	timer.Stop()

	assert.False(t, timer.Scheduled())
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, int32(0), fired.Load())
}

func TestTimer_RescheduleReplaces(t *testing.T) {
	timer := NewTimer()
	var first, second atomic.Int32

	timer.Schedule(20*time.Millisecond, func() { first.Add(1) })
	timer.Schedule(30*time.Millisecond, func() { second.Add(1) })

	assert.Eventually(t, func() bool { return second.Load() == 1 }, time.Second, time.Millisecond)
	assert.Equal(t, int32(0), first.Load())
}
