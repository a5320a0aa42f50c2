package timer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScheduleFiresWithOwnHandle(t *testing.T) {
	w := NewWallScheduler()
	defer w.Stop()

	fired := make(chan Handle, 1)
	h := w.Schedule(5*time.Millisecond, func(got Handle) {
		fired <- got
	})
	require.NotEqual(t, None, h)

	select {
	case got := <-fired:
		assert.Equal(t, h, got)
	case <-time.After(2 * time.Second):
		t.Fatal("timer never fired")
	}
}

func TestHandlesAreMonotonic(t *testing.T) {
	w := NewWallScheduler()
	defer w.Stop()

	h1 := w.Schedule(time.Hour, func(Handle) {})
	h2 := w.Schedule(time.Hour, func(Handle) {})
	assert.Greater(t, h2, h1)
}

func TestCancelStopsPendingTimer(t *testing.T) {
	w := NewWallScheduler()
	defer w.Stop()

	fired := make(chan Handle, 1)
	h := w.Schedule(20*time.Millisecond, func(got Handle) {
		fired <- got
	})

	assert.True(t, w.Cancel(h))
	assert.False(t, w.Cancel(h), "second cancel finds nothing")

	select {
	case <-fired:
		t.Fatal("cancelled timer fired")
	case <-time.After(100 * time.Millisecond):
	}
}

func TestStopRejectsFurtherScheduling(t *testing.T) {
	w := NewWallScheduler()

	w.Schedule(time.Hour, func(Handle) {})
	w.Stop()

	assert.Equal(t, None, w.Schedule(time.Millisecond, func(Handle) {
		t.Error("callback ran after Stop")
	}))
	time.Sleep(20 * time.Millisecond)
}
