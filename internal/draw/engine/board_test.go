package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBoard_Lifecycle(t *testing.T) {
	b := newBoard("405")
	require.Len(t, b.slots, 3)
	for i, s := range b.slots {
		assert.Equal(t, i, s.Index)
		assert.False(t, s.Stopped)
		assert.Zero(t, s.Digit)
	}
	assert.False(t, b.allStopped())

	assert.True(t, b.spin(1, 9))
	assert.Equal(t, 9, b.slots[1].Digit)

	b.stop(2)
	assert.True(t, b.stopped(2))
	assert.Equal(t, 5, b.slots[2].Digit)
	assert.False(t, b.spin(2, 3), "a stopped slot must not shuffle")
	assert.Equal(t, 5, b.slots[2].Digit)
	assert.False(t, b.allStopped())

	b.stop(1)
	b.stop(0)
	assert.True(t, b.allStopped())
	assert.Equal(t, "405", b.displayed())
}

func TestBoard_SnapshotIsACopy(t *testing.T) {
	b := newBoard("12")
	snap := b.snapshot()
	b.spin(0, 7)
	assert.Zero(t, snap[0].Digit)
}

func TestSettings_StopSchedule(t *testing.T) {
	cfg := Settings{
		DigitCount:     3,
		GeneratingTime: time.Second,
		DigitStopDelay: 300 * time.Millisecond,
		SettleDelay:    200 * time.Millisecond,
	}
	assert.Equal(t, 1000*time.Millisecond, cfg.stopTime(2))
	assert.Equal(t, 1300*time.Millisecond, cfg.stopTime(1))
	assert.Equal(t, 1600*time.Millisecond, cfg.stopTime(0))
	assert.Equal(t, 1800*time.Millisecond, cfg.settleTime())
}
