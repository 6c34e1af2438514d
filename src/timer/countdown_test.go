package timer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var epoch = time.UnixMilli(1_700_000_000_000)

func TestCountdown_CeilAndFloor(t *testing.T) {
	tests := []struct {
		name     string
		rounding Rounding
		left     time.Duration
		want     int
	}{
		{"ceil whole", Ceil, 10 * time.Second, 10},
		{"ceil partial", Ceil, 9*time.Second + time.Millisecond, 10},
		{"ceil last ms", Ceil, time.Millisecond, 1},
		{"floor whole", Floor, 40 * time.Second, 40},
		{"floor partial", Floor, 39*time.Second + 999*time.Millisecond, 39},
		{"floor last ms", Floor, 999 * time.Millisecond, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := New(tt.rounding)
			c.Set(epoch.Add(tt.left), epoch)
			assert.Equal(t, tt.want, c.Remaining())
		})
	}
}

func TestCountdown_NeverNegative(t *testing.T) {
	for _, r := range []Rounding{Ceil, Floor} {
		c := New(r)
		c.Set(epoch, epoch.Add(-5*time.Second))
		for _, late := range []time.Duration{0, time.Millisecond, time.Second, time.Hour} {
			assert.Equal(t, 0, c.Tick(epoch.Add(late)))
		}
		assert.Equal(t, Expired, c.State())
	}
}

func TestCountdown_StateMachine(t *testing.T) {
	c := New(Floor)
	assert.Equal(t, Idle, c.State())

	c.Set(epoch.Add(3*time.Second), epoch)
	assert.Equal(t, Running, c.State())
	assert.Equal(t, 3, c.Remaining())

	c.Tick(epoch.Add(time.Second))
	assert.Equal(t, Running, c.State())
	assert.Equal(t, 2, c.Remaining())

	c.Tick(epoch.Add(3 * time.Second))
	assert.Equal(t, Expired, c.State())

	// Expired stays put, even when the clock goes backwards.
	c.Tick(epoch)
	assert.Equal(t, 0, c.Remaining())

	// The same deadline does not revive it; a new one does.
	c.Set(epoch.Add(3*time.Second), epoch)
	assert.Equal(t, Expired, c.State())
	c.Set(epoch.Add(60*time.Second), epoch)
	assert.Equal(t, Running, c.State())
	assert.Equal(t, 60, c.Remaining())

	c.Clear()
	assert.Equal(t, Idle, c.State())
	assert.True(t, c.Deadline().IsZero())
}

func TestCountdown_ExpireForcesZero(t *testing.T) {
	c := New(Floor)
	c.Set(epoch.Add(time.Minute), epoch)
	c.Expire()
	assert.Equal(t, 0, c.Remaining())
	assert.Equal(t, 0, c.Tick(epoch))
	assert.Equal(t, Expired, c.State())
}

func TestCountdown_ZeroDeadlineClears(t *testing.T) {
	c := New(Ceil)
	c.Set(epoch.Add(time.Minute), epoch)
	c.Set(time.Time{}, epoch)
	assert.Equal(t, Idle, c.State())
	require.Equal(t, 0, c.Remaining())
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "idle", Idle.String())
	assert.Equal(t, "running", Running.String())
	assert.Equal(t, "expired", Expired.String())
}
