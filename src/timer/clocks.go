package timer

import (
	"time"

	"github.com/color-craze/client/src/room"
)

// Clocks holds the join and match countdowns of one room view.
type Clocks struct {
	Join  *Countdown
	Match *Countdown
}

// Readout is a point-in-time copy of both countdowns.
type Readout struct {
	Join       int    `json:"join"`
	JoinState  string `json:"joinState"`
	Match      int    `json:"match"`
	MatchState string `json:"matchState"`
}

func NewClocks() *Clocks {
	return &Clocks{Join: New(Ceil), Match: New(Floor)}
}

// Sync aligns both countdowns with the deadlines and status of v. The join
// countdown only runs while WAITING; ENDED forces the match countdown to zero.
func (c *Clocks) Sync(v *room.View, now time.Time) {
	switch v.Status {
	case room.StatusWaiting:
		c.Join.Set(v.JoinDeadline, now)
		c.Match.Clear()
	case room.StatusPlaying:
		c.Join.Clear()
		c.Match.Set(v.MatchEnd(), now)
	case room.StatusEnded:
		c.Join.Clear()
		c.Match.Expire()
	}
}

// Tick recomputes both countdowns from the wall clock.
func (c *Clocks) Tick(now time.Time) {
	c.Join.Tick(now)
	c.Match.Tick(now)
}

// Running reports whether either countdown still needs ticks.
func (c *Clocks) Running() bool {
	return c.Join.State() == Running || c.Match.State() == Running
}

// Stop cancels both countdowns.
func (c *Clocks) Stop() {
	c.Join.Clear()
	c.Match.Clear()
}

func (c *Clocks) Readout() Readout {
	return Readout{
		Join:       c.Join.Remaining(),
		JoinState:  c.Join.State().String(),
		Match:      c.Match.Remaining(),
		MatchState: c.Match.State().String(),
	}
}
