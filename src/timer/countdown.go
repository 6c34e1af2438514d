package timer

import "time"

// Rounding selects how a partial second is displayed.
type Rounding int

const (
	// Ceil shows 1 until the deadline has fully passed. Used for the join countdown.
	Ceil Rounding = iota
	// Floor shows 0 for the final partial second. Used for the match countdown.
	Floor
)

// State is the lifecycle of a countdown.
type State int

const (
	Idle State = iota
	Running
	Expired
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Running:
		return "running"
	case Expired:
		return "expired"
	default:
		return "unknown"
	}
}

// Countdown derives whole remaining seconds from an absolute deadline. Every
// tick recomputes from the deadline, so missed ticks never accumulate drift.
type Countdown struct {
	rounding  Rounding
	deadline  time.Time
	state     State
	remaining int
}

// New returns an idle countdown.
func New(rounding Rounding) *Countdown {
	return &Countdown{rounding: rounding}
}

// Set arms the countdown for deadline and recomputes at now. Setting the
// deadline it already holds does not revive an expired countdown.
func (c *Countdown) Set(deadline, now time.Time) {
	if deadline.IsZero() {
		c.Clear()
		return
	}
	if c.state == Expired && deadline.Equal(c.deadline) {
		return
	}
	c.deadline = deadline
	c.state = Running
	c.Tick(now)
}

// Clear returns the countdown to idle.
func (c *Countdown) Clear() {
	c.deadline = time.Time{}
	c.state = Idle
	c.remaining = 0
}

// Expire forces the countdown to zero regardless of the wall clock.
func (c *Countdown) Expire() {
	c.state = Expired
	c.remaining = 0
}

// Tick recomputes the remaining seconds. Only a running countdown changes.
func (c *Countdown) Tick(now time.Time) int {
	if c.state != Running {
		return c.remaining
	}
	c.remaining = c.seconds(c.deadline.Sub(now))
	if c.remaining <= 0 {
		c.remaining = 0
		c.state = Expired
	}
	return c.remaining
}

func (c *Countdown) seconds(left time.Duration) int {
	ms := left.Milliseconds()
	if ms <= 0 {
		return 0
	}
	if c.rounding == Ceil {
		return int((ms + 999) / 1000)
	}
	return int(ms / 1000)
}

// Remaining is the value computed by the last Set or Tick. Never negative.
func (c *Countdown) Remaining() int { return c.remaining }

func (c *Countdown) State() State { return c.state }

func (c *Countdown) Deadline() time.Time { return c.deadline }
