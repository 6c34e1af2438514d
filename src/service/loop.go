package service

import (
	"time"

	"github.com/color-craze/client/src/render"
	"github.com/color-craze/client/src/room"
	"github.com/color-craze/client/src/timer"
)

// Snapshot is a copy of the session state, safe to share across goroutines.
type Snapshot struct {
	Code          string        `json:"code"`
	Connection    string        `json:"connection"`
	Reconnecting  bool          `json:"reconnecting"`
	View          *room.View    `json:"view"`
	Clocks        timer.Readout `json:"clocks"`
	Frame         render.Frame  `json:"frame"`
	RejectedMoves int           `json:"rejectedMoves"`
	UpdatedAt     time.Time     `json:"updatedAt"`
}

// Snapshot returns the latest state with the live connection status.
func (s *Session) Snapshot() Snapshot {
	s.snapMu.RLock()
	snap := s.snap
	s.snapMu.RUnlock()
	snap.Connection = s.client.State().String()
	snap.Reconnecting = s.Reconnecting()
	return snap
}

func (s *Session) loop() {
	defer close(s.loopDone)
	ticker := time.NewTicker(s.cfg.TickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stop:
			return
		case msg := <-s.inbox:
			s.apply(msg)
		case <-ticker.C:
			s.tick()
		}
	}
}

func (s *Session) apply(msg room.Message) {
	rejected, ended := s.reducer.Rejections(), s.reducer.Ended()
	if !s.reducer.Apply(msg) {
		if s.reducer.Rejections() != rejected {
			s.publish()
		}
		return
	}
	if ended && !s.reducer.Ended() {
		// new match in the same room
		s.builder.Reset()
	}
	s.clocks.Sync(s.reducer.View(), s.cfg.Now())
	s.publish()
}

func (s *Session) tick() {
	if !s.clocks.Running() {
		return
	}
	before := s.clocks.Readout()
	s.clocks.Tick(s.cfg.Now())
	if s.clocks.Readout() != before {
		s.publish()
	}
}

// publish rebuilds the shared snapshot. It must run on the session goroutine
// (or before it starts).
func (s *Session) publish() {
	view := s.reducer.View().Clone()
	snap := Snapshot{
		Code:          s.code,
		View:          view,
		Clocks:        s.clocks.Readout(),
		Frame:         s.builder.Build(view),
		RejectedMoves: s.reducer.Rejections(),
		UpdatedAt:     s.cfg.Now(),
	}
	s.snapMu.Lock()
	s.snap = snap
	s.snapMu.Unlock()

	if cb := s.cfg.OnUpdate; cb != nil && s.alive.Load() {
		cb(s.Snapshot())
	}
}
