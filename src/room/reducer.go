package room

import (
	"cmp"
	"maps"
	"slices"
	"time"

	"github.com/rs/zerolog"
)

// Reducer folds inbound messages into a View. It is not safe for concurrent
// use; the owning session serializes calls.
type Reducer struct {
	view     *View
	themes   *themeMemo
	ended    bool
	rejected int

	// theme sent while waiting, not yet bound to a match
	announced Theme

	// scores for players the roster has not introduced yet
	pending map[string]int
	logger  zerolog.Logger
}

// Option configures a Reducer.
type Option func(*Reducer)

// WithThemePicker overrides the random theme choice.
func WithThemePicker(p ThemePicker) Option {
	return func(r *Reducer) { r.themes = newThemeMemo(p) }
}

// NewReducer creates a Reducer for room code, starting in WAITING.
func NewReducer(code string, logger zerolog.Logger, opts ...Option) *Reducer {
	r := &Reducer{
		view:    newView(code),
		themes:  newThemeMemo(nil),
		pending: make(map[string]int),
		logger:  logger.With().Str("component", "reducer").Str("code", code).Logger(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// View returns the live view. Callers must not mutate it; use Clone to share it.
func (r *Reducer) View() *View { return r.view }

// Ended reports whether the match has been finalized.
func (r *Reducer) Ended() bool { return r.ended }

// Rejections counts moves the server refused with success:false.
func (r *Reducer) Rejections() int { return r.rejected }

// Restart discards the view for a fresh match in the same room. Theme
// assignments of earlier matches are kept.
func (r *Reducer) Restart() {
	r.view = newView(r.view.Code)
	r.ended = false
	clear(r.pending)
	r.announced = ""
	r.logger.Info().Msg("room view reset")
}

// Apply dispatches msg to its category handler and reports whether it was accepted.
func (r *Reducer) Apply(msg Message) bool {
	switch m := msg.(type) {
	case *StateMessage:
		return r.ApplyState(m)
	case *MoveMessage:
		return r.ApplyMove(m)
	case *ArenaMessage:
		return r.ApplyArena(m)
	case *EndMessage:
		return r.ApplyEnd(m)
	default:
		r.logger.Warn().Msgf("ignoring message of type %T", msg)
		return false
	}
}

// ApplyState merges a full or partial snapshot.
func (r *Reducer) ApplyState(m *StateMessage) bool {
	if m == nil {
		return false
	}
	if r.ended {
		if !r.freshMatch(m) {
			r.logger.Debug().Msg("state after end ignored")
			return false
		}
		r.Restart()
	}

	v := r.view
	if m.Status != nil {
		r.setStatus(*m.Status)
	}
	r.mergePlayers(m.Players)
	r.mergeCells(m.Platforms)
	for _, p := range m.Positions {
		if p.Cell.inBounds() {
			v.GridPositions[p.PlayerID] = p.Cell
		}
	}
	if m.JoinDeadlineMs != nil {
		v.JoinDeadline = time.UnixMilli(*m.JoinDeadlineMs)
	}
	if m.StartTimestamp != nil {
		v.StartTimestamp = time.UnixMilli(*m.StartTimestamp)
	}
	if m.DurationMs != nil && *m.DurationMs >= 0 {
		v.Duration = time.Duration(*m.DurationMs) * time.Millisecond
	}
	if m.Arena != nil {
		layout := *m.Arena
		layout.Platforms = slices.Clone(m.Arena.Platforms)
		v.ArenaLayout = &layout
	}
	r.assignTheme(m.Theme)

	if v.Status == StatusEnded && !r.ended {
		r.finish(nil)
	}
	r.logger.Debug().Str("status", string(v.Status)).Int("players", len(v.Players)).Msg("state applied")
	return true
}

// ApplyMove merges a legacy move delta. A rejected move (success:false) is
// an authoritative no-op.
func (r *Reducer) ApplyMove(m *MoveMessage) bool {
	if m == nil || r.ended {
		return false
	}
	if m.Success != nil && !*m.Success {
		r.rejected++
		r.logger.Debug().Str("player_id", m.PlayerID).Msg("move rejected")
		return false
	}

	v := r.view
	r.mergeCells(m.Platforms)
	r.mergePlayers(m.Players)
	if m.PlayerID != "" && m.NewRow != nil && m.NewCol != nil {
		if c := (Cell{Row: *m.NewRow, Col: *m.NewCol}); c.inBounds() {
			v.GridPositions[m.PlayerID] = c
		}
	}
	for _, a := range m.Affected {
		r.setScore(a.PlayerID, a.NewScore)
	}
	return true
}

// ApplyArena replaces the arena frame and merges any paint it carries.
func (r *Reducer) ApplyArena(m *ArenaMessage) bool {
	if m == nil || r.ended {
		return false
	}

	v := r.view
	frame := &ArenaFrame{
		Players: slices.Clone(m.Players),
		Paint:   clonePaint(m.Paint),
		Scores:  maps.Clone(m.Scores),
	}
	if frame.Players == nil {
		frame.Players = []ArenaPose{}
	}
	v.ArenaFrame = frame

	for idx, segs := range m.Paint {
		v.ArenaPaint[idx] = mergeSegments(v.ArenaPaint[idx], segs)
	}
	for id, score := range m.Scores {
		r.setScore(id, score)
	}
	return true
}

// ApplyEnd finalizes the match. Later messages are refused until a fresh match.
func (r *Reducer) ApplyEnd(m *EndMessage) bool {
	if m == nil || r.ended {
		return false
	}
	r.mergeCells(m.Platforms)
	r.mergePlayers(m.Players)
	r.finish(m.Standings)
	r.logger.Info().Int("standings", len(r.view.Standings)).Msg("match ended")
	return true
}

func (r *Reducer) finish(standings []Standing) {
	v := r.view
	for _, s := range standings {
		r.setScore(s.PlayerID, s.Score)
	}
	v.Standings = r.rank(standings)
	v.Status = StatusEnded
	r.ended = true
}

// freshMatch reports whether m announces a new match after the ended one: a
// WAITING snapshot whose join deadline lies beyond everything seen so far.
func (r *Reducer) freshMatch(m *StateMessage) bool {
	if m.Status == nil || *m.Status != StatusWaiting || m.JoinDeadlineMs == nil {
		return false
	}
	v := r.view
	prev := v.JoinDeadline
	if end := v.MatchEnd(); end.After(prev) {
		prev = end
	}
	return time.UnixMilli(*m.JoinDeadlineMs).After(prev)
}

func (r *Reducer) setStatus(s Status) {
	v := r.view
	if s.rank() < v.Status.rank() {
		r.logger.Debug().
			Str("from", string(v.Status)).
			Str("to", string(s)).
			Msg("ignoring status regression")
		return
	}
	v.Status = s
}

// assignTheme fixes the theme of the current match. A theme the server sent
// while the room was waiting is used when the first PLAYING snapshot carries none.
func (r *Reducer) assignTheme(server *Theme) {
	v := r.view
	if v.Status == StatusPlaying && !v.StartTimestamp.IsZero() {
		hint := r.announced
		if server != nil {
			hint = *server
		}
		r.announced = ""
		t := r.themes.resolve(matchKey{code: v.Code, startTimestamp: v.StartTimestamp.UnixMilli()}, hint)
		if t != v.Theme {
			r.logger.Info().Str("theme", string(t)).Msg("theme assigned")
		}
		v.Theme = t
		return
	}
	if v.Status == StatusWaiting && server != nil {
		v.Theme = *server
		r.announced = *server
	}
}

// mergePlayers adds unseen players and updates fields present in entries.
// Color and avatar of known players are frozen once the match has started.
func (r *Reducer) mergePlayers(entries []PlayerEntry) {
	v := r.view
	frozen := v.Status != StatusWaiting
	for _, e := range entries {
		p, known := v.Players[e.PlayerID]
		if !known {
			p = Player{ID: e.PlayerID}
			v.JoinOrder = append(v.JoinOrder, e.PlayerID)
			if score, ok := r.pending[e.PlayerID]; ok {
				p.Score = score
				delete(r.pending, e.PlayerID)
			}
		}
		if e.Nickname != nil {
			p.Nickname = *e.Nickname
		}
		if e.Color != nil && (!frozen || p.Color == ColorNone) {
			p.Color = *e.Color
		}
		if e.Avatar != nil && (!frozen || p.Avatar == "") {
			p.Avatar = *e.Avatar
		}
		if e.Score != nil {
			p.Score = *e.Score
		}
		v.Players[e.PlayerID] = p
	}
}

func (r *Reducer) mergeCells(cells []CellPaint) {
	for _, c := range cells {
		if !c.Cell.inBounds() {
			continue
		}
		r.view.PaintGrid[c.Cell] = c.Color
	}
}

// setScore assigns an absolute score so replayed deltas cannot double count.
// Scores of players not yet in the roster are held until the roster names
// them; only roster entries extend the join order.
func (r *Reducer) setScore(id string, score int) {
	if id == "" {
		return
	}
	v := r.view
	p, known := v.Players[id]
	if !known {
		r.pending[id] = score
		return
	}
	p.Score = score
	v.Players[id] = p
}

// rank orders standings by score, filling missing details from the roster.
// Without server standings the roster itself is ranked.
func (r *Reducer) rank(in []Standing) []Standing {
	v := r.view
	var out []Standing
	if in != nil {
		out = slices.Clone(in)
	} else {
		for _, p := range v.PlayerList() {
			out = append(out, Standing{PlayerID: p.ID, Score: p.Score})
		}
	}
	for i := range out {
		p, ok := v.Players[out[i].PlayerID]
		if !ok {
			continue
		}
		if out[i].Nickname == "" {
			out[i].Nickname = p.Nickname
		}
		if out[i].Avatar == "" {
			out[i].Avatar = p.Avatar
		}
		if out[i].Color == ColorNone {
			out[i].Color = p.Color
		}
	}
	slices.SortStableFunc(out, func(a, b Standing) int { return cmp.Compare(b.Score, a.Score) })
	for i := range out {
		if i > 0 && out[i].Score == out[i-1].Score {
			out[i].Rank = out[i-1].Rank
		} else {
			out[i].Rank = i + 1
		}
	}
	return out
}

// mergeSegments overwrites the segments named in update; ColorNone entries
// leave the previous color in place.
func mergeSegments(prev, update []Color) []Color {
	out := prev
	if len(out) < len(update) {
		out = make([]Color, len(update))
		copy(out, prev)
	}
	for i, c := range update {
		if c != ColorNone {
			out[i] = c
		}
	}
	return out
}
