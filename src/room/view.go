package room

import (
	"maps"
	"slices"
	"time"
)

// Legacy grid dimensions.
const (
	GridRows = 15
	GridCols = 31
)

// Cell addresses the legacy grid.
type Cell struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

func (c Cell) inBounds() bool {
	return c.Row >= 0 && c.Row < GridRows && c.Col >= 0 && c.Col < GridCols
}

// Player is the client's view of one participant.
type Player struct {
	ID       string `json:"playerId"`
	Nickname string `json:"nickname"`
	Color    Color  `json:"color"`
	Avatar   string `json:"avatar,omitempty"`
	Score    int    `json:"score"`
}

// ArenaPlatform is a paintable platform of the arena layout.
type ArenaPlatform struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Cells  int     `json:"cells"`
}

// ArenaLayout is the static arena geometry sent when a match starts.
type ArenaLayout struct {
	Width     float64         `json:"width"`
	Height    float64         `json:"height"`
	Platforms []ArenaPlatform `json:"platforms"`
}

// ArenaPose is a player position in one physics tick.
type ArenaPose struct {
	PlayerID string  `json:"playerId"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	OnGround bool    `json:"onGround"`
}

// ArenaFrame is the latest physics tick. It is replaced, never merged.
type ArenaFrame struct {
	Players []ArenaPose     `json:"players"`
	Paint   map[int][]Color `json:"paint,omitempty"`
	Scores  map[string]int  `json:"scores,omitempty"`
}

// Standing is one row of the final ranking.
type Standing struct {
	Rank     int    `json:"rank"`
	PlayerID string `json:"playerId"`
	Nickname string `json:"nickname"`
	Avatar   string `json:"avatar,omitempty"`
	Color    Color  `json:"color,omitempty"`
	Score    int    `json:"score"`
}

// View is the room state as known to this client.
type View struct {
	Code   string `json:"code"`
	Status Status `json:"status"`

	Players   map[string]Player `json:"players"`
	JoinOrder []string          `json:"joinOrder"`

	PaintGrid     map[Cell]Color  `json:"-"`
	GridPositions map[string]Cell `json:"gridPositions,omitempty"`

	ArenaLayout *ArenaLayout    `json:"arenaLayout,omitempty"`
	ArenaPaint  map[int][]Color `json:"arenaPaint,omitempty"`
	ArenaFrame  *ArenaFrame     `json:"arenaFrame,omitempty"`

	JoinDeadline   time.Time     `json:"joinDeadline"`
	StartTimestamp time.Time     `json:"startTimestamp"`
	Duration       time.Duration `json:"duration"`

	Theme     Theme      `json:"theme,omitempty"`
	Standings []Standing `json:"standings,omitempty"`
}

func newView(code string) *View {
	return &View{
		Code:          code,
		Status:        StatusWaiting,
		Players:       make(map[string]Player),
		PaintGrid:     make(map[Cell]Color),
		GridPositions: make(map[string]Cell),
		ArenaPaint:    make(map[int][]Color),
	}
}

// Host is the first player to have joined, or "" for an empty room.
func (v *View) Host() string {
	if len(v.JoinOrder) == 0 {
		return ""
	}
	return v.JoinOrder[0]
}

// MatchEnd is the absolute end of the current match, zero if not started.
func (v *View) MatchEnd() time.Time {
	if v.StartTimestamp.IsZero() {
		return time.Time{}
	}
	return v.StartTimestamp.Add(v.Duration)
}

// ArenaMode reports whether the room plays the 2D arena variant.
func (v *View) ArenaMode() bool {
	return v.ArenaLayout != nil || v.ArenaFrame != nil || len(v.ArenaPaint) > 0
}

// PlayerList returns players in join order.
func (v *View) PlayerList() []Player {
	out := make([]Player, 0, len(v.JoinOrder))
	for _, id := range v.JoinOrder {
		if p, ok := v.Players[id]; ok {
			out = append(out, p)
		}
	}
	return out
}

// Clone returns a deep copy safe to hand to other goroutines.
func (v *View) Clone() *View {
	c := *v
	c.Players = maps.Clone(v.Players)
	c.JoinOrder = slices.Clone(v.JoinOrder)
	c.PaintGrid = maps.Clone(v.PaintGrid)
	c.GridPositions = maps.Clone(v.GridPositions)
	c.ArenaPaint = clonePaint(v.ArenaPaint)
	c.Standings = slices.Clone(v.Standings)
	if v.ArenaLayout != nil {
		l := *v.ArenaLayout
		l.Platforms = slices.Clone(v.ArenaLayout.Platforms)
		c.ArenaLayout = &l
	}
	if v.ArenaFrame != nil {
		f := ArenaFrame{
			Players: slices.Clone(v.ArenaFrame.Players),
			Paint:   clonePaint(v.ArenaFrame.Paint),
			Scores:  maps.Clone(v.ArenaFrame.Scores),
		}
		c.ArenaFrame = &f
	}
	return &c
}

func clonePaint(p map[int][]Color) map[int][]Color {
	if p == nil {
		return nil
	}
	out := make(map[int][]Color, len(p))
	for k, v := range p {
		out[k] = slices.Clone(v)
	}
	return out
}
