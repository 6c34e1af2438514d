package render

import "github.com/color-craze/client/src/room"

// Mode tells the painter which geometry the frame uses.
type Mode string

const (
	ModeGrid  Mode = "grid"
	ModeArena Mode = "arena"
)

// Background is the theme-dependent backdrop.
type Background struct {
	Theme  room.Theme `json:"theme"`
	Top    string     `json:"top"`
	Bottom string     `json:"bottom"`
	Accent string     `json:"accent"`
}

// Segment is one paintable slice of an arena platform.
type Segment struct {
	X     float64    `json:"x"`
	Width float64    `json:"width"`
	Color room.Color `json:"color,omitempty"`
	Hex   string     `json:"hex,omitempty"`
}

// Platform is an arena platform rectangle with its painted segments.
type Platform struct {
	Index    int       `json:"index"`
	X        float64   `json:"x"`
	Y        float64   `json:"y"`
	Width    float64   `json:"width"`
	Height   float64   `json:"height"`
	Segments []Segment `json:"segments"`
}

// Cell is a painted legacy grid cell.
type Cell struct {
	Row   int        `json:"row"`
	Col   int        `json:"col"`
	Color room.Color `json:"color"`
	Hex   string     `json:"hex"`
}

// Marker places a player sprite. Grid positions use cell units, centred.
type Marker struct {
	PlayerID string     `json:"playerId"`
	Nickname string     `json:"nickname"`
	Avatar   string     `json:"avatar,omitempty"`
	Color    room.Color `json:"color,omitempty"`
	Hex      string     `json:"hex,omitempty"`
	X        float64    `json:"x"`
	Y        float64    `json:"y"`
	OnGround bool       `json:"onGround,omitempty"`
	Score    int        `json:"score"`
	Host     bool       `json:"host,omitempty"`
}

// CoverageSource tells whether a percentage came from paint or from scores.
type CoverageSource string

const (
	SourcePaint CoverageSource = "paint"
	SourceScore CoverageSource = "score"
)

// Coverage is the share of the paintable surface owned by one color.
type Coverage struct {
	Color   room.Color     `json:"color"`
	Hex     string         `json:"hex"`
	Cells   int            `json:"cells"`
	Percent int            `json:"percent"`
	Source  CoverageSource `json:"source"`
}

// Particle marks a segment or cell that changed color since the previous frame.
type Particle struct {
	X     float64    `json:"x"`
	Y     float64    `json:"y"`
	Color room.Color `json:"color"`
	Hex   string     `json:"hex"`
}

// Frame is everything a painter needs for one paint tick.
type Frame struct {
	Code       string      `json:"code"`
	Status     room.Status `json:"status"`
	Mode       Mode        `json:"mode"`
	Width      float64     `json:"width"`
	Height     float64     `json:"height"`
	Background Background  `json:"background"`
	Platforms  []Platform  `json:"platforms,omitempty"`
	Cells      []Cell      `json:"cells,omitempty"`
	Players    []Marker    `json:"players"`
	Coverage   []Coverage  `json:"coverage"`
	Particles  []Particle  `json:"particles,omitempty"`
}

// TotalCoverage sums the coverage percentages.
func (f Frame) TotalCoverage() int {
	total := 0
	for _, c := range f.Coverage {
		total += c.Percent
	}
	return total
}
