package render

import (
	"cmp"
	"maps"
	"slices"

	"github.com/color-craze/client/src/room"
)

// Builder turns room views into frames. It remembers the paint of the last
// build so it can emit particles for what changed; use one Builder per view.
type Builder struct {
	prevArena map[int][]room.Color
	prevGrid  map[room.Cell]room.Color
	primed    bool
}

func NewBuilder() *Builder {
	return &Builder{}
}

// Reset forgets the previous paint; the next build emits no particles.
func (b *Builder) Reset() {
	b.prevArena = nil
	b.prevGrid = nil
	b.primed = false
}

// Build produces the frame for v. v is only read.
func (b *Builder) Build(v *room.View) Frame {
	f := Frame{
		Code:       v.Code,
		Status:     v.Status,
		Background: BackgroundFor(v.Theme),
	}
	if v.ArenaMode() {
		f.Mode = ModeArena
		b.arena(&f, v)
	} else {
		f.Mode = ModeGrid
		f.Width, f.Height = room.GridCols, room.GridRows
		b.grid(&f, v)
	}
	f.Players = markers(v, f.Mode)
	f.Coverage = computeCoverage(v)
	b.primed = true
	return f
}

func (b *Builder) arena(f *Frame, v *room.View) {
	var layout []room.ArenaPlatform
	if v.ArenaLayout != nil {
		f.Width, f.Height = v.ArenaLayout.Width, v.ArenaLayout.Height
		layout = v.ArenaLayout.Platforms
	}

	for i, p := range layout {
		paint := v.ArenaPaint[i]
		plat := Platform{Index: i, X: p.X, Y: p.Y, Width: p.Width, Height: p.Height}
		n := max(p.Cells, len(paint))
		if n > 0 {
			w := p.Width / float64(n)
			plat.Segments = make([]Segment, n)
			for s := range n {
				seg := Segment{X: p.X + float64(s)*w, Width: w}
				if s < len(paint) {
					seg.Color = paint[s]
					seg.Hex = paint[s].Hex()
				}
				plat.Segments[s] = seg
			}
		}
		f.Platforms = append(f.Platforms, plat)
	}

	if b.primed {
		for _, idx := range slices.Sorted(maps.Keys(v.ArenaPaint)) {
			if idx >= len(f.Platforms) {
				continue
			}
			plat := f.Platforms[idx]
			prev := b.prevArena[idx]
			for s, c := range v.ArenaPaint[idx] {
				if !c.Painted() || (s < len(prev) && prev[s] == c) {
					continue
				}
				seg := plat.Segments[s]
				f.Particles = append(f.Particles, Particle{
					X:     seg.X + seg.Width/2,
					Y:     plat.Y,
					Color: c,
					Hex:   c.Hex(),
				})
			}
		}
	}

	b.prevArena = make(map[int][]room.Color, len(v.ArenaPaint))
	for idx, segs := range v.ArenaPaint {
		b.prevArena[idx] = slices.Clone(segs)
	}
}

func (b *Builder) grid(f *Frame, v *room.View) {
	for cell, c := range v.PaintGrid {
		if !c.Painted() {
			continue
		}
		f.Cells = append(f.Cells, Cell{Row: cell.Row, Col: cell.Col, Color: c, Hex: c.Hex()})
		if b.primed && b.prevGrid[cell] != c {
			f.Particles = append(f.Particles, Particle{
				X:     float64(cell.Col) + 0.5,
				Y:     float64(cell.Row) + 0.5,
				Color: c,
				Hex:   c.Hex(),
			})
		}
	}
	slices.SortFunc(f.Cells, func(a, b Cell) int {
		return cmp.Or(cmp.Compare(a.Row, b.Row), cmp.Compare(a.Col, b.Col))
	})
	slices.SortFunc(f.Particles, func(a, b Particle) int {
		return cmp.Or(cmp.Compare(a.Y, b.Y), cmp.Compare(a.X, b.X))
	})
	b.prevGrid = maps.Clone(v.PaintGrid)
}

func markers(v *room.View, mode Mode) []Marker {
	host := v.Host()
	out := []Marker{}
	mark := func(id string, x, y float64, onGround bool) {
		p := v.Players[id]
		out = append(out, Marker{
			PlayerID: id,
			Nickname: p.Nickname,
			Avatar:   p.Avatar,
			Color:    p.Color,
			Hex:      p.Color.Hex(),
			X:        x,
			Y:        y,
			OnGround: onGround,
			Score:    p.Score,
			Host:     id == host,
		})
	}

	if mode == ModeArena {
		if v.ArenaFrame == nil {
			return out
		}
		for _, pose := range v.ArenaFrame.Players {
			mark(pose.PlayerID, pose.X, pose.Y, pose.OnGround)
		}
		return out
	}
	for _, id := range v.JoinOrder {
		cell, ok := v.GridPositions[id]
		if !ok {
			continue
		}
		mark(id, float64(cell.Col)+0.5, float64(cell.Row)+0.5, false)
	}
	return out
}
