package render

import (
	"cmp"
	"slices"

	"github.com/color-craze/client/src/room"
)

// paintCounts tallies painted cells per color and the paintable total. Arena
// platforms count the larger of their declared cells and received segments.
func paintCounts(v *room.View) (map[room.Color]int, int) {
	counts := make(map[room.Color]int)
	total := 0
	if v.ArenaMode() {
		declared := make(map[int]int)
		if v.ArenaLayout != nil {
			for i, p := range v.ArenaLayout.Platforms {
				declared[i] = p.Cells
			}
		}
		for idx, segs := range v.ArenaPaint {
			declared[idx] = max(declared[idx], len(segs))
			for _, c := range segs {
				if c.Painted() {
					counts[c]++
				}
			}
		}
		for _, n := range declared {
			total += n
		}
		return counts, total
	}
	for _, c := range v.PaintGrid {
		if c.Painted() {
			counts[c]++
		}
	}
	return counts, room.GridRows * room.GridCols
}

// computeCoverage reports per-color shares of the surface, rounded so the sum
// never exceeds 100. Once the match has ended, players whose color holds no
// paint get a share of the leftover derived from their score.
func computeCoverage(v *room.View) []Coverage {
	counts, total := paintCounts(v)
	out := []Coverage{}
	used := 0
	if total > 0 && len(counts) > 0 {
		for c, pct := range apportion(counts, total, 100) {
			out = append(out, Coverage{Color: c, Hex: c.Hex(), Cells: counts[c], Percent: pct, Source: SourcePaint})
			used += pct
		}
	}
	if v.Status == room.StatusEnded {
		out = append(out, scoreFallback(v, counts, 100-used)...)
	}
	slices.SortFunc(out, func(a, b Coverage) int {
		if n := cmp.Compare(b.Percent, a.Percent); n != 0 {
			return n
		}
		return cmp.Compare(a.Color, b.Color)
	})
	return out
}

func scoreFallback(v *room.View, painted map[room.Color]int, budget int) []Coverage {
	if budget <= 0 {
		return nil
	}
	allScores := 0
	missing := make(map[room.Color]int)
	for _, p := range v.Players {
		if p.Score <= 0 {
			continue
		}
		allScores += p.Score
		if p.Color.Painted() && painted[p.Color] == 0 {
			missing[p.Color] += p.Score
		}
	}
	if len(missing) == 0 || allScores == 0 {
		return nil
	}

	sum := 0
	for _, s := range missing {
		sum += s
	}
	var shares map[room.Color]int
	if sum*100 <= budget*allScores {
		shares = apportion(missing, allScores, 100)
	} else {
		shares = apportion(missing, sum, budget)
	}

	out := make([]Coverage, 0, len(shares))
	for c, pct := range shares {
		out = append(out, Coverage{Color: c, Hex: c.Hex(), Percent: pct, Source: SourceScore})
	}
	return out
}

// apportion splits scale among weights in proportion to weight/denom using the
// largest remainder method. The result sums to round(sum(weights)*scale/denom),
// capped at scale.
func apportion(weights map[room.Color]int, denom, scale int) map[room.Color]int {
	type share struct {
		color room.Color
		floor int
		rem   int
	}
	shares := make([]share, 0, len(weights))
	sumW, sumFloor := 0, 0
	for c, w := range weights {
		n := w * scale
		shares = append(shares, share{color: c, floor: n / denom, rem: n % denom})
		sumW += w
		sumFloor += n / denom
	}
	target := min((sumW*scale+denom/2)/denom, scale)

	slices.SortFunc(shares, func(a, b share) int {
		if n := cmp.Compare(b.rem, a.rem); n != 0 {
			return n
		}
		return cmp.Compare(a.color, b.color)
	})
	out := make(map[room.Color]int, len(shares))
	for i, s := range shares {
		pct := s.floor
		if i < target-sumFloor {
			pct++
		}
		out[s.color] = pct
	}
	return out
}
