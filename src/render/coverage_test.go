package render

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/color-craze/client/src/room"
)

var paintable = []room.Color{
	room.ColorRed, room.ColorBlue, room.ColorGreen, room.ColorYellow,
	room.ColorPink, room.ColorPurple, room.ColorOrange, room.ColorWhite, room.ColorNone,
}

func TestCoverage_BoundsForRandomArenaPaint(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 11))
	for range 500 {
		v := arenaView()
		for i := range v.ArenaLayout.Platforms {
			segs := make([]room.Color, rng.IntN(12))
			for s := range segs {
				segs[s] = paintable[rng.IntN(len(paintable))]
			}
			v.ArenaPaint[i] = segs
		}
		cov := computeCoverage(v)

		total := 0
		for _, c := range cov {
			assert.GreaterOrEqual(t, c.Percent, 0)
			assert.LessOrEqual(t, c.Percent, 100)
			total += c.Percent
		}
		require.LessOrEqual(t, total, 100)
	}
}

func TestCoverage_BoundsForRandomGridPaint(t *testing.T) {
	rng := rand.New(rand.NewPCG(3, 5))
	for range 200 {
		v := room.NewReducer("ABC", zeroLogger()).View().Clone()
		for range rng.IntN(room.GridRows * room.GridCols) {
			cell := room.Cell{Row: rng.IntN(room.GridRows), Col: rng.IntN(room.GridCols)}
			v.PaintGrid[cell] = paintable[rng.IntN(len(paintable))]
		}
		total := 0
		for _, c := range computeCoverage(v) {
			assert.GreaterOrEqual(t, c.Percent, 0)
			total += c.Percent
		}
		require.LessOrEqual(t, total, 100)
	}
}

func TestCoverage_FullySplitSumsToHundred(t *testing.T) {
	v := arenaView()
	v.ArenaLayout.Platforms = []room.ArenaPlatform{{Width: 30, Cells: 3}}
	v.ArenaPaint[0] = []room.Color{room.ColorRed, room.ColorBlue, room.ColorGreen}

	cov := computeCoverage(v)
	require.Len(t, cov, 3)
	assert.Equal(t, 100, cov[0].Percent+cov[1].Percent+cov[2].Percent)
	assert.Equal(t, 34, cov[0].Percent)
	assert.Equal(t, room.ColorBlue, cov[0].Color)
}

func TestCoverage_EmptyWithoutPaint(t *testing.T) {
	v := arenaView()
	assert.Empty(t, computeCoverage(v))

	v.ArenaLayout.Platforms = nil
	v.ArenaPaint[0] = []room.Color{}
	assert.Empty(t, computeCoverage(v))

	grid := room.NewReducer("ABC", zeroLogger()).View()
	assert.Empty(t, computeCoverage(grid))
}

func TestCoverage_WhiteIsNotCoverage(t *testing.T) {
	v := arenaView()
	v.ArenaLayout.Platforms = []room.ArenaPlatform{{Width: 40, Cells: 4}}
	v.ArenaPaint[0] = []room.Color{room.ColorWhite, room.ColorRed, room.ColorNone, room.ColorWhite}

	cov := computeCoverage(v)
	require.Len(t, cov, 1)
	assert.Equal(t, Coverage{Color: room.ColorRed, Hex: room.ColorRed.Hex(), Cells: 1, Percent: 25, Source: SourcePaint}, cov[0])
}

func TestCoverage_ScoreFallbackAtEnd(t *testing.T) {
	v := arenaView()
	v.ArenaLayout.Platforms = []room.ArenaPlatform{{Width: 40, Cells: 4}}
	v.ArenaPaint[0] = []room.Color{room.ColorRed, room.ColorRed}
	v.Players["p1"] = room.Player{ID: "p1", Color: room.ColorRed, Score: 6}
	v.Players["p2"] = room.Player{ID: "p2", Color: room.ColorBlue, Score: 2}

	// While playing only paint counts.
	v.Status = room.StatusPlaying
	require.Len(t, computeCoverage(v), 1)

	v.Status = room.StatusEnded
	cov := computeCoverage(v)
	require.Len(t, cov, 2)
	assert.Equal(t, room.ColorRed, cov[0].Color)
	assert.Equal(t, 50, cov[0].Percent)
	assert.Equal(t, Coverage{Color: room.ColorBlue, Hex: room.ColorBlue.Hex(), Percent: 25, Source: SourceScore}, cov[1])
}

func TestCoverage_ScoreFallbackCappedByLeftover(t *testing.T) {
	v := arenaView()
	v.Status = room.StatusEnded
	v.ArenaLayout.Platforms = []room.ArenaPlatform{{Width: 100, Cells: 10}}
	v.ArenaPaint[0] = []room.Color{
		room.ColorRed, room.ColorRed, room.ColorRed, room.ColorRed, room.ColorRed,
		room.ColorRed, room.ColorRed, room.ColorRed, room.ColorRed,
	}
	v.Players["p1"] = room.Player{ID: "p1", Color: room.ColorRed, Score: 1}
	v.Players["p2"] = room.Player{ID: "p2", Color: room.ColorBlue, Score: 9}
	v.Players["p3"] = room.Player{ID: "p3", Color: room.ColorGreen, Score: 9}

	cov := computeCoverage(v)
	total := 0
	for _, c := range cov {
		total += c.Percent
	}
	assert.Equal(t, 100, total)
	assert.Equal(t, 90, cov[0].Percent)
}

func TestCoverage_ScoreOnlyAtEnd(t *testing.T) {
	v := room.NewReducer("ABC", zeroLogger()).View().Clone()
	v.Status = room.StatusEnded
	v.Players["p1"] = room.Player{ID: "p1", Color: room.ColorPink, Score: 1}
	v.Players["p2"] = room.Player{ID: "p2", Color: room.ColorOrange, Score: 3}

	cov := computeCoverage(v)
	require.Len(t, cov, 2)
	assert.Equal(t, 75, cov[0].Percent)
	assert.Equal(t, 25, cov[1].Percent)
}

func TestApportion_NeverExceedsScale(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	for range 1000 {
		weights := map[room.Color]int{}
		denom := 0
		for _, c := range paintable[:7] {
			w := rng.IntN(50)
			if w > 0 {
				weights[c] = w
				denom += w
			}
		}
		if denom == 0 {
			continue
		}
		denom += rng.IntN(20)
		scale := 1 + rng.IntN(100)
		sum := 0
		for _, p := range apportion(weights, denom, scale) {
			assert.GreaterOrEqual(t, p, 0)
			sum += p
		}
		require.LessOrEqual(t, sum, scale)
	}
}
