package room

import "math/rand/v2"

// Theme is a cosmetic preset fixed for the lifetime of a match.
type Theme string

const (
	ThemeMetal Theme = "metal"
	ThemeCyber Theme = "cyber"
	ThemeMoon  Theme = "moon"
)

// Themes is the enumerated theme set.
var Themes = []Theme{ThemeMetal, ThemeCyber, ThemeMoon}

// ThemePicker chooses a theme when the server did not send one.
type ThemePicker func(options []Theme) Theme

// RandomTheme picks uniformly from options.
func RandomTheme(options []Theme) Theme {
	return options[rand.IntN(len(options))]
}

// matchKey identifies one match instance across reconnects and snapshot replays.
type matchKey struct {
	code           string
	startTimestamp int64
}

// themeMemo remembers the theme assigned to each match so duplicate PLAYING
// transitions never re-roll.
type themeMemo struct {
	assigned map[matchKey]Theme
	pick     ThemePicker
}

func newThemeMemo(pick ThemePicker) *themeMemo {
	if pick == nil {
		pick = RandomTheme
	}
	return &themeMemo{assigned: make(map[matchKey]Theme), pick: pick}
}

// resolve returns the theme for key, recording server (if set) or a fresh pick
// the first time the key is seen.
func (m *themeMemo) resolve(key matchKey, server Theme) Theme {
	if t, ok := m.assigned[key]; ok {
		return t
	}
	t := server
	if t == "" {
		t = m.pick(Themes)
	}
	m.assigned[key] = t
	return t
}
