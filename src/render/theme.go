package render

import "github.com/color-craze/client/src/room"

var backgrounds = map[room.Theme]Background{
	room.ThemeMetal: {Theme: room.ThemeMetal, Top: "#2b2f36", Bottom: "#596070", Accent: "#c0c6d0"},
	room.ThemeCyber: {Theme: room.ThemeCyber, Top: "#0d0221", Bottom: "#261447", Accent: "#ff3864"},
	room.ThemeMoon:  {Theme: room.ThemeMoon, Top: "#0b1026", Bottom: "#2c3e63", Accent: "#f5f3ce"},
}

var defaultBackground = Background{Top: "#87ceeb", Bottom: "#e0f6ff", Accent: "#ffffff"}

// BackgroundFor returns the backdrop of theme, or the default sky for an
// unassigned or unrecognized theme.
func BackgroundFor(theme room.Theme) Background {
	if bg, ok := backgrounds[theme]; ok {
		return bg
	}
	bg := defaultBackground
	bg.Theme = theme
	return bg
}
