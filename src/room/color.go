package room

import "strings"

// Color is a paint color as normalized at ingestion.
type Color string

const (
	ColorNone    Color = ""
	ColorWhite   Color = "WHITE"
	ColorRed     Color = "RED"
	ColorBlue    Color = "BLUE"
	ColorGreen   Color = "GREEN"
	ColorYellow  Color = "YELLOW"
	ColorPink    Color = "PINK"
	ColorPurple  Color = "PURPLE"
	ColorOrange  Color = "ORANGE"
	ColorUnknown Color = "UNKNOWN"
)

var palette = map[Color]string{
	ColorWhite:   "#ffffff",
	ColorRed:     "#e53935",
	ColorBlue:    "#1e88e5",
	ColorGreen:   "#43a047",
	ColorYellow:  "#fdd835",
	ColorPink:    "#ec407a",
	ColorPurple:  "#8e24aa",
	ColorOrange:  "#fb8c00",
	ColorUnknown: "#9e9e9e",
}

// ParseColor normalizes a wire color. Empty input yields ColorNone; values
// outside the known set yield ColorUnknown and ok=false.
func ParseColor(raw string) (c Color, ok bool) {
	v := strings.ToUpper(strings.TrimSpace(raw))
	if v == "" {
		return ColorNone, true
	}
	c = Color(v)
	if c == ColorUnknown {
		return ColorUnknown, false
	}
	if _, known := palette[c]; known {
		return c, true
	}
	return ColorUnknown, false
}

// Hex returns the display color, or "" for ColorNone.
func (c Color) Hex() string { return palette[c] }

// Painted reports whether c marks a cell as owned by a player.
func (c Color) Painted() bool {
	return c != ColorNone && c != ColorWhite
}
