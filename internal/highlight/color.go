package highlight

import (
	"fmt"
	"strconv"
	"strings"
)

// Color is an opaque RGB highlight colour.
type Color struct {
	R, G, B uint8
}

// ParseColor parses a #rrggbb hex colour.
func ParseColor(s string) (Color, error) {
	s = strings.TrimPrefix(s, "#")
	if len(s) != 6 {
		return Color{}, fmt.Errorf("highlight: bad colour %q", s)
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return Color{}, fmt.Errorf("highlight: bad colour %q: %w", s, err)
	}
	return Color{
		R: uint8(v >> 16),
		G: uint8(v >> 8),
		B: uint8(v),
	}, nil
}

// RGBA renders the colour at the given opacity as a CSS rgba() value.
func (c Color) RGBA(alpha float64) string {
	if alpha < 0 {
		alpha = 0
	}
	if alpha > 1 {
		alpha = 1
	}
	return fmt.Sprintf("rgba(%d, %d, %d, %s)", c.R, c.G, c.B,
		strconv.FormatFloat(alpha, 'f', 3, 64))
}
