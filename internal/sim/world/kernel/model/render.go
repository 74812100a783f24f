package model

import (
	"fmt"
	"strconv"
	"strings"
)

// Color is a 24-bit RGB color, encoded as "#rrggbb" in catalogs.
type Color struct {
	R uint8
	G uint8
	B uint8
}

func (c Color) String() string { return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B) }

func ParseColor(s string) (Color, error) {
	h := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(h) != 6 {
		return Color{}, fmt.Errorf("color %q: want #rrggbb", s)
	}
	v, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return Color{}, fmt.Errorf("color %q: %w", s, err)
	}
	return Color{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v)}, nil
}

func (c Color) MarshalText() ([]byte, error) { return []byte(c.String()), nil }

func (c *Color) UnmarshalText(b []byte) error {
	v, err := ParseColor(string(b))
	if err != nil {
		return err
	}
	*c = v
	return nil
}

// Hint is what the renderer draws for one occupied cell. It is computed
// whenever the cell's direction or token changes.
type Hint struct {
	Glyph rune  `json:"glyph"`
	FG    Color `json:"fg"`
	BG    Color `json:"bg"`
}
