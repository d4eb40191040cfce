package config

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

var namedColors = map[string]color.NRGBA{
	"none":        {},
	"transparent": {},
	"white":       {R: 255, G: 255, B: 255, A: 255},
	"black":       {A: 255},
	"red":         {R: 255, A: 255},
	"green":       {G: 128, A: 255},
	"blue":        {B: 255, A: 255},
	"gray":        {R: 128, G: 128, B: 128, A: 255},
	"grey":        {R: 128, G: 128, B: 128, A: 255},
}

// ParseColor parses a background color: a few common names, "none",
// or hex in #rgb, #rrggbb or #rrggbbaa form. The empty string is
// transparent.
func ParseColor(s string) (color.NRGBA, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return color.NRGBA{}, nil
	}
	if c, ok := namedColors[s]; ok {
		return c, nil
	}
	if !strings.HasPrefix(s, "#") {
		return color.NRGBA{}, fmt.Errorf("unknown color %q", s)
	}

	rgb, alpha := s, uint64(255)
	switch len(s) {
	case 4, 7:
	case 9:
		a, err := strconv.ParseUint(s[7:], 16, 8)
		if err != nil {
			return color.NRGBA{}, fmt.Errorf("invalid hex color %q", s)
		}
		rgb, alpha = s[:7], a
	default:
		return color.NRGBA{}, fmt.Errorf("invalid hex color %q", s)
	}
	c, err := colorful.Hex(rgb)
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("invalid hex color %q", s)
	}
	r, g, b := c.RGB255()
	return color.NRGBA{R: r, G: g, B: b, A: uint8(alpha)}, nil
}

// ValidColor reports whether ParseColor accepts s.
func ValidColor(s string) bool {
	_, err := ParseColor(s)
	return err == nil
}
