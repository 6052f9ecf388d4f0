package render

import (
	"image/color"
	"strconv"
	"strings"
)

var fallbackColor = color.NRGBA{R: 0x9C, G: 0xA3, B: 0xAF, A: 0xFF}

// parseHex разбирает #RGB, #RRGGBB и #RRGGBBAA.
func parseHex(s string) (color.NRGBA, bool) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(s) == 3 {
		s = string([]byte{s[0], s[0], s[1], s[1], s[2], s[2]})
	}
	if len(s) == 6 {
		s += "ff"
	}
	if len(s) != 8 {
		return color.NRGBA{}, false
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return color.NRGBA{}, false
	}
	return color.NRGBA{R: uint8(v >> 24), G: uint8(v >> 16), B: uint8(v >> 8), A: uint8(v)}, true
}

// withAlpha: цвет из hex с множителем прозрачности; битый hex даёт серый.
func withAlpha(hex string, alpha float64) color.NRGBA {
	c, ok := parseHex(hex)
	if !ok {
		c = fallbackColor
	}
	c.A = uint8(float64(c.A)*clamp01(alpha) + 0.5)
	return c
}

func clamp01(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}
