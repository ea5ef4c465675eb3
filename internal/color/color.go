// Package color derives label colors for tags created without one.
package color

import (
	"fmt"
	"strings"
)

// ForName returns a stable hex color for a tag name. Names differing only
// in case or surrounding space get the same color.
func ForName(name string) string {
	h := 0
	for _, c := range strings.ToLower(strings.TrimSpace(name)) {
		h = 31*h + int(c)
	}
	if h < 0 {
		h = -h
	}
	hue := float64(h % 360)

	// Saturated enough to tell tags apart, light enough for dark text.
	r, g, b := hslToRGB(hue, 0.6, 0.55)

	return fmt.Sprintf("#%02x%02x%02x", r, g, b)
}

// hslToRGB converts hue (0-360), saturation and lightness (0-1) to RGB.
func hslToRGB(h, s, l float64) (r, g, b uint8) {
	h /= 360.0

	var r1, g1, b1 float64

	if s == 0 {
		r1, g1, b1 = l, l, l
	} else {
		var q float64
		if l < 0.5 {
			q = l * (1 + s)
		} else {
			q = l + s - l*s
		}
		p := 2*l - q

		r1 = hueToRGB(p, q, h+1.0/3.0)
		g1 = hueToRGB(p, q, h)
		b1 = hueToRGB(p, q, h-1.0/3.0)
	}

	r = uint8(r1 * 255)
	g = uint8(g1 * 255)
	b = uint8(b1 * 255)
	return
}

func hueToRGB(p, q, t float64) float64 {
	if t < 0 {
		t++
	}
	if t > 1 {
		t--
	}
	if t < 1.0/6.0 {
		return p + (q-p)*6*t
	}
	if t < 1.0/2.0 {
		return q
	}
	if t < 2.0/3.0 {
		return p + (q-p)*(2.0/3.0-t)*6
	}
	return p
}
