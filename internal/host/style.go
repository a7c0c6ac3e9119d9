package host

import (
	"fmt"
	"strconv"
	"strings"
)

// single text-shadow layer
type Shadow struct {
	X, Y  float64
	Blur  float64
	Color string
}

func (s Shadow) CSS() string {
	return fmt.Sprintf("%spx %spx %spx %s",
		formatFloat(s.X), formatFloat(s.Y), formatFloat(s.Blur), s.Color)
}

// RegionStyle positions a text region over the video.
type RegionStyle struct {
	BottomPercent float64
	FontFamily    string
	FontSize      int
	FontWeight    string
	FontStyle     string
	TextAlign     string
	Color         string
	LineHeight    float64
	Opacity       float64
	Shadows       []Shadow
}

func (s RegionStyle) TextShadow() string {
	if len(s.Shadows) == 0 {
		return "none"
	}
	parts := make([]string, len(s.Shadows))
	for i, shadow := range s.Shadows {
		parts[i] = shadow.CSS()
	}
	return strings.Join(parts, ", ")
}

// inline declaration block, stable key order
func (s RegionStyle) CSS() string {
	decls := []string{
		"position: absolute",
		"left: 0",
		"right: 0",
		"bottom: " + formatFloat(s.BottomPercent) + "%",
		"font-family: " + s.FontFamily,
		"font-size: " + strconv.Itoa(s.FontSize) + "px",
		"font-weight: " + s.FontWeight,
		"font-style: " + s.FontStyle,
		"text-align: " + s.TextAlign,
		"color: " + s.Color,
		"line-height: " + formatFloat(s.LineHeight),
		"opacity: " + formatFloat(s.Opacity),
		"text-shadow: " + s.TextShadow(),
		"pointer-events: none",
	}
	return strings.Join(decls, "; ") + ";"
}

// RGBA is a composited color with alpha in [0,1].
type RGBA struct {
	R, G, B uint8
	A       float64
}

func (c RGBA) String() string {
	return fmt.Sprintf("rgba(%d, %d, %d, %s)", c.R, c.G, c.B, formatFloat(c.A))
}

// ParseHexColor accepts #rgb and #rrggbb.
func ParseHexColor(hex string, alpha float64) (RGBA, error) {
	s := strings.TrimPrefix(strings.TrimSpace(hex), "#")
	if len(s) == 3 {
		s = string([]byte{s[0], s[0], s[1], s[1], s[2], s[2]})
	}
	if len(s) != 6 {
		return RGBA{}, fmt.Errorf("invalid hex color %q", hex)
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return RGBA{}, fmt.Errorf("invalid hex color %q: %w", hex, err)
	}
	return RGBA{
		R: uint8(v >> 16),
		G: uint8(v >> 8),
		B: uint8(v),
		A: clamp01(alpha),
	}, nil
}

// Ruleset is a named block of presentation rules; LineBackground and
// LinePadding are the structured form of what CSS says for painters that
// cannot read CSS.
type Ruleset struct {
	ID             string
	CSS            string
	LineBackground RGBA
	LinePadding    int
}

// styling applied to the whole surface by renderers that own it
type ContainerStyle struct {
	FontSize   int
	Opacity    float64
	TranslateY int
}

func (s ContainerStyle) CSS() string {
	return fmt.Sprintf("font-size: %dpx; opacity: %s; transform: translateY(%dpx);",
		s.FontSize, formatFloat(s.Opacity), s.TranslateY)
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func clamp01(f float64) float64 {
	switch {
	case f < 0:
		return 0
	case f > 1:
		return 1
	default:
		return f
	}
}
