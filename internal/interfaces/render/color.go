package render

import (
	"image/color"
	"math/rand"
	"strconv"
	"strings"

	"github.com/turtacn/phdg/pkg/errors"
)

// ColorStrategy maps a combination index to its fill colour.  It must return
// the same colour for the same index on every call.
type ColorStrategy func(index int) color.RGBA

// prism is a ten-colour qualitative palette.
var prism = []color.RGBA{
	{95, 70, 144, 255},
	{29, 105, 150, 255},
	{56, 166, 165, 255},
	{15, 133, 84, 255},
	{115, 175, 72, 255},
	{237, 173, 8, 255},
	{225, 124, 5, 255},
	{204, 80, 62, 255},
	{148, 52, 110, 255},
	{111, 64, 112, 255},
}

// DefaultPalette cycles through a ten-colour qualitative palette.
func DefaultPalette() ColorStrategy {
	return FixedColors(prism)
}

// FixedColors cycles through colors.  An empty list falls back to the
// default palette.
func FixedColors(colors []color.RGBA) ColorStrategy {
	if len(colors) == 0 {
		colors = prism
	}
	list := append([]color.RGBA(nil), colors...)
	return func(i int) color.RGBA {
		if i < 0 {
			i = -i
		}
		return list[i%len(list)]
	}
}

// SeededColors returns pseudo-random opaque colours derived from seed and
// the index alone.
func SeededColors(seed int64) ColorStrategy {
	return func(i int) color.RGBA {
		rng := rand.New(rand.NewSource(seed*1_000_003 + int64(i)))
		return color.RGBA{uint8(rng.Intn(256)), uint8(rng.Intn(256)), uint8(rng.Intn(256)), 255}
	}
}

// ParseHexColor parses "#rrggbb" or "#rgb".
func ParseHexColor(s string) (color.RGBA, error) {
	h := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(h) == 3 {
		h = string([]byte{h[0], h[0], h[1], h[1], h[2], h[2]})
	}
	if len(h) != 6 {
		return color.RGBA{}, errors.Newf(errors.ErrCodePlotOptionsInvalid, "invalid colour %q", s)
	}
	v, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return color.RGBA{}, errors.Wrap(err, errors.ErrCodePlotOptionsInvalid, "invalid colour").WithDetail(s)
	}
	return color.RGBA{uint8(v >> 16), uint8(v >> 8), uint8(v), 255}, nil
}

// ColorsFromConfig picks the strategy for a configured colour list and seed:
// a non-empty list wins, then a non-zero seed, then the default palette.
func ColorsFromConfig(colors []string, seed int64) (ColorStrategy, error) {
	if len(colors) > 0 {
		parsed := make([]color.RGBA, len(colors))
		for i, s := range colors {
			c, err := ParseHexColor(s)
			if err != nil {
				return nil, err
			}
			parsed[i] = c
		}
		return FixedColors(parsed), nil
	}
	if seed != 0 {
		return SeededColors(seed), nil
	}
	return DefaultPalette(), nil
}

// withAlpha returns c with alpha a in [0, 1], premultiplied.
func withAlpha(c color.RGBA, a float64) color.RGBA {
	return color.RGBA{
		R: uint8(float64(c.R) * a),
		G: uint8(float64(c.G) * a),
		B: uint8(float64(c.B) * a),
		A: uint8(255 * a),
	}
}

//Personal.AI order the ending
