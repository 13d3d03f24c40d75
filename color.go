package netpbm

import (
	"fmt"
	"image/color"

	"github.com/lucasb-eyer/go-colorful"
)

// Color is a three channel sample. Channels are meant to be in [0,255] but
// this is only enforced by the arithmetic methods and by the encoders.
type Color struct {
	R, G, B int
}

// Shared colors used by the bilevel formats.
var (
	Black = Color{0, 0, 0}
	White = Color{255, 255, 255}
)

// RGB returns the color with the given channels.
func RGB(r, g, b int) Color {
	return Color{R: r, G: g, B: b}
}

// Gray returns the color with all three channels set to v.
func Gray(v int) Color {
	return Color{R: v, G: v, B: v}
}

// ParseColor parses a hex color of the form "#rrggbb".
func ParseColor(s string) (Color, error) {
	c, err := colorful.Hex(s)
	if err != nil {
		return Color{}, fmt.Errorf("netpbm: ParseColor: %w", err)
	}

	r, g, b := c.RGB255()
	return Color{R: int(r), G: int(g), B: int(b)}, nil
}

// Luminance709 returns the ITU-R BT.709 luma of c.
func (c Color) Luminance709() float64 {
	return 0.2126*float64(c.R) + 0.7152*float64(c.G) + 0.0722*float64(c.B)
}

// Luminance601 returns the ITU-R BT.601 luma of c.
func (c Color) Luminance601() float64 {
	return 0.3*float64(c.R) + 0.59*float64(c.G) + 0.11*float64(c.B)
}

// LuminanceAverage returns the mean of the three channels.
func (c Color) LuminanceAverage() float64 {
	return float64(c.R+c.G+c.B) / 3
}

// IsGray reports whether all three channels are equal.
func (c Color) IsGray() bool {
	return c.R == c.G && c.G == c.B
}

// Add returns c+o per channel, clamped to [0,255].
func (c Color) Add(o Color) Color {
	return Color{clamp(c.R + o.R), clamp(c.G + o.G), clamp(c.B + o.B)}
}

// Sub returns c-o per channel, clamped to [0,255].
func (c Color) Sub(o Color) Color {
	return Color{clamp(c.R - o.R), clamp(c.G - o.G), clamp(c.B - o.B)}
}

// Mul returns c*o per channel, clamped to [0,255].
func (c Color) Mul(o Color) Color {
	return Color{clamp(c.R * o.R), clamp(c.G * o.G), clamp(c.B * o.B)}
}

// Div returns c/o per channel, clamped to [0,255]. A zero channel in o
// panics with the runtime's integer divide error.
func (c Color) Div(o Color) Color {
	return Color{clamp(c.R / o.R), clamp(c.G / o.G), clamp(c.B / o.B)}
}

// AddScalar adds s to every channel.
func (c Color) AddScalar(s float64) Color {
	return c.apply(func(v float64) float64 { return v + s })
}

// SubScalar subtracts s from every channel.
func (c Color) SubScalar(s float64) Color {
	return c.apply(func(v float64) float64 { return v - s })
}

// MulScalar multiplies every channel by s.
func (c Color) MulScalar(s float64) Color {
	return c.apply(func(v float64) float64 { return v * s })
}

// DivScalar divides every channel by s. It panics if s is zero.
func (c Color) DivScalar(s float64) Color {
	if s == 0 {
		panic("netpbm: Color.DivScalar: division by zero")
	}
	return c.apply(func(v float64) float64 { return v / s })
}

// apply truncates toward zero before clamping.
func (c Color) apply(op func(float64) float64) Color {
	return Color{
		clamp(int(op(float64(c.R)))),
		clamp(int(op(float64(c.G)))),
		clamp(int(op(float64(c.B)))),
	}
}

// RGBA implements color.Color. Channels are clamped to [0,255] and the
// result is opaque.
func (c Color) RGBA() (r, g, b, a uint32) {
	r = uint32(clamp(c.R))
	g = uint32(clamp(c.G))
	b = uint32(clamp(c.B))
	return r | r<<8, g | g<<8, b | b<<8, 0xffff
}

func (c Color) String() string {
	return fmt.Sprintf("(%d, %d, %d)", c.R, c.G, c.B)
}

// ColorModel converts any color.Color to a Color.
var ColorModel = color.ModelFunc(func(c color.Color) color.Color {
	if c, ok := c.(Color); ok {
		return c
	}
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	return Color{int(n.R), int(n.G), int(n.B)}
})

func clamp(v int) int {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return v
}

// clampMax limits v to [0,max].
func clampMax(v, max int) int {
	if v < 0 {
		return 0
	}
	if v > max {
		return max
	}
	return v
}
