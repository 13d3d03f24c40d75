package netpbm

import (
	"image"
	"image/color"
	"strings"
)

// Pixmap is a width by height grid of colors stored in row-major order, so
// the pixel at (x, y) lives at index x + y*width.
//
// All accessors clamp their coordinates into the grid instead of failing.
type Pixmap struct {
	width  int
	height int
	pix    []Color
}

// NewPixmap returns a pixmap with every pixel set to fill. It panics if
// either dimension is negative.
func NewPixmap(width, height int, fill Color) *Pixmap {
	if width < 0 || height < 0 {
		panic("netpbm: NewPixmap: negative dimensions")
	}

	pix := make([]Color, width*height)
	for i := range pix {
		pix[i] = fill
	}

	return &Pixmap{
		width:  width,
		height: height,
		pix:    pix,
	}
}

// FromImage copies img into a new pixmap. The alpha channel is dropped after
// converting to non-premultiplied color.
func FromImage(img image.Image) *Pixmap {
	b := img.Bounds()
	p := NewPixmap(b.Dx(), b.Dy(), Black)

	if nrgba, ok := img.(*image.NRGBA); ok {
		for y := 0; y < p.height; y++ {
			for x := 0; x < p.width; x++ {
				s := nrgba.Pix[nrgba.PixOffset(x+b.Min.X, y+b.Min.Y):]
				p.pix[x+y*p.width] = Color{int(s[0]), int(s[1]), int(s[2])}
			}
		}
		return p
	}

	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			p.pix[(x-b.Min.X)+(y-b.Min.Y)*p.width] = ColorModel.Convert(img.At(x, y)).(Color)
		}
	}

	return p
}

// Width returns the number of columns.
func (p *Pixmap) Width() int { return p.width }

// Height returns the number of rows.
func (p *Pixmap) Height() int { return p.height }

// Len returns width*height.
func (p *Pixmap) Len() int { return len(p.pix) }

// Get returns the pixel at (x, y), with x clamped to [0,width-1] and y to
// [0,height-1]. An empty pixmap yields the zero Color.
func (p *Pixmap) Get(x, y int) Color {
	if len(p.pix) == 0 {
		return Color{}
	}
	return p.pix[p.index(x, y)]
}

// Set stores c at (x, y) after clamping as in Get.
func (p *Pixmap) Set(x, y int, c Color) {
	if len(p.pix) == 0 {
		return
	}
	p.pix[p.index(x, y)] = c
}

// GetIndex returns the pixel at flat index i clamped to [0,width*height-1].
func (p *Pixmap) GetIndex(i int) Color {
	if len(p.pix) == 0 {
		return Color{}
	}
	return p.pix[clampMax(i, len(p.pix)-1)]
}

// SetIndex stores c at flat index i after clamping as in GetIndex.
func (p *Pixmap) SetIndex(i int, c Color) {
	if len(p.pix) == 0 {
		return
	}
	p.pix[clampMax(i, len(p.pix)-1)] = c
}

func (p *Pixmap) index(x, y int) int {
	return clampMax(x, p.width-1) + clampMax(y, p.height-1)*p.width
}

// Resize changes the dimensions without resampling: the flat pixel sequence
// is truncated, or padded with zero Colors, to width*height entries.
func (p *Pixmap) Resize(width, height int) {
	if width < 0 || height < 0 {
		panic("netpbm: Pixmap.Resize: negative dimensions")
	}

	n := width * height
	if n > len(p.pix) {
		p.pix = append(p.pix, make([]Color, n-len(p.pix))...)
	} else {
		p.pix = p.pix[:n:n]
	}

	p.width = width
	p.height = height
}

// Colors returns a copy of the flat pixel sequence.
func (p *Pixmap) Colors() []Color {
	out := make([]Color, len(p.pix))
	copy(out, p.pix)
	return out
}

// String renders the pixmap as nested bracketed rows. The output is meant
// for debugging and cannot be parsed back.
func (p *Pixmap) String() string {
	var sb strings.Builder
	sb.WriteByte('[')
	for y := 0; y < p.height; y++ {
		if y > 0 {
			sb.WriteString(", ")
		}
		sb.WriteByte('[')
		for x := 0; x < p.width; x++ {
			if x > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(p.pix[x+y*p.width].String())
		}
		sb.WriteByte(']')
	}
	sb.WriteByte(']')
	return sb.String()
}

// ColorModel implements image.Image.
func (p *Pixmap) ColorModel() color.Model { return ColorModel }

// Bounds implements image.Image.
func (p *Pixmap) Bounds() image.Rectangle {
	return image.Rect(0, 0, p.width, p.height)
}

// At implements image.Image. Unlike Get it does not clamp: points outside
// the bounds are transparent black, as image.Image requires.
func (p *Pixmap) At(x, y int) color.Color {
	if !(image.Point{x, y}.In(p.Bounds())) {
		return color.RGBA{}
	}
	return p.pix[x+y*p.width]
}
