package netpbm

import (
	"image"
	"image/color"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// numbered returns a pixmap whose pixel i is Gray(i).
func numbered(w, h int) *Pixmap {
	p := NewPixmap(w, h, Black)
	for i := 0; i < w*h; i++ {
		p.SetIndex(i, Gray(i))
	}
	return p
}

func TestPixmapClamping(t *testing.T) {
	p := numbered(3, 2)

	for _, tc := range []struct {
		x, y int
		want Color
	}{
		{0, 0, Gray(0)},
		{2, 1, Gray(5)},
		{-5, -5, Gray(0)},
		{10, 1, Gray(5)},
		{1, 99, Gray(4)},
		{-1, 1, Gray(3)},
		{99, -99, Gray(2)},
	} {
		if got := p.Get(tc.x, tc.y); got != tc.want {
			t.Errorf("Get(%d, %d) = %v, want %v", tc.x, tc.y, got, tc.want)
		}
	}

	for _, tc := range []struct {
		i    int
		want Color
	}{
		{-1, Gray(0)},
		{3, Gray(3)},
		{5, Gray(5)},
		{6, Gray(5)},
		{1 << 40, Gray(5)},
	} {
		if got := p.GetIndex(tc.i); got != tc.want {
			t.Errorf("GetIndex(%d) = %v, want %v", tc.i, got, tc.want)
		}
	}

	p.Set(7, -3, White)
	if got := p.GetIndex(2); got != White {
		t.Errorf("Set(7, -3) wrote elsewhere, pixel 2 is %v", got)
	}
	p.SetIndex(100, RGB(1, 2, 3))
	if got := p.Get(2, 1); got != RGB(1, 2, 3) {
		t.Errorf("SetIndex(100) wrote elsewhere, last pixel is %v", got)
	}
}

func TestPixmapEmpty(t *testing.T) {
	p := NewPixmap(0, 4, White)
	p.Set(1, 1, White)
	p.SetIndex(0, White)
	if got := p.Get(0, 0); got != (Color{}) {
		t.Errorf("Get on empty pixmap = %v", got)
	}
	if got := p.GetIndex(3); got != (Color{}) {
		t.Errorf("GetIndex on empty pixmap = %v", got)
	}
}

func TestPixmapFillIsCopied(t *testing.T) {
	p := NewPixmap(2, 2, RGB(9, 9, 9))
	p.Set(0, 0, White)
	want := []Color{White, RGB(9, 9, 9), RGB(9, 9, 9), RGB(9, 9, 9)}
	if d := cmp.Diff(want, p.Colors()); d != "" {
		t.Error(d)
	}
}

func TestPixmapResize(t *testing.T) {
	orig := numbered(3, 3).Colors()

	p := numbered(3, 3)
	p.Resize(2, 2)
	if p.Width() != 2 || p.Height() != 2 {
		t.Fatalf("size after shrink is %dx%d", p.Width(), p.Height())
	}
	if d := cmp.Diff(orig[:4], p.Colors()); d != "" {
		t.Errorf("shrink (-want +got):\n%s", d)
	}

	p = numbered(3, 3)
	p.Resize(4, 4)
	want := append(append([]Color{}, orig...), make([]Color, 7)...)
	if d := cmp.Diff(want, p.Colors()); d != "" {
		t.Errorf("grow (-want +got):\n%s", d)
	}
	if p.Len() != 16 {
		t.Errorf("Len() = %d, want 16", p.Len())
	}
}

func TestPixmapString(t *testing.T) {
	p := NewPixmap(2, 2, Black)
	p.Set(1, 0, RGB(1, 2, 3))
	want := "[[(0, 0, 0), (1, 2, 3)], [(0, 0, 0), (0, 0, 0)]]"
	if got := p.String(); got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}

func TestPixmapImage(t *testing.T) {
	p := numbered(2, 2)
	var img image.Image = p

	if got := img.Bounds(); got != image.Rect(0, 0, 2, 2) {
		t.Errorf("Bounds() = %v", got)
	}
	if got := img.At(1, 1); got != Gray(3) {
		t.Errorf("At(1, 1) = %v", got)
	}
	if got := img.At(2, 0); got != (color.RGBA{}) {
		t.Errorf("At(2, 0) = %v, want transparent", got)
	}
}

func TestFromImage(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 3, 2))
	for y := 0; y < 2; y++ {
		for x := 0; x < 3; x++ {
			src.SetNRGBA(x, y, color.NRGBA{uint8(x), uint8(y), uint8(x + y), 255})
		}
	}

	want := []Color{
		{0, 0, 0}, {1, 0, 1}, {2, 0, 2},
		{0, 1, 1}, {1, 1, 2}, {2, 1, 3},
	}
	if d := cmp.Diff(want, FromImage(src).Colors()); d != "" {
		t.Errorf("NRGBA (-want +got):\n%s", d)
	}

	sub := src.SubImage(image.Rect(1, 1, 3, 2))
	if d := cmp.Diff(want[4:], FromImage(sub).Colors()); d != "" {
		t.Errorf("sub image (-want +got):\n%s", d)
	}

	gray := image.NewGray(image.Rect(0, 0, 2, 1))
	gray.SetGray(1, 0, color.Gray{Y: 77})
	if d := cmp.Diff([]Color{Gray(0), Gray(77)}, FromImage(gray).Colors()); d != "" {
		t.Errorf("Gray (-want +got):\n%s", d)
	}
}
