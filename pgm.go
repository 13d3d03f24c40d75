package netpbm

import (
	"bufio"
	"strconv"
)

// grayLevel is the single sample stored for c in the graymap formats.
func grayLevel(c Color) int {
	if c.IsGray() {
		return c.R
	}
	return int(c.Luminance601())
}

type pgmText struct{ maxValueLine }

func (pgmText) readPixels(r *reader, h Header) (*Pixmap, error) {
	p := newPixels(h)
	for i := 0; i < h.Width*h.Height; i++ {
		v, err := r.readSample()
		if err != nil {
			return nil, err
		}
		p.add(Gray(min(v, h.MaxValue)))
	}
	return p.pixmap(), nil
}

// One text line per row, samples separated by single spaces.
func (pgmText) writePixels(w *bufio.Writer, h Header, p *Pixmap) {
	var buf []byte
	for y := 0; y < p.height; y++ {
		buf = buf[:0]
		for x := 0; x < p.width; x++ {
			if x > 0 {
				buf = append(buf, ' ')
			}
			buf = strconv.AppendInt(buf, int64(clampMax(grayLevel(p.pix[x+y*p.width]), h.MaxValue)), 10)
		}
		buf = append(buf, '\n')
		w.Write(buf)
	}
}

type pgmBinary struct{ maxValueLine }

func (pgmBinary) readPixels(r *reader, h Header) (*Pixmap, error) {
	p := newPixels(h)
	err := r.readSamples(h.Width*h.Height, 1, "graymap", func(b []byte) {
		for _, v := range b {
			p.add(Gray(min(int(v), h.MaxValue)))
		}
	})
	if err != nil {
		return nil, err
	}
	return p.pixmap(), nil
}

func (pgmBinary) writePixels(w *bufio.Writer, h Header, p *Pixmap) {
	max := min(h.MaxValue, binaryMaxValue)
	row := make([]byte, p.width)
	for y := 0; y < p.height; y++ {
		for x := range row {
			row[x] = byte(clampMax(grayLevel(p.pix[x+y*p.width]), max))
		}
		w.Write(row)
	}
}
