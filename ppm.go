package netpbm

import (
	"bufio"
	"strconv"
)

type ppmText struct{ maxValueLine }

// Samples come in groups of three in flat pixel order. Any whitespace may
// separate them, although writePixels puts one pixel on each line.
func (ppmText) readPixels(r *reader, h Header) (*Pixmap, error) {
	p := newPixels(h)
	var rgb [3]int
	for i := 0; i < h.Width*h.Height; i++ {
		for c := range rgb {
			v, err := r.readSample()
			if err != nil {
				return nil, err
			}
			rgb[c] = min(v, h.MaxValue)
		}
		p.add(Color{rgb[0], rgb[1], rgb[2]})
	}
	return p.pixmap(), nil
}

func (ppmText) writePixels(w *bufio.Writer, h Header, p *Pixmap) {
	var buf []byte
	for _, c := range p.pix {
		buf = strconv.AppendInt(buf[:0], int64(clampMax(c.R, h.MaxValue)), 10)
		buf = append(buf, ' ')
		buf = strconv.AppendInt(buf, int64(clampMax(c.G, h.MaxValue)), 10)
		buf = append(buf, ' ')
		buf = strconv.AppendInt(buf, int64(clampMax(c.B, h.MaxValue)), 10)
		buf = append(buf, '\n')
		w.Write(buf)
	}
}

type ppmBinary struct{ maxValueLine }

func (ppmBinary) readPixels(r *reader, h Header) (*Pixmap, error) {
	p := newPixels(h)
	err := r.readSamples(h.Width*h.Height*3, 3, "pixmap", func(b []byte) {
		for i := 0; i < len(b); i += 3 {
			p.add(Color{
				min(int(b[i]), h.MaxValue),
				min(int(b[i+1]), h.MaxValue),
				min(int(b[i+2]), h.MaxValue),
			})
		}
	})
	if err != nil {
		return nil, err
	}
	return p.pixmap(), nil
}

func (ppmBinary) writePixels(w *bufio.Writer, h Header, p *Pixmap) {
	max := min(h.MaxValue, binaryMaxValue)
	row := make([]byte, p.width*3)
	for y := 0; y < p.height; y++ {
		for x := 0; x < p.width; x++ {
			c := p.pix[x+y*p.width]
			row[x*3] = byte(clampMax(c.R, max))
			row[x*3+1] = byte(clampMax(c.G, max))
			row[x*3+2] = byte(clampMax(c.B, max))
		}
		w.Write(row)
	}
}
