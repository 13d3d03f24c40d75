package netpbm

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// pfmBinary is the floating point RGB format. Each pixel is three IEEE-754
// float32 values and rows are stored bottom to top. The header has a scale
// line in place of the max value: its sign selects the byte order. The
// image max value is not stored; it scales samples between [0,1] and
// [0,MaxValue].
type pfmBinary struct{}

func (pfmBinary) maxValueLimit() int { return textMaxValue }

func (pfmBinary) readHeader(r *reader, h *Header) error {
	line, err := r.readHeaderLine("scale")
	if err != nil {
		return err
	}

	s := strings.TrimSpace(line)
	scale, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(scale) {
		return fmt.Errorf("%w: scale %q", ErrMalformedHeader, s)
	}

	if scale < 0 {
		h.ByteOrder = binary.LittleEndian
	} else {
		h.ByteOrder = binary.BigEndian
	}
	return nil
}

func (pfmBinary) writeHeader(w *bufio.Writer, h Header) {
	if h.ByteOrder == binary.BigEndian {
		w.WriteString("1.0\n")
	} else {
		w.WriteString("-1.0\n")
	}
}

func (pfmBinary) readPixels(r *reader, h Header) (*Pixmap, error) {
	p := newPixels(h)
	err := r.readSamples(h.Width*h.Height*12, 12, "float samples", func(b []byte) {
		for i := 0; i < len(b); i += 12 {
			p.add(Color{
				floatSample(h.ByteOrder.Uint32(b[i:]), h.MaxValue),
				floatSample(h.ByteOrder.Uint32(b[i+4:]), h.MaxValue),
				floatSample(h.ByteOrder.Uint32(b[i+8:]), h.MaxValue),
			})
		}
	})
	if err != nil {
		return nil, err
	}

	// rows were stored bottom to top
	p.flipRows()
	return p.pixmap(), nil
}

func (pfmBinary) writePixels(w *bufio.Writer, h Header, p *Pixmap) {
	scale := float32(h.MaxValue)
	row := make([]byte, p.width*12)
	for i := 0; i < p.height; i++ {
		y := p.height - 1 - i
		for x := 0; x < p.width; x++ {
			c := p.pix[x+y*p.width]
			b := row[x*12:]
			h.ByteOrder.PutUint32(b[0:], math.Float32bits(float32(c.R)/scale))
			h.ByteOrder.PutUint32(b[4:], math.Float32bits(float32(c.G)/scale))
			h.ByteOrder.PutUint32(b[8:], math.Float32bits(float32(c.B)/scale))
		}
		w.Write(row)
	}
}

// floatSample scales a stored float to a channel, truncating toward zero.
// NaN reads as 0 and the result is limited to [0,max]. Truncation can land
// one below the channel that was encoded, since c/max*max need not be exact
// in float32; decoding does not round.
func floatSample(bits uint32, max int) int {
	f := float64(math.Float32frombits(bits))
	if math.IsNaN(f) {
		return 0
	}
	v := f * float64(max)
	if v <= 0 {
		return 0
	}
	if v >= float64(max) {
		return max
	}
	return int(v)
}
