package netpbm

import (
	"bufio"
	"image"
	"io"
)

// codec implements the parts of a format that differ between variants. The
// magic token and dimensions are handled by decodeHeader and writeHeader.
type codec interface {
	// readHeader reads the header lines that follow the dimensions.
	readHeader(r *reader, h *Header) error
	readPixels(r *reader, h Header) (*Pixmap, error)

	writeHeader(w *bufio.Writer, h Header)
	writePixels(w *bufio.Writer, h Header, p *Pixmap)

	// maxValueLimit is the largest max value the encoding can represent.
	maxValueLimit() int
}

// Largest max values. Binary samples are one byte wide.
const (
	textMaxValue   = 65535
	binaryMaxValue = 255
)

var codecs = map[Format]codec{
	PBMText:   pbmText{},
	PGMText:   pgmText{maxValueLine{textMaxValue}},
	PPMText:   ppmText{maxValueLine{textMaxValue}},
	PBMBinary: pbmBinary{},
	PGMBinary: pgmBinary{maxValueLine{binaryMaxValue}},
	PPMBinary: ppmBinary{maxValueLine{binaryMaxValue}},
	PFMBinary: pfmBinary{},
}

// noMaxValue is embedded by the bilevel codecs, which have no max value line.
type noMaxValue struct{}

func (noMaxValue) readHeader(r *reader, h *Header) error { return nil }
func (noMaxValue) writeHeader(w *bufio.Writer, h Header) {}
func (noMaxValue) maxValueLimit() int                    { return 1 }

// maxValueLine is embedded by the codecs that store a max value line.
type maxValueLine struct {
	limit int
}

func (m maxValueLine) readHeader(r *reader, h *Header) error {
	v, err := r.readMaxValue(m.limit)
	if err != nil {
		return err
	}
	h.MaxValue = v
	return nil
}

func (m maxValueLine) writeHeader(w *bufio.Writer, h Header) {
	writeMaxValue(w, h.MaxValue)
}

func (m maxValueLine) maxValueLimit() int {
	return m.limit
}

// pixels collects decoded pixels in file order.
type pixels struct {
	width, height int
	pix           []Color
}

func newPixels(h Header) *pixels {
	return &pixels{
		width:  h.Width,
		height: h.Height,
		pix:    make([]Color, 0, min(h.Width*h.Height, sampleChunk)),
	}
}

func (p *pixels) add(c Color) {
	p.pix = append(p.pix, c)
}

// flipRows reverses the row order.
func (p *pixels) flipRows() {
	for top, bot := 0, p.height-1; top < bot; top, bot = top+1, bot-1 {
		a := p.pix[top*p.width : (top+1)*p.width]
		b := p.pix[bot*p.width : (bot+1)*p.width]
		for x := range a {
			a[x], b[x] = b[x], a[x]
		}
	}
}

func (p *pixels) pixmap() *Pixmap {
	return &Pixmap{width: p.width, height: p.height, pix: p.pix}
}

// decode reads a complete image. No pixmap is returned unless every sample
// was read.
func decode(r io.Reader, want Format, base Header) (Header, *Pixmap, error) {
	rd := newReader(r)

	h, err := decodeHeader(rd, want, base)
	if err != nil {
		return Header{}, nil, err
	}

	p, err := codecs[h.Format].readPixels(rd, h)
	if err != nil {
		return Header{}, nil, err
	}

	return h, p, nil
}

// encode writes h and the samples of p. Write errors are sticky in the
// bufio.Writer and surface from Flush.
func encode(w io.Writer, h Header, p *Pixmap) error {
	c := codecs[h.Format]
	h.Width = p.Width()
	h.Height = p.Height()

	wr := bufio.NewWriter(w)
	writeHeader(wr, h)
	c.writeHeader(wr, h)
	c.writePixels(wr, h, p)

	if err := wr.Flush(); err != nil {
		return &StreamError{Op: "write", Err: err}
	}
	return nil
}

func init() {
	for _, f := range Formats() {
		f := f
		image.RegisterFormat(f.Extension()[1:], f.String(), func(r io.Reader) (image.Image, error) {
			_, p, err := decode(r, f, defaultHeader())
			if err != nil {
				return nil, err
			}
			return p, nil
		}, func(r io.Reader) (image.Config, error) {
			h, err := decodeHeader(newReader(r), f, defaultHeader())
			if err != nil {
				return image.Config{}, err
			}
			return image.Config{
				ColorModel: ColorModel,
				Width:      h.Width,
				Height:     h.Height,
			}, nil
		})
	}
}
