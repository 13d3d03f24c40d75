package netpbm

import "bufio"

// Bilevel formats. A set bit ('1' in P1) is black and a clear bit is white,
// as in the Netpbm tools.

type pbmText struct{ noMaxValue }

func (pbmText) readPixels(r *reader, h Header) (*Pixmap, error) {
	p := newPixels(h)
	for i := 0; i < h.Width*h.Height; i++ {
		b, err := r.readBit()
		if err != nil {
			return nil, err
		}
		if b != '0' {
			p.add(Black)
		} else {
			p.add(White)
		}
	}
	return p.pixmap(), nil
}

// P1 maps anything short of full white to '1'.
func (pbmText) writePixels(w *bufio.Writer, h Header, p *Pixmap) {
	for y := 0; y < p.height; y++ {
		for x := 0; x < p.width; x++ {
			if p.pix[x+y*p.width].LuminanceAverage() >= 255 {
				w.WriteByte('0')
			} else {
				w.WriteByte('1')
			}
		}
		w.WriteByte('\n')
	}
}

type pbmBinary struct{ noMaxValue }

// P4 rows are packed MSB first and each row starts on a byte boundary.
func (pbmBinary) readPixels(r *reader, h Header) (*Pixmap, error) {
	p := newPixels(h)
	for y := 0; h.Width > 0 && y < h.Height; y++ {
		x := 0
		err := r.readSamples((h.Width+7)/8, 1, "bitmap row", func(b []byte) {
			for _, v := range b {
				for bit := 0; bit < 8 && x < h.Width; bit, x = bit+1, x+1 {
					if v&(0x80>>uint(bit)) != 0 {
						p.add(Black)
					} else {
						p.add(White)
					}
				}
			}
		})
		if err != nil {
			return nil, err
		}
	}
	return p.pixmap(), nil
}

// Only pure black pixels set a bit. Unused bits of the last byte in a row
// stay zero.
func (pbmBinary) writePixels(w *bufio.Writer, h Header, p *Pixmap) {
	row := make([]byte, (p.width+7)/8)
	for y := 0; y < p.height; y++ {
		for i := range row {
			row[i] = 0
		}
		for x := 0; x < p.width; x++ {
			if p.pix[x+y*p.width].LuminanceAverage() == 0 {
				row[x/8] |= 0x80 >> uint(x%8)
			}
		}
		w.Write(row)
	}
}
