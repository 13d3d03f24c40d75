package netpbm

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// maxPixels bounds width*height. Decoders grow their storage as samples
// arrive, so the memory a decode uses follows the input rather than the
// declared size.
const maxPixels = 1 << 28

// sampleChunk is the most the decoders allocate ahead of the data they
// have read.
const sampleChunk = 1 << 16

// Header holds everything a Netpbm file declares before its samples.
type Header struct {
	Format Format
	Width  int
	Height int

	// MaxValue is the largest sample value. For PF it is not stored in the
	// file and acts as the scale that maps [0,1] floats to channels.
	MaxValue int

	// ByteOrder is the sample byte order of PF files.
	ByteOrder binary.ByteOrder
}

// DecodeHeader reads the header of a Netpbm file of any supported format.
func DecodeHeader(r io.Reader) (Header, error) {
	return decodeHeader(newReader(r), 0, defaultHeader())
}

func defaultHeader() Header {
	return Header{
		MaxValue:  255,
		ByteOrder: binary.LittleEndian,
	}
}

// reader is the byte and line stream shared by the header and sample decoders.
type reader struct {
	*bufio.Reader
}

func newReader(r io.Reader) *reader {
	if br, ok := r.(*bufio.Reader); ok {
		return &reader{br}
	}
	return &reader{bufio.NewReader(r)}
}

// decodeHeader reads the magic token, the dimensions and the format specific
// header lines. If want is non-zero the magic token must match it. MaxValue
// and ByteOrder of base are kept unless the file overrides them.
func decodeHeader(r *reader, want Format, base Header) (Header, error) {
	line, err := r.readHeaderLine("magic token")
	if err != nil {
		return Header{}, err
	}

	magic := strings.TrimSpace(line)
	f, err := ParseFormat(magic)
	if err != nil {
		if want != 0 {
			return Header{}, fmt.Errorf("%w: expected %s, got %q", ErrFormatMismatch, want, magic)
		}
		return Header{}, fmt.Errorf("%w: unknown magic token %q", ErrFormatMismatch, magic)
	}
	if want != 0 && f != want {
		return Header{}, fmt.Errorf("%w: expected %s, got %s", ErrFormatMismatch, want, f)
	}

	line, err = r.readHeaderLine("dimensions")
	if err != nil {
		return Header{}, err
	}

	w, h, err := parseDimensions(line)
	if err != nil {
		return Header{}, err
	}

	hdr := base
	hdr.Format = f
	hdr.Width = w
	hdr.Height = h

	if err := codecs[f].readHeader(r, &hdr); err != nil {
		return Header{}, err
	}

	return hdr, nil
}

func parseDimensions(line string) (int, int, error) {
	fields := strings.Fields(line)
	if len(fields) != 2 {
		return 0, 0, fmt.Errorf("%w: dimensions line %q", ErrMalformedHeader, strings.TrimSpace(line))
	}

	w, err := strconv.Atoi(fields[0])
	if err != nil || w < 0 {
		return 0, 0, fmt.Errorf("%w: width %q", ErrMalformedHeader, fields[0])
	}

	h, err := strconv.Atoi(fields[1])
	if err != nil || h < 0 {
		return 0, 0, fmt.Errorf("%w: height %q", ErrMalformedHeader, fields[1])
	}

	if w > 0 && h > maxPixels/w {
		return 0, 0, fmt.Errorf("%w: %dx%d image is too large", ErrMalformedHeader, w, h)
	}

	return w, h, nil
}

// readHeaderLine returns the next line that is not a '#' comment. A last
// line without a terminating newline is accepted.
func (r *reader) readHeaderLine(what string) (string, error) {
	for {
		line, err := r.ReadString('\n')
		if err == io.EOF && line != "" {
			err = nil
		}
		if err == io.EOF {
			return "", fmt.Errorf("%w: missing %s", ErrTruncatedData, what)
		} else if err != nil {
			return "", &StreamError{Op: "read", Err: err}
		}

		if strings.HasPrefix(strings.TrimSpace(line), "#") {
			continue
		}

		return line, nil
	}
}

// readMaxValue reads a max value line and checks it against [1,limit].
func (r *reader) readMaxValue(limit int) (int, error) {
	line, err := r.readHeaderLine("max value")
	if err != nil {
		return 0, err
	}

	s := strings.TrimSpace(line)
	v, err := strconv.Atoi(s)
	if err != nil || v < 1 || v > limit {
		return 0, fmt.Errorf("%w: max value %q", ErrMalformedHeader, s)
	}

	return v, nil
}

// readFull fills buf from the stream. Running out of data is reported as
// ErrTruncatedData.
func (r *reader) readFull(buf []byte, what string) error {
	_, err := io.ReadFull(r, buf)
	if err == io.EOF || err == io.ErrUnexpectedEOF {
		return fmt.Errorf("%w: short %s", ErrTruncatedData, what)
	} else if err != nil {
		return &StreamError{Op: "read", Err: err}
	}
	return nil
}

// readSamples reads n bytes in pieces of at most sampleChunk bytes and hands
// each piece to fn. n and every piece are multiples of unit.
func (r *reader) readSamples(n, unit int, what string, fn func([]byte)) error {
	buf := make([]byte, min(n, max(sampleChunk/unit, 1)*unit))
	for n > 0 {
		b := buf[:min(n, len(buf))]
		if err := r.readFull(b, what); err != nil {
			return err
		}
		fn(b)
		n -= len(b)
	}
	return nil
}

// readToken returns the next run of non-space bytes. It returns io.EOF when
// the stream holds no further token.
func (r *reader) readToken() ([]byte, error) {
	var tok []byte
	for {
		b, err := r.ReadByte()
		if err == io.EOF {
			if len(tok) > 0 {
				return tok, nil
			}
			return nil, io.EOF
		} else if err != nil {
			return nil, &StreamError{Op: "read", Err: err}
		}

		if isSpace(b) {
			if len(tok) > 0 {
				return tok, nil
			}
			continue
		}

		tok = append(tok, b)
	}
}

// readSample reads one ASCII decimal sample.
func (r *reader) readSample() (int, error) {
	tok, err := r.readToken()
	if err == io.EOF {
		return 0, fmt.Errorf("%w: missing samples", ErrTruncatedData)
	} else if err != nil {
		return 0, err
	}

	v, err := strconv.Atoi(string(tok))
	if err != nil || v < 0 {
		return 0, fmt.Errorf("%w: sample %q", ErrMalformedData, tok)
	}

	return v, nil
}

// readBit reads one P1 sample character, skipping whitespace.
func (r *reader) readBit() (byte, error) {
	for {
		b, err := r.ReadByte()
		if err == io.EOF {
			return 0, fmt.Errorf("%w: missing samples", ErrTruncatedData)
		} else if err != nil {
			return 0, &StreamError{Op: "read", Err: err}
		}

		if isSpace(b) {
			continue
		}
		if b < '0' || b > '9' {
			return 0, fmt.Errorf("%w: bit %q", ErrMalformedData, b)
		}

		return b, nil
	}
}

func isSpace(b byte) bool {
	switch b {
	case ' ', '\t', '\n', '\v', '\f', '\r':
		return true
	}
	return false
}

// writeHeader writes the magic token and the dimensions line.
func writeHeader(w *bufio.Writer, h Header) {
	fmt.Fprintf(w, "%s\n%d %d\n", h.Format, h.Width, h.Height)
}

func writeMaxValue(w *bufio.Writer, max int) {
	w.WriteString(strconv.Itoa(max))
	w.WriteByte('\n')
}
