package netpbm

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
)

// Image is a pixmap bound to a Netpbm format, together with the format's
// max value and, for PF, its byte order. It is not safe for concurrent use.
type Image struct {
	format    Format
	pix       *Pixmap
	maxValue  int
	byteOrder binary.ByteOrder
}

// NewImage returns a black image of the given size and format. It panics if
// f is not a supported format.
func NewImage(width, height int, f Format) *Image {
	return NewImageFill(width, height, f, Black)
}

// NewImageFill is like NewImage but fills the image with fill.
func NewImageFill(width, height int, f Format, fill Color) *Image {
	if !f.Valid() {
		panic(fmt.Sprintf("netpbm: NewImage: invalid format %v", f))
	}

	return &Image{
		format:    f,
		pix:       NewPixmap(width, height, fill),
		maxValue:  255,
		byteOrder: binary.LittleEndian,
	}
}

// MakeImage returns a black image for the format with the given magic token,
// such as "P6".
func MakeImage(width, height int, tag string) (*Image, error) {
	f, err := ParseFormat(tag)
	if err != nil {
		return nil, err
	}
	return NewImage(width, height, f), nil
}

// Decode reads an image of any supported format from r.
func Decode(r io.Reader) (*Image, error) {
	h, p, err := decode(r, 0, defaultHeader())
	if err != nil {
		return nil, err
	}

	return &Image{
		format:    h.Format,
		pix:       p,
		maxValue:  h.MaxValue,
		byteOrder: h.ByteOrder,
	}, nil
}

// Format returns the image format.
func (img *Image) Format() Format { return img.format }

// Pixmap returns the pixels. The pixmap is shared, not copied.
func (img *Image) Pixmap() *Pixmap { return img.pix }

// SetPixmap replaces the pixels.
func (img *Image) SetPixmap(p *Pixmap) { img.pix = p }

// Width returns the image width.
func (img *Image) Width() int { return img.pix.Width() }

// Height returns the image height.
func (img *Image) Height() int { return img.pix.Height() }

// Get returns the pixel at (x, y); see Pixmap.Get.
func (img *Image) Get(x, y int) Color { return img.pix.Get(x, y) }

// Set sets the pixel at (x, y); see Pixmap.Set.
func (img *Image) Set(x, y int, c Color) { img.pix.Set(x, y, c) }

// GetIndex returns the pixel at flat index i; see Pixmap.GetIndex.
func (img *Image) GetIndex(i int) Color { return img.pix.GetIndex(i) }

// SetIndex sets the pixel at flat index i; see Pixmap.SetIndex.
func (img *Image) SetIndex(i int, c Color) { img.pix.SetIndex(i, c) }

// Resize crops or pads the pixmap; see Pixmap.Resize.
func (img *Image) Resize(width, height int) { img.pix.Resize(width, height) }

// IsBinary reports whether the image format stores raw bytes.
func (img *Image) IsBinary() bool { return img.format.IsBinary() }

// IsText reports whether the image format stores ASCII samples.
func (img *Image) IsText() bool { return img.format.IsText() }

// MaxValue returns the max sample value used when encoding. It is 1 for the
// bilevel formats.
func (img *Image) MaxValue() int {
	if !img.format.HasMaxValue() {
		return 1
	}
	return img.maxValue
}

// SetMaxValue sets the max sample value, clamped to what the format can
// store: [1,255] for P5 and P6, [1,65535] for P2, P3 and PF. It has no
// effect on P1 and P4.
func (img *Image) SetMaxValue(v int) {
	if !img.format.HasMaxValue() {
		return
	}
	img.maxValue = clampMax(v, codecs[img.format].maxValueLimit())
	if img.maxValue < 1 {
		img.maxValue = 1
	}
}

// ByteOrder returns the PF sample byte order.
func (img *Image) ByteOrder() binary.ByteOrder { return img.byteOrder }

// SetByteOrder sets the PF sample byte order. Nil selects little-endian.
func (img *Image) SetByteOrder(order binary.ByteOrder) {
	if order == nil {
		order = binary.LittleEndian
	}
	img.byteOrder = order
}

// Header returns the header Encode would write.
func (img *Image) Header() Header {
	return Header{
		Format:    img.format,
		Width:     img.pix.Width(),
		Height:    img.pix.Height(),
		MaxValue:  img.maxValue,
		ByteOrder: img.byteOrder,
	}
}

// Decode replaces the image contents with an image read from r, which must
// be in the image's format. On error the image is left unchanged.
func (img *Image) Decode(r io.Reader) error {
	base := img.Header()
	h, p, err := decode(r, img.format, base)
	if err != nil {
		return err
	}

	img.pix = p
	img.maxValue = h.MaxValue
	img.byteOrder = h.ByteOrder
	return nil
}

// Encode writes the image to w. The image is not modified.
func (img *Image) Encode(w io.Writer) error {
	return encode(w, img.Header(), img.pix)
}

// Load decodes the file at path into the image. The file is closed before
// Load returns.
func (img *Image) Load(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return &StreamError{Op: "open", Path: path, Err: err}
	}
	defer f.Close()

	return withPath(img.Decode(f), path)
}

// Save encodes the image to the file at path, replacing it if it exists.
func (img *Image) Save(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return &StreamError{Op: "open", Path: path, Err: err}
	}

	if err := img.Encode(f); err != nil {
		f.Close()
		return withPath(err, path)
	}

	if err := f.Close(); err != nil {
		return &StreamError{Op: "close", Path: path, Err: err}
	}
	return nil
}

func withPath(err error, path string) error {
	var se *StreamError
	if errors.As(err, &se) && se.Path == "" {
		se.Path = path
	}
	return err
}
