package netpbm

import (
	"fmt"
	"strings"
)

// Format identifies one of the supported Netpbm variants.
type Format int

// Supported formats. The zero value is not a valid format.
const (
	PBMText   Format = iota + 1 // P1
	PGMText                     // P2
	PPMText                     // P3
	PBMBinary                   // P4
	PGMBinary                   // P5
	PPMBinary                   // P6
	PFMBinary                   // PF
)

var magics = map[Format]string{
	PBMText:   "P1",
	PGMText:   "P2",
	PPMText:   "P3",
	PBMBinary: "P4",
	PGMBinary: "P5",
	PPMBinary: "P6",
	PFMBinary: "PF",
}

// Formats returns every supported format in magic token order.
func Formats() []Format {
	return []Format{PBMText, PGMText, PPMText, PBMBinary, PGMBinary, PPMBinary, PFMBinary}
}

// ParseFormat returns the format whose magic token is s.
func ParseFormat(s string) (Format, error) {
	s = strings.TrimSpace(s)
	for f, magic := range magics {
		if magic == s {
			return f, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnsupportedFormat, s)
}

// String returns the magic token, for example "P6".
func (f Format) String() string {
	if magic, ok := magics[f]; ok {
		return magic
	}
	return fmt.Sprintf("Format(%d)", int(f))
}

// Valid reports whether f is one of the supported formats.
func (f Format) Valid() bool {
	_, ok := magics[f]
	return ok
}

// IsBinary reports whether samples are stored as raw bytes.
func (f Format) IsBinary() bool {
	switch f {
	case PBMBinary, PGMBinary, PPMBinary, PFMBinary:
		return true
	}
	return false
}

// IsText reports whether samples are stored as ASCII.
func (f Format) IsText() bool {
	switch f {
	case PBMText, PGMText, PPMText:
		return true
	}
	return false
}

// HasMaxValue reports whether the format carries a maximum sample value.
// The bilevel formats do not.
func (f Format) HasMaxValue() bool {
	return f.Valid() && f != PBMText && f != PBMBinary
}

// Extension returns the conventional file extension, including the dot.
func (f Format) Extension() string {
	switch f {
	case PBMText, PBMBinary:
		return ".pbm"
	case PGMText, PGMBinary:
		return ".pgm"
	case PPMText, PPMBinary:
		return ".ppm"
	case PFMBinary:
		return ".pfm"
	}
	return ""
}

// MIMEType returns the media type commonly used for the format.
func (f Format) MIMEType() string {
	switch f {
	case PBMText, PBMBinary:
		return "image/x-portable-bitmap"
	case PGMText, PGMBinary:
		return "image/x-portable-graymap"
	case PPMText, PPMBinary:
		return "image/x-portable-pixmap"
	case PFMBinary:
		return "image/x-portable-floatmap"
	}
	return "application/octet-stream"
}
