package netpbm

import "errors"

// Decode errors. They are wrapped with details, so test with errors.Is.
var (
	ErrFormatMismatch    = errors.New("netpbm: format mismatch")
	ErrMalformedHeader   = errors.New("netpbm: malformed header")
	ErrMalformedData     = errors.New("netpbm: malformed sample data")
	ErrTruncatedData     = errors.New("netpbm: truncated data")
	ErrUnsupportedFormat = errors.New("netpbm: unsupported format")
)

// StreamError records a failed I/O operation on the underlying stream.
type StreamError struct {
	Op   string // "open", "read", "write" or "close"
	Path string // empty for plain readers and writers
	Err  error
}

func (e *StreamError) Error() string {
	if e.Path == "" {
		return "netpbm: " + e.Op + ": " + e.Err.Error()
	}
	return "netpbm: " + e.Op + " " + e.Path + ": " + e.Err.Error()
}

func (e *StreamError) Unwrap() error {
	return e.Err
}
