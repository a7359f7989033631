package ktex

import "errors"

var (
	// ErrFormatMismatch is returned when the input does not start with the
	// KTEX magic marker and therefore is not this container type at all.
	ErrFormatMismatch = errors.New("not a KTEX container")

	// ErrMalformedHeader is returned when a header field holds an integer
	// with no matching enumerant, or when a field no longer fits its bit
	// width while packing.
	ErrMalformedHeader = errors.New("malformed header")

	// ErrTruncatedData is returned when fewer bytes remain than a declared
	// length requires.
	ErrTruncatedData = errors.New("truncated data")

	// ErrUnsupportedPixelFormat is returned when compression or
	// decompression is requested for a pixel format outside the five
	// implemented kinds, notably the explicit Unknown enumerant.
	ErrUnsupportedPixelFormat = errors.New("unsupported pixel format")

	// ErrInvalidBufferShape is returned when a caller-supplied pixel buffer
	// does not match width*height*4 bytes.
	ErrInvalidBufferShape = errors.New("pixel buffer does not match width*height*4")
)
