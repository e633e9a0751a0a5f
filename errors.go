package pngio

import "errors"

// Errors reported by the codec. All of them are fatal for the session in
// which they occur: a Reader or Writer that returned one of these must be
// discarded. Callers match with errors.Is; most errors are returned
// wrapped with position or chunk context.
var (
	// ErrNotPNG means the stream does not start with the 8-byte PNG
	// signature.
	ErrNotPNG = errors.New("pngio: not a PNG stream")

	// ErrBadCRC means a chunk's recorded CRC32 does not match the
	// checksum recomputed over its type and data bytes.
	ErrBadCRC = errors.New("pngio: chunk CRC mismatch")

	// ErrMalformedChunk means a known chunk type carried a payload that
	// violates its fixed layout (wrong length, bad field value).
	ErrMalformedChunk = errors.New("pngio: malformed chunk")

	// ErrProtocolViolation means a chunk ordering, multiplicity, or
	// criticality rule was violated while writing.
	ErrProtocolViolation = errors.New("pngio: chunk protocol violation")

	// ErrSequenceViolation means rows were read or written out of order,
	// or the session ended with rows missing.
	ErrSequenceViolation = errors.New("pngio: row sequence violation")

	// ErrUnsupported means the image uses a valid PNG feature this codec
	// does not implement (interlacing, or an invalid bit-depth/color-mode
	// combination).
	ErrUnsupported = errors.New("pngio: unsupported image feature")
)
