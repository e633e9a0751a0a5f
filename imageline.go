package pngio

import "fmt"

// ImageLine is one scanline of raw pixel bytes: post-unfiltering,
// pre-channel-interpretation, packed at the image bit depth. A Reader
// hands ownership of each returned line to the caller; a Writer reads
// from the line only during the WriteRow call.
type ImageLine struct {
	// Row is the scanline index, 0 at the top.
	Row int

	// Pix holds the packed row bytes, length ImageInfo.BytesPerRow().
	Pix []byte

	info *ImageInfo
}

// NewImageLine allocates a zeroed line for the image shape.
func NewImageLine(info *ImageInfo) *ImageLine {
	return &ImageLine{Pix: make([]byte, info.BytesPerRow()), info: info}
}

// Info returns the image descriptor the line was sized for.
func (l *ImageLine) Info() *ImageInfo { return l.info }

// Sample returns the i-th sample of the row (i ranges over
// width*channels), unpacking sub-byte depths and joining 16-bit sample
// halves.
func (l *ImageLine) Sample(i int) uint16 {
	d := l.info.bitDepth
	switch d {
	case 8:
		return uint16(l.Pix[i])
	case 16:
		return uint16(l.Pix[2*i])<<8 | uint16(l.Pix[2*i+1])
	default:
		perByte := 8 / d
		b := l.Pix[i/perByte]
		shift := 8 - d - (i%perByte)*d
		mask := byte(1<<d - 1)
		return uint16(b >> shift & mask)
	}
}

// SetSample stores the i-th sample of the row, packing sub-byte depths.
// Values are truncated to the bit depth.
func (l *ImageLine) SetSample(i int, v uint16) {
	d := l.info.bitDepth
	switch d {
	case 8:
		l.Pix[i] = byte(v)
	case 16:
		l.Pix[2*i] = byte(v >> 8)
		l.Pix[2*i+1] = byte(v)
	default:
		perByte := 8 / d
		idx := i / perByte
		shift := 8 - d - (i%perByte)*d
		mask := byte(1<<d-1) << shift
		l.Pix[idx] = l.Pix[idx]&^mask | byte(v)<<shift&mask
	}
}

// checkLine verifies that a caller-supplied line matches the session's
// image shape.
func checkLine(l *ImageLine, info *ImageInfo) error {
	if l == nil || len(l.Pix) != info.BytesPerRow() {
		return fmt.Errorf("%w: line sized for a different image", ErrSequenceViolation)
	}
	return nil
}
