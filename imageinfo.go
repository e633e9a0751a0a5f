package pngio

import "fmt"

// ColorMode identifies the PNG color model. The numeric values are the
// color-type byte of the IHDR chunk.
type ColorMode uint8

// Color modes.
const (
	// ModeGray is grayscale, one channel.
	ModeGray ColorMode = 0

	// ModeRGB is truecolor, three channels.
	ModeRGB ColorMode = 2

	// ModePaletted is indexed color, one channel of palette indexes.
	ModePaletted ColorMode = 3

	// ModeGrayAlpha is grayscale with alpha, two channels.
	ModeGrayAlpha ColorMode = 4

	// ModeRGBA is truecolor with alpha, four channels.
	ModeRGBA ColorMode = 6
)

// String returns the conventional name of the color mode.
func (m ColorMode) String() string {
	switch m {
	case ModeGray:
		return "gray"
	case ModeRGB:
		return "rgb"
	case ModePaletted:
		return "paletted"
	case ModeGrayAlpha:
		return "gray+alpha"
	case ModeRGBA:
		return "rgba"
	}
	return fmt.Sprintf("colormode(%d)", uint8(m))
}

// channels returns the samples per pixel for the mode, or 0 if the mode
// is not a valid PNG color type.
func (m ColorMode) channels() int {
	switch m {
	case ModeGray, ModePaletted:
		return 1
	case ModeGrayAlpha:
		return 2
	case ModeRGB:
		return 3
	case ModeRGBA:
		return 4
	}
	return 0
}

// validDepth reports whether the bit depth is legal for the mode.
func (m ColorMode) validDepth(depth int) bool {
	switch m {
	case ModeGray:
		return depth == 1 || depth == 2 || depth == 4 || depth == 8 || depth == 16
	case ModePaletted:
		return depth == 1 || depth == 2 || depth == 4 || depth == 8
	case ModeRGB, ModeGrayAlpha, ModeRGBA:
		return depth == 8 || depth == 16
	}
	return false
}

// ImageInfo is the immutable descriptor of one image: dimensions, bit
// depth, color mode, and the derived per-row byte math every other part
// of the codec shares. Construct it with NewImageInfo; a single instance
// is shared by reference for the lifetime of one read or write session.
type ImageInfo struct {
	width    int
	height   int
	bitDepth int
	mode     ColorMode

	channels    int
	bitsPerPix  int
	bytesPerPix int // filter stride, >= 1
	bytesPerRow int
}

// NewImageInfo validates the dimensions and the bit-depth/color-mode
// combination and returns the descriptor. Invalid combinations, zero or
// negative dimensions, and dimensions beyond 2^31-1 fail with
// ErrUnsupported.
func NewImageInfo(width, height, bitDepth int, mode ColorMode) (*ImageInfo, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: image dimensions %dx%d", ErrUnsupported, width, height)
	}
	if int64(width) > 0x7fffffff || int64(height) > 0x7fffffff {
		return nil, fmt.Errorf("%w: image dimensions %dx%d", ErrUnsupported, width, height)
	}
	ch := mode.channels()
	if ch == 0 {
		return nil, fmt.Errorf("%w: color type %d", ErrUnsupported, uint8(mode))
	}
	if !mode.validDepth(bitDepth) {
		return nil, fmt.Errorf("%w: bit depth %d with %s color", ErrUnsupported, bitDepth, mode)
	}
	bpp := bitDepth * ch
	return &ImageInfo{
		width:       width,
		height:      height,
		bitDepth:    bitDepth,
		mode:        mode,
		channels:    ch,
		bitsPerPix:  bpp,
		bytesPerPix: (bpp + 7) / 8,
		bytesPerRow: (width*bpp + 7) / 8,
	}, nil
}

// Width returns the image width in pixels.
func (n *ImageInfo) Width() int { return n.width }

// Height returns the image height in pixels.
func (n *ImageInfo) Height() int { return n.height }

// BitDepth returns the bits per sample (1, 2, 4, 8, or 16).
func (n *ImageInfo) BitDepth() int { return n.bitDepth }

// Mode returns the color mode.
func (n *ImageInfo) Mode() ColorMode { return n.mode }

// Channels returns the samples per pixel (1 to 4).
func (n *ImageInfo) Channels() int { return n.channels }

// HasAlpha reports whether pixels carry an alpha channel.
func (n *ImageInfo) HasAlpha() bool {
	return n.mode == ModeGrayAlpha || n.mode == ModeRGBA
}

// HasPalette reports whether pixels are palette indexes.
func (n *ImageInfo) HasPalette() bool { return n.mode == ModePaletted }

// Grayscale reports whether the image is grayscale (with or without
// alpha).
func (n *ImageInfo) Grayscale() bool {
	return n.mode == ModeGray || n.mode == ModeGrayAlpha
}

// BytesPerRow returns the packed size of one raw scanline,
// ceil(width*bitDepth*channels/8). This does not include the filter-type
// byte that prefixes each row on the wire.
func (n *ImageInfo) BytesPerRow() int { return n.bytesPerRow }

// BytesPerPixel returns the filter stride: the byte distance between a
// pixel and its left neighbor, rounded up to at least 1 for sub-byte
// depths.
func (n *ImageInfo) BytesPerPixel() int { return n.bytesPerPix }

// Samples returns the number of samples in one row (width * channels).
func (n *ImageInfo) Samples() int { return n.width * n.channels }

// Equal reports whether two descriptors describe the same image shape.
func (n *ImageInfo) Equal(o *ImageInfo) bool {
	if n == nil || o == nil {
		return n == o
	}
	return n.width == o.width && n.height == o.height &&
		n.bitDepth == o.bitDepth && n.mode == o.mode
}
