package pngio

import (
	"encoding/binary"
	"fmt"
	"image/color"
)

// IHDRChunk is the image header: the fixed 13-byte layout carrying the
// dimensions, bit depth, color type, and the compression, filter, and
// interlace method bytes.
type IHDRChunk struct {
	Width       int
	Height      int
	BitDepth    int
	ColorType   ColorMode
	Compression uint8 // must be 0
	Filter      uint8 // must be 0
	Interlace   uint8 // 0 = none, the only method this codec supports
}

// NewIHDRChunk builds the header chunk for an image descriptor.
func NewIHDRChunk(info *ImageInfo) *IHDRChunk {
	return &IHDRChunk{
		Width:     info.Width(),
		Height:    info.Height(),
		BitDepth:  info.BitDepth(),
		ColorType: info.Mode(),
	}
}

func (c *IHDRChunk) ID() ChunkID { return IDIHDR }

func (c *IHDRChunk) ParseFrom(raw *ChunkRaw, _ *ImageInfo) error {
	if len(raw.Data) != 13 {
		return fmt.Errorf("%w: IHDR length %d, want 13", ErrMalformedChunk, len(raw.Data))
	}
	d := raw.Data
	c.Width = int(binary.BigEndian.Uint32(d[0:4]))
	c.Height = int(binary.BigEndian.Uint32(d[4:8]))
	c.BitDepth = int(d[8])
	c.ColorType = ColorMode(d[9])
	c.Compression = d[10]
	c.Filter = d[11]
	c.Interlace = d[12]
	if c.Compression != 0 {
		return fmt.Errorf("%w: IHDR compression method %d", ErrMalformedChunk, c.Compression)
	}
	if c.Filter != 0 {
		return fmt.Errorf("%w: IHDR filter method %d", ErrMalformedChunk, c.Filter)
	}
	if c.Interlace > 1 {
		return fmt.Errorf("%w: IHDR interlace method %d", ErrMalformedChunk, c.Interlace)
	}
	return nil
}

func (c *IHDRChunk) Serialize() (*ChunkRaw, error) {
	d := make([]byte, 13)
	binary.BigEndian.PutUint32(d[0:4], uint32(c.Width))
	binary.BigEndian.PutUint32(d[4:8], uint32(c.Height))
	d[8] = uint8(c.BitDepth)
	d[9] = uint8(c.ColorType)
	d[10] = c.Compression
	d[11] = c.Filter
	d[12] = c.Interlace
	return NewChunkRaw(IDIHDR, d), nil
}

func (c *IHDRChunk) Ordering() Ordering   { return OrderBeforePalette }
func (c *IHDRChunk) AllowsMultiple() bool { return false }

func (c *IHDRChunk) CloneFrom(other Chunk) error {
	o, ok := other.(*IHDRChunk)
	if !ok {
		return cloneErr(IDIHDR, other)
	}
	*c = *o
	return nil
}

// ImageInfo converts the parsed header to the shared image descriptor,
// rejecting interlaced images and invalid depth/mode combinations.
func (c *IHDRChunk) ImageInfo() (*ImageInfo, error) {
	if c.Interlace != 0 {
		return nil, fmt.Errorf("%w: interlaced image", ErrUnsupported)
	}
	return NewImageInfo(c.Width, c.Height, c.BitDepth, c.ColorType)
}

// PLTEChunk is the palette: 1 to 256 RGB entries.
type PLTEChunk struct {
	Colors []color.RGBA
}

func (c *PLTEChunk) ID() ChunkID { return IDPLTE }

func (c *PLTEChunk) ParseFrom(raw *ChunkRaw, _ *ImageInfo) error {
	n := len(raw.Data)
	if n == 0 || n%3 != 0 || n > 3*256 {
		return fmt.Errorf("%w: PLTE length %d", ErrMalformedChunk, n)
	}
	c.Colors = make([]color.RGBA, n/3)
	for i := range c.Colors {
		c.Colors[i] = color.RGBA{
			R: raw.Data[3*i],
			G: raw.Data[3*i+1],
			B: raw.Data[3*i+2],
			A: 0xff,
		}
	}
	return nil
}

func (c *PLTEChunk) Serialize() (*ChunkRaw, error) {
	if len(c.Colors) == 0 || len(c.Colors) > 256 {
		return nil, fmt.Errorf("%w: PLTE with %d entries", ErrMalformedChunk, len(c.Colors))
	}
	d := make([]byte, 3*len(c.Colors))
	for i, e := range c.Colors {
		d[3*i] = e.R
		d[3*i+1] = e.G
		d[3*i+2] = e.B
	}
	return NewChunkRaw(IDPLTE, d), nil
}

func (c *PLTEChunk) Ordering() Ordering   { return OrderBeforeData }
func (c *PLTEChunk) AllowsMultiple() bool { return false }

func (c *PLTEChunk) CloneFrom(other Chunk) error {
	o, ok := other.(*PLTEChunk)
	if !ok {
		return cloneErr(IDPLTE, other)
	}
	c.Colors = append([]color.RGBA(nil), o.Colors...)
	return nil
}

// IDATChunk is one image-data chunk. The stream codec normally frames
// IDAT directly from the compressed pixel stream; this variant exists so
// image-data chunks read back are still typed and inspectable.
type IDATChunk struct {
	Raw []byte
}

func (c *IDATChunk) ID() ChunkID { return IDIDAT }

func (c *IDATChunk) ParseFrom(raw *ChunkRaw, _ *ImageInfo) error {
	c.Raw = append([]byte(nil), raw.Data...)
	return nil
}

func (c *IDATChunk) Serialize() (*ChunkRaw, error) {
	return NewChunkRaw(IDIDAT, c.Raw), nil
}

func (c *IDATChunk) Ordering() Ordering   { return OrderNone }
func (c *IDATChunk) AllowsMultiple() bool { return true }

func (c *IDATChunk) CloneFrom(other Chunk) error {
	o, ok := other.(*IDATChunk)
	if !ok {
		return cloneErr(IDIDAT, other)
	}
	c.Raw = append([]byte(nil), o.Raw...)
	return nil
}

// IENDChunk is the zero-length end-of-stream marker.
type IENDChunk struct{}

func (c *IENDChunk) ID() ChunkID { return IDIEND }

func (c *IENDChunk) ParseFrom(raw *ChunkRaw, _ *ImageInfo) error {
	if len(raw.Data) != 0 {
		return fmt.Errorf("%w: IEND length %d, want 0", ErrMalformedChunk, len(raw.Data))
	}
	return nil
}

func (c *IENDChunk) Serialize() (*ChunkRaw, error) {
	return NewChunkRaw(IDIEND, nil), nil
}

func (c *IENDChunk) Ordering() Ordering   { return OrderNone }
func (c *IENDChunk) AllowsMultiple() bool { return false }

func (c *IENDChunk) CloneFrom(other Chunk) error {
	if _, ok := other.(*IENDChunk); !ok {
		return cloneErr(IDIEND, other)
	}
	return nil
}
