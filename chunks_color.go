package pngio

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// GAMAChunk carries the image gamma, encoded on the wire as
// gamma * 100000 in a 4-byte integer.
type GAMAChunk struct {
	Gamma float64
}

func (c *GAMAChunk) ID() ChunkID { return IDgAMA }

func (c *GAMAChunk) ParseFrom(raw *ChunkRaw, _ *ImageInfo) error {
	if len(raw.Data) != 4 {
		return fmt.Errorf("%w: gAMA length %d, want 4", ErrMalformedChunk, len(raw.Data))
	}
	c.Gamma = float64(binary.BigEndian.Uint32(raw.Data)) / 100000
	return nil
}

func (c *GAMAChunk) Serialize() (*ChunkRaw, error) {
	d := make([]byte, 4)
	binary.BigEndian.PutUint32(d, uint32(c.Gamma*100000+0.5))
	return NewChunkRaw(IDgAMA, d), nil
}

func (c *GAMAChunk) Ordering() Ordering   { return OrderBeforePalette }
func (c *GAMAChunk) AllowsMultiple() bool { return false }

func (c *GAMAChunk) CloneFrom(other Chunk) error {
	o, ok := other.(*GAMAChunk)
	if !ok {
		return cloneErr(IDgAMA, other)
	}
	*c = *o
	return nil
}

// CHRMChunk carries the chromaticities of the white point and the three
// primaries, each coordinate stored as value * 100000.
type CHRMChunk struct {
	WhiteX, WhiteY float64
	RedX, RedY     float64
	GreenX, GreenY float64
	BlueX, BlueY   float64
}

func (c *CHRMChunk) ID() ChunkID { return IDcHRM }

func (c *CHRMChunk) ParseFrom(raw *ChunkRaw, _ *ImageInfo) error {
	if len(raw.Data) != 32 {
		return fmt.Errorf("%w: cHRM length %d, want 32", ErrMalformedChunk, len(raw.Data))
	}
	v := func(i int) float64 {
		return float64(binary.BigEndian.Uint32(raw.Data[4*i:])) / 100000
	}
	c.WhiteX, c.WhiteY = v(0), v(1)
	c.RedX, c.RedY = v(2), v(3)
	c.GreenX, c.GreenY = v(4), v(5)
	c.BlueX, c.BlueY = v(6), v(7)
	return nil
}

func (c *CHRMChunk) Serialize() (*ChunkRaw, error) {
	d := make([]byte, 32)
	for i, f := range []float64{
		c.WhiteX, c.WhiteY, c.RedX, c.RedY, c.GreenX, c.GreenY, c.BlueX, c.BlueY,
	} {
		binary.BigEndian.PutUint32(d[4*i:], uint32(f*100000+0.5))
	}
	return NewChunkRaw(IDcHRM, d), nil
}

func (c *CHRMChunk) Ordering() Ordering   { return OrderBeforePalette }
func (c *CHRMChunk) AllowsMultiple() bool { return false }

func (c *CHRMChunk) CloneFrom(other Chunk) error {
	o, ok := other.(*CHRMChunk)
	if !ok {
		return cloneErr(IDcHRM, other)
	}
	*c = *o
	return nil
}

// SRGBChunk declares that the image conforms to the sRGB color space
// with the given rendering intent (0 to 3).
type SRGBChunk struct {
	Intent uint8
}

func (c *SRGBChunk) ID() ChunkID { return IDsRGB }

func (c *SRGBChunk) ParseFrom(raw *ChunkRaw, _ *ImageInfo) error {
	if len(raw.Data) != 1 {
		return fmt.Errorf("%w: sRGB length %d, want 1", ErrMalformedChunk, len(raw.Data))
	}
	if raw.Data[0] > 3 {
		return fmt.Errorf("%w: sRGB intent %d", ErrMalformedChunk, raw.Data[0])
	}
	c.Intent = raw.Data[0]
	return nil
}

func (c *SRGBChunk) Serialize() (*ChunkRaw, error) {
	return NewChunkRaw(IDsRGB, []byte{c.Intent}), nil
}

func (c *SRGBChunk) Ordering() Ordering   { return OrderBeforePalette }
func (c *SRGBChunk) AllowsMultiple() bool { return false }

func (c *SRGBChunk) CloneFrom(other Chunk) error {
	o, ok := other.(*SRGBChunk)
	if !ok {
		return cloneErr(IDsRGB, other)
	}
	*c = *o
	return nil
}

// SBITChunk records the significant bits per channel, one byte per
// channel of the color mode (palette entries count as RGB).
type SBITChunk struct {
	Bits []uint8
}

// sbitChannels returns how many significant-bits bytes the mode carries.
func sbitChannels(mode ColorMode) int {
	if mode == ModePaletted {
		return 3
	}
	return mode.channels()
}

func (c *SBITChunk) ID() ChunkID { return IDsBIT }

func (c *SBITChunk) ParseFrom(raw *ChunkRaw, info *ImageInfo) error {
	if info != nil {
		if want := sbitChannels(info.Mode()); len(raw.Data) != want {
			return fmt.Errorf("%w: sBIT length %d, want %d", ErrMalformedChunk, len(raw.Data), want)
		}
	} else if len(raw.Data) < 1 || len(raw.Data) > 4 {
		return fmt.Errorf("%w: sBIT length %d", ErrMalformedChunk, len(raw.Data))
	}
	c.Bits = append([]uint8(nil), raw.Data...)
	return nil
}

func (c *SBITChunk) Serialize() (*ChunkRaw, error) {
	if len(c.Bits) < 1 || len(c.Bits) > 4 {
		return nil, fmt.Errorf("%w: sBIT with %d entries", ErrMalformedChunk, len(c.Bits))
	}
	return NewChunkRaw(IDsBIT, append([]uint8(nil), c.Bits...)), nil
}

func (c *SBITChunk) Ordering() Ordering   { return OrderBeforePalette }
func (c *SBITChunk) AllowsMultiple() bool { return false }

func (c *SBITChunk) CloneFrom(other Chunk) error {
	o, ok := other.(*SBITChunk)
	if !ok {
		return cloneErr(IDsBIT, other)
	}
	c.Bits = append([]uint8(nil), o.Bits...)
	return nil
}

// ICCPChunk embeds an ICC color profile: a profile name, a zero
// separator, a compression method byte (always 0, deflate), and the
// deflated profile bytes.
type ICCPChunk struct {
	Name    string
	Profile []byte // decompressed profile bytes
}

func (c *ICCPChunk) ID() ChunkID { return IDiCCP }

func (c *ICCPChunk) ParseFrom(raw *ChunkRaw, _ *ImageInfo) error {
	sep := bytes.IndexByte(raw.Data, 0)
	if sep <= 0 || sep > 79 || sep+2 > len(raw.Data) {
		return fmt.Errorf("%w: iCCP profile name", ErrMalformedChunk)
	}
	if method := raw.Data[sep+1]; method != 0 {
		return fmt.Errorf("%w: iCCP compression method %d", ErrMalformedChunk, method)
	}
	profile, err := inflateBytes(raw.Data[sep+2:])
	if err != nil {
		return fmt.Errorf("%w: iCCP profile: %v", ErrMalformedChunk, err)
	}
	c.Name = string(raw.Data[:sep])
	c.Profile = profile
	return nil
}

func (c *ICCPChunk) Serialize() (*ChunkRaw, error) {
	if c.Name == "" || len(c.Name) > 79 {
		return nil, fmt.Errorf("%w: iCCP profile name %q", ErrMalformedChunk, c.Name)
	}
	var b bytes.Buffer
	b.WriteString(c.Name)
	b.WriteByte(0)
	b.WriteByte(0) // deflate
	b.Write(deflateBytes(c.Profile))
	return NewChunkRaw(IDiCCP, b.Bytes()), nil
}

func (c *ICCPChunk) Ordering() Ordering   { return OrderBeforePalette }
func (c *ICCPChunk) AllowsMultiple() bool { return false }

func (c *ICCPChunk) CloneFrom(other Chunk) error {
	o, ok := other.(*ICCPChunk)
	if !ok {
		return cloneErr(IDiCCP, other)
	}
	c.Name = o.Name
	c.Profile = append([]byte(nil), o.Profile...)
	return nil
}

// TRNSChunk carries transparency: a 16-bit transparent sample for gray,
// a 16-bit RGB triple for truecolor, or per-entry alpha values for
// paletted images. Mode selects which shape is on the wire.
type TRNSChunk struct {
	Mode         ColorMode
	Gray         uint16
	R, G, B      uint16
	PaletteAlpha []uint8
}

func (c *TRNSChunk) ID() ChunkID { return IDtRNS }

func (c *TRNSChunk) ParseFrom(raw *ChunkRaw, info *ImageInfo) error {
	mode := c.Mode
	if info != nil {
		mode = info.Mode()
	}
	c.Mode = mode
	d := raw.Data
	switch mode {
	case ModeGray:
		if len(d) != 2 {
			return fmt.Errorf("%w: tRNS length %d for gray, want 2", ErrMalformedChunk, len(d))
		}
		c.Gray = binary.BigEndian.Uint16(d)
	case ModeRGB:
		if len(d) != 6 {
			return fmt.Errorf("%w: tRNS length %d for rgb, want 6", ErrMalformedChunk, len(d))
		}
		c.R = binary.BigEndian.Uint16(d[0:2])
		c.G = binary.BigEndian.Uint16(d[2:4])
		c.B = binary.BigEndian.Uint16(d[4:6])
	case ModePaletted:
		if len(d) == 0 || len(d) > 256 {
			return fmt.Errorf("%w: tRNS length %d for paletted", ErrMalformedChunk, len(d))
		}
		c.PaletteAlpha = append([]uint8(nil), d...)
	default:
		return fmt.Errorf("%w: tRNS with %s color", ErrMalformedChunk, mode)
	}
	return nil
}

func (c *TRNSChunk) Serialize() (*ChunkRaw, error) {
	switch c.Mode {
	case ModeGray:
		d := make([]byte, 2)
		binary.BigEndian.PutUint16(d, c.Gray)
		return NewChunkRaw(IDtRNS, d), nil
	case ModeRGB:
		d := make([]byte, 6)
		binary.BigEndian.PutUint16(d[0:2], c.R)
		binary.BigEndian.PutUint16(d[2:4], c.G)
		binary.BigEndian.PutUint16(d[4:6], c.B)
		return NewChunkRaw(IDtRNS, d), nil
	case ModePaletted:
		if len(c.PaletteAlpha) == 0 || len(c.PaletteAlpha) > 256 {
			return nil, fmt.Errorf("%w: tRNS with %d alpha entries", ErrMalformedChunk, len(c.PaletteAlpha))
		}
		return NewChunkRaw(IDtRNS, append([]uint8(nil), c.PaletteAlpha...)), nil
	}
	return nil, fmt.Errorf("%w: tRNS with %s color", ErrMalformedChunk, c.Mode)
}

func (c *TRNSChunk) Ordering() Ordering   { return OrderAfterPaletteBeforeData }
func (c *TRNSChunk) AllowsMultiple() bool { return false }

func (c *TRNSChunk) CloneFrom(other Chunk) error {
	o, ok := other.(*TRNSChunk)
	if !ok {
		return cloneErr(IDtRNS, other)
	}
	alpha := append([]uint8(nil), o.PaletteAlpha...)
	*c = *o
	c.PaletteAlpha = alpha
	return nil
}

// BKGDChunk suggests a background color: a gray level, an RGB triple, or
// a palette index depending on the color mode.
type BKGDChunk struct {
	Mode    ColorMode
	Gray    uint16
	R, G, B uint16
	Index   uint8
}

func (c *BKGDChunk) ID() ChunkID { return IDbKGD }

func (c *BKGDChunk) ParseFrom(raw *ChunkRaw, info *ImageInfo) error {
	mode := c.Mode
	if info != nil {
		mode = info.Mode()
	}
	c.Mode = mode
	d := raw.Data
	switch mode {
	case ModeGray, ModeGrayAlpha:
		if len(d) != 2 {
			return fmt.Errorf("%w: bKGD length %d for gray, want 2", ErrMalformedChunk, len(d))
		}
		c.Gray = binary.BigEndian.Uint16(d)
	case ModeRGB, ModeRGBA:
		if len(d) != 6 {
			return fmt.Errorf("%w: bKGD length %d for rgb, want 6", ErrMalformedChunk, len(d))
		}
		c.R = binary.BigEndian.Uint16(d[0:2])
		c.G = binary.BigEndian.Uint16(d[2:4])
		c.B = binary.BigEndian.Uint16(d[4:6])
	case ModePaletted:
		if len(d) != 1 {
			return fmt.Errorf("%w: bKGD length %d for paletted, want 1", ErrMalformedChunk, len(d))
		}
		c.Index = d[0]
	default:
		return fmt.Errorf("%w: bKGD with color type %d", ErrMalformedChunk, uint8(mode))
	}
	return nil
}

func (c *BKGDChunk) Serialize() (*ChunkRaw, error) {
	switch c.Mode {
	case ModeGray, ModeGrayAlpha:
		d := make([]byte, 2)
		binary.BigEndian.PutUint16(d, c.Gray)
		return NewChunkRaw(IDbKGD, d), nil
	case ModeRGB, ModeRGBA:
		d := make([]byte, 6)
		binary.BigEndian.PutUint16(d[0:2], c.R)
		binary.BigEndian.PutUint16(d[2:4], c.G)
		binary.BigEndian.PutUint16(d[4:6], c.B)
		return NewChunkRaw(IDbKGD, d), nil
	case ModePaletted:
		return NewChunkRaw(IDbKGD, []byte{c.Index}), nil
	}
	return nil, fmt.Errorf("%w: bKGD with color type %d", ErrMalformedChunk, uint8(c.Mode))
}

func (c *BKGDChunk) Ordering() Ordering   { return OrderAfterPaletteBeforeData }
func (c *BKGDChunk) AllowsMultiple() bool { return false }

func (c *BKGDChunk) CloneFrom(other Chunk) error {
	o, ok := other.(*BKGDChunk)
	if !ok {
		return cloneErr(IDbKGD, other)
	}
	*c = *o
	return nil
}

// HISTChunk is the palette histogram: one 16-bit approximate usage count
// per palette entry.
type HISTChunk struct {
	Counts []uint16
}

func (c *HISTChunk) ID() ChunkID { return IDhIST }

func (c *HISTChunk) ParseFrom(raw *ChunkRaw, _ *ImageInfo) error {
	if len(raw.Data) == 0 || len(raw.Data)%2 != 0 || len(raw.Data) > 2*256 {
		return fmt.Errorf("%w: hIST length %d", ErrMalformedChunk, len(raw.Data))
	}
	c.Counts = make([]uint16, len(raw.Data)/2)
	for i := range c.Counts {
		c.Counts[i] = binary.BigEndian.Uint16(raw.Data[2*i:])
	}
	return nil
}

func (c *HISTChunk) Serialize() (*ChunkRaw, error) {
	if len(c.Counts) == 0 || len(c.Counts) > 256 {
		return nil, fmt.Errorf("%w: hIST with %d entries", ErrMalformedChunk, len(c.Counts))
	}
	d := make([]byte, 2*len(c.Counts))
	for i, v := range c.Counts {
		binary.BigEndian.PutUint16(d[2*i:], v)
	}
	return NewChunkRaw(IDhIST, d), nil
}

func (c *HISTChunk) Ordering() Ordering   { return OrderAfterPaletteBeforeData }
func (c *HISTChunk) AllowsMultiple() bool { return false }

func (c *HISTChunk) CloneFrom(other Chunk) error {
	o, ok := other.(*HISTChunk)
	if !ok {
		return cloneErr(IDhIST, other)
	}
	c.Counts = append([]uint16(nil), o.Counts...)
	return nil
}
