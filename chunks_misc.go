package pngio

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"time"
)

// PHYSChunk records the intended physical pixel size or aspect ratio:
// pixels per unit on each axis and a unit flag (0 = unspecified,
// 1 = meter).
type PHYSChunk struct {
	PixelsPerUnitX uint32
	PixelsPerUnitY uint32
	Unit           uint8
}

func (c *PHYSChunk) ID() ChunkID { return IDpHYs }

func (c *PHYSChunk) ParseFrom(raw *ChunkRaw, _ *ImageInfo) error {
	if len(raw.Data) != 9 {
		return fmt.Errorf("%w: pHYs length %d, want 9", ErrMalformedChunk, len(raw.Data))
	}
	c.PixelsPerUnitX = binary.BigEndian.Uint32(raw.Data[0:4])
	c.PixelsPerUnitY = binary.BigEndian.Uint32(raw.Data[4:8])
	c.Unit = raw.Data[8]
	if c.Unit > 1 {
		return fmt.Errorf("%w: pHYs unit %d", ErrMalformedChunk, c.Unit)
	}
	return nil
}

func (c *PHYSChunk) Serialize() (*ChunkRaw, error) {
	d := make([]byte, 9)
	binary.BigEndian.PutUint32(d[0:4], c.PixelsPerUnitX)
	binary.BigEndian.PutUint32(d[4:8], c.PixelsPerUnitY)
	d[8] = c.Unit
	return NewChunkRaw(IDpHYs, d), nil
}

func (c *PHYSChunk) Ordering() Ordering   { return OrderBeforeData }
func (c *PHYSChunk) AllowsMultiple() bool { return false }

func (c *PHYSChunk) CloneFrom(other Chunk) error {
	o, ok := other.(*PHYSChunk)
	if !ok {
		return cloneErr(IDpHYs, other)
	}
	*c = *o
	return nil
}

// TIMEChunk records the last modification time, UTC, in a fixed 7-byte
// layout.
type TIMEChunk struct {
	Time time.Time
}

func (c *TIMEChunk) ID() ChunkID { return IDtIME }

func (c *TIMEChunk) ParseFrom(raw *ChunkRaw, _ *ImageInfo) error {
	if len(raw.Data) != 7 {
		return fmt.Errorf("%w: tIME length %d, want 7", ErrMalformedChunk, len(raw.Data))
	}
	d := raw.Data
	c.Time = time.Date(
		int(binary.BigEndian.Uint16(d[0:2])),
		time.Month(d[2]), int(d[3]),
		int(d[4]), int(d[5]), int(d[6]),
		0, time.UTC,
	)
	return nil
}

func (c *TIMEChunk) Serialize() (*ChunkRaw, error) {
	t := c.Time.UTC()
	d := make([]byte, 7)
	binary.BigEndian.PutUint16(d[0:2], uint16(t.Year()))
	d[2] = uint8(t.Month())
	d[3] = uint8(t.Day())
	d[4] = uint8(t.Hour())
	d[5] = uint8(t.Minute())
	d[6] = uint8(t.Second())
	return NewChunkRaw(IDtIME, d), nil
}

func (c *TIMEChunk) Ordering() Ordering   { return OrderNone }
func (c *TIMEChunk) AllowsMultiple() bool { return false }

func (c *TIMEChunk) CloneFrom(other Chunk) error {
	o, ok := other.(*TIMEChunk)
	if !ok {
		return cloneErr(IDtIME, other)
	}
	*c = *o
	return nil
}

// SPLTEntry is one suggested-palette sample.
type SPLTEntry struct {
	R, G, B, A uint16
	Frequency  uint16
}

// SPLTChunk is a suggested palette: a name, a sample depth (8 or 16),
// and a list of RGBA+frequency samples. Multiple sPLT chunks may appear
// as long as their names differ.
type SPLTChunk struct {
	Name        string
	SampleDepth uint8
	Entries     []SPLTEntry
}

func (c *SPLTChunk) ID() ChunkID { return IDsPLT }
func (c *SPLTChunk) Key() string { return c.Name }

func (c *SPLTChunk) ParseFrom(raw *ChunkRaw, _ *ImageInfo) error {
	sep := bytes.IndexByte(raw.Data, 0)
	if sep <= 0 || sep > 79 || sep+2 > len(raw.Data) {
		return fmt.Errorf("%w: sPLT name", ErrMalformedChunk)
	}
	c.Name = string(raw.Data[:sep])
	c.SampleDepth = raw.Data[sep+1]
	body := raw.Data[sep+2:]
	var stride int
	switch c.SampleDepth {
	case 8:
		stride = 6
	case 16:
		stride = 10
	default:
		return fmt.Errorf("%w: sPLT sample depth %d", ErrMalformedChunk, c.SampleDepth)
	}
	if len(body)%stride != 0 {
		return fmt.Errorf("%w: sPLT body length %d", ErrMalformedChunk, len(body))
	}
	c.Entries = make([]SPLTEntry, len(body)/stride)
	for i := range c.Entries {
		e := body[i*stride:]
		if c.SampleDepth == 8 {
			c.Entries[i] = SPLTEntry{
				R: uint16(e[0]), G: uint16(e[1]), B: uint16(e[2]), A: uint16(e[3]),
				Frequency: binary.BigEndian.Uint16(e[4:6]),
			}
		} else {
			c.Entries[i] = SPLTEntry{
				R: binary.BigEndian.Uint16(e[0:2]),
				G: binary.BigEndian.Uint16(e[2:4]),
				B: binary.BigEndian.Uint16(e[4:6]),
				A: binary.BigEndian.Uint16(e[6:8]),
				Frequency: binary.BigEndian.Uint16(e[8:10]),
			}
		}
	}
	return nil
}

func (c *SPLTChunk) Serialize() (*ChunkRaw, error) {
	if !validKeyword(c.Name) {
		return nil, fmt.Errorf("%w: sPLT name %q", ErrMalformedChunk, c.Name)
	}
	if c.SampleDepth != 8 && c.SampleDepth != 16 {
		return nil, fmt.Errorf("%w: sPLT sample depth %d", ErrMalformedChunk, c.SampleDepth)
	}
	var b bytes.Buffer
	b.WriteString(c.Name)
	b.WriteByte(0)
	b.WriteByte(c.SampleDepth)
	for _, e := range c.Entries {
		if c.SampleDepth == 8 {
			b.Write([]byte{uint8(e.R), uint8(e.G), uint8(e.B), uint8(e.A)})
		} else {
			var s [8]byte
			binary.BigEndian.PutUint16(s[0:2], e.R)
			binary.BigEndian.PutUint16(s[2:4], e.G)
			binary.BigEndian.PutUint16(s[4:6], e.B)
			binary.BigEndian.PutUint16(s[6:8], e.A)
			b.Write(s[:])
		}
		var f [2]byte
		binary.BigEndian.PutUint16(f[:], e.Frequency)
		b.Write(f[:])
	}
	return NewChunkRaw(IDsPLT, b.Bytes()), nil
}

func (c *SPLTChunk) Ordering() Ordering   { return OrderBeforeData }
func (c *SPLTChunk) AllowsMultiple() bool { return true }

func (c *SPLTChunk) CloneFrom(other Chunk) error {
	o, ok := other.(*SPLTChunk)
	if !ok {
		return cloneErr(IDsPLT, other)
	}
	c.Name = o.Name
	c.SampleDepth = o.SampleDepth
	c.Entries = append([]SPLTEntry(nil), o.Entries...)
	return nil
}

// UnknownChunk preserves an unregistered chunk verbatim so it can be
// copied to a new stream losslessly. Group remembers the ordering bucket
// the chunk was read in; a writer re-queueing the chunk prefers that
// placement.
type UnknownChunk struct {
	id    ChunkID
	Data  []byte
	Group int
}

// NewUnknownChunk wraps raw bytes under an arbitrary id.
func NewUnknownChunk(id ChunkID, data []byte) *UnknownChunk {
	return &UnknownChunk{id: id, Data: append([]byte(nil), data...)}
}

func (c *UnknownChunk) ID() ChunkID { return c.id }

func (c *UnknownChunk) ParseFrom(raw *ChunkRaw, _ *ImageInfo) error {
	c.id = raw.ID
	c.Data = append([]byte(nil), raw.Data...)
	return nil
}

func (c *UnknownChunk) Serialize() (*ChunkRaw, error) {
	return NewChunkRaw(c.id, c.Data), nil
}

func (c *UnknownChunk) Ordering() Ordering   { return OrderNone }
func (c *UnknownChunk) AllowsMultiple() bool { return true }

func (c *UnknownChunk) CloneFrom(other Chunk) error {
	o, ok := other.(*UnknownChunk)
	if !ok {
		return cloneErr(c.id, other)
	}
	c.id = o.id
	c.Data = append([]byte(nil), o.Data...)
	c.Group = o.Group
	return nil
}
