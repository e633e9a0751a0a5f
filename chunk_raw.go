package pngio

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/snksoft/crc"
)

// ChunkID is the 4-byte ASCII chunk type identifier. The case of each
// letter carries the chunk's property bits.
type ChunkID [4]byte

// Chunk ids defined by the PNG specification.
var (
	IDIHDR = ChunkID{'I', 'H', 'D', 'R'}
	IDPLTE = ChunkID{'P', 'L', 'T', 'E'}
	IDIDAT = ChunkID{'I', 'D', 'A', 'T'}
	IDIEND = ChunkID{'I', 'E', 'N', 'D'}
	IDtRNS = ChunkID{'t', 'R', 'N', 'S'}
	IDgAMA = ChunkID{'g', 'A', 'M', 'A'}
	IDcHRM = ChunkID{'c', 'H', 'R', 'M'}
	IDsBIT = ChunkID{'s', 'B', 'I', 'T'}
	IDsRGB = ChunkID{'s', 'R', 'G', 'B'}
	IDiCCP = ChunkID{'i', 'C', 'C', 'P'}
	IDbKGD = ChunkID{'b', 'K', 'G', 'D'}
	IDhIST = ChunkID{'h', 'I', 'S', 'T'}
	IDpHYs = ChunkID{'p', 'H', 'Y', 's'}
	IDsPLT = ChunkID{'s', 'P', 'L', 'T'}
	IDtIME = ChunkID{'t', 'I', 'M', 'E'}
	IDtEXt = ChunkID{'t', 'E', 'X', 't'}
	IDzTXt = ChunkID{'z', 'T', 'X', 't'}
	IDiTXt = ChunkID{'i', 'T', 'X', 't'}
)

// ChunkIDOf converts a 4-character string to a ChunkID. It panics if the
// string is not exactly 4 bytes; ids are program constants, not input.
func ChunkIDOf(s string) ChunkID {
	if len(s) != 4 {
		panic("pngio: chunk id must be 4 bytes: " + s)
	}
	return ChunkID{s[0], s[1], s[2], s[3]}
}

// String returns the id as a 4-character string.
func (id ChunkID) String() string { return string(id[:]) }

// Critical reports whether the chunk is required for decoding (first
// letter uppercase).
func (id ChunkID) Critical() bool { return id[0]&0x20 == 0 }

// Public reports whether the chunk type is defined by the PNG spec or a
// registered extension (second letter uppercase).
func (id ChunkID) Public() bool { return id[1]&0x20 == 0 }

// SafeToCopy reports whether an editor that does not recognize the chunk
// may copy it to a modified image (fourth letter lowercase).
func (id ChunkID) SafeToCopy() bool { return id[3]&0x20 != 0 }

// ChunkRaw is the byte-level representation of one chunk: its payload
// length, type id, data, and trailing CRC. Instances are short-lived;
// one is created for every chunk read or written and never reused.
type ChunkRaw struct {
	Length int
	ID     ChunkID
	Data   []byte
	CRC    uint32
}

// NewChunkRaw frames a payload as a raw chunk and computes its CRC.
// The data slice is retained, not copied.
func NewChunkRaw(id ChunkID, data []byte) *ChunkRaw {
	return &ChunkRaw{
		Length: len(data),
		ID:     id,
		Data:   data,
		CRC:    chunkCRC(id, data),
	}
}

// chunkCRC computes the CRC32 over the chunk type id followed by the
// chunk data, the checksum PNG records after each chunk payload.
func chunkCRC(id ChunkID, data []byte) uint32 {
	h := crc.NewHash(crc.CRC32)
	h.Write(id[:])
	h.Write(data)
	return uint32(h.CRC())
}

// ReadChunkRaw consumes the data and CRC of one chunk, exactly length+4
// bytes. The caller has already consumed the 8-byte length+type prefix
// and passes the decoded values in. With checkCRC set, a checksum
// mismatch fails with ErrBadCRC; otherwise the recorded CRC is kept
// without validation.
func ReadChunkRaw(r io.Reader, length int, id ChunkID, checkCRC bool) (*ChunkRaw, error) {
	if length < 0 {
		return nil, fmt.Errorf("%w: %s length %d", ErrMalformedChunk, id, length)
	}
	data := make([]byte, length)
	if _, err := io.ReadFull(r, data); err != nil {
		return nil, fmt.Errorf("pngio: reading %s data: %w", id, err)
	}
	var tail [4]byte
	if _, err := io.ReadFull(r, tail[:]); err != nil {
		return nil, fmt.Errorf("pngio: reading %s crc: %w", id, err)
	}
	got := binary.BigEndian.Uint32(tail[:])
	if checkCRC {
		if want := chunkCRC(id, data); got != want {
			return nil, fmt.Errorf("%w: %s has %08x, computed %08x", ErrBadCRC, id, got, want)
		}
	}
	return &ChunkRaw{Length: length, ID: id, Data: data, CRC: got}, nil
}

// WriteTo emits the full chunk frame: length, type id, data, and the
// CRC32 over type id and data, all integers big-endian. It implements
// io.WriterTo.
func (c *ChunkRaw) WriteTo(w io.Writer) (int64, error) {
	if c.Length != len(c.Data) {
		return 0, fmt.Errorf("%w: %s declares %d bytes, has %d", ErrMalformedChunk, c.ID, c.Length, len(c.Data))
	}
	var head [8]byte
	binary.BigEndian.PutUint32(head[:4], uint32(c.Length))
	copy(head[4:], c.ID[:])
	var tail [4]byte
	binary.BigEndian.PutUint32(tail[:], chunkCRC(c.ID, c.Data))

	var n int64
	for _, buf := range [][]byte{head[:], c.Data, tail[:]} {
		m, err := w.Write(buf)
		n += int64(m)
		if err != nil {
			return n, fmt.Errorf("pngio: writing %s: %w", c.ID, err)
		}
	}
	return n, nil
}
