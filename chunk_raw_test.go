package pngio

import (
	"bytes"
	"encoding/binary"
	"errors"
	"hash/crc32"
	"testing"
)

// TestChunkCRC_MatchesIEEE cross-checks the chunk checksum against the
// standard library's IEEE CRC32 over the same bytes.
func TestChunkCRC_MatchesIEEE(t *testing.T) {
	data := []byte{1, 2, 3, 4, 5, 6, 7}
	want := crc32.ChecksumIEEE(append(append([]byte(nil), IDtEXt[:]...), data...))
	if got := chunkCRC(IDtEXt, data); got != want {
		t.Errorf("chunkCRC = %08x, want %08x", got, want)
	}
}

func TestChunkRaw_WriteReadRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	raw := NewChunkRaw(IDtEXt, []byte("Title\x00hello"))
	n, err := raw.WriteTo(&buf)
	if err != nil {
		t.Fatalf("WriteTo() = %v", err)
	}
	if want := int64(8 + raw.Length + 4); n != want {
		t.Errorf("WriteTo wrote %d bytes, want %d", n, want)
	}

	// Consume the length+type prefix the way the reader loop does.
	head := buf.Next(8)
	length := int(binary.BigEndian.Uint32(head[:4]))
	var id ChunkID
	copy(id[:], head[4:])

	got, err := ReadChunkRaw(&buf, length, id, true)
	if err != nil {
		t.Fatalf("ReadChunkRaw() = %v", err)
	}
	if got.ID != IDtEXt || !bytes.Equal(got.Data, raw.Data) || got.CRC != raw.CRC {
		t.Errorf("round-trip mismatch: got %+v, want %+v", got, raw)
	}
	if buf.Len() != 0 {
		t.Errorf("%d bytes left unconsumed", buf.Len())
	}
}

// TestChunkRaw_BadCRC flips one data byte and expects ErrBadCRC, unless
// checking is disabled.
func TestChunkRaw_BadCRC(t *testing.T) {
	var buf bytes.Buffer
	if _, err := NewChunkRaw(IDgAMA, []byte{0, 0, 0xb1, 0x8f}).WriteTo(&buf); err != nil {
		t.Fatal(err)
	}
	wire := buf.Bytes()
	wire[9] ^= 0x01 // flip a data byte

	_, err := ReadChunkRaw(bytes.NewReader(wire[8:]), 4, IDgAMA, true)
	if !errors.Is(err, ErrBadCRC) {
		t.Errorf("ReadChunkRaw(corrupt) = %v, want ErrBadCRC", err)
	}

	if _, err := ReadChunkRaw(bytes.NewReader(wire[8:]), 4, IDgAMA, false); err != nil {
		t.Errorf("ReadChunkRaw(corrupt, no check) = %v, want nil", err)
	}
}

func TestChunkRaw_Truncated(t *testing.T) {
	if _, err := ReadChunkRaw(bytes.NewReader([]byte{1, 2}), 10, IDtEXt, true); err == nil {
		t.Error("ReadChunkRaw(truncated) = nil, want error")
	}
}

func TestChunkID_Properties(t *testing.T) {
	tests := []struct {
		id         ChunkID
		critical   bool
		public     bool
		safeToCopy bool
	}{
		{IDIHDR, true, true, false},
		{IDPLTE, true, true, false},
		{IDtEXt, false, true, true},
		{IDpHYs, false, true, true},
		{IDgAMA, false, true, false},
		{ChunkIDOf("prVt"), false, false, true},
	}
	for _, tt := range tests {
		if got := tt.id.Critical(); got != tt.critical {
			t.Errorf("%s.Critical() = %v, want %v", tt.id, got, tt.critical)
		}
		if got := tt.id.Public(); got != tt.public {
			t.Errorf("%s.Public() = %v, want %v", tt.id, got, tt.public)
		}
		if got := tt.id.SafeToCopy(); got != tt.safeToCopy {
			t.Errorf("%s.SafeToCopy() = %v, want %v", tt.id, got, tt.safeToCopy)
		}
	}
}
