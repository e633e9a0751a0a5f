package pngio

import (
	"encoding/binary"
	"fmt"
	"io"
	"log/slog"

	"github.com/klauspost/compress/zlib"
	"github.com/snksoft/crc"
)

// Reader decodes one PNG image progressively. Construction consumes the
// signature, the header chunk, and every chunk up to the image data;
// rows are then pulled one at a time with ReadRow. Ancillary chunks
// found after the image data become available once the last row has been
// read (or Close has been called). A Reader is single-use and not safe
// for concurrent use.
type Reader struct {
	r    io.Reader
	opts readerOptions
	info *ImageInfo
	log  *slog.Logger
	reg  *Registry

	chunks  *ChunkList
	palette *PLTEChunk
	group   int

	idat *idatStream
	zr   io.ReadCloser

	nextRow int
	prev    []byte

	finished bool
	released bool
	err      error
}

// NewReader starts a read session. It validates the 8-byte PNG signature
// (failing with ErrNotPNG), parses the header chunk into the image
// descriptor, and reads ahead to the first image-data chunk, collecting
// every ancillary chunk on the way. The returned Reader owns the stream
// until Close unless WithKeepOpen was given.
func NewReader(r io.Reader, opts ...ReaderOption) (*Reader, error) {
	o := defaultReaderOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if o.registry == nil {
		o.registry = NewRegistry()
	}
	pr := &Reader{
		r:      r,
		opts:   o,
		log:    Logger(),
		reg:    o.registry,
		chunks: &ChunkList{},
	}

	var sig [8]byte
	if _, err := io.ReadFull(r, sig[:]); err != nil {
		return nil, pr.fail(fmt.Errorf("%w: %v", ErrNotPNG, err))
	}
	if string(sig[:]) != pngSignature {
		return nil, pr.fail(ErrNotPNG)
	}

	length, id, err := pr.readChunkHeader()
	if err != nil {
		return nil, pr.fail(err)
	}
	if id != IDIHDR {
		return nil, pr.fail(fmt.Errorf("%w: first chunk is %s, want IHDR", ErrProtocolViolation, id))
	}
	raw, err := ReadChunkRaw(r, length, id, o.checkCRC)
	if err != nil {
		return nil, pr.fail(err)
	}
	ihdr := &IHDRChunk{}
	if err := ihdr.ParseFrom(raw, nil); err != nil {
		return nil, pr.fail(err)
	}
	info, err := ihdr.ImageInfo()
	if err != nil {
		return nil, pr.fail(err)
	}
	pr.info = info
	pr.prev = make([]byte, info.BytesPerRow())
	pr.chunks.append(ihdr, 0)
	pr.group = GroupAfterHeader
	pr.log.Info("read session started",
		"width", info.Width(), "height", info.Height(),
		"depth", info.BitDepth(), "mode", info.Mode().String())

	if err := pr.readToData(); err != nil {
		return nil, pr.fail(err)
	}
	return pr, nil
}

// Info returns the image descriptor parsed from the header chunk.
func (pr *Reader) Info() *ImageInfo { return pr.info }

// Chunks returns the typed chunks read so far. Chunks placed after the
// image data appear only once every row has been read or Close has been
// called.
func (pr *Reader) Chunks() *ChunkList { return pr.chunks }

// Palette returns the palette chunk, or nil if the stream carries none.
func (pr *Reader) Palette() *PLTEChunk { return pr.palette }

// readChunkHeader consumes the 8-byte length+type prefix of the next
// chunk.
func (pr *Reader) readChunkHeader() (int, ChunkID, error) {
	var head [8]byte
	if _, err := io.ReadFull(pr.r, head[:]); err != nil {
		return 0, ChunkID{}, fmt.Errorf("pngio: reading chunk header: %w", err)
	}
	length := binary.BigEndian.Uint32(head[:4])
	if length > 0x7fffffff {
		return 0, ChunkID{}, fmt.Errorf("%w: chunk length %d", ErrMalformedChunk, length)
	}
	var id ChunkID
	copy(id[:], head[4:])
	return int(length), id, nil
}

// acceptChunk parses one raw chunk into its typed form, enforces read
// ordering and multiplicity, and records it at the current group.
func (pr *Reader) acceptChunk(raw *ChunkRaw) error {
	c, err := pr.reg.Parse(raw, pr.info)
	if err != nil {
		return err
	}
	if _, hi := c.Ordering().groupRange(); pr.group > hi && !raw.ID.Critical() {
		return fmt.Errorf("%w: %s chunk out of order", ErrProtocolViolation, raw.ID)
	}
	if !c.AllowsMultiple() && pr.chunks.count(raw.ID) > 0 {
		return fmt.Errorf("%w: duplicate %s chunk", ErrProtocolViolation, raw.ID)
	}
	if u, ok := c.(*UnknownChunk); ok {
		u.Group = pr.group
	}
	pr.chunks.append(c, pr.group)
	pr.log.Debug("chunk read", "id", raw.ID.String(), "len", raw.Length, "group", pr.group)
	return nil
}

// readToData walks the chunk stream up to the first image-data chunk,
// parsing ancillary chunks and the palette.
func (pr *Reader) readToData() error {
	for {
		length, id, err := pr.readChunkHeader()
		if err != nil {
			return err
		}
		switch id {
		case IDIDAT:
			if pr.info.HasPalette() && pr.palette == nil {
				return fmt.Errorf("%w: paletted image without a palette", ErrProtocolViolation)
			}
			pr.group = GroupData
			pr.idat = newIDATStream(pr, length)
			return nil
		case IDIEND:
			return fmt.Errorf("%w: IEND before image data", ErrProtocolViolation)
		case IDIHDR:
			return fmt.Errorf("%w: duplicate IHDR chunk", ErrProtocolViolation)
		}
		raw, err := ReadChunkRaw(pr.r, length, id, pr.opts.checkCRC)
		if err != nil {
			return err
		}
		if id == IDPLTE {
			if pr.palette != nil {
				return fmt.Errorf("%w: duplicate PLTE chunk", ErrProtocolViolation)
			}
			pr.group = GroupPalette
		}
		if err := pr.acceptChunk(raw); err != nil {
			return err
		}
		if id == IDPLTE {
			pr.palette = pr.chunks.First(IDPLTE).(*PLTEChunk)
			pr.group = GroupAfterPalette
		}
	}
}

// ReadRow returns one unfiltered scanline. Rows must be requested in
// strictly increasing order starting at 0; anything else fails with
// ErrSequenceViolation. The caller owns the returned line. Reading the
// last row finishes the session, parsing any chunks placed after the
// image data.
func (pr *Reader) ReadRow(row int) (*ImageLine, error) {
	if pr.err != nil {
		return nil, pr.err
	}
	if row != pr.nextRow {
		return nil, pr.fail(fmt.Errorf("%w: got row %d, want %d", ErrSequenceViolation, row, pr.nextRow))
	}
	if row >= pr.info.Height() {
		return nil, pr.fail(fmt.Errorf("%w: row %d beyond height %d", ErrSequenceViolation, row, pr.info.Height()))
	}
	if pr.zr == nil {
		zr, err := zlib.NewReader(pr.idat)
		if err != nil {
			return nil, pr.fail(fmt.Errorf("pngio: opening compressed stream: %w", err))
		}
		pr.zr = zr
	}

	var ftb [1]byte
	if _, err := io.ReadFull(pr.zr, ftb[:]); err != nil {
		return nil, pr.fail(fmt.Errorf("pngio: decompressing row %d: %w", row, err))
	}
	ft := FilterType(ftb[0])
	if !ft.valid() {
		return nil, pr.fail(fmt.Errorf("%w: filter type %d on row %d", ErrMalformedChunk, ftb[0], row))
	}
	line := NewImageLine(pr.info)
	line.Row = row
	if _, err := io.ReadFull(pr.zr, line.Pix); err != nil {
		return nil, pr.fail(fmt.Errorf("pngio: decompressing row %d: %w", row, err))
	}
	unfilterRow(ft, line.Pix, pr.prev, pr.info.BytesPerPixel())
	copy(pr.prev, line.Pix)
	pr.log.Debug("row read", "row", row, "filter", ft.String())

	pr.nextRow++
	if pr.nextRow == pr.info.Height() {
		if err := pr.finish(); err != nil {
			return nil, pr.fail(err)
		}
	}
	return line, nil
}

// finish drains the rest of the image-data region and parses the chunks
// that follow it, through IEND.
func (pr *Reader) finish() error {
	if pr.finished {
		return nil
	}
	if pr.zr != nil {
		if _, err := io.Copy(io.Discard, pr.zr); err != nil {
			return fmt.Errorf("pngio: draining compressed stream: %w", err)
		}
		if err := pr.zr.Close(); err != nil {
			return err
		}
	}
	if pr.idat != nil {
		if err := pr.idat.drain(); err != nil {
			return err
		}
	}

	pr.group = GroupAfterData
	for {
		var length int
		var id ChunkID
		var err error
		if pr.idat != nil && pr.idat.pendingValid {
			length, id = pr.idat.pendingLen, pr.idat.pendingID
			pr.idat.pendingValid = false
		} else {
			length, id, err = pr.readChunkHeader()
			if err != nil {
				return err
			}
		}
		if id == IDIDAT || id == IDIHDR || id == IDPLTE {
			return fmt.Errorf("%w: %s chunk after image data", ErrProtocolViolation, id)
		}
		raw, err := ReadChunkRaw(pr.r, length, id, pr.opts.checkCRC)
		if err != nil {
			return err
		}
		if id == IDIEND {
			iend := &IENDChunk{}
			if err := iend.ParseFrom(raw, pr.info); err != nil {
				return err
			}
			pr.chunks.append(iend, GroupAfterData)
			break
		}
		if err := pr.acceptChunk(raw); err != nil {
			return err
		}
	}
	pr.finished = true
	pr.log.Info("image data complete", "rows", pr.nextRow, "chunks", pr.chunks.Len())
	return pr.release()
}

// Close releases the session. If every row has been read it first
// finishes parsing the post-data chunks; otherwise the rest of the
// stream is abandoned unread. Close is idempotent.
func (pr *Reader) Close() error {
	if pr.err != nil {
		return nil
	}
	if !pr.finished && pr.nextRow == pr.info.Height() {
		if err := pr.finish(); err != nil {
			return pr.fail(err)
		}
		return nil
	}
	return pr.release()
}

// fail records the first fatal error, releases the stream, and returns
// the error.
func (pr *Reader) fail(err error) error {
	if pr.err == nil {
		pr.err = err
		pr.release()
	}
	return pr.err
}

// release closes the underlying stream unless the caller opted to keep
// it open.
func (pr *Reader) release() error {
	if pr.released || pr.opts.keepOpen {
		return nil
	}
	pr.released = true
	if c, ok := pr.r.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// idatStream presents the concatenated payloads of consecutive
// image-data chunks as one byte stream for the zlib reader, verifying
// each chunk's CRC as its payload streams past. Ancillary chunks found
// between image-data chunks are parsed and recorded; the first
// non-image-data critical chunk ends the stream and is left pending for
// the post-data loop.
type idatStream struct {
	pr        *Reader
	remaining int
	hash      *crc.Hash
	done      bool

	pendingLen   int
	pendingID    ChunkID
	pendingValid bool
}

func newIDATStream(pr *Reader, firstLen int) *idatStream {
	s := &idatStream{pr: pr, remaining: firstLen}
	s.hash = crc.NewHash(crc.CRC32)
	s.hash.Write(IDIDAT[:])
	return s
}

func (s *idatStream) Read(p []byte) (int, error) {
	for s.remaining == 0 {
		if s.done {
			return 0, io.EOF
		}
		if err := s.advance(); err != nil {
			return 0, err
		}
	}
	if len(p) > s.remaining {
		p = p[:s.remaining]
	}
	n, err := s.pr.r.Read(p)
	s.hash.Write(p[:n])
	s.remaining -= n
	if err == io.EOF && s.remaining > 0 {
		err = io.ErrUnexpectedEOF
	}
	return n, err
}

// advance closes out the current image-data chunk (CRC) and moves to the
// next one, recording any ancillary chunks in between.
func (s *idatStream) advance() error {
	var tail [4]byte
	if _, err := io.ReadFull(s.pr.r, tail[:]); err != nil {
		return fmt.Errorf("pngio: reading IDAT crc: %w", err)
	}
	got := binary.BigEndian.Uint32(tail[:])
	want := uint32(s.hash.CRC())
	if got != want {
		if s.pr.opts.checkCRC {
			return fmt.Errorf("%w: IDAT has %08x, computed %08x", ErrBadCRC, got, want)
		}
		s.pr.log.Warn("IDAT crc mismatch ignored", "recorded", got, "computed", want)
	}

	for {
		length, id, err := s.pr.readChunkHeader()
		if err != nil {
			return err
		}
		if id == IDIDAT {
			s.remaining = length
			s.hash = crc.NewHash(crc.CRC32)
			s.hash.Write(IDIDAT[:])
			return nil
		}
		if id.Critical() || id == IDIEND {
			s.pendingLen, s.pendingID, s.pendingValid = length, id, true
			s.done = true
			return nil
		}
		raw, err := ReadChunkRaw(s.pr.r, length, id, s.pr.opts.checkCRC)
		if err != nil {
			return err
		}
		if err := s.pr.acceptChunk(raw); err != nil {
			return err
		}
	}
}

// drain consumes whatever is left of the image-data region, through to
// the header of the first chunk after it.
func (s *idatStream) drain() error {
	var buf [4096]byte
	for !s.done {
		if s.remaining == 0 {
			if err := s.advance(); err != nil {
				return err
			}
			continue
		}
		n := len(buf)
		if n > s.remaining {
			n = s.remaining
		}
		m, err := io.ReadFull(s.pr.r, buf[:n])
		s.hash.Write(buf[:m])
		s.remaining -= m
		if err != nil {
			return fmt.Errorf("pngio: draining IDAT: %w", err)
		}
	}
	return nil
}
