package pngio

import (
	"fmt"
	"image/color"
	"io"
	"log/slog"

	"github.com/klauspost/compress/zlib"
)

// pngSignature is the fixed 8-byte prefix of every PNG stream.
const pngSignature = "\x89PNG\r\n\x1a\n"

// Writer encodes one PNG image progressively: the header chunk is
// emitted at construction, ancillary chunks may be queued at any time
// before End, and rows are supplied one at a time in order. A Writer is
// single-use and not safe for concurrent use.
type Writer struct {
	w    io.Writer
	opts writerOptions
	info *ImageInfo
	log  *slog.Logger

	written *ChunkList
	queue   *chunkQueue
	group   int

	zw  *zlib.Writer
	idw *idatWriter

	nextRow  int
	prev     []byte
	filtered []byte
	scratch  []byte

	ended bool
	err   error
}

// NewWriter starts a write session: it validates the descriptor, then
// writes the PNG signature and the header chunk immediately. The
// returned Writer owns the stream until End unless WithWriterKeepOpen
// was given.
func NewWriter(w io.Writer, info *ImageInfo, opts ...WriterOption) (*Writer, error) {
	if info == nil {
		return nil, fmt.Errorf("%w: nil image descriptor", ErrUnsupported)
	}
	o := defaultWriterOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if o.fixedFilter && !o.filter.valid() {
		return nil, fmt.Errorf("%w: filter type %d", ErrUnsupported, o.filter)
	}
	pw := &Writer{
		w:        w,
		opts:     o,
		info:     info,
		log:      Logger(),
		written:  &ChunkList{},
		group:    GroupAfterHeader,
		prev:     make([]byte, info.BytesPerRow()),
		filtered: make([]byte, info.BytesPerRow()),
		scratch:  make([]byte, info.BytesPerRow()),
	}
	pw.queue = newChunkQueue(pw.written, pw.log)

	if _, err := io.WriteString(w, pngSignature); err != nil {
		return nil, pw.fail(fmt.Errorf("pngio: writing signature: %w", err))
	}
	ihdr := NewIHDRChunk(info)
	raw, err := ihdr.Serialize()
	if err != nil {
		return nil, pw.fail(err)
	}
	if _, err := raw.WriteTo(w); err != nil {
		return nil, pw.fail(err)
	}
	pw.written.append(ihdr, 0)
	pw.log.Info("write session started",
		"width", info.Width(), "height", info.Height(),
		"depth", info.BitDepth(), "mode", info.Mode().String())
	return pw, nil
}

// Info returns the image descriptor of the session.
func (pw *Writer) Info() *ImageInfo { return pw.info }

// Chunks returns the chunks written so far, the header included.
func (pw *Writer) Chunks() *ChunkList { return pw.written }

// SetPalette queues the palette chunk. Paletted images must set a
// palette before the first row; other modes may carry one as a
// suggested rendering palette.
func (pw *Writer) SetPalette(colors []color.RGBA) {
	pw.queue.queue(&PLTEChunk{Colors: colors}, false)
}

// QueueChunk queues an ancillary chunk for the latest group its ordering
// constraint allows. Validation happens when the chunk is flushed, not
// here.
func (pw *Writer) QueueChunk(c Chunk) {
	pw.queue.queue(c, false)
}

// QueueChunkPriority queues an ancillary chunk for the earliest group
// its ordering constraint allows.
func (pw *Writer) QueueChunkPriority(c Chunk) {
	pw.queue.queue(c, true)
}

// WriteRow filters and compresses one scanline. Rows must be supplied in
// strictly increasing order starting at 0; anything else fails with
// ErrSequenceViolation. The first row closes the pre-data chunk groups,
// flushing every queued chunk eligible before the image data.
func (pw *Writer) WriteRow(line *ImageLine, row int) error {
	if pw.err != nil {
		return pw.err
	}
	if pw.ended {
		return fmt.Errorf("%w: write after End", ErrSequenceViolation)
	}
	if row != pw.nextRow {
		return pw.fail(fmt.Errorf("%w: got row %d, want %d", ErrSequenceViolation, row, pw.nextRow))
	}
	if row >= pw.info.Height() {
		return pw.fail(fmt.Errorf("%w: row %d beyond height %d", ErrSequenceViolation, row, pw.info.Height()))
	}
	if err := checkLine(line, pw.info); err != nil {
		return pw.fail(err)
	}
	if row == 0 {
		if err := pw.startData(); err != nil {
			return err
		}
	}

	ft := pw.opts.filter
	if pw.opts.fixedFilter {
		filterRow(ft, pw.filtered, line.Pix, pw.prev, pw.info.BytesPerPixel())
	} else {
		ft = chooseFilter(pw.filtered, pw.scratch, line.Pix, pw.prev, pw.info.BytesPerPixel())
	}
	if _, err := pw.zw.Write([]byte{byte(ft)}); err != nil {
		return pw.fail(fmt.Errorf("pngio: compressing row %d: %w", row, err))
	}
	if _, err := pw.zw.Write(pw.filtered); err != nil {
		return pw.fail(fmt.Errorf("pngio: compressing row %d: %w", row, err))
	}
	pw.log.Debug("row written", "row", row, "filter", ft.String())

	copy(pw.prev, line.Pix)
	pw.nextRow++
	return nil
}

// startData flushes the chunk groups that precede the image data and
// opens the compressed stream. Group order: after-header chunks, the
// palette, after-palette chunks, then data.
func (pw *Writer) startData() error {
	if err := pw.queue.flush(pw.w, GroupAfterHeader); err != nil {
		return pw.fail(err)
	}
	if err := pw.queue.flush(pw.w, GroupPalette); err != nil {
		return pw.fail(err)
	}
	if pw.info.HasPalette() && pw.written.count(IDPLTE) == 0 {
		return pw.fail(fmt.Errorf("%w: paletted image without a palette", ErrProtocolViolation))
	}
	if err := pw.queue.flush(pw.w, GroupAfterPalette); err != nil {
		return pw.fail(err)
	}
	pw.group = GroupData

	pw.idw = newIDATWriter(pw.w, pw.opts.idatSize)
	zw, err := newZlibWriter(pw.idw, pw.opts.level)
	if err != nil {
		return pw.fail(err)
	}
	pw.zw = zw
	return nil
}

// End finishes the session: it closes the compressed stream, cuts the
// final image-data chunk, flushes the remaining queued chunks, writes
// the end chunk, and releases the underlying stream. A session with rows
// missing fails with ErrSequenceViolation; chunks still queued after the
// final flush fail with ErrProtocolViolation rather than being dropped.
func (pw *Writer) End() error {
	if pw.err != nil {
		return pw.err
	}
	if pw.ended {
		return fmt.Errorf("%w: End called twice", ErrSequenceViolation)
	}
	if pw.nextRow != pw.info.Height() {
		return pw.fail(fmt.Errorf("%w: %d of %d rows written", ErrSequenceViolation, pw.nextRow, pw.info.Height()))
	}
	if err := pw.zw.Close(); err != nil {
		return pw.fail(fmt.Errorf("pngio: closing compressed stream: %w", err))
	}
	if err := pw.idw.Flush(); err != nil {
		return pw.fail(err)
	}
	pw.group = GroupAfterData
	if err := pw.queue.flush(pw.w, GroupAfterData); err != nil {
		return pw.fail(err)
	}
	if n := pw.queue.pendingCount(); n > 0 {
		return pw.fail(fmt.Errorf("%w: %d queued chunks missed their chunk group", ErrProtocolViolation, n))
	}

	iend := &IENDChunk{}
	raw, err := iend.Serialize()
	if err != nil {
		return pw.fail(err)
	}
	if _, err := raw.WriteTo(pw.w); err != nil {
		return pw.fail(err)
	}
	pw.written.append(iend, GroupAfterData)
	pw.ended = true
	pw.log.Info("image data complete", "rows", pw.nextRow, "idat_chunks", pw.idw.chunks)
	return pw.release()
}

// fail records the first fatal error, releases the stream, and returns
// the error.
func (pw *Writer) fail(err error) error {
	if pw.err == nil {
		pw.err = err
		pw.release()
	}
	return pw.err
}

// release closes the underlying stream unless the caller opted to keep
// it open.
func (pw *Writer) release() error {
	if pw.opts.keepOpen {
		return nil
	}
	if c, ok := pw.w.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
