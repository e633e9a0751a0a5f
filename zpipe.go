package pngio

import (
	"bytes"
	"fmt"
	"io"

	"github.com/klauspost/compress/zlib"
)

// defaultIDATSize is how many compressed bytes go into one IDAT chunk
// before it is cut and a new one started.
const defaultIDATSize = 32 * 1024

// deflateBytes compresses a small buffer with zlib at the default level.
// Used for the deflated fields of iCCP, zTXt, and iTXt.
func deflateBytes(data []byte) []byte {
	var b bytes.Buffer
	zw := zlib.NewWriter(&b)
	zw.Write(data)
	zw.Close()
	return b.Bytes()
}

// inflateBytes decompresses a zlib buffer held fully in memory.
func inflateBytes(data []byte) ([]byte, error) {
	zr, err := zlib.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer zr.Close()
	return io.ReadAll(zr)
}

// idatWriter frames a compressed byte stream into IDAT chunks of at most
// chunkSize bytes each. It sits between the zlib writer and the
// underlying stream; Flush cuts the final partial chunk.
type idatWriter struct {
	w         io.Writer
	buf       []byte
	n         int
	chunkSize int
	chunks    int
}

func newIDATWriter(w io.Writer, chunkSize int) *idatWriter {
	if chunkSize <= 0 {
		chunkSize = defaultIDATSize
	}
	return &idatWriter{w: w, buf: make([]byte, chunkSize), chunkSize: chunkSize}
}

func (iw *idatWriter) Write(p []byte) (int, error) {
	written := 0
	for len(p) > 0 {
		n := copy(iw.buf[iw.n:], p)
		iw.n += n
		written += n
		p = p[n:]
		if iw.n == iw.chunkSize {
			if err := iw.cut(); err != nil {
				return written, err
			}
		}
	}
	return written, nil
}

// cut emits the buffered bytes as one IDAT chunk.
func (iw *idatWriter) cut() error {
	if iw.n == 0 {
		return nil
	}
	raw := NewChunkRaw(IDIDAT, iw.buf[:iw.n])
	if _, err := raw.WriteTo(iw.w); err != nil {
		return err
	}
	iw.chunks++
	iw.n = 0
	return nil
}

// Flush writes any buffered bytes as a final IDAT chunk. If the whole
// image compressed to nothing (never the case with zlib, which always
// emits a header) no chunk is written.
func (iw *idatWriter) Flush() error {
	return iw.cut()
}

// newZlibWriter wraps a writer at the requested compression level,
// falling back to the default level on an out-of-range value.
func newZlibWriter(w io.Writer, level int) (*zlib.Writer, error) {
	zw, err := zlib.NewWriterLevel(w, level)
	if err != nil {
		return nil, fmt.Errorf("pngio: zlib level %d: %w", level, err)
	}
	return zw, nil
}
