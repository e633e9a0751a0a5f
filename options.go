package pngio

import "github.com/klauspost/compress/zlib"

// ReaderOption configures a Reader during creation.
//
// Example:
//
//	// Tolerate a stream with corrupted checksums:
//	r, err := pngio.NewReader(f, pngio.WithoutCRCCheck())
type ReaderOption func(*readerOptions)

type readerOptions struct {
	checkCRC bool
	keepOpen bool
	registry *Registry
}

func defaultReaderOptions() readerOptions {
	return readerOptions{checkCRC: true}
}

// WithoutCRCCheck disables chunk CRC validation. The CRC bytes are still
// consumed; mismatches are logged at warn level instead of failing with
// ErrBadCRC.
func WithoutCRCCheck() ReaderOption {
	return func(o *readerOptions) {
		o.checkCRC = false
	}
}

// WithKeepOpen prevents the Reader from closing the underlying stream
// when the session ends. Without it, a stream that implements io.Closer
// is closed on Close, on all paths including errors.
func WithKeepOpen() ReaderOption {
	return func(o *readerOptions) {
		o.keepOpen = true
	}
}

// WithRegistry supplies a chunk registry, typically one extended with
// vendor chunk types via Registry.Register. The default is a fresh
// NewRegistry per session.
func WithRegistry(reg *Registry) ReaderOption {
	return func(o *readerOptions) {
		o.registry = reg
	}
}

// WriterOption configures a Writer during creation.
type WriterOption func(*writerOptions)

type writerOptions struct {
	level       int
	filter      FilterType
	fixedFilter bool
	keepOpen    bool
	idatSize    int
}

func defaultWriterOptions() writerOptions {
	return writerOptions{level: zlib.DefaultCompression, idatSize: defaultIDATSize}
}

// WithCompressionLevel sets the zlib compression level, 0 (store) to 9
// (best). The default is the zlib default level.
func WithCompressionLevel(level int) WriterOption {
	return func(o *writerOptions) {
		o.level = level
	}
}

// WithFilter forces one filter type for every row instead of the
// per-row minimum-sum-of-absolute-differences heuristic.
func WithFilter(ft FilterType) WriterOption {
	return func(o *writerOptions) {
		o.filter = ft
		o.fixedFilter = true
	}
}

// WithWriterKeepOpen prevents the Writer from closing the underlying
// stream on End.
func WithWriterKeepOpen() WriterOption {
	return func(o *writerOptions) {
		o.keepOpen = true
	}
}

// WithIDATSize sets the maximum payload size of each image-data chunk.
// Values below 1 select the default of 32 KiB.
func WithIDATSize(n int) WriterOption {
	return func(o *writerOptions) {
		o.idatSize = n
	}
}
