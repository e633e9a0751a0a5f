// Package pngio provides a streaming, line-oriented PNG codec for Go.
//
// # Overview
//
// pngio reads and writes the PNG container format (chunk framing, CRC
// validation, color-model/bit-depth handling, scanline filtering)
// one row at a time, so very large images can be processed without
// holding the full pixel buffer in memory. Higher-level image work
// (resizing, compositing, quantization) belongs to consumers of the
// decoded rows; pngio implements the container protocol only.
//
// # Quick Start
//
//	import "github.com/gopix/pngio"
//
//	// Write a 256x256 8-bit RGB image row by row.
//	info, _ := pngio.NewImageInfo(256, 256, 8, pngio.ModeRGB)
//	w, _ := pngio.NewWriter(f, info)
//	line := pngio.NewImageLine(info)
//	for y := 0; y < info.Height(); y++ {
//	    fillRow(line.Pix) // caller-supplied pixels
//	    w.WriteRow(line, y)
//	}
//	w.End()
//
//	// Read it back.
//	r, _ := pngio.NewReader(f2)
//	for y := 0; y < r.Info().Height(); y++ {
//	    line, _ := r.ReadRow(y)
//	    use(line.Pix)
//	}
//	r.Close()
//
// For whole-image convenience, [DecodeImage] and [EncodeImage] bridge to
// the standard library's image.Image on top of the row API.
//
// # Architecture
//
// The package is organized around a small set of collaborating parts:
//   - ChunkRaw: byte-level chunk framing with CRC32 integrity
//   - Chunk variants + Registry: typed chunks with ordering and
//     multiplicity rules, resolved through a per-session factory table
//   - ChunkList / write queue: chunk ordering groups and catch-up
//     placement of ancillary chunks
//   - scanline filters: None/Sub/Up/Average/Paeth with a
//     minimum-sum-of-absolute-differences selection heuristic
//   - Reader / Writer: orchestration over a zlib-compressed IDAT stream
//
// # Limitations
//
// Interlaced (Adam7) images and APNG animation chunks are not supported;
// constructing a Reader on an interlaced file fails with ErrUnsupported.
package pngio
