package pngio

import "fmt"

// Ordering is the placement constraint a chunk type declares relative to
// the palette and image-data chunks.
type Ordering uint8

// Ordering constraints.
const (
	// OrderNone places no constraint; the chunk may appear anywhere
	// between header and end.
	OrderNone Ordering = iota

	// OrderBeforePalette requires the chunk to precede both the palette
	// and the image data.
	OrderBeforePalette

	// OrderAfterPaletteBeforeData requires the chunk to follow the
	// palette and precede the image data.
	OrderAfterPaletteBeforeData

	// OrderBeforeData requires the chunk to precede the image data only.
	OrderBeforeData
)

// Chunk groups: the write-time ordering buckets. Group 1 is immediately
// after the header; the palette occupies its own pseudo-group; group 5 is
// after the image data and before the end chunk.
const (
	GroupAfterHeader  = 1
	GroupPalette      = 2
	GroupAfterPalette = 3
	GroupData         = 4
	GroupAfterData    = 5
)

// groupRange returns the [min, max] groups a chunk with this constraint
// may be written in.
func (o Ordering) groupRange() (min, max int) {
	switch o {
	case OrderBeforePalette:
		return GroupAfterHeader, GroupAfterHeader
	case OrderAfterPaletteBeforeData:
		return GroupAfterPalette, GroupAfterPalette
	case OrderBeforeData:
		return GroupAfterHeader, GroupAfterPalette
	default:
		return GroupAfterHeader, GroupAfterData
	}
}

// Chunk is one typed PNG chunk. A variant owns its decoded fields and
// converts them to and from the raw byte framing. Implementations are
// constructed empty through a Registry and then populated either by
// ParseFrom during read or by the caller before queueing for write.
type Chunk interface {
	// ID returns the 4-byte chunk type id of the variant.
	ID() ChunkID

	// ParseFrom decodes the variant's fields from a raw chunk. The
	// image descriptor is available for chunk types whose layout
	// depends on the color mode. Layout violations fail with
	// ErrMalformedChunk.
	ParseFrom(raw *ChunkRaw, info *ImageInfo) error

	// Serialize encodes the variant's fields back to a raw chunk.
	Serialize() (*ChunkRaw, error)

	// Ordering returns the variant's placement constraint.
	Ordering() Ordering

	// AllowsMultiple reports whether more than one chunk of this type
	// may appear in a stream.
	AllowsMultiple() bool

	// CloneFrom deep-copies the decoded field state from another chunk
	// of the same variant. It fails if the other chunk is a different
	// variant.
	CloneFrom(other Chunk) error
}

// KeyedChunk is implemented by chunk variants that may appear multiple
// times and are told apart by a keyword (the text chunks) or a palette
// name (suggested palettes). Identity matching compares both the type id
// and the key.
type KeyedChunk interface {
	Chunk

	// Key returns the keyword or name identifying this instance.
	Key() string
}

// cloneErr is the shared CloneFrom type-mismatch failure.
func cloneErr(want ChunkID, other Chunk) error {
	return fmt.Errorf("%w: cannot clone %s into %s", ErrProtocolViolation, other.ID(), want)
}

// sameChunk reports whether a chunk matches an id and, for keyed
// variants, a key. Non-keyed chunks match on id alone.
func sameChunk(c Chunk, id ChunkID, key string) bool {
	if c.ID() != id {
		return false
	}
	if kc, ok := c.(KeyedChunk); ok {
		return kc.Key() == key
	}
	return true
}
