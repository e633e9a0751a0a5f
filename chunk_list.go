package pngio

import (
	"fmt"
	"io"
	"log/slog"
)

// chunkEntry pairs a chunk with the ordering group it was read or
// written in.
type chunkEntry struct {
	chunk Chunk
	group int
}

// ChunkList holds the chunks of one session in stream order together
// with their ordering groups: on the read side every non-IDAT chunk
// seen, on the write side every chunk flushed. The list owns its chunks;
// none outlives the session it belongs to.
type ChunkList struct {
	entries []chunkEntry
}

// append records a chunk at a group.
func (cl *ChunkList) append(c Chunk, group int) {
	cl.entries = append(cl.entries, chunkEntry{chunk: c, group: group})
}

// Len returns the number of chunks in the list.
func (cl *ChunkList) Len() int { return len(cl.entries) }

// All returns the chunks in stream order. The returned slice is fresh;
// the chunks are shared.
func (cl *ChunkList) All() []Chunk {
	out := make([]Chunk, len(cl.entries))
	for i, e := range cl.entries {
		out[i] = e.chunk
	}
	return out
}

// ByID returns every chunk with the given type id, in stream order.
func (cl *ChunkList) ByID(id ChunkID) []Chunk {
	var out []Chunk
	for _, e := range cl.entries {
		if e.chunk.ID() == id {
			out = append(out, e.chunk)
		}
	}
	return out
}

// First returns the first chunk with the given type id, or nil.
func (cl *ChunkList) First(id ChunkID) Chunk {
	for _, e := range cl.entries {
		if e.chunk.ID() == id {
			return e.chunk
		}
	}
	return nil
}

// FindKeyed returns the chunk matching both id and key (the keyword of a
// text chunk or the name of a suggested palette), or nil. For non-keyed
// ids it behaves like First.
func (cl *ChunkList) FindKeyed(id ChunkID, key string) Chunk {
	for _, e := range cl.entries {
		if sameChunk(e.chunk, id, key) {
			return e.chunk
		}
	}
	return nil
}

// count returns how many chunks with the id the list holds.
func (cl *ChunkList) count(id ChunkID) int {
	n := 0
	for _, e := range cl.entries {
		if e.chunk.ID() == id {
			n++
		}
	}
	return n
}

// queuedChunk is one pending write-side chunk. priority moves the
// chunk's preferred group from its latest legal slot to its earliest.
type queuedChunk struct {
	chunk    Chunk
	priority bool
}

// chunkQueue is the write-side half of the sequencer: chunks queued by
// the caller wait here until a flush point whose group admits them.
// Validation is deferred to flush time so queue order does not matter.
type chunkQueue struct {
	pending []queuedChunk
	written *ChunkList
	log     *slog.Logger
}

func newChunkQueue(written *ChunkList, log *slog.Logger) *chunkQueue {
	return &chunkQueue{written: written, log: log}
}

// queue appends a chunk to the pending list. No validation happens here.
func (q *chunkQueue) queue(c Chunk, priority bool) {
	q.pending = append(q.pending, queuedChunk{chunk: c, priority: priority})
}

// pendingCount returns how many chunks are still waiting to be written.
func (q *chunkQueue) pendingCount() int { return len(q.pending) }

// preferredGroup resolves where a queued chunk wants to be written. The
// default is the latest legal group; priority chunks prefer the
// earliest; an unknown chunk that recorded the group it was read in
// prefers that group, clamped to its legal range.
func preferredGroup(qc queuedChunk) (pref, max int) {
	lo, hi := qc.chunk.Ordering().groupRange()
	pref = hi
	if qc.priority {
		pref = lo
	}
	if u, ok := qc.chunk.(*UnknownChunk); ok && u.Group >= lo && u.Group <= hi {
		pref = u.Group
	}
	return pref, hi
}

// flush writes every pending chunk eligible at the current group, in
// queue order, and moves it to the written list.
//
// At the palette pseudo-group only the palette chunk is eligible. At any
// other group a chunk is eligible when the group lies between its
// preferred and maximum groups: a chunk that missed its preferred slot
// catches up at the next opportunity instead of being dropped.
//
// Writing a critical chunk other than the palette through this path, or
// a second chunk of a single-only type, fails with ErrProtocolViolation.
func (q *chunkQueue) flush(w io.Writer, group int) error {
	keep := q.pending[:0]
	for _, qc := range q.pending {
		id := qc.chunk.ID()
		var eligible bool
		if group == GroupPalette {
			eligible = id == IDPLTE
		} else if id == IDPLTE {
			eligible = false
		} else {
			pref, max := preferredGroup(qc)
			eligible = group >= pref && group <= max
		}
		if !eligible {
			keep = append(keep, qc)
			continue
		}
		if id.Critical() && id != IDPLTE {
			return fmt.Errorf("%w: critical chunk %s queued through the ancillary path", ErrProtocolViolation, id)
		}
		if !qc.chunk.AllowsMultiple() && q.written.count(id) > 0 {
			return fmt.Errorf("%w: duplicate %s chunk", ErrProtocolViolation, id)
		}
		raw, err := qc.chunk.Serialize()
		if err != nil {
			return err
		}
		if _, err := raw.WriteTo(w); err != nil {
			return err
		}
		q.log.Debug("chunk written", "id", id.String(), "len", raw.Length, "group", group)
		q.written.append(qc.chunk, group)
	}
	q.pending = keep
	return nil
}
