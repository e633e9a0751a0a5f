package pngio

// Registry maps chunk ids to variant constructors. Each codec session
// owns (or is handed) one registry; there is no process-wide mutable
// factory, so sessions stay independent and vendor chunk types can be
// registered without affecting other sessions.
type Registry struct {
	factories map[ChunkID]func() Chunk
}

// NewRegistry returns a registry with all chunk types of the PNG
// specification registered.
func NewRegistry() *Registry {
	r := &Registry{factories: make(map[ChunkID]func() Chunk, 20)}
	r.Register(IDIHDR, func() Chunk { return new(IHDRChunk) })
	r.Register(IDPLTE, func() Chunk { return new(PLTEChunk) })
	r.Register(IDIDAT, func() Chunk { return new(IDATChunk) })
	r.Register(IDIEND, func() Chunk { return new(IENDChunk) })
	r.Register(IDtRNS, func() Chunk { return new(TRNSChunk) })
	r.Register(IDgAMA, func() Chunk { return new(GAMAChunk) })
	r.Register(IDcHRM, func() Chunk { return new(CHRMChunk) })
	r.Register(IDsBIT, func() Chunk { return new(SBITChunk) })
	r.Register(IDsRGB, func() Chunk { return new(SRGBChunk) })
	r.Register(IDiCCP, func() Chunk { return new(ICCPChunk) })
	r.Register(IDbKGD, func() Chunk { return new(BKGDChunk) })
	r.Register(IDhIST, func() Chunk { return new(HISTChunk) })
	r.Register(IDpHYs, func() Chunk { return new(PHYSChunk) })
	r.Register(IDsPLT, func() Chunk { return new(SPLTChunk) })
	r.Register(IDtIME, func() Chunk { return new(TIMEChunk) })
	r.Register(IDtEXt, func() Chunk { return new(TextChunk) })
	r.Register(IDzTXt, func() Chunk { return new(CompressedTextChunk) })
	r.Register(IDiTXt, func() Chunk { return new(InternationalTextChunk) })
	return r
}

// Register adds or replaces the constructor for a chunk id. Use it to
// teach a session about private or extension chunk types.
func (r *Registry) Register(id ChunkID, newChunk func() Chunk) {
	r.factories[id] = newChunk
}

// New constructs an empty chunk for the id. Unregistered ids produce an
// UnknownChunk, which preserves the raw bytes verbatim so unrecognized
// chunks survive a read/write round trip unchanged.
func (r *Registry) New(id ChunkID) Chunk {
	if f, ok := r.factories[id]; ok {
		return f()
	}
	return &UnknownChunk{id: id}
}

// Parse constructs and populates a chunk from its raw form.
func (r *Registry) Parse(raw *ChunkRaw, info *ImageInfo) (Chunk, error) {
	c := r.New(raw.ID)
	if err := c.ParseFrom(raw, info); err != nil {
		return nil, err
	}
	return c, nil
}
