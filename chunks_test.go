package pngio

import (
	"bytes"
	"errors"
	"image/color"
	"testing"
	"time"
)

func TestIHDRChunk_RoundTrip(t *testing.T) {
	info, _ := NewImageInfo(640, 480, 8, ModeRGB)
	raw, err := NewIHDRChunk(info).Serialize()
	if err != nil {
		t.Fatalf("Serialize() = %v", err)
	}
	if raw.Length != 13 {
		t.Fatalf("IHDR length = %d, want 13", raw.Length)
	}

	got := &IHDRChunk{}
	if err := got.ParseFrom(raw, nil); err != nil {
		t.Fatalf("ParseFrom() = %v", err)
	}
	if got.Width != 640 || got.Height != 480 || got.BitDepth != 8 || got.ColorType != ModeRGB {
		t.Errorf("parsed header %+v", got)
	}
	back, err := got.ImageInfo()
	if err != nil {
		t.Fatalf("ImageInfo() = %v", err)
	}
	if !back.Equal(info) {
		t.Error("descriptor did not survive the round trip")
	}
}

func TestIHDRChunk_RejectsBadLength(t *testing.T) {
	raw := NewChunkRaw(IDIHDR, make([]byte, 12))
	err := (&IHDRChunk{}).ParseFrom(raw, nil)
	if !errors.Is(err, ErrMalformedChunk) {
		t.Errorf("ParseFrom(12 bytes) = %v, want ErrMalformedChunk", err)
	}
}

func TestIHDRChunk_RejectsInterlaced(t *testing.T) {
	info, _ := NewImageInfo(4, 4, 8, ModeGray)
	c := NewIHDRChunk(info)
	c.Interlace = 1
	if _, err := c.ImageInfo(); !errors.Is(err, ErrUnsupported) {
		t.Errorf("ImageInfo(interlaced) = %v, want ErrUnsupported", err)
	}
}

func TestPLTEChunk_RoundTrip(t *testing.T) {
	c := &PLTEChunk{Colors: []color.RGBA{
		{R: 255, A: 255}, {G: 255, A: 255}, {B: 255, A: 255},
	}}
	raw, err := c.Serialize()
	if err != nil {
		t.Fatal(err)
	}
	if raw.Length != 9 {
		t.Errorf("PLTE length = %d, want 9", raw.Length)
	}
	got := &PLTEChunk{}
	if err := got.ParseFrom(raw, nil); err != nil {
		t.Fatal(err)
	}
	if len(got.Colors) != 3 || got.Colors[1].G != 255 {
		t.Errorf("parsed palette %+v", got.Colors)
	}
}

func TestPLTEChunk_RejectsRaggedLength(t *testing.T) {
	raw := NewChunkRaw(IDPLTE, make([]byte, 4))
	if err := (&PLTEChunk{}).ParseFrom(raw, nil); !errors.Is(err, ErrMalformedChunk) {
		t.Errorf("ParseFrom(4 bytes) = %v, want ErrMalformedChunk", err)
	}
}

func TestTextChunks_RoundTrip(t *testing.T) {
	chunks := []Chunk{
		&TextChunk{Keyword: "Title", Text: "a test image"},
		&CompressedTextChunk{Keyword: "Comment", Text: "squeezed through deflate"},
		&InternationalTextChunk{
			Keyword: "Description", Language: "de",
			TranslatedKeyword: "Beschreibung", Text: "größer als Latin-1",
			Compressed: true,
		},
		&InternationalTextChunk{Keyword: "Plain", Text: "uncompressed utf-8"},
	}
	reg := NewRegistry()
	for _, c := range chunks {
		raw, err := c.Serialize()
		if err != nil {
			t.Fatalf("%s Serialize() = %v", c.ID(), err)
		}
		parsed, err := reg.Parse(raw, nil)
		if err != nil {
			t.Fatalf("%s Parse() = %v", c.ID(), err)
		}
		fresh := reg.New(c.ID())
		if err := fresh.CloneFrom(parsed); err != nil {
			t.Fatalf("%s CloneFrom() = %v", c.ID(), err)
		}
		rt, err := fresh.Serialize()
		if err != nil {
			t.Fatal(err)
		}
		want, _ := c.Serialize()
		if !bytes.Equal(rt.Data, want.Data) {
			t.Errorf("%s did not round-trip: % x vs % x", c.ID(), rt.Data, want.Data)
		}
	}
}

func TestTextChunk_Key(t *testing.T) {
	var kc KeyedChunk = &TextChunk{Keyword: "Author", Text: "someone"}
	if kc.Key() != "Author" {
		t.Errorf("Key() = %q, want Author", kc.Key())
	}
	if !sameChunk(kc, IDtEXt, "Author") {
		t.Error("sameChunk(matching key) = false")
	}
	if sameChunk(kc, IDtEXt, "Title") {
		t.Error("sameChunk(other key) = true")
	}
}

func TestTextChunk_RejectsBadKeyword(t *testing.T) {
	long := make([]byte, 80)
	for i := range long {
		long[i] = 'k'
	}
	for _, kw := range []string{"", string(long)} {
		if _, err := (&TextChunk{Keyword: kw}).Serialize(); !errors.Is(err, ErrMalformedChunk) {
			t.Errorf("Serialize(keyword %q) = %v, want ErrMalformedChunk", kw, err)
		}
	}
}

func TestTRNSChunk_PerMode(t *testing.T) {
	gray, _ := NewImageInfo(1, 1, 8, ModeGray)
	rgb, _ := NewImageInfo(1, 1, 8, ModeRGB)
	pal, _ := NewImageInfo(1, 1, 8, ModePaletted)

	g := &TRNSChunk{Mode: ModeGray, Gray: 0x1234}
	raw, _ := g.Serialize()
	back := &TRNSChunk{}
	if err := back.ParseFrom(raw, gray); err != nil || back.Gray != 0x1234 {
		t.Errorf("gray tRNS round-trip: %v, %+v", err, back)
	}

	c := &TRNSChunk{Mode: ModeRGB, R: 1, G: 2, B: 3}
	raw, _ = c.Serialize()
	back = &TRNSChunk{}
	if err := back.ParseFrom(raw, rgb); err != nil || back.B != 3 {
		t.Errorf("rgb tRNS round-trip: %v, %+v", err, back)
	}

	p := &TRNSChunk{Mode: ModePaletted, PaletteAlpha: []uint8{0, 128, 255}}
	raw, _ = p.Serialize()
	back = &TRNSChunk{}
	if err := back.ParseFrom(raw, pal); err != nil || len(back.PaletteAlpha) != 3 {
		t.Errorf("paletted tRNS round-trip: %v, %+v", err, back)
	}

	// A gray-shaped payload against an rgb image is malformed.
	graw, _ := g.Serialize()
	if err := (&TRNSChunk{}).ParseFrom(graw, rgb); !errors.Is(err, ErrMalformedChunk) {
		t.Errorf("tRNS mode mismatch = %v, want ErrMalformedChunk", err)
	}
}

func TestTIMEChunk_RoundTrip(t *testing.T) {
	when := time.Date(2026, time.August, 30, 12, 34, 56, 0, time.UTC)
	raw, err := (&TIMEChunk{Time: when}).Serialize()
	if err != nil {
		t.Fatal(err)
	}
	got := &TIMEChunk{}
	if err := got.ParseFrom(raw, nil); err != nil {
		t.Fatal(err)
	}
	if !got.Time.Equal(when) {
		t.Errorf("tIME = %v, want %v", got.Time, when)
	}
}

func TestGAMAChunk_RoundTrip(t *testing.T) {
	raw, err := (&GAMAChunk{Gamma: 0.45455}).Serialize()
	if err != nil {
		t.Fatal(err)
	}
	got := &GAMAChunk{}
	if err := got.ParseFrom(raw, nil); err != nil {
		t.Fatal(err)
	}
	if got.Gamma < 0.45454 || got.Gamma > 0.45456 {
		t.Errorf("gamma = %v, want about 0.45455", got.Gamma)
	}
}

func TestSPLTChunk_RoundTrip(t *testing.T) {
	c := &SPLTChunk{
		Name:        "web-safe",
		SampleDepth: 8,
		Entries: []SPLTEntry{
			{R: 10, G: 20, B: 30, A: 255, Frequency: 7},
			{R: 40, G: 50, B: 60, A: 128, Frequency: 1},
		},
	}
	raw, err := c.Serialize()
	if err != nil {
		t.Fatal(err)
	}
	got := &SPLTChunk{}
	if err := got.ParseFrom(raw, nil); err != nil {
		t.Fatal(err)
	}
	if got.Name != "web-safe" || len(got.Entries) != 2 || got.Entries[1].A != 128 {
		t.Errorf("sPLT round-trip: %+v", got)
	}
	if got.Key() != "web-safe" {
		t.Errorf("Key() = %q", got.Key())
	}
}

func TestICCPChunk_RoundTrip(t *testing.T) {
	profile := bytes.Repeat([]byte{0xab, 0xcd}, 300)
	raw, err := (&ICCPChunk{Name: "test profile", Profile: profile}).Serialize()
	if err != nil {
		t.Fatal(err)
	}
	got := &ICCPChunk{}
	if err := got.ParseFrom(raw, nil); err != nil {
		t.Fatal(err)
	}
	if got.Name != "test profile" || !bytes.Equal(got.Profile, profile) {
		t.Error("iCCP did not round-trip")
	}
}

func TestRegistry_UnknownFallback(t *testing.T) {
	reg := NewRegistry()
	id := ChunkIDOf("prVt")
	raw := NewChunkRaw(id, []byte{9, 8, 7})
	c, err := reg.Parse(raw, nil)
	if err != nil {
		t.Fatalf("Parse() = %v", err)
	}
	u, ok := c.(*UnknownChunk)
	if !ok {
		t.Fatalf("Parse() returned %T, want *UnknownChunk", c)
	}
	if u.ID() != id || !bytes.Equal(u.Data, []byte{9, 8, 7}) {
		t.Errorf("unknown chunk = %+v", u)
	}
	rt, _ := u.Serialize()
	if !bytes.Equal(rt.Data, raw.Data) || rt.ID != raw.ID {
		t.Error("unknown chunk not preserved verbatim")
	}
}

// vendorChunk is a private chunk type registered through the session
// registry.
type vendorChunk struct {
	Payload uint8
}

func (c *vendorChunk) ID() ChunkID { return ChunkIDOf("veNd") }

func (c *vendorChunk) ParseFrom(raw *ChunkRaw, _ *ImageInfo) error {
	if len(raw.Data) != 1 {
		return ErrMalformedChunk
	}
	c.Payload = raw.Data[0]
	return nil
}

func (c *vendorChunk) Serialize() (*ChunkRaw, error) {
	return NewChunkRaw(c.ID(), []byte{c.Payload}), nil
}

func (c *vendorChunk) Ordering() Ordering   { return OrderNone }
func (c *vendorChunk) AllowsMultiple() bool { return true }

func (c *vendorChunk) CloneFrom(other Chunk) error {
	o, ok := other.(*vendorChunk)
	if !ok {
		return cloneErr(c.ID(), other)
	}
	*c = *o
	return nil
}

func TestRegistry_VendorRegistration(t *testing.T) {
	reg := NewRegistry()
	reg.Register(ChunkIDOf("veNd"), func() Chunk { return new(vendorChunk) })

	raw := NewChunkRaw(ChunkIDOf("veNd"), []byte{42})
	c, err := reg.Parse(raw, nil)
	if err != nil {
		t.Fatal(err)
	}
	v, ok := c.(*vendorChunk)
	if !ok {
		t.Fatalf("Parse() returned %T, want *vendorChunk", c)
	}
	if v.Payload != 42 {
		t.Errorf("payload = %d, want 42", v.Payload)
	}

	// A second registry is unaffected.
	if _, ok := NewRegistry().New(ChunkIDOf("veNd")).(*UnknownChunk); !ok {
		t.Error("vendor registration leaked into a fresh registry")
	}
}

func TestCloneFrom_TypeMismatch(t *testing.T) {
	err := (&GAMAChunk{}).CloneFrom(&TextChunk{Keyword: "k"})
	if !errors.Is(err, ErrProtocolViolation) {
		t.Errorf("CloneFrom(wrong type) = %v, want ErrProtocolViolation", err)
	}
}
