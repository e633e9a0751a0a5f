package pngio

import (
	"bytes"
	"fmt"
)

// validKeyword checks the 1-79 byte keyword constraint shared by the
// text chunks and suggested palettes.
func validKeyword(k string) bool {
	return len(k) >= 1 && len(k) <= 79 && !bytes.ContainsRune([]byte(k), 0)
}

// TextChunk is an uncompressed tEXt entry: a keyword and a Latin-1 text
// value.
type TextChunk struct {
	Keyword string
	Text    string
}

func (c *TextChunk) ID() ChunkID { return IDtEXt }
func (c *TextChunk) Key() string { return c.Keyword }

func (c *TextChunk) ParseFrom(raw *ChunkRaw, _ *ImageInfo) error {
	sep := bytes.IndexByte(raw.Data, 0)
	if sep <= 0 || sep > 79 {
		return fmt.Errorf("%w: tEXt keyword", ErrMalformedChunk)
	}
	c.Keyword = string(raw.Data[:sep])
	c.Text = string(raw.Data[sep+1:])
	return nil
}

func (c *TextChunk) Serialize() (*ChunkRaw, error) {
	if !validKeyword(c.Keyword) {
		return nil, fmt.Errorf("%w: tEXt keyword %q", ErrMalformedChunk, c.Keyword)
	}
	d := make([]byte, 0, len(c.Keyword)+1+len(c.Text))
	d = append(d, c.Keyword...)
	d = append(d, 0)
	d = append(d, c.Text...)
	return NewChunkRaw(IDtEXt, d), nil
}

func (c *TextChunk) Ordering() Ordering   { return OrderNone }
func (c *TextChunk) AllowsMultiple() bool { return true }

func (c *TextChunk) CloneFrom(other Chunk) error {
	o, ok := other.(*TextChunk)
	if !ok {
		return cloneErr(IDtEXt, other)
	}
	*c = *o
	return nil
}

// CompressedTextChunk is a zTXt entry: a keyword and a deflated Latin-1
// text value. The text is held decompressed; compression happens at
// serialization.
type CompressedTextChunk struct {
	Keyword string
	Text    string
}

func (c *CompressedTextChunk) ID() ChunkID { return IDzTXt }
func (c *CompressedTextChunk) Key() string { return c.Keyword }

func (c *CompressedTextChunk) ParseFrom(raw *ChunkRaw, _ *ImageInfo) error {
	sep := bytes.IndexByte(raw.Data, 0)
	if sep <= 0 || sep > 79 || sep+2 > len(raw.Data) {
		return fmt.Errorf("%w: zTXt keyword", ErrMalformedChunk)
	}
	if method := raw.Data[sep+1]; method != 0 {
		return fmt.Errorf("%w: zTXt compression method %d", ErrMalformedChunk, method)
	}
	text, err := inflateBytes(raw.Data[sep+2:])
	if err != nil {
		return fmt.Errorf("%w: zTXt text: %v", ErrMalformedChunk, err)
	}
	c.Keyword = string(raw.Data[:sep])
	c.Text = string(text)
	return nil
}

func (c *CompressedTextChunk) Serialize() (*ChunkRaw, error) {
	if !validKeyword(c.Keyword) {
		return nil, fmt.Errorf("%w: zTXt keyword %q", ErrMalformedChunk, c.Keyword)
	}
	var b bytes.Buffer
	b.WriteString(c.Keyword)
	b.WriteByte(0)
	b.WriteByte(0) // deflate
	b.Write(deflateBytes([]byte(c.Text)))
	return NewChunkRaw(IDzTXt, b.Bytes()), nil
}

func (c *CompressedTextChunk) Ordering() Ordering   { return OrderNone }
func (c *CompressedTextChunk) AllowsMultiple() bool { return true }

func (c *CompressedTextChunk) CloneFrom(other Chunk) error {
	o, ok := other.(*CompressedTextChunk)
	if !ok {
		return cloneErr(IDzTXt, other)
	}
	*c = *o
	return nil
}

// InternationalTextChunk is an iTXt entry: a keyword, a language tag, a
// translated keyword, and UTF-8 text, optionally deflated on the wire.
type InternationalTextChunk struct {
	Keyword           string
	Language          string
	TranslatedKeyword string
	Text              string
	Compressed        bool
}

func (c *InternationalTextChunk) ID() ChunkID { return IDiTXt }
func (c *InternationalTextChunk) Key() string { return c.Keyword }

func (c *InternationalTextChunk) ParseFrom(raw *ChunkRaw, _ *ImageInfo) error {
	d := raw.Data
	sep := bytes.IndexByte(d, 0)
	if sep <= 0 || sep > 79 || sep+3 > len(d) {
		return fmt.Errorf("%w: iTXt keyword", ErrMalformedChunk)
	}
	c.Keyword = string(d[:sep])
	flag, method := d[sep+1], d[sep+2]
	if flag > 1 || method != 0 {
		return fmt.Errorf("%w: iTXt compression %d/%d", ErrMalformedChunk, flag, method)
	}
	c.Compressed = flag == 1
	rest := d[sep+3:]
	langEnd := bytes.IndexByte(rest, 0)
	if langEnd < 0 {
		return fmt.Errorf("%w: iTXt language tag", ErrMalformedChunk)
	}
	c.Language = string(rest[:langEnd])
	rest = rest[langEnd+1:]
	transEnd := bytes.IndexByte(rest, 0)
	if transEnd < 0 {
		return fmt.Errorf("%w: iTXt translated keyword", ErrMalformedChunk)
	}
	c.TranslatedKeyword = string(rest[:transEnd])
	text := rest[transEnd+1:]
	if c.Compressed {
		plain, err := inflateBytes(text)
		if err != nil {
			return fmt.Errorf("%w: iTXt text: %v", ErrMalformedChunk, err)
		}
		c.Text = string(plain)
	} else {
		c.Text = string(text)
	}
	return nil
}

func (c *InternationalTextChunk) Serialize() (*ChunkRaw, error) {
	if !validKeyword(c.Keyword) {
		return nil, fmt.Errorf("%w: iTXt keyword %q", ErrMalformedChunk, c.Keyword)
	}
	var b bytes.Buffer
	b.WriteString(c.Keyword)
	b.WriteByte(0)
	if c.Compressed {
		b.WriteByte(1)
	} else {
		b.WriteByte(0)
	}
	b.WriteByte(0) // deflate
	b.WriteString(c.Language)
	b.WriteByte(0)
	b.WriteString(c.TranslatedKeyword)
	b.WriteByte(0)
	if c.Compressed {
		b.Write(deflateBytes([]byte(c.Text)))
	} else {
		b.WriteString(c.Text)
	}
	return NewChunkRaw(IDiTXt, b.Bytes()), nil
}

func (c *InternationalTextChunk) Ordering() Ordering   { return OrderNone }
func (c *InternationalTextChunk) AllowsMultiple() bool { return true }

func (c *InternationalTextChunk) CloneFrom(other Chunk) error {
	o, ok := other.(*InternationalTextChunk)
	if !ok {
		return cloneErr(IDiTXt, other)
	}
	*c = *o
	return nil
}
