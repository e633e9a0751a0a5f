package pngio

import (
	"fmt"
	"image"
	"image/color"
	"io"
)

// Pixmap is a fully decoded raster: every row of one image, packed at
// the image bit depth, plus the optional palette. It is the bridge
// between the row-oriented codec and whole-image consumers; external
// image manipulation receives a Pixmap (or an image.Image built from
// one) and never touches chunk framing.
type Pixmap struct {
	info    *ImageInfo
	pix     []byte // rows concatenated, BytesPerRow each
	palette []color.RGBA
}

// NewPixmap allocates a zeroed pixmap for the image shape.
func NewPixmap(info *ImageInfo) *Pixmap {
	return &Pixmap{info: info, pix: make([]byte, info.Height()*info.BytesPerRow())}
}

// Info returns the image descriptor.
func (p *Pixmap) Info() *ImageInfo { return p.info }

// Palette returns the palette colors, or nil.
func (p *Pixmap) Palette() []color.RGBA { return p.palette }

// SetPalette attaches a palette. Required before encoding a paletted
// pixmap.
func (p *Pixmap) SetPalette(colors []color.RGBA) { p.palette = colors }

// Row returns the packed bytes of row y. The slice aliases the pixmap's
// storage.
func (p *Pixmap) Row(y int) []byte {
	n := p.info.BytesPerRow()
	return p.pix[y*n : (y+1)*n : (y+1)*n]
}

// Line wraps row y as an ImageLine sharing the pixmap's storage.
func (p *Pixmap) Line(y int) *ImageLine {
	return &ImageLine{Row: y, Pix: p.Row(y), info: p.info}
}

// DecodePixmap reads a whole PNG stream into a pixmap.
func DecodePixmap(r io.Reader, opts ...ReaderOption) (*Pixmap, error) {
	pr, err := NewReader(r, opts...)
	if err != nil {
		return nil, err
	}
	p := NewPixmap(pr.Info())
	for y := 0; y < pr.Info().Height(); y++ {
		line, err := pr.ReadRow(y)
		if err != nil {
			return nil, err
		}
		copy(p.Row(y), line.Pix)
	}
	if plte := pr.Palette(); plte != nil {
		p.palette = plte.Colors
		if trns, ok := pr.Chunks().First(IDtRNS).(*TRNSChunk); ok && trns.Mode == ModePaletted {
			p.palette = append([]color.RGBA(nil), plte.Colors...)
			for i, a := range trns.PaletteAlpha {
				if i < len(p.palette) {
					p.palette[i].A = a
				}
			}
		}
	}
	return p, pr.Close()
}

// Encode writes the pixmap as one PNG stream.
func (p *Pixmap) Encode(w io.Writer, opts ...WriterOption) error {
	pw, err := NewWriter(w, p.info, opts...)
	if err != nil {
		return err
	}
	if len(p.palette) > 0 {
		opaque := make([]color.RGBA, len(p.palette))
		alpha := make([]uint8, 0, len(p.palette))
		hasAlpha := false
		for i, c := range p.palette {
			opaque[i] = color.RGBA{R: c.R, G: c.G, B: c.B, A: 0xff}
			alpha = append(alpha, c.A)
			if c.A != 0xff {
				hasAlpha = true
			}
		}
		pw.SetPalette(opaque)
		if hasAlpha && p.info.HasPalette() {
			pw.QueueChunk(&TRNSChunk{Mode: ModePaletted, PaletteAlpha: alpha})
		}
	}
	for y := 0; y < p.info.Height(); y++ {
		if err := pw.WriteRow(p.Line(y), y); err != nil {
			return err
		}
	}
	return pw.End()
}

// DecodeImage reads a whole PNG stream into a standard library image.
// The concrete type depends on the color mode: Gray or Gray16 for
// grayscale, Paletted for indexed color, NRGBA or NRGBA64 otherwise.
func DecodeImage(r io.Reader, opts ...ReaderOption) (image.Image, error) {
	p, err := DecodePixmap(r, opts...)
	if err != nil {
		return nil, err
	}
	return p.ToImage()
}

// EncodeImage writes a standard library image as one PNG stream,
// choosing the closest color mode for the concrete image type.
func EncodeImage(w io.Writer, img image.Image, opts ...WriterOption) error {
	p, err := PixmapFromImage(img)
	if err != nil {
		return err
	}
	return p.Encode(w, opts...)
}

// ToImage converts the pixmap to a standard library image.
func (p *Pixmap) ToImage() (image.Image, error) {
	w, h := p.info.Width(), p.info.Height()
	rect := image.Rect(0, 0, w, h)
	switch p.info.Mode() {
	case ModePaletted:
		if len(p.palette) == 0 {
			return nil, fmt.Errorf("%w: paletted pixmap without a palette", ErrProtocolViolation)
		}
		pal := make(color.Palette, len(p.palette))
		for i, c := range p.palette {
			pal[i] = c
		}
		img := image.NewPaletted(rect, pal)
		for y := 0; y < h; y++ {
			line := p.Line(y)
			for x := 0; x < w; x++ {
				img.Pix[y*img.Stride+x] = uint8(line.Sample(x))
			}
		}
		return img, nil

	case ModeGray:
		if p.info.BitDepth() == 16 {
			img := image.NewGray16(rect)
			for y := 0; y < h; y++ {
				copy(img.Pix[y*img.Stride:], p.Row(y))
			}
			return img, nil
		}
		img := image.NewGray(rect)
		maxVal := uint32(1<<p.info.BitDepth() - 1)
		for y := 0; y < h; y++ {
			line := p.Line(y)
			for x := 0; x < w; x++ {
				img.Pix[y*img.Stride+x] = uint8(uint32(line.Sample(x)) * 0xff / maxVal)
			}
		}
		return img, nil

	case ModeGrayAlpha:
		if p.info.BitDepth() == 16 {
			img := image.NewNRGBA64(rect)
			for y := 0; y < h; y++ {
				line := p.Line(y)
				for x := 0; x < w; x++ {
					img.SetNRGBA64(x, y, color.NRGBA64{
						R: line.Sample(2 * x), G: line.Sample(2 * x), B: line.Sample(2 * x),
						A: line.Sample(2*x + 1),
					})
				}
			}
			return img, nil
		}
		img := image.NewNRGBA(rect)
		for y := 0; y < h; y++ {
			row := p.Row(y)
			for x := 0; x < w; x++ {
				g, a := row[2*x], row[2*x+1]
				img.SetNRGBA(x, y, color.NRGBA{R: g, G: g, B: g, A: a})
			}
		}
		return img, nil

	case ModeRGB:
		if p.info.BitDepth() == 16 {
			img := image.NewNRGBA64(rect)
			for y := 0; y < h; y++ {
				line := p.Line(y)
				for x := 0; x < w; x++ {
					img.SetNRGBA64(x, y, color.NRGBA64{
						R: line.Sample(3 * x), G: line.Sample(3*x + 1), B: line.Sample(3*x + 2),
						A: 0xffff,
					})
				}
			}
			return img, nil
		}
		img := image.NewNRGBA(rect)
		for y := 0; y < h; y++ {
			row := p.Row(y)
			for x := 0; x < w; x++ {
				img.SetNRGBA(x, y, color.NRGBA{R: row[3*x], G: row[3*x+1], B: row[3*x+2], A: 0xff})
			}
		}
		return img, nil

	case ModeRGBA:
		if p.info.BitDepth() == 16 {
			img := image.NewNRGBA64(rect)
			for y := 0; y < h; y++ {
				copy(img.Pix[y*img.Stride:], p.Row(y))
			}
			return img, nil
		}
		img := image.NewNRGBA(rect)
		for y := 0; y < h; y++ {
			copy(img.Pix[y*img.Stride:], p.Row(y))
		}
		return img, nil
	}
	return nil, fmt.Errorf("%w: color type %d", ErrUnsupported, uint8(p.info.Mode()))
}

// PixmapFromImage converts a standard library image to a pixmap,
// choosing the closest color mode for the concrete type. Types without
// a direct mapping go through NRGBA conversion.
func PixmapFromImage(img image.Image) (*Pixmap, error) {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()

	switch src := img.(type) {
	case *image.Gray:
		info, err := NewImageInfo(w, h, 8, ModeGray)
		if err != nil {
			return nil, err
		}
		p := NewPixmap(info)
		for y := 0; y < h; y++ {
			copy(p.Row(y), src.Pix[y*src.Stride:y*src.Stride+w])
		}
		return p, nil

	case *image.Gray16:
		info, err := NewImageInfo(w, h, 16, ModeGray)
		if err != nil {
			return nil, err
		}
		p := NewPixmap(info)
		for y := 0; y < h; y++ {
			copy(p.Row(y), src.Pix[y*src.Stride:y*src.Stride+2*w])
		}
		return p, nil

	case *image.Paletted:
		if len(src.Palette) > 256 {
			return nil, fmt.Errorf("%w: palette with %d entries", ErrUnsupported, len(src.Palette))
		}
		info, err := NewImageInfo(w, h, 8, ModePaletted)
		if err != nil {
			return nil, err
		}
		p := NewPixmap(info)
		for y := 0; y < h; y++ {
			copy(p.Row(y), src.Pix[y*src.Stride:y*src.Stride+w])
		}
		pal := make([]color.RGBA, len(src.Palette))
		for i, c := range src.Palette {
			r, g, b, a := c.RGBA()
			if a > 0 {
				// Palette colors are stored non-premultiplied.
				r = r * 0xffff / a
				g = g * 0xffff / a
				b = b * 0xffff / a
			}
			pal[i] = color.RGBA{R: uint8(r >> 8), G: uint8(g >> 8), B: uint8(b >> 8), A: uint8(a >> 8)}
		}
		p.SetPalette(pal)
		return p, nil

	case *image.NRGBA:
		info, err := NewImageInfo(w, h, 8, ModeRGBA)
		if err != nil {
			return nil, err
		}
		p := NewPixmap(info)
		for y := 0; y < h; y++ {
			copy(p.Row(y), src.Pix[y*src.Stride:y*src.Stride+4*w])
		}
		return p, nil

	case *image.NRGBA64:
		info, err := NewImageInfo(w, h, 16, ModeRGBA)
		if err != nil {
			return nil, err
		}
		p := NewPixmap(info)
		for y := 0; y < h; y++ {
			copy(p.Row(y), src.Pix[y*src.Stride:y*src.Stride+8*w])
		}
		return p, nil
	}

	// Generic path: convert through non-premultiplied RGBA.
	info, err := NewImageInfo(w, h, 8, ModeRGBA)
	if err != nil {
		return nil, err
	}
	p := NewPixmap(info)
	for y := 0; y < h; y++ {
		row := p.Row(y)
		for x := 0; x < w; x++ {
			c := color.NRGBAModel.Convert(img.At(bounds.Min.X+x, bounds.Min.Y+y)).(color.NRGBA)
			row[4*x] = c.R
			row[4*x+1] = c.G
			row[4*x+2] = c.B
			row[4*x+3] = c.A
		}
	}
	return p, nil
}
