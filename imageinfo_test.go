package pngio

import (
	"errors"
	"testing"
)

func TestNewImageInfo_RowMath(t *testing.T) {
	tests := []struct {
		name        string
		w, h, depth int
		mode        ColorMode
		bytesPerRow int
		bytesPerPix int
		channels    int
	}{
		{"rgb8", 2, 2, 8, ModeRGB, 6, 3, 3},
		{"rgba16", 3, 1, 16, ModeRGBA, 24, 8, 4},
		{"gray1 odd width", 10, 4, 1, ModeGray, 2, 1, 1},
		{"paletted1 width5", 5, 5, 1, ModePaletted, 1, 1, 1},
		{"paletted4", 3, 3, 4, ModePaletted, 2, 1, 1},
		{"grayalpha8", 7, 7, 8, ModeGrayAlpha, 14, 2, 2},
		{"gray16", 5, 5, 16, ModeGray, 10, 2, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info, err := NewImageInfo(tt.w, tt.h, tt.depth, tt.mode)
			if err != nil {
				t.Fatalf("NewImageInfo() = %v", err)
			}
			if got := info.BytesPerRow(); got != tt.bytesPerRow {
				t.Errorf("BytesPerRow() = %d, want %d", got, tt.bytesPerRow)
			}
			if got := info.BytesPerPixel(); got != tt.bytesPerPix {
				t.Errorf("BytesPerPixel() = %d, want %d", got, tt.bytesPerPix)
			}
			if got := info.Channels(); got != tt.channels {
				t.Errorf("Channels() = %d, want %d", got, tt.channels)
			}
		})
	}
}

func TestNewImageInfo_RejectsInvalid(t *testing.T) {
	tests := []struct {
		name        string
		w, h, depth int
		mode        ColorMode
	}{
		{"zero width", 0, 1, 8, ModeGray},
		{"zero height", 1, 0, 8, ModeGray},
		{"negative width", -1, 1, 8, ModeGray},
		{"paletted 16-bit", 4, 4, 16, ModePaletted},
		{"rgb 4-bit", 4, 4, 4, ModeRGB},
		{"rgba 1-bit", 4, 4, 1, ModeRGBA},
		{"gray 3-bit", 4, 4, 3, ModeGray},
		{"bad color type", 4, 4, 8, ColorMode(5)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewImageInfo(tt.w, tt.h, tt.depth, tt.mode); !errors.Is(err, ErrUnsupported) {
				t.Errorf("NewImageInfo() = %v, want ErrUnsupported", err)
			}
		})
	}
}

func TestImageInfo_Flags(t *testing.T) {
	rgba, _ := NewImageInfo(1, 1, 8, ModeRGBA)
	if !rgba.HasAlpha() || rgba.HasPalette() || rgba.Grayscale() {
		t.Error("rgba flags wrong")
	}
	pal, _ := NewImageInfo(1, 1, 8, ModePaletted)
	if pal.HasAlpha() || !pal.HasPalette() || pal.Grayscale() {
		t.Error("paletted flags wrong")
	}
	ga, _ := NewImageInfo(1, 1, 8, ModeGrayAlpha)
	if !ga.HasAlpha() || !ga.Grayscale() {
		t.Error("gray+alpha flags wrong")
	}
}

func TestImageLine_SampleRoundTrip(t *testing.T) {
	for _, depth := range []int{1, 2, 4, 8} {
		info, err := NewImageInfo(11, 1, depth, ModeGray)
		if err != nil {
			t.Fatal(err)
		}
		line := NewImageLine(info)
		maxVal := uint16(1<<depth - 1)
		for i := 0; i < info.Samples(); i++ {
			line.SetSample(i, uint16(i)&maxVal)
		}
		for i := 0; i < info.Samples(); i++ {
			if got := line.Sample(i); got != uint16(i)&maxVal {
				t.Errorf("depth %d sample %d = %d, want %d", depth, i, got, uint16(i)&maxVal)
			}
		}
	}
}

func TestImageLine_Sample16(t *testing.T) {
	info, _ := NewImageInfo(2, 1, 16, ModeGrayAlpha)
	line := NewImageLine(info)
	line.SetSample(0, 0xbeef)
	line.SetSample(3, 0x0102)
	if line.Pix[0] != 0xbe || line.Pix[1] != 0xef {
		t.Errorf("16-bit sample not big-endian: % x", line.Pix[:2])
	}
	if got := line.Sample(0); got != 0xbeef {
		t.Errorf("Sample(0) = %04x, want beef", got)
	}
	if got := line.Sample(3); got != 0x0102 {
		t.Errorf("Sample(3) = %04x, want 0102", got)
	}
}
