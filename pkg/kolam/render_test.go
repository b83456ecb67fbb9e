package kolam

import (
	"bytes"
	"image/png"
	"testing"
)

var pngMagic = []byte{0x89, 0x50, 0x4E, 0x47}

func TestRenderPNG(t *testing.T) {
	d, err := Generate(5, NewRand(7))
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	data, err := RenderPNG(d)
	if err != nil {
		t.Fatalf("RenderPNG: %v", err)
	}
	if !bytes.HasPrefix(data, pngMagic) {
		t.Fatal("output is not a PNG")
	}

	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	b := img.Bounds()
	if b.Dx() != DefaultImageWidth || b.Dy() != DefaultImageHeight {
		t.Errorf("image is %dx%d, want %dx%d", b.Dx(), b.Dy(), DefaultImageWidth, DefaultImageHeight)
	}
}

func TestRenderPNGDimensions(t *testing.T) {
	d, err := Generate(3, NewRand(7))
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	data, err := RenderPNG(d, WithDimensions(400, 300))
	if err != nil {
		t.Fatalf("RenderPNG: %v", err)
	}
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 400 || b.Dy() != 300 {
		t.Errorf("image is %dx%d, want 400x300", b.Dx(), b.Dy())
	}
}

func TestRenderPNGRejectsBadDimensions(t *testing.T) {
	d, err := Generate(3, NewRand(7))
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if _, err := RenderPNG(d, WithDimensions(0, 100)); err == nil {
		t.Error("expected error for zero width")
	}
	if _, err := RenderPNG(d, WithDimensions(100, -1)); err == nil {
		t.Error("expected error for negative height")
	}
}

func TestRenderPNGThemes(t *testing.T) {
	d, err := Generate(4, NewRand(7))
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	for _, name := range ThemeNames() {
		th, err := ThemeByName(name)
		if err != nil {
			t.Fatalf("ThemeByName(%s): %v", name, err)
		}
		if _, err := RenderPNG(d, WithTheme(th), WithoutSmoothing()); err != nil {
			t.Errorf("RenderPNG theme %s: %v", name, err)
		}
	}
}
