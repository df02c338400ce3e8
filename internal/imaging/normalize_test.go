package imaging

import (
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"
)

func TestFitWithin(t *testing.T) {
	tests := []struct {
		name         string
		w, h, max    int
		wantW, wantH int
		wantOK       bool
	}{
		{"disabled", 4000, 3000, 0, 4000, 3000, false},
		{"negative disables", 4000, 3000, -1, 4000, 3000, false},
		{"already fits", 1800, 900, 1800, 1800, 900, false},
		{"landscape", 3600, 1800, 1800, 1800, 900, true},
		{"portrait", 1000, 4000, 1800, 450, 1800, true},
		{"square", 2000, 2000, 1800, 1800, 1800, true},
		{"thin strip floors at one", 10000, 2, 1800, 1800, 1, true},
		{"tall strip floors at one", 1, 5000, 100, 1, 100, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, h, ok := FitWithin(tt.w, tt.h, tt.max)
			if w != tt.wantW || h != tt.wantH || ok != tt.wantOK {
				t.Errorf("FitWithin(%d, %d, %d) = (%d, %d, %v), want (%d, %d, %v)",
					tt.w, tt.h, tt.max, w, h, ok, tt.wantW, tt.wantH, tt.wantOK)
			}
		})
	}
}

func TestToOpaqueRGB(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 2, 1))
	src.SetNRGBA(0, 0, color.NRGBA{200, 100, 50, 0})
	src.SetNRGBA(1, 0, color.NRGBA{10, 20, 30, 128})

	out := ToOpaqueRGB(src)

	if got := out.NRGBAAt(0, 0); got != (color.NRGBA{200, 100, 50, 255}) {
		t.Errorf("pixel 0: got %v, want color kept with full alpha", got)
	}
	if got := out.NRGBAAt(1, 0); got != (color.NRGBA{10, 20, 30, 255}) {
		t.Errorf("pixel 1: got %v, want color kept with full alpha", got)
	}
	if src.NRGBAAt(0, 0).A != 0 {
		t.Error("ToOpaqueRGB modified its input")
	}
}

func TestNormalize(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 400, 100))
	for i := range src.Pix {
		src.Pix[i] = 0x80
	}
	srcPath := writeTestPNG(t, src, "normalize-src-*.png")
	defer os.Remove(srcPath)

	scope := NewTempScope(t.TempDir())
	defer scope.Cleanup()

	out, err := Normalize(srcPath, NormalizeOptions{MaxDimension: 200}, scope)
	if err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}
	if out == srcPath {
		t.Fatal("Normalize should write a new file")
	}

	img, err := Load(out, false)
	if err != nil {
		t.Fatalf("failed to load normalized image: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 200 || b.Dy() != 50 {
		t.Errorf("dimensions: got %dx%d, want 200x50", b.Dx(), b.Dy())
	}
	if _, _, _, a := img.At(10, 10).RGBA(); a != 0xffff {
		t.Errorf("normalized image is not opaque: alpha=%d", a)
	}
	if filepath.Ext(out) != ".png" {
		t.Errorf("normalized file should be PNG, got %s", out)
	}
}

func TestNormalize_NoDownscale(t *testing.T) {
	srcPath := createTestImage(t, 300, 120, color.RGBA{0, 128, 0, 255})
	defer os.Remove(srcPath)

	scope := NewTempScope(t.TempDir())
	defer scope.Cleanup()

	out, err := Normalize(srcPath, NormalizeOptions{}, scope)
	if err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}
	img, err := Load(out, false)
	if err != nil {
		t.Fatalf("failed to load normalized image: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 300 || b.Dy() != 120 {
		t.Errorf("dimensions: got %dx%d, want 300x120", b.Dx(), b.Dy())
	}
}

func TestNormalize_CorruptImage(t *testing.T) {
	dir := t.TempDir()
	bad := filepath.Join(dir, "broken.png")
	if err := os.WriteFile(bad, []byte("\x89PNG garbage"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	scopeDir := t.TempDir()
	scope := NewTempScope(scopeDir)

	if _, err := Normalize(bad, NormalizeOptions{MaxDimension: DefaultMaxDimension}, scope); err == nil {
		t.Fatal("Normalize should fail for corrupt image")
	}
	scope.Cleanup()

	entries, _ := os.ReadDir(scopeDir)
	if len(entries) != 0 {
		t.Errorf("expected no transient files, found %d", len(entries))
	}
}

func TestNormalize_Inspect(t *testing.T) {
	srcPath := createTestImage(t, 64, 32, color.RGBA{0, 0, 255, 255})
	defer os.Remove(srcPath)

	scope := NewTempScope(t.TempDir())
	defer scope.Cleanup()

	var info *ImageInfo
	_, err := Normalize(srcPath, NormalizeOptions{
		MaxDimension: 16,
		Inspect:      func(i *ImageInfo) { info = i },
	}, scope)
	if err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}

	if info == nil {
		t.Fatal("Inspect was not called")
	}
	if info.Width != 64 || info.Height != 32 {
		t.Errorf("Inspect should see the input dimensions, got %dx%d", info.Width, info.Height)
	}
	if info.Format != "png" {
		t.Errorf("format: got %q, want png", info.Format)
	}
}
