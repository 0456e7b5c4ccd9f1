package imaging

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"math/rand"
	"testing"
)

func createTestPNG(w, h int) []byte {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{0, 0, 255, 255})
		}
	}
	var buf bytes.Buffer
	png.Encode(&buf, img)
	return buf.Bytes()
}

func createTestJPEG(w, h int) []byte {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	var buf bytes.Buffer
	jpeg.Encode(&buf, img, &jpeg.Options{Quality: 90})
	return buf.Bytes()
}

func TestProcessLogoPassThrough(t *testing.T) {
	data := createTestPNG(100, 80)
	logo, err := ProcessLogo(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("ProcessLogo: %v", err)
	}
	if logo.MIME != "image/png" {
		t.Errorf("expected image/png, got %s", logo.MIME)
	}
	if !bytes.Equal(logo.Data, data) {
		t.Error("small logo should be passed through unchanged")
	}
	if logo.Width != 100 || logo.Height != 80 {
		t.Errorf("got %dx%d, want 100x80", logo.Width, logo.Height)
	}
}

func TestProcessLogoDownscale(t *testing.T) {
	data := createTestPNG(2048, 1024)
	logo, err := ProcessLogo(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("ProcessLogo large image: %v", err)
	}

	img, err := png.Decode(bytes.NewReader(logo.Data))
	if err != nil {
		t.Fatalf("decoding result: %v", err)
	}
	b := img.Bounds()
	if b.Dx() != MaxDimension || b.Dy() != MaxDimension/2 {
		t.Errorf("expected %dx%d, got %dx%d", MaxDimension, MaxDimension/2, b.Dx(), b.Dy())
	}
}

func TestProcessLogoRejectsJPEG(t *testing.T) {
	_, err := ProcessLogo(bytes.NewReader(createTestJPEG(20, 20)))
	if err == nil {
		t.Error("expected error for JPEG")
	}
}

func TestProcessLogoInvalidFormat(t *testing.T) {
	_, err := ProcessLogo(bytes.NewReader([]byte("not an image")))
	if err == nil {
		t.Error("expected error for invalid format")
	}
}

func TestProcessLogoEmpty(t *testing.T) {
	if _, err := ProcessLogo(bytes.NewReader(nil)); err == nil {
		t.Error("expected error for empty input")
	}
}

func TestProcessLogoTooLarge(t *testing.T) {
	// Random noise does not compress, so this PNG is well over the limit.
	img := image.NewNRGBA(image.Rect(0, 0, 400, 400))
	rng := rand.New(rand.NewSource(1))
	rng.Read(img.Pix)
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encoding: %v", err)
	}
	if buf.Len() <= MaxBytes {
		t.Fatalf("test image too small: %d bytes", buf.Len())
	}

	_, err := ProcessLogo(&buf)
	if !errors.Is(err, ErrTooLarge) {
		t.Errorf("expected ErrTooLarge, got %v", err)
	}
}
