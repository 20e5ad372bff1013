package imaging

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"
)

func solid(w, h int, c color.Color) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, c)
		}
	}
	return img
}

func testJPEG(w, h int) []byte {
	var buf bytes.Buffer
	jpeg.Encode(&buf, solid(w, h, color.RGBA{255, 0, 0, 255}), &jpeg.Options{Quality: 90})
	return buf.Bytes()
}

func testPNG(w, h int) []byte {
	var buf bytes.Buffer
	png.Encode(&buf, solid(w, h, color.RGBA{0, 0, 255, 255}))
	return buf.Bytes()
}

func dimensions(t *testing.T, data []byte) (int, int) {
	t.Helper()
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("decoding result: %v", err)
	}
	if format != "jpeg" {
		t.Errorf("expected jpeg output, got %s", format)
	}
	return img.Bounds().Dx(), img.Bounds().Dy()
}

func TestPhoto(t *testing.T) {
	tests := []struct {
		name         string
		data         []byte
		wantW, wantH int
	}{
		{"small jpeg kept", testJPEG(50, 40), 50, 40},
		{"png converted", testPNG(100, 100), 100, 100},
		{"wide downscaled", testJPEG(1600, 400), PhotoSize, 200},
		{"tall downscaled", testPNG(300, 1200), 200, PhotoSize},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := Photo(bytes.NewReader(tt.data))
			if err != nil {
				t.Fatalf("Photo: %v", err)
			}
			w, h := dimensions(t, out)
			if w != tt.wantW || h != tt.wantH {
				t.Errorf("got %dx%d, want %dx%d", w, h, tt.wantW, tt.wantH)
			}
		})
	}
}

func TestPhotoRejected(t *testing.T) {
	if _, err := Photo(bytes.NewReader([]byte("not an image"))); err == nil {
		t.Error("expected error for text")
	}
	if _, err := Photo(bytes.NewReader([]byte("GIF89a..."))); err == nil {
		t.Error("expected error for GIF")
	}

	big := make([]byte, MaxUpload+10)
	copy(big, testJPEG(10, 10))
	if _, err := Photo(bytes.NewReader(big)); !errors.Is(err, ErrTooLarge) {
		t.Errorf("oversized upload: err = %v", err)
	}
}

func TestFitThumb(t *testing.T) {
	out, err := Fit(testJPEG(640, 480), ThumbSize)
	if err != nil {
		t.Fatalf("Fit: %v", err)
	}
	if w, h := dimensions(t, out); w != ThumbSize || h != 120 {
		t.Errorf("got %dx%d, want %dx120", w, h, ThumbSize)
	}
}
