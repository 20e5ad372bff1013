// Package imaging normalizes uploaded device photos to bounded JPEGs.
package imaging

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png"
	"io"
	"net/http"

	"golang.org/x/image/draw"
)

const (
	// PhotoSize bounds the longer side of a stored device photo.
	PhotoSize = 800
	// ThumbSize bounds the longer side of the photo printed on a slip.
	ThumbSize = 160
	// MaxUpload is the largest accepted upload in bytes.
	MaxUpload = 8 << 20

	quality = 85
)

// MIME is the content type of every processed photo.
const MIME = "image/jpeg"

// ErrTooLarge is returned for uploads over MaxUpload.
var ErrTooLarge = errors.New("image exceeds upload limit")

var accepted = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
}

// Photo reads an uploaded JPEG or PNG and returns it as a JPEG no larger
// than PhotoSize on either side. The format is sniffed from the bytes.
func Photo(r io.Reader) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxUpload+1))
	if err != nil {
		return nil, fmt.Errorf("reading image data: %w", err)
	}
	if len(data) > MaxUpload {
		return nil, ErrTooLarge
	}

	if detected := http.DetectContentType(data); !accepted[detected] {
		return nil, fmt.Errorf("unsupported image format %s, only JPEG and PNG are accepted", detected)
	}
	return Fit(data, PhotoSize)
}

// Fit decodes data and re-encodes it as a JPEG scaled down to fit in a
// size x size box. Smaller images keep their dimensions.
func Fit(data []byte, size int) ([]byte, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decoding image: %w", err)
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, scale(img, size), &jpeg.Options{Quality: quality}); err != nil {
		return nil, fmt.Errorf("encoding JPEG: %w", err)
	}
	return buf.Bytes(), nil
}

func scale(img image.Image, size int) image.Image {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= size && h <= size {
		return img
	}

	nw, nh := size, size
	if w > h {
		nh = max(1, h*size/w)
	} else {
		nw = max(1, w*size/h)
	}

	dst := image.NewRGBA(image.Rect(0, 0, nw, nh))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Over, nil)
	return dst
}
