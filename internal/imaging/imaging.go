// Package imaging validates and normalizes company logos before upload.
package imaging

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/png"
	"io"
	"net/http"

	"golang.org/x/image/draw"
)

// MaxBytes is the largest accepted logo upload.
const MaxBytes = 500 * 1024

// MaxDimension is the maximum width or height of a stored logo.
const MaxDimension = 512

// MIME is the only accepted and produced content type.
const MIME = "image/png"

// ErrTooLarge is returned for uploads over MaxBytes.
var ErrTooLarge = errors.New("image exceeds 500 KB")

// Logo is a processed logo ready for upload.
type Logo struct {
	Data   []byte
	MIME   string
	Width  int
	Height int
}

// ProcessLogo reads a logo, checks its size and format by sniffing bytes,
// and downscales it if needed. Logos within bounds are passed through
// unchanged; larger ones are re-encoded as PNG.
func ProcessLogo(r io.Reader) (*Logo, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("reading image data: %w", err)
	}
	if len(data) > MaxBytes {
		return nil, ErrTooLarge
	}
	if len(data) == 0 {
		return nil, errors.New("empty image")
	}

	// Client headers are not trusted.
	if detected := http.DetectContentType(data); detected != MIME {
		return nil, fmt.Errorf("unsupported image format: %s (only PNG accepted)", detected)
	}

	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decoding image: %w", err)
	}

	scaled := downscale(img, MaxDimension)
	b := scaled.Bounds()
	if scaled == img {
		return &Logo{Data: data, MIME: MIME, Width: b.Dx(), Height: b.Dy()}, nil
	}

	var buf bytes.Buffer
	enc := png.Encoder{CompressionLevel: png.BestCompression}
	if err := enc.Encode(&buf, scaled); err != nil {
		return nil, fmt.Errorf("encoding PNG: %w", err)
	}
	return &Logo{Data: buf.Bytes(), MIME: MIME, Width: b.Dx(), Height: b.Dy()}, nil
}

// downscale resizes img so neither dimension exceeds maxDim, keeping the
// aspect ratio. Images already within bounds are returned as is.
func downscale(img image.Image, maxDim int) image.Image {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w <= maxDim && h <= maxDim {
		return img
	}

	newW, newH := maxDim, maxDim
	if w > h {
		newH = h * maxDim / w
	} else {
		newW = w * maxDim / h
	}
	newW = max(newW, 1)
	newH = max(newH, 1)

	dst := image.NewNRGBA(image.Rect(0, 0, newW, newH))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Src, nil)
	return dst
}
