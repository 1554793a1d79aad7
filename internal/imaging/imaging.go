// Package imaging decodes and resamples the still images flowing through
// the verification pipelines. Only JPEG and PNG are accepted on the wire.
package imaging

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png"

	"golang.org/x/image/draw"

	"github.com/veridion-labs/facegate/internal/domain"
)

// jpegQuality for re-encoded downsampled frames. The classifier only
// needs a rough frame, full fidelity is wasted bandwidth.
const jpegQuality = 85

// Decode parses an encoded image, mapping any failure to ErrInvalidImage.
func Decode(data []byte) (image.Image, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, domain.ErrInvalidImage.WithError(err)
	}
	return img, nil
}

// Validate reports whether data decodes as a supported image without
// keeping the pixels around.
func Validate(data []byte) error {
	if _, _, err := image.DecodeConfig(bytes.NewReader(data)); err != nil {
		return domain.ErrInvalidImage.WithError(err)
	}
	return nil
}

// Size returns the pixel dimensions of an encoded image.
func Size(data []byte) (width, height int, err error) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return 0, 0, domain.ErrInvalidImage.WithError(err)
	}
	return cfg.Width, cfg.Height, nil
}

// Downscale resamples an encoded image by the given factor and re-encodes
// it as JPEG. Factors outside (0,1) return the input unchanged; the
// callers only ever shrink.
func Downscale(data []byte, factor float64) ([]byte, error) {
	if factor <= 0 || factor >= 1 {
		return data, nil
	}

	src, err := Decode(data)
	if err != nil {
		return nil, err
	}

	bounds := src.Bounds()
	w := int(float64(bounds.Dx()) * factor)
	h := int(float64(bounds.Dy()) * factor)
	if w < 1 || h < 1 {
		return data, nil
	}

	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), src, bounds, draw.Over, nil)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil, fmt.Errorf("encode downscaled image: %w", err)
	}
	return buf.Bytes(), nil
}
