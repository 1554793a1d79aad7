package imaging

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/veridion-labs/facegate/internal/domain"
)

func encodePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x % 256), G: uint8(y % 256), A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestDecode_Valid(t *testing.T) {
	data := encodePNG(t, 40, 30)

	img, err := Decode(data)
	require.NoError(t, err)
	assert.Equal(t, 40, img.Bounds().Dx())
	assert.Equal(t, 30, img.Bounds().Dy())
}

func TestDecode_Garbage(t *testing.T) {
	_, err := Decode([]byte("definitely not an image"))
	require.Error(t, err)

	var appErr *domain.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, domain.ErrInvalidImage.Code, appErr.Code)
}

func TestValidate(t *testing.T) {
	assert.NoError(t, Validate(encodePNG(t, 8, 8)))
	assert.Error(t, Validate(nil))
	assert.Error(t, Validate([]byte{0xff, 0x00}))
}

func TestSize(t *testing.T) {
	w, h, err := Size(encodePNG(t, 120, 64))
	require.NoError(t, err)
	assert.Equal(t, 120, w)
	assert.Equal(t, 64, h)
}

func TestDownscale(t *testing.T) {
	data := encodePNG(t, 100, 80)

	small, err := Downscale(data, 0.6)
	require.NoError(t, err)

	w, h, err := Size(small)
	require.NoError(t, err)
	assert.Equal(t, 60, w)
	assert.Equal(t, 48, h)
}

func TestDownscale_FactorOutOfRangeIsIdentity(t *testing.T) {
	data := encodePNG(t, 10, 10)

	for _, factor := range []float64{0, -1, 1, 2.5} {
		out, err := Downscale(data, factor)
		require.NoError(t, err)
		assert.Equal(t, data, out)
	}
}

func TestDownscale_InvalidInput(t *testing.T) {
	_, err := Downscale([]byte("junk"), 0.5)
	assert.Error(t, err)
}
