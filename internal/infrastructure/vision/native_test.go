package vision

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/image/tiff"

	"groundtruth-bot/internal/domain/entity"
)

func encodeTIFF(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, tiff.Encode(&buf, img, nil))
	return buf.Bytes()
}

func grayRow(values ...uint8) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, len(values), 2))
	for y := 0; y < 2; y++ {
		for x, v := range values {
			img.Set(x, y, color.RGBA{R: v, G: v, B: v, A: 255})
		}
	}
	return img
}

func TestNativePreprocessor_CropNormalizeContrast(t *testing.T) {
	data := encodeTIFF(t, grayRow(255, 0, 100, 200))
	p := NewNativePreprocessor()

	img, err := p.Prepare(context.Background(), data, entity.Rect{X0: 1, Y0: 0, X1: 4, Y1: 1}, 1.0)
	require.NoError(t, err)
	require.Equal(t, 3, img.Width)
	require.Equal(t, 1, img.Height)
	require.Equal(t, []uint8{0, 127, 255}, img.Pix)

	img, err = p.Prepare(context.Background(), data, entity.Rect{X0: 1, Y0: 0, X1: 4, Y1: 1}, 2.0)
	require.NoError(t, err)
	require.Equal(t, []uint8{0, 127, 255}, img.Pix)
}

func TestNativePreprocessor_AveragesChannels(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 2, 1))
	img.Set(0, 0, color.RGBA{R: 30, G: 60, B: 90, A: 255})
	img.Set(1, 0, color.RGBA{R: 120, G: 120, B: 120, A: 255})

	out, err := NewNativePreprocessor().Prepare(context.Background(), encodeTIFF(t, img), entity.Rect{X1: 2, Y1: 1}, 1.0)
	require.NoError(t, err)
	// 60 и 120 после нормировки становятся 0 и 255
	require.Equal(t, []uint8{0, 255}, out.Pix)
}

func TestNativePreprocessor_DegenerateImage(t *testing.T) {
	data := encodeTIFF(t, grayRow(7, 7, 7))
	_, err := NewNativePreprocessor().Prepare(context.Background(), data, entity.Rect{X1: 3, Y1: 2}, 2.0)
	require.ErrorIs(t, err, entity.ErrDegenerateImage)
}

func TestNativePreprocessor_CropOutsideSource(t *testing.T) {
	data := encodeTIFF(t, grayRow(1, 2, 3))
	p := NewNativePreprocessor()

	_, err := p.Prepare(context.Background(), data, entity.Rect{X0: 0, Y0: 0, X1: 4, Y1: 2}, 2.0)
	require.ErrorIs(t, err, entity.ErrInvalidConfiguration)

	_, err = p.Prepare(context.Background(), data, entity.Rect{X0: 2, Y0: 0, X1: 2, Y1: 2}, 2.0)
	require.ErrorIs(t, err, entity.ErrInvalidConfiguration)
}

func TestNativePreprocessor_Errors(t *testing.T) {
	p := NewNativePreprocessor()

	_, err := p.Prepare(context.Background(), []byte("not an image"), entity.Rect{X1: 1, Y1: 1}, 2.0)
	require.Error(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = p.Prepare(ctx, encodeTIFF(t, grayRow(1, 2)), entity.Rect{X1: 2, Y1: 2}, 2.0)
	require.ErrorIs(t, err, context.Canceled)

	_, err = p.Prepare(context.Background(), encodeTIFF(t, grayRow(1, 2)), entity.Rect{X1: 2, Y1: 2}, -1)
	require.ErrorIs(t, err, entity.ErrInvalidConfiguration)
}

func TestEnhanceContrast(t *testing.T) {
	pix := []uint8{100, 110, 120}
	require.Equal(t, pix, enhanceContrast(pix, 1.0))
	require.Equal(t, []uint8{90, 110, 130}, enhanceContrast(pix, 2.0))
	require.Equal(t, []uint8{110, 110, 110}, enhanceContrast(pix, 0))
	require.Equal(t, []uint8{0, 128, 255}, enhanceContrast([]uint8{0, 128, 255}, 3.0))
}

func TestNewPreprocessor(t *testing.T) {
	p, err := NewPreprocessor("")
	require.NoError(t, err)
	require.IsType(t, &NativePreprocessor{}, p)

	p, err = NewPreprocessor(BackendGoCV)
	require.NoError(t, err)
	require.IsType(t, &GoCVPreprocessor{}, p)

	_, err = NewPreprocessor("vips")
	require.ErrorIs(t, err, entity.ErrInvalidConfiguration)
}
