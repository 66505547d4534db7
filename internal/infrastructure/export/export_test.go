package export

import (
	"bytes"
	"image"
	"image/png"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"groundtruth-bot/internal/domain/entity"
)

func sampleLabels() *entity.LabelMap {
	m := entity.NewLabelMap(3, 2)
	m.Set(1, 0, entity.Material)
	m.Set(2, 1, entity.Material)
	return m
}

func TestWriteLabels(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteLabels(&buf, sampleLabels()))
	require.Equal(t, "0 1 0\n0 0 1\n", buf.String())
}

func TestReadLabels(t *testing.T) {
	text, err := LabelsText(sampleLabels())
	require.NoError(t, err)

	m, err := ReadLabels(bytes.NewReader(text))
	require.NoError(t, err)
	require.Equal(t, sampleLabels(), m)
}

func TestReadLabels_Errors(t *testing.T) {
	_, err := ReadLabels(strings.NewReader("0 1\n0\n"))
	require.ErrorIs(t, err, entity.ErrShapeMismatch)

	_, err = ReadLabels(strings.NewReader("0 2\n"))
	require.ErrorContains(t, err, "invalid label")
}

func TestReadLabels_Empty(t *testing.T) {
	_, err := ReadLabels(strings.NewReader(""))
	require.ErrorIs(t, err, entity.ErrShapeMismatch)

	_, err = ReadLabels(strings.NewReader("\n  \n"))
	require.ErrorIs(t, err, entity.ErrShapeMismatch)
}

func TestMaskPNG(t *testing.T) {
	data, err := MaskPNG(sampleLabels())
	require.NoError(t, err)

	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	require.Equal(t, image.Rect(0, 0, 3, 2), img.Bounds())

	r, _, _, _ := img.At(1, 0).RGBA()
	require.Equal(t, uint32(0xffff), r)
	r, _, _, _ = img.At(0, 0).RGBA()
	require.Zero(t, r)
}

func TestOverlay(t *testing.T) {
	img, err := entity.NewIntensity(3, 2, []uint8{50, 50, 50, 50, 50, 50})
	require.NoError(t, err)

	out, err := Overlay(img, sampleLabels(), 1.0)
	require.NoError(t, err)
	require.Equal(t, MaterialTint, out.NRGBAAt(1, 0))
	require.Equal(t, uint8(50), out.NRGBAAt(0, 0).R)
	require.Equal(t, uint8(50), out.NRGBAAt(0, 0).G)

	data, err := OverlayPNG(img, sampleLabels(), 0.5)
	require.NoError(t, err)
	require.NotEmpty(t, data)

	_, err = Overlay(img, entity.NewLabelMap(2, 2), 1.0)
	require.ErrorIs(t, err, entity.ErrShapeMismatch)
}
