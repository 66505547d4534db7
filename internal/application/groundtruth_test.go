package app

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/image/tiff"

	"groundtruth-bot/config"
	"groundtruth-bot/internal/domain/entity"
	"groundtruth-bot/internal/domain/segmentation"
	"groundtruth-bot/internal/infrastructure/export"
	"groundtruth-bot/internal/infrastructure/storage"
	"groundtruth-bot/internal/infrastructure/vision"
	"groundtruth-bot/internal/logger"
)

func testConfig() *config.Config {
	return &config.Config{
		Crop: entity.Rect{X0: 2, Y0: 1, X1: 22, Y1: 21},
		Windows: segmentation.Windows{
			SubstrateTop:    entity.Rect{X0: 0, Y0: 0, X1: 5, Y1: 5},
			SubstrateBottom: entity.Rect{X0: 0, Y0: 15, X1: 5, Y1: 20},
			MaterialTop:     entity.Rect{X0: 15, Y0: 0, X1: 20, Y1: 5},
			MaterialBottom:  entity.Rect{X0: 15, Y0: 15, X1: 20, Y1: 20},
		},
		Split:          segmentation.Split{Mode: segmentation.SplitRow, Row: 10},
		Contrast:       2.0,
		Isolation:      segmentation.IsolationInPlace,
		Rethreshold:    true,
		OverlayOpacity: 0.4,
	}
}

// sampleTIFF 24x22: кадр (2,1)-(22,21) делится пополам на подложку и материал,
// в материале один шумовой пиксель.
func sampleTIFF(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 24, 22))
	for y := 0; y < 22; y++ {
		for x := 0; x < 24; x++ {
			v := uint8(30)
			if x >= 12 {
				v = 220
			}
			if x == 14 && y == 9 {
				v = 30
			}
			img.Set(x, y, color.RGBA{R: v, G: v, B: v, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, tiff.Encode(&buf, img, nil))
	return buf.Bytes()
}

type recordingPreprocessor struct {
	calls int
	img   *entity.Intensity
	err   error
}

func (p *recordingPreprocessor) Prepare(ctx context.Context, data []byte, crop entity.Rect, contrast float64) (*entity.Intensity, error) {
	p.calls++
	return p.img, p.err
}

func TestGroundTruthService_Generate(t *testing.T) {
	repo := storage.NewMemoryRepository()
	svc := NewGroundTruthService(testConfig(), vision.NewNativePreprocessor(), repo, logger.Nop())
	ctx := context.Background()

	out, err := svc.GenerateFor(ctx, 7, sampleTIFF(t))
	require.NoError(t, err)

	gt := out.GroundTruth
	require.Equal(t, 1, gt.Flipped)
	require.Equal(t, 0.0, gt.Stats.SubstrateTop)
	require.Equal(t, 255.0, gt.Stats.MaterialTop)
	require.InDelta(t, 0.5, gt.MaterialFraction(), 1e-12)
	require.NotEmpty(t, out.Mask)
	require.NotEmpty(t, out.Overlay)

	labels, err := export.ReadLabels(bytes.NewReader(out.Labels))
	require.NoError(t, err)
	require.Equal(t, gt.Labels, labels)
	for i, l := range labels.Pix {
		want := entity.Substrate
		if i%20 >= 10 {
			want = entity.Material
		}
		require.Equal(t, want, l, "pixel %d", i)
	}

	stored, err := svc.LastLabels(ctx, 7)
	require.NoError(t, err)
	require.Equal(t, out.Labels, stored)

	none, err := svc.LastLabels(ctx, 8)
	require.NoError(t, err)
	require.Nil(t, none)
}

func TestGroundTruthService_InvalidConfigurationBeforeDecoding(t *testing.T) {
	cfg := testConfig()
	cfg.Windows.MaterialBottom = entity.Rect{X0: 15, Y0: 15, X1: 21, Y1: 20}
	pre := &recordingPreprocessor{}
	svc := NewGroundTruthService(cfg, pre, nil, logger.Nop())

	out, err := svc.Generate(context.Background(), []byte("ignored"))
	require.ErrorIs(t, err, entity.ErrInvalidConfiguration)
	require.Nil(t, out)
	require.Zero(t, pre.calls)
}

func TestGroundTruthService_DegenerateImage(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 30, 30))
	var buf bytes.Buffer
	require.NoError(t, tiff.Encode(&buf, img, nil))

	svc := NewGroundTruthService(testConfig(), vision.NewNativePreprocessor(), nil, logger.Nop())
	out, err := svc.Generate(context.Background(), buf.Bytes())
	require.ErrorIs(t, err, entity.ErrDegenerateImage)
	require.Nil(t, out)
}

func TestGroundTruthService_ShapeMismatchFromPreprocessor(t *testing.T) {
	// предобработчик вернул сетку не того размера, что кадр
	small, err := entity.NewIntensity(4, 4, make([]uint8, 16))
	require.NoError(t, err)
	svc := NewGroundTruthService(testConfig(), &recordingPreprocessor{img: small}, nil, logger.Nop())

	_, err = svc.Generate(context.Background(), nil)
	require.ErrorIs(t, err, entity.ErrShapeMismatch)
}

func TestGroundTruthService_NoPreprocessor(t *testing.T) {
	svc := NewGroundTruthService(testConfig(), nil, nil, logger.Nop())
	_, err := svc.Generate(context.Background(), nil)
	require.Error(t, err)

	_, err = svc.LastLabels(context.Background(), 1)
	require.Error(t, err)
}
