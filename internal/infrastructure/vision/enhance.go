package vision

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"groundtruth-bot/internal/domain/entity"
)

// normalize растягивает значения в 0..255 с отбрасыванием дробной части.
func normalize(values []float64) ([]uint8, error) {
	if len(values) == 0 {
		return nil, fmt.Errorf("%w: no pixels", entity.ErrDegenerateImage)
	}
	lo, hi := floats.Min(values), floats.Max(values)
	if hi == lo {
		return nil, fmt.Errorf("%w: zero dynamic range (all pixels %.2f)", entity.ErrDegenerateImage, lo)
	}

	pix := make([]uint8, len(values))
	for i, v := range values {
		pix[i] = uint8((v - lo) / (hi - lo) * 255)
	}
	return pix, nil
}

// enhanceContrast смешивает изображение с однотонным средним серым:
// out = mean + factor*(v - mean), где mean округлён до целого.
// factor 1 оставляет изображение без изменений, 0 даёт однотонное.
func enhanceContrast(pix []uint8, factor float64) []uint8 {
	values := make([]float64, len(pix))
	for i, p := range pix {
		values[i] = float64(p)
	}
	mean := float64(int(stat.Mean(values, nil) + 0.5))

	out := make([]uint8, len(pix))
	for i, v := range values {
		out[i] = clip8(mean + factor*(v-mean))
	}
	return out
}

func clip8(v float64) uint8 {
	switch {
	case v <= 0:
		return 0
	case v >= 255:
		return 255
	default:
		return uint8(v)
	}
}

// toIntensity общий хвост обоих бэкендов: нормировка и контраст.
func toIntensity(values []float64, width, height int, contrast float64) (*entity.Intensity, error) {
	if contrast < 0 {
		return nil, fmt.Errorf("%w: contrast factor %.2f is negative", entity.ErrInvalidConfiguration, contrast)
	}
	pix, err := normalize(values)
	if err != nil {
		return nil, err
	}
	return entity.NewIntensity(width, height, enhanceContrast(pix, contrast))
}

func checkCrop(crop entity.Rect, width, height int) error {
	if crop.Empty() {
		return fmt.Errorf("%w: crop %s is empty", entity.ErrInvalidConfiguration, crop)
	}
	if !crop.Within(width, height) {
		return fmt.Errorf("%w: crop %s is outside %dx%d source image", entity.ErrInvalidConfiguration, crop, width, height)
	}
	return nil
}
