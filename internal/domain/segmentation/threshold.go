// Package segmentation размечает сетку яркостей на подложку и материал:
// пороговая классификация по эталонным окнам и очистка изолированных пикселей.
package segmentation

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"

	"groundtruth-bot/internal/domain/entity"
)

// Windows четыре эталонных окна: по два на класс, верх и низ отдельно,
// чтобы учесть дрейф контраста по высоте снимка.
type Windows struct {
	MaterialTop     entity.Rect
	MaterialBottom  entity.Rect
	SubstrateTop    entity.Rect
	SubstrateBottom entity.Rect
}

// Validate проверяет, что все окна непустые и лежат внутри width x height.
func (w Windows) Validate(width, height int) error {
	named := []struct {
		name string
		rect entity.Rect
	}{
		{"material top", w.MaterialTop},
		{"material bottom", w.MaterialBottom},
		{"substrate top", w.SubstrateTop},
		{"substrate bottom", w.SubstrateBottom},
	}
	for _, n := range named {
		if n.rect.Empty() {
			return fmt.Errorf("%w: %s window %s is empty", entity.ErrInvalidConfiguration, n.name, n.rect)
		}
		if !n.rect.Within(width, height) {
			return fmt.Errorf("%w: %s window %s is outside %dx%d image",
				entity.ErrInvalidConfiguration, n.name, n.rect, width, height)
		}
	}
	return nil
}

// SplitMode способ выбора верхней или нижней пары эталонов
type SplitMode string

const (
	// SplitFlatIndex сравнивает плоский индекс пикселя с Index (i <= Index сверху).
	// Совместим с эталонными выходами, но не совпадает с делением по строке,
	// если Index не кратен ширине.
	SplitFlatIndex SplitMode = "index"
	// SplitRow относит к верху строки y < Row.
	SplitRow SplitMode = "row"
)

// Split граница между верхней и нижней половиной
type Split struct {
	Mode  SplitMode
	Index int
	Row   int
}

// Validate проверяет границу для изображения width x height.
func (s Split) Validate(width, height int) error {
	switch s.Mode {
	case SplitFlatIndex:
		if s.Index < 0 || s.Index >= width*height {
			return fmt.Errorf("%w: split index %d outside [0, %d)", entity.ErrInvalidConfiguration, s.Index, width*height)
		}
	case SplitRow:
		if s.Row < 0 || s.Row > height {
			return fmt.Errorf("%w: split row %d outside [0, %d]", entity.ErrInvalidConfiguration, s.Row, height)
		}
	default:
		return fmt.Errorf("%w: unknown split mode %q", entity.ErrInvalidConfiguration, s.Mode)
	}
	return nil
}

func (s Split) top(i, width int) bool {
	if s.Mode == SplitRow {
		return i/width < s.Row
	}
	return i <= s.Index
}

// ComputeReferences считает среднюю яркость каждого эталонного окна.
func ComputeReferences(img *entity.Intensity, w Windows) (entity.ReferenceStats, error) {
	if err := w.Validate(img.Width, img.Height); err != nil {
		return entity.ReferenceStats{}, err
	}
	return entity.ReferenceStats{
		MaterialTop:     stat.Mean(img.Window(w.MaterialTop), nil),
		MaterialBottom:  stat.Mean(img.Window(w.MaterialBottom), nil),
		SubstrateTop:    stat.Mean(img.Window(w.SubstrateTop), nil),
		SubstrateBottom: stat.Mean(img.Window(w.SubstrateBottom), nil),
	}, nil
}

// Thresholder относит каждый пиксель к ближайшему эталонному среднему.
type Thresholder struct {
	Windows Windows
	Split   Split
}

// Validate проверяет окна и границу до начала обработки.
func (t *Thresholder) Validate(width, height int) error {
	if err := t.Windows.Validate(width, height); err != nil {
		return err
	}
	return t.Split.Validate(width, height)
}

// Threshold считает эталоны по img и классифицирует его.
func (t *Thresholder) Threshold(img *entity.Intensity) (*entity.LabelMap, entity.ReferenceStats, error) {
	if err := t.Validate(img.Width, img.Height); err != nil {
		return nil, entity.ReferenceStats{}, err
	}
	stats, err := ComputeReferences(img, t.Windows)
	if err != nil {
		return nil, entity.ReferenceStats{}, err
	}
	labels, err := t.Classify(img, stats)
	if err != nil {
		return nil, entity.ReferenceStats{}, err
	}
	return labels, stats, nil
}

// Classify размечает img по готовым средним. Равенство расстояний
// трактуется в пользу подложки.
func (t *Thresholder) Classify(img *entity.Intensity, stats entity.ReferenceStats) (*entity.LabelMap, error) {
	if err := t.Split.Validate(img.Width, img.Height); err != nil {
		return nil, err
	}
	if len(img.Pix) != img.Width*img.Height {
		return nil, fmt.Errorf("%w: %d values for %dx%d image", entity.ErrShapeMismatch, len(img.Pix), img.Width, img.Height)
	}

	labels := entity.NewLabelMap(img.Width, img.Height)
	for i, p := range img.Pix {
		sub, mat := stats.SubstrateBottom, stats.MaterialBottom
		if t.Split.top(i, img.Width) {
			sub, mat = stats.SubstrateTop, stats.MaterialTop
		}

		v := float64(p)
		if math.Abs(v-sub) <= math.Abs(v-mat) {
			labels.Pix[i] = entity.Substrate
		} else {
			labels.Pix[i] = entity.Material
		}
	}
	return labels, nil
}
