package segmentation

import (
	"groundtruth-bot/internal/domain/entity"
)

// Pipeline порог -> очистка изолированных пикселей -> (опционально) повторный порог.
type Pipeline struct {
	Thresholder *Thresholder
	Filter      *IsolationFilter
	// Rethreshold повторяет классификацию по отрисовке 0/255 очищенной карты
	// с эталонами, пересчитанными по этой отрисовке. Без него возвращается
	// очищенная карта как есть.
	Rethreshold bool
}

// Validate проверяет конфигурацию для сетки width x height.
func (p *Pipeline) Validate(width, height int) error {
	return p.Thresholder.Validate(width, height)
}

// Run размечает img. При ошибке частичный результат не возвращается.
func (p *Pipeline) Run(img *entity.Intensity) (*entity.GroundTruth, error) {
	labels, stats, err := p.Thresholder.Threshold(img)
	if err != nil {
		return nil, err
	}

	flipped, err := p.Filter.Apply(labels)
	if err != nil {
		return nil, err
	}

	if p.Rethreshold {
		labels, _, err = p.Thresholder.Threshold(labels.Intensity())
		if err != nil {
			return nil, err
		}
	}

	if err := labels.CheckShape(img.Width, img.Height); err != nil {
		return nil, err
	}

	return &entity.GroundTruth{
		Labels:  labels,
		Stats:   stats,
		Flipped: flipped,
	}, nil
}
