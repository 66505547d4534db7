package port

import (
	"context"

	"groundtruth-bot/internal/domain/entity"
)

// Preprocessor готовит сетку яркостей из исходного снимка
type Preprocessor interface {
	// Prepare декодирует снимок, обрезает его по crop, переводит в серый,
	// нормирует в 0..255 и усиливает контраст в contrast раз
	Prepare(ctx context.Context, data []byte, crop entity.Rect, contrast float64) (*entity.Intensity, error)
}
