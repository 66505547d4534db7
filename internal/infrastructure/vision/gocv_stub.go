//go:build !gocv
// +build !gocv

package vision

import (
	"context"
	"errors"

	"groundtruth-bot/internal/domain/entity"
	"groundtruth-bot/internal/domain/port"
)

// GoCVPreprocessor заглушка для сборки без OpenCV.
type GoCVPreprocessor struct{}

// NewGoCVPreprocessor создаёт предобработчик-заглушку (без OpenCV).
func NewGoCVPreprocessor() *GoCVPreprocessor {
	return &GoCVPreprocessor{}
}

// Prepare возвращает ошибку, если сборка без тега gocv.
func (p *GoCVPreprocessor) Prepare(ctx context.Context, data []byte, crop entity.Rect, contrast float64) (*entity.Intensity, error) {
	_ = ctx
	_ = data
	_ = crop
	_ = contrast
	return nil, errors.New("gocv build tag is not enabled")
}

var _ port.Preprocessor = (*GoCVPreprocessor)(nil)
