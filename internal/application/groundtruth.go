package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"groundtruth-bot/config"
	"groundtruth-bot/internal/domain/entity"
	"groundtruth-bot/internal/domain/port"
	"groundtruth-bot/internal/domain/segmentation"
	"groundtruth-bot/internal/infrastructure/export"
	"groundtruth-bot/internal/logger"
)

const component = "groundtruth"

// GroundTruthService строит эталонную разметку снимка.
type GroundTruthService struct {
	cfg          *config.Config
	preprocessor port.Preprocessor
	pipeline     *segmentation.Pipeline
	results      port.ResultRepository
	log          logger.Logger
}

// Output результат разметки и его представления для отправки пользователю.
type Output struct {
	GroundTruth *entity.GroundTruth
	Mask        []byte // PNG 0/255
	Overlay     []byte // PNG, материал подсвечен поверх снимка
	Labels      []byte // текст: строки меток 0/1
}

// NewGroundTruthService создаёт сервис. results может быть nil, тогда
// последняя разметка не запоминается.
func NewGroundTruthService(cfg *config.Config, preprocessor port.Preprocessor, results port.ResultRepository, log logger.Logger) *GroundTruthService {
	return &GroundTruthService{
		cfg:          cfg,
		preprocessor: preprocessor,
		pipeline:     cfg.Pipeline(),
		results:      results,
		log:          log,
	}
}

// Generate размечает снимок. Конфигурация проверяется до декодирования,
// при любой ошибке частичный результат не возвращается.
func (s *GroundTruthService) Generate(ctx context.Context, data []byte) (*Output, error) {
	if s.preprocessor == nil {
		return nil, errors.New("preprocessor is not configured")
	}
	if err := s.cfg.Validate(); err != nil {
		return nil, err
	}

	started := time.Now()
	img, err := s.preprocessor.Prepare(ctx, data, s.cfg.Crop, s.cfg.Contrast)
	if err != nil {
		return nil, fmt.Errorf("preprocess: %w", err)
	}
	if img.Width != s.cfg.Crop.Dx() || img.Height != s.cfg.Crop.Dy() {
		return nil, fmt.Errorf("%w: prepared image %dx%d, crop %s",
			entity.ErrShapeMismatch, img.Width, img.Height, s.cfg.Crop)
	}

	gt, err := s.pipeline.Run(img)
	if err != nil {
		return nil, fmt.Errorf("label: %w", err)
	}

	mask, err := export.MaskPNG(gt.Labels)
	if err != nil {
		return nil, err
	}
	overlay, err := export.OverlayPNG(img, gt.Labels, s.cfg.OverlayOpacity)
	if err != nil {
		return nil, err
	}
	labels, err := export.LabelsText(gt.Labels)
	if err != nil {
		return nil, err
	}

	substrate, material := gt.Labels.Counts()
	s.log.Info(component, "ground truth ready", map[string]interface{}{
		"width":     gt.Labels.Width,
		"height":    gt.Labels.Height,
		"substrate": substrate,
		"material":  material,
		"flipped":   gt.Flipped,
		"elapsed":   time.Since(started).String(),
	})

	return &Output{GroundTruth: gt, Mask: mask, Overlay: overlay, Labels: labels}, nil
}

// GenerateFor размечает снимок пользователя и запоминает результат.
func (s *GroundTruthService) GenerateFor(ctx context.Context, userID int64, data []byte) (*Output, error) {
	out, err := s.Generate(ctx, data)
	if err != nil {
		return nil, err
	}
	if s.results != nil {
		if err := s.results.SaveResult(ctx, userID, out.GroundTruth); err != nil {
			s.log.Warning(component, "result not stored", map[string]interface{}{"user_id": userID, "error": err.Error()})
		}
	}
	return out, nil
}

// LastLabels возвращает текст меток последней разметки пользователя.
func (s *GroundTruthService) LastLabels(ctx context.Context, userID int64) ([]byte, error) {
	if s.results == nil {
		return nil, errors.New("result storage is not configured")
	}
	gt, err := s.results.LastResult(ctx, userID)
	if err != nil {
		return nil, err
	}
	if gt == nil {
		return nil, nil
	}
	return export.LabelsText(gt.Labels)
}
