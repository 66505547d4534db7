package port

import (
	"context"

	"groundtruth-bot/internal/domain/entity"
)

// ResultRepository хранит последнюю разметку пользователя
type ResultRepository interface {
	// SaveResult запоминает результат, заменяя предыдущий
	SaveResult(ctx context.Context, userID int64, result *entity.GroundTruth) error

	// LastResult возвращает последний результат или nil, если его нет
	LastResult(ctx context.Context, userID int64) (*entity.GroundTruth, error)
}
