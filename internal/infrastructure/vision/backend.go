package vision

import (
	"fmt"

	"groundtruth-bot/internal/domain/entity"
	"groundtruth-bot/internal/domain/port"
)

const (
	BackendNative = "native"
	BackendGoCV   = "gocv"
)

// NewPreprocessor выбирает бэкенд предобработки по имени.
func NewPreprocessor(backend string) (port.Preprocessor, error) {
	switch backend {
	case BackendNative, "":
		return NewNativePreprocessor(), nil
	case BackendGoCV:
		return NewGoCVPreprocessor(), nil
	default:
		return nil, fmt.Errorf("%w: unknown preprocessing backend %q", entity.ErrInvalidConfiguration, backend)
	}
}
