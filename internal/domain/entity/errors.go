package entity

import "errors"

// Виды ошибок конвейера. Оборачиваются через fmt.Errorf("%w: ...")
// и проверяются через errors.Is.
var (
	// ErrInvalidConfiguration окно вне изображения, пустое окно, вырожденная обрезка
	ErrInvalidConfiguration = errors.New("invalid configuration")
	// ErrDegenerateImage нулевой динамический диапазон (max == min)
	ErrDegenerateImage = errors.New("degenerate image")
	// ErrShapeMismatch размер карты меток не совпадает с числом пикселей
	ErrShapeMismatch = errors.New("shape mismatch")
)
