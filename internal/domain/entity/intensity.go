package entity

import "fmt"

// Intensity двумерная сетка яркостей 0..255 после предобработки.
// Хранится построчно; после создания не изменяется.
type Intensity struct {
	Width  int
	Height int
	Pix    []uint8
}

// NewIntensity оборачивает готовый буфер яркостей.
func NewIntensity(width, height int, pix []uint8) (*Intensity, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: image size %dx%d", ErrInvalidConfiguration, width, height)
	}
	if len(pix) != width*height {
		return nil, fmt.Errorf("%w: %d values for %dx%d image", ErrShapeMismatch, len(pix), width, height)
	}
	return &Intensity{Width: width, Height: height, Pix: pix}, nil
}

// At возвращает яркость пикселя (x, y)
func (img *Intensity) At(x, y int) uint8 {
	return img.Pix[y*img.Width+x]
}

// Len возвращает число пикселей
func (img *Intensity) Len() int {
	return len(img.Pix)
}

// Window копирует значения окна r в float64 для статистики.
func (img *Intensity) Window(r Rect) []float64 {
	if r.Empty() {
		return nil
	}
	values := make([]float64, 0, r.Dx()*r.Dy())
	for y := r.Y0; y < r.Y1; y++ {
		row := img.Pix[y*img.Width : (y+1)*img.Width]
		for x := r.X0; x < r.X1; x++ {
			values = append(values, float64(row[x]))
		}
	}
	return values
}
