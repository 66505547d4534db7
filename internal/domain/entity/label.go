package entity

import (
	"fmt"
	"image"
)

// Label класс пикселя
type Label uint8

const (
	Substrate Label = 0 // подложка
	Material  Label = 1 // материал
)

// LabelMap бинарная карта меток W x H, построчно.
type LabelMap struct {
	Width  int
	Height int
	Pix    []Label
}

// NewLabelMap создаёт карту, заполненную подложкой.
func NewLabelMap(width, height int) *LabelMap {
	return &LabelMap{
		Width:  width,
		Height: height,
		Pix:    make([]Label, width*height),
	}
}

// At возвращает метку пикселя (x, y)
func (m *LabelMap) At(x, y int) Label {
	return m.Pix[y*m.Width+x]
}

// Set записывает метку пикселя (x, y)
func (m *LabelMap) Set(x, y int, l Label) {
	m.Pix[y*m.Width+x] = l
}

// Clone возвращает независимую копию
func (m *LabelMap) Clone() *LabelMap {
	pix := make([]Label, len(m.Pix))
	copy(pix, m.Pix)
	return &LabelMap{Width: m.Width, Height: m.Height, Pix: pix}
}

// CheckShape проверяет, что карта соответствует изображению width x height.
func (m *LabelMap) CheckShape(width, height int) error {
	if m.Width != width || m.Height != height || len(m.Pix) != width*height {
		return fmt.Errorf("%w: label map %dx%d (%d values), image %dx%d",
			ErrShapeMismatch, m.Width, m.Height, len(m.Pix), width, height)
	}
	return nil
}

// Counts возвращает число пикселей подложки и материала
func (m *LabelMap) Counts() (substrate, material int) {
	for _, l := range m.Pix {
		if l == Material {
			material++
		} else {
			substrate++
		}
	}
	return substrate, material
}

// Render рисует карту как изображение: подложка 0, материал 255.
func (m *LabelMap) Render() *image.Gray {
	img := image.NewGray(image.Rect(0, 0, m.Width, m.Height))
	for i, l := range m.Pix {
		if l == Material {
			img.Pix[i] = 255
		}
	}
	return img
}

// Intensity возвращает отрисовку карты как сетку яркостей 0/255.
func (m *LabelMap) Intensity() *Intensity {
	return &Intensity{Width: m.Width, Height: m.Height, Pix: m.Render().Pix}
}
