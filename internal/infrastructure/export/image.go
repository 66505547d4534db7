// Package export сохраняет результаты разметки: маски, наложения, таблицы меток.
package export

import (
	"bytes"
	"fmt"
	"image"
	"image/color"

	"github.com/disintegration/imaging"

	"groundtruth-bot/internal/domain/entity"
)

// MaterialTint цвет, которым материал подсвечивается на наложении
var MaterialTint = color.NRGBA{R: 255, A: 255}

// MaskPNG кодирует карту меток в PNG: подложка чёрная, материал белый.
func MaskPNG(labels *entity.LabelMap) ([]byte, error) {
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, labels.Render(), imaging.PNG); err != nil {
		return nil, fmt.Errorf("encode mask: %w", err)
	}
	return buf.Bytes(), nil
}

// Overlay рисует материал поверх серого снимка с заданной непрозрачностью.
func Overlay(img *entity.Intensity, labels *entity.LabelMap, opacity float64) (*image.NRGBA, error) {
	if err := labels.CheckShape(img.Width, img.Height); err != nil {
		return nil, err
	}

	base := &image.Gray{
		Pix:    img.Pix,
		Stride: img.Width,
		Rect:   image.Rect(0, 0, img.Width, img.Height),
	}

	tint := image.NewNRGBA(base.Rect)
	for i, l := range labels.Pix {
		if l == entity.Material {
			tint.SetNRGBA(i%labels.Width, i/labels.Width, MaterialTint)
		}
	}

	return imaging.Overlay(base, tint, image.Pt(0, 0), opacity), nil
}

// OverlayPNG то же, что Overlay, в виде PNG.
func OverlayPNG(img *entity.Intensity, labels *entity.LabelMap, opacity float64) ([]byte, error) {
	overlay, err := Overlay(img, labels, opacity)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, overlay, imaging.PNG); err != nil {
		return nil, fmt.Errorf("encode overlay: %w", err)
	}
	return buf.Bytes(), nil
}
