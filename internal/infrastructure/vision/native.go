package vision

import (
	"context"
	"fmt"
	"image/color"
	_ "image/jpeg"
	_ "image/png"

	"groundtruth-bot/internal/domain/entity"
	"groundtruth-bot/internal/domain/port"
)

// NativePreprocessor предобработка на чистом Go: TIFF (в том числе
// многостраничный, страница на канал), PNG, JPEG.
// Серый получается усреднением каналов R, G, B каждой страницы и затем
// усреднением по страницам; альфа-канал не учитывается.
type NativePreprocessor struct{}

// NewNativePreprocessor создаёт предобработчик без OpenCV.
func NewNativePreprocessor() *NativePreprocessor {
	return &NativePreprocessor{}
}

// Prepare декодирует снимок и возвращает обрезанную сетку яркостей.
func (p *NativePreprocessor) Prepare(ctx context.Context, data []byte, crop entity.Rect, contrast float64) (*entity.Intensity, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	pages, err := decodePages(data)
	if err != nil {
		return nil, err
	}

	b := pages[0].Bounds()
	for i, page := range pages[1:] {
		if pb := page.Bounds(); pb.Dx() != b.Dx() || pb.Dy() != b.Dy() {
			return nil, fmt.Errorf("%w: page %d is %dx%d, page 0 is %dx%d",
				entity.ErrShapeMismatch, i+1, pb.Dx(), pb.Dy(), b.Dx(), b.Dy())
		}
	}
	if err := checkCrop(crop, b.Dx(), b.Dy()); err != nil {
		return nil, err
	}

	w, h := crop.Dx(), crop.Dy()
	values := make([]float64, w*h)
	for _, page := range pages {
		pb := page.Bounds()
		i := 0
		for y := crop.Y0; y < crop.Y1; y++ {
			for x := crop.X0; x < crop.X1; x++ {
				c := color.NRGBA64Model.Convert(page.At(pb.Min.X+x, pb.Min.Y+y)).(color.NRGBA64)
				values[i] += (float64(c.R) + float64(c.G) + float64(c.B)) / 3
				i++
			}
		}
	}
	for i := range values {
		values[i] /= float64(len(pages))
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return toIntensity(values, w, h, contrast)
}

var _ port.Preprocessor = (*NativePreprocessor)(nil)
