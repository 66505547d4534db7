//go:build gocv
// +build gocv

package vision

import (
	"context"
	"errors"
	"fmt"
	"image"
	"os"

	"gocv.io/x/gocv"

	"groundtruth-bot/internal/domain/entity"
	"groundtruth-bot/internal/domain/port"
)

// GoCVPreprocessor предобработка через OpenCV: сохраняет глубину исходника
// и усредняет все каналы всех страниц (многостраничный TIFF, страница на канал).
type GoCVPreprocessor struct{}

// NewGoCVPreprocessor создаёт предобработчик на OpenCV.
func NewGoCVPreprocessor() *GoCVPreprocessor {
	return &GoCVPreprocessor{}
}

// Prepare декодирует все страницы, вырезает область и усредняет каналы.
func (p *GoCVPreprocessor) Prepare(ctx context.Context, data []byte, crop entity.Rect, contrast float64) (*entity.Intensity, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	pages, err := readMats(data)
	if err != nil {
		return nil, err
	}
	defer func() {
		for i := range pages {
			pages[i].Close()
		}
	}()

	cols, rows := pages[0].Cols(), pages[0].Rows()
	for i, page := range pages[1:] {
		if page.Cols() != cols || page.Rows() != rows {
			return nil, fmt.Errorf("%w: page %d is %dx%d, page 0 is %dx%d",
				entity.ErrShapeMismatch, i+1, page.Cols(), page.Rows(), cols, rows)
		}
	}
	if err := checkCrop(crop, cols, rows); err != nil {
		return nil, err
	}

	w, h := crop.Dx(), crop.Dy()
	values := make([]float64, w*h)
	total := 0
	for _, page := range pages {
		n, err := addChannels(page, crop, values)
		if err != nil {
			return nil, err
		}
		total += n
	}
	if total == 0 {
		return nil, fmt.Errorf("%w: image has no channels", entity.ErrDegenerateImage)
	}
	for i := range values {
		values[i] /= float64(total)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return toIntensity(values, w, h, contrast)
}

// addChannels прибавляет к sums все каналы страницы в области crop
// и возвращает число каналов.
func addChannels(page gocv.Mat, crop entity.Rect, sums []float64) (int, error) {
	region := page.Region(image.Rect(crop.X0, crop.Y0, crop.X1, crop.Y1))
	defer region.Close()

	// Переводим в double, чтобы не терять точность 16-битных данных.
	wide := gocv.NewMat()
	defer wide.Close()
	if err := region.ConvertTo(&wide, gocv.MatTypeCV64F); err != nil {
		return 0, err
	}

	channels := gocv.Split(wide)
	for i := range channels {
		defer channels[i].Close()
	}

	w := crop.Dx()
	for _, ch := range channels {
		for y := 0; y < crop.Dy(); y++ {
			for x := 0; x < w; x++ {
				sums[y*w+x] += ch.GetDoubleAt(y, x)
			}
		}
	}
	return len(channels), nil
}

// readMats читает все страницы снимка. IMReadMulti работает только с файлом,
// поэтому байты сначала пишутся во временный файл.
func readMats(data []byte) ([]gocv.Mat, error) {
	f, err := os.CreateTemp("", "groundtruth-*.tif")
	if err != nil {
		return nil, err
	}
	defer os.Remove(f.Name())

	if _, err := f.Write(data); err != nil {
		f.Close()
		return nil, err
	}
	if err := f.Close(); err != nil {
		return nil, err
	}

	mats := gocv.IMReadMulti(f.Name(), gocv.IMReadAnyDepth|gocv.IMReadAnyColor)
	if len(mats) > 0 {
		return mats, nil
	}

	// PNG и JPEG imreadmulti может не открыть
	mat, err := decodeToMat(data)
	if err != nil {
		return nil, err
	}
	return []gocv.Mat{mat}, nil
}

// decodeToMat превращает байты снимка в gocv.Mat без приведения к 8 битам.
func decodeToMat(data []byte) (gocv.Mat, error) {
	mat, err := gocv.IMDecode(data, gocv.IMReadAnyDepth|gocv.IMReadAnyColor)
	if err == nil && !mat.Empty() {
		return mat, nil
	}
	if !mat.Empty() {
		mat.Close()
	}
	return gocv.NewMat(), errors.New("failed to decode image")
}

var _ port.Preprocessor = (*GoCVPreprocessor)(nil)
