package export

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"strings"

	"groundtruth-bot/internal/domain/entity"
)

// WriteLabels пишет карту построчно: одна строка изображения на строку
// текста, метки 0/1 через пробел.
func WriteLabels(w io.Writer, labels *entity.LabelMap) error {
	if err := labels.CheckShape(labels.Width, labels.Height); err != nil {
		return err
	}

	bw := bufio.NewWriter(w)
	for y := 0; y < labels.Height; y++ {
		for x := 0; x < labels.Width; x++ {
			if x > 0 {
				bw.WriteByte(' ')
			}
			bw.WriteByte('0' + byte(labels.At(x, y)))
		}
		bw.WriteByte('\n')
	}
	return bw.Flush()
}

// LabelsText возвращает WriteLabels в виде байтов
func LabelsText(labels *entity.LabelMap) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteLabels(&buf, labels); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ReadLabels разбирает формат WriteLabels. Все строки должны быть одной длины.
func ReadLabels(r io.Reader) (*entity.LabelMap, error) {
	var (
		pix   []entity.Label
		width int
		rows  int
	)

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 16*1024*1024)
	for sc.Scan() {
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 {
			continue
		}
		if rows == 0 {
			width = len(fields)
		} else if len(fields) != width {
			return nil, fmt.Errorf("%w: row %d has %d labels, expected %d", entity.ErrShapeMismatch, rows, len(fields), width)
		}
		for _, f := range fields {
			switch f {
			case "0":
				pix = append(pix, entity.Substrate)
			case "1":
				pix = append(pix, entity.Material)
			default:
				return nil, fmt.Errorf("row %d: invalid label %q", rows, f)
			}
		}
		rows++
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read labels: %w", err)
	}
	if rows == 0 {
		return nil, fmt.Errorf("%w: no label rows", entity.ErrShapeMismatch)
	}

	return &entity.LabelMap{Width: width, Height: rows, Pix: pix}, nil
}
