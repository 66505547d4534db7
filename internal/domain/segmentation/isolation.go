package segmentation

import (
	"fmt"

	"groundtruth-bot/internal/domain/entity"
)

// IsolationMode порядок применения исправлений
type IsolationMode string

const (
	// IsolationInPlace обход построчно сверху вниз, слева направо; соседи
	// читаются из уже исправленной на этом проходе карты.
	IsolationInPlace IsolationMode = "inplace"
	// IsolationSnapshot все решения принимаются по копии карты до прохода,
	// результат не зависит от порядка обхода.
	IsolationSnapshot IsolationMode = "snapshot"
)

var neighborOffsets = [8][2]int{
	{-1, -1}, {0, -1}, {1, -1},
	{-1, 0}, {1, 0},
	{-1, 1}, {0, 1}, {1, 1},
}

// IsolationFilter убирает одиночные ошибки классификации: пиксель, у которого
// все восемь соседей одного класса, получает этот класс.
type IsolationFilter struct {
	Mode IsolationMode
}

// Apply изменяет карту на месте и возвращает число изменённых меток.
// Граничные пиксели не трогаются.
func (f *IsolationFilter) Apply(m *entity.LabelMap) (int, error) {
	if err := m.CheckShape(m.Width, m.Height); err != nil {
		return 0, err
	}

	src := m
	switch f.Mode {
	case IsolationInPlace, "":
	case IsolationSnapshot:
		src = m.Clone()
	default:
		return 0, fmt.Errorf("%w: unknown isolation mode %q", entity.ErrInvalidConfiguration, f.Mode)
	}

	flipped := 0
	for y := 1; y < m.Height-1; y++ {
		for x := 1; x < m.Width-1; x++ {
			shared, ok := unanimous(src, x, y)
			if !ok {
				continue
			}
			if m.At(x, y) != shared {
				m.Set(x, y, shared)
				flipped++
			}
		}
	}
	return flipped, nil
}

// unanimous возвращает общий класс соседей (x, y), если он единственный.
func unanimous(m *entity.LabelMap, x, y int) (entity.Label, bool) {
	var shared entity.Label
	seen := 0
	for _, off := range neighborOffsets {
		nx, ny := x+off[0], y+off[1]
		if nx < 0 || ny < 0 || nx >= m.Width || ny >= m.Height {
			continue
		}
		v := m.At(nx, ny)
		if seen == 0 {
			shared = v
		} else if v != shared {
			return 0, false
		}
		seen++
	}
	if seen == 0 {
		return 0, false
	}
	return shared, true
}
