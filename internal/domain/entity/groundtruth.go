package entity

import "gonum.org/v1/gonum/stat"

// ReferenceStats средние яркости четырёх эталонных окон
type ReferenceStats struct {
	MaterialTop     float64
	MaterialBottom  float64
	SubstrateTop    float64
	SubstrateBottom float64
}

// GroundTruth итог одного прогона конвейера разметки.
type GroundTruth struct {
	Labels  *LabelMap      // финальная карта меток
	Stats   ReferenceStats // статистика первого прохода по исходному изображению
	Flipped int            // сколько меток исправил фильтр изолированных пикселей
}

// MaterialFraction доля пикселей материала
func (g *GroundTruth) MaterialFraction() float64 {
	if g.Labels == nil || len(g.Labels.Pix) == 0 {
		return 0
	}
	values := make([]float64, len(g.Labels.Pix))
	for i, l := range g.Labels.Pix {
		values[i] = float64(l)
	}
	return stat.Mean(values, nil)
}
