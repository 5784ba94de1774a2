package model

// Unmeasured marks a size chart cell the seller has not filled in yet.
const Unmeasured float64 = -1

type MeasurementUnit string

const (
	UnitInch MeasurementUnit = "inch"
	UnitCM   MeasurementUnit = "cm"
)

func (u MeasurementUnit) Valid() bool {
	return u == UnitInch || u == UnitCM
}

// SizeChart maps size label -> measurement column -> value.
type SizeChart map[string]map[string]float64

type SizingGuide struct {
	Category        string          `json:"category"`
	SizeChart       SizeChart       `json:"size_chart"`
	SizeFit         string          `json:"size_fit"`
	MeasurementUnit MeasurementUnit `json:"measurement_unit"`
}

func (c SizeChart) Clone() SizeChart {
	if c == nil {
		return nil
	}
	out := make(SizeChart, len(c))
	for size, row := range c {
		r := make(map[string]float64, len(row))
		for col, v := range row {
			r[col] = v
		}
		out[size] = r
	}
	return out
}

func (g SizingGuide) Clone() SizingGuide {
	out := g
	out.SizeChart = g.SizeChart.Clone()
	return out
}
