package growth

import "math"

// ChartLabelLayout renders a calendar date as MM/DD/YYYY.
const ChartLabelLayout = "01/02/2006"

// MinChartPoints is the smallest series worth drawing as a trend line.
const MinChartPoints = 2

// ChartPoint is one measurement prepared for a line chart.
type ChartPoint struct {
	Label      string  `json:"label"`
	DensityPct float64 `json:"density_pct"`
}

// ToChartPoints maps each measurement to a chart point, preserving order.
// Densities become percentages rounded to two decimals.
func ToChartPoints(s Series) []ChartPoint {
	points := make([]ChartPoint, 0, s.Len())
	for _, m := range s.points {
		points = append(points, ChartPoint{
			Label:      m.Timestamp.Format(ChartLabelLayout),
			DensityPct: roundTo(m.GreenDensity*100, 2),
		})
	}
	return points
}

// ChartReady reports whether points can be drawn as a trend. Callers show a
// "not enough data points" notice instead of a chart when it is false.
func ChartReady(points []ChartPoint) bool {
	return len(points) >= MinChartPoints
}

func roundTo(v float64, decimals int) float64 {
	p := math.Pow(10, float64(decimals))
	return math.Round(v*p) / p
}
