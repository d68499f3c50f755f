package growth

// DefaultHorizonDays is the projection horizon shown by default.
const DefaultHorizonDays = 7

// Projection is the extrapolated density HorizonDays after T2.
type Projection struct {
	HorizonDays      float64 `json:"horizon_days"`
	ProjectedDensity float64 `json:"projected_density"`
}

// Project extrapolates linearly from the latest measurement. The result is
// not clamped to [0,1] and may read above 100% or below 0%.
func Project(r GrowthRateResult, horizonDays float64) Projection {
	projected := r.DensityT2
	if horizonDays != 0 {
		projected += r.Rate * horizonDays
	}
	return Projection{
		HorizonDays:      horizonDays,
		ProjectedDensity: projected,
	}
}
