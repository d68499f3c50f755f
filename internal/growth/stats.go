package growth

// DerivedStatistics are the percentage figures shown next to a growth rate.
type DerivedStatistics struct {
	PercentageChange      float64 `json:"percentage_change"`
	AverageDailyChangePct float64 `json:"average_daily_change_pct"`
}

// Derive computes the percentage change between T1 and T2 and the average
// daily change. A zero initial density fails with ErrDegenerateBase; the
// rate itself stays usable in that case.
func Derive(r GrowthRateResult) (DerivedStatistics, error) {
	if r.DensityT1 == 0 {
		return DerivedStatistics{}, ErrDegenerateBase
	}

	pct := (r.DensityT2 - r.DensityT1) / r.DensityT1 * 100
	daily := r.Rate * 100
	if !finite(pct) || !finite(daily) {
		return DerivedStatistics{}, ErrNonFinite
	}

	return DerivedStatistics{
		PercentageChange:      pct,
		AverageDailyChangePct: daily,
	}, nil
}

// AverageDailyChangePct is rate*100 and is defined for every valid result.
func AverageDailyChangePct(r GrowthRateResult) float64 {
	return r.Rate * 100
}
