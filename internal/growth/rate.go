package growth

import (
	"math"
	"time"
)

const hoursPerDay = 24.0

// GrowthRateResult is the growth rate between the earliest (T1) and latest
// (T2) measurement of a series, in density units per day.
type GrowthRateResult struct {
	Rate               float64   `json:"rate"`
	DensityT1          float64   `json:"density_t1"`
	DensityT2          float64   `json:"density_t2"`
	T1                 time.Time `json:"t1"`
	T2                 time.Time `json:"t2"`
	TimeDifferenceDays float64   `json:"time_difference_days"`
}

// Compute calculates the growth rate of s from its first and last
// measurement. Fractional days are kept as is.
func Compute(s Series) (GrowthRateResult, error) {
	if s.Len() < 2 {
		return GrowthRateResult{}, ErrInsufficientData
	}

	first, _ := s.First()
	last, _ := s.Last()

	days := DaysBetween(first.Timestamp, last.Timestamp)
	if days == 0 {
		return GrowthRateResult{}, ErrDegenerateInterval
	}

	rate := (last.GreenDensity - first.GreenDensity) / days
	if !finite(rate) {
		return GrowthRateResult{}, ErrNonFinite
	}

	return GrowthRateResult{
		Rate:               rate,
		DensityT1:          first.GreenDensity,
		DensityT2:          last.GreenDensity,
		T1:                 first.Timestamp,
		T2:                 last.Timestamp,
		TimeDifferenceDays: days,
	}, nil
}

// DaysBetween returns t2-t1 expressed in (fractional) days.
func DaysBetween(t1, t2 time.Time) float64 {
	return t2.Sub(t1).Hours() / hoursPerDay
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
