package growth

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const eps = 1e-9

var day0 = time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)

func day(n float64) time.Time {
	return day0.Add(time.Duration(n * 24 * float64(time.Hour)))
}

func m(n, density float64) Measurement {
	return Measurement{Timestamp: day(n), GreenDensity: density}
}

// ============================================================================
// SERIES
// ============================================================================

func TestBuild_SortsAscending(t *testing.T) {
	raw := []Measurement{m(4, 0.4), m(1, 0.1), m(3, 0.3), m(2, 0.2)}

	s := Build(raw)

	require.Equal(t, 4, s.Len())
	for i := 1; i < s.Len(); i++ {
		assert.False(t, s.At(i).Timestamp.Before(s.At(i-1).Timestamp), "element %d out of order", i)
	}
	assert.Equal(t, 0.1, s.At(0).GreenDensity)
	assert.Equal(t, 0.4, s.At(3).GreenDensity)
}

func TestBuild_StableForDuplicateTimestamps(t *testing.T) {
	raw := []Measurement{m(5, 0.20), m(1, 0.05), m(5, 0.25), m(5, 0.22)}

	s := Build(raw)

	got := []float64{}
	for _, p := range s.Measurements() {
		got = append(got, p.GreenDensity)
	}
	assert.Equal(t, []float64{0.05, 0.20, 0.25, 0.22}, got)
}

func TestBuild_DoesNotModifyInput(t *testing.T) {
	raw := []Measurement{m(2, 0.2), m(1, 0.1)}

	_ = Build(raw)

	assert.Equal(t, 0.2, raw[0].GreenDensity)
	assert.Equal(t, 0.1, raw[1].GreenDensity)
}

func TestBuild_EmptyAndSingleton(t *testing.T) {
	empty := Build(nil)
	assert.Equal(t, 0, empty.Len())
	_, ok := empty.First()
	assert.False(t, ok)
	_, ok = empty.Last()
	assert.False(t, ok)

	single := Build([]Measurement{m(0, 0.15)})
	first, ok := single.First()
	require.True(t, ok)
	last, _ := single.Last()
	assert.Equal(t, first, last)
}

func TestMeasurementValidate(t *testing.T) {
	tests := []struct {
		name    string
		m       Measurement
		wantErr bool
	}{
		{"valid", m(0, 0.5), false},
		{"zero density", m(0, 0), false},
		{"full density", m(0, 1), false},
		{"missing timestamp", Measurement{GreenDensity: 0.5}, true},
		{"negative", m(0, -0.01), true},
		{"above one", m(0, 1.01), true},
		{"nan", m(0, math.NaN()), true},
		{"inf", m(0, math.Inf(1)), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.m.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidMeasurement)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

// ============================================================================
// GROWTH RATE
// ============================================================================

func TestCompute_TwoPoints(t *testing.T) {
	s := Build([]Measurement{m(0, 0.25), m(4, 0.45)})

	r, err := Compute(s)

	require.NoError(t, err)
	assert.InDelta(t, (0.45-0.25)/4, r.Rate, eps)
	assert.Equal(t, 0.25, r.DensityT1)
	assert.Equal(t, 0.45, r.DensityT2)
	assert.True(t, r.T1.Equal(day(0)))
	assert.True(t, r.T2.Equal(day(4)))
	assert.InDelta(t, 4.0, r.TimeDifferenceDays, eps)
}

func TestCompute_FractionalDays(t *testing.T) {
	s := Build([]Measurement{m(0, 0.1), m(1.5, 0.4)})

	r, err := Compute(s)

	require.NoError(t, err)
	assert.InDelta(t, 1.5, r.TimeDifferenceDays, eps)
	assert.InDelta(t, 0.2, r.Rate, eps)
}

func TestCompute_UsesEarliestAndLatestOnly(t *testing.T) {
	s := Build([]Measurement{m(0, 0.1), m(2, 0.9), m(5, 0.0), m(10, 0.3)})

	r, err := Compute(s)

	require.NoError(t, err)
	assert.InDelta(t, 0.02, r.Rate, eps)
}

func TestCompute_OrderIndependent(t *testing.T) {
	base := []Measurement{m(0, 0.1), m(3, 0.18), m(7, 0.26), m(10, 0.3)}
	permutations := [][]int{
		{0, 1, 2, 3},
		{3, 2, 1, 0},
		{2, 0, 3, 1},
		{1, 3, 0, 2},
	}

	want, err := Compute(Build(base))
	require.NoError(t, err)

	for _, perm := range permutations {
		raw := make([]Measurement, len(perm))
		for i, idx := range perm {
			raw[i] = base[idx]
		}
		got, err := Compute(Build(raw))
		require.NoError(t, err)
		assert.Equal(t, want, got, "permutation %v", perm)
	}
}

func TestCompute_ZeroRateWhenDensityUnchanged(t *testing.T) {
	r, err := Compute(Build([]Measurement{m(0, 0.33), m(6, 0.33)}))

	require.NoError(t, err)
	assert.Equal(t, 0.0, r.Rate)
}

func TestCompute_SignFollowsDensityChange(t *testing.T) {
	up, err := Compute(Build([]Measurement{m(0, 0.2), m(2, 0.3)}))
	require.NoError(t, err)
	assert.Greater(t, up.Rate, 0.0)

	down, err := Compute(Build([]Measurement{m(0, 0.3), m(2, 0.2)}))
	require.NoError(t, err)
	assert.Less(t, down.Rate, 0.0)
}

func TestCompute_InsufficientData(t *testing.T) {
	for _, s := range []Series{Build(nil), Build([]Measurement{m(0, 0.15)})} {
		_, err := Compute(s)
		assert.ErrorIs(t, err, ErrInsufficientData)
		assert.True(t, IsEmpty(err))
	}
}

func TestCompute_DegenerateInterval(t *testing.T) {
	_, err := Compute(Build([]Measurement{m(5, 0.20), m(5, 0.25)}))

	assert.ErrorIs(t, err, ErrDegenerateInterval)
	assert.True(t, IsEmpty(err))
}

// ============================================================================
// DERIVED STATISTICS
// ============================================================================

func TestDerive(t *testing.T) {
	r, err := Compute(Build([]Measurement{m(0, 0.2), m(5, 0.3)}))
	require.NoError(t, err)

	stats, err := Derive(r)

	require.NoError(t, err)
	assert.InDelta(t, 50.0, stats.PercentageChange, eps)
	assert.InDelta(t, 2.0, stats.AverageDailyChangePct, eps)
}

func TestDerive_SignMatchesRate(t *testing.T) {
	cases := [][]Measurement{
		{m(0, 0.2), m(1, 0.5)},
		{m(0, 0.5), m(1, 0.2)},
		{m(0, 0.4), m(9, 0.4)},
	}
	for _, raw := range cases {
		r, err := Compute(Build(raw))
		require.NoError(t, err)
		stats, err := Derive(r)
		require.NoError(t, err)
		assert.Equal(t, math.Signbit(r.Rate), math.Signbit(stats.PercentageChange))
		assert.Equal(t, r.Rate == 0, stats.PercentageChange == 0)
	}
}

func TestDerive_DegenerateBase(t *testing.T) {
	r, err := Compute(Build([]Measurement{m(0, 0), m(2, 0.1)}))
	require.NoError(t, err)

	_, err = Derive(r)

	assert.ErrorIs(t, err, ErrDegenerateBase)
	assert.False(t, IsEmpty(err))
	assert.InDelta(t, 5.0, AverageDailyChangePct(r), eps)
}

// ============================================================================
// PROJECTION
// ============================================================================

func TestProject_ZeroHorizonIsIdentity(t *testing.T) {
	r := GrowthRateResult{Rate: 0.0123456789, DensityT2: 0.3141592653589793}

	p := Project(r, 0)

	assert.Equal(t, r.DensityT2, p.ProjectedDensity)
	assert.Equal(t, 0.0, p.HorizonDays)
}

func TestProject_Unclamped(t *testing.T) {
	up := Project(GrowthRateResult{Rate: 0.1, DensityT2: 0.9}, 7)
	assert.InDelta(t, 1.6, up.ProjectedDensity, eps)

	down := Project(GrowthRateResult{Rate: -0.1, DensityT2: 0.2}, 7)
	assert.InDelta(t, -0.5, down.ProjectedDensity, eps)
}

// ============================================================================
// CHART SERIES
// ============================================================================

func TestToChartPoints(t *testing.T) {
	s := Build([]Measurement{
		{Timestamp: time.Date(2024, 3, 2, 23, 0, 0, 0, time.UTC), GreenDensity: 0.123456},
		{Timestamp: time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC), GreenDensity: 0.1},
		{Timestamp: time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC), GreenDensity: 0.98765},
	})

	points := ToChartPoints(s)

	assert.Equal(t, []ChartPoint{
		{Label: "03/01/2024", DensityPct: 10},
		{Label: "03/02/2024", DensityPct: 12.35},
		{Label: "03/10/2024", DensityPct: 98.77},
	}, points)
	assert.True(t, ChartReady(points))
}

func TestToChartPoints_DistinctDatesDistinctLabels(t *testing.T) {
	s := Build([]Measurement{
		{Timestamp: time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), GreenDensity: 0.1},
		{Timestamp: time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC), GreenDensity: 0.2},
		{Timestamp: time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), GreenDensity: 0.3},
	})

	points := ToChartPoints(s)

	seen := map[string]bool{}
	for _, p := range points {
		assert.False(t, seen[p.Label], "label %s repeated", p.Label)
		seen[p.Label] = true
	}
}

func TestChartReady_SuppressesShortSeries(t *testing.T) {
	assert.False(t, ChartReady(ToChartPoints(Build(nil))))
	assert.False(t, ChartReady(ToChartPoints(Build([]Measurement{m(0, 0.15)}))))
}

// ============================================================================
// END-TO-END SCENARIOS
// ============================================================================

func TestScenarioA_SteadyGrowth(t *testing.T) {
	r, err := Compute(Build([]Measurement{m(0, 0.10), m(10, 0.30)}))
	require.NoError(t, err)

	assert.InDelta(t, 0.02, r.Rate, eps)

	stats, err := Derive(r)
	require.NoError(t, err)
	assert.InDelta(t, 200.0, stats.PercentageChange, 1e-6)
	assert.InDelta(t, 2.0, stats.AverageDailyChangePct, 1e-6)

	p := Project(r, 7)
	assert.InDelta(t, 0.44, p.ProjectedDensity, eps)
}

func TestScenarioB_SingleMeasurement(t *testing.T) {
	_, err := Compute(Build([]Measurement{m(0, 0.15)}))

	assert.ErrorIs(t, err, ErrInsufficientData)
}

func TestScenarioC_SameDay(t *testing.T) {
	_, err := Compute(Build([]Measurement{m(5, 0.20), m(5, 0.25)}))

	assert.ErrorIs(t, err, ErrDegenerateInterval)
	assert.True(t, IsEmpty(err))
}

func TestScenarioD_ZeroBase(t *testing.T) {
	r, err := Compute(Build([]Measurement{m(0, 0.0), m(3, 0.12)}))
	require.NoError(t, err)
	assert.InDelta(t, 0.04, r.Rate, eps)

	_, err = Derive(r)
	assert.ErrorIs(t, err, ErrDegenerateBase)

	assert.Equal(t, 0.12, Project(r, 0).ProjectedDensity)
}
