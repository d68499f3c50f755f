// Package growth derives growth analytics from a plant's green-density
// measurements: growth rate, derived statistics, short-horizon projection and
// a chart-ready series.
package growth

import (
	"fmt"
	"math"
	"sort"
	"time"
)

// Measurement is one timestamped green-density observation for a plant.
type Measurement struct {
	Timestamp    time.Time `json:"timestamp"`
	GreenDensity float64   `json:"green_density"`
}

// Validate reports whether the measurement can enter a Series.
func (m Measurement) Validate() error {
	if m.Timestamp.IsZero() {
		return fmt.Errorf("%w: missing timestamp", ErrInvalidMeasurement)
	}
	return ValidateDensity(m.GreenDensity)
}

// ValidateDensity checks that v is a finite fraction in [0,1].
func ValidateDensity(v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return fmt.Errorf("%w: green density is not finite", ErrInvalidMeasurement)
	}
	if v < 0 || v > 1 {
		return fmt.Errorf("%w: green density %v outside [0,1]", ErrInvalidMeasurement, v)
	}
	return nil
}

// Series is a time-ordered snapshot of measurements. Build is the only way
// to obtain a sorted one; the zero value is an empty series.
type Series struct {
	points []Measurement
}

// Build returns the measurements sorted ascending by timestamp. Ties keep
// their arrival order and duplicates are preserved. raw is not modified.
func Build(raw []Measurement) Series {
	points := make([]Measurement, len(raw))
	copy(points, raw)
	sort.SliceStable(points, func(i, j int) bool {
		return points[i].Timestamp.Before(points[j].Timestamp)
	})
	return Series{points: points}
}

// Len returns the number of measurements.
func (s Series) Len() int {
	return len(s.points)
}

// At returns the i-th measurement in chronological order.
func (s Series) At(i int) Measurement {
	return s.points[i]
}

// Measurements returns a copy of the ordered measurements.
func (s Series) Measurements() []Measurement {
	out := make([]Measurement, len(s.points))
	copy(out, s.points)
	return out
}

// First returns the earliest measurement.
func (s Series) First() (Measurement, bool) {
	if len(s.points) == 0 {
		return Measurement{}, false
	}
	return s.points[0], true
}

// Last returns the latest measurement.
func (s Series) Last() (Measurement, bool) {
	if len(s.points) == 0 {
		return Measurement{}, false
	}
	return s.points[len(s.points)-1], true
}
