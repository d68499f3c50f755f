// Package view drives a growth analysis for one plant: it fetches the
// measurements, runs the growth computations and exposes the outcome as a
// small state machine.
package view

import (
	"context"
	"errors"
	"math"
	"sync"

	"github.com/02loveslollipop/plant-growth-tracker/internal/growth"
	"github.com/02loveslollipop/plant-growth-tracker/internal/logging"
)

// State is the position of the view in its per-request state machine.
type State int

const (
	Loading State = iota
	Loaded
	Empty
	Failed
)

func (s State) String() string {
	switch s {
	case Loading:
		return "loading"
	case Loaded:
		return "loaded"
	case Empty:
		return "empty"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// Terminal reports whether s ends a request.
func (s State) Terminal() bool {
	return s == Loaded || s == Empty || s == Failed
}

const (
	EmptyMessage  = "No data available to calculate growth rate. Upload more images."
	FailedMessage = "Failed to fetch growth rate."
)

// Fetcher retrieves the measurement snapshot of a plant.
type Fetcher interface {
	Measurements(ctx context.Context, plantID int64) ([]growth.Measurement, error)
}

// Analysis is everything shown for a loaded plant.
type Analysis struct {
	Series growth.Series
	Result growth.GrowthRateResult
	// PercentageChange is nil when the initial density is zero.
	PercentageChange      *float64
	AverageDailyChangePct float64
	Projection            growth.Projection
	Chart                 []growth.ChartPoint
	ChartReady            bool
}

// Snapshot is a copy of the view state.
type Snapshot struct {
	State     State
	RequestID uint64
	PlantID   int64
	Analysis  *Analysis
	// Err is the cause of Empty or Failed.
	Err     error
	Message string
}

// View is safe for concurrent use.
type View struct {
	fetcher Fetcher
	plantID int64
	horizon float64
	log     *logging.Logger

	mu        sync.Mutex
	latest    uint64
	snap      Snapshot
	observers []func(Snapshot)
}

// Option configures a View.
type Option func(*View)

// WithHorizon sets the projection horizon in days.
func WithHorizon(days float64) Option {
	return func(v *View) { v.horizon = days }
}

// WithLogger sets the logger used for dropped responses and failures.
func WithLogger(l *logging.Logger) Option {
	return func(v *View) { v.log = l }
}

// New returns a view for plantID. It starts in Loading with no request.
func New(f Fetcher, plantID int64, opts ...Option) *View {
	v := &View{
		fetcher: f,
		plantID: plantID,
		horizon: growth.DefaultHorizonDays,
		log:     logging.Global(),
	}
	for _, opt := range opts {
		opt(v)
	}
	v.snap = Snapshot{State: Loading, PlantID: plantID}
	return v
}

// OnChange registers fn to be called after every applied transition.
// Observers run on the goroutine that caused the transition.
func (v *View) OnChange(fn func(Snapshot)) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.observers = append(v.observers, fn)
}

// Snapshot returns the current state.
func (v *View) Snapshot() Snapshot {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.snap
}

// Refresh issues a new fetch and blocks until it completes. It returns the
// outcome of this request and whether it was applied; a request superseded
// by a later Refresh is computed but not applied.
func (v *View) Refresh(ctx context.Context) (Snapshot, bool) {
	id := v.begin()

	raw, err := v.fetcher.Measurements(ctx, v.plantID)
	outcome := Evaluate(raw, err, v.horizon)
	outcome.RequestID = id
	outcome.PlantID = v.plantID

	applied := v.apply(outcome)
	if !applied {
		v.log.Debug("dropped stale growth response", "plant_id", v.plantID, "request_id", id)
	} else if outcome.State == Failed {
		v.log.Warn("growth fetch failed", "plant_id", v.plantID, "request_id", id, "error", outcome.Err)
	}
	return outcome, applied
}

func (v *View) begin() uint64 {
	v.mu.Lock()
	v.latest++
	id := v.latest
	v.snap = Snapshot{State: Loading, RequestID: id, PlantID: v.plantID}
	snap := v.snap
	observers := append([]func(Snapshot){}, v.observers...)
	v.mu.Unlock()

	notify(observers, snap)
	return id
}

func (v *View) apply(outcome Snapshot) bool {
	v.mu.Lock()
	if outcome.RequestID != v.latest || v.snap.State != Loading {
		v.mu.Unlock()
		return false
	}
	v.snap = outcome
	observers := append([]func(Snapshot){}, v.observers...)
	v.mu.Unlock()

	notify(observers, outcome)
	return true
}

func notify(observers []func(Snapshot), snap Snapshot) {
	for _, fn := range observers {
		fn(snap)
	}
}

// Evaluate resolves a fetch result into a terminal snapshot.
func Evaluate(raw []growth.Measurement, fetchErr error, horizonDays float64) Snapshot {
	if fetchErr != nil {
		return Snapshot{State: Failed, Err: fetchErr, Message: FailedMessage}
	}
	for _, m := range raw {
		if err := m.Validate(); err != nil {
			return Snapshot{State: Failed, Err: err, Message: FailedMessage}
		}
	}

	series := growth.Build(raw)
	result, err := growth.Compute(series)
	if err != nil {
		if growth.IsEmpty(err) {
			return Snapshot{State: Empty, Err: err, Message: EmptyMessage}
		}
		return Snapshot{State: Failed, Err: err, Message: FailedMessage}
	}

	analysis := &Analysis{
		Series:                series,
		Result:                result,
		AverageDailyChangePct: growth.AverageDailyChangePct(result),
		Projection:            growth.Project(result, horizonDays),
		Chart:                 growth.ToChartPoints(series),
	}
	analysis.ChartReady = growth.ChartReady(analysis.Chart)

	projected := analysis.Projection.ProjectedDensity
	if math.IsNaN(projected) || math.IsInf(projected, 0) {
		return Snapshot{State: Failed, Err: growth.ErrNonFinite, Message: FailedMessage}
	}

	stats, err := growth.Derive(result)
	switch {
	case err == nil:
		pct := stats.PercentageChange
		analysis.PercentageChange = &pct
	case errors.Is(err, growth.ErrDegenerateBase):
		// percentage change stays undefined
	default:
		return Snapshot{State: Failed, Err: err, Message: FailedMessage}
	}

	return Snapshot{State: Loaded, Analysis: analysis}
}
