package render

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/02loveslollipop/plant-growth-tracker/internal/growth"
	"github.com/02loveslollipop/plant-growth-tracker/services/viewer/internal/client"
	"github.com/02loveslollipop/plant-growth-tracker/services/viewer/internal/view"
)

var day0 = time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)

func TestPlants(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Plants(&buf, nil))
	assert.Equal(t, NoPlantsMessage+"\n", buf.String())

	buf.Reset()
	require.NoError(t, Plants(&buf, []client.Plant{{ID: 3, Name: "Basil", Description: "kitchen", CreatedAt: day0}}))
	out := buf.String()
	assert.Contains(t, out, "NAME")
	assert.Contains(t, out, "Basil")
	assert.Contains(t, out, "Mar 1, 2024, 9:30:00 AM")
}

func TestTimeline(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Timeline(&buf, []client.Image{}))
	assert.Equal(t, "No images uploaded.\n", buf.String())

	buf.Reset()
	require.NoError(t, Timeline(&buf, []client.Image{
		{ID: 1, Timestamp: day0, GreenDensity: 0.125, ImageURL: "/uploads/a.png"},
		{ID: 2, Timestamp: day0.Add(26 * time.Hour), GreenDensity: 0.5, ImageURL: "/uploads/b.png"},
	}))
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[1], "Mar 1, 2024, 9:30:00 AM")
	assert.Contains(t, lines[1], "12.50%")
	assert.Contains(t, lines[2], "Mar 2, 2024, 11:30:00 AM")
	assert.Contains(t, lines[2], "/uploads/b.png")
}

func TestGrowth_Loaded(t *testing.T) {
	snap := view.Evaluate([]growth.Measurement{
		{Timestamp: day0, GreenDensity: 0.10},
		{Timestamp: day0.AddDate(0, 0, 10), GreenDensity: 0.30},
	}, nil, 7)
	require.Equal(t, view.Loaded, snap.State)

	var buf bytes.Buffer
	require.NoError(t, Growth(&buf, snap))
	out := buf.String()

	assert.Contains(t, out, "Growth Rate: 2.00% per day")
	assert.Contains(t, out, "Green Density at Time T1: 10.00%")
	assert.Contains(t, out, "Time Difference: 10 day(s)")
	assert.Contains(t, out, "03/01/2024")
	assert.Contains(t, out, "03/11/2024")
	assert.Contains(t, out, "Percentage Change: 200.00%")
	assert.Contains(t, out, "Average Daily Change: 2.00% per day")
	assert.Contains(t, out, "Projected Green Density (7 days): 44.00%")
	assert.NotContains(t, out, ChartTooShortMessage)
}

func TestGrowth_LoadedWithZeroBase(t *testing.T) {
	snap := view.Evaluate([]growth.Measurement{
		{Timestamp: day0, GreenDensity: 0},
		{Timestamp: day0.AddDate(0, 0, 3), GreenDensity: 0.12},
	}, nil, 7)

	var buf bytes.Buffer
	require.NoError(t, Growth(&buf, snap))

	assert.Contains(t, buf.String(), "Percentage Change: N/A")
	assert.Contains(t, buf.String(), "Growth Rate: 4.00% per day")
}

func TestGrowth_ProjectionNotClamped(t *testing.T) {
	snap := view.Evaluate([]growth.Measurement{
		{Timestamp: day0, GreenDensity: 0.5},
		{Timestamp: day0.AddDate(0, 0, 1), GreenDensity: 0.9},
	}, nil, 7)

	var buf bytes.Buffer
	require.NoError(t, Growth(&buf, snap))

	assert.Contains(t, buf.String(), "Projected Green Density (7 days): 370.00%")
}

func TestGrowth_ChartSuppressed(t *testing.T) {
	snap := view.Snapshot{State: view.Loaded, Analysis: &view.Analysis{
		Chart:      []growth.ChartPoint{{Label: "03/01/2024", DensityPct: 10}},
		ChartReady: false,
	}}

	var buf bytes.Buffer
	require.NoError(t, Growth(&buf, snap))

	assert.Contains(t, buf.String(), ChartTooShortMessage)
	assert.NotContains(t, buf.String(), "03/01/2024")
}

func TestGrowth_Empty(t *testing.T) {
	snap := view.Evaluate([]growth.Measurement{{Timestamp: day0, GreenDensity: 0.15}}, nil, 7)

	var buf bytes.Buffer
	require.NoError(t, Growth(&buf, snap))

	assert.Contains(t, buf.String(), view.EmptyMessage)
	assert.NotContains(t, buf.String(), "Growth Rate:")
}

func TestGrowth_Failed(t *testing.T) {
	snap := view.Evaluate(nil, errors.New("connection refused"), 7)

	var buf bytes.Buffer
	require.NoError(t, Growth(&buf, snap))

	assert.Contains(t, buf.String(), view.FailedMessage)
	assert.Contains(t, buf.String(), "connection refused")
}

func TestBar(t *testing.T) {
	assert.Equal(t, "", bar(-5))
	assert.Equal(t, strings.Repeat("#", 20), bar(50))
	assert.Equal(t, strings.Repeat("#", barWidth), bar(250))
}
