package client

import (
	"errors"
	"fmt"
	"time"

	"github.com/02loveslollipop/plant-growth-tracker/internal/growth"
	"github.com/02loveslollipop/plant-growth-tracker/internal/timefmt"
)

// Plant is a tracked plant as returned by the API.
type Plant struct {
	ID          int64
	Name        string
	Description string
	CreatedAt   time.Time
}

// Image is an uploaded photograph.
type Image struct {
	ID           int64
	PlantID      int64
	ImageURL     string
	Timestamp    time.Time
	GreenDensity float64
	CreatedAt    time.Time
}

// GrowthDetails are the two endpoints the server used for its rate.
type GrowthDetails struct {
	DensityT1          float64
	DensityT2          float64
	T1                 time.Time
	T2                 time.Time
	TimeDifferenceDays float64
}

// GrowthAnalysis is the server's growth summary. GrowthRate and Details
// are nil when the server could not compute a rate; Message says why.
type GrowthAnalysis struct {
	PlantID    int64
	GrowthRate *float64
	Details    *GrowthDetails
	DataPoints []growth.Measurement
	Message    string
}

type plantPayload struct {
	ID          *int64  `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	CreatedAt   *string `json:"created_at"`
}

type imagePayload struct {
	ID           *int64   `json:"id"`
	PlantID      *int64   `json:"plant_id"`
	ImageURL     string   `json:"image_url"`
	Timestamp    *string  `json:"timestamp"`
	GreenDensity *float64 `json:"green_density"`
	CreatedAt    *string  `json:"created_at"`
}

type measurementPayload struct {
	Timestamp    *string  `json:"timestamp"`
	GreenDensity *float64 `json:"green_density"`
}

type detailsPayload struct {
	DensityT1          *float64 `json:"density_t1"`
	DensityT2          *float64 `json:"density_t2"`
	T1                 *string  `json:"t1"`
	T2                 *string  `json:"t2"`
	TimeDifferenceDays *float64 `json:"time_difference_days"`
}

type growthPayload struct {
	PlantID            *int64               `json:"plant_id"`
	GrowthRate         *float64             `json:"growth_rate"`
	CalculationDetails *detailsPayload      `json:"calculation_details"`
	DataPoints         []measurementPayload `json:"data_points"`
	Message            string               `json:"message"`
}

func requireID(name string, v *int64) (int64, error) {
	if v == nil {
		return 0, fmt.Errorf("missing %s", name)
	}
	if *v < 0 {
		return 0, fmt.Errorf("negative %s %d", name, *v)
	}
	return *v, nil
}

func requireTime(name string, v *string) (time.Time, error) {
	if v == nil {
		return time.Time{}, fmt.Errorf("missing %s", name)
	}
	t, err := timefmt.Parse(*v)
	if err != nil {
		return time.Time{}, fmt.Errorf("%s: %w", name, err)
	}
	return t, nil
}

func requireDensity(name string, v *float64) (float64, error) {
	if v == nil {
		return 0, fmt.Errorf("missing %s", name)
	}
	if err := growth.ValidateDensity(*v); err != nil {
		return 0, fmt.Errorf("%s: %w", name, err)
	}
	return *v, nil
}

func (p plantPayload) toPlant() (Plant, error) {
	id, err := requireID("id", p.ID)
	if err != nil {
		return Plant{}, err
	}
	created, err := requireTime("created_at", p.CreatedAt)
	if err != nil {
		return Plant{}, err
	}
	return Plant{ID: id, Name: p.Name, Description: p.Description, CreatedAt: created}, nil
}

func (p imagePayload) toImage() (Image, error) {
	id, err := requireID("id", p.ID)
	if err != nil {
		return Image{}, err
	}
	plantID, err := requireID("plant_id", p.PlantID)
	if err != nil {
		return Image{}, err
	}
	ts, err := requireTime("timestamp", p.Timestamp)
	if err != nil {
		return Image{}, err
	}
	density, err := requireDensity("green_density", p.GreenDensity)
	if err != nil {
		return Image{}, err
	}
	img := Image{ID: id, PlantID: plantID, ImageURL: p.ImageURL, Timestamp: ts, GreenDensity: density}
	if p.CreatedAt != nil {
		if img.CreatedAt, err = requireTime("created_at", p.CreatedAt); err != nil {
			return Image{}, err
		}
	}
	return img, nil
}

func toImages(raw []imagePayload) ([]Image, error) {
	images := make([]Image, 0, len(raw))
	for i, p := range raw {
		img, err := p.toImage()
		if err != nil {
			return nil, fmt.Errorf("%w: image %d: %v", ErrInvalidPayload, i, err)
		}
		images = append(images, img)
	}
	return images, nil
}

func (p measurementPayload) toMeasurement() (growth.Measurement, error) {
	ts, err := requireTime("timestamp", p.Timestamp)
	if err != nil {
		return growth.Measurement{}, err
	}
	density, err := requireDensity("green_density", p.GreenDensity)
	if err != nil {
		return growth.Measurement{}, err
	}
	return growth.Measurement{Timestamp: ts, GreenDensity: density}, nil
}

func (p growthPayload) toAnalysis() (GrowthAnalysis, error) {
	plantID, err := requireID("plant_id", p.PlantID)
	if err != nil {
		return GrowthAnalysis{}, err
	}
	if p.DataPoints == nil {
		return GrowthAnalysis{}, errors.New("missing data_points")
	}

	out := GrowthAnalysis{
		PlantID:    plantID,
		GrowthRate: p.GrowthRate,
		DataPoints: make([]growth.Measurement, 0, len(p.DataPoints)),
		Message:    p.Message,
	}
	for i, dp := range p.DataPoints {
		m, err := dp.toMeasurement()
		if err != nil {
			return GrowthAnalysis{}, fmt.Errorf("data_points[%d]: %w", i, err)
		}
		out.DataPoints = append(out.DataPoints, m)
	}

	if p.CalculationDetails != nil {
		d, err := p.CalculationDetails.toDetails()
		if err != nil {
			return GrowthAnalysis{}, fmt.Errorf("calculation_details: %w", err)
		}
		out.Details = &d
	}
	if (out.GrowthRate == nil) != (out.Details == nil) {
		return GrowthAnalysis{}, errors.New("growth_rate and calculation_details must both be present or both be null")
	}
	return out, nil
}

func (p detailsPayload) toDetails() (GrowthDetails, error) {
	d1, err := requireDensity("density_t1", p.DensityT1)
	if err != nil {
		return GrowthDetails{}, err
	}
	d2, err := requireDensity("density_t2", p.DensityT2)
	if err != nil {
		return GrowthDetails{}, err
	}
	t1, err := requireTime("t1", p.T1)
	if err != nil {
		return GrowthDetails{}, err
	}
	t2, err := requireTime("t2", p.T2)
	if err != nil {
		return GrowthDetails{}, err
	}
	if p.TimeDifferenceDays == nil {
		return GrowthDetails{}, errors.New("missing time_difference_days")
	}
	return GrowthDetails{DensityT1: d1, DensityT2: d2, T1: t1, T2: t2, TimeDifferenceDays: *p.TimeDifferenceDays}, nil
}
