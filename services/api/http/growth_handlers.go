package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/02loveslollipop/plant-growth-tracker/internal/growth"
)

type calculationDetails struct {
	DensityT1          float64   `json:"density_t1"`
	DensityT2          float64   `json:"density_t2"`
	T1                 time.Time `json:"t1"`
	T2                 time.Time `json:"t2"`
	TimeDifferenceDays float64   `json:"time_difference_days"`
}

type growthResponse struct {
	PlantID            int64                `json:"plant_id"`
	GrowthRate         *float64             `json:"growth_rate"`
	CalculationDetails *calculationDetails  `json:"calculation_details"`
	DataPoints         []growth.Measurement `json:"data_points"`
	Message            string               `json:"message,omitempty"`
}

func (s *Server) handleGrowth(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	plant := s.lookupPlant(ctx, c)
	if plant == nil {
		return
	}

	images, err := s.store.ListImages(ctx, plant.ID)
	if err != nil {
		errorJSON(c, http.StatusInternalServerError, "failed to list images", err)
		return
	}

	raw := make([]growth.Measurement, 0, len(images))
	for _, img := range images {
		raw = append(raw, growth.Measurement{Timestamp: img.Timestamp, GreenDensity: img.GreenDensity})
	}
	series := growth.Build(raw)

	resp := growthResponse{
		PlantID:    plant.ID,
		DataPoints: series.Measurements(),
	}

	result, err := growth.Compute(series)
	switch {
	case errors.Is(err, growth.ErrInsufficientData):
		resp.Message = "Not enough images to calculate growth rate"
	case errors.Is(err, growth.ErrDegenerateInterval):
		resp.Message = "Time difference is zero"
	case err != nil:
		errorJSON(c, http.StatusInternalServerError, "failed to compute growth rate", err)
		return
	default:
		rate := result.Rate
		resp.GrowthRate = &rate
		resp.CalculationDetails = &calculationDetails{
			DensityT1:          result.DensityT1,
			DensityT2:          result.DensityT2,
			T1:                 result.T1,
			T2:                 result.T2,
			TimeDifferenceDays: result.TimeDifferenceDays,
		}
	}

	c.JSON(http.StatusOK, resp)
}
