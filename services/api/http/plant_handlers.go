package http

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/02loveslollipop/plant-growth-tracker/internal/logging"
	"github.com/02loveslollipop/plant-growth-tracker/services/api/db"
)

type createPlantRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

func (s *Server) handleListPlants(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	log := logging.FromContext(ctx)
	if plants, ok, err := s.plants.GetPlants(ctx); err != nil {
		log.Warn("plant cache read failed", "error", err)
	} else if ok {
		c.JSON(http.StatusOK, plants)
		return
	}

	plants, err := s.store.ListPlants(ctx)
	if err != nil {
		errorJSON(c, http.StatusInternalServerError, "failed to list plants", err)
		return
	}
	if plants == nil {
		plants = []db.Plant{}
	}
	if err := s.plants.SetPlants(ctx, plants); err != nil {
		log.Warn("plant cache write failed", "error", err)
	}

	c.JSON(http.StatusOK, plants)
}

func (s *Server) handleCreatePlant(c *gin.Context) {
	var req createPlantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorJSON(c, http.StatusBadRequest, "invalid request body", err)
		return
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		errorJSON(c, http.StatusBadRequest, "name is required", nil)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	plant, err := s.store.CreatePlant(ctx, db.NewPlant{Name: name, Description: strings.TrimSpace(req.Description)})
	if err != nil {
		errorJSON(c, http.StatusInternalServerError, "failed to create plant", err)
		return
	}
	if err := s.plants.Invalidate(ctx); err != nil {
		logging.FromContext(ctx).Warn("plant cache invalidation failed", "error", err)
	}

	c.JSON(http.StatusCreated, plant)
}

// lookupPlant resolves the :id path parameter. It writes the error response
// and returns nil when the plant cannot be used.
func (s *Server) lookupPlant(ctx context.Context, c *gin.Context) *db.Plant {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		errorJSON(c, http.StatusBadRequest, "invalid plant id", nil)
		return nil
	}

	plant, err := s.store.GetPlant(ctx, id)
	if err != nil {
		errorJSON(c, http.StatusInternalServerError, "failed to load plant", err)
		return nil
	}
	if plant == nil {
		errorJSON(c, http.StatusNotFound, "plant not found", nil)
		return nil
	}
	return plant
}
