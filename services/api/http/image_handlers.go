package http

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/02loveslollipop/plant-growth-tracker/internal/growth"
	"github.com/02loveslollipop/plant-growth-tracker/internal/logging"
	"github.com/02loveslollipop/plant-growth-tracker/internal/timefmt"
	"github.com/02loveslollipop/plant-growth-tracker/services/api/db"
	"github.com/02loveslollipop/plant-growth-tracker/services/api/density"
	"github.com/02loveslollipop/plant-growth-tracker/services/api/storage"
)

const uploadsPrefix = "/uploads/"

var allowedExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".gif":  true,
}

type imageResponse struct {
	ID           int64     `json:"id"`
	PlantID      int64     `json:"plant_id"`
	ImageURL     string    `json:"image_url"`
	Timestamp    time.Time `json:"timestamp"`
	GreenDensity float64   `json:"green_density"`
	CreatedAt    time.Time `json:"created_at"`
}

func toImageResponse(img db.PlantImage) imageResponse {
	return imageResponse{
		ID:           img.ID,
		PlantID:      img.PlantID,
		ImageURL:     uploadsPrefix + img.ImageKey,
		Timestamp:    img.Timestamp,
		GreenDensity: img.GreenDensity,
		CreatedAt:    img.CreatedAt,
	}
}

func (s *Server) handleListImages(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
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

	resp := make([]imageResponse, 0, len(images))
	for _, img := range images {
		resp = append(resp, toImageResponse(img))
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) handleUploadImage(c *gin.Context) {
	if c.Request.ContentLength > s.cfg.MaxUploadBytes {
		errorJSON(c, http.StatusRequestEntityTooLarge, "upload too large", nil)
		return
	}
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, s.cfg.MaxUploadBytes)

	ctx, cancel := context.WithTimeout(c.Request.Context(), 60*time.Second)
	defer cancel()

	plant := s.lookupPlant(ctx, c)
	if plant == nil {
		return
	}

	header, err := c.FormFile("image")
	if err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.As(err, &tooLarge):
			errorJSON(c, http.StatusRequestEntityTooLarge, "upload too large", err)
		case errors.Is(err, http.ErrMissingFile):
			errorJSON(c, http.StatusBadRequest, "no image part", nil)
		default:
			errorJSON(c, http.StatusBadRequest, "invalid multipart form", err)
		}
		return
	}
	if header.Filename == "" {
		errorJSON(c, http.StatusBadRequest, "no selected file", nil)
		return
	}
	if !allowedExtensions[strings.ToLower(path.Ext(header.Filename))] {
		errorJSON(c, http.StatusBadRequest, "file type not allowed", nil)
		return
	}

	rawTimestamp := c.PostForm("timestamp")
	if strings.TrimSpace(rawTimestamp) == "" {
		errorJSON(c, http.StatusBadRequest, "timestamp is required", nil)
		return
	}
	ts, err := timefmt.Parse(rawTimestamp)
	if err != nil {
		errorJSON(c, http.StatusBadRequest, "invalid timestamp format", err)
		return
	}

	var explicitDensity *float64
	if raw, ok := c.GetPostForm("green_density"); ok && strings.TrimSpace(raw) != "" {
		v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
		if err == nil {
			err = growth.ValidateDensity(v)
		}
		if err != nil {
			errorJSON(c, http.StatusBadRequest, "invalid green_density", err)
			return
		}
		explicitDensity = &v
	}

	data, err := readFormFile(header)
	if err != nil {
		errorJSON(c, http.StatusBadRequest, "failed to read image", err)
		return
	}

	key := storage.NewKey(header.Filename)
	if err := s.blobs.Put(ctx, key, bytes.NewReader(data), int64(len(data)), storage.ContentTypeFor(key)); err != nil {
		errorJSON(c, http.StatusInternalServerError, "failed to store image", err)
		return
	}

	log := logging.FromContext(ctx)
	discard := func() {
		cleanupCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
		defer cancel()
		if err := s.blobs.Delete(cleanupCtx, key); err != nil {
			log.Warn("failed to remove stored image", "key", key, "error", err)
		}
	}

	greenDensity, status, err := s.resolveDensity(ctx, explicitDensity, header.Filename, data)
	if err != nil {
		discard()
		errorJSON(c, status, err.Error(), err)
		return
	}

	img, err := s.store.CreateImage(ctx, db.NewImage{
		PlantID:      plant.ID,
		ImageKey:     key,
		Timestamp:    ts,
		GreenDensity: greenDensity,
	})
	if err != nil {
		discard()
		errorJSON(c, http.StatusInternalServerError, "failed to record image", err)
		return
	}

	log.Info("image uploaded", "plant_id", plant.ID, "image_id", img.ID, "green_density", greenDensity)
	c.JSON(http.StatusCreated, toImageResponse(img))
}

// resolveDensity prefers the density sent with the form and falls back to
// the analyzer. The returned status is meaningful only with an error.
func (s *Server) resolveDensity(ctx context.Context, explicit *float64, filename string, data []byte) (float64, int, error) {
	if explicit != nil {
		return *explicit, 0, nil
	}
	if s.analyzer == nil {
		return 0, http.StatusBadRequest, fmt.Errorf("green_density is required: %w", density.ErrUnavailable)
	}
	v, err := s.analyzer.Analyze(ctx, filename, data)
	if errors.Is(err, density.ErrUnavailable) {
		return 0, http.StatusBadRequest, fmt.Errorf("green_density is required: %w", err)
	}
	if err != nil {
		return 0, http.StatusBadGateway, fmt.Errorf("density analysis failed: %w", err)
	}
	return v, 0, nil
}

func readFormFile(header *multipart.FileHeader) ([]byte, error) {
	f, err := header.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}

func (s *Server) handleServeUpload(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 30*time.Second)
	defer cancel()

	key := c.Param("key")
	obj, err := s.blobs.Get(ctx, key)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) || errors.Is(err, storage.ErrInvalidKey) {
			errorJSON(c, http.StatusNotFound, "image not found", nil)
			return
		}
		errorJSON(c, http.StatusInternalServerError, "failed to read image", err)
		return
	}
	defer obj.Close()

	c.DataFromReader(http.StatusOK, obj.Size, obj.ContentType, obj, nil)
}
