// Package client is the viewer's transport to the plant REST API. Every
// payload is shape-checked here before it reaches the growth computations.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/02loveslollipop/plant-growth-tracker/internal/growth"
)

var (
	// ErrTransport wraps failures to reach the API at all.
	ErrTransport = errors.New("transport failure")
	// ErrInvalidPayload wraps responses that do not have the expected shape.
	ErrInvalidPayload = errors.New("invalid payload")
)

// APIError is a non-2xx answer from the API.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api returned %d %s", e.StatusCode, http.StatusText(e.StatusCode))
	}
	return fmt.Sprintf("api returned %d: %s", e.StatusCode, e.Message)
}

// Client calls the plant REST API.
type Client struct {
	http    *http.Client
	baseURL string
	token   string
}

// New returns a client for baseURL. token may be empty.
func New(httpClient *http.Client, baseURL, token string) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{http: httpClient, baseURL: strings.TrimRight(baseURL, "/"), token: token}
}

// ListPlants returns every plant.
func (c *Client) ListPlants(ctx context.Context) ([]Plant, error) {
	var raw []plantPayload
	if err := c.getJSON(ctx, "/api/plants", &raw); err != nil {
		return nil, err
	}
	plants := make([]Plant, 0, len(raw))
	for i, p := range raw {
		plant, err := p.toPlant()
		if err != nil {
			return nil, fmt.Errorf("%w: plant %d: %v", ErrInvalidPayload, i, err)
		}
		plants = append(plants, plant)
	}
	return plants, nil
}

// CreatePlant creates a plant and returns it.
func (c *Client) CreatePlant(ctx context.Context, name, description string) (Plant, error) {
	body, err := json.Marshal(map[string]string{"name": name, "description": description})
	if err != nil {
		return Plant{}, err
	}
	var raw plantPayload
	if err := c.do(ctx, http.MethodPost, "/api/plants", "application/json", bytes.NewReader(body), &raw); err != nil {
		return Plant{}, err
	}
	plant, err := raw.toPlant()
	if err != nil {
		return Plant{}, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	return plant, nil
}

// ListImages returns a plant's images ordered by timestamp.
func (c *Client) ListImages(ctx context.Context, plantID int64) ([]Image, error) {
	var raw []imagePayload
	if err := c.getJSON(ctx, plantPath(plantID, "images"), &raw); err != nil {
		return nil, err
	}
	return toImages(raw)
}

// UploadImage sends a photograph taken at ts. When density is nil the
// API asks its analyzer for one.
func (c *Client) UploadImage(ctx context.Context, plantID int64, filename string, image io.Reader, ts time.Time, density *float64) (Image, error) {
	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	part, err := w.CreateFormFile("image", filename)
	if err != nil {
		return Image{}, err
	}
	if _, err := io.Copy(part, image); err != nil {
		return Image{}, fmt.Errorf("read image: %w", err)
	}
	if err := w.WriteField("timestamp", ts.Format(time.RFC3339Nano)); err != nil {
		return Image{}, err
	}
	if density != nil {
		if err := w.WriteField("green_density", strconv.FormatFloat(*density, 'f', -1, 64)); err != nil {
			return Image{}, err
		}
	}
	if err := w.Close(); err != nil {
		return Image{}, err
	}

	var raw imagePayload
	if err := c.do(ctx, http.MethodPost, plantPath(plantID, "images"), w.FormDataContentType(), body, &raw); err != nil {
		return Image{}, err
	}
	img, err := raw.toImage()
	if err != nil {
		return Image{}, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	return img, nil
}

// GrowthAnalysis fetches the server-side growth summary of a plant.
func (c *Client) GrowthAnalysis(ctx context.Context, plantID int64) (GrowthAnalysis, error) {
	var raw growthPayload
	if err := c.getJSON(ctx, plantPath(plantID, "growth"), &raw); err != nil {
		return GrowthAnalysis{}, err
	}
	analysis, err := raw.toAnalysis()
	if err != nil {
		return GrowthAnalysis{}, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	return analysis, nil
}

// Measurements returns the validated measurements of a plant.
func (c *Client) Measurements(ctx context.Context, plantID int64) ([]growth.Measurement, error) {
	analysis, err := c.GrowthAnalysis(ctx, plantID)
	if err != nil {
		return nil, err
	}
	return analysis.DataPoints, nil
}

func plantPath(plantID int64, resource string) string {
	return "/api/plants/" + strconv.FormatInt(plantID, 10) + "/" + resource
}

func (c *Client) getJSON(ctx context.Context, path string, out interface{}) error {
	return c.do(ctx, http.MethodGet, path, "", nil, out)
}

func (c *Client) do(ctx context.Context, method, path, contentType string, body io.Reader, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s %s: %w", ErrTransport, method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		var errBody struct {
			Error   string `json:"error"`
			Message string `json:"message"`
		}
		if data, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10)); err == nil && json.Unmarshal(data, &errBody) == nil {
			apiErr.Message = errBody.Error
			if apiErr.Message == "" {
				apiErr.Message = errBody.Message
			}
		}
		return apiErr
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		if isNetError(err) {
			return fmt.Errorf("%w: read %s: %w", ErrTransport, path, err)
		}
		return fmt.Errorf("%w: decode %s: %v", ErrInvalidPayload, path, err)
	}
	return nil
}

func isNetError(err error) bool {
	var netErr interface{ Timeout() bool }
	return errors.As(err, &netErr)
}
