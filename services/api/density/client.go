// Package density talks to the upstream analyzer that turns a plant
// photograph into a green density.
package density

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/02loveslollipop/plant-growth-tracker/internal/growth"
)

// ErrUnavailable is returned when no analyzer endpoint is configured.
var ErrUnavailable = errors.New("density analyzer not configured")

// Analyzer produces a green density in [0,1] for an image.
type Analyzer interface {
	Analyze(ctx context.Context, filename string, image []byte) (float64, error)
}

type analyzeResponse struct {
	GreenDensity *float64 `json:"green_density"`
	Message      string   `json:"message"`
}

// Client posts images to the analyzer endpoint.
type Client struct {
	http *http.Client
	url  string
}

// NewClient returns an analyzer client for url.
func NewClient(client *http.Client, url string) *Client {
	return &Client{http: client, url: url}
}

// Analyze sends the image as multipart field "image" and decodes
// {"green_density": x}.
func (c *Client) Analyze(ctx context.Context, filename string, image []byte) (float64, error) {
	if c == nil || c.url == "" {
		return 0, ErrUnavailable
	}
	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)
	part, err := mw.CreateFormFile("image", filename)
	if err != nil {
		return 0, err
	}
	if _, err := part.Write(image); err != nil {
		return 0, err
	}
	if err := mw.Close(); err != nil {
		return 0, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, body)
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, fmt.Errorf("request density analysis: %w", err)
	}
	defer resp.Body.Close()

	var payload analyzeResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&payload); err != nil {
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return 0, fmt.Errorf("unexpected status %s", resp.Status)
		}
		return 0, fmt.Errorf("decode payload: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		if payload.Message != "" {
			return 0, fmt.Errorf("analyzer rejected image: %s", payload.Message)
		}
		return 0, fmt.Errorf("unexpected status %s", resp.Status)
	}

	if payload.GreenDensity == nil {
		return 0, errors.New("analyzer response missing green_density")
	}
	if err := growth.ValidateDensity(*payload.GreenDensity); err != nil {
		return 0, err
	}
	return *payload.GreenDensity, nil
}
