package db

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Plant is a tracked plant.
type Plant struct {
	ID          int64     `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	Description string    `json:"description" db:"description"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

// PlantImage is an uploaded photograph and its green density.
type PlantImage struct {
	ID           int64     `json:"id" db:"id"`
	PlantID      int64     `json:"plant_id" db:"plant_id"`
	ImageKey     string    `json:"image_key" db:"image_key"`
	Timestamp    time.Time `json:"timestamp" db:"ts"`
	GreenDensity float64   `json:"green_density" db:"green_density"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

// NewPlant holds the fields supplied when creating a plant.
type NewPlant struct {
	Name        string
	Description string
}

// NewImage holds the fields supplied when recording an uploaded image.
type NewImage struct {
	PlantID      int64
	ImageKey     string
	Timestamp    time.Time
	GreenDensity float64
}

// Store is the persistence boundary for plants and their images.
type Store interface {
	Migrate(ctx context.Context) error
	Ping(ctx context.Context) error

	ListPlants(ctx context.Context) ([]Plant, error)
	// GetPlant returns nil without error when the plant does not exist.
	GetPlant(ctx context.Context, id int64) (*Plant, error)
	CreatePlant(ctx context.Context, p NewPlant) (Plant, error)

	// ListImages returns a plant's images ordered by timestamp, then id.
	ListImages(ctx context.Context, plantID int64) ([]PlantImage, error)
	CreateImage(ctx context.Context, img NewImage) (PlantImage, error)

	Close() error
}

// ErrUnsupportedURL is returned by Open for unknown DATABASE_URL schemes.
var ErrUnsupportedURL = errors.New("unsupported database url")

// Open connects to the store selected by the URL scheme:
// postgres:// and postgresql:// use Postgres, sqlite:// and file: use SQLite.
func Open(ctx context.Context, databaseURL string) (Store, error) {
	switch {
	case strings.HasPrefix(databaseURL, "postgres://"), strings.HasPrefix(databaseURL, "postgresql://"):
		return NewPostgres(ctx, databaseURL)
	case strings.HasPrefix(databaseURL, "sqlite://"):
		return NewSQLite(ctx, strings.TrimPrefix(databaseURL, "sqlite://"))
	case strings.HasPrefix(databaseURL, "file:"):
		return NewSQLite(ctx, databaseURL)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedURL, redact(databaseURL))
	}
}

func redact(u string) string {
	if i := strings.Index(u, "@"); i >= 0 {
		if j := strings.Index(u, "://"); j >= 0 && j < i {
			return u[:j+3] + "***" + u[i:]
		}
	}
	return u
}
