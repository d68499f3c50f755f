package db

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
)

//go:embed sql/sqlite/schema.sql
var sqliteSchemaSQL string

//go:embed sql/sqlite/list-plants.sql
var sqliteListPlantsSQL string

//go:embed sql/sqlite/get-plant.sql
var sqliteGetPlantSQL string

//go:embed sql/sqlite/insert-plant.sql
var sqliteInsertPlantSQL string

//go:embed sql/sqlite/list-images.sql
var sqliteListImagesSQL string

//go:embed sql/sqlite/insert-image.sql
var sqliteInsertImageSQL string

// SQLiteStore keeps plants and images in a local SQLite database.
type SQLiteStore struct {
	db *sqlx.DB
}

// NewSQLite opens (and creates if needed) the database at path. ":memory:"
// gives a private in-memory database.
func NewSQLite(ctx context.Context, path string) (*SQLiteStore, error) {
	dsn := path
	if path != ":memory:" {
		dsn = fmt.Sprintf("%s?_foreign_keys=on&_busy_timeout=5000", path)
	}
	conn, err := sqlx.ConnectContext(ctx, "sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %q: %w", path, err)
	}
	// A single connection serialises writers and keeps :memory: databases alive.
	conn.SetMaxOpenConns(1)
	return &SQLiteStore{db: conn}, nil
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Ping verifies the database is reachable.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Migrate creates the tables when they do not exist yet.
func (s *SQLiteStore) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, sqliteSchemaSQL); err != nil {
		return fmt.Errorf("apply sqlite schema: %w", err)
	}
	return nil
}

// ListPlants returns all plants.
func (s *SQLiteStore) ListPlants(ctx context.Context) ([]Plant, error) {
	plants := make([]Plant, 0)
	if err := s.db.SelectContext(ctx, &plants, sqliteListPlantsSQL); err != nil {
		return nil, err
	}
	return plants, nil
}

// GetPlant returns a single plant, or nil when it does not exist.
func (s *SQLiteStore) GetPlant(ctx context.Context, id int64) (*Plant, error) {
	var p Plant
	err := s.db.GetContext(ctx, &p, sqliteGetPlantSQL, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// CreatePlant inserts a plant and returns the stored record.
func (s *SQLiteStore) CreatePlant(ctx context.Context, np NewPlant) (Plant, error) {
	createdAt := time.Now().UTC()
	res, err := s.db.ExecContext(ctx, sqliteInsertPlantSQL, np.Name, np.Description, createdAt)
	if err != nil {
		return Plant{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return Plant{}, err
	}
	return Plant{
		ID:          id,
		Name:        np.Name,
		Description: np.Description,
		CreatedAt:   createdAt,
	}, nil
}

// ListImages returns a plant's images in chronological order.
func (s *SQLiteStore) ListImages(ctx context.Context, plantID int64) ([]PlantImage, error) {
	images := make([]PlantImage, 0)
	if err := s.db.SelectContext(ctx, &images, sqliteListImagesSQL, plantID); err != nil {
		return nil, err
	}
	return images, nil
}

// CreateImage records an uploaded image.
func (s *SQLiteStore) CreateImage(ctx context.Context, ni NewImage) (PlantImage, error) {
	ts := ni.Timestamp.UTC()
	createdAt := time.Now().UTC()
	res, err := s.db.ExecContext(ctx, sqliteInsertImageSQL, ni.PlantID, ni.ImageKey, ts, ni.GreenDensity, createdAt)
	if err != nil {
		return PlantImage{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return PlantImage{}, err
	}
	return PlantImage{
		ID:           id,
		PlantID:      ni.PlantID,
		ImageKey:     ni.ImageKey,
		Timestamp:    ts,
		GreenDensity: ni.GreenDensity,
		CreatedAt:    createdAt,
	}, nil
}
