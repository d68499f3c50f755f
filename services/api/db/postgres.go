package db

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore wraps database access helpers over a pgx pool.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgres creates a store backed by a pgx pool.
func NewPostgres(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, err
	}
	return &PostgresStore{pool: pool}, nil
}

// Close releases the pool resources.
func (s *PostgresStore) Close() error {
	if s.pool != nil {
		s.pool.Close()
	}
	return nil
}

// Ping verifies the pool can reach the server.
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

const postgresSchemaSQL = `
    CREATE TABLE IF NOT EXISTS plants (
        id          BIGSERIAL PRIMARY KEY,
        name        VARCHAR(100) NOT NULL,
        description TEXT NOT NULL DEFAULT '',
        created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
    );
    CREATE TABLE IF NOT EXISTS plant_images (
        id            BIGSERIAL PRIMARY KEY,
        plant_id      BIGINT NOT NULL REFERENCES plants(id) ON DELETE CASCADE,
        image_key     VARCHAR(200) NOT NULL,
        ts            TIMESTAMPTZ NOT NULL,
        green_density DOUBLE PRECISION NOT NULL,
        created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
    );
    CREATE INDEX IF NOT EXISTS idx_plant_images_plant_ts ON plant_images (plant_id, ts);
`

// Migrate creates the tables when they do not exist yet.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresSchemaSQL)
	return err
}

const listPlantsSQL = `
    SELECT id, name, description, created_at
    FROM plants
    ORDER BY id
`

// ListPlants returns all plants.
func (s *PostgresStore) ListPlants(ctx context.Context) ([]Plant, error) {
	rows, err := s.pool.Query(ctx, listPlantsSQL)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	plants := make([]Plant, 0)
	for rows.Next() {
		var p Plant
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &p.CreatedAt); err != nil {
			return nil, err
		}
		plants = append(plants, p)
	}
	return plants, rows.Err()
}

const getPlantSQL = `
    SELECT id, name, description, created_at
    FROM plants
    WHERE id = $1
`

// GetPlant returns a single plant, or nil when it does not exist.
func (s *PostgresStore) GetPlant(ctx context.Context, id int64) (*Plant, error) {
	var p Plant
	err := s.pool.QueryRow(ctx, getPlantSQL, id).Scan(&p.ID, &p.Name, &p.Description, &p.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

const insertPlantSQL = `
    INSERT INTO plants (name, description, created_at)
    VALUES ($1, $2, $3)
    RETURNING id, name, description, created_at
`

// CreatePlant inserts a plant and returns the stored record.
func (s *PostgresStore) CreatePlant(ctx context.Context, np NewPlant) (Plant, error) {
	var p Plant
	err := s.pool.QueryRow(ctx, insertPlantSQL, np.Name, np.Description, time.Now().UTC()).
		Scan(&p.ID, &p.Name, &p.Description, &p.CreatedAt)
	return p, err
}

const listImagesSQL = `
    SELECT id, plant_id, image_key, ts, green_density, created_at
    FROM plant_images
    WHERE plant_id = $1
    ORDER BY ts, id
`

// ListImages returns a plant's images in chronological order.
func (s *PostgresStore) ListImages(ctx context.Context, plantID int64) ([]PlantImage, error) {
	rows, err := s.pool.Query(ctx, listImagesSQL, plantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	images := make([]PlantImage, 0)
	for rows.Next() {
		var img PlantImage
		if err := rows.Scan(
			&img.ID,
			&img.PlantID,
			&img.ImageKey,
			&img.Timestamp,
			&img.GreenDensity,
			&img.CreatedAt,
		); err != nil {
			return nil, err
		}
		images = append(images, img)
	}
	return images, rows.Err()
}

const insertImageSQL = `
    INSERT INTO plant_images (plant_id, image_key, ts, green_density, created_at)
    VALUES ($1, $2, $3, $4, $5)
    RETURNING id, plant_id, image_key, ts, green_density, created_at
`

// CreateImage records an uploaded image.
func (s *PostgresStore) CreateImage(ctx context.Context, ni NewImage) (PlantImage, error) {
	var img PlantImage
	err := s.pool.QueryRow(ctx, insertImageSQL,
		ni.PlantID,
		ni.ImageKey,
		ni.Timestamp.UTC(),
		ni.GreenDensity,
		time.Now().UTC(),
	).Scan(
		&img.ID,
		&img.PlantID,
		&img.ImageKey,
		&img.Timestamp,
		&img.GreenDensity,
		&img.CreatedAt,
	)
	return img, err
}
