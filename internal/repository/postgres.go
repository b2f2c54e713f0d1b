package repository

import (
	"context"
	"errors"
	"fmt"

	"pressing-api/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNoLandmark is returned when no landmark lies within the search radius.
var ErrNoLandmark = errors.New("repository: no landmark found near coordinates")

// Repository implements landmark lookups against PostgreSQL/PostGIS.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a new PostgreSQL repository.
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// SearchLandmarksByText performs a full-text search over landmark names,
// streets and districts, used by the dashboard's address autocomplete.
func (r *Repository) SearchLandmarksByText(ctx context.Context, query string) ([]models.Landmark, error) {
	sql := `
		SELECT
			id,
			name,
			street,
			district,
			ST_Y(geom::geometry) as latitude,
			ST_X(geom::geometry) as longitude
		FROM landmarks
		WHERE search_tsvector @@ plainto_tsquery('french', $1)
		ORDER BY ts_rank(search_tsvector, plainto_tsquery('french', $1)) DESC
		LIMIT 10
	`

	rows, err := r.db.Query(ctx, sql, query)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to execute search query: %w", err)
	}
	defer rows.Close()

	var landmarks []models.Landmark
	for rows.Next() {
		var l models.Landmark
		err := rows.Scan(
			&l.ID,
			&l.Name,
			&l.Street,
			&l.District,
			&l.Latitude,
			&l.Longitude,
		)
		if err != nil {
			return nil, fmt.Errorf("repository: failed to scan landmark: %w", err)
		}
		landmarks = append(landmarks, l)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repository: error iterating rows: %w", err)
	}

	return landmarks, nil
}

// FindNearestLandmark performs a spatial query to find the landmark closest
// to the given coordinates, within 2 km.
func (r *Repository) FindNearestLandmark(ctx context.Context, lat, lng float64) (*models.Landmark, error) {
	sql := `
		SELECT
			id,
			name,
			street,
			district,
			ST_Y(geom::geometry) as latitude,
			ST_X(geom::geometry) as longitude
		FROM landmarks
		WHERE ST_DWithin(geom, ST_SetSRID(ST_MakePoint($2, $1), 4326), 2000)
		ORDER BY geom <-> ST_SetSRID(ST_MakePoint($2, $1), 4326)
		LIMIT 1
	`

	var l models.Landmark
	err := r.db.QueryRow(ctx, sql, lat, lng).Scan(
		&l.ID,
		&l.Name,
		&l.Street,
		&l.District,
		&l.Latitude,
		&l.Longitude,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNoLandmark
		}
		return nil, fmt.Errorf("repository: failed to execute spatial query: %w", err)
	}

	return &l, nil
}
