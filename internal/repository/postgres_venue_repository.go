package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prohmpiriya/event-registration/internal/domain"
)

// PostgresVenueRepository implements VenueRepository using PostgreSQL
type PostgresVenueRepository struct {
	pool *pgxpool.Pool
}

var _ VenueRepository = (*PostgresVenueRepository)(nil)

// NewPostgresVenueRepository creates a new PostgresVenueRepository
func NewPostgresVenueRepository(pool *pgxpool.Pool) *PostgresVenueRepository {
	return &PostgresVenueRepository{pool: pool}
}

// Create creates a new venue
func (r *PostgresVenueRepository) Create(ctx context.Context, venue *domain.Venue) error {
	query := `
		INSERT INTO venues (id, name, location, description, capacity, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := r.pool.Exec(ctx, query,
		venue.ID,
		venue.Name,
		venue.Location,
		venue.Description,
		venue.Capacity,
		venue.CreatedAt,
		venue.UpdatedAt,
	)
	return err
}

// GetByID retrieves a venue by ID
func (r *PostgresVenueRepository) GetByID(ctx context.Context, id string) (*domain.Venue, error) {
	query := `
		SELECT id, name, location, description, capacity, created_at, updated_at
		FROM venues
		WHERE id = $1
	`
	venue := &domain.Venue{}
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&venue.ID,
		&venue.Name,
		&venue.Location,
		&venue.Description,
		&venue.Capacity,
		&venue.CreatedAt,
		&venue.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return venue, nil
}

// List lists venues with pagination
func (r *PostgresVenueRepository) List(ctx context.Context, limit, offset int) ([]*domain.Venue, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM venues`).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `
		SELECT id, name, location, description, capacity, created_at, updated_at
		FROM venues
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`
	rows, err := r.pool.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var venues []*domain.Venue
	for rows.Next() {
		venue := &domain.Venue{}
		err := rows.Scan(
			&venue.ID,
			&venue.Name,
			&venue.Location,
			&venue.Description,
			&venue.Capacity,
			&venue.CreatedAt,
			&venue.UpdatedAt,
		)
		if err != nil {
			return nil, 0, err
		}
		venues = append(venues, venue)
	}
	return venues, total, rows.Err()
}

// Update updates a venue
func (r *PostgresVenueRepository) Update(ctx context.Context, venue *domain.Venue) error {
	query := `
		UPDATE venues
		SET name = $2, location = $3, description = $4, capacity = $5, updated_at = $6
		WHERE id = $1
	`
	venue.UpdatedAt = time.Now()
	result, err := r.pool.Exec(ctx, query,
		venue.ID,
		venue.Name,
		venue.Location,
		venue.Description,
		venue.Capacity,
		venue.UpdatedAt,
	)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return domain.ErrVenueNotFound
	}
	return nil
}

// Delete deletes a venue by ID. An event created between the service's
// reference check and this delete trips the FK and maps to ErrVenueInUse.
func (r *PostgresVenueRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM venues WHERE id = $1`
	result, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.ErrVenueInUse
		}
		return err
	}
	if result.RowsAffected() == 0 {
		return domain.ErrVenueNotFound
	}
	return nil
}

// EventCount returns the number of events referencing the venue
func (r *PostgresVenueRepository) EventCount(ctx context.Context, venueID string) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM events WHERE venue_id = $1`, venueID).Scan(&count)
	return count, err
}
