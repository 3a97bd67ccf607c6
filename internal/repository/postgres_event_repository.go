package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prohmpiriya/event-registration/internal/domain"
)

// eventColumns defines columns for the events table
const eventColumns = `id, title, description, venue_id, venue_name, venue_location,
	organizer_id, start_time, end_time, timezone, capacity, status, created_at, updated_at`

// PostgresEventRepository implements EventRepository using PostgreSQL
type PostgresEventRepository struct {
	pool *pgxpool.Pool
}

var _ EventRepository = (*PostgresEventRepository)(nil)

// NewPostgresEventRepository creates a new PostgresEventRepository
func NewPostgresEventRepository(pool *pgxpool.Pool) *PostgresEventRepository {
	return &PostgresEventRepository{pool: pool}
}

// scanEvent scans a row into an Event struct
func (r *PostgresEventRepository) scanEvent(row pgx.Row) (*domain.Event, error) {
	event := &domain.Event{}
	err := row.Scan(
		&event.ID,
		&event.Title,
		&event.Description,
		&event.VenueID,
		&event.VenueName,
		&event.VenueLocation,
		&event.OrganizerID,
		&event.StartTime,
		&event.EndTime,
		&event.Timezone,
		&event.Capacity,
		&event.Status,
		&event.CreatedAt,
		&event.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return event, nil
}

// Create creates a new event
func (r *PostgresEventRepository) Create(ctx context.Context, event *domain.Event) error {
	query := `
		INSERT INTO events (id, title, description, venue_id, venue_name, venue_location,
			organizer_id, start_time, end_time, timezone, capacity, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`
	_, err := r.pool.Exec(ctx, query,
		event.ID,
		event.Title,
		event.Description,
		event.VenueID,
		event.VenueName,
		event.VenueLocation,
		event.OrganizerID,
		event.StartTime,
		event.EndTime,
		event.Timezone,
		event.Capacity,
		event.Status,
		event.CreatedAt,
		event.UpdatedAt,
	)
	return err
}

// GetByID retrieves an event by ID
func (r *PostgresEventRepository) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE id = $1`
	return r.scanEvent(r.pool.QueryRow(ctx, query, id))
}

// List lists events with filters and pagination
func (r *PostgresEventRepository) List(ctx context.Context, filter *EventFilter, limit, offset int) ([]*domain.Event, int, error) {
	whereClause := "1=1"
	args := []interface{}{}
	argIndex := 1

	if filter != nil {
		if filter.Status != "" {
			whereClause += fmt.Sprintf(" AND status = $%d", argIndex)
			args = append(args, filter.Status)
			argIndex++
		}
		if filter.OrganizerID != "" {
			whereClause += fmt.Sprintf(" AND organizer_id = $%d", argIndex)
			args = append(args, filter.OrganizerID)
			argIndex++
		}
		if filter.Search != "" {
			whereClause += fmt.Sprintf(" AND title ILIKE $%d", argIndex)
			args = append(args, "%"+filter.Search+"%")
			argIndex++
		}
	}

	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM events WHERE %s`, whereClause)
	var total int
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(`SELECT %s FROM events
		WHERE %s
		ORDER BY start_time ASC
		LIMIT $%d OFFSET $%d`, eventColumns, whereClause, argIndex, argIndex+1)
	args = append(args, limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var events []*domain.Event
	for rows.Next() {
		event := &domain.Event{}
		err := rows.Scan(
			&event.ID,
			&event.Title,
			&event.Description,
			&event.VenueID,
			&event.VenueName,
			&event.VenueLocation,
			&event.OrganizerID,
			&event.StartTime,
			&event.EndTime,
			&event.Timezone,
			&event.Capacity,
			&event.Status,
			&event.CreatedAt,
			&event.UpdatedAt,
		)
		if err != nil {
			return nil, 0, err
		}
		events = append(events, event)
	}
	return events, total, rows.Err()
}

// Update updates an event
func (r *PostgresEventRepository) Update(ctx context.Context, event *domain.Event) error {
	query := `
		UPDATE events
		SET title = $2, description = $3, venue_id = $4, venue_name = $5, venue_location = $6,
			start_time = $7, end_time = $8, timezone = $9, capacity = $10, updated_at = $11
		WHERE id = $1
	`
	event.UpdatedAt = time.Now()
	result, err := r.pool.Exec(ctx, query,
		event.ID,
		event.Title,
		event.Description,
		event.VenueID,
		event.VenueName,
		event.VenueLocation,
		event.StartTime,
		event.EndTime,
		event.Timezone,
		event.Capacity,
		event.UpdatedAt,
	)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return domain.ErrEventNotFound
	}
	return nil
}

// TransitionStatus atomically moves an event from one status to another
func (r *PostgresEventRepository) TransitionStatus(ctx context.Context, id, from, to string) (bool, error) {
	query := `
		UPDATE events
		SET status = $3, updated_at = $4
		WHERE id = $1 AND status = $2
	`
	result, err := r.pool.Exec(ctx, query, id, from, to, time.Now())
	if err != nil {
		return false, err
	}
	return result.RowsAffected() > 0, nil
}

// Delete deletes an event by ID. Ticket types cascade via FK; cancelled
// registrations are purged first since they are history, not state. A live
// registration still referencing the event makes the whole transaction fail
// with ErrEventHasRegistrations, which closes the race between the service's
// emptiness check and the delete.
func (r *PostgresEventRepository) Delete(ctx context.Context, id string) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `DELETE FROM registrations WHERE event_id = $1 AND status = 'cancelled'`, id)
	if err != nil {
		return err
	}

	result, err := tx.Exec(ctx, `DELETE FROM events WHERE id = $1`, id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.ErrEventHasRegistrations
		}
		return err
	}
	if result.RowsAffected() == 0 {
		return domain.ErrEventNotFound
	}

	return tx.Commit(ctx)
}
