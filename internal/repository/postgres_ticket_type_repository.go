package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prohmpiriya/event-registration/internal/domain"
)

// ticketTypeColumns defines columns for the ticket_types table
const ticketTypeColumns = `id, event_id, name, description, kind, price, capacity,
	sold_count, waitlist_enabled, created_at`

// PostgresTicketTypeRepository implements TicketTypeRepository using PostgreSQL
type PostgresTicketTypeRepository struct {
	pool *pgxpool.Pool
}

var _ TicketTypeRepository = (*PostgresTicketTypeRepository)(nil)

// NewPostgresTicketTypeRepository creates a new PostgresTicketTypeRepository
func NewPostgresTicketTypeRepository(pool *pgxpool.Pool) *PostgresTicketTypeRepository {
	return &PostgresTicketTypeRepository{pool: pool}
}

// scanTicketType scans a row into a TicketType struct
func (r *PostgresTicketTypeRepository) scanTicketType(row pgx.Row) (*domain.TicketType, error) {
	tt := &domain.TicketType{}
	err := row.Scan(
		&tt.ID,
		&tt.EventID,
		&tt.Name,
		&tt.Description,
		&tt.Kind,
		&tt.Price,
		&tt.Capacity,
		&tt.SoldCount,
		&tt.WaitlistEnabled,
		&tt.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return tt, nil
}

// Create creates a new ticket type
func (r *PostgresTicketTypeRepository) Create(ctx context.Context, ticketType *domain.TicketType) error {
	query := `
		INSERT INTO ticket_types (id, event_id, name, description, kind, price, capacity,
			sold_count, waitlist_enabled, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := r.pool.Exec(ctx, query,
		ticketType.ID,
		ticketType.EventID,
		ticketType.Name,
		ticketType.Description,
		ticketType.Kind,
		ticketType.Price,
		ticketType.Capacity,
		ticketType.SoldCount,
		ticketType.WaitlistEnabled,
		ticketType.CreatedAt,
	)
	return err
}

// GetByID retrieves a ticket type by ID
func (r *PostgresTicketTypeRepository) GetByID(ctx context.Context, id string) (*domain.TicketType, error) {
	query := `SELECT ` + ticketTypeColumns + ` FROM ticket_types WHERE id = $1`
	return r.scanTicketType(r.pool.QueryRow(ctx, query, id))
}

// GetByEventID retrieves ticket types by event ID
func (r *PostgresTicketTypeRepository) GetByEventID(ctx context.Context, eventID string) ([]*domain.TicketType, error) {
	query := `SELECT ` + ticketTypeColumns + ` FROM ticket_types
		WHERE event_id = $1
		ORDER BY created_at ASC`
	rows, err := r.pool.Query(ctx, query, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ticketTypes []*domain.TicketType
	for rows.Next() {
		tt := &domain.TicketType{}
		err := rows.Scan(
			&tt.ID,
			&tt.EventID,
			&tt.Name,
			&tt.Description,
			&tt.Kind,
			&tt.Price,
			&tt.Capacity,
			&tt.SoldCount,
			&tt.WaitlistEnabled,
			&tt.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		ticketTypes = append(ticketTypes, tt)
	}
	return ticketTypes, rows.Err()
}

// Update updates a ticket type. sold_count is deliberately not written here,
// only the capacity ledger touches it.
func (r *PostgresTicketTypeRepository) Update(ctx context.Context, ticketType *domain.TicketType) error {
	query := `
		UPDATE ticket_types
		SET name = $2, description = $3, kind = $4, price = $5, capacity = $6,
			waitlist_enabled = $7
		WHERE id = $1
	`
	result, err := r.pool.Exec(ctx, query,
		ticketType.ID,
		ticketType.Name,
		ticketType.Description,
		ticketType.Kind,
		ticketType.Price,
		ticketType.Capacity,
		ticketType.WaitlistEnabled,
	)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return domain.ErrTicketTypeNotFound
	}
	return nil
}

// Delete deletes a ticket type by ID. Cancelled registrations referencing
// it are purged first; a live one fails the delete via the FK and maps to
// ErrEventHasRegistrations, matching the service's own emptiness check.
func (r *PostgresTicketTypeRepository) Delete(ctx context.Context, id string) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `DELETE FROM registrations WHERE ticket_type_id = $1 AND status = 'cancelled'`, id)
	if err != nil {
		return err
	}

	result, err := tx.Exec(ctx, `DELETE FROM ticket_types WHERE id = $1`, id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.ErrEventHasRegistrations
		}
		return err
	}
	if result.RowsAffected() == 0 {
		return domain.ErrTicketTypeNotFound
	}

	return tx.Commit(ctx)
}

// ListDrifted returns ticket types whose sold_count disagrees with the count
// of confirmed registrations
func (r *PostgresTicketTypeRepository) ListDrifted(ctx context.Context, limit int) ([]*CapacityDrift, error) {
	query := `
		SELECT t.id, t.sold_count, COALESCE(c.confirmed, 0) AS confirmed
		FROM ticket_types t
		LEFT JOIN (
			SELECT ticket_type_id, COUNT(*) AS confirmed
			FROM registrations
			WHERE status = 'confirmed'
			GROUP BY ticket_type_id
		) c ON c.ticket_type_id = t.id
		WHERE t.sold_count <> COALESCE(c.confirmed, 0)
		ORDER BY t.id
		LIMIT $1
	`
	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var drifts []*CapacityDrift
	for rows.Next() {
		d := &CapacityDrift{}
		if err := rows.Scan(&d.TicketTypeID, &d.SoldCount, &d.ConfirmedCount); err != nil {
			return nil, err
		}
		drifts = append(drifts, d)
	}
	return drifts, rows.Err()
}

// RepairSoldCount sets sold_count to actual only if it still equals expected
func (r *PostgresTicketTypeRepository) RepairSoldCount(ctx context.Context, id string, expected, actual int) (bool, error) {
	query := `
		UPDATE ticket_types
		SET sold_count = $3
		WHERE id = $1 AND sold_count = $2
	`
	result, err := r.pool.Exec(ctx, query, id, expected, actual)
	if err != nil {
		return false, err
	}
	return result.RowsAffected() > 0, nil
}
