package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prohmpiriya/event-registration/internal/domain"
)

// registrationColumns defines columns for the registrations table
const registrationColumns = `id, user_id, event_id, ticket_type_id, status,
	idempotency_key, created_at, cancelled_at`

// PostgresRegistrationRepository implements RegistrationRepository using PostgreSQL
type PostgresRegistrationRepository struct {
	pool *pgxpool.Pool
}

var _ RegistrationRepository = (*PostgresRegistrationRepository)(nil)

// NewPostgresRegistrationRepository creates a new PostgresRegistrationRepository
func NewPostgresRegistrationRepository(pool *pgxpool.Pool) *PostgresRegistrationRepository {
	return &PostgresRegistrationRepository{pool: pool}
}

// scanRegistration scans a row into a Registration struct
func (r *PostgresRegistrationRepository) scanRegistration(row pgx.Row) (*domain.Registration, error) {
	reg := &domain.Registration{}
	err := row.Scan(
		&reg.ID,
		&reg.UserID,
		&reg.EventID,
		&reg.TicketTypeID,
		&reg.Status,
		&reg.IdempotencyKey,
		&reg.CreatedAt,
		&reg.CancelledAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return reg, nil
}

// Create persists a new registration. The registrations table carries a
// partial unique index on (user_id, ticket_type_id) where status in
// ('confirmed', 'waitlist'); a violation means the user already holds an
// active registration and is surfaced as ErrDuplicateRegistration. The
// (user_id, idempotency_key) index losing a race with a concurrent
// request using the same key is a different condition, surfaced as
// ErrIdempotencyConflict so the caller can replay the winner's outcome.
func (r *PostgresRegistrationRepository) Create(ctx context.Context, reg *domain.Registration) error {
	query := `
		INSERT INTO registrations (id, user_id, event_id, ticket_type_id, status,
			idempotency_key, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := r.pool.Exec(ctx, query,
		reg.ID,
		reg.UserID,
		reg.EventID,
		reg.TicketTypeID,
		reg.Status,
		reg.IdempotencyKey,
		reg.CreatedAt,
	)
	if err != nil {
		switch uniqueConstraint(err) {
		case "":
			return err
		case "uq_registrations_idempotency":
			return domain.ErrIdempotencyConflict
		default:
			return domain.ErrDuplicateRegistration
		}
	}
	return nil
}

// GetByID retrieves a registration by ID
func (r *PostgresRegistrationRepository) GetByID(ctx context.Context, id string) (*domain.Registration, error) {
	query := `SELECT ` + registrationColumns + ` FROM registrations WHERE id = $1`
	return r.scanRegistration(r.pool.QueryRow(ctx, query, id))
}

// GetByIdempotencyKey retrieves a user's registration by idempotency key
func (r *PostgresRegistrationRepository) GetByIdempotencyKey(ctx context.Context, userID, key string) (*domain.Registration, error) {
	query := `SELECT ` + registrationColumns + ` FROM registrations
		WHERE user_id = $1 AND idempotency_key = $2`
	return r.scanRegistration(r.pool.QueryRow(ctx, query, userID, key))
}

// CancelIfStatus cancels a registration only if owned by userID and currently
// in fromStatus, stamping cancelled_at with the caller's timestamp. The
// conditional update is the linearization point, callers decide on its
// outcome, never on a prior read.
func (r *PostgresRegistrationRepository) CancelIfStatus(ctx context.Context, id, userID, fromStatus string, cancelledAt time.Time) (bool, error) {
	query := `
		UPDATE registrations
		SET status = $4, cancelled_at = $5
		WHERE id = $1 AND user_id = $2 AND status = $3
	`
	result, err := r.pool.Exec(ctx, query, id, userID, fromStatus, domain.RegistrationStatusCancelled, cancelledAt)
	if err != nil {
		return false, err
	}
	return result.RowsAffected() > 0, nil
}

// PromoteOldestWaitlisted confirms the oldest waitlisted registration for the
// ticket type. SKIP LOCKED keeps concurrent promoters from picking the same
// row; ties on created_at break by id for a stable FIFO order.
func (r *PostgresRegistrationRepository) PromoteOldestWaitlisted(ctx context.Context, ticketTypeID string) (*domain.Registration, error) {
	query := `
		UPDATE registrations
		SET status = $2
		WHERE id = (
			SELECT id FROM registrations
			WHERE ticket_type_id = $1 AND status = $3
			ORDER BY created_at ASC, id ASC
			LIMIT 1
			FOR UPDATE SKIP LOCKED
		)
		RETURNING ` + registrationColumns
	return r.scanRegistration(r.pool.QueryRow(ctx, query,
		ticketTypeID,
		domain.RegistrationStatusConfirmed,
		domain.RegistrationStatusWaitlist,
	))
}

// ListByUser lists a user's registrations with event and ticket metadata
func (r *PostgresRegistrationRepository) ListByUser(ctx context.Context, userID string, limit, offset int) ([]*RegistrationDetail, int, error) {
	var total int
	countQuery := `SELECT COUNT(*) FROM registrations WHERE user_id = $1`
	if err := r.pool.QueryRow(ctx, countQuery, userID).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `
		SELECT r.id, r.user_id, r.event_id, r.ticket_type_id, r.status,
			r.idempotency_key, r.created_at, r.cancelled_at,
			e.title, e.start_time, t.name
		FROM registrations r
		JOIN events e ON e.id = r.event_id
		JOIN ticket_types t ON t.id = r.ticket_type_id
		WHERE r.user_id = $1
		ORDER BY r.created_at DESC
		LIMIT $2 OFFSET $3
	`
	rows, err := r.pool.Query(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var details []*RegistrationDetail
	for rows.Next() {
		reg := &domain.Registration{}
		detail := &RegistrationDetail{Registration: reg}
		err := rows.Scan(
			&reg.ID,
			&reg.UserID,
			&reg.EventID,
			&reg.TicketTypeID,
			&reg.Status,
			&reg.IdempotencyKey,
			&reg.CreatedAt,
			&reg.CancelledAt,
			&detail.EventTitle,
			&detail.EventStartTime,
			&detail.TicketTypeName,
		)
		if err != nil {
			return nil, 0, err
		}
		details = append(details, detail)
	}
	return details, total, rows.Err()
}

// ListByEvent lists an event's registrations with participant profiles
func (r *PostgresRegistrationRepository) ListByEvent(ctx context.Context, eventID string, limit, offset int) ([]*AttendeeRegistration, int, error) {
	var total int
	countQuery := `SELECT COUNT(*) FROM registrations WHERE event_id = $1`
	if err := r.pool.QueryRow(ctx, countQuery, eventID).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `
		SELECT r.id, r.user_id, r.event_id, r.ticket_type_id, r.status,
			r.idempotency_key, r.created_at, r.cancelled_at,
			COALESCE(p.email, ''), COALESCE(p.display_name, '')
		FROM registrations r
		LEFT JOIN profiles p ON p.id = r.user_id
		WHERE r.event_id = $1
		ORDER BY r.created_at ASC
		LIMIT $2 OFFSET $3
	`
	rows, err := r.pool.Query(ctx, query, eventID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var attendees []*AttendeeRegistration
	for rows.Next() {
		reg := &domain.Registration{}
		attendee := &AttendeeRegistration{Registration: reg}
		err := rows.Scan(
			&reg.ID,
			&reg.UserID,
			&reg.EventID,
			&reg.TicketTypeID,
			&reg.Status,
			&reg.IdempotencyKey,
			&reg.CreatedAt,
			&reg.CancelledAt,
			&attendee.Email,
			&attendee.DisplayName,
		)
		if err != nil {
			return nil, 0, err
		}
		attendees = append(attendees, attendee)
	}
	return attendees, total, rows.Err()
}

// CountActiveByEvent counts confirmed and waitlisted registrations for an event
func (r *PostgresRegistrationRepository) CountActiveByEvent(ctx context.Context, eventID string) (int, error) {
	query := `
		SELECT COUNT(*) FROM registrations
		WHERE event_id = $1 AND status IN ($2, $3)
	`
	var count int
	err := r.pool.QueryRow(ctx, query, eventID,
		domain.RegistrationStatusConfirmed,
		domain.RegistrationStatusWaitlist,
	).Scan(&count)
	return count, err
}
