package ledger

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prohmpiriya/event-registration/internal/domain"
	"github.com/prohmpiriya/event-registration/pkg/logger"
	"go.uber.org/zap"
)

// Ledger is the single authority over ticket type sold counts. Every
// confirmed registration holds exactly one unit obtained from TryReserve;
// no other component may write sold_count.
type Ledger interface {
	// TryReserve atomically claims one unit of capacity. Returns
	// domain.ErrCapacityExceeded when the pool is full and
	// domain.ErrTicketTypeNotFound when the ticket type does not exist.
	TryReserve(ctx context.Context, ticketTypeID string) error
	// Release returns one previously reserved unit. Releasing an empty pool
	// is clamped at zero and reported as an internal inconsistency, never
	// as a caller error.
	Release(ctx context.Context, ticketTypeID string) error
}

// PostgresLedger implements Ledger with single conditional updates. The
// WHERE clause is the admission decision, so concurrent reservations
// serialize on the row without explicit locking.
type PostgresLedger struct {
	pool *pgxpool.Pool
}

var _ Ledger = (*PostgresLedger)(nil)

// NewPostgresLedger creates a new PostgresLedger
func NewPostgresLedger(pool *pgxpool.Pool) *PostgresLedger {
	return &PostgresLedger{pool: pool}
}

// TryReserve atomically claims one unit of capacity
func (l *PostgresLedger) TryReserve(ctx context.Context, ticketTypeID string) error {
	query := `
		UPDATE ticket_types
		SET sold_count = sold_count + 1
		WHERE id = $1 AND (capacity IS NULL OR sold_count < capacity)
	`
	result, err := l.pool.Exec(ctx, query, ticketTypeID)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}
	if result.RowsAffected() > 0 {
		return nil
	}

	// Zero rows means either a full pool or a missing row, probe to tell
	exists, err := l.exists(ctx, ticketTypeID)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}
	if !exists {
		return domain.ErrTicketTypeNotFound
	}
	return domain.ErrCapacityExceeded
}

// Release returns one previously reserved unit
func (l *PostgresLedger) Release(ctx context.Context, ticketTypeID string) error {
	query := `
		UPDATE ticket_types
		SET sold_count = sold_count - 1
		WHERE id = $1 AND sold_count > 0
	`
	result, err := l.pool.Exec(ctx, query, ticketTypeID)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}
	if result.RowsAffected() > 0 {
		return nil
	}

	exists, err := l.exists(ctx, ticketTypeID)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}
	if !exists {
		return domain.ErrTicketTypeNotFound
	}

	// Releasing below zero means a reservation leaked somewhere else.
	// Clamp and report, the caller's cancel flow must still succeed.
	logger.WarnCtx(ctx, "release on empty capacity pool clamped at zero",
		zap.String("ticket_type_id", ticketTypeID),
	)
	return nil
}

func (l *PostgresLedger) exists(ctx context.Context, ticketTypeID string) (bool, error) {
	var exists bool
	err := l.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM ticket_types WHERE id = $1)`, ticketTypeID,
	).Scan(&exists)
	return exists, err
}
