package ledger

import (
	"context"
	"sync"

	"github.com/prohmpiriya/event-registration/internal/domain"
)

// MemoryLedger is an in-memory Ledger with the same admission semantics as
// PostgresLedger. It backs tests that exercise concurrent reservations
// without a database.
type MemoryLedger struct {
	mu    sync.Mutex
	pools map[string]*memoryPool
}

type memoryPool struct {
	capacity  *int // nil = unlimited
	soldCount int
}

var _ Ledger = (*MemoryLedger)(nil)

// NewMemoryLedger creates a new MemoryLedger
func NewMemoryLedger() *MemoryLedger {
	return &MemoryLedger{pools: make(map[string]*memoryPool)}
}

// AddPool registers a ticket type with the given capacity (nil = unlimited)
func (l *MemoryLedger) AddPool(ticketTypeID string, capacity *int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.pools[ticketTypeID] = &memoryPool{capacity: capacity}
}

// SoldCount returns the current sold count for a ticket type
func (l *MemoryLedger) SoldCount(ticketTypeID string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	if pool, ok := l.pools[ticketTypeID]; ok {
		return pool.soldCount
	}
	return 0
}

// TryReserve atomically claims one unit of capacity
func (l *MemoryLedger) TryReserve(ctx context.Context, ticketTypeID string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	pool, ok := l.pools[ticketTypeID]
	if !ok {
		return domain.ErrTicketTypeNotFound
	}
	if pool.capacity != nil && pool.soldCount >= *pool.capacity {
		return domain.ErrCapacityExceeded
	}
	pool.soldCount++
	return nil
}

// Release returns one previously reserved unit, clamped at zero
func (l *MemoryLedger) Release(ctx context.Context, ticketTypeID string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	pool, ok := l.pools[ticketTypeID]
	if !ok {
		return domain.ErrTicketTypeNotFound
	}
	if pool.soldCount > 0 {
		pool.soldCount--
	}
	return nil
}
