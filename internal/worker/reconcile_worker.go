package worker

import (
	"context"
	"time"

	"github.com/prohmpiriya/event-registration/internal/ledger"
	"github.com/prohmpiriya/event-registration/internal/metrics"
	"github.com/prohmpiriya/event-registration/internal/repository"
	"github.com/prohmpiriya/event-registration/internal/service"
	"github.com/prohmpiriya/event-registration/pkg/logger"
	"go.uber.org/zap"
)

// ReconcileWorkerConfig holds configuration for the reconcile worker
type ReconcileWorkerConfig struct {
	Interval  time.Duration
	BatchSize int
}

// ReconcileWorker periodically repairs ticket type sold counts that drifted
// from the number of confirmed registrations. Drift appears when a
// compensating release is lost, for example across a crash between reserving
// a unit and persisting the registration. Repairs that free capacity also
// promote waitlisted registrations into the recovered headroom.
type ReconcileWorker struct {
	config           *ReconcileWorkerConfig
	ticketTypeRepo   repository.TicketTypeRepository
	registrationRepo repository.RegistrationRepository
	capacityLedger   ledger.Ledger
	eventPublisher   service.EventPublisher
}

// NewReconcileWorker creates a new reconcile worker
func NewReconcileWorker(
	cfg *ReconcileWorkerConfig,
	ticketTypeRepo repository.TicketTypeRepository,
	registrationRepo repository.RegistrationRepository,
	capacityLedger ledger.Ledger,
	eventPublisher service.EventPublisher,
) *ReconcileWorker {
	if cfg == nil {
		cfg = &ReconcileWorkerConfig{}
	}
	if cfg.Interval <= 0 {
		cfg.Interval = time.Minute
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 100
	}
	if eventPublisher == nil {
		eventPublisher = service.NewNoOpEventPublisher()
	}
	return &ReconcileWorker{
		config:           cfg,
		ticketTypeRepo:   ticketTypeRepo,
		registrationRepo: registrationRepo,
		capacityLedger:   capacityLedger,
		eventPublisher:   eventPublisher,
	}
}

// Start runs the reconcile loop until the context is cancelled
func (w *ReconcileWorker) Start(ctx context.Context) {
	logger.Info("reconcile worker started",
		zap.Duration("interval", w.config.Interval),
		zap.Int("batch_size", w.config.BatchSize))

	ticker := time.NewTicker(w.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("reconcile worker stopped")
			return
		case <-ticker.C:
			if repaired, err := w.ReconcileOnce(ctx); err != nil {
				logger.ErrorCtx(ctx, "reconcile pass failed", zap.Error(err))
			} else if repaired > 0 {
				logger.InfoCtx(ctx, "reconcile pass repaired drifted pools",
					zap.Int("repaired", repaired))
			}
		}
	}
}

// ReconcileOnce runs a single reconcile pass and returns the number of
// ticket types repaired
func (w *ReconcileWorker) ReconcileOnce(ctx context.Context) (int, error) {
	drifts, err := w.ticketTypeRepo.ListDrifted(ctx, w.config.BatchSize)
	if err != nil {
		return 0, err
	}

	repaired := 0
	for _, drift := range drifts {
		ok, err := w.ticketTypeRepo.RepairSoldCount(ctx, drift.TicketTypeID, drift.SoldCount, drift.ConfirmedCount)
		if err != nil {
			logger.ErrorCtx(ctx, "failed to repair sold count",
				zap.String("ticket_type_id", drift.TicketTypeID),
				zap.Error(err))
			continue
		}
		if !ok {
			// The pool moved since we listed it, next pass will re-check
			continue
		}

		repaired++
		metrics.RecordRepair(ctx, drift.TicketTypeID)
		logger.InfoCtx(ctx, "repaired drifted sold count",
			zap.String("ticket_type_id", drift.TicketTypeID),
			zap.Int("was", drift.SoldCount),
			zap.Int("now", drift.ConfirmedCount))

		// Repair that lowered sold_count opened headroom; fill it from
		// the waitlist in FIFO order
		if drift.ConfirmedCount < drift.SoldCount {
			w.fillFromWaitlist(ctx, drift.TicketTypeID)
		}
	}

	return repaired, nil
}

// fillFromWaitlist promotes waitlisted registrations while units remain
func (w *ReconcileWorker) fillFromWaitlist(ctx context.Context, ticketTypeID string) {
	for {
		if err := w.capacityLedger.TryReserve(ctx, ticketTypeID); err != nil {
			return
		}

		promoted, err := w.registrationRepo.PromoteOldestWaitlisted(ctx, ticketTypeID)
		if err != nil {
			logger.ErrorCtx(ctx, "waitlist promotion failed during reconcile",
				zap.String("ticket_type_id", ticketTypeID),
				zap.Error(err))
			w.release(ctx, ticketTypeID)
			return
		}
		if promoted == nil {
			w.release(ctx, ticketTypeID)
			return
		}

		metrics.RecordPromotion(ctx, ticketTypeID)
		if err := w.eventPublisher.PublishRegistrationPromoted(ctx, promoted); err != nil {
			logger.WarnCtx(ctx, "failed to publish promotion event",
				zap.String("registration_id", promoted.ID),
				zap.Error(err))
		}
	}
}

func (w *ReconcileWorker) release(ctx context.Context, ticketTypeID string) {
	if err := w.capacityLedger.Release(ctx, ticketTypeID); err != nil {
		logger.ErrorCtx(ctx, "failed to return unit during reconcile",
			zap.String("ticket_type_id", ticketTypeID),
			zap.Error(err))
	}
}
