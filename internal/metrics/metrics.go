package metrics

import (
	"context"
	"sync"

	"github.com/prohmpiriya/event-registration/pkg/telemetry"
	"go.opentelemetry.io/otel/attribute"
)

var (
	// Registration counters
	RegistrationsConfirmed *telemetry.Counter
	RegistrationsWaitlist  *telemetry.Counter
	RegistrationsCancelled *telemetry.Counter
	RegistrationsRejected  *telemetry.Counter
	WaitlistPromotions     *telemetry.Counter

	// Reconciliation counters
	CapacityRepairs *telemetry.Counter

	// Histograms
	RegistrationDuration *telemetry.Histogram
	RequestDuration      *telemetry.Histogram

	// Gauges
	ActiveRegistrations *telemetry.UpDownCounter

	initOnce sync.Once
	initErr  error
)

// Init initializes all registration metrics
func Init() error {
	initOnce.Do(func() {
		initErr = initMetrics()
	})
	return initErr
}

func initMetrics() error {
	var err error

	RegistrationsConfirmed, err = telemetry.NewCounter(telemetry.MetricOpts{
		Name:        "registration_confirmations_total",
		Description: "Total number of confirmed registrations",
		Unit:        "1",
	})
	if err != nil {
		return err
	}

	RegistrationsWaitlist, err = telemetry.NewCounter(telemetry.MetricOpts{
		Name:        "registration_waitlist_total",
		Description: "Total number of waitlisted registrations",
		Unit:        "1",
	})
	if err != nil {
		return err
	}

	RegistrationsCancelled, err = telemetry.NewCounter(telemetry.MetricOpts{
		Name:        "registration_cancellations_total",
		Description: "Total number of cancelled registrations",
		Unit:        "1",
	})
	if err != nil {
		return err
	}

	RegistrationsRejected, err = telemetry.NewCounter(telemetry.MetricOpts{
		Name:        "registration_rejections_total",
		Description: "Total number of registrations rejected at capacity",
		Unit:        "1",
	})
	if err != nil {
		return err
	}

	WaitlistPromotions, err = telemetry.NewCounter(telemetry.MetricOpts{
		Name:        "registration_waitlist_promotions_total",
		Description: "Total number of waitlist promotions",
		Unit:        "1",
	})
	if err != nil {
		return err
	}

	CapacityRepairs, err = telemetry.NewCounter(telemetry.MetricOpts{
		Name:        "capacity_reconcile_repairs_total",
		Description: "Total number of sold count repairs by the reconciler",
		Unit:        "1",
	})
	if err != nil {
		return err
	}

	RegistrationDuration, err = telemetry.NewHistogramWithBuckets(telemetry.MetricOpts{
		Name:        "registration_duration_seconds",
		Description: "Registration workflow duration in seconds",
		Unit:        "s",
	}, []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5}) // 5ms to 5s
	if err != nil {
		return err
	}

	// Request duration histogram for latency tracking (p50, p90, p99)
	RequestDuration, err = telemetry.NewHistogramWithBuckets(telemetry.MetricOpts{
		Name:        "http_request_duration_seconds",
		Description: "HTTP request duration in seconds",
		Unit:        "s",
	}, []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10}) // 5ms to 10s
	if err != nil {
		return err
	}

	ActiveRegistrations, err = telemetry.NewUpDownCounter(telemetry.MetricOpts{
		Name:        "registration_active",
		Description: "Current number of active (confirmed or waitlisted) registrations",
		Unit:        "1",
	})
	if err != nil {
		return err
	}

	return nil
}

// RecordConfirmation records a confirmed registration
func RecordConfirmation(ctx context.Context, eventID, ticketTypeID string, durationSeconds float64) {
	if RegistrationsConfirmed != nil {
		RegistrationsConfirmed.Inc(ctx,
			attribute.String("event_id", eventID),
			attribute.String("ticket_type_id", ticketTypeID),
		)
	}
	if RegistrationDuration != nil {
		RegistrationDuration.Record(ctx, durationSeconds,
			attribute.String("event_id", eventID),
		)
	}
	if ActiveRegistrations != nil {
		ActiveRegistrations.Inc(ctx)
	}
}

// RecordWaitlist records a waitlisted registration
func RecordWaitlist(ctx context.Context, eventID, ticketTypeID string) {
	if RegistrationsWaitlist != nil {
		RegistrationsWaitlist.Inc(ctx,
			attribute.String("event_id", eventID),
			attribute.String("ticket_type_id", ticketTypeID),
		)
	}
	if ActiveRegistrations != nil {
		ActiveRegistrations.Inc(ctx)
	}
}

// RecordCancellation records a cancelled registration
func RecordCancellation(ctx context.Context, eventID string) {
	if RegistrationsCancelled != nil {
		RegistrationsCancelled.Inc(ctx,
			attribute.String("event_id", eventID),
		)
	}
	if ActiveRegistrations != nil {
		ActiveRegistrations.Dec(ctx)
	}
}

// RecordRejection records a registration rejected at capacity
func RecordRejection(ctx context.Context, ticketTypeID string) {
	if RegistrationsRejected != nil {
		RegistrationsRejected.Inc(ctx,
			attribute.String("ticket_type_id", ticketTypeID),
		)
	}
}

// RecordPromotion records a waitlist promotion
func RecordPromotion(ctx context.Context, ticketTypeID string) {
	if WaitlistPromotions != nil {
		WaitlistPromotions.Inc(ctx,
			attribute.String("ticket_type_id", ticketTypeID),
		)
	}
}

// RecordRepair records a sold count repair by the reconciler
func RecordRepair(ctx context.Context, ticketTypeID string) {
	if CapacityRepairs != nil {
		CapacityRepairs.Inc(ctx,
			attribute.String("ticket_type_id", ticketTypeID),
		)
	}
}
