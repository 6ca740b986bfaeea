package metrics

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel/attribute"

	"github.com/Dandev001/maxed-homes-sub003/pkg/telemetry"
)

var (
	// Lifecycle counters
	BookingsCreated   *telemetry.Counter
	BookingsApproved  *telemetry.Counter
	BookingsConfirmed *telemetry.Counter
	BookingsCancelled *telemetry.Counter
	BookingsExpired   *telemetry.Counter
	BookingsCompleted *telemetry.Counter

	// Conflict and error counters
	AvailabilityConflicts *telemetry.Counter
	TransitionRejections  *telemetry.Counter
	ErrorsTotal           *telemetry.Counter

	// Histograms
	SweepDuration   *telemetry.Histogram
	RequestDuration *telemetry.Histogram

	// Gauges
	ActiveBookings *telemetry.UpDownCounter

	initOnce sync.Once
	initErr  error
)

// Init initializes all booking metrics
func Init() error {
	initOnce.Do(func() {
		initErr = initMetrics()
	})
	return initErr
}

func initMetrics() error {
	var err error

	BookingsCreated, err = telemetry.NewCounter(telemetry.MetricOpts{
		Name:        "booking_created_total",
		Description: "Total number of booking requests created",
		Unit:        "1",
	})
	if err != nil {
		return err
	}

	BookingsApproved, err = telemetry.NewCounter(telemetry.MetricOpts{
		Name:        "booking_approved_total",
		Description: "Total number of bookings approved by hosts",
		Unit:        "1",
	})
	if err != nil {
		return err
	}

	BookingsConfirmed, err = telemetry.NewCounter(telemetry.MetricOpts{
		Name:        "booking_confirmed_total",
		Description: "Total number of bookings confirmed after payment",
		Unit:        "1",
	})
	if err != nil {
		return err
	}

	BookingsCancelled, err = telemetry.NewCounter(telemetry.MetricOpts{
		Name:        "booking_cancelled_total",
		Description: "Total number of cancelled bookings",
		Unit:        "1",
	})
	if err != nil {
		return err
	}

	BookingsExpired, err = telemetry.NewCounter(telemetry.MetricOpts{
		Name:        "booking_expired_total",
		Description: "Total number of bookings expired by the sweeper",
		Unit:        "1",
	})
	if err != nil {
		return err
	}

	BookingsCompleted, err = telemetry.NewCounter(telemetry.MetricOpts{
		Name:        "booking_completed_total",
		Description: "Total number of completed stays",
		Unit:        "1",
	})
	if err != nil {
		return err
	}

	AvailabilityConflicts, err = telemetry.NewCounter(telemetry.MetricOpts{
		Name:        "booking_availability_conflicts_total",
		Description: "Total number of booking requests rejected for date conflicts",
		Unit:        "1",
	})
	if err != nil {
		return err
	}

	TransitionRejections, err = telemetry.NewCounter(telemetry.MetricOpts{
		Name:        "booking_transition_rejections_total",
		Description: "Total number of rejected status transitions",
		Unit:        "1",
	})
	if err != nil {
		return err
	}

	ErrorsTotal, err = telemetry.NewCounter(telemetry.MetricOpts{
		Name:        "booking_errors_total",
		Description: "Total number of errors by type",
		Unit:        "1",
	})
	if err != nil {
		return err
	}

	SweepDuration, err = telemetry.NewHistogramWithBuckets(telemetry.MetricOpts{
		Name:        "booking_sweep_duration_seconds",
		Description: "Duration of one expiration sweep pass",
		Unit:        "s",
	}, []float64{0.1, 0.5, 1, 5, 10, 30, 60})
	if err != nil {
		return err
	}

	RequestDuration, err = telemetry.NewHistogramWithBuckets(telemetry.MetricOpts{
		Name:        "booking_request_duration_seconds",
		Description: "HTTP request duration in seconds",
		Unit:        "s",
	}, []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10})
	if err != nil {
		return err
	}

	ActiveBookings, err = telemetry.NewUpDownCounter(telemetry.MetricOpts{
		Name:        "booking_active_total",
		Description: "Current number of bookings occupying a calendar range",
		Unit:        "1",
	})
	if err != nil {
		return err
	}

	return nil
}

// RecordCreated records a booking creation
func RecordCreated(ctx context.Context, propertyID string) {
	if BookingsCreated != nil {
		BookingsCreated.Inc(ctx, attribute.String("property_id", propertyID))
	}
	if ActiveBookings != nil {
		ActiveBookings.Inc(ctx)
	}
}

// RecordApproved records a host approval
func RecordApproved(ctx context.Context, propertyID string) {
	if BookingsApproved != nil {
		BookingsApproved.Inc(ctx, attribute.String("property_id", propertyID))
	}
}

// RecordConfirmed records a payment confirmation
func RecordConfirmed(ctx context.Context, propertyID string) {
	if BookingsConfirmed != nil {
		BookingsConfirmed.Inc(ctx, attribute.String("property_id", propertyID))
	}
}

// RecordCancelled records a cancellation
func RecordCancelled(ctx context.Context, propertyID string) {
	if BookingsCancelled != nil {
		BookingsCancelled.Inc(ctx, attribute.String("property_id", propertyID))
	}
	if ActiveBookings != nil {
		ActiveBookings.Dec(ctx)
	}
}

// RecordExpired records bookings expired by a sweep pass
func RecordExpired(ctx context.Context, count int64) {
	if BookingsExpired != nil {
		BookingsExpired.Add(ctx, count)
	}
	if ActiveBookings != nil {
		ActiveBookings.Add(ctx, -count)
	}
}

// RecordCompleted records a completed stay
func RecordCompleted(ctx context.Context, propertyID string) {
	if BookingsCompleted != nil {
		BookingsCompleted.Inc(ctx, attribute.String("property_id", propertyID))
	}
	if ActiveBookings != nil {
		ActiveBookings.Dec(ctx)
	}
}

// RecordConflict records an availability conflict
func RecordConflict(ctx context.Context, propertyID string) {
	if AvailabilityConflicts != nil {
		AvailabilityConflicts.Inc(ctx, attribute.String("property_id", propertyID))
	}
}

// RecordTransitionRejection records a rejected status transition
func RecordTransitionRejection(ctx context.Context, from, to string) {
	if TransitionRejections != nil {
		TransitionRejections.Inc(ctx,
			attribute.String("from", from),
			attribute.String("to", to),
		)
	}
}

// RecordError records an error by type and operation
func RecordError(ctx context.Context, errorType, operation string) {
	if ErrorsTotal != nil {
		ErrorsTotal.Inc(ctx,
			attribute.String("error_type", errorType),
			attribute.String("operation", operation),
		)
	}
}

// RecordSweepDuration records the duration of one sweep pass
func RecordSweepDuration(ctx context.Context, seconds float64) {
	if SweepDuration != nil {
		SweepDuration.Record(ctx, seconds)
	}
}

// RecordRequestDuration records HTTP request duration
func RecordRequestDuration(ctx context.Context, operation string, durationSeconds float64) {
	if RequestDuration != nil {
		RequestDuration.Record(ctx, durationSeconds,
			attribute.String("operation", operation),
		)
	}
}
