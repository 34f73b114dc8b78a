package telemetry

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const instrumentationName = "github.com/WailSalutem-Health-Care/patient-intake"

// Metrics holds the custom instruments of the intake core.
// A nil *Metrics records nothing.
type Metrics struct {
	PatientTotal            metric.Int64Counter
	ValidationFailuresTotal metric.Int64Counter
	TasksTotal              metric.Int64Counter
	TaskDurationMs          metric.Float64Histogram
}

// InitMetrics creates the instruments on the global meter provider
func InitMetrics() (*Metrics, error) {
	meter := otel.Meter(instrumentationName)

	patientTotal, err := meter.Int64Counter(
		"patient_total",
		metric.WithDescription("Total number of patient operations"),
		metric.WithUnit("{operation}"),
	)
	if err != nil {
		return nil, err
	}

	validationFailures, err := meter.Int64Counter(
		"patient_validation_failures_total",
		metric.WithDescription("Total number of rejected patient records"),
		metric.WithUnit("{record}"),
	)
	if err != nil {
		return nil, err
	}

	tasksTotal, err := meter.Int64Counter(
		"background_tasks_total",
		metric.WithDescription("Total number of background tasks by outcome"),
		metric.WithUnit("{task}"),
	)
	if err != nil {
		return nil, err
	}

	taskDuration, err := meter.Float64Histogram(
		"background_task_duration_milliseconds",
		metric.WithDescription("Background task duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	return &Metrics{
		PatientTotal:            patientTotal,
		ValidationFailuresTotal: validationFailures,
		TasksTotal:              tasksTotal,
		TaskDurationMs:          taskDuration,
	}, nil
}

// RecordPatientOperation counts a completed patient write or read
func (m *Metrics) RecordPatientOperation(ctx context.Context, operation string) {
	if m == nil {
		return
	}
	m.PatientTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("operation", operation),
	))
}

// RecordValidationFailure counts a rejected record
func (m *Metrics) RecordValidationFailure(ctx context.Context, violations int) {
	if m == nil {
		return
	}
	m.ValidationFailuresTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.Int("violations", violations),
	))
}

// RecordTask records one finished background task
func (m *Metrics) RecordTask(ctx context.Context, operation, outcome string, durationMs float64) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String("operation", operation),
		attribute.String("outcome", outcome),
	)
	m.TasksTotal.Add(ctx, 1, attrs)
	m.TaskDurationMs.Record(ctx, durationMs, attrs)
}
