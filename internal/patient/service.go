package patient

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/WailSalutem-Health-Care/patient-intake/internal/messaging"
	"github.com/WailSalutem-Health-Care/patient-intake/internal/telemetry"
)

type Service struct {
	repo     RepositoryInterface
	stations StationLookup
	events   messaging.PublisherInterface
	metrics  *telemetry.Metrics
	log      *zap.Logger
	tracer   trace.Tracer
}

// NewService wires the patient service. stations, events and metrics may be
// nil; a nil stations lookup skips the station existence check.
func NewService(repo RepositoryInterface, stations StationLookup, events messaging.PublisherInterface, metrics *telemetry.Metrics, log *zap.Logger) *Service {
	return &Service{
		repo:     repo,
		stations: stations,
		events:   events,
		metrics:  metrics,
		log:      log,
		tracer:   otel.Tracer("github.com/WailSalutem-Health-Care/patient-intake/internal/patient"),
	}
}

func (s *Service) List(ctx context.Context) ([]Patient, error) {
	patients, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list patients: %w", err)
	}
	return patients, nil
}

func (s *Service) Search(ctx context.Context, query string) ([]Patient, error) {
	ctx, span := s.tracer.Start(ctx, "patient.Search")
	defer span.End()

	patients, err := s.repo.Search(ctx, query)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to search patients: %w", err)
	}
	span.SetAttributes(attribute.Int("results", len(patients)))
	return patients, nil
}

func (s *Service) Get(ctx context.Context, id int64) (*Patient, error) {
	if id <= 0 {
		return nil, &ValidationError{Violations: []string{MsgInvalidPatientID}}
	}
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get patient: %w", err)
	}
	return p, nil
}

// ValidateOnly runs every rule without touching patient storage.
// The error is only set when the station list could not be loaded.
func (s *Service) ValidateOnly(ctx context.Context, p *Patient) (Result, error) {
	lookup, err := s.stationLookup(ctx)
	if err != nil {
		return Result{}, err
	}
	return Validate(p, lookup), nil
}

// Save validates p and inserts it when it has no id yet, otherwise replaces
// the stored record. p is not modified; the stored, normalized record is
// returned. Saving a record that was deleted in the meantime returns
// ErrPatientNotFound.
func (s *Service) Save(ctx context.Context, p *Patient) (*Patient, error) {
	ctx, span := s.tracer.Start(ctx, "patient.Save")
	defer span.End()

	result, err := s.ValidateOnly(ctx, p)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	if !result.OK() {
		s.metrics.RecordValidationFailure(ctx, len(result.Violations))
		s.log.Info("patient rejected by validation", zap.Int("violations", len(result.Violations)))
		return nil, result.Err()
	}

	saved := result.Patient
	operation, eventType := "update", messaging.EventPatientUpdated

	if saved.IsNew() {
		operation, eventType = "create", messaging.EventPatientAdmitted
		if err := s.repo.Insert(ctx, &saved); err != nil {
			span.SetStatus(codes.Error, err.Error())
			return nil, fmt.Errorf("failed to create patient: %w", err)
		}
	} else {
		if err := s.repo.Update(ctx, saved); err != nil {
			span.SetStatus(codes.Error, err.Error())
			return nil, fmt.Errorf("failed to update patient: %w", err)
		}
	}

	span.SetAttributes(attribute.Int64("patient_id", saved.ID), attribute.String("operation", operation))
	s.metrics.RecordPatientOperation(ctx, operation)
	s.log.Info("patient saved", zap.Int64("patient_id", saved.ID), zap.String("operation", operation))

	s.publish(ctx, eventType, messaging.PatientEventData{
		PatientID: saved.ID,
		FirstName: saved.FirstName,
		LastName:  saved.LastName,
		StationID: saved.StationID,
		Reason:    saved.Reason,
	})

	return &saved, nil
}

// Delete removes a patient. Deleting an id that does not exist succeeds.
func (s *Service) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return &ValidationError{Violations: []string{MsgInvalidPatientID}}
	}

	ctx, span := s.tracer.Start(ctx, "patient.Delete", trace.WithAttributes(attribute.Int64("patient_id", id)))
	defer span.End()

	if err := s.repo.DeleteByID(ctx, id); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to delete patient: %w", err)
	}

	s.metrics.RecordPatientOperation(ctx, "delete")
	s.log.Info("patient deleted", zap.Int64("patient_id", id))
	s.publish(ctx, messaging.EventPatientDeleted, messaging.PatientEventData{PatientID: id})
	return nil
}

func (s *Service) stationLookup(ctx context.Context) (map[int]string, error) {
	if s.stations == nil {
		return nil, nil
	}
	lookup, err := s.stations.Lookup(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load stations: %w", err)
	}
	return lookup, nil
}

// the record is already stored, so a broker failure is logged, not returned
func (s *Service) publish(ctx context.Context, eventType string, data messaging.PatientEventData) {
	if s.events == nil {
		return
	}
	if err := s.events.Publish(ctx, eventType, messaging.NewPatientEvent(eventType, data)); err != nil {
		s.log.Warn("failed to publish patient event",
			zap.String("event_type", eventType),
			zap.Int64("patient_id", data.PatientID),
			zap.Error(err),
		)
	}
}
