package messaging

import (
	"time"

	"github.com/google/uuid"
)

// Routing keys of intake events
const (
	EventPatientAdmitted = "patient.admitted"
	EventPatientUpdated  = "patient.updated"
	EventPatientDeleted  = "patient.deleted"
)

const serviceName = "patient-intake"

// BaseEvent contains common fields for all events
type BaseEvent struct {
	EventType   string    `json:"event_type"`
	EventID     string    `json:"event_id"`
	Timestamp   time.Time `json:"timestamp"`
	ServiceName string    `json:"service_name"`
}

// ID is used as the AMQP message id
func (e BaseEvent) ID() string {
	return e.EventID
}

// PatientEvent is published after a patient record was written.
// It carries no national id or contact data.
type PatientEvent struct {
	BaseEvent
	Data PatientEventData `json:"data"`
}

type PatientEventData struct {
	PatientID int64  `json:"patient_id"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
	StationID *int   `json:"station_id,omitempty"`
	Reason    string `json:"reason,omitempty"`
}

// NewBaseEvent creates a base event with common fields
func NewBaseEvent(eventType string) BaseEvent {
	return BaseEvent{
		EventType:   eventType,
		EventID:     uuid.NewString(),
		Timestamp:   time.Now().UTC(),
		ServiceName: serviceName,
	}
}

func NewPatientEvent(eventType string, data PatientEventData) PatientEvent {
	return PatientEvent{
		BaseEvent: NewBaseEvent(eventType),
		Data:      data,
	}
}
