package testutil

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/WailSalutem-Health-Care/patient-intake/internal/messaging"
)

// PublishedEvent is one event captured by MockPublisher
type PublishedEvent struct {
	RoutingKey string
	EventData  interface{}
	Timestamp  time.Time
	RawJSON    []byte
}

// MockPublisher records patient events in memory instead of sending them to
// RabbitMQ. Set Err to make every Publish fail.
type MockPublisher struct {
	mu     sync.RWMutex
	events []PublishedEvent

	Err error
}

var _ messaging.PublisherInterface = (*MockPublisher)(nil)

func NewMockPublisher() *MockPublisher {
	return &MockPublisher{
		events: make([]PublishedEvent, 0),
	}
}

func (m *MockPublisher) Publish(ctx context.Context, routingKey string, eventData interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.Err != nil {
		return m.Err
	}

	jsonData, err := json.Marshal(eventData)
	if err != nil {
		return err
	}

	m.events = append(m.events, PublishedEvent{
		RoutingKey: routingKey,
		EventData:  eventData,
		Timestamp:  time.Now(),
		RawJSON:    jsonData,
	})
	return nil
}

func (m *MockPublisher) Close() error {
	return nil
}

// GetAllEvents returns a copy of everything published so far
func (m *MockPublisher) GetAllEvents() []PublishedEvent {
	m.mu.RLock()
	defer m.mu.RUnlock()

	eventsCopy := make([]PublishedEvent, len(m.events))
	copy(eventsCopy, m.events)
	return eventsCopy
}

func (m *MockPublisher) GetEventCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return len(m.events)
}

func (m *MockPublisher) GetEventCountByKey(routingKey string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	count := 0
	for _, event := range m.events {
		if event.RoutingKey == routingKey {
			count++
		}
	}
	return count
}

// GetLastPatientEvent returns the data of the most recent event with the
// given routing key, or nil when there is none
func (m *MockPublisher) GetLastPatientEvent(routingKey string) *messaging.PatientEventData {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for i := len(m.events) - 1; i >= 0; i-- {
		if m.events[i].RoutingKey != routingKey {
			continue
		}
		if event, ok := m.events[i].EventData.(messaging.PatientEvent); ok {
			return &event.Data
		}
	}
	return nil
}

func (m *MockPublisher) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.events = make([]PublishedEvent, 0)
}

func (m *MockPublisher) AssertEventPublished(t *testing.T, routingKey string) {
	t.Helper()

	if m.GetEventCountByKey(routingKey) == 0 {
		t.Errorf("Expected event with routing key '%s' to be published, but found none", routingKey)
	}
}

func (m *MockPublisher) AssertNoEvents(t *testing.T) {
	t.Helper()

	if count := m.GetEventCount(); count > 0 {
		t.Errorf("Expected no events, but found %d", count)
	}
}
