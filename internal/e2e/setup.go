//go:build integration

package e2e

import (
	"context"
	"database/sql"
	"sync"
	"testing"

	"go.uber.org/zap"

	"github.com/WailSalutem-Health-Care/patient-intake/internal/db"
	"github.com/WailSalutem-Health-Care/patient-intake/internal/patient"
	"github.com/WailSalutem-Health-Care/patient-intake/internal/station"
	"github.com/WailSalutem-Health-Care/patient-intake/internal/tasks"
	"github.com/WailSalutem-Health-Care/patient-intake/internal/testutil"
)

// TestStack is the complete intake core against a real PostgreSQL:
// repositories, station cache, service and coordinator
type TestStack struct {
	DB            *sql.DB
	Stations      *station.Cache
	Service       *patient.Service
	Coordinator   *tasks.Coordinator
	UI            *RecordingPresenter
	MockPublisher *testutil.MockPublisher
}

// SetupE2ETest creates the stack on an emptied database seeded with the
// default wards
func SetupE2ETest(t *testing.T) *TestStack {
	t.Helper()

	sqlDB := testutil.SetupTestDB(t)
	testutil.SeedStations(t, sqlDB, testutil.DefaultStations...)

	log := zap.NewNop()
	provider := db.NewProvider(sqlDB)
	publisher := testutil.NewMockPublisher()
	cache := station.NewCache(station.NewRepository(provider), log)
	service := patient.NewService(patient.NewRepository(provider, log), cache, publisher, nil, log)
	ui := &RecordingPresenter{}

	ts := &TestStack{
		DB:            sqlDB,
		Stations:      cache,
		Service:       service,
		Coordinator:   tasks.New(service, ui, tasks.WithLogger(log)),
		UI:            ui,
		MockPublisher: publisher,
	}
	t.Cleanup(ts.Coordinator.Close)
	return ts
}

// Save runs a save through the coordinator and waits for the reload
func (ts *TestStack) Save(t *testing.T, p patient.Patient) (*patient.Patient, error) {
	t.Helper()

	var saved *patient.Patient
	_, err := ts.Coordinator.Mutate("save", func(ctx context.Context) error {
		var err error
		saved, err = ts.Service.Save(ctx, &p)
		return err
	}).Await(context.Background())
	ts.Coordinator.Wait()
	return saved, err
}

// Load runs a load through the coordinator and returns what was shown
func (ts *TestStack) Load(t *testing.T, query string) []patient.Patient {
	t.Helper()

	if err := ts.Coordinator.Load(query); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	ts.Coordinator.Wait()
	return ts.UI.LastList()
}

// RecordingPresenter keeps everything the coordinator showed
type RecordingPresenter struct {
	mu       sync.Mutex
	busy     []bool
	lists    [][]patient.Patient
	failures []tasks.Failure
}

func (p *RecordingPresenter) SetBusy(busy bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.busy = append(p.busy, busy)
}

func (p *RecordingPresenter) ShowPatients(query string, patients []patient.Patient) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.lists = append(p.lists, patients)
}

func (p *RecordingPresenter) ShowSuccess(op string) {}

func (p *RecordingPresenter) ShowFailure(op string, f tasks.Failure) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.failures = append(p.failures, f)
}

func (p *RecordingPresenter) LastList() []patient.Patient {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.lists) == 0 {
		return nil
	}
	return p.lists[len(p.lists)-1]
}

func (p *RecordingPresenter) LastFailure() *tasks.Failure {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.failures) == 0 {
		return nil
	}
	f := p.failures[len(p.failures)-1]
	return &f
}

func (p *RecordingPresenter) Busy() []bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]bool(nil), p.busy...)
}
