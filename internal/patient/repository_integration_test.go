//go:build integration

package patient

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/WailSalutem-Health-Care/patient-intake/internal/db"
	"github.com/WailSalutem-Health-Care/patient-intake/internal/station"
	"github.com/WailSalutem-Health-Care/patient-intake/internal/testutil"
)

func setupIntegrationRepo(t *testing.T) (*Repository, *db.Provider) {
	t.Helper()

	sqlDB := testutil.SetupTestDB(t)
	testutil.SeedStations(t, sqlDB, testutil.DefaultStations...)

	provider := db.NewProvider(sqlDB)
	return NewRepository(provider, zap.NewNop()), provider
}

// TestRepositoryInsert_Integration checks the round trip of every field
func TestRepositoryInsert_Integration(t *testing.T) {
	repo, _ := setupIntegrationRepo(t)
	ctx := context.Background()

	p := Normalize(validPatient())
	if err := repo.Insert(ctx, &p); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}
	if p.ID <= 0 {
		t.Fatalf("Expected a positive id, got %d", p.ID)
	}

	all, err := repo.FindAll(ctx)
	if err != nil {
		t.Fatalf("FindAll failed: %v", err)
	}
	if len(all) != 1 {
		t.Fatalf("Expected 1 patient, got %d", len(all))
	}

	got := all[0]
	if got.ID != p.ID || got.FirstName != "Anna" || got.LastName != "Bauer" {
		t.Errorf("Unexpected patient: %+v", got)
	}
	if got.BirthDate == nil || !got.BirthDate.Equal(*p.BirthDate) {
		t.Errorf("Expected birth date %v, got %v", p.BirthDate, got.BirthDate)
	}
	if got.StationID == nil || *got.StationID != 1 {
		t.Errorf("Expected station 1, got %v", got.StationID)
	}
	if got.SVNR != p.SVNR || got.Phone != p.Phone || got.Address != p.Address || got.Reason != p.Reason {
		t.Errorf("Expected %+v, got %+v", p, got)
	}
}

func TestRepositorySearch_Integration(t *testing.T) {
	repo, _ := setupIntegrationRepo(t)
	ctx := context.Background()

	for _, name := range [][2]string{{"Hans", "Müller"}, {"Anna", "Bauer"}, {"Eva", "Maier"}} {
		p := storedPatient(name[0], name[1])
		if err := repo.Insert(ctx, &p); err != nil {
			t.Fatalf("Insert failed: %v", err)
		}
	}

	for _, q := range []string{"müller", "MÜLLER", "mül"} {
		found, err := repo.Search(ctx, q)
		if err != nil {
			t.Fatalf("Search(%q) failed: %v", q, err)
		}
		if len(found) != 1 || found[0].LastName != "Müller" {
			t.Errorf("Search(%q): expected Müller, got %+v", q, found)
		}
	}

	all, err := repo.Search(ctx, "")
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("Expected 3 patients, got %d", len(all))
	}
	if all[0].LastName != "Bauer" || all[1].LastName != "Maier" || all[2].LastName != "Müller" {
		t.Errorf("Unexpected order: %s, %s, %s", all[0].LastName, all[1].LastName, all[2].LastName)
	}

	none, err := repo.Search(ctx, "100%")
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(none) != 0 {
		t.Errorf("Expected no match for a literal percent sign, got %d", len(none))
	}
}

func TestRepositoryUpdateAndDelete_Integration(t *testing.T) {
	repo, _ := setupIntegrationRepo(t)
	ctx := context.Background()

	p := Normalize(validPatient())
	if err := repo.Insert(ctx, &p); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	p.Reason = "Surgery"
	p.StationID = intPtr(2)
	p.Phone = ""
	if err := repo.Update(ctx, p); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	got, err := repo.FindByID(ctx, p.ID)
	if err != nil {
		t.Fatalf("FindByID failed: %v", err)
	}
	if got.Reason != "Surgery" || got.StationID == nil || *got.StationID != 2 || got.Phone != "" {
		t.Errorf("Update not applied: %+v", got)
	}

	if err := repo.DeleteByID(ctx, p.ID); err != nil {
		t.Fatalf("DeleteByID failed: %v", err)
	}
	if err := repo.DeleteByID(ctx, p.ID); err != nil {
		t.Errorf("Second DeleteByID should be a no-op, got: %v", err)
	}
	if _, err := repo.FindByID(ctx, p.ID); err != ErrPatientNotFound {
		t.Errorf("Expected ErrPatientNotFound, got %v", err)
	}
	if err := repo.Update(ctx, p); !errors.Is(err, ErrPatientNotFound) {
		t.Errorf("Expected update of deleted row to return ErrPatientNotFound, got %v", err)
	}
}

// TestStationLookup_Integration exercises the station cache against the
// seeded wards, including the hidden "test" station
func TestStationLookup_Integration(t *testing.T) {
	_, provider := setupIntegrationRepo(t)
	ctx := context.Background()

	cache := station.NewCache(station.NewRepository(provider), zap.NewNop())

	lookup, err := cache.Lookup(ctx)
	if err != nil {
		t.Fatalf("Lookup failed: %v", err)
	}
	if len(lookup) != 3 || lookup[1] != "Ward A" {
		t.Errorf("Unexpected lookup: %v", lookup)
	}

	selectable, err := cache.Selectable(ctx)
	if err != nil {
		t.Fatalf("Selectable failed: %v", err)
	}
	if len(selectable) != 2 {
		t.Errorf("Expected 2 selectable stations, got %d", len(selectable))
	}
}

// TestServiceSave_Integration is the admission scenario against PostgreSQL
func TestServiceSave_Integration(t *testing.T) {
	repo, provider := setupIntegrationRepo(t)
	ctx := context.Background()

	cache := station.NewCache(station.NewRepository(provider), zap.NewNop())
	service := NewService(repo, cache, testutil.NewMockPublisher(), nil, zap.NewNop())

	bad := validPatient()
	bad.SVNR = "1234100501"
	if _, err := service.Save(ctx, &bad); err == nil {
		t.Fatal("Expected a validation error")
	}
	if n := testutil.CountPatients(t, provider.DB()); n != 0 {
		t.Fatalf("Expected no rows after a rejected save, got %d", n)
	}

	p := validPatient()
	saved, err := service.Save(ctx, &p)
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	found, err := service.Search(ctx, "bauer")
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(found) != 1 || found[0].ID != saved.ID || found[0].FirstName != "Anna" {
		t.Errorf("Expected the saved patient, got %+v", found)
	}
}
