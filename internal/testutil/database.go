package testutil

import (
	"context"
	"database/sql"
	"os"
	"testing"

	_ "github.com/lib/pq"
)

const defaultTestDSN = "host=localhost port=5432 user=intake password=intake dbname=intake_test sslmode=disable"

// Schema creates the two intake tables when they do not exist yet
const Schema = `
CREATE TABLE IF NOT EXISTS station (
	room_number INT PRIMARY KEY,
	name        TEXT NOT NULL,
	max_beds    INT NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS patient (
	id         SERIAL PRIMARY KEY,
	first_name TEXT NOT NULL DEFAULT '',
	last_name  TEXT NOT NULL DEFAULT '',
	birth_date DATE NULL,
	svnr       TEXT NOT NULL DEFAULT '',
	phone      TEXT NOT NULL DEFAULT '',
	address    TEXT NOT NULL DEFAULT '',
	reason     TEXT NOT NULL DEFAULT '',
	station_id INT NULL REFERENCES station(room_number)
);
`

// TestStation is a row seeded by SeedStations
type TestStation struct {
	Room    int
	Name    string
	MaxBeds int
}

// DefaultStations are the wards used by the integration tests
var DefaultStations = []TestStation{
	{Room: 1, Name: "Ward A", MaxBeds: 10},
	{Room: 2, Name: "Ward B", MaxBeds: 5},
	{Room: 99, Name: "test", MaxBeds: 1},
}

// SetupTestDB connects to the test database, creates the schema and empties
// both tables. INTAKE_TEST_DSN overrides the local default.
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	connStr := os.Getenv("INTAKE_TEST_DSN")
	if connStr == "" {
		connStr = defaultTestDSN
	}

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		t.Skipf("Test database not reachable: %v", err)
	}

	if _, err := db.Exec(Schema); err != nil {
		db.Close()
		t.Fatalf("Failed to create schema: %v", err)
	}

	CleanupTestDB(t, db)
	t.Cleanup(func() {
		CleanupTestDB(t, db)
		db.Close()
	})

	return db
}

// CleanupTestDB removes all patients and stations
func CleanupTestDB(t *testing.T, db *sql.DB) {
	t.Helper()

	if _, err := db.Exec("TRUNCATE TABLE patient, station RESTART IDENTITY CASCADE"); err != nil {
		t.Logf("Warning: Failed to clean up intake tables: %v", err)
	}
}

// SeedStations inserts the given stations
func SeedStations(t *testing.T, db *sql.DB, stations ...TestStation) {
	t.Helper()

	for _, s := range stations {
		_, err := db.ExecContext(context.Background(),
			`INSERT INTO station (room_number, name, max_beds) VALUES ($1, $2, $3)`,
			s.Room, s.Name, s.MaxBeds,
		)
		if err != nil {
			t.Fatalf("Failed to seed station %d: %v", s.Room, err)
		}
	}
}

// CountPatients returns the number of rows in the patient table
func CountPatients(t *testing.T, db *sql.DB) int {
	t.Helper()

	var n int
	if err := db.QueryRow("SELECT COUNT(*) FROM patient").Scan(&n); err != nil {
		t.Fatalf("Failed to count patients: %v", err)
	}
	return n
}
