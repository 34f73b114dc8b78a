package station

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/WailSalutem-Health-Care/patient-intake/internal/db"
)

func setupMockRepo(t *testing.T) (sqlmock.Sqlmock, *Repository) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	return mock, NewRepository(db.NewProvider(sqlDB))
}

func TestFindAll_Success(t *testing.T) {
	mock, repo := setupMockRepo(t)

	rows := sqlmock.NewRows([]string{"room_number", "name", "max_beds"}).
		AddRow(1, "Ward A", 10).
		AddRow(2, "Ward B", 5)

	mock.ExpectQuery(`SELECT room_number, name, max_beds FROM station ORDER BY name`).
		WillReturnRows(rows)

	stations, err := repo.FindAll(context.Background())

	require.NoError(t, err)
	require.Len(t, stations, 2)
	assert.Equal(t, Station{Room: 1, Name: "Ward A", MaxBeds: 10}, stations[0])
	assert.Equal(t, Station{Room: 2, Name: "Ward B", MaxBeds: 5}, stations[1])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindAll_Empty(t *testing.T) {
	mock, repo := setupMockRepo(t)

	mock.ExpectQuery(`FROM station`).
		WillReturnRows(sqlmock.NewRows([]string{"room_number", "name", "max_beds"}))

	stations, err := repo.FindAll(context.Background())

	require.NoError(t, err)
	assert.NotNil(t, stations)
	assert.Len(t, stations, 0)
}

func TestFindAll_QueryError(t *testing.T) {
	mock, repo := setupMockRepo(t)

	mock.ExpectQuery(`FROM station`).
		WillReturnError(errors.New("connection refused"))

	_, err := repo.FindAll(context.Background())

	require.Error(t, err)
	assert.True(t, errors.Is(err, db.ErrStorage))

	var opErr *db.OpError
	require.True(t, errors.As(err, &opErr))
	assert.Equal(t, db.OpLoad, opErr.Op)
	assert.Contains(t, err.Error(), "stations could not be loaded")
}

func TestFindAll_ScanError(t *testing.T) {
	mock, repo := setupMockRepo(t)

	rows := sqlmock.NewRows([]string{"room_number", "name", "max_beds"}).
		AddRow("not-a-number", "Ward A", 10)
	mock.ExpectQuery(`FROM station`).WillReturnRows(rows)

	_, err := repo.FindAll(context.Background())

	assert.True(t, errors.Is(err, db.ErrStorage))
}
