package station

import (
	"context"

	"github.com/WailSalutem-Health-Care/patient-intake/internal/db"
)

const loadFailed = "stations could not be loaded"

type Repository struct {
	conns db.ConnProvider
}

func NewRepository(conns db.ConnProvider) *Repository {
	return &Repository{conns: conns}
}

// FindAll loads every station ordered by name
func (r *Repository) FindAll(ctx context.Context) ([]Station, error) {
	conn, err := r.conns.Conn(ctx)
	if err != nil {
		return nil, db.Wrap(db.OpLoad, loadFailed, err)
	}
	defer conn.Close()

	query := `
		SELECT room_number, name, max_beds
		FROM station
		ORDER BY name
	`

	rows, err := conn.QueryContext(ctx, query)
	if err != nil {
		return nil, db.Wrap(db.OpLoad, loadFailed, err)
	}
	defer rows.Close()

	stations := []Station{}
	for rows.Next() {
		var s Station
		if err := rows.Scan(&s.Room, &s.Name, &s.MaxBeds); err != nil {
			return nil, db.Wrap(db.OpLoad, loadFailed, err)
		}
		stations = append(stations, s)
	}

	if err := rows.Err(); err != nil {
		return nil, db.Wrap(db.OpLoad, loadFailed, err)
	}

	return stations, nil
}
