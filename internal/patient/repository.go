package patient

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/WailSalutem-Health-Care/patient-intake/internal/db"
)

const (
	msgLoadFailed   = "patients could not be loaded"
	msgSearchFailed = "search could not be performed"
	msgCreateFailed = "patient could not be created"
	msgUpdateFailed = "patient could not be saved"
	msgDeleteFailed = "patient could not be deleted"
)

const patientColumns = `id, first_name, last_name, birth_date, svnr, phone, address, reason, station_id`

type Repository struct {
	conns db.ConnProvider
	log   *zap.Logger
}

func NewRepository(conns db.ConnProvider, log *zap.Logger) *Repository {
	return &Repository{conns: conns, log: log}
}

func (r *Repository) FindAll(ctx context.Context) ([]Patient, error) {
	query := `
		SELECT ` + patientColumns + `
		FROM patient
		ORDER BY last_name, first_name, id
	`
	return r.query(ctx, db.OpLoad, msgLoadFailed, query)
}

// Search matches the query as a case-insensitive substring of any text field.
// A blank query lists everything.
func (r *Repository) Search(ctx context.Context, query string) ([]Patient, error) {
	q := strings.TrimSpace(query)
	if q == "" {
		return r.FindAll(ctx)
	}

	// backslash is the default LIKE escape character in PostgreSQL
	like := "%" + escapeLike(strings.ToLower(q)) + "%"
	sqlQuery := `
		SELECT ` + patientColumns + `
		FROM patient
		WHERE LOWER(first_name) LIKE $1
		   OR LOWER(last_name) LIKE $1
		   OR LOWER(svnr) LIKE $1
		   OR LOWER(phone) LIKE $1
		   OR LOWER(address) LIKE $1
		   OR LOWER(reason) LIKE $1
		ORDER BY last_name, first_name, id
	`
	return r.query(ctx, db.OpSearch, msgSearchFailed, sqlQuery, like)
}

func (r *Repository) FindByID(ctx context.Context, id int64) (*Patient, error) {
	conn, err := r.conns.Conn(ctx)
	if err != nil {
		return nil, db.Wrap(db.OpLoad, msgLoadFailed, err)
	}
	defer conn.Close()

	query := `
		SELECT ` + patientColumns + `
		FROM patient
		WHERE id = $1
	`

	p, err := scanPatient(conn.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrPatientNotFound
	}
	if err != nil {
		return nil, db.Wrap(db.OpLoad, msgLoadFailed, err)
	}
	return p, nil
}

// Insert stores a new record and writes the generated id back into p
func (r *Repository) Insert(ctx context.Context, p *Patient) error {
	conn, err := r.conns.Conn(ctx)
	if err != nil {
		return db.Wrap(db.OpCreate, msgCreateFailed, err)
	}
	defer conn.Close()

	query := `
		INSERT INTO patient
		(first_name, last_name, birth_date, svnr, phone, address, reason, station_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`

	var id int64
	err = conn.QueryRowContext(ctx, query,
		p.FirstName,
		p.LastName,
		dateParam(p.BirthDate),
		p.SVNR,
		p.Phone,
		p.Address,
		p.Reason,
		stationParam(p.StationID),
	).Scan(&id)
	if err != nil {
		return db.Wrap(db.OpCreate, msgCreateFailed, err)
	}

	p.ID = id
	return nil
}

// Update replaces every mutable field of the row with p.ID.
// ErrPatientNotFound is returned when the row is gone.
func (r *Repository) Update(ctx context.Context, p Patient) error {
	conn, err := r.conns.Conn(ctx)
	if err != nil {
		return db.Wrap(db.OpUpdate, msgUpdateFailed, err)
	}
	defer conn.Close()

	query := `
		UPDATE patient
		SET first_name = $1, last_name = $2, birth_date = $3, svnr = $4,
		    phone = $5, address = $6, reason = $7, station_id = $8
		WHERE id = $9
	`

	result, err := conn.ExecContext(ctx, query,
		p.FirstName,
		p.LastName,
		dateParam(p.BirthDate),
		p.SVNR,
		p.Phone,
		p.Address,
		p.Reason,
		stationParam(p.StationID),
		p.ID,
	)
	if err != nil {
		return db.Wrap(db.OpUpdate, msgUpdateFailed, err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return db.Wrap(db.OpUpdate, msgUpdateFailed, err)
	}
	if rows == 0 {
		r.log.Warn("update matched no patient row", zap.Int64("patient_id", p.ID))
		return ErrPatientNotFound
	}
	return nil
}

// DeleteByID removes the row; a missing row is not an error
func (r *Repository) DeleteByID(ctx context.Context, id int64) error {
	conn, err := r.conns.Conn(ctx)
	if err != nil {
		return db.Wrap(db.OpDelete, msgDeleteFailed, err)
	}
	defer conn.Close()

	if _, err := conn.ExecContext(ctx, `DELETE FROM patient WHERE id = $1`, id); err != nil {
		return db.Wrap(db.OpDelete, msgDeleteFailed, err)
	}
	return nil
}

func (r *Repository) query(ctx context.Context, op db.Op, msg, query string, args ...interface{}) ([]Patient, error) {
	conn, err := r.conns.Conn(ctx)
	if err != nil {
		return nil, db.Wrap(op, msg, err)
	}
	defer conn.Close()

	rows, err := conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, db.Wrap(op, msg, err)
	}
	defer rows.Close()

	patients := []Patient{}
	for rows.Next() {
		p, err := scanPatient(rows)
		if err != nil {
			return nil, db.Wrap(op, msg, err)
		}
		patients = append(patients, *p)
	}

	if err := rows.Err(); err != nil {
		return nil, db.Wrap(op, msg, err)
	}

	return patients, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanPatient(row rowScanner) (*Patient, error) {
	var p Patient
	var birthDate sql.NullTime
	var svnr, phone, address, reason sql.NullString
	var stationID sql.NullInt64

	err := row.Scan(
		&p.ID,
		&p.FirstName,
		&p.LastName,
		&birthDate,
		&svnr,
		&phone,
		&address,
		&reason,
		&stationID,
	)
	if err != nil {
		return nil, err
	}

	if birthDate.Valid {
		p.BirthDate = dateOnly(birthDate.Time)
	}
	if svnr.Valid {
		p.SVNR = svnr.String
	}
	if phone.Valid {
		p.Phone = phone.String
	}
	if address.Valid {
		p.Address = address.String
	}
	if reason.Valid {
		p.Reason = reason.String
	}
	if stationID.Valid {
		st := int(stationID.Int64)
		p.StationID = &st
	}

	return &p, nil
}

func dateParam(t *time.Time) interface{} {
	if t == nil {
		return nil
	}
	return t.Format("2006-01-02")
}

func stationParam(id *int) interface{} {
	if id == nil {
		return nil
	}
	return int64(*id)
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
