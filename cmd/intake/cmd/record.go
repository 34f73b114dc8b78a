package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/WailSalutem-Health-Care/patient-intake/internal/patient"
)

const dateLayout = "2006-01-02"

// record is the form input as written in a patient file:
//
//	first_name: anna
//	last_name: bauer
//	birth_date: 2000-05-10
//	svnr: "1234100500"
//	station_id: 1
type record struct {
	ID        int64  `yaml:"id,omitempty"`
	FirstName string `yaml:"first_name"`
	LastName  string `yaml:"last_name"`
	BirthDate string `yaml:"birth_date,omitempty"`
	SVNR      string `yaml:"svnr"`
	Phone     string `yaml:"phone,omitempty"`
	Address   string `yaml:"address"`
	Reason    string `yaml:"reason"`
	StationID *int   `yaml:"station_id,omitempty"`
}

// readRecord parses a patient file; "-" reads from stdin
func readRecord(path string, stdin io.Reader) (patient.Patient, error) {
	var data []byte
	var err error
	if path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return patient.Patient{}, fmt.Errorf("failed to read patient file: %w", err)
	}

	var r record
	if err := yaml.Unmarshal(data, &r); err != nil {
		return patient.Patient{}, fmt.Errorf("failed to parse patient file: %w", err)
	}
	return r.toPatient()
}

func (r record) toPatient() (patient.Patient, error) {
	p := patient.Patient{
		ID:        r.ID,
		FirstName: r.FirstName,
		LastName:  r.LastName,
		SVNR:      r.SVNR,
		Phone:     r.Phone,
		Address:   r.Address,
		Reason:    r.Reason,
		StationID: r.StationID,
	}

	if bd := strings.TrimSpace(r.BirthDate); bd != "" {
		t, err := time.Parse(dateLayout, bd)
		if err != nil {
			return patient.Patient{}, fmt.Errorf("birth_date must be YYYY-MM-DD: %w", err)
		}
		p.BirthDate = patient.Date(t.Year(), t.Month(), t.Day())
	}
	return p, nil
}

func toRecord(p patient.Patient) record {
	r := record{
		ID:        p.ID,
		FirstName: p.FirstName,
		LastName:  p.LastName,
		SVNR:      p.SVNR,
		Phone:     p.Phone,
		Address:   p.Address,
		Reason:    p.Reason,
		StationID: p.StationID,
	}
	if p.BirthDate != nil {
		r.BirthDate = p.BirthDate.Format(dateLayout)
	}
	return r
}

func writeRecord(w io.Writer, p patient.Patient) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(toRecord(p)); err != nil {
		return fmt.Errorf("failed to write patient: %w", err)
	}
	return enc.Close()
}
