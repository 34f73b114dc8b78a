package patient

import "time"

// Patient is one intake record.
// ID 0 means the record has not been stored yet.
type Patient struct {
	ID        int64      `json:"id"`
	FirstName string     `json:"first_name"`
	LastName  string     `json:"last_name"`
	BirthDate *time.Time `json:"birth_date,omitempty"`
	SVNR      string     `json:"svnr"`
	Phone     string     `json:"phone"`
	Address   string     `json:"address"`
	Reason    string     `json:"reason"`
	StationID *int       `json:"station_id,omitempty"`
}

// IsNew reports whether the record still needs an insert
func (p Patient) IsNew() bool {
	return p.ID <= 0
}

func (p Patient) clone() Patient {
	out := p
	if p.BirthDate != nil {
		bd := *p.BirthDate
		out.BirthDate = &bd
	}
	if p.StationID != nil {
		st := *p.StationID
		out.StationID = &st
	}
	return out
}

// Date returns a calendar date at midnight UTC
func Date(year int, month time.Month, day int) *time.Time {
	d := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	return &d
}

func dateOnly(t time.Time) *time.Time {
	return Date(t.Year(), t.Month(), t.Day())
}
