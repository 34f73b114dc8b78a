package patient

import (
	"regexp"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"
)

// Violation messages, shown to the user as they are
const (
	MsgMissingPatient   = "missing patient data"
	MsgFirstNameMissing = "first name missing"
	MsgLastNameMissing  = "last name missing"
	MsgReasonMissing    = "reason for stay missing"
	MsgAddressMissing   = "address missing"
	MsgBirthDateMissing = "birth date missing"
	MsgSVNRFormat       = "SVNR must consist of exactly 10 digits"
	MsgSVNRBirthDate    = "SVNR invalid: the last 6 digits must match the birth date (DDMMYY)"
	MsgPhoneFormat      = "phone number invalid: must start with + followed by 9 to 12 digits (e.g. +436641234567)"
	MsgStationMissing   = "please select a station"
	MsgStationUnknown   = "selected station does not exist"
	MsgInvalidPatientID = "invalid patient id"
)

const (
	svnrBirthDateLayout = "020106"
	svnrBirthDateOffset = 4
)

var (
	svnrPattern  = regexp.MustCompile(`^\d{10}$`)
	phonePattern = regexp.MustCompile(`^\+\d{9,12}$`)
)

// Result is the outcome of validating a candidate record.
// Patient holds the normalized copy, even when violations exist.
type Result struct {
	Patient    Patient
	Violations []string
}

func (r Result) OK() bool {
	return len(r.Violations) == 0
}

// Err returns a *ValidationError, or nil when the record is valid
func (r Result) Err() error {
	if r.OK() {
		return nil
	}
	return &ValidationError{Violations: r.Violations}
}

// Normalize returns a copy with names, address and reason capitalized
func Normalize(p Patient) Patient {
	out := p.clone()
	out.FirstName = Capitalize(p.FirstName)
	out.LastName = Capitalize(p.LastName)
	out.Address = Capitalize(p.Address)
	out.Reason = Capitalize(p.Reason)
	return out
}

// Capitalize trims s and turns it into "first letter upper, rest lower"
func Capitalize(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return ""
	}
	r, size := utf8.DecodeRuneInString(s)
	return string(unicode.ToUpper(r)) + s[size:]
}

// Validate normalizes the candidate and checks every rule without stopping
// at the first failure. The candidate itself is left untouched.
//
// stations maps station id to name; when nil the existence check is skipped.
func Validate(p *Patient, stations map[int]string) Result {
	if p == nil {
		return Result{Violations: []string{MsgMissingPatient}}
	}

	n := Normalize(*p)
	var violations []string

	if isBlank(n.FirstName) {
		violations = append(violations, MsgFirstNameMissing)
	}
	if isBlank(n.LastName) {
		violations = append(violations, MsgLastNameMissing)
	}
	if isBlank(n.Reason) {
		violations = append(violations, MsgReasonMissing)
	}
	if isBlank(n.Address) {
		violations = append(violations, MsgAddressMissing)
	}

	if n.BirthDate == nil {
		violations = append(violations, MsgBirthDateMissing)
	}

	if isBlank(n.SVNR) || !svnrPattern.MatchString(n.SVNR) {
		violations = append(violations, MsgSVNRFormat)
	} else if n.BirthDate != nil && !SVNRMatchesBirthDate(n.SVNR, *n.BirthDate) {
		violations = append(violations, MsgSVNRBirthDate)
	}

	if !isBlank(n.Phone) && !phonePattern.MatchString(n.Phone) {
		violations = append(violations, MsgPhoneFormat)
	}

	if n.StationID == nil {
		violations = append(violations, MsgStationMissing)
	} else if stations != nil {
		if _, ok := stations[*n.StationID]; !ok {
			violations = append(violations, MsgStationUnknown)
		}
	}

	return Result{Patient: n, Violations: violations}
}

// SVNRMatchesBirthDate compares digits 5-10 of a well-formed SVNR with the
// birth date written as DDMMYY
func SVNRMatchesBirthDate(svnr string, birthDate time.Time) bool {
	if len(svnr) != 10 {
		return false
	}
	return svnr[svnrBirthDateOffset:] == birthDate.Format(svnrBirthDateLayout)
}

// no trimming: whitespace-only input counts as present
func isBlank(s string) bool {
	return s == ""
}
