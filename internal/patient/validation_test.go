package patient

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(v int) *int {
	return &v
}

func validPatient() Patient {
	return Patient{
		FirstName: "anna",
		LastName:  "bauer",
		BirthDate: Date(2000, time.May, 10),
		SVNR:      "1234100500",
		Phone:     "+436641234567",
		Address:   "Main St 1",
		Reason:    "checkup",
		StationID: intPtr(1),
	}
}

var wards = map[int]string{1: "Ward A", 2: "Ward B"}

func TestValidate_ValidPatient(t *testing.T) {
	p := validPatient()

	result := Validate(&p, wards)

	assert.True(t, result.OK())
	assert.NoError(t, result.Err())
	assert.Equal(t, "Anna", result.Patient.FirstName)
	assert.Equal(t, "Bauer", result.Patient.LastName)
	assert.Equal(t, "Main st 1", result.Patient.Address)
	assert.Equal(t, "Checkup", result.Patient.Reason)
}

func TestValidate_DoesNotModifyCandidate(t *testing.T) {
	p := validPatient()

	result := Validate(&p, wards)
	*result.Patient.StationID = 99

	assert.Equal(t, "anna", p.FirstName)
	assert.Equal(t, "bauer", p.LastName)
	assert.Equal(t, 1, *p.StationID)
}

func TestValidate_NilCandidate(t *testing.T) {
	result := Validate(nil, wards)

	assert.Equal(t, []string{MsgMissingPatient}, result.Violations)
	assert.EqualError(t, result.Err(), "missing patient data")
}

func TestValidate_EmptyCandidateCollectsAllViolationsInOrder(t *testing.T) {
	result := Validate(&Patient{}, nil)

	expected := []string{
		MsgFirstNameMissing,
		MsgLastNameMissing,
		MsgReasonMissing,
		MsgAddressMissing,
		MsgBirthDateMissing,
		MsgSVNRFormat,
		MsgStationMissing,
	}
	assert.Equal(t, expected, result.Violations)
	assert.Equal(t, strings.Join(expected, "\n"), result.Err().Error())
}

func TestValidate_BlankFirstName(t *testing.T) {
	for _, name := range []string{"", "   ", "\t"} {
		p := validPatient()
		p.FirstName = name

		result := Validate(&p, wards)

		assert.Equal(t, []string{MsgFirstNameMissing}, result.Violations, "first name %q", name)
	}
}

func TestValidate_BlankFields(t *testing.T) {
	testCases := []struct {
		name     string
		mutate   func(p *Patient)
		expected string
	}{
		{"Missing last name", func(p *Patient) { p.LastName = "" }, MsgLastNameMissing},
		{"Missing reason", func(p *Patient) { p.Reason = " " }, MsgReasonMissing},
		{"Missing address", func(p *Patient) { p.Address = "" }, MsgAddressMissing},
		{"Missing birth date", func(p *Patient) { p.BirthDate = nil }, MsgBirthDateMissing},
		{"Missing station", func(p *Patient) { p.StationID = nil }, MsgStationMissing},
		{"Unknown station", func(p *Patient) { p.StationID = intPtr(7) }, MsgStationUnknown},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			p := validPatient()
			tc.mutate(&p)

			result := Validate(&p, wards)

			assert.Equal(t, []string{tc.expected}, result.Violations)
		})
	}
}

func TestValidate_MissingBirthDateSkipsCorrespondenceCheck(t *testing.T) {
	p := validPatient()
	p.BirthDate = nil
	p.SVNR = "1234999999"

	result := Validate(&p, wards)

	assert.Equal(t, []string{MsgBirthDateMissing}, result.Violations)
}

func TestValidate_SVNR(t *testing.T) {
	testCases := []struct {
		svnr     string
		expected []string
	}{
		{"1234010105", nil},
		{"1234010106", []string{MsgSVNRBirthDate}},
		{"123abc0105", []string{MsgSVNRFormat}},
		{"", []string{MsgSVNRFormat}},
		{"123401010", []string{MsgSVNRFormat}},
		{"12340101050", []string{MsgSVNRFormat}},
		{" 1234010105", []string{MsgSVNRFormat}},
	}

	for _, tc := range testCases {
		t.Run(tc.svnr, func(t *testing.T) {
			p := validPatient()
			p.BirthDate = Date(2005, time.January, 1)
			p.SVNR = tc.svnr

			result := Validate(&p, wards)

			assert.Equal(t, tc.expected, result.Violations)
		})
	}
}

func TestValidate_WrongDateSuffix(t *testing.T) {
	p := validPatient()
	p.SVNR = "1234100501"

	result := Validate(&p, wards)

	require.False(t, result.OK())
	assert.Equal(t, []string{MsgSVNRBirthDate}, result.Violations)
	assert.Contains(t, result.Err().Error(), "SVNR")
	assert.Contains(t, result.Err().Error(), "birth date")
}

func TestValidate_Phone(t *testing.T) {
	testCases := []struct {
		phone string
		valid bool
	}{
		{"", true},
		{"+436641234", true},
		{"+436641234567", true},
		{"+43664123", false},
		{"+4366412345678", false},
		{"06641234567", false},
		{"+43 664 1234567", false},
		{" ", false},
		{"436641234567", false},
	}

	for _, tc := range testCases {
		t.Run(tc.phone, func(t *testing.T) {
			p := validPatient()
			p.Phone = tc.phone

			result := Validate(&p, wards)

			if tc.valid {
				assert.True(t, result.OK(), "violations: %v", result.Violations)
			} else {
				assert.Equal(t, []string{MsgPhoneFormat}, result.Violations)
			}
		})
	}
}

func TestValidate_NilStationLookupSkipsExistenceCheck(t *testing.T) {
	p := validPatient()
	p.StationID = intPtr(42)

	assert.True(t, Validate(&p, nil).OK())
}

func TestValidationError(t *testing.T) {
	err := error(&ValidationError{Violations: []string{MsgFirstNameMissing, MsgLastNameMissing}})

	assert.Equal(t, "first name missing\nlast name missing", err.Error())
	assert.True(t, errors.Is(err, ErrInvalidPatient))
}

func TestCapitalize(t *testing.T) {
	testCases := map[string]string{
		"":        "",
		"   ":     "",
		"maria":   "Maria",
		"MARIA":   "Maria",
		"Maria":   "Maria",
		"mARIA":   "Maria",
		"  anna ": "Anna",
		"müller":  "Müller",
		"élise":   "Élise",
		"a":       "A",
	}

	for in, expected := range testCases {
		assert.Equal(t, expected, Capitalize(in), "input %q", in)
	}
}

func TestCapitalize_Idempotent(t *testing.T) {
	for _, in := range []string{"maria", "MARIA", "Maria", "van der berg", "ÖZTÜRK"} {
		once := Capitalize(in)
		assert.Equal(t, once, Capitalize(once))
	}
}

func TestNormalize_LeavesOtherFields(t *testing.T) {
	p := validPatient()
	p.ID = 5
	p.SVNR = " 1234100500"
	p.Phone = "+436641234567"

	n := Normalize(p)

	assert.Equal(t, int64(5), n.ID)
	assert.Equal(t, " 1234100500", n.SVNR)
	assert.Equal(t, "+436641234567", n.Phone)
	assert.Equal(t, p.BirthDate, n.BirthDate)
	assert.NotSame(t, p.BirthDate, n.BirthDate)
}

func TestSVNRMatchesBirthDate(t *testing.T) {
	assert.True(t, SVNRMatchesBirthDate("0000311299", *Date(1999, time.December, 31)))
	assert.True(t, SVNRMatchesBirthDate("1234100500", *Date(2000, time.May, 10)))
	assert.False(t, SVNRMatchesBirthDate("1234100500", *Date(2000, time.May, 11)))
	assert.False(t, SVNRMatchesBirthDate("12341005", *Date(2000, time.May, 10)))
}
