package patient

import (
	"errors"
	"strings"
)

var (
	ErrPatientNotFound = errors.New("patient not found")
	ErrInvalidPatient  = errors.New("patient data is invalid")
)

// ValidationError carries every violated rule, in rule order
type ValidationError struct {
	Violations []string
}

// Error joins the violations one per line; shells show it verbatim
func (e *ValidationError) Error() string {
	return strings.Join(e.Violations, "\n")
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidPatient
}
