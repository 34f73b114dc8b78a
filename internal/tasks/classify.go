package tasks

import (
	"errors"

	"github.com/WailSalutem-Health-Care/patient-intake/internal/db"
	"github.com/WailSalutem-Health-Care/patient-intake/internal/patient"
)

// Kind tells a presenter how to render a failure
type Kind int

const (
	KindNone Kind = iota
	KindValidation
	KindNotFound
	KindStorage
	KindUnexpected
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindStorage:
		return "storage"
	case KindUnexpected:
		return "unexpected"
	default:
		return "none"
	}
}

const (
	MsgStorageFailure  = "The action could not be performed. Please check the database connection."
	MsgNotFound        = "The patient no longer exists."
	msgUnexpectedError = "An unexpected error occurred: "
)

// Failure is a classified task error with the message shown to the user
type Failure struct {
	Kind    Kind
	Message string
	Err     error
}

// Classify maps a task error to its user-facing category.
// Validation messages are passed through verbatim, one violation per line.
func Classify(err error) Failure {
	if err == nil {
		return Failure{}
	}

	var verr *patient.ValidationError
	switch {
	case errors.As(err, &verr):
		return Failure{Kind: KindValidation, Message: verr.Error(), Err: err}
	case errors.Is(err, patient.ErrPatientNotFound):
		return Failure{Kind: KindNotFound, Message: MsgNotFound, Err: err}
	case errors.Is(err, db.ErrStorage):
		return Failure{Kind: KindStorage, Message: MsgStorageFailure, Err: err}
	default:
		return Failure{Kind: KindUnexpected, Message: msgUnexpectedError + err.Error(), Err: err}
	}
}
