package cmd

import (
	"fmt"
	"io"
	"sync"
	"text/tabwriter"

	"go.uber.org/zap"

	"github.com/WailSalutem-Health-Care/patient-intake/internal/pagination"
	"github.com/WailSalutem-Health-Care/patient-intake/internal/patient"
	"github.com/WailSalutem-Health-Care/patient-intake/internal/station"
	"github.com/WailSalutem-Health-Care/patient-intake/internal/tasks"
)

// textPresenter renders coordinator results as terminal tables.
// Failures are kept until the command collects them as its exit error.
type textPresenter struct {
	mu       sync.Mutex
	out      io.Writer
	log      *zap.Logger
	stations map[int]string
	page     pagination.Params
	failure  *tasks.Failure
}

var _ tasks.Presenter = (*textPresenter)(nil)

func newTextPresenter(out io.Writer, log *zap.Logger) *textPresenter {
	return &textPresenter{out: out, log: log, page: pagination.New(1, pagination.MaxLimit)}
}

func (p *textPresenter) SetPage(page pagination.Params) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.page = page
}

func (p *textPresenter) SetStations(lookup map[int]string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stations = lookup
}

func (p *textPresenter) SetBusy(busy bool) {
	p.log.Debug("busy", zap.Bool("busy", busy))
}

func (p *textPresenter) ShowPatients(query string, patients []patient.Patient) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if len(patients) == 0 {
		if query == "" {
			fmt.Fprintln(p.out, "No patients yet. Use \"intake patients save\" to admit one.")
		} else {
			fmt.Fprintf(p.out, "No patients match %q. Use \"intake patients save\" to admit a new patient.\n", query)
		}
		return
	}

	rows, meta := pagination.Slice(patients, p.page)

	w := tabwriter.NewWriter(p.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tBIRTH DATE\tSVNR\tPHONE\tSTATION\tREASON")
	for _, pt := range rows {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\t%s\n",
			pt.ID,
			displayName(pt),
			formatDate(pt),
			pt.SVNR,
			pt.Phone,
			station.DisplayName(p.stations, pt.StationID),
			pt.Reason,
		)
	}
	w.Flush()

	fmt.Fprintf(p.out, "Page %d of %d (%d patients)\n", meta.CurrentPage, meta.TotalPages, meta.TotalRecords)
}

func (p *textPresenter) ShowSuccess(op string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintf(p.out, "%s: done\n", op)
}

func (p *textPresenter) ShowFailure(op string, f tasks.Failure) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.log.Debug("task failure shown",
		zap.String("operation", op),
		zap.Stringer("kind", f.Kind),
		zap.Error(f.Err),
	)
	p.failure = &f
}

// takeFailure turns the last shown failure into the command's error.
// err is returned unchanged when nothing was shown.
func (p *textPresenter) takeFailure(err error) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.failure == nil {
		return err
	}
	f := *p.failure
	p.failure = nil
	return &shellError{Failure: f}
}

// shellError prints the user-facing message and keeps the cause for errors.Is
type shellError struct {
	tasks.Failure
}

func (e *shellError) Error() string {
	return e.Message
}

func (e *shellError) Unwrap() error {
	return e.Err
}

func displayName(p patient.Patient) string {
	switch {
	case p.LastName == "":
		return p.FirstName
	case p.FirstName == "":
		return p.LastName
	default:
		return p.LastName + ", " + p.FirstName
	}
}

func formatDate(p patient.Patient) string {
	if p.BirthDate == nil {
		return ""
	}
	return p.BirthDate.Format(dateLayout)
}
