package patient

import "context"

// ServiceInterface defines the patient operations a shell may invoke
type ServiceInterface interface {
	List(ctx context.Context) ([]Patient, error)
	Search(ctx context.Context, query string) ([]Patient, error)
	Get(ctx context.Context, id int64) (*Patient, error)
	Save(ctx context.Context, p *Patient) (*Patient, error)
	Delete(ctx context.Context, id int64) error
	ValidateOnly(ctx context.Context, p *Patient) (Result, error)
}

// StationLookup provides station id -> name for the existence check
type StationLookup interface {
	Lookup(ctx context.Context) (map[int]string, error)
}

var _ ServiceInterface = (*Service)(nil)
