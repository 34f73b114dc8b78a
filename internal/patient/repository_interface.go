package patient

import "context"

// RepositoryInterface defines the contract for patient data access.
// Implementations trust their caller: records are validated upstream.
type RepositoryInterface interface {
	FindAll(ctx context.Context) ([]Patient, error)
	FindByID(ctx context.Context, id int64) (*Patient, error)
	Search(ctx context.Context, query string) ([]Patient, error)
	Insert(ctx context.Context, p *Patient) error
	Update(ctx context.Context, p Patient) error
	DeleteByID(ctx context.Context, id int64) error
}

// Ensure both implementations satisfy RepositoryInterface
var (
	_ RepositoryInterface = (*Repository)(nil)
	_ RepositoryInterface = (*MemoryRepository)(nil)
)
