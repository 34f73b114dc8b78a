package station

import "context"

// RepositoryInterface defines read access to the station table
type RepositoryInterface interface {
	FindAll(ctx context.Context) ([]Station, error)
}

var _ RepositoryInterface = (*Repository)(nil)
