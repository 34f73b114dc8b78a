package pagination

// Default pagination values
const (
	DefaultPage  = 1
	DefaultLimit = 20
	MaxLimit     = 100
)

// Params selects one page of a result list
type Params struct {
	Page  int `json:"page"`  // Current page number (1-based)
	Limit int `json:"limit"` // Number of items per page
}

// Meta describes the page that was cut out of a result list
type Meta struct {
	CurrentPage  int  `json:"current_page"`
	PerPage      int  `json:"per_page"`
	TotalPages   int  `json:"total_pages"`
	TotalRecords int  `json:"total_records"`
	HasNext      bool `json:"has_next"`
	HasPrevious  bool `json:"has_previous"`
}

// New returns valid params, falling back to the defaults for values below 1
func New(page, limit int) Params {
	p := Params{Page: page, Limit: limit}
	p.Validate()
	return p
}

// Validate ensures pagination parameters are valid and sets defaults if needed
func (p *Params) Validate() {
	if p.Page < 1 {
		p.Page = DefaultPage
	}
	if p.Limit < 1 {
		p.Limit = DefaultLimit
	}
	if p.Limit > MaxLimit {
		p.Limit = MaxLimit
	}
}

// CalculateOffset returns the index of the first item on the page
func (p *Params) CalculateOffset() int {
	return (p.Page - 1) * p.Limit
}

// CalculateMeta creates pagination metadata based on total records
func (p *Params) CalculateMeta(totalRecords int) Meta {
	totalPages := (totalRecords + p.Limit - 1) / p.Limit // Ceiling division
	if totalPages < 1 {
		totalPages = 1
	}

	return Meta{
		CurrentPage:  p.Page,
		PerPage:      p.Limit,
		TotalPages:   totalPages,
		TotalRecords: totalRecords,
		HasNext:      p.Page < totalPages,
		HasPrevious:  p.Page > 1,
	}
}

// Slice cuts the requested page out of items. A page past the end is empty.
func Slice[T any](items []T, p Params) ([]T, Meta) {
	p.Validate()
	meta := p.CalculateMeta(len(items))

	start := p.CalculateOffset()
	if start >= len(items) {
		return []T{}, meta
	}
	end := start + p.Limit
	if end > len(items) {
		end = len(items)
	}
	return items[start:end], meta
}
