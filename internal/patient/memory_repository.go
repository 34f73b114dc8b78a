package patient

import (
	"context"
	"sort"
	"strings"
	"sync"
)

// MemoryRepository keeps patients in process memory.
// It backs demo mode and the service tests.
type MemoryRepository struct {
	mu       sync.RWMutex
	nextID   int64
	patients map[int64]Patient
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		nextID:   1,
		patients: make(map[int64]Patient),
	}
}

func (m *MemoryRepository) FindAll(ctx context.Context) ([]Patient, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]Patient, 0, len(m.patients))
	for _, p := range m.patients {
		out = append(out, p.clone())
	}
	SortByName(out)
	return out, nil
}

func (m *MemoryRepository) FindByID(ctx context.Context, id int64) (*Patient, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	p, ok := m.patients[id]
	if !ok {
		return nil, ErrPatientNotFound
	}
	out := p.clone()
	return &out, nil
}

func (m *MemoryRepository) Search(ctx context.Context, query string) ([]Patient, error) {
	all, err := m.FindAll(ctx)
	if err != nil {
		return nil, err
	}

	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return all, nil
	}

	out := []Patient{}
	for _, p := range all {
		if Matches(p, q) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *MemoryRepository) Insert(ctx context.Context, p *Patient) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	p.ID = m.nextID
	m.nextID++
	m.patients[p.ID] = p.clone()
	return nil
}

func (m *MemoryRepository) Update(ctx context.Context, p Patient) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.patients[p.ID]; !ok {
		return ErrPatientNotFound
	}
	m.patients[p.ID] = p.clone()
	return nil
}

func (m *MemoryRepository) DeleteByID(ctx context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.patients, id)
	return nil
}

// Matches reports whether a lowercase query is a substring of any
// searchable field
func Matches(p Patient, lowerQuery string) bool {
	for _, field := range []string{p.FirstName, p.LastName, p.SVNR, p.Phone, p.Address, p.Reason} {
		if strings.Contains(strings.ToLower(field), lowerQuery) {
			return true
		}
	}
	return false
}

// SortByName orders by last name, then first name, ignoring case.
// Ties keep id order, which is insertion order.
func SortByName(list []Patient) {
	sort.SliceStable(list, func(i, j int) bool {
		a, b := list[i], list[j]
		if al, bl := strings.ToLower(a.LastName), strings.ToLower(b.LastName); al != bl {
			return al < bl
		}
		if af, bf := strings.ToLower(a.FirstName), strings.ToLower(b.FirstName); af != bf {
			return af < bf
		}
		return a.ID < b.ID
	})
}
