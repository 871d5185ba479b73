package memory

import (
	"context"
	"sync"
	"time"

	fiscalyear "govnext-ledger/internal/fiscalyear/domain"
)

// Repository is an in-memory fiscal year store.
type Repository struct {
	mu   sync.RWMutex
	data map[string]*fiscalyear.FiscalYear
}

// NewRepository constructs an empty repository.
func NewRepository() *Repository {
	return &Repository{data: make(map[string]*fiscalyear.FiscalYear)}
}

// Create stores a fiscal year.
func (r *Repository) Create(ctx context.Context, fy *fiscalyear.FiscalYear) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	clone := *fy
	r.data[fy.ID] = &clone
	return nil
}

// GetByID loads a fiscal year.
func (r *Repository) GetByID(ctx context.Context, id string) (*fiscalyear.FiscalYear, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	fy, ok := r.data[id]
	if !ok {
		return nil, fiscalyear.ErrNotFound
	}
	clone := *fy
	return &clone, nil
}

// List returns all fiscal years.
func (r *Repository) List(ctx context.Context) ([]*fiscalyear.FiscalYear, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*fiscalyear.FiscalYear, 0, len(r.data))
	for _, fy := range r.data {
		clone := *fy
		out = append(out, &clone)
	}
	return out, nil
}

// FindActiveByYear returns the active fiscal year for a calendar year.
func (r *Repository) FindActiveByYear(ctx context.Context, year int) (*fiscalyear.FiscalYear, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, fy := range r.data {
		if fy.Year == year && fy.Status == fiscalyear.StatusActive {
			clone := *fy
			return &clone, nil
		}
	}
	return nil, fiscalyear.ErrNoActiveYear
}

// UpdateStatus changes a fiscal year status.
func (r *Repository) UpdateStatus(ctx context.Context, id string, status fiscalyear.Status) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	fy, ok := r.data[id]
	if !ok {
		return fiscalyear.ErrNotFound
	}
	fy.Status = status
	fy.Version++
	fy.UpdatedAt = time.Now().UTC()
	return nil
}
