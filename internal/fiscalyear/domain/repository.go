package fiscalyear

import "context"

// Repository persists fiscal years.
type Repository interface {
	Create(ctx context.Context, fy *FiscalYear) error
	GetByID(ctx context.Context, id string) (*FiscalYear, error)
	List(ctx context.Context) ([]*FiscalYear, error)
	FindActiveByYear(ctx context.Context, year int) (*FiscalYear, error)
	UpdateStatus(ctx context.Context, id string, status Status) error
}
