package application

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"

	fiscalyear "govnext-ledger/internal/fiscalyear/domain"
)

// RegistryService manages the fiscal year registry.
type RegistryService struct {
	repo   fiscalyear.Repository
	logger *log.Logger
}

// NewRegistryService constructs a registry service.
func NewRegistryService(repo fiscalyear.Repository, logger *log.Logger) (*RegistryService, error) {
	if repo == nil {
		return nil, errors.New("fiscalyear service: nil repo")
	}
	return &RegistryService{repo: repo, logger: logger}, nil
}

// Create registers a new fiscal year in Draft status.
func (s *RegistryService) Create(ctx context.Context, start, end time.Time) (*fiscalyear.FiscalYear, error) {
	now := time.Now().UTC()
	fy := &fiscalyear.FiscalYear{
		ID:        uuid.NewString(),
		Year:      start.Year(),
		StartDate: start,
		EndDate:   end,
		Status:    fiscalyear.StatusDraft,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := fy.ValidateRange(); err != nil {
		return nil, err
	}
	if fy.IrregularSpan() && s.logger != nil {
		s.logger.Printf("fiscal year %d spans %d days, expected a full year", fy.Year, fy.SpanDays())
	}

	existing, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	for _, other := range existing {
		if fy.Overlaps(other) {
			return nil, fiscalyear.ErrOverlap
		}
	}

	if err := s.repo.Create(ctx, fy); err != nil {
		return nil, err
	}
	return fy, nil
}

// Activate moves a draft fiscal year to Active. At most one fiscal year
// may be active per calendar year.
func (s *RegistryService) Activate(ctx context.Context, id string) (*fiscalyear.FiscalYear, error) {
	fy, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if fy.Status == fiscalyear.StatusActive {
		return fy, nil
	}
	if fy.Status != fiscalyear.StatusDraft {
		return nil, fiscalyear.ErrInvalidTransition
	}

	active, err := s.repo.FindActiveByYear(ctx, fy.Year)
	if err != nil && !errors.Is(err, fiscalyear.ErrNoActiveYear) {
		return nil, err
	}
	if active != nil && active.ID != fy.ID {
		return nil, fiscalyear.ErrDuplicateActive
	}

	if err := s.repo.UpdateStatus(ctx, id, fiscalyear.StatusActive); err != nil {
		return nil, err
	}
	fy.Status = fiscalyear.StatusActive
	return fy, nil
}

// Close moves an active fiscal year to Closed.
func (s *RegistryService) Close(ctx context.Context, id string) (*fiscalyear.FiscalYear, error) {
	fy, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if fy.Status == fiscalyear.StatusClosed {
		return fy, nil
	}
	if fy.Status != fiscalyear.StatusActive {
		return nil, fiscalyear.ErrInvalidTransition
	}
	if err := s.repo.UpdateStatus(ctx, id, fiscalyear.StatusClosed); err != nil {
		return nil, err
	}
	fy.Status = fiscalyear.StatusClosed
	return fy, nil
}

// Get returns a fiscal year by id.
func (s *RegistryService) Get(ctx context.Context, id string) (*fiscalyear.FiscalYear, error) {
	return s.repo.GetByID(ctx, id)
}

// FindActive returns the active fiscal year covering the given year.
func (s *RegistryService) FindActive(ctx context.Context, year int) (*fiscalyear.FiscalYear, error) {
	return s.repo.FindActiveByYear(ctx, year)
}
