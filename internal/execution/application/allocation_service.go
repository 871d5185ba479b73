package application

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	execution "govnext-ledger/internal/execution/domain"
	fiscalyear "govnext-ledger/internal/fiscalyear/domain"
	"govnext-ledger/internal/observability/metrics"
)

// FiscalYearSource resolves fiscal years for allocation checks.
type FiscalYearSource interface {
	Get(ctx context.Context, id string) (*fiscalyear.FiscalYear, error)
}

// AllocationInput carries the fields of a new allocation.
type AllocationInput struct {
	FiscalYearID       string
	OrgUnitID          string
	ClassificationCode string
	InitialAmount      decimal.Decimal
	SupplementedAmount decimal.Decimal
	AnnulledAmount     decimal.Decimal
}

// AllocationService manages the allocation ledger.
type AllocationService struct {
	uow   execution.UnitOfWork
	years FiscalYearSource
	cfg   Config
	clock Clock
}

// NewAllocationService constructs an allocation service.
func NewAllocationService(uow execution.UnitOfWork, years FiscalYearSource, cfg Config, clock Clock) (*AllocationService, error) {
	if uow == nil {
		return nil, errors.New("allocation service: nil unit of work")
	}
	if years == nil {
		return nil, errors.New("allocation service: nil fiscal year source")
	}
	if clock == nil {
		clock = SystemClock{}
	}
	return &AllocationService{uow: uow, years: years, cfg: cfg, clock: clock}, nil
}

// Create registers a new allocation against an active fiscal year.
func (s *AllocationService) Create(ctx context.Context, input AllocationInput, actorID string) (*execution.Allocation, error) {
	now := s.clock.Now()
	allocation := &execution.Allocation{
		ID:                 uuid.NewString(),
		FiscalYearID:       input.FiscalYearID,
		OrgUnitID:          input.OrgUnitID,
		ClassificationCode: input.ClassificationCode,
		InitialAmount:      input.InitialAmount,
		SupplementedAmount: input.SupplementedAmount,
		AnnulledAmount:     input.AnnulledAmount,
		CommittedAmount:    decimal.Zero,
		BlockedAmount:      decimal.Zero,
		Status:             execution.AllocationActive,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	if err := allocation.Validate(); err != nil {
		return nil, err
	}

	fy, err := s.years.Get(ctx, input.FiscalYearID)
	if err != nil {
		return nil, err
	}
	if fy.Status != fiscalyear.StatusActive {
		return nil, fiscalyear.ErrNoActiveYear
	}

	err = s.uow.WithinTx(ctx, func(tx execution.Tx) error {
		if err := tx.Allocations().Create(ctx, allocation); err != nil {
			return err
		}
		return appendMovement(ctx, tx, &execution.MovementRecord{
			DocumentKind: execution.KindAllocation,
			DocumentID:   allocation.ID,
			Description:  "allocation approved",
			Amount:       allocation.TotalAmount(),
			EventDate:    now,
			ActorID:      actorID,
			FiscalYearID: allocation.FiscalYearID,
		}, now)
	})
	if err != nil {
		return nil, err
	}
	return allocation, nil
}

// Supplement raises an allocation's authorized total.
func (s *AllocationService) Supplement(ctx context.Context, id string, amount decimal.Decimal, actorID string) (*execution.Allocation, error) {
	return s.adjust(ctx, id, actorID, "allocation supplemented", amount, func(a *execution.Allocation) error {
		return a.Supplement(amount)
	})
}

// Annul lowers an allocation's authorized total.
func (s *AllocationService) Annul(ctx context.Context, id string, amount decimal.Decimal, actorID string) (*execution.Allocation, error) {
	return s.adjust(ctx, id, actorID, "allocation annulled", amount, func(a *execution.Allocation) error {
		return a.Annul(amount)
	})
}

// Block places an administrative hold on available balance.
func (s *AllocationService) Block(ctx context.Context, id string, amount decimal.Decimal, actorID string) (*execution.Allocation, error) {
	return s.adjust(ctx, id, actorID, "allocation blocked", amount, func(a *execution.Allocation) error {
		return a.Block(amount)
	})
}

// Unblock releases an administrative hold.
func (s *AllocationService) Unblock(ctx context.Context, id string, amount decimal.Decimal, actorID string) (*execution.Allocation, error) {
	return s.adjust(ctx, id, actorID, "allocation unblocked", amount, func(a *execution.Allocation) error {
		a.Unblock(amount)
		return nil
	})
}

func (s *AllocationService) adjust(ctx context.Context, id, actorID, description string, amount decimal.Decimal, mutate func(*execution.Allocation) error) (*execution.Allocation, error) {
	now := s.clock.Now()
	var result *execution.Allocation
	err := runWithRetry(ctx, s.uow, "allocation", s.cfg.MaxSubmitRetries, func(tx execution.Tx) error {
		allocation, err := tx.Allocations().GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if allocation.Status != execution.AllocationActive {
			return execution.ErrAllocationNotActive
		}
		if err := mutate(allocation); err != nil {
			return err
		}
		allocation.UpdatedAt = now
		if err := tx.Allocations().Save(ctx, allocation); err != nil {
			return err
		}
		if err := appendMovement(ctx, tx, &execution.MovementRecord{
			DocumentKind: execution.KindAllocation,
			DocumentID:   allocation.ID,
			Description:  description,
			Amount:       amount,
			EventDate:    now,
			ActorID:      actorID,
			FiscalYearID: allocation.FiscalYearID,
		}, now); err != nil {
			return err
		}
		result = allocation
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func appendMovement(ctx context.Context, tx execution.Tx, record *execution.MovementRecord, now time.Time) error {
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = now
	}
	if err := tx.Movements().Append(ctx, record); err != nil {
		return errors.Join(execution.ErrStorageUnavailable, err)
	}
	metrics.IncMovementAppend()
	return nil
}
