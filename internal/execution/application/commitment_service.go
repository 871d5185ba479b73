package application

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	execution "govnext-ledger/internal/execution/domain"
	"govnext-ledger/internal/observability/metrics"
)

// LineItemInput carries one committed product or service.
type LineItemInput struct {
	Description string
	Quantity    decimal.Decimal
	UnitPrice   decimal.Decimal
}

// CommitmentInput carries the fields of a new commitment draft.
type CommitmentInput struct {
	AllocationID   string
	CreditorID     string
	Object         string
	Kind           execution.CommitmentKind
	CommitmentDate time.Time
	TotalAmount    decimal.Decimal
	LineItems      []LineItemInput
}

// CommitmentService manages the commitment stage.
type CommitmentService struct {
	uow   execution.UnitOfWork
	cfg   Config
	clock Clock
}

// NewCommitmentService constructs a commitment service.
func NewCommitmentService(uow execution.UnitOfWork, cfg Config, clock Clock) (*CommitmentService, error) {
	if uow == nil {
		return nil, errors.New("commitment service: nil unit of work")
	}
	if clock == nil {
		clock = SystemClock{}
	}
	return &CommitmentService{uow: uow, cfg: cfg, clock: clock}, nil
}

// CreateDraft validates and stores a commitment draft. Drafts reserve no
// balance and carry no sequence number.
func (s *CommitmentService) CreateDraft(ctx context.Context, input CommitmentInput) (*execution.Commitment, error) {
	now := s.clock.Now()
	commitment := &execution.Commitment{
		ID:             uuid.NewString(),
		AllocationID:   input.AllocationID,
		CreditorID:     input.CreditorID,
		Object:         input.Object,
		Kind:           input.Kind,
		CommitmentDate: input.CommitmentDate,
		TotalAmount:    input.TotalAmount,
		SettledAmount:  decimal.Zero,
		PaidAmount:     decimal.Zero,
		Status:         execution.StatusDraft,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	for _, item := range input.LineItems {
		commitment.LineItems = append(commitment.LineItems, execution.LineItem{
			ID:           uuid.NewString(),
			CommitmentID: commitment.ID,
			Description:  item.Description,
			Quantity:     item.Quantity,
			UnitPrice:    item.UnitPrice,
		})
	}
	if err := commitment.Validate(now, s.cfg.Tolerance()); err != nil {
		return nil, err
	}

	err := s.uow.WithinTx(ctx, func(tx execution.Tx) error {
		if _, err := tx.Allocations().Get(ctx, commitment.AllocationID); err != nil {
			return err
		}
		return tx.Commitments().Create(ctx, commitment)
	})
	if err != nil {
		return nil, err
	}
	return commitment, nil
}

// Submit issues a draft commitment: it revalidates the draft, debits the
// allocation, assigns the next sequence number for the commitment year
// and records the movement, all in one transaction.
func (s *CommitmentService) Submit(ctx context.Context, id, actorID string) (*execution.Commitment, error) {
	start := time.Now()
	result := metrics.ResultSuccess
	defer func() {
		metrics.ObserveSubmit("commitment", result, time.Since(start))
	}()

	now := s.clock.Now()
	var submitted *execution.Commitment
	err := runWithRetry(ctx, s.uow, "commitment", s.cfg.MaxSubmitRetries, func(tx execution.Tx) error {
		commitment, err := tx.Commitments().GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if commitment.Status != execution.StatusDraft {
			return &execution.InvalidParentStateError{
				Expected: []execution.DocumentStatus{execution.StatusDraft},
				Actual:   commitment.Status,
			}
		}
		if err := commitment.Validate(now, s.cfg.Tolerance()); err != nil {
			return err
		}

		allocation, err := tx.Allocations().GetForUpdate(ctx, commitment.AllocationID)
		if err != nil {
			return err
		}
		if allocation.Status != execution.AllocationActive {
			return execution.ErrAllocationNotActive
		}
		if err := allocation.Debit(commitment.TotalAmount); err != nil {
			return err
		}
		allocation.UpdatedAt = now
		if err := tx.Allocations().Save(ctx, allocation); err != nil {
			return err
		}

		sequence, err := tx.NextNumber(ctx, execution.KindCommitment, commitment.CommitmentDate.Year())
		if err != nil {
			return err
		}
		if err := commitment.MarkIssued(sequence, now); err != nil {
			return err
		}
		if err := tx.Commitments().Save(ctx, commitment); err != nil {
			return err
		}
		if err := appendMovement(ctx, tx, &execution.MovementRecord{
			DocumentKind: execution.KindCommitment,
			DocumentID:   commitment.ID,
			Description:  "commitment issued",
			Amount:       commitment.TotalAmount,
			EventDate:    now,
			ActorID:      actorID,
			FiscalYearID: allocation.FiscalYearID,
		}, now); err != nil {
			return err
		}
		submitted = commitment
		return nil
	})
	if err != nil {
		result = metrics.ResultError
		return nil, err
	}
	return submitted, nil
}

// Cancel voids an issued commitment and restores the allocation balance.
// Commitments with settled balance cannot be cancelled.
func (s *CommitmentService) Cancel(ctx context.Context, id, actorID string) (*execution.Commitment, error) {
	start := time.Now()
	result := metrics.ResultSuccess
	defer func() {
		metrics.ObserveCancel("commitment", result, time.Since(start))
	}()

	now := s.clock.Now()
	var cancelled *execution.Commitment
	err := runWithRetry(ctx, s.uow, "commitment", s.cfg.MaxSubmitRetries, func(tx execution.Tx) error {
		commitment, err := tx.Commitments().GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if err := commitment.CanCancel(); err != nil {
			var childErr *execution.ChildBalanceExistsError
			if errors.As(err, &childErr) {
				if n, cntErr := tx.Settlements().CountActiveByCommitment(ctx, id); cntErr == nil && n > 0 {
					childErr.ChildCount = n
				}
			}
			return err
		}

		allocation, err := tx.Allocations().GetForUpdate(ctx, commitment.AllocationID)
		if err != nil {
			return err
		}
		allocation.Credit(commitment.TotalAmount)
		allocation.UpdatedAt = now
		if err := tx.Allocations().Save(ctx, allocation); err != nil {
			return err
		}

		commitment.Status = execution.StatusCancelled
		commitment.UpdatedAt = now
		if err := tx.Commitments().Save(ctx, commitment); err != nil {
			return err
		}
		if err := appendMovement(ctx, tx, &execution.MovementRecord{
			DocumentKind: execution.KindCommitment,
			DocumentID:   commitment.ID,
			Description:  "commitment cancelled",
			Amount:       commitment.TotalAmount.Neg(),
			EventDate:    now,
			ActorID:      actorID,
			FiscalYearID: allocation.FiscalYearID,
		}, now); err != nil {
			return err
		}
		cancelled = commitment
		return nil
	})
	if err != nil {
		result = metrics.ResultError
		return nil, err
	}
	return cancelled, nil
}

// Get loads one commitment.
func (s *CommitmentService) Get(ctx context.Context, id string) (*execution.Commitment, error) {
	var commitment *execution.Commitment
	err := s.uow.ReadOnly(ctx, func(tx execution.Tx) error {
		var err error
		commitment, err = tx.Commitments().Get(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return commitment, nil
}
