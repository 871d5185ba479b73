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

// FiscalDocumentInput carries one invoice or receipt backing a settlement.
type FiscalDocumentInput struct {
	Number    string
	Amount    decimal.Decimal
	TaxAmount decimal.Decimal
	IssueDate time.Time
}

// SettlementInput carries the fields of a new settlement draft.
type SettlementInput struct {
	CommitmentID    string
	SettlementDate  time.Time
	FiscalDocuments []FiscalDocumentInput
}

// SettlementService manages the settlement stage.
type SettlementService struct {
	uow   execution.UnitOfWork
	cfg   Config
	clock Clock
}

// NewSettlementService constructs a settlement service.
func NewSettlementService(uow execution.UnitOfWork, cfg Config, clock Clock) (*SettlementService, error) {
	if uow == nil {
		return nil, errors.New("settlement service: nil unit of work")
	}
	if clock == nil {
		clock = SystemClock{}
	}
	return &SettlementService{uow: uow, cfg: cfg, clock: clock}, nil
}

// CreateDraft validates and stores a settlement draft. The total is
// derived from the fiscal documents, never supplied by the caller.
func (s *SettlementService) CreateDraft(ctx context.Context, input SettlementInput) (*execution.Settlement, error) {
	now := s.clock.Now()
	settlement := &execution.Settlement{
		ID:             uuid.NewString(),
		CommitmentID:   input.CommitmentID,
		SettlementDate: input.SettlementDate,
		PaidAmount:     decimal.Zero,
		Status:         execution.StatusDraft,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	for _, doc := range input.FiscalDocuments {
		settlement.FiscalDocuments = append(settlement.FiscalDocuments, execution.FiscalDocument{
			ID:           uuid.NewString(),
			SettlementID: settlement.ID,
			Number:       doc.Number,
			Amount:       doc.Amount,
			TaxAmount:    doc.TaxAmount,
			IssueDate:    doc.IssueDate,
		})
	}
	settlement.ComputeTotal()

	err := s.uow.WithinTx(ctx, func(tx execution.Tx) error {
		parent, err := tx.Commitments().Get(ctx, settlement.CommitmentID)
		if err != nil {
			return err
		}
		if err := settlement.Validate(parent, now); err != nil {
			return err
		}
		return tx.Settlements().Create(ctx, settlement)
	})
	if err != nil {
		return nil, err
	}
	return settlement, nil
}

// Submit issues a draft settlement: it revalidates against the parent
// commitment, consumes commitment headroom, assigns the next sequence
// number and records the movement, all in one transaction. The parent
// must be issued or partially settled with enough headroom.
func (s *SettlementService) Submit(ctx context.Context, id, actorID string) (*execution.Settlement, error) {
	start := time.Now()
	result := metrics.ResultSuccess
	defer func() {
		metrics.ObserveSubmit("settlement", result, time.Since(start))
	}()

	now := s.clock.Now()
	var submitted *execution.Settlement
	err := runWithRetry(ctx, s.uow, "settlement", s.cfg.MaxSubmitRetries, func(tx execution.Tx) error {
		settlement, err := tx.Settlements().GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if settlement.Status != execution.StatusDraft {
			return &execution.InvalidParentStateError{
				Expected: []execution.DocumentStatus{execution.StatusDraft},
				Actual:   settlement.Status,
			}
		}

		commitment, err := tx.Commitments().GetForUpdate(ctx, settlement.CommitmentID)
		if err != nil {
			return err
		}
		if err := settleableState(commitment.Status); err != nil {
			return err
		}
		if err := settlement.Validate(commitment, now); err != nil {
			return err
		}
		if headroom := commitment.Headroom(); settlement.TotalAmount.GreaterThan(headroom) {
			return &execution.InsufficientBalanceError{
				Available: headroom,
				Requested: settlement.TotalAmount,
			}
		}

		sequence, err := tx.NextNumber(ctx, execution.KindSettlement, settlement.SettlementDate.Year())
		if err != nil {
			return err
		}
		if err := settlement.MarkIssued(sequence, now); err != nil {
			return err
		}
		if err := tx.Settlements().Save(ctx, settlement); err != nil {
			return err
		}

		commitment.ApplySettled(settlement.TotalAmount)
		commitment.UpdatedAt = now
		if err := tx.Commitments().Save(ctx, commitment); err != nil {
			return err
		}

		allocation, err := tx.Allocations().Get(ctx, commitment.AllocationID)
		if err != nil {
			return err
		}
		if err := appendMovement(ctx, tx, &execution.MovementRecord{
			DocumentKind: execution.KindSettlement,
			DocumentID:   settlement.ID,
			Description:  "settlement issued",
			Amount:       settlement.TotalAmount,
			EventDate:    now,
			ActorID:      actorID,
			FiscalYearID: allocation.FiscalYearID,
		}, now); err != nil {
			return err
		}
		submitted = settlement
		return nil
	})
	if err != nil {
		result = metrics.ResultError
		return nil, err
	}
	return submitted, nil
}

// Cancel voids an issued settlement and releases the commitment headroom
// it consumed. Settlements with paid balance cannot be cancelled.
func (s *SettlementService) Cancel(ctx context.Context, id, actorID string) (*execution.Settlement, error) {
	start := time.Now()
	result := metrics.ResultSuccess
	defer func() {
		metrics.ObserveCancel("settlement", result, time.Since(start))
	}()

	now := s.clock.Now()
	var cancelled *execution.Settlement
	err := runWithRetry(ctx, s.uow, "settlement", s.cfg.MaxSubmitRetries, func(tx execution.Tx) error {
		settlement, err := tx.Settlements().GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if err := settlement.CanCancel(); err != nil {
			var childErr *execution.ChildBalanceExistsError
			if errors.As(err, &childErr) {
				if n, cntErr := tx.Disbursements().CountIssuedBySettlement(ctx, id); cntErr == nil && n > 0 {
					childErr.ChildCount = n
				}
			}
			return err
		}

		commitment, err := tx.Commitments().GetForUpdate(ctx, settlement.CommitmentID)
		if err != nil {
			return err
		}
		commitment.ApplySettled(settlement.TotalAmount.Neg())
		commitment.UpdatedAt = now
		if err := tx.Commitments().Save(ctx, commitment); err != nil {
			return err
		}

		settlement.Status = execution.StatusCancelled
		settlement.UpdatedAt = now
		if err := tx.Settlements().Save(ctx, settlement); err != nil {
			return err
		}

		allocation, err := tx.Allocations().Get(ctx, commitment.AllocationID)
		if err != nil {
			return err
		}
		if err := appendMovement(ctx, tx, &execution.MovementRecord{
			DocumentKind: execution.KindSettlement,
			DocumentID:   settlement.ID,
			Description:  "settlement cancelled",
			Amount:       settlement.TotalAmount.Neg(),
			EventDate:    now,
			ActorID:      actorID,
			FiscalYearID: allocation.FiscalYearID,
		}, now); err != nil {
			return err
		}
		cancelled = settlement
		return nil
	})
	if err != nil {
		result = metrics.ResultError
		return nil, err
	}
	return cancelled, nil
}

// Get loads one settlement.
func (s *SettlementService) Get(ctx context.Context, id string) (*execution.Settlement, error) {
	var settlement *execution.Settlement
	err := s.uow.ReadOnly(ctx, func(tx execution.Tx) error {
		var err error
		settlement, err = tx.Settlements().Get(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return settlement, nil
}

func settleableState(status execution.DocumentStatus) error {
	switch status {
	case execution.StatusIssued, execution.StatusPartiallySettled:
		return nil
	default:
		return &execution.InvalidParentStateError{
			Expected: []execution.DocumentStatus{execution.StatusIssued, execution.StatusPartiallySettled},
			Actual:   status,
		}
	}
}
