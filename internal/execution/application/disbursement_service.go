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

// DisbursementInput carries the fields of a new disbursement draft.
type DisbursementInput struct {
	SettlementID  string
	PaymentDate   time.Time
	Amount        decimal.Decimal
	PaymentMethod execution.PaymentMethod
	BankAccountID string
}

// DisbursementService manages the disbursement stage.
type DisbursementService struct {
	uow   execution.UnitOfWork
	cfg   Config
	clock Clock
}

// NewDisbursementService constructs a disbursement service.
func NewDisbursementService(uow execution.UnitOfWork, cfg Config, clock Clock) (*DisbursementService, error) {
	if uow == nil {
		return nil, errors.New("disbursement service: nil unit of work")
	}
	if clock == nil {
		clock = SystemClock{}
	}
	return &DisbursementService{uow: uow, cfg: cfg, clock: clock}, nil
}

// CreateDraft validates and stores a disbursement draft.
func (s *DisbursementService) CreateDraft(ctx context.Context, input DisbursementInput) (*execution.Disbursement, error) {
	now := s.clock.Now()
	disbursement := &execution.Disbursement{
		ID:            uuid.NewString(),
		SettlementID:  input.SettlementID,
		PaymentDate:   input.PaymentDate,
		Amount:        input.Amount,
		PaymentMethod: input.PaymentMethod,
		BankAccountID: input.BankAccountID,
		Status:        execution.StatusDraft,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	err := s.uow.WithinTx(ctx, func(tx execution.Tx) error {
		parent, err := tx.Settlements().Get(ctx, disbursement.SettlementID)
		if err != nil {
			return err
		}
		if err := disbursement.Validate(parent, now); err != nil {
			return err
		}
		return tx.Disbursements().Create(ctx, disbursement)
	})
	if err != nil {
		return nil, err
	}
	return disbursement, nil
}

// Submit issues a draft disbursement: it consumes settlement headroom,
// assigns the next sequence number, refreshes the commitment's paid
// projection and records the movement, all in one transaction. The
// parent must be issued or partially paid with enough headroom.
func (s *DisbursementService) Submit(ctx context.Context, id, actorID string) (*execution.Disbursement, error) {
	start := time.Now()
	result := metrics.ResultSuccess
	defer func() {
		metrics.ObserveSubmit("disbursement", result, time.Since(start))
	}()

	now := s.clock.Now()
	var submitted *execution.Disbursement
	err := runWithRetry(ctx, s.uow, "disbursement", s.cfg.MaxSubmitRetries, func(tx execution.Tx) error {
		disbursement, err := tx.Disbursements().GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if disbursement.Status != execution.StatusDraft {
			return &execution.InvalidParentStateError{
				Expected: []execution.DocumentStatus{execution.StatusDraft},
				Actual:   disbursement.Status,
			}
		}

		settlement, err := tx.Settlements().GetForUpdate(ctx, disbursement.SettlementID)
		if err != nil {
			return err
		}
		if err := payableState(settlement.Status); err != nil {
			return err
		}
		if err := disbursement.Validate(settlement, now); err != nil {
			return err
		}
		if headroom := settlement.Headroom(); disbursement.Amount.GreaterThan(headroom) {
			return &execution.InsufficientBalanceError{
				Available: headroom,
				Requested: disbursement.Amount,
			}
		}

		sequence, err := tx.NextNumber(ctx, execution.KindDisbursement, disbursement.PaymentDate.Year())
		if err != nil {
			return err
		}
		if err := disbursement.MarkIssued(sequence, now); err != nil {
			return err
		}
		if err := tx.Disbursements().Save(ctx, disbursement); err != nil {
			return err
		}

		settlement.ApplyPaid(disbursement.Amount)
		settlement.UpdatedAt = now
		if err := tx.Settlements().Save(ctx, settlement); err != nil {
			return err
		}

		allocationID, err := s.refreshPaidProjection(ctx, tx, settlement.CommitmentID, now)
		if err != nil {
			return err
		}
		allocation, err := tx.Allocations().Get(ctx, allocationID)
		if err != nil {
			return err
		}
		if err := appendMovement(ctx, tx, &execution.MovementRecord{
			DocumentKind: execution.KindDisbursement,
			DocumentID:   disbursement.ID,
			Description:  "disbursement issued",
			Amount:       disbursement.Amount,
			EventDate:    now,
			ActorID:      actorID,
			FiscalYearID: allocation.FiscalYearID,
		}, now); err != nil {
			return err
		}
		submitted = disbursement
		return nil
	})
	if err != nil {
		result = metrics.ResultError
		return nil, err
	}
	return submitted, nil
}

// Cancel voids an issued disbursement and releases the settlement
// headroom it consumed.
func (s *DisbursementService) Cancel(ctx context.Context, id, actorID string) (*execution.Disbursement, error) {
	start := time.Now()
	result := metrics.ResultSuccess
	defer func() {
		metrics.ObserveCancel("disbursement", result, time.Since(start))
	}()

	now := s.clock.Now()
	var cancelled *execution.Disbursement
	err := runWithRetry(ctx, s.uow, "disbursement", s.cfg.MaxSubmitRetries, func(tx execution.Tx) error {
		disbursement, err := tx.Disbursements().GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if err := disbursement.CanCancel(); err != nil {
			return err
		}

		settlement, err := tx.Settlements().GetForUpdate(ctx, disbursement.SettlementID)
		if err != nil {
			return err
		}
		settlement.ApplyPaid(disbursement.Amount.Neg())
		settlement.UpdatedAt = now
		if err := tx.Settlements().Save(ctx, settlement); err != nil {
			return err
		}

		disbursement.Status = execution.StatusCancelled
		disbursement.UpdatedAt = now
		if err := tx.Disbursements().Save(ctx, disbursement); err != nil {
			return err
		}

		allocationID, err := s.refreshPaidProjection(ctx, tx, settlement.CommitmentID, now)
		if err != nil {
			return err
		}
		allocation, err := tx.Allocations().Get(ctx, allocationID)
		if err != nil {
			return err
		}
		if err := appendMovement(ctx, tx, &execution.MovementRecord{
			DocumentKind: execution.KindDisbursement,
			DocumentID:   disbursement.ID,
			Description:  "disbursement cancelled",
			Amount:       disbursement.Amount.Neg(),
			EventDate:    now,
			ActorID:      actorID,
			FiscalYearID: allocation.FiscalYearID,
		}, now); err != nil {
			return err
		}
		cancelled = disbursement
		return nil
	})
	if err != nil {
		result = metrics.ResultError
		return nil, err
	}
	return cancelled, nil
}

// Get loads one disbursement.
func (s *DisbursementService) Get(ctx context.Context, id string) (*execution.Disbursement, error) {
	var disbursement *execution.Disbursement
	err := s.uow.ReadOnly(ctx, func(tx execution.Tx) error {
		var err error
		disbursement, err = tx.Disbursements().Get(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return disbursement, nil
}

// refreshPaidProjection recomputes the commitment's paid figure from the
// issued disbursements of its settlements. It returns the allocation ID
// for movement attribution.
func (s *DisbursementService) refreshPaidProjection(ctx context.Context, tx execution.Tx, commitmentID string, now time.Time) (string, error) {
	commitment, err := tx.Commitments().GetForUpdate(ctx, commitmentID)
	if err != nil {
		return "", err
	}
	totalPaid, err := tx.Disbursements().SumIssuedByCommitment(ctx, commitmentID)
	if err != nil {
		return "", err
	}
	commitment.ApplyPaid(totalPaid)
	commitment.UpdatedAt = now
	if err := tx.Commitments().Save(ctx, commitment); err != nil {
		return "", err
	}
	return commitment.AllocationID, nil
}

func payableState(status execution.DocumentStatus) error {
	switch status {
	case execution.StatusIssued, execution.StatusPartiallyPaid:
		return nil
	default:
		return &execution.InvalidParentStateError{
			Expected: []execution.DocumentStatus{execution.StatusIssued, execution.StatusPartiallyPaid},
			Actual:   status,
		}
	}
}
