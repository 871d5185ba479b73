package application

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"

	execution "govnext-ledger/internal/execution/domain"
)

// Balance is the consumed-versus-available snapshot of one document.
type Balance struct {
	DocumentKind execution.DocumentKind
	DocumentID   string
	Total        decimal.Decimal
	Consumed     decimal.Decimal
	Available    decimal.Decimal
}

// QueryService serves read-only ledger projections.
type QueryService struct {
	uow execution.UnitOfWork
}

// NewQueryService constructs a query service.
func NewQueryService(uow execution.UnitOfWork) (*QueryService, error) {
	if uow == nil {
		return nil, errors.New("query service: nil unit of work")
	}
	return &QueryService{uow: uow}, nil
}

// AllocationBalance reports an allocation's authorized total, the amount
// held by commitments and blocks, and what remains available.
func (s *QueryService) AllocationBalance(ctx context.Context, id string) (*Balance, error) {
	var balance *Balance
	err := s.uow.ReadOnly(ctx, func(tx execution.Tx) error {
		allocation, err := tx.Allocations().Get(ctx, id)
		if err != nil {
			return err
		}
		balance = &Balance{
			DocumentKind: execution.KindAllocation,
			DocumentID:   allocation.ID,
			Total:        allocation.TotalAmount(),
			Consumed:     allocation.CommittedAmount.Add(allocation.BlockedAmount),
			Available:    allocation.AvailableBalance(),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return balance, nil
}

// CommitmentBalance reports a commitment's total, settled amount and the
// headroom still open to settlement.
func (s *QueryService) CommitmentBalance(ctx context.Context, id string) (*Balance, error) {
	var balance *Balance
	err := s.uow.ReadOnly(ctx, func(tx execution.Tx) error {
		commitment, err := tx.Commitments().Get(ctx, id)
		if err != nil {
			return err
		}
		balance = &Balance{
			DocumentKind: execution.KindCommitment,
			DocumentID:   commitment.ID,
			Total:        commitment.TotalAmount,
			Consumed:     commitment.SettledAmount,
			Available:    commitment.Headroom(),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return balance, nil
}

// SettlementBalance reports a settlement's total, paid amount and the
// headroom still open to disbursement.
func (s *QueryService) SettlementBalance(ctx context.Context, id string) (*Balance, error) {
	var balance *Balance
	err := s.uow.ReadOnly(ctx, func(tx execution.Tx) error {
		settlement, err := tx.Settlements().Get(ctx, id)
		if err != nil {
			return err
		}
		balance = &Balance{
			DocumentKind: execution.KindSettlement,
			DocumentID:   settlement.ID,
			Total:        settlement.TotalAmount,
			Consumed:     settlement.PaidAmount,
			Available:    settlement.Headroom(),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return balance, nil
}

// Movements lists movement history, newest first.
func (s *QueryService) Movements(ctx context.Context, filter execution.MovementFilter) ([]*execution.MovementRecord, error) {
	var records []*execution.MovementRecord
	err := s.uow.ReadOnly(ctx, func(tx execution.Tx) error {
		var err error
		records, err = tx.Movements().List(ctx, filter)
		return err
	})
	if err != nil {
		return nil, err
	}
	return records, nil
}

// Allocation loads one allocation.
func (s *QueryService) Allocation(ctx context.Context, id string) (*execution.Allocation, error) {
	var allocation *execution.Allocation
	err := s.uow.ReadOnly(ctx, func(tx execution.Tx) error {
		var err error
		allocation, err = tx.Allocations().Get(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return allocation, nil
}
