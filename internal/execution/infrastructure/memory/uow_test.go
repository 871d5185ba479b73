package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	execution "govnext-ledger/internal/execution/domain"
)

func testAllocation(id string) *execution.Allocation {
	return &execution.Allocation{
		ID:                 id,
		FiscalYearID:       "fy-2025",
		OrgUnitID:          "unit-1",
		ClassificationCode: "3.3.90.30",
		InitialAmount:      decimal.RequireFromString("1000"),
		SupplementedAmount: decimal.Zero,
		AnnulledAmount:     decimal.Zero,
		CommittedAmount:    decimal.Zero,
		BlockedAmount:      decimal.Zero,
		Status:             execution.AllocationActive,
	}
}

func TestFailedTxLeavesNoTrace(t *testing.T) {
	uow := NewUnitOfWork()
	ctx := context.Background()
	boom := errors.New("boom")

	err := uow.WithinTx(ctx, func(tx execution.Tx) error {
		if err := tx.Allocations().Create(ctx, testAllocation("a-1")); err != nil {
			return err
		}
		if err := tx.Movements().Append(ctx, &execution.MovementRecord{ID: "m-1"}); err != nil {
			return err
		}
		if _, err := tx.NextNumber(ctx, execution.KindCommitment, 2025); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("got %v, want boom", err)
	}

	err = uow.ReadOnly(ctx, func(tx execution.Tx) error {
		if _, err := tx.Allocations().Get(ctx, "a-1"); !errors.Is(err, execution.ErrNotFound) {
			t.Fatalf("allocation leaked: %v", err)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if got := uow.Movements(); len(got) != 0 {
		t.Fatalf("movement leaked: %d records", len(got))
	}

	// The counter increment rolled back too, so the series stays gap-free.
	err = uow.WithinTx(ctx, func(tx execution.Tx) error {
		number, err := tx.NextNumber(ctx, execution.KindCommitment, 2025)
		if err != nil {
			return err
		}
		if number != "000001/2025" {
			t.Fatalf("number = %s, want 000001/2025", number)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("next number: %v", err)
	}
}

func TestSaveDetectsStaleVersion(t *testing.T) {
	uow := NewUnitOfWork()
	ctx := context.Background()

	err := uow.WithinTx(ctx, func(tx execution.Tx) error {
		return tx.Allocations().Create(ctx, testAllocation("a-1"))
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	// First save bumps the version in the base store.
	err = uow.WithinTx(ctx, func(tx execution.Tx) error {
		allocation, err := tx.Allocations().GetForUpdate(ctx, "a-1")
		if err != nil {
			return err
		}
		return tx.Allocations().Save(ctx, allocation)
	})
	if err != nil {
		t.Fatalf("first save: %v", err)
	}

	stale := testAllocation("a-1")
	err = uow.WithinTx(ctx, func(tx execution.Tx) error {
		return tx.Allocations().Save(ctx, stale)
	})
	if !errors.Is(err, execution.ErrStaleState) {
		t.Fatalf("got %v, want ErrStaleState", err)
	}
}

func TestSaveUnknownDocumentIsNotFound(t *testing.T) {
	uow := NewUnitOfWork()
	ctx := context.Background()

	err := uow.WithinTx(ctx, func(tx execution.Tx) error {
		return tx.Allocations().Save(ctx, testAllocation("missing"))
	})
	if !errors.Is(err, execution.ErrNotFound) {
		t.Fatalf("got %v, want ErrNotFound", err)
	}
}

func TestReadOnlyRejectsMutations(t *testing.T) {
	uow := NewUnitOfWork()
	ctx := context.Background()

	err := uow.ReadOnly(ctx, func(tx execution.Tx) error {
		return tx.Allocations().Create(ctx, testAllocation("a-1"))
	})
	if !errors.Is(err, ErrReadOnly) {
		t.Fatalf("create: got %v, want ErrReadOnly", err)
	}
	err = uow.ReadOnly(ctx, func(tx execution.Tx) error {
		_, err := tx.NextNumber(ctx, execution.KindCommitment, 2025)
		return err
	})
	if !errors.Is(err, ErrReadOnly) {
		t.Fatalf("next number: got %v, want ErrReadOnly", err)
	}
}

func TestStagedWritesVisibleWithinTx(t *testing.T) {
	uow := NewUnitOfWork()
	ctx := context.Background()

	err := uow.WithinTx(ctx, func(tx execution.Tx) error {
		if err := tx.Allocations().Create(ctx, testAllocation("a-1")); err != nil {
			return err
		}
		allocation, err := tx.Allocations().Get(ctx, "a-1")
		if err != nil {
			return err
		}
		if allocation.ID != "a-1" {
			t.Fatalf("unexpected allocation %q", allocation.ID)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("tx: %v", err)
	}
}
