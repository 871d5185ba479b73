package execution

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func dec(value string) decimal.Decimal {
	d, err := decimal.NewFromString(value)
	if err != nil {
		panic(err)
	}
	return d
}

func activeAllocation(initial string) *Allocation {
	return &Allocation{
		ID:                 "alloc-1",
		FiscalYearID:       "fy-2025",
		OrgUnitID:          "unit-1",
		ClassificationCode: "3.3.90.30",
		InitialAmount:      dec(initial),
		Status:             AllocationActive,
	}
}

func TestAllocationBalances(t *testing.T) {
	a := activeAllocation("100000")
	a.SupplementedAmount = dec("20000")
	a.AnnulledAmount = dec("5000")
	a.CommittedAmount = dec("40000")
	a.BlockedAmount = dec("10000")

	if got := a.TotalAmount(); !got.Equal(dec("115000")) {
		t.Fatalf("total = %s, want 115000", got)
	}
	if got := a.AvailableBalance(); !got.Equal(dec("65000")) {
		t.Fatalf("available = %s, want 65000", got)
	}
}

func TestAllocationValidateCollectsAllViolations(t *testing.T) {
	a := &Allocation{InitialAmount: dec("-1")}
	err := a.Validate()
	if err == nil {
		t.Fatal("expected validation error")
	}
	var errs ValidationErrors
	if !errors.As(err, &errs) {
		t.Fatalf("got %T, want ValidationErrors", err)
	}
	if len(errs) < 4 {
		t.Fatalf("got %d violations, want at least 4: %v", len(errs), errs)
	}
}

func TestAllocationDebitInsufficient(t *testing.T) {
	a := activeAllocation("1000")
	err := a.Debit(dec("1500"))
	var balanceErr *InsufficientBalanceError
	if !errors.As(err, &balanceErr) {
		t.Fatalf("got %v, want InsufficientBalanceError", err)
	}
	if !balanceErr.Available.Equal(dec("1000")) || !balanceErr.Requested.Equal(dec("1500")) {
		t.Fatalf("fields = %s/%s, want 1000/1500", balanceErr.Available, balanceErr.Requested)
	}
	if !a.CommittedAmount.IsZero() {
		t.Fatal("failed debit must not move the balance")
	}
}

func TestAllocationDebitCreditRoundTrip(t *testing.T) {
	a := activeAllocation("100000")
	if err := a.Debit(dec("60000")); err != nil {
		t.Fatalf("debit: %v", err)
	}
	if got := a.AvailableBalance(); !got.Equal(dec("40000")) {
		t.Fatalf("available = %s, want 40000", got)
	}
	a.Credit(dec("60000"))
	if got := a.AvailableBalance(); !got.Equal(dec("100000")) {
		t.Fatalf("available = %s, want 100000", got)
	}
}

func TestAllocationCreditClampsAtZero(t *testing.T) {
	a := activeAllocation("1000")
	if err := a.Debit(dec("300")); err != nil {
		t.Fatalf("debit: %v", err)
	}
	a.Credit(dec("500"))
	if !a.CommittedAmount.IsZero() {
		t.Fatalf("committed = %s, want 0", a.CommittedAmount)
	}
}

func TestAllocationAnnulLimitedByAvailable(t *testing.T) {
	a := activeAllocation("1000")
	if err := a.Debit(dec("800")); err != nil {
		t.Fatalf("debit: %v", err)
	}
	err := a.Annul(dec("300"))
	var balanceErr *InsufficientBalanceError
	if !errors.As(err, &balanceErr) {
		t.Fatalf("got %v, want InsufficientBalanceError", err)
	}
	if err := a.Annul(dec("200")); err != nil {
		t.Fatalf("annul: %v", err)
	}
	if got := a.AvailableBalance(); !got.IsZero() {
		t.Fatalf("available = %s, want 0", got)
	}
}

func TestAllocationBlockUnblock(t *testing.T) {
	a := activeAllocation("1000")
	if err := a.Block(dec("400")); err != nil {
		t.Fatalf("block: %v", err)
	}
	if got := a.AvailableBalance(); !got.Equal(dec("600")) {
		t.Fatalf("available = %s, want 600", got)
	}
	if err := a.Block(dec("700")); err == nil {
		t.Fatal("expected block beyond available to fail")
	}
	a.Unblock(dec("500"))
	if !a.BlockedAmount.IsZero() {
		t.Fatalf("blocked = %s, want 0", a.BlockedAmount)
	}
}
