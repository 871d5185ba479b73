package execution

import (
	"time"

	"github.com/shopspring/decimal"
)

// AllocationStatus is the lifecycle state of a budget allocation.
type AllocationStatus string

const (
	AllocationActive    AllocationStatus = "active"
	AllocationCancelled AllocationStatus = "cancelled"
)

// Allocation is the authorized spending limit for one
// (fiscal year, org unit, classification) tuple and its running balance.
type Allocation struct {
	ID                 string
	FiscalYearID       string
	OrgUnitID          string
	ClassificationCode string
	InitialAmount      decimal.Decimal
	SupplementedAmount decimal.Decimal
	AnnulledAmount     decimal.Decimal
	CommittedAmount    decimal.Decimal
	BlockedAmount      decimal.Decimal
	Status             AllocationStatus
	Version            int64
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// TotalAmount is initial + supplemented - annulled.
func (a *Allocation) TotalAmount() decimal.Decimal {
	return a.InitialAmount.Add(a.SupplementedAmount).Sub(a.AnnulledAmount)
}

// AvailableBalance is total - committed - blocked. The ledger invariant
// keeps this non-negative at all times.
func (a *Allocation) AvailableBalance() decimal.Decimal {
	return a.TotalAmount().Sub(a.CommittedAmount).Sub(a.BlockedAmount)
}

// Validate checks the allocation's amount rules.
func (a *Allocation) Validate() error {
	var errs ValidationErrors
	if a.FiscalYearID == "" {
		errs = append(errs, &ValidationError{Field: "fiscal_year", Reason: "required"})
	}
	if a.OrgUnitID == "" {
		errs = append(errs, &ValidationError{Field: "org_unit", Reason: "required"})
	}
	if a.ClassificationCode == "" {
		errs = append(errs, &ValidationError{Field: "classification", Reason: "required"})
	}
	if !a.InitialAmount.IsPositive() {
		errs = append(errs, &ValidationError{Field: "initial_amount", Reason: "must be greater than zero"})
	}
	if a.SupplementedAmount.IsNegative() {
		errs = append(errs, &ValidationError{Field: "supplemented_amount", Reason: "must not be negative"})
	}
	if a.AnnulledAmount.IsNegative() {
		errs = append(errs, &ValidationError{Field: "annulled_amount", Reason: "must not be negative"})
	}
	return errs.OrNil()
}

// Debit reserves balance for a commitment. Fails when the amount exceeds
// the available balance; never leaves the invariant violated.
func (a *Allocation) Debit(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return &ValidationError{Field: "amount", Reason: "must be greater than zero"}
	}
	available := a.AvailableBalance()
	if amount.GreaterThan(available) {
		return &InsufficientBalanceError{Available: available, Requested: amount}
	}
	a.CommittedAmount = a.CommittedAmount.Add(amount)
	return nil
}

// Credit releases previously committed balance, clamped at zero. Used on
// commitment cancellation.
func (a *Allocation) Credit(amount decimal.Decimal) {
	a.CommittedAmount = a.CommittedAmount.Sub(amount)
	if a.CommittedAmount.IsNegative() {
		a.CommittedAmount = decimal.Zero
	}
}

// Supplement raises the authorized total.
func (a *Allocation) Supplement(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return &ValidationError{Field: "amount", Reason: "must be greater than zero"}
	}
	a.SupplementedAmount = a.SupplementedAmount.Add(amount)
	return nil
}

// Annul lowers the authorized total. The cut may not consume balance that
// is already committed or blocked.
func (a *Allocation) Annul(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return &ValidationError{Field: "amount", Reason: "must be greater than zero"}
	}
	available := a.AvailableBalance()
	if amount.GreaterThan(available) {
		return &InsufficientBalanceError{Available: available, Requested: amount}
	}
	a.AnnulledAmount = a.AnnulledAmount.Add(amount)
	return nil
}

// Block places an administrative hold against the available balance.
func (a *Allocation) Block(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return &ValidationError{Field: "amount", Reason: "must be greater than zero"}
	}
	available := a.AvailableBalance()
	if amount.GreaterThan(available) {
		return &InsufficientBalanceError{Available: available, Requested: amount}
	}
	a.BlockedAmount = a.BlockedAmount.Add(amount)
	return nil
}

// Unblock releases an administrative hold, clamped at zero.
func (a *Allocation) Unblock(amount decimal.Decimal) {
	a.BlockedAmount = a.BlockedAmount.Sub(amount)
	if a.BlockedAmount.IsNegative() {
		a.BlockedAmount = decimal.Zero
	}
}
