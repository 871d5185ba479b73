package execution

import (
	"time"

	"github.com/shopspring/decimal"
)

// CommitmentKind classifies a commitment.
//
// Ordinary and Global commitments itemize what is being committed;
// Estimated commitments cover recurring expenses of unknown exact value
// and carry no line items.
type CommitmentKind string

const (
	CommitmentOrdinary  CommitmentKind = "ordinary"
	CommitmentGlobal    CommitmentKind = "global"
	CommitmentEstimated CommitmentKind = "estimated"
)

// ValidCommitmentKind reports whether the kind is known.
func ValidCommitmentKind(kind CommitmentKind) bool {
	switch kind {
	case CommitmentOrdinary, CommitmentGlobal, CommitmentEstimated:
		return true
	default:
		return false
	}
}

// Commitment is the first stage of expenditure: a reservation of
// allocation balance against a future obligation.
type Commitment struct {
	ID             string
	AllocationID   string
	CreditorID     string
	Object         string
	Kind           CommitmentKind
	CommitmentDate time.Time
	TotalAmount    decimal.Decimal
	SettledAmount  decimal.Decimal
	PaidAmount     decimal.Decimal
	Status         DocumentStatus
	SequenceNumber string
	LineItems      []LineItem
	Version        int64
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// LineItem is one committed product or service.
type LineItem struct {
	ID           string
	CommitmentID string
	Description  string
	Quantity     decimal.Decimal
	UnitPrice    decimal.Decimal
}

// LineTotal is quantity x unit price.
func (li LineItem) LineTotal() decimal.Decimal {
	return li.Quantity.Mul(li.UnitPrice)
}

// ItemsTotal sums the line totals.
func (c *Commitment) ItemsTotal() decimal.Decimal {
	total := decimal.Zero
	for _, item := range c.LineItems {
		total = total.Add(item.LineTotal())
	}
	return total
}

// Headroom is the balance still open to settlement.
func (c *Commitment) Headroom() decimal.Decimal {
	return c.TotalAmount.Sub(c.SettledAmount)
}

// Validate checks required fields, kind-specific line item rules and the
// declared total against the item sum, within the currency-rounding
// tolerance. All violations are reported together.
func (c *Commitment) Validate(today time.Time, tolerance decimal.Decimal) error {
	var errs ValidationErrors
	if c.AllocationID == "" {
		errs = append(errs, &ValidationError{Field: "allocation", Reason: "required"})
	}
	if c.CreditorID == "" {
		errs = append(errs, &ValidationError{Field: "creditor", Reason: "required"})
	}
	if c.Object == "" {
		errs = append(errs, &ValidationError{Field: "object", Reason: "required"})
	}
	if !ValidCommitmentKind(c.Kind) {
		errs = append(errs, &ValidationError{Field: "kind", Reason: "must be ordinary, global or estimated"})
	}
	if !c.TotalAmount.IsPositive() {
		errs = append(errs, &ValidationError{Field: "total_amount", Reason: "must be greater than zero"})
	}
	if c.CommitmentDate.IsZero() {
		errs = append(errs, &ValidationError{Field: "commitment_date", Reason: "required"})
	} else if c.CommitmentDate.After(today) {
		errs = append(errs, &ValidationError{Field: "commitment_date", Reason: "must not be in the future"})
	}

	switch c.Kind {
	case CommitmentEstimated:
		if len(c.LineItems) > 0 {
			errs = append(errs, &ValidationError{Field: "line_items", Reason: "estimated commitments must not itemize"})
		}
	case CommitmentOrdinary, CommitmentGlobal:
		if len(c.LineItems) == 0 {
			errs = append(errs, &ValidationError{Field: "line_items", Reason: "at least one item required"})
		}
		for _, item := range c.LineItems {
			if item.Description == "" {
				errs = append(errs, &ValidationError{Field: "line_items.description", Reason: "required"})
			}
			if !item.Quantity.IsPositive() {
				errs = append(errs, &ValidationError{Field: "line_items.quantity", Reason: "must be greater than zero"})
			}
			if !item.UnitPrice.IsPositive() {
				errs = append(errs, &ValidationError{Field: "line_items.unit_price", Reason: "must be greater than zero"})
			}
		}
		if len(c.LineItems) > 0 && c.TotalAmount.IsPositive() {
			diff := c.TotalAmount.Sub(c.ItemsTotal()).Abs()
			if diff.GreaterThan(tolerance) {
				errs = append(errs, &ValidationError{
					Field:  "total_amount",
					Reason: "must equal the sum of line items within " + tolerance.String(),
				})
			}
		}
	}
	return errs.OrNil()
}

// MarkIssued applies the submission transition.
func (c *Commitment) MarkIssued(sequenceNumber string, now time.Time) error {
	if c.Status != StatusDraft {
		return &InvalidParentStateError{Expected: []DocumentStatus{StatusDraft}, Actual: c.Status}
	}
	c.Status = StatusIssued
	c.SequenceNumber = sequenceNumber
	c.UpdatedAt = now
	return nil
}

// CanCancel reports whether the commitment may be cancelled. Cancellation
// is blocked while downstream settlements hold balance.
func (c *Commitment) CanCancel() error {
	if c.Status == StatusCancelled {
		return &InvalidParentStateError{Expected: []DocumentStatus{StatusIssued}, Actual: c.Status}
	}
	if c.Status == StatusDraft {
		return &InvalidParentStateError{Expected: []DocumentStatus{StatusIssued}, Actual: c.Status}
	}
	if c.SettledAmount.IsPositive() {
		return &ChildBalanceExistsError{ChildCount: 1}
	}
	return nil
}

// ApplySettled adjusts the settled balance and recomputes the derived
// status. The delta is negative on settlement cancellation.
func (c *Commitment) ApplySettled(delta decimal.Decimal) {
	c.SettledAmount = c.SettledAmount.Add(delta)
	if c.SettledAmount.IsNegative() {
		c.SettledAmount = decimal.Zero
	}
	c.refreshDerivedStatus()
}

// ApplyPaid refreshes the aggregate paid projection. This is a displayed
// read-derived figure, not an independent balance.
func (c *Commitment) ApplyPaid(totalPaid decimal.Decimal) {
	if totalPaid.IsNegative() {
		totalPaid = decimal.Zero
	}
	c.PaidAmount = totalPaid
	c.refreshDerivedStatus()
}

func (c *Commitment) refreshDerivedStatus() {
	if c.Status == StatusCancelled || c.Status == StatusDraft {
		return
	}
	switch {
	case c.PaidAmount.GreaterThanOrEqual(c.TotalAmount):
		c.Status = StatusPaid
	case c.PaidAmount.IsPositive():
		c.Status = StatusPartiallyPaid
	case c.SettledAmount.GreaterThanOrEqual(c.TotalAmount):
		c.Status = StatusSettled
	case c.SettledAmount.IsPositive():
		c.Status = StatusPartiallySettled
	default:
		c.Status = StatusIssued
	}
}
