package execution

import (
	"time"

	"github.com/shopspring/decimal"
)

// Settlement is the second stage of expenditure: recognition of the
// creditor's earned right to payment, backed by fiscal documents.
type Settlement struct {
	ID              string
	CommitmentID    string
	SettlementDate  time.Time
	TotalAmount     decimal.Decimal
	PaidAmount      decimal.Decimal
	Status          DocumentStatus
	SequenceNumber  string
	FiscalDocuments []FiscalDocument
	Version         int64
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// FiscalDocument is one invoice, receipt or equivalent proving delivery.
type FiscalDocument struct {
	ID           string
	SettlementID string
	Number       string
	Amount       decimal.Decimal
	TaxAmount    decimal.Decimal
	IssueDate    time.Time
}

// ComputeTotal derives the settlement total as the sum of its fiscal
// documents.
func (s *Settlement) ComputeTotal() {
	total := decimal.Zero
	for _, doc := range s.FiscalDocuments {
		total = total.Add(doc.Amount)
	}
	s.TotalAmount = total
}

// Headroom is the balance still open to disbursement.
func (s *Settlement) Headroom() decimal.Decimal {
	return s.TotalAmount.Sub(s.PaidAmount)
}

// Validate checks the settlement against its parent commitment. The
// earliest legal issue date for a fiscal document is the commitment date;
// the latest is today.
func (s *Settlement) Validate(parent *Commitment, today time.Time) error {
	var errs ValidationErrors
	if s.CommitmentID == "" {
		errs = append(errs, &ValidationError{Field: "commitment", Reason: "required"})
	}
	if len(s.FiscalDocuments) == 0 {
		errs = append(errs, &ValidationError{Field: "fiscal_documents", Reason: "at least one fiscal document required"})
	}
	if s.SettlementDate.IsZero() {
		errs = append(errs, &ValidationError{Field: "settlement_date", Reason: "required"})
	} else if s.SettlementDate.After(today) {
		errs = append(errs, &ValidationError{Field: "settlement_date", Reason: "must not be in the future"})
	}
	for _, doc := range s.FiscalDocuments {
		if doc.Number == "" {
			errs = append(errs, &ValidationError{Field: "fiscal_documents.number", Reason: "required"})
		}
		if !doc.Amount.IsPositive() {
			errs = append(errs, &ValidationError{Field: "fiscal_documents.amount", Reason: "must be greater than zero"})
		}
		if doc.TaxAmount.IsNegative() {
			errs = append(errs, &ValidationError{Field: "fiscal_documents.tax_amount", Reason: "must not be negative"})
		}
		if doc.TaxAmount.GreaterThan(doc.Amount) {
			errs = append(errs, &ValidationError{Field: "fiscal_documents.tax_amount", Reason: "must not exceed the document amount"})
		}
		if doc.IssueDate.IsZero() {
			errs = append(errs, &ValidationError{Field: "fiscal_documents.issue_date", Reason: "required"})
		} else {
			if doc.IssueDate.After(today) {
				errs = append(errs, &ValidationError{Field: "fiscal_documents.issue_date", Reason: "must not be in the future"})
			}
			if parent != nil && !parent.CommitmentDate.IsZero() && doc.IssueDate.Before(parent.CommitmentDate) {
				errs = append(errs, &ValidationError{Field: "fiscal_documents.issue_date", Reason: "must not precede the commitment date"})
			}
		}
	}
	if !s.TotalAmount.IsPositive() {
		errs = append(errs, &ValidationError{Field: "total_amount", Reason: "must be greater than zero"})
	}
	return errs.OrNil()
}

// MarkIssued applies the submission transition.
func (s *Settlement) MarkIssued(sequenceNumber string, now time.Time) error {
	if s.Status != StatusDraft {
		return &InvalidParentStateError{Expected: []DocumentStatus{StatusDraft}, Actual: s.Status}
	}
	s.Status = StatusIssued
	s.SequenceNumber = sequenceNumber
	s.UpdatedAt = now
	return nil
}

// CanCancel reports whether the settlement may be cancelled. Blocked while
// disbursements hold balance.
func (s *Settlement) CanCancel() error {
	if s.Status == StatusCancelled || s.Status == StatusDraft {
		return &InvalidParentStateError{Expected: []DocumentStatus{StatusIssued}, Actual: s.Status}
	}
	if s.PaidAmount.IsPositive() {
		return &ChildBalanceExistsError{ChildCount: 1}
	}
	return nil
}

// ApplyPaid adjusts the paid balance and recomputes the derived status.
// The delta is negative on disbursement cancellation.
func (s *Settlement) ApplyPaid(delta decimal.Decimal) {
	s.PaidAmount = s.PaidAmount.Add(delta)
	if s.PaidAmount.IsNegative() {
		s.PaidAmount = decimal.Zero
	}
	if s.Status == StatusCancelled || s.Status == StatusDraft {
		return
	}
	switch {
	case s.PaidAmount.GreaterThanOrEqual(s.TotalAmount):
		s.Status = StatusPaid
	case s.PaidAmount.IsPositive():
		s.Status = StatusPartiallyPaid
	default:
		s.Status = StatusIssued
	}
}
