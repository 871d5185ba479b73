package execution

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentMethod names how funds leave the treasury account.
type PaymentMethod string

const (
	PaymentBankTransfer PaymentMethod = "bank_transfer"
	PaymentCheck        PaymentMethod = "check"
	PaymentPix          PaymentMethod = "pix"
)

// ValidPaymentMethod reports whether the method is known.
func ValidPaymentMethod(method PaymentMethod) bool {
	switch method {
	case PaymentBankTransfer, PaymentCheck, PaymentPix:
		return true
	default:
		return false
	}
}

// Disbursement is the third stage of expenditure: the actual funds
// transfer to the creditor against a settled right.
type Disbursement struct {
	ID             string
	SettlementID   string
	PaymentDate    time.Time
	Amount         decimal.Decimal
	PaymentMethod  PaymentMethod
	BankAccountID  string
	Status         DocumentStatus
	SequenceNumber string
	Version        int64
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Validate checks required fields and date rules. The payment may not
// precede the parent settlement.
func (d *Disbursement) Validate(parent *Settlement, today time.Time) error {
	var errs ValidationErrors
	if d.SettlementID == "" {
		errs = append(errs, &ValidationError{Field: "settlement", Reason: "required"})
	}
	if !d.Amount.IsPositive() {
		errs = append(errs, &ValidationError{Field: "amount", Reason: "must be greater than zero"})
	}
	if !ValidPaymentMethod(d.PaymentMethod) {
		errs = append(errs, &ValidationError{Field: "payment_method", Reason: "must be bank_transfer, check or pix"})
	}
	if d.BankAccountID == "" {
		errs = append(errs, &ValidationError{Field: "bank_account", Reason: "required"})
	}
	if d.PaymentDate.IsZero() {
		errs = append(errs, &ValidationError{Field: "payment_date", Reason: "required"})
	} else {
		if d.PaymentDate.After(today) {
			errs = append(errs, &ValidationError{Field: "payment_date", Reason: "must not be in the future"})
		}
		if parent != nil && !parent.SettlementDate.IsZero() && d.PaymentDate.Before(parent.SettlementDate) {
			errs = append(errs, &ValidationError{Field: "payment_date", Reason: "must not precede the settlement date"})
		}
	}
	return errs.OrNil()
}

// MarkIssued applies the submission transition.
func (d *Disbursement) MarkIssued(sequenceNumber string, now time.Time) error {
	if d.Status != StatusDraft {
		return &InvalidParentStateError{Expected: []DocumentStatus{StatusDraft}, Actual: d.Status}
	}
	d.Status = StatusIssued
	d.SequenceNumber = sequenceNumber
	d.UpdatedAt = now
	return nil
}

// CanCancel reports whether the disbursement may be cancelled.
func (d *Disbursement) CanCancel() error {
	if d.Status != StatusIssued {
		return &InvalidParentStateError{Expected: []DocumentStatus{StatusIssued}, Actual: d.Status}
	}
	return nil
}
