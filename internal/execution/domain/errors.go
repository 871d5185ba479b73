package execution

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	// ErrNotFound is returned when a ledger document does not exist.
	ErrNotFound = errors.New("execution: not found")
	// ErrAllocationNotActive is returned when an operation targets a
	// cancelled allocation.
	ErrAllocationNotActive = errors.New("execution: allocation is not active")
	// ErrStaleState is returned when a transaction loses a version check
	// against a concurrent writer. Callers retry with fresh data.
	ErrStaleState = errors.New("execution: stale state")
	// ErrContention is returned after the bounded retry budget for
	// optimistic conflicts is exhausted.
	ErrContention = errors.New("execution: too much contention")
	// ErrStorageUnavailable is returned when the storage layer fails.
	// The ledger never retries it silently: under-logging a fiscal
	// movement is a compliance defect.
	ErrStorageUnavailable = errors.New("execution: storage unavailable")
)

// ValidationError reports a single violated field rule. Submissions and
// drafts reject with every violation listed, never just the first.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("execution: validation failed: %s: %s", e.Field, e.Reason)
}

// ValidationErrors aggregates all violated rules of one request.
type ValidationErrors []*ValidationError

func (e ValidationErrors) Error() string {
	parts := make([]string, 0, len(e))
	for _, v := range e {
		parts = append(parts, v.Field+": "+v.Reason)
	}
	return "execution: validation failed: " + strings.Join(parts, "; ")
}

// OrNil returns the aggregate as an error, or nil when empty.
func (e ValidationErrors) OrNil() error {
	if len(e) == 0 {
		return nil
	}
	return e
}

// InsufficientBalanceError reports a debit larger than the parent's
// available balance. No state changes when it is returned.
type InsufficientBalanceError struct {
	Available decimal.Decimal
	Requested decimal.Decimal
}

func (e *InsufficientBalanceError) Error() string {
	return fmt.Sprintf("execution: insufficient balance: available %s, requested %s",
		e.Available.StringFixed(2), e.Requested.StringFixed(2))
}

// InvalidParentStateError reports a stage-sequencing violation, such as
// settling a draft commitment.
type InvalidParentStateError struct {
	Expected []DocumentStatus
	Actual   DocumentStatus
}

func (e *InvalidParentStateError) Error() string {
	expected := make([]string, 0, len(e.Expected))
	for _, s := range e.Expected {
		expected = append(expected, string(s))
	}
	return fmt.Sprintf("execution: invalid parent state: expected %s, got %s",
		strings.Join(expected, " or "), e.Actual)
}

// ChildBalanceExistsError reports a cancellation blocked by downstream
// documents that have already debited the target.
type ChildBalanceExistsError struct {
	ChildCount int
}

func (e *ChildBalanceExistsError) Error() string {
	return fmt.Sprintf("execution: cancellation blocked: %d child document(s) hold balance", e.ChildCount)
}
