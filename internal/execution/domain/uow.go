package execution

import (
	"context"

	"github.com/shopspring/decimal"
)

// UnitOfWork provides the transactional boundary for every ledger call.
// WithinTx runs fn atomically: either every store mutation and numbering
// increment commits, or none does. ReadOnly runs fn against a snapshot
// that never blocks writers.
type UnitOfWork interface {
	WithinTx(ctx context.Context, fn func(tx Tx) error) error
	ReadOnly(ctx context.Context, fn func(tx Tx) error) error
}

// Tx exposes the stores bound to one transaction.
type Tx interface {
	Allocations() AllocationStore
	Commitments() CommitmentStore
	Settlements() SettlementStore
	Disbursements() DisbursementStore
	Movements() MovementStore

	// NextNumber issues the next sequence number for a numbered kind.
	// The increment commits or rolls back with the transaction.
	NextNumber(ctx context.Context, kind DocumentKind, year int) (string, error)
}

// AllocationStore persists allocations. GetForUpdate acquires the row
// lock that serializes concurrent debits; Save enforces the version check
// and returns ErrStaleState on a lost race.
type AllocationStore interface {
	Create(ctx context.Context, allocation *Allocation) error
	Get(ctx context.Context, id string) (*Allocation, error)
	GetForUpdate(ctx context.Context, id string) (*Allocation, error)
	Save(ctx context.Context, allocation *Allocation) error
}

// CommitmentStore persists commitments with their line items.
type CommitmentStore interface {
	Create(ctx context.Context, commitment *Commitment) error
	Get(ctx context.Context, id string) (*Commitment, error)
	GetForUpdate(ctx context.Context, id string) (*Commitment, error)
	Save(ctx context.Context, commitment *Commitment) error
}

// SettlementStore persists settlements with their fiscal documents.
type SettlementStore interface {
	Create(ctx context.Context, settlement *Settlement) error
	Get(ctx context.Context, id string) (*Settlement, error)
	GetForUpdate(ctx context.Context, id string) (*Settlement, error)
	Save(ctx context.Context, settlement *Settlement) error
	// CountActiveByCommitment counts non-cancelled settlements of a
	// commitment, used to report cancellation blockers.
	CountActiveByCommitment(ctx context.Context, commitmentID string) (int, error)
}

// DisbursementStore persists disbursements.
type DisbursementStore interface {
	Create(ctx context.Context, disbursement *Disbursement) error
	Get(ctx context.Context, id string) (*Disbursement, error)
	GetForUpdate(ctx context.Context, id string) (*Disbursement, error)
	Save(ctx context.Context, disbursement *Disbursement) error
	// CountIssuedBySettlement counts issued disbursements of a settlement.
	CountIssuedBySettlement(ctx context.Context, settlementID string) (int, error)
	// SumIssuedByCommitment totals issued disbursements reachable through
	// the commitment's settlements. Feeds the paid projection.
	SumIssuedByCommitment(ctx context.Context, commitmentID string) (decimal.Decimal, error)
}

// MovementFilter narrows movement history queries.
type MovementFilter struct {
	FiscalYearID string
	DocumentKind DocumentKind
	DocumentID   string
	Limit        int
	Offset       int
}

// MovementStore is the append-only movement history.
type MovementStore interface {
	Append(ctx context.Context, record *MovementRecord) error
	List(ctx context.Context, filter MovementFilter) ([]*MovementRecord, error)
}
