package memory

import (
	"context"
	"errors"
	"strconv"
	"sync"

	execution "govnext-ledger/internal/execution/domain"
	"govnext-ledger/internal/numbering"
)

// ErrReadOnly is returned when a mutation runs in a read-only transaction.
var ErrReadOnly = errors.New("memory uow: read-only transaction")

// UnitOfWork is an in-memory transactional store for the execution
// context. Write transactions serialize on one lock and stage every
// mutation until fn returns nil, so a failing submission leaves no
// partial state behind, matching the Postgres implementation.
type UnitOfWork struct {
	mu            sync.RWMutex
	allocations   map[string]*execution.Allocation
	commitments   map[string]*execution.Commitment
	settlements   map[string]*execution.Settlement
	disbursements map[string]*execution.Disbursement
	movements     []*execution.MovementRecord
	counters      map[string]int64
}

// NewUnitOfWork constructs an empty store.
func NewUnitOfWork() *UnitOfWork {
	return &UnitOfWork{
		allocations:   make(map[string]*execution.Allocation),
		commitments:   make(map[string]*execution.Commitment),
		settlements:   make(map[string]*execution.Settlement),
		disbursements: make(map[string]*execution.Disbursement),
		counters:      make(map[string]int64),
	}
}

// WithinTx runs fn atomically against staged copies of the stores.
func (u *UnitOfWork) WithinTx(ctx context.Context, fn func(tx execution.Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	u.mu.Lock()
	defer u.mu.Unlock()

	t := newTx(u, false)
	if err := fn(t); err != nil {
		return err
	}
	t.commit()
	return nil
}

// ReadOnly runs fn against a snapshot; mutations fail with ErrReadOnly.
func (u *UnitOfWork) ReadOnly(ctx context.Context, fn func(tx execution.Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	u.mu.RLock()
	defer u.mu.RUnlock()
	return fn(newTx(u, true))
}

// Movements returns a copy of the full movement history, newest last.
// Assertion convenience for tests.
func (u *UnitOfWork) Movements() []*execution.MovementRecord {
	u.mu.RLock()
	defer u.mu.RUnlock()
	out := make([]*execution.MovementRecord, 0, len(u.movements))
	for _, record := range u.movements {
		clone := *record
		out = append(out, &clone)
	}
	return out
}

type tx struct {
	base     *UnitOfWork
	readOnly bool

	stagedAllocations   map[string]*execution.Allocation
	stagedCommitments   map[string]*execution.Commitment
	stagedSettlements   map[string]*execution.Settlement
	stagedDisbursements map[string]*execution.Disbursement
	stagedMovements     []*execution.MovementRecord
	stagedCounters      map[string]int64
}

func newTx(base *UnitOfWork, readOnly bool) *tx {
	return &tx{
		base:                base,
		readOnly:            readOnly,
		stagedAllocations:   make(map[string]*execution.Allocation),
		stagedCommitments:   make(map[string]*execution.Commitment),
		stagedSettlements:   make(map[string]*execution.Settlement),
		stagedDisbursements: make(map[string]*execution.Disbursement),
		stagedCounters:      make(map[string]int64),
	}
}

func (t *tx) commit() {
	for id, allocation := range t.stagedAllocations {
		t.base.allocations[id] = allocation
	}
	for id, commitment := range t.stagedCommitments {
		t.base.commitments[id] = commitment
	}
	for id, settlement := range t.stagedSettlements {
		t.base.settlements[id] = settlement
	}
	for id, disbursement := range t.stagedDisbursements {
		t.base.disbursements[id] = disbursement
	}
	t.base.movements = append(t.base.movements, t.stagedMovements...)
	for key, value := range t.stagedCounters {
		t.base.counters[key] = value
	}
}

func (t *tx) Allocations() execution.AllocationStore     { return (*allocationStore)(t) }
func (t *tx) Commitments() execution.CommitmentStore     { return (*commitmentStore)(t) }
func (t *tx) Settlements() execution.SettlementStore     { return (*settlementStore)(t) }
func (t *tx) Disbursements() execution.DisbursementStore { return (*disbursementStore)(t) }
func (t *tx) Movements() execution.MovementStore         { return (*movementStore)(t) }

// NextNumber increments the staged (kind, year) counter. Staging keeps
// the series gap-free when the transaction fails after numbering.
func (t *tx) NextNumber(ctx context.Context, kind execution.DocumentKind, year int) (string, error) {
	_ = ctx
	if t.readOnly {
		return "", ErrReadOnly
	}
	seriesKind, err := seriesFor(kind)
	if err != nil {
		return "", err
	}
	key := string(seriesKind) + "|" + strconv.Itoa(year)
	last, staged := t.stagedCounters[key]
	if !staged {
		last = t.base.counters[key]
	}
	next := last + 1
	t.stagedCounters[key] = next
	return numbering.Format(next, year), nil
}

func seriesFor(kind execution.DocumentKind) (numbering.Kind, error) {
	switch kind {
	case execution.KindCommitment:
		return numbering.KindCommitment, nil
	case execution.KindSettlement:
		return numbering.KindSettlement, nil
	case execution.KindDisbursement:
		return numbering.KindDisbursement, nil
	default:
		return "", numbering.ErrInvalidKind
	}
}
