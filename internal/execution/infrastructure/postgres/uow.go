package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	execution "govnext-ledger/internal/execution/domain"
	"govnext-ledger/internal/numbering"
)

// UnitOfWork runs ledger operations inside Postgres transactions. Row
// locks taken by GetForUpdate serialize concurrent writers; the version
// check on Save catches anything that slipped past the lock.
type UnitOfWork struct {
	db *sql.DB
}

// NewUnitOfWork constructs a unit of work over an open pool.
func NewUnitOfWork(db *sql.DB) (*UnitOfWork, error) {
	if db == nil {
		return nil, errors.New("postgres uow: nil db")
	}
	return &UnitOfWork{db: db}, nil
}

// WithinTx runs fn in one transaction, committing only when fn returns
// nil. Sequence numbers issued inside fn roll back with the transaction.
func (u *UnitOfWork) WithinTx(ctx context.Context, fn func(tx execution.Tx) error) error {
	return u.run(ctx, nil, fn)
}

// ReadOnly runs fn in a read-only transaction.
func (u *UnitOfWork) ReadOnly(ctx context.Context, fn func(tx execution.Tx) error) error {
	return u.run(ctx, &sql.TxOptions{ReadOnly: true}, fn)
}

func (u *UnitOfWork) run(ctx context.Context, opts *sql.TxOptions, fn func(tx execution.Tx) error) error {
	sqlTx, err := u.db.BeginTx(ctx, opts)
	if err != nil {
		return errors.Join(execution.ErrStorageUnavailable, err)
	}
	t := &tx{tx: sqlTx}
	if err := fn(t); err != nil {
		if rbErr := sqlTx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			return errors.Join(err, rbErr)
		}
		return err
	}
	if err := sqlTx.Commit(); err != nil {
		return errors.Join(execution.ErrStorageUnavailable, err)
	}
	return nil
}

type tx struct {
	tx *sql.Tx
}

func (t *tx) Allocations() execution.AllocationStore     { return &allocationStore{tx: t.tx} }
func (t *tx) Commitments() execution.CommitmentStore     { return &commitmentStore{tx: t.tx} }
func (t *tx) Settlements() execution.SettlementStore     { return &settlementStore{tx: t.tx} }
func (t *tx) Disbursements() execution.DisbursementStore { return &disbursementStore{tx: t.tx} }
func (t *tx) Movements() execution.MovementStore         { return &movementStore{tx: t.tx} }

// NextNumber issues the next sequence number from the counter table. The
// increment commits or rolls back with the enclosing transaction.
func (t *tx) NextNumber(ctx context.Context, kind execution.DocumentKind, year int) (string, error) {
	seriesKind, err := seriesFor(kind)
	if err != nil {
		return "", err
	}
	return numbering.NextInTx(ctx, t.tx, seriesKind, year)
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

// saveOutcome maps an optimistic UPDATE that touched no rows to either a
// missing document or a lost version race.
func saveOutcome(ctx context.Context, sqlTx *sql.Tx, table, id string, result sql.Result) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected > 0 {
		return nil
	}
	var exists bool
	query := fmt.Sprintf("SELECT EXISTS (SELECT 1 FROM %s WHERE id = $1)", table)
	if err := sqlTx.QueryRowContext(ctx, query, id).Scan(&exists); err != nil {
		return err
	}
	if !exists {
		return execution.ErrNotFound
	}
	return execution.ErrStaleState
}
