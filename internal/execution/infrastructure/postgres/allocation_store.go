package postgres

import (
	"context"
	"database/sql"
	"errors"

	execution "govnext-ledger/internal/execution/domain"
)

const allocationColumns = `id, fiscal_year_id, org_unit_id, classification_code,
	initial_amount, supplemented_amount, annulled_amount, committed_amount, blocked_amount,
	status, version, created_at, updated_at`

type allocationStore struct {
	tx *sql.Tx
}

func (s *allocationStore) Create(ctx context.Context, allocation *execution.Allocation) error {
	_, err := s.tx.ExecContext(ctx, `
INSERT INTO allocations (`+allocationColumns+`)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		allocation.ID, allocation.FiscalYearID, allocation.OrgUnitID, allocation.ClassificationCode,
		allocation.InitialAmount, allocation.SupplementedAmount, allocation.AnnulledAmount,
		allocation.CommittedAmount, allocation.BlockedAmount,
		string(allocation.Status), allocation.Version, allocation.CreatedAt, allocation.UpdatedAt)
	return err
}

func (s *allocationStore) Get(ctx context.Context, id string) (*execution.Allocation, error) {
	row := s.tx.QueryRowContext(ctx, `
SELECT `+allocationColumns+`
FROM allocations
WHERE id = $1`, id)
	return scanAllocation(row)
}

func (s *allocationStore) GetForUpdate(ctx context.Context, id string) (*execution.Allocation, error) {
	row := s.tx.QueryRowContext(ctx, `
SELECT `+allocationColumns+`
FROM allocations
WHERE id = $1
FOR UPDATE`, id)
	return scanAllocation(row)
}

func (s *allocationStore) Save(ctx context.Context, allocation *execution.Allocation) error {
	result, err := s.tx.ExecContext(ctx, `
UPDATE allocations
SET initial_amount = $1, supplemented_amount = $2, annulled_amount = $3,
	committed_amount = $4, blocked_amount = $5, status = $6,
	version = version + 1, updated_at = $7
WHERE id = $8 AND version = $9`,
		allocation.InitialAmount, allocation.SupplementedAmount, allocation.AnnulledAmount,
		allocation.CommittedAmount, allocation.BlockedAmount, string(allocation.Status),
		allocation.UpdatedAt, allocation.ID, allocation.Version)
	if err != nil {
		return err
	}
	return saveOutcome(ctx, s.tx, "allocations", allocation.ID, result)
}

func scanAllocation(row *sql.Row) (*execution.Allocation, error) {
	var allocation execution.Allocation
	var status string
	err := row.Scan(
		&allocation.ID, &allocation.FiscalYearID, &allocation.OrgUnitID, &allocation.ClassificationCode,
		&allocation.InitialAmount, &allocation.SupplementedAmount, &allocation.AnnulledAmount,
		&allocation.CommittedAmount, &allocation.BlockedAmount,
		&status, &allocation.Version, &allocation.CreatedAt, &allocation.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, execution.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	allocation.Status = execution.AllocationStatus(status)
	return &allocation, nil
}
