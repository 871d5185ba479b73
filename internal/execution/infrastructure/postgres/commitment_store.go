package postgres

import (
	"context"
	"database/sql"
	"errors"

	execution "govnext-ledger/internal/execution/domain"
)

const commitmentColumns = `id, allocation_id, creditor_id, object, kind, commitment_date,
	total_amount, settled_amount, paid_amount, status, sequence_number,
	version, created_at, updated_at`

type commitmentStore struct {
	tx *sql.Tx
}

func (s *commitmentStore) Create(ctx context.Context, commitment *execution.Commitment) error {
	_, err := s.tx.ExecContext(ctx, `
INSERT INTO commitments (`+commitmentColumns+`)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
		commitment.ID, commitment.AllocationID, commitment.CreditorID, commitment.Object,
		string(commitment.Kind), commitment.CommitmentDate,
		commitment.TotalAmount, commitment.SettledAmount, commitment.PaidAmount,
		string(commitment.Status), nullableString(commitment.SequenceNumber),
		commitment.Version, commitment.CreatedAt, commitment.UpdatedAt)
	if err != nil {
		return err
	}
	for _, item := range commitment.LineItems {
		_, err = s.tx.ExecContext(ctx, `
INSERT INTO commitment_line_items (id, commitment_id, description, quantity, unit_price)
VALUES ($1, $2, $3, $4, $5)`,
			item.ID, commitment.ID, item.Description, item.Quantity, item.UnitPrice)
		if err != nil {
			return err
		}
	}
	return nil
}

func (s *commitmentStore) Get(ctx context.Context, id string) (*execution.Commitment, error) {
	row := s.tx.QueryRowContext(ctx, `
SELECT `+commitmentColumns+`
FROM commitments
WHERE id = $1`, id)
	return s.scanWithItems(ctx, row)
}

func (s *commitmentStore) GetForUpdate(ctx context.Context, id string) (*execution.Commitment, error) {
	row := s.tx.QueryRowContext(ctx, `
SELECT `+commitmentColumns+`
FROM commitments
WHERE id = $1
FOR UPDATE`, id)
	return s.scanWithItems(ctx, row)
}

// Save updates the commitment header. Line items are written once at
// creation and never change afterwards.
func (s *commitmentStore) Save(ctx context.Context, commitment *execution.Commitment) error {
	result, err := s.tx.ExecContext(ctx, `
UPDATE commitments
SET settled_amount = $1, paid_amount = $2, status = $3, sequence_number = $4,
	version = version + 1, updated_at = $5
WHERE id = $6 AND version = $7`,
		commitment.SettledAmount, commitment.PaidAmount, string(commitment.Status),
		nullableString(commitment.SequenceNumber), commitment.UpdatedAt,
		commitment.ID, commitment.Version)
	if err != nil {
		return err
	}
	return saveOutcome(ctx, s.tx, "commitments", commitment.ID, result)
}

func (s *commitmentStore) scanWithItems(ctx context.Context, row *sql.Row) (*execution.Commitment, error) {
	commitment, err := scanCommitment(row)
	if err != nil {
		return nil, err
	}
	rows, err := s.tx.QueryContext(ctx, `
SELECT id, commitment_id, description, quantity, unit_price
FROM commitment_line_items
WHERE commitment_id = $1
ORDER BY id`, commitment.ID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var item execution.LineItem
		if err := rows.Scan(&item.ID, &item.CommitmentID, &item.Description, &item.Quantity, &item.UnitPrice); err != nil {
			return nil, err
		}
		commitment.LineItems = append(commitment.LineItems, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return commitment, nil
}

func scanCommitment(row *sql.Row) (*execution.Commitment, error) {
	var commitment execution.Commitment
	var kind, status string
	var sequence sql.NullString
	err := row.Scan(
		&commitment.ID, &commitment.AllocationID, &commitment.CreditorID, &commitment.Object,
		&kind, &commitment.CommitmentDate,
		&commitment.TotalAmount, &commitment.SettledAmount, &commitment.PaidAmount,
		&status, &sequence,
		&commitment.Version, &commitment.CreatedAt, &commitment.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, execution.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	commitment.Kind = execution.CommitmentKind(kind)
	commitment.Status = execution.DocumentStatus(status)
	commitment.SequenceNumber = sequence.String
	return &commitment, nil
}

func nullableString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
