package postgres

import (
	"context"
	"database/sql"
	"errors"

	execution "govnext-ledger/internal/execution/domain"
)

const settlementColumns = `id, commitment_id, settlement_date, total_amount, paid_amount,
	status, sequence_number, version, created_at, updated_at`

type settlementStore struct {
	tx *sql.Tx
}

func (s *settlementStore) Create(ctx context.Context, settlement *execution.Settlement) error {
	_, err := s.tx.ExecContext(ctx, `
INSERT INTO settlements (`+settlementColumns+`)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		settlement.ID, settlement.CommitmentID, settlement.SettlementDate,
		settlement.TotalAmount, settlement.PaidAmount,
		string(settlement.Status), nullableString(settlement.SequenceNumber),
		settlement.Version, settlement.CreatedAt, settlement.UpdatedAt)
	if err != nil {
		return err
	}
	for _, doc := range settlement.FiscalDocuments {
		_, err = s.tx.ExecContext(ctx, `
INSERT INTO fiscal_documents (id, settlement_id, number, amount, tax_amount, issue_date)
VALUES ($1, $2, $3, $4, $5, $6)`,
			doc.ID, settlement.ID, doc.Number, doc.Amount, doc.TaxAmount, doc.IssueDate)
		if err != nil {
			return err
		}
	}
	return nil
}

func (s *settlementStore) Get(ctx context.Context, id string) (*execution.Settlement, error) {
	row := s.tx.QueryRowContext(ctx, `
SELECT `+settlementColumns+`
FROM settlements
WHERE id = $1`, id)
	return s.scanWithDocuments(ctx, row)
}

func (s *settlementStore) GetForUpdate(ctx context.Context, id string) (*execution.Settlement, error) {
	row := s.tx.QueryRowContext(ctx, `
SELECT `+settlementColumns+`
FROM settlements
WHERE id = $1
FOR UPDATE`, id)
	return s.scanWithDocuments(ctx, row)
}

// Save updates the settlement header. Fiscal documents are written once
// at creation and never change afterwards.
func (s *settlementStore) Save(ctx context.Context, settlement *execution.Settlement) error {
	result, err := s.tx.ExecContext(ctx, `
UPDATE settlements
SET paid_amount = $1, status = $2, sequence_number = $3,
	version = version + 1, updated_at = $4
WHERE id = $5 AND version = $6`,
		settlement.PaidAmount, string(settlement.Status),
		nullableString(settlement.SequenceNumber), settlement.UpdatedAt,
		settlement.ID, settlement.Version)
	if err != nil {
		return err
	}
	return saveOutcome(ctx, s.tx, "settlements", settlement.ID, result)
}

func (s *settlementStore) CountActiveByCommitment(ctx context.Context, commitmentID string) (int, error) {
	var count int
	err := s.tx.QueryRowContext(ctx, `
SELECT COUNT(*)
FROM settlements
WHERE commitment_id = $1 AND status NOT IN ('draft', 'cancelled')`, commitmentID).Scan(&count)
	if err != nil {
		return 0, err
	}
	return count, nil
}

func (s *settlementStore) scanWithDocuments(ctx context.Context, row *sql.Row) (*execution.Settlement, error) {
	settlement, err := scanSettlement(row)
	if err != nil {
		return nil, err
	}
	rows, err := s.tx.QueryContext(ctx, `
SELECT id, settlement_id, number, amount, tax_amount, issue_date
FROM fiscal_documents
WHERE settlement_id = $1
ORDER BY id`, settlement.ID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var doc execution.FiscalDocument
		if err := rows.Scan(&doc.ID, &doc.SettlementID, &doc.Number, &doc.Amount, &doc.TaxAmount, &doc.IssueDate); err != nil {
			return nil, err
		}
		settlement.FiscalDocuments = append(settlement.FiscalDocuments, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return settlement, nil
}

func scanSettlement(row *sql.Row) (*execution.Settlement, error) {
	var settlement execution.Settlement
	var status string
	var sequence sql.NullString
	err := row.Scan(
		&settlement.ID, &settlement.CommitmentID, &settlement.SettlementDate,
		&settlement.TotalAmount, &settlement.PaidAmount,
		&status, &sequence,
		&settlement.Version, &settlement.CreatedAt, &settlement.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, execution.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	settlement.Status = execution.DocumentStatus(status)
	settlement.SequenceNumber = sequence.String
	return &settlement, nil
}
