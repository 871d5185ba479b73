package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/shopspring/decimal"

	execution "govnext-ledger/internal/execution/domain"
)

const disbursementColumns = `id, settlement_id, payment_date, amount, payment_method,
	bank_account_id, status, sequence_number, version, created_at, updated_at`

type disbursementStore struct {
	tx *sql.Tx
}

func (s *disbursementStore) Create(ctx context.Context, disbursement *execution.Disbursement) error {
	_, err := s.tx.ExecContext(ctx, `
INSERT INTO disbursements (`+disbursementColumns+`)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		disbursement.ID, disbursement.SettlementID, disbursement.PaymentDate,
		disbursement.Amount, string(disbursement.PaymentMethod), disbursement.BankAccountID,
		string(disbursement.Status), nullableString(disbursement.SequenceNumber),
		disbursement.Version, disbursement.CreatedAt, disbursement.UpdatedAt)
	return err
}

func (s *disbursementStore) Get(ctx context.Context, id string) (*execution.Disbursement, error) {
	row := s.tx.QueryRowContext(ctx, `
SELECT `+disbursementColumns+`
FROM disbursements
WHERE id = $1`, id)
	return scanDisbursement(row)
}

func (s *disbursementStore) GetForUpdate(ctx context.Context, id string) (*execution.Disbursement, error) {
	row := s.tx.QueryRowContext(ctx, `
SELECT `+disbursementColumns+`
FROM disbursements
WHERE id = $1
FOR UPDATE`, id)
	return scanDisbursement(row)
}

func (s *disbursementStore) Save(ctx context.Context, disbursement *execution.Disbursement) error {
	result, err := s.tx.ExecContext(ctx, `
UPDATE disbursements
SET status = $1, sequence_number = $2, version = version + 1, updated_at = $3
WHERE id = $4 AND version = $5`,
		string(disbursement.Status), nullableString(disbursement.SequenceNumber),
		disbursement.UpdatedAt, disbursement.ID, disbursement.Version)
	if err != nil {
		return err
	}
	return saveOutcome(ctx, s.tx, "disbursements", disbursement.ID, result)
}

func (s *disbursementStore) CountIssuedBySettlement(ctx context.Context, settlementID string) (int, error) {
	var count int
	err := s.tx.QueryRowContext(ctx, `
SELECT COUNT(*)
FROM disbursements
WHERE settlement_id = $1 AND status = 'issued'`, settlementID).Scan(&count)
	if err != nil {
		return 0, err
	}
	return count, nil
}

func (s *disbursementStore) SumIssuedByCommitment(ctx context.Context, commitmentID string) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := s.tx.QueryRowContext(ctx, `
SELECT COALESCE(SUM(d.amount), 0)
FROM disbursements d
JOIN settlements s ON s.id = d.settlement_id
WHERE s.commitment_id = $1 AND d.status = 'issued'`, commitmentID).Scan(&total)
	if err != nil {
		return decimal.Zero, err
	}
	return total, nil
}

func scanDisbursement(row *sql.Row) (*execution.Disbursement, error) {
	var disbursement execution.Disbursement
	var method, status string
	var sequence sql.NullString
	err := row.Scan(
		&disbursement.ID, &disbursement.SettlementID, &disbursement.PaymentDate,
		&disbursement.Amount, &method, &disbursement.BankAccountID,
		&status, &sequence,
		&disbursement.Version, &disbursement.CreatedAt, &disbursement.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, execution.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	disbursement.PaymentMethod = execution.PaymentMethod(method)
	disbursement.Status = execution.DocumentStatus(status)
	disbursement.SequenceNumber = sequence.String
	return &disbursement, nil
}
