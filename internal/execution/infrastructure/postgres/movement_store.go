package postgres

import (
	"context"
	"database/sql"
	"strconv"
	"strings"

	execution "govnext-ledger/internal/execution/domain"
)

type movementStore struct {
	tx *sql.Tx
}

// Append writes one movement row. The table carries no version column
// and no UPDATE path; history is append-only.
func (s *movementStore) Append(ctx context.Context, record *execution.MovementRecord) error {
	_, err := s.tx.ExecContext(ctx, `
INSERT INTO movement_records (
	id, document_kind, document_id, description, amount, event_date,
	actor_id, fiscal_year_id, created_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		record.ID, string(record.DocumentKind), record.DocumentID, record.Description,
		record.Amount, record.EventDate, record.ActorID, record.FiscalYearID, record.CreatedAt)
	return err
}

func (s *movementStore) List(ctx context.Context, filter execution.MovementFilter) ([]*execution.MovementRecord, error) {
	var sb strings.Builder
	sb.WriteString(`
SELECT id, document_kind, document_id, description, amount, event_date,
	actor_id, fiscal_year_id, created_at
FROM movement_records`)

	var args []any
	var conditions []string
	if filter.FiscalYearID != "" {
		args = append(args, filter.FiscalYearID)
		conditions = append(conditions, "fiscal_year_id = $"+strconv.Itoa(len(args)))
	}
	if filter.DocumentKind != "" {
		args = append(args, string(filter.DocumentKind))
		conditions = append(conditions, "document_kind = $"+strconv.Itoa(len(args)))
	}
	if filter.DocumentID != "" {
		args = append(args, filter.DocumentID)
		conditions = append(conditions, "document_id = $"+strconv.Itoa(len(args)))
	}
	if len(conditions) > 0 {
		sb.WriteString("\nWHERE " + strings.Join(conditions, " AND "))
	}
	sb.WriteString("\nORDER BY created_at DESC, id DESC")
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		sb.WriteString("\nLIMIT $" + strconv.Itoa(len(args)))
	}
	if filter.Offset > 0 {
		args = append(args, filter.Offset)
		sb.WriteString("\nOFFSET $" + strconv.Itoa(len(args)))
	}

	rows, err := s.tx.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []*execution.MovementRecord
	for rows.Next() {
		var record execution.MovementRecord
		var kind string
		if err := rows.Scan(
			&record.ID, &kind, &record.DocumentID, &record.Description, &record.Amount,
			&record.EventDate, &record.ActorID, &record.FiscalYearID, &record.CreatedAt); err != nil {
			return nil, err
		}
		record.DocumentKind = execution.DocumentKind(kind)
		records = append(records, &record)
	}
	return records, rows.Err()
}
