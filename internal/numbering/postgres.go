package numbering

import (
	"context"
	"database/sql"
	"errors"
)

// NextInTx increments the (kind, year) counter inside the caller's
// transaction and returns the formatted number. The counter is a single
// row per (kind, year) that is upsert-incremented in one statement, so
// two concurrent submissions can never read the same last value.
// Scanning MAX(number) over issued documents is exactly the race this
// table exists to prevent. The increment rolls back with the
// transaction, which keeps the series gap-free when a submission fails
// after numbering.
func NextInTx(ctx context.Context, tx *sql.Tx, kind Kind, year int) (string, error) {
	if tx == nil {
		return "", errors.New("numbering: nil tx")
	}
	if err := checkArgs(kind, year); err != nil {
		return "", err
	}
	var n int64
	err := tx.QueryRowContext(ctx, `
INSERT INTO document_sequences (kind, year, last_value)
VALUES ($1, $2, 1)
ON CONFLICT (kind, year)
DO UPDATE SET last_value = document_sequences.last_value + 1
RETURNING last_value`, string(kind), year).Scan(&n)
	if err != nil {
		return "", err
	}
	return Format(n, year), nil
}
