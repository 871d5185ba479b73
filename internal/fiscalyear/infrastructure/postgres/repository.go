package postgres

import (
	"context"
	"database/sql"
	"errors"

	fiscalyear "govnext-ledger/internal/fiscalyear/domain"
)

// Repository is a Postgres fiscal year store.
type Repository struct {
	db *sql.DB
}

// NewRepository constructs a repository.
func NewRepository(db *sql.DB) *Repository {
	if db == nil {
		return nil
	}
	return &Repository{db: db}
}

// Create inserts a fiscal year.
func (r *Repository) Create(ctx context.Context, fy *fiscalyear.FiscalYear) error {
	if r == nil || r.db == nil {
		return errors.New("fiscalyear repo: nil db")
	}
	_, err := r.db.ExecContext(ctx, `
INSERT INTO fiscal_years (id, year, start_date, end_date, status, version, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		fy.ID, fy.Year, fy.StartDate, fy.EndDate, string(fy.Status), fy.Version, fy.CreatedAt, fy.UpdatedAt)
	return err
}

// GetByID fetches a fiscal year.
func (r *Repository) GetByID(ctx context.Context, id string) (*fiscalyear.FiscalYear, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("fiscalyear repo: nil db")
	}
	row := r.db.QueryRowContext(ctx, `
SELECT id, year, start_date, end_date, status, version, created_at, updated_at
FROM fiscal_years
WHERE id = $1
LIMIT 1`, id)
	fy, err := scanFiscalYear(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fiscalyear.ErrNotFound
	}
	return fy, err
}

// List returns all fiscal years ordered by year.
func (r *Repository) List(ctx context.Context) ([]*fiscalyear.FiscalYear, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("fiscalyear repo: nil db")
	}
	rows, err := r.db.QueryContext(ctx, `
SELECT id, year, start_date, end_date, status, version, created_at, updated_at
FROM fiscal_years
ORDER BY year`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*fiscalyear.FiscalYear
	for rows.Next() {
		fy, err := scanFiscalYear(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, fy)
	}
	return out, rows.Err()
}

// FindActiveByYear returns the active fiscal year covering a calendar year.
func (r *Repository) FindActiveByYear(ctx context.Context, year int) (*fiscalyear.FiscalYear, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("fiscalyear repo: nil db")
	}
	row := r.db.QueryRowContext(ctx, `
SELECT id, year, start_date, end_date, status, version, created_at, updated_at
FROM fiscal_years
WHERE year = $1 AND status = $2
LIMIT 1`, year, string(fiscalyear.StatusActive))
	fy, err := scanFiscalYear(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fiscalyear.ErrNoActiveYear
	}
	return fy, err
}

// UpdateStatus changes a fiscal year status.
func (r *Repository) UpdateStatus(ctx context.Context, id string, status fiscalyear.Status) error {
	if r == nil || r.db == nil {
		return errors.New("fiscalyear repo: nil db")
	}
	result, err := r.db.ExecContext(ctx, `
UPDATE fiscal_years
SET status = $2, version = version + 1, updated_at = NOW()
WHERE id = $1`, id, string(status))
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fiscalyear.ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanFiscalYear(row rowScanner) (*fiscalyear.FiscalYear, error) {
	fy := &fiscalyear.FiscalYear{}
	var status string
	err := row.Scan(&fy.ID, &fy.Year, &fy.StartDate, &fy.EndDate, &status, &fy.Version, &fy.CreatedAt, &fy.UpdatedAt)
	if err != nil {
		return nil, err
	}
	fy.Status = fiscalyear.Status(status)
	return fy, nil
}
