package fiscalyear

import "time"

// Status is the lifecycle state of a fiscal year.
type Status string

const (
	StatusDraft  Status = "draft"
	StatusActive Status = "active"
	StatusClosed Status = "closed"
)

// FiscalYear represents one accounting period, normally a calendar year.
type FiscalYear struct {
	ID        string
	Year      int
	StartDate time.Time
	EndDate   time.Time
	Status    Status
	Version   int64
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ValidateRange checks start/end ordering.
func (fy *FiscalYear) ValidateRange() error {
	if fy.StartDate.IsZero() || fy.EndDate.IsZero() {
		return ErrInvalidRange
	}
	if !fy.StartDate.Before(fy.EndDate) {
		return ErrInvalidRange
	}
	return nil
}

// SpanDays returns the period length in days.
func (fy *FiscalYear) SpanDays() int {
	return int(fy.EndDate.Sub(fy.StartDate).Hours()/24) + 1
}

// IrregularSpan reports whether the period deviates from a full year.
// Irregular periods are logged as warnings, not rejected.
func (fy *FiscalYear) IrregularSpan() bool {
	days := fy.SpanDays()
	return days < 365 || days > 366
}

// Overlaps reports whether two fiscal years intersect in date range.
func (fy *FiscalYear) Overlaps(other *FiscalYear) bool {
	if other == nil {
		return false
	}
	return !fy.StartDate.After(other.EndDate) && !fy.EndDate.Before(other.StartDate)
}

// Contains reports whether a date falls inside the period.
func (fy *FiscalYear) Contains(date time.Time) bool {
	day := date.Truncate(24 * time.Hour)
	return !day.Before(fy.StartDate.Truncate(24*time.Hour)) && !day.After(fy.EndDate.Truncate(24*time.Hour))
}
