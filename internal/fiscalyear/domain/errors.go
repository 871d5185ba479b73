package fiscalyear

import "errors"

var (
	// ErrInvalidRange is returned when start is not before end.
	ErrInvalidRange = errors.New("fiscalyear: invalid date range")
	// ErrOverlap is returned when the range intersects another fiscal year.
	ErrOverlap = errors.New("fiscalyear: period overlaps an existing fiscal year")
	// ErrDuplicateActive is returned when another active year covers the same calendar year.
	ErrDuplicateActive = errors.New("fiscalyear: an active fiscal year already exists for this year")
	// ErrNotFound is returned when a fiscal year does not exist.
	ErrNotFound = errors.New("fiscalyear: not found")
	// ErrInvalidTransition is returned for an illegal status change.
	ErrInvalidTransition = errors.New("fiscalyear: invalid status transition")
	// ErrNoActiveYear is returned when no active fiscal year covers the requested year.
	ErrNoActiveYear = errors.New("fiscalyear: no active fiscal year")
)
