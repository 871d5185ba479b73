package numbering

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Kind identifies a numbered document series. Each (kind, year) pair owns
// an independent sequence.
type Kind string

const (
	KindCommitment   Kind = "commitment"
	KindSettlement   Kind = "settlement"
	KindDisbursement Kind = "disbursement"
)

var (
	// ErrInvalidKind is returned for an unknown document kind.
	ErrInvalidKind = errors.New("numbering: invalid kind")
	// ErrInvalidYear is returned for a year outside the four-digit range.
	ErrInvalidYear = errors.New("numbering: invalid year")
	// ErrMalformedNumber is returned when a sequence number cannot be parsed.
	ErrMalformedNumber = errors.New("numbering: malformed number")
)

// ValidKind reports whether the kind names a known series.
func ValidKind(kind Kind) bool {
	switch kind {
	case KindCommitment, KindSettlement, KindDisbursement:
		return true
	default:
		return false
	}
}

// Format renders a sequence number in the legally mandated NNNNNN/YYYY
// layout. External audit references key off this exact format.
func Format(n int64, year int) string {
	return fmt.Sprintf("%06d/%04d", n, year)
}

// Parse splits a formatted sequence number back into value and year.
func Parse(number string) (int64, int, error) {
	parts := strings.Split(number, "/")
	if len(parts) != 2 || len(parts[0]) != 6 || len(parts[1]) != 4 {
		return 0, 0, ErrMalformedNumber
	}
	n, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil || n <= 0 {
		return 0, 0, ErrMalformedNumber
	}
	year, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0, ErrMalformedNumber
	}
	return n, year, nil
}

func checkArgs(kind Kind, year int) error {
	if !ValidKind(kind) {
		return ErrInvalidKind
	}
	if year < 1000 || year > 9999 {
		return ErrInvalidYear
	}
	return nil
}
