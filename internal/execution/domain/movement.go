package execution

import (
	"time"

	"github.com/shopspring/decimal"
)

// MovementRecord is one append-only entry in the movement history. Every
// balance-affecting transition writes exactly one record; records are
// never updated or deleted.
type MovementRecord struct {
	ID           string
	DocumentKind DocumentKind
	DocumentID   string
	Description  string
	Amount       decimal.Decimal
	EventDate    time.Time
	ActorID      string
	FiscalYearID string
	CreatedAt    time.Time
}
