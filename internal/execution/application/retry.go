package application

import (
	"context"
	"errors"
	"time"

	execution "govnext-ledger/internal/execution/domain"
	"govnext-ledger/internal/observability/metrics"
)

// Clock supplies the current time. Services take it explicitly so tests
// can pin dates.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock in UTC.
type SystemClock struct{}

// Now returns the current UTC time.
func (SystemClock) Now() time.Time { return time.Now().UTC() }

// runWithRetry executes fn inside the unit of work, retrying a bounded
// number of times when a version check is lost to a concurrent writer.
// Exhausting the budget surfaces ErrContention; the caller retries with
// backoff if it wants to.
func runWithRetry(ctx context.Context, uow execution.UnitOfWork, stage string, attempts int, fn func(tx execution.Tx) error) error {
	if attempts <= 0 {
		attempts = 1
	}
	var err error
	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			metrics.IncContentionRetry(stage)
		}
		err = uow.WithinTx(ctx, fn)
		if !errors.Is(err, execution.ErrStaleState) {
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
	}
	return errors.Join(execution.ErrContention, err)
}
