package application

import (
	"context"
	"errors"
	"testing"
	"time"

	fiscalyear "govnext-ledger/internal/fiscalyear/domain"
	"govnext-ledger/internal/fiscalyear/infrastructure/memory"
)

func date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func newService(t *testing.T) *RegistryService {
	t.Helper()
	service, err := NewRegistryService(memory.NewRepository(), nil)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return service
}

func TestCreateAndActivate(t *testing.T) {
	service := newService(t)
	ctx := context.Background()

	fy, err := service.Create(ctx, date(2025, time.January, 1), date(2025, time.December, 31))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if fy.Status != fiscalyear.StatusDraft {
		t.Fatalf("status = %s, want draft", fy.Status)
	}
	if fy.Year != 2025 {
		t.Fatalf("year = %d, want 2025", fy.Year)
	}

	activated, err := service.Activate(ctx, fy.ID)
	if err != nil {
		t.Fatalf("activate: %v", err)
	}
	if activated.Status != fiscalyear.StatusActive {
		t.Fatalf("status = %s, want active", activated.Status)
	}

	// Activation is idempotent.
	again, err := service.Activate(ctx, fy.ID)
	if err != nil {
		t.Fatalf("re-activate: %v", err)
	}
	if again.Status != fiscalyear.StatusActive {
		t.Fatalf("status = %s, want active", again.Status)
	}
}

func TestCreateRejectsInvertedRange(t *testing.T) {
	service := newService(t)
	_, err := service.Create(context.Background(), date(2025, time.December, 31), date(2025, time.January, 1))
	if !errors.Is(err, fiscalyear.ErrInvalidRange) {
		t.Fatalf("got %v, want ErrInvalidRange", err)
	}
}

func TestCreateRejectsOverlap(t *testing.T) {
	service := newService(t)
	ctx := context.Background()

	if _, err := service.Create(ctx, date(2025, time.January, 1), date(2025, time.December, 31)); err != nil {
		t.Fatalf("create: %v", err)
	}
	_, err := service.Create(ctx, date(2025, time.July, 1), date(2026, time.June, 30))
	if !errors.Is(err, fiscalyear.ErrOverlap) {
		t.Fatalf("got %v, want ErrOverlap", err)
	}
}

func TestCreateAllowsShortSpan(t *testing.T) {
	// A stub period shorter than a full year is accepted with a warning,
	// not rejected.
	service := newService(t)
	fy, err := service.Create(context.Background(), date(2025, time.July, 1), date(2025, time.December, 31))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if !fy.IrregularSpan() {
		t.Fatal("expected irregular span")
	}
}

func TestActivateRejectsSecondActiveYear(t *testing.T) {
	service := newService(t)
	ctx := context.Background()

	first, err := service.Create(ctx, date(2025, time.January, 1), date(2025, time.June, 30))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	second, err := service.Create(ctx, date(2025, time.July, 1), date(2025, time.December, 31))
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, err := service.Activate(ctx, first.ID); err != nil {
		t.Fatalf("activate: %v", err)
	}
	if _, err := service.Activate(ctx, second.ID); !errors.Is(err, fiscalyear.ErrDuplicateActive) {
		t.Fatalf("got %v, want ErrDuplicateActive", err)
	}
}

func TestCloseLifecycle(t *testing.T) {
	service := newService(t)
	ctx := context.Background()

	fy, err := service.Create(ctx, date(2025, time.January, 1), date(2025, time.December, 31))
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	// A draft cannot be closed.
	if _, err := service.Close(ctx, fy.ID); !errors.Is(err, fiscalyear.ErrInvalidTransition) {
		t.Fatalf("got %v, want ErrInvalidTransition", err)
	}

	if _, err := service.Activate(ctx, fy.ID); err != nil {
		t.Fatalf("activate: %v", err)
	}
	closed, err := service.Close(ctx, fy.ID)
	if err != nil {
		t.Fatalf("close: %v", err)
	}
	if closed.Status != fiscalyear.StatusClosed {
		t.Fatalf("status = %s, want closed", closed.Status)
	}

	// A closed year never reactivates.
	if _, err := service.Activate(ctx, fy.ID); !errors.Is(err, fiscalyear.ErrInvalidTransition) {
		t.Fatalf("got %v, want ErrInvalidTransition", err)
	}
}

func TestGetUnknown(t *testing.T) {
	service := newService(t)
	if _, err := service.Get(context.Background(), "missing"); !errors.Is(err, fiscalyear.ErrNotFound) {
		t.Fatalf("got %v, want ErrNotFound", err)
	}
}
