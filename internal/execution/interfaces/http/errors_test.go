package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"

	execution "govnext-ledger/internal/execution/domain"
)

func decodeErrorBody(t *testing.T, rec *httptest.ResponseRecorder) errorBody {
	t.Helper()
	var body errorBody
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	return body
}

func TestWriteErrorStatusMapping(t *testing.T) {
	cases := []struct {
		name       string
		err        error
		wantStatus int
		wantError  string
	}{
		{
			name: "validation errors",
			err: execution.ValidationErrors{
				{Field: "total_amount", Reason: "must be greater than zero"},
			},
			wantStatus: http.StatusUnprocessableEntity,
			wantError:  "validation failed",
		},
		{
			name:       "single validation error",
			err:        &execution.ValidationError{Field: "amount", Reason: "must be greater than zero"},
			wantStatus: http.StatusUnprocessableEntity,
			wantError:  "validation failed",
		},
		{
			name: "invalid parent state",
			err: &execution.InvalidParentStateError{
				Expected: []execution.DocumentStatus{execution.StatusIssued},
				Actual:   execution.StatusCancelled,
			},
			wantStatus: http.StatusConflict,
			wantError:  "invalid document state",
		},
		{
			name:       "child balance exists",
			err:        &execution.ChildBalanceExistsError{ChildCount: 2},
			wantStatus: http.StatusConflict,
			wantError:  "active children hold balance",
		},
		{
			name:       "not found",
			err:        execution.ErrNotFound,
			wantStatus: http.StatusNotFound,
			wantError:  "not found",
		},
		{
			name:       "contention after exhausted retries",
			err:        errors.Join(execution.ErrContention, execution.ErrStaleState),
			wantStatus: http.StatusConflict,
			wantError:  "concurrent update, retry",
		},
		{
			name:       "bare stale state",
			err:        execution.ErrStaleState,
			wantStatus: http.StatusConflict,
			wantError:  "concurrent update, retry",
		},
		{
			name:       "allocation not active",
			err:        execution.ErrAllocationNotActive,
			wantStatus: http.StatusConflict,
			wantError:  "allocation is not active",
		},
		{
			name:       "storage unavailable",
			err:        errors.Join(execution.ErrStorageUnavailable, errors.New("connection refused")),
			wantStatus: http.StatusServiceUnavailable,
			wantError:  "storage unavailable",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			writeError(rec, tc.err)
			if rec.Code != tc.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tc.wantStatus)
			}
			body := decodeErrorBody(t, rec)
			if body.Error != tc.wantError {
				t.Fatalf("error = %q, want %q", body.Error, tc.wantError)
			}
		})
	}
}

func TestWriteErrorInsufficientBalanceDetails(t *testing.T) {
	rec := httptest.NewRecorder()
	writeError(rec, &execution.InsufficientBalanceError{
		Available: decimal.RequireFromString("20000"),
		Requested: decimal.RequireFromString("30000"),
	})
	if rec.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409", rec.Code)
	}
	body := decodeErrorBody(t, rec)
	if body.Error != "insufficient balance" {
		t.Fatalf("error = %q", body.Error)
	}
	if len(body.Details) != 1 {
		t.Fatalf("details = %v", body.Details)
	}
	if body.Details[0]["available"] != "20000" || body.Details[0]["requested"] != "30000" {
		t.Fatalf("details = %v", body.Details[0])
	}
}

func TestWriteErrorValidationDetails(t *testing.T) {
	rec := httptest.NewRecorder()
	writeError(rec, execution.ValidationErrors{
		{Field: "creditor", Reason: "required"},
		{Field: "total_amount", Reason: "must be greater than zero"},
	})
	body := decodeErrorBody(t, rec)
	if len(body.Details) != 2 {
		t.Fatalf("got %d details, want 2", len(body.Details))
	}
	if body.Details[0]["field"] != "creditor" || body.Details[1]["field"] != "total_amount" {
		t.Fatalf("details = %v", body.Details)
	}
}
