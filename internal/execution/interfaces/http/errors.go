package http

import (
	"encoding/json"
	"errors"
	"net/http"

	execution "govnext-ledger/internal/execution/domain"
)

type errorBody struct {
	Error   string           `json:"error"`
	Details []map[string]any `json:"details,omitempty"`
}

// writeError maps the ledger error taxonomy onto HTTP statuses.
// Validation failures are 422, state conflicts and lost races 409,
// missing documents 404 and storage outages 503.
func writeError(w http.ResponseWriter, err error) {
	var validationErrs execution.ValidationErrors
	if errors.As(err, &validationErrs) {
		body := errorBody{Error: "validation failed"}
		for _, v := range validationErrs {
			body.Details = append(body.Details, map[string]any{
				"field":  v.Field,
				"reason": v.Reason,
			})
		}
		writeJSONError(w, http.StatusUnprocessableEntity, body)
		return
	}
	var validationErr *execution.ValidationError
	if errors.As(err, &validationErr) {
		writeJSONError(w, http.StatusUnprocessableEntity, errorBody{
			Error: "validation failed",
			Details: []map[string]any{{
				"field":  validationErr.Field,
				"reason": validationErr.Reason,
			}},
		})
		return
	}
	var balanceErr *execution.InsufficientBalanceError
	if errors.As(err, &balanceErr) {
		writeJSONError(w, http.StatusConflict, errorBody{
			Error: "insufficient balance",
			Details: []map[string]any{{
				"available": balanceErr.Available.String(),
				"requested": balanceErr.Requested.String(),
			}},
		})
		return
	}
	var stateErr *execution.InvalidParentStateError
	if errors.As(err, &stateErr) {
		expected := make([]string, 0, len(stateErr.Expected))
		for _, status := range stateErr.Expected {
			expected = append(expected, string(status))
		}
		writeJSONError(w, http.StatusConflict, errorBody{
			Error: "invalid document state",
			Details: []map[string]any{{
				"expected": expected,
				"actual":   string(stateErr.Actual),
			}},
		})
		return
	}
	var childErr *execution.ChildBalanceExistsError
	if errors.As(err, &childErr) {
		writeJSONError(w, http.StatusConflict, errorBody{
			Error: "active children hold balance",
			Details: []map[string]any{{
				"child_count": childErr.ChildCount,
			}},
		})
		return
	}

	switch {
	case errors.Is(err, execution.ErrNotFound):
		writeJSONError(w, http.StatusNotFound, errorBody{Error: "not found"})
	case errors.Is(err, execution.ErrContention), errors.Is(err, execution.ErrStaleState):
		writeJSONError(w, http.StatusConflict, errorBody{Error: "concurrent update, retry"})
	case errors.Is(err, execution.ErrAllocationNotActive):
		writeJSONError(w, http.StatusConflict, errorBody{Error: "allocation is not active"})
	case errors.Is(err, execution.ErrStorageUnavailable):
		writeJSONError(w, http.StatusServiceUnavailable, errorBody{Error: "storage unavailable"})
	default:
		writeJSONError(w, http.StatusBadRequest, errorBody{Error: err.Error()})
	}
}

func writeJSONError(w http.ResponseWriter, status int, body errorBody) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
