package http

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"govnext-ledger/internal/execution/application"
	execution "govnext-ledger/internal/execution/domain"
	"govnext-ledger/internal/execution/interfaces"
	"govnext-ledger/internal/observability/metrics"
)

const defaultMovementLimit = 100

// MovementHandler serves movement history endpoints.
type MovementHandler struct {
	queries *application.QueryService
}

// NewMovementHandler constructs a MovementHandler.
func NewMovementHandler(queries *application.QueryService) (*MovementHandler, error) {
	if queries == nil {
		return nil, errors.New("movement handler: nil query service")
	}
	return &MovementHandler{queries: queries}, nil
}

// ServeHTTP routes movement requests.
func (h *MovementHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	switch r.URL.Path {
	case "/api/v1/movements":
		h.handleList(w, r)
	case "/api/v1/movements/export.xlsx":
		h.handleExportXLSX(w, r)
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func movementFilterFromQuery(r *http.Request) execution.MovementFilter {
	query := r.URL.Query()
	filter := execution.MovementFilter{
		FiscalYearID: query.Get("fiscal_year_id"),
		DocumentKind: execution.DocumentKind(query.Get("document_kind")),
		DocumentID:   query.Get("document_id"),
		Limit:        defaultMovementLimit,
	}
	if raw := query.Get("limit"); raw != "" {
		if limit, err := strconv.Atoi(raw); err == nil && limit > 0 {
			filter.Limit = limit
		}
	}
	if raw := query.Get("offset"); raw != "" {
		if offset, err := strconv.Atoi(raw); err == nil && offset > 0 {
			filter.Offset = offset
		}
	}
	return filter
}

func (h *MovementHandler) handleList(w http.ResponseWriter, r *http.Request) {
	records, err := h.queries.Movements(r.Context(), movementFilterFromQuery(r))
	if err != nil {
		writeError(w, err)
		return
	}
	out := make([]movementResponse, 0, len(records))
	for _, record := range records {
		out = append(out, toMovementResponse(record))
	}
	writeJSON(w, http.StatusOK, map[string]any{"movements": out})
}

func (h *MovementHandler) handleExportXLSX(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	result := metrics.ResultSuccess

	records, err := h.queries.Movements(r.Context(), movementFilterFromQuery(r))
	if err != nil {
		result = metrics.ResultError
		metrics.ObserveExport("xlsx", result, time.Since(start))
		writeError(w, err)
		return
	}
	data, err := interfaces.BuildMovementsXLSX(records)
	if err != nil {
		result = metrics.ResultError
		metrics.ObserveExport("xlsx", result, time.Since(start))
		http.Error(w, "export failed", http.StatusInternalServerError)
		return
	}
	metrics.ObserveExport("xlsx", result, time.Since(start))

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="movements.xlsx"`)
	_, _ = w.Write(data)
}
