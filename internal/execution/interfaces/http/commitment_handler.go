package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"govnext-ledger/internal/auth"
	"govnext-ledger/internal/execution/application"
	execution "govnext-ledger/internal/execution/domain"
	"govnext-ledger/internal/execution/interfaces"
	"govnext-ledger/internal/observability/metrics"
)

// CommitmentHandler serves commitment endpoints.
type CommitmentHandler struct {
	service *application.CommitmentService
	queries *application.QueryService
}

// NewCommitmentHandler constructs a CommitmentHandler.
func NewCommitmentHandler(service *application.CommitmentService, queries *application.QueryService) (*CommitmentHandler, error) {
	if service == nil {
		return nil, errors.New("commitment handler: nil service")
	}
	if queries == nil {
		return nil, errors.New("commitment handler: nil query service")
	}
	return &CommitmentHandler{service: service, queries: queries}, nil
}

// ServeHTTP routes commitment requests.
func (h *CommitmentHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path == "/api/v1/commitments" && r.Method == http.MethodPost {
		h.handleCreate(w, r)
		return
	}
	if !strings.HasPrefix(r.URL.Path, "/api/v1/commitments/") {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	path := strings.TrimPrefix(r.URL.Path, "/api/v1/commitments/")
	parts := strings.Split(path, "/")
	if len(parts) < 1 || parts[0] == "" {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	id := parts[0]

	if len(parts) == 1 && r.Method == http.MethodGet {
		h.handleGet(w, r, id)
		return
	}
	if len(parts) == 2 && r.Method == http.MethodPost && parts[1] == "submit" {
		h.handleSubmit(w, r, id)
		return
	}
	if len(parts) == 2 && r.Method == http.MethodPost && parts[1] == "cancel" {
		h.handleCancel(w, r, id)
		return
	}
	if len(parts) == 2 && r.Method == http.MethodGet && parts[1] == "balance" {
		h.handleBalance(w, r, id)
		return
	}
	if len(parts) == 2 && r.Method == http.MethodGet && parts[1] == "note.pdf" {
		h.handleNotePDF(w, r, id)
		return
	}

	w.WriteHeader(http.StatusNotFound)
}

func (h *CommitmentHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		AllocationID   string `json:"allocation_id"`
		CreditorID     string `json:"creditor_id"`
		Object         string `json:"object"`
		Kind           string `json:"kind"`
		CommitmentDate string `json:"commitment_date"`
		TotalAmount    string `json:"total_amount"`
		LineItems      []struct {
			Description string `json:"description"`
			Quantity    string `json:"quantity"`
			UnitPrice   string `json:"unit_price"`
		} `json:"line_items"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	commitmentDate, err := time.Parse(dateLayout, req.CommitmentDate)
	if err != nil {
		http.Error(w, "commitment_date must be YYYY-MM-DD", http.StatusBadRequest)
		return
	}
	total, err := parseAmount(req.TotalAmount)
	if err != nil {
		http.Error(w, "total_amount must be a decimal number", http.StatusBadRequest)
		return
	}

	input := application.CommitmentInput{
		AllocationID:   req.AllocationID,
		CreditorID:     req.CreditorID,
		Object:         req.Object,
		Kind:           execution.CommitmentKind(req.Kind),
		CommitmentDate: commitmentDate,
		TotalAmount:    total,
	}
	for _, item := range req.LineItems {
		quantity, err := parseAmount(item.Quantity)
		if err != nil {
			http.Error(w, "line_items.quantity must be a decimal number", http.StatusBadRequest)
			return
		}
		unitPrice, err := parseAmount(item.UnitPrice)
		if err != nil {
			http.Error(w, "line_items.unit_price must be a decimal number", http.StatusBadRequest)
			return
		}
		input.LineItems = append(input.LineItems, application.LineItemInput{
			Description: item.Description,
			Quantity:    quantity,
			UnitPrice:   unitPrice,
		})
	}

	commitment, err := h.service.CreateDraft(r.Context(), input)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toCommitmentResponse(commitment))
}

func (h *CommitmentHandler) handleSubmit(w http.ResponseWriter, r *http.Request, id string) {
	commitment, err := h.service.Submit(r.Context(), id, auth.ActorIDFromContext(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toCommitmentResponse(commitment))
}

func (h *CommitmentHandler) handleCancel(w http.ResponseWriter, r *http.Request, id string) {
	commitment, err := h.service.Cancel(r.Context(), id, auth.ActorIDFromContext(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toCommitmentResponse(commitment))
}

func (h *CommitmentHandler) handleGet(w http.ResponseWriter, r *http.Request, id string) {
	commitment, err := h.service.Get(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toCommitmentResponse(commitment))
}

func (h *CommitmentHandler) handleBalance(w http.ResponseWriter, r *http.Request, id string) {
	balance, err := h.queries.CommitmentBalance(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toBalanceResponse(balance))
}

func (h *CommitmentHandler) handleNotePDF(w http.ResponseWriter, r *http.Request, id string) {
	start := time.Now()
	result := metrics.ResultSuccess

	commitment, err := h.service.Get(r.Context(), id)
	if err != nil {
		result = metrics.ResultError
		metrics.ObserveExport("pdf", result, time.Since(start))
		writeError(w, err)
		return
	}
	allocation, err := h.queries.Allocation(r.Context(), commitment.AllocationID)
	if err != nil {
		result = metrics.ResultError
		metrics.ObserveExport("pdf", result, time.Since(start))
		writeError(w, err)
		return
	}
	data, err := interfaces.BuildCommitmentNotePDF(commitment, allocation)
	if err != nil {
		result = metrics.ResultError
		metrics.ObserveExport("pdf", result, time.Since(start))
		http.Error(w, "export failed", http.StatusInternalServerError)
		return
	}
	metrics.ObserveExport("pdf", result, time.Since(start))

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="commitment-note.pdf"`)
	_, _ = w.Write(data)
}
