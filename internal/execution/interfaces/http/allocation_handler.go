package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/shopspring/decimal"

	"govnext-ledger/internal/auth"
	"govnext-ledger/internal/execution/application"
	execution "govnext-ledger/internal/execution/domain"
)

// AllocationHandler serves allocation endpoints.
type AllocationHandler struct {
	service *application.AllocationService
	queries *application.QueryService
}

// NewAllocationHandler constructs an AllocationHandler.
func NewAllocationHandler(service *application.AllocationService, queries *application.QueryService) (*AllocationHandler, error) {
	if service == nil {
		return nil, errors.New("allocation handler: nil service")
	}
	if queries == nil {
		return nil, errors.New("allocation handler: nil query service")
	}
	return &AllocationHandler{service: service, queries: queries}, nil
}

// ServeHTTP routes allocation requests.
func (h *AllocationHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path == "/api/v1/allocations" && r.Method == http.MethodPost {
		h.handleCreate(w, r)
		return
	}
	if !strings.HasPrefix(r.URL.Path, "/api/v1/allocations/") {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	path := strings.TrimPrefix(r.URL.Path, "/api/v1/allocations/")
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
	if len(parts) == 2 && r.Method == http.MethodGet && parts[1] == "balance" {
		h.handleBalance(w, r, id)
		return
	}
	if len(parts) == 2 && r.Method == http.MethodPost {
		switch parts[1] {
		case "supplement", "annul", "block", "unblock":
			h.handleAdjust(w, r, id, parts[1])
			return
		}
	}

	w.WriteHeader(http.StatusNotFound)
}

func (h *AllocationHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		FiscalYearID       string `json:"fiscal_year_id"`
		OrgUnitID          string `json:"org_unit_id"`
		ClassificationCode string `json:"classification_code"`
		InitialAmount      string `json:"initial_amount"`
		SupplementedAmount string `json:"supplemented_amount"`
		AnnulledAmount     string `json:"annulled_amount"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	initial, err := parseAmount(req.InitialAmount)
	if err != nil {
		http.Error(w, "initial_amount must be a decimal number", http.StatusBadRequest)
		return
	}
	supplemented, err := parseOptionalAmount(req.SupplementedAmount)
	if err != nil {
		http.Error(w, "supplemented_amount must be a decimal number", http.StatusBadRequest)
		return
	}
	annulled, err := parseOptionalAmount(req.AnnulledAmount)
	if err != nil {
		http.Error(w, "annulled_amount must be a decimal number", http.StatusBadRequest)
		return
	}

	allocation, err := h.service.Create(r.Context(), application.AllocationInput{
		FiscalYearID:       req.FiscalYearID,
		OrgUnitID:          req.OrgUnitID,
		ClassificationCode: req.ClassificationCode,
		InitialAmount:      initial,
		SupplementedAmount: supplemented,
		AnnulledAmount:     annulled,
	}, auth.ActorIDFromContext(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toAllocationResponse(allocation))
}

func (h *AllocationHandler) handleAdjust(w http.ResponseWriter, r *http.Request, id, action string) {
	var req struct {
		Amount string `json:"amount"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	amount, err := parseAmount(req.Amount)
	if err != nil {
		http.Error(w, "amount must be a decimal number", http.StatusBadRequest)
		return
	}
	actorID := auth.ActorIDFromContext(r.Context())

	var allocation *execution.Allocation
	switch action {
	case "supplement":
		allocation, err = h.service.Supplement(r.Context(), id, amount, actorID)
	case "annul":
		allocation, err = h.service.Annul(r.Context(), id, amount, actorID)
	case "block":
		allocation, err = h.service.Block(r.Context(), id, amount, actorID)
	case "unblock":
		allocation, err = h.service.Unblock(r.Context(), id, amount, actorID)
	}
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toAllocationResponse(allocation))
}

func (h *AllocationHandler) handleGet(w http.ResponseWriter, r *http.Request, id string) {
	allocation, err := h.queries.Allocation(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toAllocationResponse(allocation))
}

func (h *AllocationHandler) handleBalance(w http.ResponseWriter, r *http.Request, id string) {
	balance, err := h.queries.AllocationBalance(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toBalanceResponse(balance))
}

func parseAmount(value string) (decimal.Decimal, error) {
	if strings.TrimSpace(value) == "" {
		return decimal.Zero, errors.New("empty amount")
	}
	return decimal.NewFromString(value)
}

func parseOptionalAmount(value string) (decimal.Decimal, error) {
	if strings.TrimSpace(value) == "" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(value)
}
