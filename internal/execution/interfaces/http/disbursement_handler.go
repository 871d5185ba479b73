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
)

// DisbursementHandler serves disbursement endpoints.
type DisbursementHandler struct {
	service *application.DisbursementService
}

// NewDisbursementHandler constructs a DisbursementHandler.
func NewDisbursementHandler(service *application.DisbursementService) (*DisbursementHandler, error) {
	if service == nil {
		return nil, errors.New("disbursement handler: nil service")
	}
	return &DisbursementHandler{service: service}, nil
}

// ServeHTTP routes disbursement requests.
func (h *DisbursementHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path == "/api/v1/disbursements" && r.Method == http.MethodPost {
		h.handleCreate(w, r)
		return
	}
	if !strings.HasPrefix(r.URL.Path, "/api/v1/disbursements/") {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	path := strings.TrimPrefix(r.URL.Path, "/api/v1/disbursements/")
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

	w.WriteHeader(http.StatusNotFound)
}

func (h *DisbursementHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		SettlementID  string `json:"settlement_id"`
		PaymentDate   string `json:"payment_date"`
		Amount        string `json:"amount"`
		PaymentMethod string `json:"payment_method"`
		BankAccountID string `json:"bank_account_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	paymentDate, err := time.Parse(dateLayout, req.PaymentDate)
	if err != nil {
		http.Error(w, "payment_date must be YYYY-MM-DD", http.StatusBadRequest)
		return
	}
	amount, err := parseAmount(req.Amount)
	if err != nil {
		http.Error(w, "amount must be a decimal number", http.StatusBadRequest)
		return
	}

	disbursement, err := h.service.CreateDraft(r.Context(), application.DisbursementInput{
		SettlementID:  req.SettlementID,
		PaymentDate:   paymentDate,
		Amount:        amount,
		PaymentMethod: execution.PaymentMethod(req.PaymentMethod),
		BankAccountID: req.BankAccountID,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toDisbursementResponse(disbursement))
}

func (h *DisbursementHandler) handleSubmit(w http.ResponseWriter, r *http.Request, id string) {
	disbursement, err := h.service.Submit(r.Context(), id, auth.ActorIDFromContext(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toDisbursementResponse(disbursement))
}

func (h *DisbursementHandler) handleCancel(w http.ResponseWriter, r *http.Request, id string) {
	disbursement, err := h.service.Cancel(r.Context(), id, auth.ActorIDFromContext(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toDisbursementResponse(disbursement))
}

func (h *DisbursementHandler) handleGet(w http.ResponseWriter, r *http.Request, id string) {
	disbursement, err := h.service.Get(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toDisbursementResponse(disbursement))
}
