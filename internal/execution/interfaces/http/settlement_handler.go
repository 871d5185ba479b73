package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"govnext-ledger/internal/auth"
	"govnext-ledger/internal/execution/application"
)

// SettlementHandler serves settlement endpoints.
type SettlementHandler struct {
	service *application.SettlementService
	queries *application.QueryService
}

// NewSettlementHandler constructs a SettlementHandler.
func NewSettlementHandler(service *application.SettlementService, queries *application.QueryService) (*SettlementHandler, error) {
	if service == nil {
		return nil, errors.New("settlement handler: nil service")
	}
	if queries == nil {
		return nil, errors.New("settlement handler: nil query service")
	}
	return &SettlementHandler{service: service, queries: queries}, nil
}

// ServeHTTP routes settlement requests.
func (h *SettlementHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path == "/api/v1/settlements" && r.Method == http.MethodPost {
		h.handleCreate(w, r)
		return
	}
	if !strings.HasPrefix(r.URL.Path, "/api/v1/settlements/") {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	path := strings.TrimPrefix(r.URL.Path, "/api/v1/settlements/")
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

	w.WriteHeader(http.StatusNotFound)
}

func (h *SettlementHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		CommitmentID    string `json:"commitment_id"`
		SettlementDate  string `json:"settlement_date"`
		FiscalDocuments []struct {
			Number    string `json:"number"`
			Amount    string `json:"amount"`
			TaxAmount string `json:"tax_amount"`
			IssueDate string `json:"issue_date"`
		} `json:"fiscal_documents"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	settlementDate, err := time.Parse(dateLayout, req.SettlementDate)
	if err != nil {
		http.Error(w, "settlement_date must be YYYY-MM-DD", http.StatusBadRequest)
		return
	}

	input := application.SettlementInput{
		CommitmentID:   req.CommitmentID,
		SettlementDate: settlementDate,
	}
	for _, doc := range req.FiscalDocuments {
		amount, err := parseAmount(doc.Amount)
		if err != nil {
			http.Error(w, "fiscal_documents.amount must be a decimal number", http.StatusBadRequest)
			return
		}
		taxAmount, err := parseOptionalAmount(doc.TaxAmount)
		if err != nil {
			http.Error(w, "fiscal_documents.tax_amount must be a decimal number", http.StatusBadRequest)
			return
		}
		issueDate, err := time.Parse(dateLayout, doc.IssueDate)
		if err != nil {
			http.Error(w, "fiscal_documents.issue_date must be YYYY-MM-DD", http.StatusBadRequest)
			return
		}
		input.FiscalDocuments = append(input.FiscalDocuments, application.FiscalDocumentInput{
			Number:    doc.Number,
			Amount:    amount,
			TaxAmount: taxAmount,
			IssueDate: issueDate,
		})
	}

	settlement, err := h.service.CreateDraft(r.Context(), input)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toSettlementResponse(settlement))
}

func (h *SettlementHandler) handleSubmit(w http.ResponseWriter, r *http.Request, id string) {
	settlement, err := h.service.Submit(r.Context(), id, auth.ActorIDFromContext(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toSettlementResponse(settlement))
}

func (h *SettlementHandler) handleCancel(w http.ResponseWriter, r *http.Request, id string) {
	settlement, err := h.service.Cancel(r.Context(), id, auth.ActorIDFromContext(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toSettlementResponse(settlement))
}

func (h *SettlementHandler) handleGet(w http.ResponseWriter, r *http.Request, id string) {
	settlement, err := h.service.Get(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toSettlementResponse(settlement))
}

func (h *SettlementHandler) handleBalance(w http.ResponseWriter, r *http.Request, id string) {
	balance, err := h.queries.SettlementBalance(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toBalanceResponse(balance))
}
