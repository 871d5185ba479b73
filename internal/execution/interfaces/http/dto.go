package http

import (
	"time"

	"govnext-ledger/internal/execution/application"
	execution "govnext-ledger/internal/execution/domain"
)

const dateLayout = "2006-01-02"

type allocationResponse struct {
	ID                 string `json:"id"`
	FiscalYearID       string `json:"fiscal_year_id"`
	OrgUnitID          string `json:"org_unit_id"`
	ClassificationCode string `json:"classification_code"`
	InitialAmount      string `json:"initial_amount"`
	SupplementedAmount string `json:"supplemented_amount"`
	AnnulledAmount     string `json:"annulled_amount"`
	CommittedAmount    string `json:"committed_amount"`
	BlockedAmount      string `json:"blocked_amount"`
	TotalAmount        string `json:"total_amount"`
	AvailableBalance   string `json:"available_balance"`
	Status             string `json:"status"`
	Version            int64  `json:"version"`
}

func toAllocationResponse(a *execution.Allocation) allocationResponse {
	return allocationResponse{
		ID:                 a.ID,
		FiscalYearID:       a.FiscalYearID,
		OrgUnitID:          a.OrgUnitID,
		ClassificationCode: a.ClassificationCode,
		InitialAmount:      a.InitialAmount.String(),
		SupplementedAmount: a.SupplementedAmount.String(),
		AnnulledAmount:     a.AnnulledAmount.String(),
		CommittedAmount:    a.CommittedAmount.String(),
		BlockedAmount:      a.BlockedAmount.String(),
		TotalAmount:        a.TotalAmount().String(),
		AvailableBalance:   a.AvailableBalance().String(),
		Status:             string(a.Status),
		Version:            a.Version,
	}
}

type lineItemResponse struct {
	Description string `json:"description"`
	Quantity    string `json:"quantity"`
	UnitPrice   string `json:"unit_price"`
	LineTotal   string `json:"line_total"`
}

type commitmentResponse struct {
	ID             string             `json:"id"`
	AllocationID   string             `json:"allocation_id"`
	CreditorID     string             `json:"creditor_id"`
	Object         string             `json:"object"`
	Kind           string             `json:"kind"`
	CommitmentDate string             `json:"commitment_date"`
	TotalAmount    string             `json:"total_amount"`
	SettledAmount  string             `json:"settled_amount"`
	PaidAmount     string             `json:"paid_amount"`
	Status         string             `json:"status"`
	SequenceNumber string             `json:"sequence_number,omitempty"`
	LineItems      []lineItemResponse `json:"line_items,omitempty"`
	Version        int64              `json:"version"`
}

func toCommitmentResponse(c *execution.Commitment) commitmentResponse {
	resp := commitmentResponse{
		ID:             c.ID,
		AllocationID:   c.AllocationID,
		CreditorID:     c.CreditorID,
		Object:         c.Object,
		Kind:           string(c.Kind),
		CommitmentDate: c.CommitmentDate.Format(dateLayout),
		TotalAmount:    c.TotalAmount.String(),
		SettledAmount:  c.SettledAmount.String(),
		PaidAmount:     c.PaidAmount.String(),
		Status:         string(c.Status),
		SequenceNumber: c.SequenceNumber,
		Version:        c.Version,
	}
	for _, item := range c.LineItems {
		resp.LineItems = append(resp.LineItems, lineItemResponse{
			Description: item.Description,
			Quantity:    item.Quantity.String(),
			UnitPrice:   item.UnitPrice.String(),
			LineTotal:   item.LineTotal().String(),
		})
	}
	return resp
}

type fiscalDocumentResponse struct {
	Number    string `json:"number"`
	Amount    string `json:"amount"`
	TaxAmount string `json:"tax_amount"`
	IssueDate string `json:"issue_date"`
}

type settlementResponse struct {
	ID              string                   `json:"id"`
	CommitmentID    string                   `json:"commitment_id"`
	SettlementDate  string                   `json:"settlement_date"`
	TotalAmount     string                   `json:"total_amount"`
	PaidAmount      string                   `json:"paid_amount"`
	Status          string                   `json:"status"`
	SequenceNumber  string                   `json:"sequence_number,omitempty"`
	FiscalDocuments []fiscalDocumentResponse `json:"fiscal_documents,omitempty"`
	Version         int64                    `json:"version"`
}

func toSettlementResponse(s *execution.Settlement) settlementResponse {
	resp := settlementResponse{
		ID:             s.ID,
		CommitmentID:   s.CommitmentID,
		SettlementDate: s.SettlementDate.Format(dateLayout),
		TotalAmount:    s.TotalAmount.String(),
		PaidAmount:     s.PaidAmount.String(),
		Status:         string(s.Status),
		SequenceNumber: s.SequenceNumber,
		Version:        s.Version,
	}
	for _, doc := range s.FiscalDocuments {
		resp.FiscalDocuments = append(resp.FiscalDocuments, fiscalDocumentResponse{
			Number:    doc.Number,
			Amount:    doc.Amount.String(),
			TaxAmount: doc.TaxAmount.String(),
			IssueDate: doc.IssueDate.Format(dateLayout),
		})
	}
	return resp
}

type disbursementResponse struct {
	ID             string `json:"id"`
	SettlementID   string `json:"settlement_id"`
	PaymentDate    string `json:"payment_date"`
	Amount         string `json:"amount"`
	PaymentMethod  string `json:"payment_method"`
	BankAccountID  string `json:"bank_account_id"`
	Status         string `json:"status"`
	SequenceNumber string `json:"sequence_number,omitempty"`
	Version        int64  `json:"version"`
}

func toDisbursementResponse(d *execution.Disbursement) disbursementResponse {
	return disbursementResponse{
		ID:             d.ID,
		SettlementID:   d.SettlementID,
		PaymentDate:    d.PaymentDate.Format(dateLayout),
		Amount:         d.Amount.String(),
		PaymentMethod:  string(d.PaymentMethod),
		BankAccountID:  d.BankAccountID,
		Status:         string(d.Status),
		SequenceNumber: d.SequenceNumber,
		Version:        d.Version,
	}
}

type balanceResponse struct {
	DocumentKind string `json:"document_kind"`
	DocumentID   string `json:"document_id"`
	Total        string `json:"total"`
	Consumed     string `json:"consumed"`
	Available    string `json:"available"`
}

func toBalanceResponse(b *application.Balance) balanceResponse {
	return balanceResponse{
		DocumentKind: string(b.DocumentKind),
		DocumentID:   b.DocumentID,
		Total:        b.Total.String(),
		Consumed:     b.Consumed.String(),
		Available:    b.Available.String(),
	}
}

type movementResponse struct {
	ID           string `json:"id"`
	DocumentKind string `json:"document_kind"`
	DocumentID   string `json:"document_id"`
	Description  string `json:"description"`
	Amount       string `json:"amount"`
	EventDate    string `json:"event_date"`
	ActorID      string `json:"actor_id,omitempty"`
	FiscalYearID string `json:"fiscal_year_id"`
	CreatedAt    string `json:"created_at"`
}

func toMovementResponse(m *execution.MovementRecord) movementResponse {
	return movementResponse{
		ID:           m.ID,
		DocumentKind: string(m.DocumentKind),
		DocumentID:   m.DocumentID,
		Description:  m.Description,
		Amount:       m.Amount.String(),
		EventDate:    m.EventDate.Format(dateLayout),
		ActorID:      m.ActorID,
		FiscalYearID: m.FiscalYearID,
		CreatedAt:    m.CreatedAt.Format(time.RFC3339),
	}
}
