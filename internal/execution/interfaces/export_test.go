package interfaces

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	execution "govnext-ledger/internal/execution/domain"
)

func TestBuildCommitmentNotePDF(t *testing.T) {
	commitment := &execution.Commitment{
		ID:             "c-1",
		AllocationID:   "a-1",
		CreditorID:     "cred-1",
		Object:         "fleet maintenance",
		Kind:           execution.CommitmentOrdinary,
		CommitmentDate: time.Date(2025, time.March, 9, 0, 0, 0, 0, time.UTC),
		TotalAmount:    decimal.RequireFromString("1000"),
		SettledAmount:  decimal.Zero,
		PaidAmount:     decimal.Zero,
		Status:         execution.StatusIssued,
		SequenceNumber: "000001/2025",
		LineItems: []execution.LineItem{
			{
				Description: "tires",
				Quantity:    decimal.RequireFromString("4"),
				UnitPrice:   decimal.RequireFromString("250"),
			},
		},
	}
	allocation := &execution.Allocation{
		ID:                 "a-1",
		OrgUnitID:          "unit-1",
		ClassificationCode: "3.3.90.30",
	}

	data, err := BuildCommitmentNotePDF(commitment, allocation)
	if err != nil {
		t.Fatalf("build pdf: %v", err)
	}
	if !strings.HasPrefix(string(data), "%PDF") {
		t.Fatalf("output does not look like a PDF")
	}
}

func TestBuildCommitmentNotePDFWithoutAllocation(t *testing.T) {
	commitment := &execution.Commitment{
		ID:             "c-2",
		Kind:           execution.CommitmentEstimated,
		CommitmentDate: time.Date(2025, time.March, 9, 0, 0, 0, 0, time.UTC),
		TotalAmount:    decimal.RequireFromString("500"),
		SettledAmount:  decimal.Zero,
		PaidAmount:     decimal.Zero,
		Status:         execution.StatusDraft,
	}
	data, err := BuildCommitmentNotePDF(commitment, nil)
	if err != nil {
		t.Fatalf("build pdf: %v", err)
	}
	if len(data) == 0 {
		t.Fatalf("empty output")
	}
}

func TestBuildMovementsXLSX(t *testing.T) {
	records := []*execution.MovementRecord{
		{
			ID:           "m-1",
			DocumentKind: execution.KindAllocation,
			DocumentID:   "a-1",
			Description:  "allocation approved",
			Amount:       decimal.RequireFromString("100000"),
			EventDate:    time.Date(2025, time.March, 10, 0, 0, 0, 0, time.UTC),
			ActorID:      "user-1",
			FiscalYearID: "fy-2025",
		},
		{
			ID:           "m-2",
			DocumentKind: execution.KindCommitment,
			DocumentID:   "c-1",
			Description:  "commitment issued",
			Amount:       decimal.RequireFromString("60000"),
			EventDate:    time.Date(2025, time.March, 10, 0, 0, 0, 0, time.UTC),
			ActorID:      "user-1",
			FiscalYearID: "fy-2025",
		},
	}

	data, err := BuildMovementsXLSX(records)
	if err != nil {
		t.Fatalf("build xlsx: %v", err)
	}

	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("open workbook: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows("movements")
	if err != nil {
		t.Fatalf("read rows: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("got %d rows, want header plus 2 records", len(rows))
	}
	if rows[0][0] != "Date" || rows[0][4] != "Amount" {
		t.Fatalf("unexpected header row %v", rows[0])
	}
	if rows[1][3] != "allocation approved" || rows[1][4] != "100000.00" {
		t.Fatalf("unexpected first record %v", rows[1])
	}
	if rows[2][1] != "commitment" {
		t.Fatalf("unexpected second record %v", rows[2])
	}
}
