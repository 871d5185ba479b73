package interfaces

import (
	"bytes"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/xuri/excelize/v2"

	execution "govnext-ledger/internal/execution/domain"
)

// BuildCommitmentNotePDF renders the printable commitment note.
func BuildCommitmentNotePDF(commitment *execution.Commitment, allocation *execution.Allocation) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetFont("Arial", "", 12)
	pdf.AddPage()

	pdf.Cell(0, 8, "Commitment Note")
	pdf.Ln(10)
	pdf.SetFont("Arial", "", 10)
	pdf.Cell(0, 6, fmt.Sprintf("Number: %s", commitment.SequenceNumber))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Date: %s", commitment.CommitmentDate.Format("2006-01-02")))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Creditor: %s", commitment.CreditorID))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Object: %s", commitment.Object))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Kind: %s", commitment.Kind))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Status: %s", commitment.Status))
	pdf.Ln(5)
	if allocation != nil {
		pdf.Cell(0, 6, fmt.Sprintf("Budget line: %s / %s", allocation.OrgUnitID, allocation.ClassificationCode))
		pdf.Ln(5)
	}
	pdf.Cell(0, 6, fmt.Sprintf("Generated: %s", time.Now().UTC().Format(time.RFC3339)))
	pdf.Ln(8)

	pdf.Cell(0, 6, fmt.Sprintf("Total Amount: %s", commitment.TotalAmount.StringFixed(2)))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Settled Amount: %s", commitment.SettledAmount.StringFixed(2)))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Paid Amount: %s", commitment.PaidAmount.StringFixed(2)))
	pdf.Ln(8)

	if len(commitment.LineItems) > 0 {
		pdf.SetFont("Arial", "B", 10)
		pdf.CellFormat(80, 6, "Description", "1", 0, "C", false, 0, "")
		pdf.CellFormat(30, 6, "Quantity", "1", 0, "C", false, 0, "")
		pdf.CellFormat(35, 6, "Unit Price", "1", 0, "C", false, 0, "")
		pdf.CellFormat(35, 6, "Total", "1", 0, "C", false, 0, "")
		pdf.Ln(-1)
		pdf.SetFont("Arial", "", 10)
		for _, item := range commitment.LineItems {
			pdf.CellFormat(80, 6, item.Description, "1", 0, "L", false, 0, "")
			pdf.CellFormat(30, 6, item.Quantity.String(), "1", 0, "R", false, 0, "")
			pdf.CellFormat(35, 6, item.UnitPrice.StringFixed(2), "1", 0, "R", false, 0, "")
			pdf.CellFormat(35, 6, item.LineTotal().StringFixed(2), "1", 0, "R", false, 0, "")
			pdf.Ln(-1)
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// BuildMovementsXLSX renders the movement history workbook.
func BuildMovementsXLSX(records []*execution.MovementRecord) ([]byte, error) {
	f := excelize.NewFile()
	sheet := "movements"
	f.SetSheetName("Sheet1", sheet)

	headers := []string{"Date", "Document Kind", "Document ID", "Description", "Amount", "Actor", "Fiscal Year"}
	for i, header := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return nil, err
		}
		_ = f.SetCellValue(sheet, cell, header)
	}
	for i, record := range records {
		row := i + 2
		_ = f.SetCellValue(sheet, fmt.Sprintf("A%d", row), record.EventDate.Format("2006-01-02"))
		_ = f.SetCellValue(sheet, fmt.Sprintf("B%d", row), string(record.DocumentKind))
		_ = f.SetCellValue(sheet, fmt.Sprintf("C%d", row), record.DocumentID)
		_ = f.SetCellValue(sheet, fmt.Sprintf("D%d", row), record.Description)
		_ = f.SetCellValue(sheet, fmt.Sprintf("E%d", row), record.Amount.StringFixed(2))
		_ = f.SetCellValue(sheet, fmt.Sprintf("F%d", row), record.ActorID)
		_ = f.SetCellValue(sheet, fmt.Sprintf("G%d", row), record.FiscalYearID)
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
