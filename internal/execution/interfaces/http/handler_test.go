package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"govnext-ledger/internal/execution/application"
	"govnext-ledger/internal/execution/infrastructure/memory"
	ledgerhttp "govnext-ledger/internal/execution/interfaces/http"
	fiscalyear "govnext-ledger/internal/fiscalyear/domain"
)

type fixedClock struct {
	now time.Time
}

func (c fixedClock) Now() time.Time { return c.now }

type stubYears struct{}

func (stubYears) Get(ctx context.Context, id string) (*fiscalyear.FiscalYear, error) {
	_ = ctx
	if id != "fy-2025" {
		return nil, fiscalyear.ErrNotFound
	}
	return &fiscalyear.FiscalYear{
		ID:        "fy-2025",
		Year:      2025,
		StartDate: time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2025, time.December, 31, 0, 0, 0, 0, time.UTC),
		Status:    fiscalyear.StatusActive,
	}, nil
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	clock := fixedClock{now: time.Date(2025, time.March, 10, 12, 0, 0, 0, time.UTC)}
	uow := memory.NewUnitOfWork()
	cfg := application.DefaultConfig()

	allocations, err := application.NewAllocationService(uow, stubYears{}, cfg, clock)
	if err != nil {
		t.Fatalf("allocation service: %v", err)
	}
	commitments, err := application.NewCommitmentService(uow, cfg, clock)
	if err != nil {
		t.Fatalf("commitment service: %v", err)
	}
	settlements, err := application.NewSettlementService(uow, cfg, clock)
	if err != nil {
		t.Fatalf("settlement service: %v", err)
	}
	disbursements, err := application.NewDisbursementService(uow, cfg, clock)
	if err != nil {
		t.Fatalf("disbursement service: %v", err)
	}
	queries, err := application.NewQueryService(uow)
	if err != nil {
		t.Fatalf("query service: %v", err)
	}

	allocationHandler, err := ledgerhttp.NewAllocationHandler(allocations, queries)
	if err != nil {
		t.Fatalf("allocation handler: %v", err)
	}
	commitmentHandler, err := ledgerhttp.NewCommitmentHandler(commitments, queries)
	if err != nil {
		t.Fatalf("commitment handler: %v", err)
	}
	settlementHandler, err := ledgerhttp.NewSettlementHandler(settlements, queries)
	if err != nil {
		t.Fatalf("settlement handler: %v", err)
	}
	disbursementHandler, err := ledgerhttp.NewDisbursementHandler(disbursements)
	if err != nil {
		t.Fatalf("disbursement handler: %v", err)
	}
	movementHandler, err := ledgerhttp.NewMovementHandler(queries)
	if err != nil {
		t.Fatalf("movement handler: %v", err)
	}

	mux := http.NewServeMux()
	mux.Handle("/api/v1/allocations", allocationHandler)
	mux.Handle("/api/v1/allocations/", allocationHandler)
	mux.Handle("/api/v1/commitments", commitmentHandler)
	mux.Handle("/api/v1/commitments/", commitmentHandler)
	mux.Handle("/api/v1/settlements", settlementHandler)
	mux.Handle("/api/v1/settlements/", settlementHandler)
	mux.Handle("/api/v1/disbursements", disbursementHandler)
	mux.Handle("/api/v1/disbursements/", disbursementHandler)
	mux.Handle("/api/v1/movements", movementHandler)
	mux.Handle("/api/v1/movements/", movementHandler)

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func postJSON(t *testing.T, url, body string) (*http.Response, map[string]any) {
	t.Helper()
	resp, err := http.Post(url, "application/json", bytes.NewReader([]byte(body)))
	if err != nil {
		t.Fatalf("post %s: %v", url, err)
	}
	defer resp.Body.Close()
	var decoded map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		decoded = nil
	}
	return resp, decoded
}

func getJSON(t *testing.T, url string) (*http.Response, map[string]any) {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("get %s: %v", url, err)
	}
	defer resp.Body.Close()
	var decoded map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		decoded = nil
	}
	return resp, decoded
}

func TestAllocationToSettlementFlow(t *testing.T) {
	server := newTestServer(t)

	resp, allocation := postJSON(t, server.URL+"/api/v1/allocations", `{
		"fiscal_year_id": "fy-2025",
		"org_unit_id": "unit-1",
		"classification_code": "3.3.90.30",
		"initial_amount": "100000"
	}`)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create allocation status = %d", resp.StatusCode)
	}
	allocationID := allocation["id"].(string)

	resp, commitment := postJSON(t, server.URL+"/api/v1/commitments", `{
		"allocation_id": "`+allocationID+`",
		"creditor_id": "cred-1",
		"object": "fleet maintenance",
		"kind": "estimated",
		"commitment_date": "2025-03-09",
		"total_amount": "60000"
	}`)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create commitment status = %d", resp.StatusCode)
	}
	commitmentID := commitment["id"].(string)
	if commitment["status"] != "draft" {
		t.Fatalf("status = %v, want draft", commitment["status"])
	}

	resp, submitted := postJSON(t, server.URL+"/api/v1/commitments/"+commitmentID+"/submit", `{}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("submit status = %d", resp.StatusCode)
	}
	if submitted["sequence_number"] != "000001/2025" {
		t.Fatalf("sequence = %v, want 000001/2025", submitted["sequence_number"])
	}

	resp, balance := getJSON(t, server.URL+"/api/v1/allocations/"+allocationID+"/balance")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("balance status = %d", resp.StatusCode)
	}
	if balance["available"] != "40000" {
		t.Fatalf("available = %v, want 40000", balance["available"])
	}

	resp, settlement := postJSON(t, server.URL+"/api/v1/settlements", `{
		"commitment_id": "`+commitmentID+`",
		"settlement_date": "2025-03-09",
		"fiscal_documents": [
			{"number": "NF-1", "amount": "60000", "issue_date": "2025-03-09"}
		]
	}`)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create settlement status = %d", resp.StatusCode)
	}
	settlementID := settlement["id"].(string)

	resp, _ = postJSON(t, server.URL+"/api/v1/settlements/"+settlementID+"/submit", `{}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("submit settlement status = %d", resp.StatusCode)
	}

	resp, updated := getJSON(t, server.URL+"/api/v1/commitments/"+commitmentID)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("get commitment status = %d", resp.StatusCode)
	}
	if updated["status"] != "settled" {
		t.Fatalf("commitment status = %v, want settled", updated["status"])
	}
}

func TestInsufficientBalanceResponse(t *testing.T) {
	server := newTestServer(t)

	_, allocation := postJSON(t, server.URL+"/api/v1/allocations", `{
		"fiscal_year_id": "fy-2025",
		"org_unit_id": "unit-1",
		"classification_code": "3.3.90.30",
		"initial_amount": "50000"
	}`)
	allocationID := allocation["id"].(string)

	draft := func() string {
		_, commitment := postJSON(t, server.URL+"/api/v1/commitments", `{
			"allocation_id": "`+allocationID+`",
			"creditor_id": "cred-1",
			"object": "supplies",
			"kind": "estimated",
			"commitment_date": "2025-03-09",
			"total_amount": "30000"
		}`)
		return commitment["id"].(string)
	}

	resp, _ := postJSON(t, server.URL+"/api/v1/commitments/"+draft()+"/submit", `{}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("first submit status = %d", resp.StatusCode)
	}

	resp, body := postJSON(t, server.URL+"/api/v1/commitments/"+draft()+"/submit", `{}`)
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("second submit status = %d, want 409", resp.StatusCode)
	}
	if body["error"] != "insufficient balance" {
		t.Fatalf("error = %v", body["error"])
	}
	details := body["details"].([]any)
	fields := details[0].(map[string]any)
	if fields["available"] != "20000" || fields["requested"] != "30000" {
		t.Fatalf("details = %v", fields)
	}
}

func TestValidationFailureResponse(t *testing.T) {
	server := newTestServer(t)

	resp, body := postJSON(t, server.URL+"/api/v1/allocations", `{
		"fiscal_year_id": "fy-2025",
		"org_unit_id": "",
		"classification_code": "3.3.90.30",
		"initial_amount": "-5"
	}`)
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", resp.StatusCode)
	}
	if body["error"] != "validation failed" {
		t.Fatalf("error = %v", body["error"])
	}
	if len(body["details"].([]any)) < 2 {
		t.Fatalf("details = %v, want at least 2 entries", body["details"])
	}
}

func TestUnknownDocumentResponds404(t *testing.T) {
	server := newTestServer(t)

	resp, body := getJSON(t, server.URL+"/api/v1/allocations/no-such-id/balance")
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", resp.StatusCode)
	}
	if body["error"] != "not found" {
		t.Fatalf("error = %v", body["error"])
	}
}

func TestCommitmentNotePDF(t *testing.T) {
	server := newTestServer(t)

	_, allocation := postJSON(t, server.URL+"/api/v1/allocations", `{
		"fiscal_year_id": "fy-2025",
		"org_unit_id": "unit-1",
		"classification_code": "3.3.90.30",
		"initial_amount": "100000"
	}`)
	allocationID := allocation["id"].(string)
	_, commitment := postJSON(t, server.URL+"/api/v1/commitments", `{
		"allocation_id": "`+allocationID+`",
		"creditor_id": "cred-1",
		"object": "fleet maintenance",
		"kind": "ordinary",
		"commitment_date": "2025-03-09",
		"total_amount": "1000",
		"line_items": [
			{"description": "tires", "quantity": "4", "unit_price": "250"}
		]
	}`)
	commitmentID := commitment["id"].(string)
	postJSON(t, server.URL+"/api/v1/commitments/"+commitmentID+"/submit", `{}`)

	resp, err := http.Get(server.URL + "/api/v1/commitments/" + commitmentID + "/note.pdf")
	if err != nil {
		t.Fatalf("get note: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "application/pdf" {
		t.Fatalf("content type = %q", ct)
	}
	buf := new(bytes.Buffer)
	if _, err := buf.ReadFrom(resp.Body); err != nil {
		t.Fatalf("read body: %v", err)
	}
	if !strings.HasPrefix(buf.String(), "%PDF") {
		t.Fatalf("body does not look like a PDF")
	}
}

func TestMovementsListAndExport(t *testing.T) {
	server := newTestServer(t)

	_, allocation := postJSON(t, server.URL+"/api/v1/allocations", `{
		"fiscal_year_id": "fy-2025",
		"org_unit_id": "unit-1",
		"classification_code": "3.3.90.30",
		"initial_amount": "100000"
	}`)
	allocationID := allocation["id"].(string)
	postJSON(t, server.URL+"/api/v1/allocations/"+allocationID+"/block", `{"amount": "5000"}`)

	resp, body := getJSON(t, server.URL+"/api/v1/movements?fiscal_year_id=fy-2025")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("list status = %d", resp.StatusCode)
	}
	movements := body["movements"].([]any)
	if len(movements) != 2 {
		t.Fatalf("got %d movements, want 2", len(movements))
	}

	exportResp, err := http.Get(server.URL + "/api/v1/movements/export.xlsx")
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	defer exportResp.Body.Close()
	if exportResp.StatusCode != http.StatusOK {
		t.Fatalf("export status = %d", exportResp.StatusCode)
	}
	buf := new(bytes.Buffer)
	if _, err := buf.ReadFrom(exportResp.Body); err != nil {
		t.Fatalf("read export: %v", err)
	}
	// XLSX files are zip archives.
	if !bytes.HasPrefix(buf.Bytes(), []byte("PK")) {
		t.Fatalf("body does not look like a workbook")
	}
}
