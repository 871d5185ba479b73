package execution

// DocumentStatus is the lifecycle state of a stage document.
type DocumentStatus string

const (
	StatusDraft            DocumentStatus = "draft"
	StatusIssued           DocumentStatus = "issued"
	StatusPartiallySettled DocumentStatus = "partially_settled"
	StatusSettled          DocumentStatus = "settled"
	StatusPartiallyPaid    DocumentStatus = "partially_paid"
	StatusPaid             DocumentStatus = "paid"
	StatusCancelled        DocumentStatus = "cancelled"
)

// DocumentKind names the ledger document series a movement refers to.
type DocumentKind string

const (
	KindAllocation   DocumentKind = "allocation"
	KindCommitment   DocumentKind = "commitment"
	KindSettlement   DocumentKind = "settlement"
	KindDisbursement DocumentKind = "disbursement"
)
