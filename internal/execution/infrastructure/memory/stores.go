package memory

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"

	execution "govnext-ledger/internal/execution/domain"
)

type allocationStore tx

func (s *allocationStore) Create(ctx context.Context, allocation *execution.Allocation) error {
	_ = ctx
	if s.readOnly {
		return ErrReadOnly
	}
	s.stagedAllocations[allocation.ID] = cloneAllocation(allocation)
	return nil
}

func (s *allocationStore) Get(ctx context.Context, id string) (*execution.Allocation, error) {
	_ = ctx
	if allocation, ok := s.stagedAllocations[id]; ok {
		return cloneAllocation(allocation), nil
	}
	if allocation, ok := s.base.allocations[id]; ok {
		return cloneAllocation(allocation), nil
	}
	return nil, execution.ErrNotFound
}

func (s *allocationStore) GetForUpdate(ctx context.Context, id string) (*execution.Allocation, error) {
	if s.readOnly {
		return nil, ErrReadOnly
	}
	return s.Get(ctx, id)
}

func (s *allocationStore) Save(ctx context.Context, allocation *execution.Allocation) error {
	_ = ctx
	if s.readOnly {
		return ErrReadOnly
	}
	current, ok := s.stagedAllocations[allocation.ID]
	if !ok {
		current, ok = s.base.allocations[allocation.ID]
	}
	if !ok {
		return execution.ErrNotFound
	}
	if current.Version != allocation.Version {
		return execution.ErrStaleState
	}
	clone := cloneAllocation(allocation)
	clone.Version++
	s.stagedAllocations[allocation.ID] = clone
	return nil
}

type commitmentStore tx

func (s *commitmentStore) Create(ctx context.Context, commitment *execution.Commitment) error {
	_ = ctx
	if s.readOnly {
		return ErrReadOnly
	}
	s.stagedCommitments[commitment.ID] = cloneCommitment(commitment)
	return nil
}

func (s *commitmentStore) Get(ctx context.Context, id string) (*execution.Commitment, error) {
	_ = ctx
	if commitment, ok := s.stagedCommitments[id]; ok {
		return cloneCommitment(commitment), nil
	}
	if commitment, ok := s.base.commitments[id]; ok {
		return cloneCommitment(commitment), nil
	}
	return nil, execution.ErrNotFound
}

func (s *commitmentStore) GetForUpdate(ctx context.Context, id string) (*execution.Commitment, error) {
	if s.readOnly {
		return nil, ErrReadOnly
	}
	return s.Get(ctx, id)
}

func (s *commitmentStore) Save(ctx context.Context, commitment *execution.Commitment) error {
	_ = ctx
	if s.readOnly {
		return ErrReadOnly
	}
	current, ok := s.stagedCommitments[commitment.ID]
	if !ok {
		current, ok = s.base.commitments[commitment.ID]
	}
	if !ok {
		return execution.ErrNotFound
	}
	if current.Version != commitment.Version {
		return execution.ErrStaleState
	}
	clone := cloneCommitment(commitment)
	clone.Version++
	s.stagedCommitments[commitment.ID] = clone
	return nil
}

type settlementStore tx

func (s *settlementStore) Create(ctx context.Context, settlement *execution.Settlement) error {
	_ = ctx
	if s.readOnly {
		return ErrReadOnly
	}
	s.stagedSettlements[settlement.ID] = cloneSettlement(settlement)
	return nil
}

func (s *settlementStore) Get(ctx context.Context, id string) (*execution.Settlement, error) {
	_ = ctx
	if settlement, ok := s.stagedSettlements[id]; ok {
		return cloneSettlement(settlement), nil
	}
	if settlement, ok := s.base.settlements[id]; ok {
		return cloneSettlement(settlement), nil
	}
	return nil, execution.ErrNotFound
}

func (s *settlementStore) GetForUpdate(ctx context.Context, id string) (*execution.Settlement, error) {
	if s.readOnly {
		return nil, ErrReadOnly
	}
	return s.Get(ctx, id)
}

func (s *settlementStore) Save(ctx context.Context, settlement *execution.Settlement) error {
	_ = ctx
	if s.readOnly {
		return ErrReadOnly
	}
	current, ok := s.stagedSettlements[settlement.ID]
	if !ok {
		current, ok = s.base.settlements[settlement.ID]
	}
	if !ok {
		return execution.ErrNotFound
	}
	if current.Version != settlement.Version {
		return execution.ErrStaleState
	}
	clone := cloneSettlement(settlement)
	clone.Version++
	s.stagedSettlements[settlement.ID] = clone
	return nil
}

func (s *settlementStore) CountActiveByCommitment(ctx context.Context, commitmentID string) (int, error) {
	_ = ctx
	count := 0
	for _, settlement := range s.eachSettlement() {
		if settlement.CommitmentID == commitmentID && settlement.Status != execution.StatusCancelled && settlement.Status != execution.StatusDraft {
			count++
		}
	}
	return count, nil
}

func (s *settlementStore) eachSettlement() []*execution.Settlement {
	seen := make(map[string]struct{}, len(s.stagedSettlements))
	out := make([]*execution.Settlement, 0, len(s.base.settlements))
	for id, settlement := range s.stagedSettlements {
		seen[id] = struct{}{}
		out = append(out, settlement)
	}
	for id, settlement := range s.base.settlements {
		if _, ok := seen[id]; !ok {
			out = append(out, settlement)
		}
	}
	return out
}

type disbursementStore tx

func (s *disbursementStore) Create(ctx context.Context, disbursement *execution.Disbursement) error {
	_ = ctx
	if s.readOnly {
		return ErrReadOnly
	}
	clone := *disbursement
	s.stagedDisbursements[disbursement.ID] = &clone
	return nil
}

func (s *disbursementStore) Get(ctx context.Context, id string) (*execution.Disbursement, error) {
	_ = ctx
	if disbursement, ok := s.stagedDisbursements[id]; ok {
		clone := *disbursement
		return &clone, nil
	}
	if disbursement, ok := s.base.disbursements[id]; ok {
		clone := *disbursement
		return &clone, nil
	}
	return nil, execution.ErrNotFound
}

func (s *disbursementStore) GetForUpdate(ctx context.Context, id string) (*execution.Disbursement, error) {
	if s.readOnly {
		return nil, ErrReadOnly
	}
	return s.Get(ctx, id)
}

func (s *disbursementStore) Save(ctx context.Context, disbursement *execution.Disbursement) error {
	_ = ctx
	if s.readOnly {
		return ErrReadOnly
	}
	current, ok := s.stagedDisbursements[disbursement.ID]
	if !ok {
		current, ok = s.base.disbursements[disbursement.ID]
	}
	if !ok {
		return execution.ErrNotFound
	}
	if current.Version != disbursement.Version {
		return execution.ErrStaleState
	}
	clone := *disbursement
	clone.Version++
	s.stagedDisbursements[disbursement.ID] = &clone
	return nil
}

func (s *disbursementStore) CountIssuedBySettlement(ctx context.Context, settlementID string) (int, error) {
	_ = ctx
	count := 0
	for _, disbursement := range s.eachDisbursement() {
		if disbursement.SettlementID == settlementID && disbursement.Status == execution.StatusIssued {
			count++
		}
	}
	return count, nil
}

func (s *disbursementStore) SumIssuedByCommitment(ctx context.Context, commitmentID string) (decimal.Decimal, error) {
	_ = ctx
	settlementIDs := make(map[string]struct{})
	for _, settlement := range (*settlementStore)(s).eachSettlement() {
		if settlement.CommitmentID == commitmentID {
			settlementIDs[settlement.ID] = struct{}{}
		}
	}
	total := decimal.Zero
	for _, disbursement := range s.eachDisbursement() {
		if _, ok := settlementIDs[disbursement.SettlementID]; !ok {
			continue
		}
		if disbursement.Status == execution.StatusIssued {
			total = total.Add(disbursement.Amount)
		}
	}
	return total, nil
}

func (s *disbursementStore) eachDisbursement() []*execution.Disbursement {
	seen := make(map[string]struct{}, len(s.stagedDisbursements))
	out := make([]*execution.Disbursement, 0, len(s.base.disbursements))
	for id, disbursement := range s.stagedDisbursements {
		seen[id] = struct{}{}
		out = append(out, disbursement)
	}
	for id, disbursement := range s.base.disbursements {
		if _, ok := seen[id]; !ok {
			out = append(out, disbursement)
		}
	}
	return out
}

type movementStore tx

func (s *movementStore) Append(ctx context.Context, record *execution.MovementRecord) error {
	_ = ctx
	if s.readOnly {
		return ErrReadOnly
	}
	clone := *record
	s.stagedMovements = append(s.stagedMovements, &clone)
	return nil
}

func (s *movementStore) List(ctx context.Context, filter execution.MovementFilter) ([]*execution.MovementRecord, error) {
	_ = ctx
	all := make([]*execution.MovementRecord, 0, len(s.base.movements)+len(s.stagedMovements))
	all = append(all, s.base.movements...)
	all = append(all, s.stagedMovements...)

	matched := make([]*execution.MovementRecord, 0, len(all))
	for _, record := range all {
		if filter.FiscalYearID != "" && record.FiscalYearID != filter.FiscalYearID {
			continue
		}
		if filter.DocumentKind != "" && record.DocumentKind != filter.DocumentKind {
			continue
		}
		if filter.DocumentID != "" && !strings.EqualFold(record.DocumentID, filter.DocumentID) {
			continue
		}
		clone := *record
		matched = append(matched, &clone)
	}
	if filter.Offset > 0 {
		if filter.Offset >= len(matched) {
			return nil, nil
		}
		matched = matched[filter.Offset:]
	}
	if filter.Limit > 0 && filter.Limit < len(matched) {
		matched = matched[:filter.Limit]
	}
	return matched, nil
}

func cloneAllocation(allocation *execution.Allocation) *execution.Allocation {
	clone := *allocation
	return &clone
}

func cloneCommitment(commitment *execution.Commitment) *execution.Commitment {
	clone := *commitment
	clone.LineItems = append([]execution.LineItem(nil), commitment.LineItems...)
	return &clone
}

func cloneSettlement(settlement *execution.Settlement) *execution.Settlement {
	clone := *settlement
	clone.FiscalDocuments = append([]execution.FiscalDocument(nil), settlement.FiscalDocuments...)
	return &clone
}
