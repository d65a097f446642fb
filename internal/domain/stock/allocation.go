package stock

import (
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/wms/inventory/internal/domain/shared"
)

// AllocationPolicy controls the order in which candidate stock records
// are consumed. The preferred warehouse (usually the one that initiated
// the request) is drained first, then warehouses in priority order, then
// everything else. Ties are always broken by ascending location id so a
// plan is deterministic for a given ledger state.
type AllocationPolicy struct {
	PreferredWarehouseID uuid.UUID
	WarehousePriority    []uuid.UUID
}

// AllocationLine is one contribution to a plan: take Quantity units from
// one stock record.
type AllocationLine struct {
	Record   *StockRecord
	Quantity int64
}

// AllocationPlan is the outcome of planning one product's reservation.
// Partial plans are valid results, not errors; Shortfall reports the
// residual the caller may decide to reject on.
type AllocationPlan struct {
	ProductColorID string
	Requested      int64
	Lines          []AllocationLine
	TotalAllocated int64
	Shortfall      int64
}

// IsFull returns true if the plan covers the whole requested quantity
func (p *AllocationPlan) IsFull() bool {
	return p.Shortfall == 0
}

// IsEmpty returns true if nothing could be allocated
func (p *AllocationPlan) IsEmpty() bool {
	return p.TotalAllocated == 0
}

// PlanAllocation greedily spreads totalNeeded across the candidate
// records: visit candidates in policy order, take min(available,
// remaining) from each, stop when satisfied or exhausted. The plan is a
// pure computation; applying it (Reserve per line, reservation rows,
// audit rows) is the caller's job and must happen while the records are
// locked.
func PlanAllocation(productColorID string, totalNeeded int64, candidates []*StockRecord, policy AllocationPolicy) (*AllocationPlan, error) {
	if productColorID == "" {
		return nil, shared.NewInvalidRequestError("product color id is required")
	}
	if totalNeeded <= 0 {
		return nil, shared.NewInvalidRequestError("requested quantity must be positive")
	}

	eligible := make([]*StockRecord, 0, len(candidates))
	for _, r := range candidates {
		if r.ProductColorID != productColorID || r.Status != StockRecordStatusActive {
			continue
		}
		if r.Available() > 0 {
			eligible = append(eligible, r)
		}
	}
	sortCandidates(eligible, policy)

	plan := &AllocationPlan{
		ProductColorID: productColorID,
		Requested:      totalNeeded,
	}

	remaining := totalNeeded
	for _, r := range eligible {
		if remaining == 0 {
			break
		}
		take := r.Available()
		if take > remaining {
			take = remaining
		}
		plan.Lines = append(plan.Lines, AllocationLine{Record: r, Quantity: take})
		plan.TotalAllocated += take
		remaining -= take
	}
	plan.Shortfall = remaining

	return plan, nil
}

// sortCandidates orders records by warehouse rank, then warehouse id,
// then location id. The id tie-breaks keep the order stable across
// invocations regardless of how the store returned the rows.
func sortCandidates(records []*StockRecord, policy AllocationPolicy) {
	rank := func(warehouseID uuid.UUID) int {
		if warehouseID == policy.PreferredWarehouseID {
			return 0
		}
		for i, id := range policy.WarehousePriority {
			if warehouseID == id {
				return i + 1
			}
		}
		return len(policy.WarehousePriority) + 1
	}

	sort.SliceStable(records, func(i, j int) bool {
		ri, rj := rank(records[i].WarehouseID), rank(records[j].WarehouseID)
		if ri != rj {
			return ri < rj
		}
		if records[i].WarehouseID != records[j].WarehouseID {
			return strings.Compare(records[i].WarehouseID.String(), records[j].WarehouseID.String()) < 0
		}
		return strings.Compare(records[i].LocationID.String(), records[j].LocationID.String()) < 0
	})
}
