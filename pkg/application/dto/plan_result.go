package dto

import (
	"time"

	"github.com/google/uuid"

	"github.com/vsinha/mps/pkg/domain/entities"
)

// PlanRequest asks for the feasibility and schedule of one product
type PlanRequest struct {
	ProductCode entities.MaterialCode
	Quantity    float64
	Policy      entities.Policy
	// ReferenceDate is the plan start (forward) or the required completion date (backward); zero means today
	ReferenceDate time.Time
	TargetDate    *time.Time
}

// PlanRequestFromDemand converts a stored demand into a request. A backward demand
// completes on its due date; a forward demand starts at reference and is judged against the due date.
func PlanRequestFromDemand(d *entities.Demand, reference time.Time) PlanRequest {
	req := PlanRequest{
		ProductCode:   d.ProductCode,
		Quantity:      d.Quantity,
		Policy:        d.Policy,
		ReferenceDate: reference,
		TargetDate:    d.DueDate,
	}
	if d.Policy == entities.PolicyBackward && d.DueDate != nil {
		req.ReferenceDate = *d.DueDate
		req.TargetDate = nil
	}
	return req
}

// PlanResult is the complete output of one planning run
type PlanResult struct {
	RunID            uuid.UUID               `json:"run_id"`
	ProductCode      entities.MaterialCode   `json:"product_code"`
	Quantity         float64                 `json:"quantity"`
	InventoryVersion uint64                  `json:"inventory_version"`
	Feasibility      *entities.AssemblyNode  `json:"feasibility"`
	Tree             *entities.BOMTree       `json:"-"`
	Schedule         *entities.Schedule      `json:"schedule,omitempty"`
	Alerts           []entities.RiskAlert    `json:"alerts"`
	Diagnostics      []entities.Diagnostic   `json:"diagnostics,omitempty"`
	Bottlenecks      []entities.MaterialCode `json:"bottlenecks,omitempty"`
	CacheHit         bool                    `json:"cache_hit"`
	GeneratedAt      time.Time               `json:"generated_at"`
	Duration         time.Duration           `json:"-"`
}

// MaxSets returns how many finished units the current inventory supports
func (r *PlanResult) MaxSets() int64 {
	if r == nil || r.Feasibility == nil {
		return 0
	}
	return r.Feasibility.MaxSets
}

// CriticalAlerts counts the critical alerts of the run
func (r *PlanResult) CriticalAlerts() int {
	n := 0
	for _, a := range r.Alerts {
		if a.IsCritical() {
			n++
		}
	}
	return n
}

// FeasibilityCacheKey identifies a memoised feasibility analysis
type FeasibilityCacheKey struct {
	ProductCode      entities.MaterialCode
	InventoryVersion uint64
}

// FeasibilityAnalysis is a cached structure tree plus its feasibility result
type FeasibilityAnalysis struct {
	Tree        *entities.BOMTree
	Root        *entities.AssemblyNode
	Materials   map[entities.MaterialCode]*entities.MaterialInfo
	Diagnostics []entities.Diagnostic
	ComputedAt  time.Time
}
