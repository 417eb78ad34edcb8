package events

import (
	"github.com/vsinha/mps/pkg/domain/entities"
)

const (
	PlanRequestedEvent         = "plan.requested"
	FeasibilityCalculatedEvent = "feasibility.calculated"
	ScheduleGeneratedEvent     = "schedule.generated"
	RiskAlertsRaisedEvent      = "risk.alerts_raised"
	PlanCompletedEvent         = "plan.completed"
	PlanFailedEvent            = "plan.failed"
)

// AllPlanEvents lists every event type a planning run can emit
var AllPlanEvents = []string{
	PlanRequestedEvent,
	FeasibilityCalculatedEvent,
	ScheduleGeneratedEvent,
	RiskAlertsRaisedEvent,
	PlanCompletedEvent,
	PlanFailedEvent,
}

type PlanRequested struct {
	ProductCode      entities.MaterialCode `json:"product_code"`
	Quantity         float64               `json:"quantity"`
	Policy           entities.Policy       `json:"policy,omitempty"`
	InventoryVersion uint64                `json:"inventory_version"`
}

type FeasibilityCalculated struct {
	ProductCode    entities.MaterialCode `json:"product_code"`
	MaxSets        int64                 `json:"max_sets"`
	LimitingFactor entities.MaterialCode `json:"limiting_factor,omitempty"`
	CacheHit       bool                  `json:"cache_hit"`
}

type ScheduleGenerated struct {
	ProductCode  entities.MaterialCode   `json:"product_code"`
	Policy       entities.Policy         `json:"policy"`
	Tasks        int                     `json:"tasks"`
	Feasible     bool                    `json:"feasible"`
	ShiftDays    int                     `json:"shift_days,omitempty"`
	CriticalPath []entities.MaterialCode `json:"critical_path"`
}

type RiskAlertsRaised struct {
	ProductCode entities.MaterialCode `json:"product_code"`
	Critical    int                   `json:"critical"`
	Warning     int                   `json:"warning"`
}

type PlanCompleted struct {
	ProductCode entities.MaterialCode `json:"product_code"`
	DurationMs  int64                 `json:"duration_ms"`
}

type PlanFailed struct {
	ProductCode entities.MaterialCode `json:"product_code"`
	Error       string                `json:"error"`
}
