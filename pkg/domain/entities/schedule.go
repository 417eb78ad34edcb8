package entities

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Policy selects how a schedule is generated
type Policy string

const (
	// PolicyForward starts every tier at the plan start date
	PolicyForward Policy = "forward"
	// PolicyBackward derives the latest safe start of every tier from a required completion date
	PolicyBackward Policy = "backward"
)

// ParsePolicy parses a policy name
func ParsePolicy(s string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "forward", "default", "":
		return PolicyForward, nil
	case "backward", "material-ready", "material_ready", "v2":
		return PolicyBackward, nil
	default:
		return "", fmt.Errorf("%w: %s (expected: forward or backward)", ErrUnknownPolicy, s)
	}
}

// TaskType is the tier of a Gantt task
type TaskType string

const (
	TaskProduct   TaskType = "product"
	TaskModule    TaskType = "module"
	TaskComponent TaskType = "component"
	TaskMaterial  TaskType = "material"
)

// TaskTypeForLevel maps a tree level and leaf flag to a task type
func TaskTypeForLevel(level int, leaf bool) TaskType {
	switch {
	case level == 0:
		return TaskProduct
	case leaf:
		return TaskMaterial
	case level == 1:
		return TaskModule
	default:
		return TaskComponent
	}
}

// TaskStatus is the risk classification of a task
type TaskStatus string

const (
	StatusNormal   TaskStatus = "normal"
	StatusWarning  TaskStatus = "warning"
	StatusCritical TaskStatus = "critical"
)

// Severity orders statuses, normal lowest
func (s TaskStatus) Severity() int {
	switch s {
	case StatusCritical:
		return 2
	case StatusWarning:
		return 1
	default:
		return 0
	}
}

// MaterialDetail is the material-readiness data of a backward-scheduled task
type MaterialDetail struct {
	MaterialType       MaterialType     `json:"material_type"`
	ChildQuantity      float64          `json:"child_quantity"`
	LossRate           float64          `json:"loss_rate"`
	RequiredQuantity   float64          `json:"required_quantity"`
	AvailableInventory float64          `json:"available_inventory"`
	Deficit            float64          `json:"deficit"`
	Ready              bool             `json:"ready"`
	LeadTime           ResolvedLeadTime `json:"lead_time"`
	AlternativeGroup   string           `json:"alternative_group,omitempty"`
	// Alternatives lists the other members of the task's alternative group
	Alternatives []MaterialCode `json:"alternatives,omitempty"`
	// Pooled is set when the group requirement is met from several members' stock
	Pooled bool `json:"pooled,omitempty"`
}

// GanttTask is one scheduled node
type GanttTask struct {
	ID        string          `json:"id"`
	Code      MaterialCode    `json:"code"`
	Name      string          `json:"name"`
	Type      TaskType        `json:"type"`
	Level     int             `json:"level"`
	StartDate time.Time       `json:"start_date"`
	EndDate   time.Time       `json:"end_date"`
	Duration  int             `json:"duration"`
	Status    TaskStatus      `json:"status"`
	Detail    *MaterialDetail `json:"detail,omitempty"`
	Children  []*GanttTask    `json:"children,omitempty"`
}

// Walk visits the task and its descendants depth-first
func (t *GanttTask) Walk(visit func(task *GanttTask, parent *GanttTask)) {
	t.walk(nil, visit)
}

func (t *GanttTask) walk(parent *GanttTask, visit func(*GanttTask, *GanttTask)) {
	if t == nil {
		return
	}
	visit(t, parent)
	for _, c := range t.Children {
		c.walk(t, visit)
	}
}

// Flatten returns the task tree in depth-first order
func (t *GanttTask) Flatten() []*GanttTask {
	var tasks []*GanttTask
	t.Walk(func(task, _ *GanttTask) {
		tasks = append(tasks, task)
	})
	return tasks
}

// Schedule is the output of one schedule generation run
type Schedule struct {
	RunID         uuid.UUID    `json:"run_id"`
	Policy        Policy       `json:"policy"`
	ProductCode   MaterialCode `json:"product_code"`
	Quantity      float64      `json:"quantity"`
	ReferenceDate time.Time    `json:"reference_date"`
	TargetDate    *time.Time   `json:"target_date,omitempty"`
	Root          *GanttTask   `json:"root"`

	EarliestStart  time.Time `json:"earliest_start"`
	ProjectedEnd   time.Time `json:"projected_end"`
	TotalCycleDays int       `json:"total_cycle_days"`
	OverdueDays    int       `json:"overdue_days,omitempty"`
	Feasible       bool      `json:"feasible"`
	// ShiftDays is how far the whole plan must slip so that nothing starts in the past
	ShiftDays int `json:"shift_days,omitempty"`

	CriticalPath      []MaterialCode `json:"critical_path"`
	ReadyMaterials    []MaterialCode `json:"ready_materials,omitempty"`
	NotReadyMaterials []MaterialCode `json:"not_ready_materials,omitempty"`
	Diagnostics       []Diagnostic   `json:"diagnostics,omitempty"`
}

// Tasks returns every task of the schedule in depth-first order
func (s *Schedule) Tasks() []*GanttTask {
	if s == nil || s.Root == nil {
		return nil
	}
	return s.Root.Flatten()
}

// DaysBetween returns the calendar days from the date of a to the date of b
func DaysBetween(a, b time.Time) int {
	return int(TruncateDay(b).Sub(TruncateDay(a)).Hours() / 24)
}

// TruncateDay returns the calendar date of t, as shown in t's own location, at midnight UTC.
// Plan dates, reference dates and "today" all use this form.
func TruncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
