package risk

import (
	"fmt"
	"sort"
	"strings"

	"github.com/vsinha/mps/pkg/domain/entities"
)

const dateLayout = "2006-01-02"

// Input is everything alerts are derived from; any part may be nil
type Input struct {
	Tree        *entities.BOMTree
	Feasibility *entities.AssemblyNode
	Schedule    *entities.Schedule
	Diagnostics []entities.Diagnostic
	// PlannedQuantity below which a bottleneck becomes critical; zero means 1
	PlannedQuantity float64
}

// Synthesizer derives risk alerts from feasibility and schedule results. It holds no state.
type Synthesizer struct{}

// NewSynthesizer creates a risk synthesizer
func NewSynthesizer() *Synthesizer {
	return &Synthesizer{}
}

// Synthesize returns the alerts of one run, critical alerts first
func (s *Synthesizer) Synthesize(in Input) []entities.RiskAlert {
	planned := in.PlannedQuantity
	if planned <= 0 {
		planned = 1
	}
	idx := newTreeIndex(in.Tree)

	var alerts []entities.RiskAlert
	alerts = append(alerts, s.bottlenecks(in.Feasibility, planned, idx)...)
	alerts = append(alerts, s.scheduleAlerts(in.Schedule, idx)...)
	alerts = append(alerts, s.dataQuality(in)...)

	sort.SliceStable(alerts, func(i, j int) bool {
		return alerts[i].IsCritical() && !alerts[j].IsCritical()
	})
	return alerts
}

// bottlenecks follows the limiting factors from the root down to the deepest constraint
func (s *Synthesizer) bottlenecks(root *entities.AssemblyNode, planned float64, idx *treeIndex) []entities.RiskAlert {
	if root == nil {
		return nil
	}

	var alerts []entities.RiskAlert
	parent := root
	for cur := root.LimitingFactor; cur != nil; parent, cur = cur, cur.LimitingFactor {
		sets := parent.Producible
		level := entities.AlertWarning
		if sets == 0 || (parent == root && float64(root.MaxSets) < planned) {
			level = entities.AlertCritical
		}

		subject := "component " + string(cur.Code)
		if cur.IsAlternativeGroup() {
			subject = fmt.Sprintf("alternative group %s (%s)", cur.GroupName, memberCodes(cur))
		}

		var msg string
		if parent == root {
			msg = fmt.Sprintf("%s limits the assembly to %d sets", subject, sets)
		} else {
			msg = fmt.Sprintf("%s limits %s to %d units", subject, parent.Code, sets)
		}

		units := float64(sets + 1)
		if parent == root && planned > units {
			units = planned
		}
		required := units * cur.RequiredPerSet

		suggestion := idx.suggest(cur.Code, cur.Inventory, required)
		if cur.IsAlternativeGroup() {
			suggestion = fmt.Sprintf("Pooled stock of %s (%g) does not cover the requirement (%g). Procure the member with the shortest delivery time.",
				memberCodes(cur), cur.TotalAvailable, required)
		}

		alerts = append(alerts, entities.RiskAlert{
			Level:        level,
			Type:         entities.AlertBottleneck,
			ItemID:       cur.Code,
			ItemName:     cur.Name,
			Message:      msg,
			AISuggestion: suggestion,
		})
	}
	return alerts
}

// scheduleAlerts reports tasks at risk and an overall overdue plan
func (s *Synthesizer) scheduleAlerts(sched *entities.Schedule, idx *treeIndex) []entities.RiskAlert {
	if sched == nil || sched.Root == nil {
		return nil
	}

	var alerts []entities.RiskAlert
	if !sched.Feasible {
		alerts = append(alerts, s.overdue(sched))
	}

	seen := make(map[entities.MaterialCode]bool)
	for _, t := range sched.Tasks() {
		if t.Level == 0 || t.Status == entities.StatusNormal || seen[t.Code] {
			continue
		}
		seen[t.Code] = true

		alert := entities.RiskAlert{
			Level:    entities.AlertWarning,
			Type:     entities.AlertMaterialDelay,
			ItemID:   t.Code,
			ItemName: t.Name,
		}
		if t.Status == entities.StatusCritical {
			alert.Level = entities.AlertCritical
		}

		switch {
		case sched.Policy == entities.PolicyForward && sched.TargetDate != nil:
			alert.Message = fmt.Sprintf("component %s finishes on %s, %d days after the target date",
				t.Code, t.EndDate.Format(dateLayout), entities.DaysBetween(*sched.TargetDate, t.EndDate))
		case t.Status == entities.StatusCritical:
			alert.Message = fmt.Sprintf("component %s cannot be ready before the required date: it should have started on %s",
				t.Code, t.StartDate.Format(dateLayout))
		default:
			alert.Message = fmt.Sprintf("component %s must start by %s to be ready on time",
				t.Code, t.StartDate.Format(dateLayout))
		}

		if d := t.Detail; d != nil {
			alert.AISuggestion = idx.suggestWith(t.Code, d.AvailableInventory, d.RequiredQuantity, d.Alternatives)
		}
		alerts = append(alerts, alert)
	}
	return alerts
}

func (s *Synthesizer) overdue(sched *entities.Schedule) entities.RiskAlert {
	alert := entities.RiskAlert{
		Level:    entities.AlertCritical,
		Type:     entities.AlertScheduleOverdue,
		ItemID:   sched.ProductCode,
		ItemName: sched.Root.Name,
	}
	if sched.Policy == entities.PolicyBackward {
		alert.Message = fmt.Sprintf("plan for %s cannot finish by %s; it has to slip %d days to %s",
			sched.ProductCode, sched.Root.EndDate.Format(dateLayout), sched.ShiftDays, sched.ProjectedEnd.Format(dateLayout))
		alert.AISuggestion = fmt.Sprintf("Expedite %s or move the due date to %s.",
			pathBelowRoot(sched.CriticalPath), sched.ProjectedEnd.Format(dateLayout))
	} else {
		alert.Message = fmt.Sprintf("plan for %s finishes on %s, %d days after the target date",
			sched.ProductCode, sched.ProjectedEnd.Format(dateLayout), sched.OverdueDays)
		alert.AISuggestion = fmt.Sprintf("Start earlier or shorten the lead time of %s.",
			pathBelowRoot(sched.CriticalPath))
	}
	return alert
}

// dataQuality turns diagnostics into warnings, once per kind and code
func (s *Synthesizer) dataQuality(in Input) []entities.RiskAlert {
	var diags []entities.Diagnostic
	if in.Tree != nil {
		diags = append(diags, in.Tree.Diagnostics...)
	}
	if in.Schedule != nil {
		diags = append(diags, in.Schedule.Diagnostics...)
	}
	diags = append(diags, in.Diagnostics...)

	seen := make(map[string]bool)
	var alerts []entities.RiskAlert
	for _, d := range diags {
		key := string(d.Kind) + "|" + string(d.Code)
		if seen[key] {
			continue
		}
		seen[key] = true
		alerts = append(alerts, entities.RiskAlert{
			Level:    entities.AlertWarning,
			Type:     entities.AlertDataQuality,
			ItemID:   d.Code,
			ItemName: string(d.Code),
			Message:  d.Message,
		})
	}
	return alerts
}

func memberCodes(group *entities.AssemblyNode) string {
	parts := make([]string, 0, len(group.Children))
	for _, c := range group.Children {
		parts = append(parts, string(c.Code))
	}
	return strings.Join(parts, ", ")
}

// pathBelowRoot renders the critical path without the product itself
func pathBelowRoot(path []entities.MaterialCode) string {
	if len(path) <= 1 {
		return strings.Join(codes(path), " -> ")
	}
	return strings.Join(codes(path[1:]), " -> ")
}

func codes(cs []entities.MaterialCode) []string {
	out := make([]string, 0, len(cs))
	for _, c := range cs {
		out = append(out, string(c))
	}
	return out
}
