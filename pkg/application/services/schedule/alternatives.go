package schedule

import (
	"math"
	"time"

	"github.com/vsinha/mps/pkg/domain/entities"
)

// candidates returns the group members with the primary first, then the rest in BOM order
func candidates(group *entities.ComponentGroup) []*entities.StructureNode {
	primary := group.PrimaryMember()
	ordered := make([]*entities.StructureNode, 0, len(group.Members))
	ordered = append(ordered, primary)
	for _, m := range group.Members {
		if m != primary {
			ordered = append(ordered, m)
		}
	}
	return ordered
}

// selectAlternatives picks the members of an alternative group that will supply the slot:
// a single member whose stock covers it, else pooled stock when the members' stock together
// covers it, else the single member whose subtree takes the least total time.
func (p *pass) selectAlternatives(group *entities.ComponentGroup, parent *entities.GanttTask, parentUnits float64, anchor time.Time) ([]*entities.GanttTask, error) {
	ordered := candidates(group)

	// 1. one member covered by its own stock
	for _, m := range ordered {
		qty := entities.RequiredQuantity(parentUnits, m.RequiredPerSet, m.LossRate)
		if m.Inventory >= qty {
			task, err := p.scheduleNode(m, parent.ID, qty, anchor)
			if err != nil {
				return nil, err
			}
			annotate(task, group, m)
			return []*entities.GanttTask{task}, nil
		}
	}

	// 2. stock pooled across members
	covered := 0.0
	for _, m := range ordered {
		covered += entities.ParentUnitsCovered(m.Inventory, m.RequiredPerSet, m.LossRate)
	}
	if covered >= parentUnits {
		var tasks []*entities.GanttTask
		remaining := parentUnits
		for _, m := range ordered {
			if remaining <= 0 {
				break
			}
			units := math.Min(remaining, entities.ParentUnitsCovered(m.Inventory, m.RequiredPerSet, m.LossRate))
			if units <= 0 {
				continue
			}
			qty := math.Min(entities.RequiredQuantity(units, m.RequiredPerSet, m.LossRate), m.Inventory)
			task, err := p.scheduleNode(m, parent.ID, qty, anchor)
			if err != nil {
				return nil, err
			}
			annotate(task, group, m)
			task.Detail.Pooled = true
			tasks = append(tasks, task)
			remaining -= units
		}
		return tasks, nil
	}

	// 3. the member with the least total lead time; only its diagnostics are kept
	var best *entities.GanttTask
	var bestMember *entities.StructureNode
	var bestDiags []entities.Diagnostic
	bestSpan := math.MaxInt
	for _, m := range ordered {
		qty := entities.RequiredQuantity(parentUnits, m.RequiredPerSet, m.LossRate)
		var task *entities.GanttTask
		diags, err := p.trial(func() error {
			var err error
			task, err = p.scheduleNode(m, parent.ID, qty, anchor)
			return err
		})
		if err != nil {
			return nil, err
		}
		span := p.span(task, anchor)
		if span < bestSpan {
			best, bestMember, bestDiags, bestSpan = task, m, diags, span
		}
	}
	p.record(bestDiags)
	annotate(best, group, bestMember)
	return []*entities.GanttTask{best}, nil
}

// span is the number of days a subtree occupies measured from its anchor
func (p *pass) span(task *entities.GanttTask, anchor time.Time) int {
	span := 0
	task.Walk(func(t, _ *entities.GanttTask) {
		var d int
		if p.backward {
			d = entities.DaysBetween(t.StartDate, anchor)
		} else {
			d = entities.DaysBetween(anchor, t.EndDate)
		}
		if d > span {
			span = d
		}
	})
	return span
}

func annotate(task *entities.GanttTask, group *entities.ComponentGroup, chosen *entities.StructureNode) {
	task.Detail.AlternativeGroup = group.Tag
	for _, m := range group.Members {
		if m != chosen {
			task.Detail.Alternatives = append(task.Detail.Alternatives, m.Code)
		}
	}
}
