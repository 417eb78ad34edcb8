package schedule

import (
	"time"

	"github.com/vsinha/mps/pkg/domain/entities"
)

// summarizeBackward classifies tasks against today and fills the plan summary
func (g *Generator) summarizeBackward(s *entities.Schedule, today time.Time) {
	buffer := today.AddDate(0, 0, g.cfg.BufferDays)

	earliest := s.Root.StartDate
	s.Root.Walk(func(t, _ *entities.GanttTask) {
		if t.StartDate.Before(earliest) {
			earliest = t.StartDate
		}

		ready := t.Detail != nil && t.Detail.Ready
		switch {
		case ready:
			t.Status = entities.StatusNormal
		case t.StartDate.Before(today):
			t.Status = entities.StatusCritical
		case t.StartDate.Before(buffer):
			t.Status = entities.StatusWarning
		default:
			t.Status = entities.StatusNormal
		}

		if t.Level == 0 {
			return
		}
		if ready {
			s.ReadyMaterials = appendUnique(s.ReadyMaterials, t.Code)
		} else {
			s.NotReadyMaterials = appendUnique(s.NotReadyMaterials, t.Code)
		}
	})

	s.EarliestStart = earliest
	s.Feasible = !earliest.Before(today)
	if !s.Feasible {
		s.ShiftDays = entities.DaysBetween(earliest, today)
	}
	s.ProjectedEnd = s.Root.EndDate.AddDate(0, 0, s.ShiftDays)
	s.OverdueDays = s.ShiftDays
	s.TotalCycleDays = entities.DaysBetween(earliest, s.Root.EndDate)
	s.CriticalPath = criticalPath(s.Root, func(t *entities.GanttTask) time.Time { return t.StartDate }, true)
}

// summarizeForward classifies tasks against the target date and fills the plan summary
func (g *Generator) summarizeForward(s *entities.Schedule) {
	end := s.Root.EndDate
	s.Root.Walk(func(t, _ *entities.GanttTask) {
		if t.EndDate.After(end) {
			end = t.EndDate
		}

		t.Status = entities.StatusNormal
		if s.TargetDate != nil && t.EndDate.After(*s.TargetDate) {
			if entities.DaysBetween(*s.TargetDate, t.EndDate) > g.cfg.OvershootCriticalDays {
				t.Status = entities.StatusCritical
			} else {
				t.Status = entities.StatusWarning
			}
		}

		if t.Level > 0 && t.Detail != nil {
			if t.Detail.Ready {
				s.ReadyMaterials = appendUnique(s.ReadyMaterials, t.Code)
			} else {
				s.NotReadyMaterials = appendUnique(s.NotReadyMaterials, t.Code)
			}
		}
	})

	s.EarliestStart = s.Root.StartDate
	s.ProjectedEnd = end
	s.TotalCycleDays = entities.DaysBetween(s.Root.StartDate, end)
	s.Feasible = true
	if s.TargetDate != nil && end.After(*s.TargetDate) {
		s.Feasible = false
		s.OverdueDays = entities.DaysBetween(*s.TargetDate, end)
	}
	s.CriticalPath = criticalPath(s.Root, func(t *entities.GanttTask) time.Time { return t.EndDate }, false)
}

// criticalPath returns the codes from the root to the task with the extreme key date:
// the earliest when earliest is set, else the latest. Ties keep the first task in depth-first order.
func criticalPath(root *entities.GanttTask, key func(*entities.GanttTask) time.Time, earliest bool) []entities.MaterialCode {
	var best []entities.MaterialCode
	var bestDate time.Time
	found := false

	var visit func(t *entities.GanttTask, path []entities.MaterialCode)
	visit = func(t *entities.GanttTask, path []entities.MaterialCode) {
		path = append(path, t.Code)
		d := key(t)
		better := !found ||
			(earliest && d.Before(bestDate)) ||
			(!earliest && d.After(bestDate))
		if better {
			found = true
			bestDate = d
			best = append([]entities.MaterialCode(nil), path...)
		}
		for _, c := range t.Children {
			visit(c, path)
		}
	}
	visit(root, nil)

	return best
}

func appendUnique(codes []entities.MaterialCode, code entities.MaterialCode) []entities.MaterialCode {
	for _, c := range codes {
		if c == code {
			return codes
		}
	}
	return append(codes, code)
}
