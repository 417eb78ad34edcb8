package risk

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vsinha/mps/pkg/application/services/assembly"
	"github.com/vsinha/mps/pkg/application/services/leadtime"
	"github.com/vsinha/mps/pkg/application/services/schedule"
	"github.com/vsinha/mps/pkg/domain/entities"
)

func edge(parent, child entities.MaterialCode, qty float64) *entities.BOMEdge {
	return &entities.BOMEdge{ParentCode: parent, ChildCode: child, ChildQuantity: qty}
}

func analyze(t *testing.T, root entities.MaterialCode, edges []*entities.BOMEdge, inventory map[entities.MaterialCode]float64) (*entities.BOMTree, *entities.AssemblyNode) {
	t.Helper()
	tree, result, err := assembly.Analyze(assembly.NewTreeBuilder(0), root, edges, inventory, nil)
	require.NoError(t, err)
	return tree, result.Root
}

func ofType(alerts []entities.RiskAlert, typ entities.AlertType) []entities.RiskAlert {
	var out []entities.RiskAlert
	for _, a := range alerts {
		if a.Type == typ {
			out = append(out, a)
		}
	}
	return out
}

func TestSynthesize_Bottleneck(t *testing.T) {
	tree, feas := analyze(t, "Drone-X1", []*entities.BOMEdge{edge("Drone-X1", "Motor", 2)},
		map[entities.MaterialCode]float64{"Motor": 10})

	t.Run("enough for the plan", func(t *testing.T) {
		alerts := NewSynthesizer().Synthesize(Input{Tree: tree, Feasibility: feas, PlannedQuantity: 5})
		require.Len(t, alerts, 1)
		a := alerts[0]
		assert.Equal(t, entities.AlertBottleneck, a.Type)
		assert.Equal(t, entities.AlertWarning, a.Level)
		assert.Equal(t, entities.MaterialCode("Motor"), a.ItemID)
		assert.Equal(t, "component Motor limits the assembly to 5 sets", a.Message)
	})

	t.Run("short of the plan", func(t *testing.T) {
		alerts := NewSynthesizer().Synthesize(Input{Tree: tree, Feasibility: feas, PlannedQuantity: 8})
		require.Len(t, alerts, 1)
		assert.Equal(t, entities.AlertCritical, alerts[0].Level)
		assert.Contains(t, alerts[0].AISuggestion, "Procure Motor ahead of time")
		assert.Contains(t, alerts[0].AISuggestion, "(16)")
	})
}

func TestSynthesize_BottleneckChain(t *testing.T) {
	tree, feas := analyze(t, "P", []*entities.BOMEdge{
		edge("P", "FRAME", 1),
		edge("P", "MOTOR", 1),
		edge("FRAME", "CARBON", 2),
	}, map[entities.MaterialCode]float64{"CARBON": 1, "MOTOR": 3})

	alerts := NewSynthesizer().Synthesize(Input{Tree: tree, Feasibility: feas})

	bottlenecks := ofType(alerts, entities.AlertBottleneck)
	require.Len(t, bottlenecks, 2)
	assert.Equal(t, "component FRAME limits the assembly to 0 sets", bottlenecks[0].Message)
	assert.Equal(t, entities.AlertCritical, bottlenecks[0].Level)
	assert.Equal(t, "component CARBON limits FRAME to 0 units", bottlenecks[1].Message)
}

func TestSynthesize_AlternativeGroupBottleneck(t *testing.T) {
	a := edge("P", "BAT-A", 1)
	a.AlternativeGroup = "BAT"
	b := edge("P", "BAT-B", 1)
	b.AlternativeGroup = "BAT"
	b.AlternativePart = "Y"
	tree, feas := analyze(t, "P", []*entities.BOMEdge{a, b},
		map[entities.MaterialCode]float64{"BAT-A": 3, "BAT-B": 4})

	alerts := NewSynthesizer().Synthesize(Input{Tree: tree, Feasibility: feas, PlannedQuantity: 10})

	require.Len(t, alerts, 1)
	assert.Equal(t, "alternative group BAT (BAT-A, BAT-B) limits the assembly to 7 sets", alerts[0].Message)
	assert.Equal(t, entities.AlertCritical, alerts[0].Level)
	assert.Contains(t, alerts[0].AISuggestion, "Pooled stock")
}

func TestSynthesize_ScheduleAlerts(t *testing.T) {
	edges := []*entities.BOMEdge{edge("P", "MOTOR", 1), edge("P", "FRAME", 1)}
	inventory := map[entities.MaterialCode]float64{"MOTOR": 0, "FRAME": 0}
	tree, err := assembly.NewTreeBuilder(0).Build("P", edges, inventory, nil)
	require.NoError(t, err)
	materials := map[entities.MaterialCode]*entities.MaterialInfo{
		"P":     {Code: "P", Type: entities.SelfMade, LeadTime: "1000/day"},
		"MOTOR": {Code: "MOTOR", Type: entities.Purchased, LeadTime: "10 days"},
		"FRAME": {Code: "FRAME", Type: entities.Purchased, LeadTime: "4 days"},
	}
	now := time.Date(2025, 1, 25, 0, 0, 0, 0, time.UTC)
	gen := schedule.NewGenerator(leadtime.NewResolver(0, -1), schedule.DefaultConfig()).
		WithClock(func() time.Time { return now })

	sched, err := gen.Generate(context.Background(), schedule.Request{
		Tree: tree, Materials: materials, Policy: entities.PolicyBackward,
		ReferenceDate: time.Date(2025, 1, 31, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	alerts := NewSynthesizer().Synthesize(Input{Tree: tree, Schedule: sched})

	overdue := ofType(alerts, entities.AlertScheduleOverdue)
	require.Len(t, overdue, 1)
	assert.Equal(t, "plan for P cannot finish by 2025-01-31; it has to slip 5 days to 2025-02-05", overdue[0].Message)
	assert.Contains(t, overdue[0].AISuggestion, "Expedite MOTOR")

	delays := ofType(alerts, entities.AlertMaterialDelay)
	require.Len(t, delays, 2)
	// MOTOR starts 2025-01-20, FRAME 2025-01-26 (within the 3-day buffer)
	assert.Equal(t, entities.AlertCritical, delays[0].Level)
	assert.Equal(t, "component MOTOR cannot be ready before the required date: it should have started on 2025-01-20", delays[0].Message)
	assert.Contains(t, delays[0].AISuggestion, "no stock and no alternative")
	assert.Equal(t, entities.AlertWarning, delays[1].Level)
	assert.Equal(t, "component FRAME must start by 2025-01-26 to be ready on time", delays[1].Message)

	// critical alerts come first
	seenWarning := false
	for _, a := range alerts {
		if !a.IsCritical() {
			seenWarning = true
		} else {
			assert.False(t, seenWarning, "critical alert after a warning: %s", a.Message)
		}
	}
}

func TestSynthesize_ForwardOvershoot(t *testing.T) {
	target := time.Date(2025, 1, 5, 0, 0, 0, 0, time.UTC)
	sched := &entities.Schedule{
		Policy:       entities.PolicyForward,
		ProductCode:  "P",
		TargetDate:   &target,
		ProjectedEnd: time.Date(2025, 1, 11, 0, 0, 0, 0, time.UTC),
		OverdueDays:  6,
		CriticalPath: []entities.MaterialCode{"P", "M"},
		Root: &entities.GanttTask{Code: "P", Name: "Product", Children: []*entities.GanttTask{{
			Code:    "M",
			Name:    "Magnet",
			Level:   1,
			EndDate: time.Date(2025, 1, 11, 0, 0, 0, 0, time.UTC),
			Status:  entities.StatusWarning,
		}}},
	}

	alerts := NewSynthesizer().Synthesize(Input{Schedule: sched})

	require.Len(t, alerts, 2)
	assert.Equal(t, entities.AlertScheduleOverdue, alerts[0].Type)
	assert.Equal(t, "plan for P finishes on 2025-01-11, 6 days after the target date", alerts[0].Message)
	assert.Equal(t, "component M finishes on 2025-01-11, 6 days after the target date", alerts[1].Message)
	assert.Empty(t, alerts[1].AISuggestion)
}

func TestSynthesize_Suggestions(t *testing.T) {
	a := edge("P", "CELL-A", 1)
	a.AlternativeGroup = "C"
	b := edge("P", "CELL-B", 1)
	b.AlternativeGroup = "C"
	b.AlternativePart = "Y"
	tree, err := assembly.NewTreeBuilder(0).Build("P", []*entities.BOMEdge{a, b},
		map[entities.MaterialCode]float64{"CELL-A": 1, "CELL-B": 20}, nil)
	require.NoError(t, err)
	idx := newTreeIndex(tree)

	assert.Contains(t, idx.suggest("CELL-A", 1, 10), "Use alternative material CELL-B (stock 20)")
	assert.Contains(t, idx.suggest("CELL-A", 1, 30), "alternatives CELL-B are short as well")
	assert.Contains(t, idx.suggest("OTHER", 0, 5), "no stock and no alternative")
	assert.Contains(t, idx.suggest("OTHER", 2, 5), "Procure OTHER ahead of time")
}

func TestSynthesize_DataQuality(t *testing.T) {
	diag := entities.NewDiagnostic(entities.DiagMissingInventory, "GHOST", "no inventory record for GHOST, assuming 0")
	tree := &entities.BOMTree{
		Root:        &entities.StructureNode{Code: "P"},
		Diagnostics: []entities.Diagnostic{diag},
	}

	alerts := NewSynthesizer().Synthesize(Input{Tree: tree, Diagnostics: []entities.Diagnostic{diag}})

	require.Len(t, alerts, 1)
	assert.Equal(t, entities.AlertDataQuality, alerts[0].Type)
	assert.Equal(t, entities.AlertWarning, alerts[0].Level)
	assert.Equal(t, diag.Message, alerts[0].Message)
}

func TestSynthesize_Empty(t *testing.T) {
	assert.Empty(t, NewSynthesizer().Synthesize(Input{}))
}
