package schedule

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vsinha/mps/pkg/application/services/assembly"
	"github.com/vsinha/mps/pkg/application/services/leadtime"
	"github.com/vsinha/mps/pkg/domain/entities"
)

func day(n int) time.Time {
	return time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, n-1)
}

func edge(parent, child entities.MaterialCode, qty float64) *entities.BOMEdge {
	return &entities.BOMEdge{ParentCode: parent, ChildCode: child, ChildQuantity: qty}
}

func altEdge(parent, child entities.MaterialCode, qty float64, group string, altPart bool) *entities.BOMEdge {
	e := edge(parent, child, qty)
	e.AlternativeGroup = group
	if altPart {
		e.AlternativePart = "Y"
	}
	return e
}

func material(code entities.MaterialCode, t entities.MaterialType, lead string) *entities.MaterialInfo {
	return &entities.MaterialInfo{Code: code, Type: t, LeadTime: lead}
}

func buildTree(t *testing.T, root entities.MaterialCode, edges []*entities.BOMEdge, inventory map[entities.MaterialCode]float64) *entities.BOMTree {
	t.Helper()
	tree, err := assembly.NewTreeBuilder(0).Build(root, edges, inventory, nil)
	require.NoError(t, err)
	return tree
}

func newGenerator(now time.Time) *Generator {
	return NewGenerator(leadtime.NewResolver(0, -1), DefaultConfig()).
		WithClock(func() time.Time { return now })
}

func child(t *testing.T, task *entities.GanttTask, code entities.MaterialCode) *entities.GanttTask {
	t.Helper()
	for _, c := range task.Children {
		if c.Code == code {
			return c
		}
	}
	t.Fatalf("task %s has no child %s", task.Code, code)
	return nil
}

func droneFixture(t *testing.T) (*entities.BOMTree, map[entities.MaterialCode]*entities.MaterialInfo) {
	tree := buildTree(t, "DRONE", []*entities.BOMEdge{edge("DRONE", "MOTOR", 1)},
		map[entities.MaterialCode]float64{"MOTOR": 0})
	materials := map[entities.MaterialCode]*entities.MaterialInfo{
		"DRONE": material("DRONE", entities.SelfMade, "1000/day"),
		"MOTOR": material("MOTOR", entities.Purchased, "10 days"),
	}
	return tree, materials
}

func TestGenerate_BackwardMaterialStart(t *testing.T) {
	tree, materials := droneFixture(t)

	tests := []struct {
		name   string
		now    time.Time
		status entities.TaskStatus
	}{
		{"plenty of time", day(10), entities.StatusNormal},
		{"inside buffer", day(18), entities.StatusWarning},
		{"start already passed", day(21), entities.StatusCritical},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := newGenerator(tt.now).Generate(context.Background(), Request{
				Tree:          tree,
				Materials:     materials,
				Policy:        entities.PolicyBackward,
				ReferenceDate: day(31),
			})
			require.NoError(t, err)

			root := s.Root
			assert.Equal(t, day(31), root.EndDate)
			assert.Equal(t, day(30), root.StartDate)
			assert.Equal(t, 1, root.Duration)

			motor := child(t, root, "MOTOR")
			assert.Equal(t, day(30), motor.EndDate)
			assert.Equal(t, day(20), motor.StartDate)
			assert.Equal(t, 10, motor.Duration)
			assert.Equal(t, tt.status, motor.Status)
			assert.Equal(t, entities.TaskMaterial, motor.Type)
			assert.Equal(t, "DRONE/MOTOR", motor.ID)

			assert.Equal(t, day(20), s.EarliestStart)
			assert.Equal(t, 11, s.TotalCycleDays)
			assert.Equal(t, []entities.MaterialCode{"DRONE", "MOTOR"}, s.CriticalPath)
			assert.Equal(t, []entities.MaterialCode{"MOTOR"}, s.NotReadyMaterials)
		})
	}
}

func TestGenerate_BackwardFeasibilityShift(t *testing.T) {
	tree, materials := droneFixture(t)

	s, err := newGenerator(day(25)).Generate(context.Background(), Request{
		Tree: tree, Materials: materials, Policy: entities.PolicyBackward, ReferenceDate: day(31),
	})
	require.NoError(t, err)

	assert.False(t, s.Feasible)
	assert.Equal(t, 5, s.ShiftDays)
	assert.Equal(t, day(36), s.ProjectedEnd)

	s, err = newGenerator(day(1)).Generate(context.Background(), Request{
		Tree: tree, Materials: materials, Policy: entities.PolicyBackward, ReferenceDate: day(31),
	})
	require.NoError(t, err)
	assert.True(t, s.Feasible)
	assert.Equal(t, 0, s.ShiftDays)
	assert.Equal(t, day(31), s.ProjectedEnd)
}

func TestGenerate_BackwardClockInOtherLocation(t *testing.T) {
	tree, materials := droneFixture(t)
	east := time.FixedZone("UTC+8", 8*3600)
	west := time.FixedZone("UTC-5", -5*3600)

	// 09:00 on the 25th in UTC+8 is 01:00 UTC; today is still the 25th
	s, err := newGenerator(time.Date(2025, time.January, 25, 9, 0, 0, 0, east)).Generate(context.Background(), Request{
		Tree: tree, Materials: materials, Policy: entities.PolicyBackward, ReferenceDate: day(31),
	})
	require.NoError(t, err)
	assert.False(t, s.Feasible)
	assert.Equal(t, 5, s.ShiftDays)
	assert.Equal(t, day(36), s.ProjectedEnd)

	// MOTOR starts on the 20th, which is today in UTC-5: inside the buffer, not in the past
	s, err = newGenerator(time.Date(2025, time.January, 20, 9, 0, 0, 0, west)).Generate(context.Background(), Request{
		Tree: tree, Materials: materials, Policy: entities.PolicyBackward, ReferenceDate: day(31),
	})
	require.NoError(t, err)
	assert.Equal(t, entities.StatusWarning, child(t, s.Root, "MOTOR").Status)
	assert.True(t, s.Feasible)
	assert.Equal(t, 0, s.ShiftDays)
}

func TestGenerate_BackwardNettingCascade(t *testing.T) {
	sub := edge("P", "SUB", 2)
	raw := edge("SUB", "RAW", 3)
	raw.LossRate = 0.1
	tree := buildTree(t, "P", []*entities.BOMEdge{sub, raw, edge("P", "STOCKED", 1)},
		map[entities.MaterialCode]float64{"SUB": 3, "RAW": 0, "STOCKED": 50})
	materials := map[entities.MaterialCode]*entities.MaterialInfo{
		"P":       material("P", entities.SelfMade, "1000/day"),
		"SUB":     material("SUB", entities.SelfMade, "10/day"),
		"RAW":     material("RAW", entities.Purchased, "5 days"),
		"STOCKED": material("STOCKED", entities.Purchased, "30 days"),
	}

	s, err := newGenerator(day(1)).Generate(context.Background(), Request{
		Tree: tree, Materials: materials, Policy: entities.PolicyBackward,
		ReferenceDate: day(40), Quantity: 5,
	})
	require.NoError(t, err)

	subTask := child(t, s.Root, "SUB")
	assert.Equal(t, 10.0, subTask.Detail.RequiredQuantity)
	assert.Equal(t, 7.0, subTask.Detail.Deficit)
	assert.Equal(t, 1, subTask.Duration)
	assert.Equal(t, entities.TaskModule, subTask.Type)

	rawTask := child(t, subTask, "RAW")
	// ceil(7 × 3 × 1.1)
	assert.Equal(t, 24.0, rawTask.Detail.RequiredQuantity)
	assert.Equal(t, 5, rawTask.Duration)
	assert.Equal(t, subTask.StartDate, rawTask.EndDate)

	stocked := child(t, s.Root, "STOCKED")
	assert.True(t, stocked.Detail.Ready)
	assert.Equal(t, 0, stocked.Duration)
	assert.Equal(t, entities.StatusNormal, stocked.Status)
	assert.Equal(t, []entities.MaterialCode{"STOCKED"}, s.ReadyMaterials)

	// components are ready no later than their parent starts
	s.Root.Walk(func(task, parent *entities.GanttTask) {
		if parent != nil {
			assert.False(t, task.EndDate.After(parent.StartDate), task.ID)
		}
		assert.Equal(t, task.Duration, entities.DaysBetween(task.StartDate, task.EndDate), task.ID)
	})
}

func TestGenerate_ReadyComponentIsNotExpanded(t *testing.T) {
	tree := buildTree(t, "P", []*entities.BOMEdge{edge("P", "SUB", 1), edge("SUB", "RAW", 1)},
		map[entities.MaterialCode]float64{"SUB": 4, "RAW": 0})

	s, err := newGenerator(day(1)).Generate(context.Background(), Request{
		Tree: tree, Policy: entities.PolicyBackward, ReferenceDate: day(20), Quantity: 4,
	})
	require.NoError(t, err)

	sub := child(t, s.Root, "SUB")
	assert.True(t, sub.Detail.Ready)
	assert.Empty(t, sub.Children)
}

func TestGenerate_BackwardAlternatives(t *testing.T) {
	materials := map[entities.MaterialCode]*entities.MaterialInfo{
		"P":    material("P", entities.SelfMade, "1000/day"),
		"BAT1": material("BAT1", entities.Purchased, "20 days"),
		"BAT2": material("BAT2", entities.Purchased, "5 days"),
		"BAT3": material("BAT3", entities.Purchased, "5 days"),
	}
	edges := []*entities.BOMEdge{
		altEdge("P", "BAT1", 1, "B", false),
		altEdge("P", "BAT2", 1, "B", true),
		altEdge("P", "BAT3", 1, "B", true),
	}
	run := func(t *testing.T, inventory map[entities.MaterialCode]float64, qty float64) *entities.Schedule {
		t.Helper()
		s, err := newGenerator(day(1)).Generate(context.Background(), Request{
			Tree: buildTree(t, "P", edges, inventory), Materials: materials,
			Policy: entities.PolicyBackward, ReferenceDate: day(60), Quantity: qty,
		})
		require.NoError(t, err)
		return s
	}

	t.Run("single member in stock", func(t *testing.T) {
		s := run(t, map[entities.MaterialCode]float64{"BAT1": 1, "BAT2": 5}, 5)
		require.Len(t, s.Root.Children, 1)
		task := s.Root.Children[0]
		assert.Equal(t, entities.MaterialCode("BAT2"), task.Code)
		assert.True(t, task.Detail.Ready)
		assert.Equal(t, "B", task.Detail.AlternativeGroup)
		assert.Equal(t, []entities.MaterialCode{"BAT1", "BAT3"}, task.Detail.Alternatives)
	})

	t.Run("pooled stock", func(t *testing.T) {
		s := run(t, map[entities.MaterialCode]float64{"BAT1": 2, "BAT2": 0, "BAT3": 3}, 5)
		require.Len(t, s.Root.Children, 2)
		assert.Equal(t, entities.MaterialCode("BAT1"), s.Root.Children[0].Code)
		assert.Equal(t, 2.0, s.Root.Children[0].Detail.RequiredQuantity)
		assert.Equal(t, entities.MaterialCode("BAT3"), s.Root.Children[1].Code)
		assert.Equal(t, 3.0, s.Root.Children[1].Detail.RequiredQuantity)
		for _, c := range s.Root.Children {
			assert.True(t, c.Detail.Pooled)
			assert.True(t, c.Detail.Ready)
		}
	})

	t.Run("least lead time", func(t *testing.T) {
		s := run(t, map[entities.MaterialCode]float64{}, 5)
		require.Len(t, s.Root.Children, 1)
		task := s.Root.Children[0]
		// BAT2 and BAT3 tie on 5 days; BOM order wins
		assert.Equal(t, entities.MaterialCode("BAT2"), task.Code)
		assert.Equal(t, 5, task.Duration)
		assert.False(t, task.Detail.Ready)
	})
}

func TestGenerate_AlternativeTieKeepsPrimary(t *testing.T) {
	edges := []*entities.BOMEdge{
		altEdge("P", "ALT", 1, "G", true),
		altEdge("P", "MAIN", 1, "G", false),
	}
	materials := map[entities.MaterialCode]*entities.MaterialInfo{
		"ALT":  material("ALT", entities.Purchased, "4 days"),
		"MAIN": material("MAIN", entities.Purchased, "4 days"),
	}

	s, err := newGenerator(day(1)).Generate(context.Background(), Request{
		Tree: buildTree(t, "P", edges, nil), Materials: materials,
		Policy: entities.PolicyBackward, ReferenceDate: day(30),
	})
	require.NoError(t, err)

	require.Len(t, s.Root.Children, 1)
	assert.Equal(t, entities.MaterialCode("MAIN"), s.Root.Children[0].Code)
}

func TestGenerate_AlternativeDiagnosticsFollowChosenMember(t *testing.T) {
	edges := []*entities.BOMEdge{
		altEdge("P", "MAIN", 1, "G", false),
		altEdge("P", "ALT", 1, "G", true),
		edge("MAIN", "SUB", 1),
	}
	materials := map[entities.MaterialCode]*entities.MaterialInfo{
		"P":    material("P", entities.SelfMade, "1000/day"),
		"MAIN": material("MAIN", entities.SelfMade, "whenever"),
		"SUB":  material("SUB", entities.Purchased, "30 days"),
	}
	inventory := map[entities.MaterialCode]float64{"MAIN": 0, "ALT": 0, "SUB": 0}

	s, err := newGenerator(day(1)).Generate(context.Background(), Request{
		Tree: buildTree(t, "P", edges, inventory), Materials: materials,
		Policy: entities.PolicyBackward, ReferenceDate: day(60),
	})
	require.NoError(t, err)

	require.Len(t, s.Root.Children, 1)
	chosen := s.Root.Children[0]
	assert.Equal(t, entities.MaterialCode("ALT"), chosen.Code)
	assert.Equal(t, leadtime.DefaultDeliveryDays, chosen.Duration)

	kinds := map[entities.DiagnosticKind][]entities.MaterialCode{}
	for _, d := range s.Diagnostics {
		kinds[d.Kind] = append(kinds[d.Kind], d.Code)
	}
	assert.Empty(t, kinds[entities.DiagMalformedLeadTime])
	assert.Equal(t, []entities.MaterialCode{"ALT"}, kinds[entities.DiagMissingMaterial])
}

func TestGenerate_Forward(t *testing.T) {
	tree := buildTree(t, "P", []*entities.BOMEdge{
		edge("P", "SUB", 1),
		edge("SUB", "SLOW", 1),
		edge("P", "FAST", 1),
	}, map[entities.MaterialCode]float64{})
	materials := map[entities.MaterialCode]*entities.MaterialInfo{
		"P":    material("P", entities.SelfMade, "1000/day"),
		"SUB":  material("SUB", entities.SelfMade, "1/day"),
		"SLOW": material("SLOW", entities.Purchased, "20 days"),
		"FAST": material("FAST", entities.Purchased, "10 days"),
	}
	target := day(6)

	s, err := newGenerator(day(1)).Generate(context.Background(), Request{
		Tree: tree, Materials: materials, Policy: entities.PolicyForward,
		ReferenceDate: day(1), Quantity: 2, TargetDate: &target,
	})
	require.NoError(t, err)

	s.Root.Walk(func(task, parent *entities.GanttTask) {
		assert.Equal(t, task.Duration, entities.DaysBetween(task.StartDate, task.EndDate), task.ID)
		if parent != nil {
			assert.Equal(t, parent.StartDate, task.StartDate, task.ID)
		}
	})

	sub := child(t, s.Root, "SUB")
	assert.Equal(t, 2, sub.Duration)
	assert.Equal(t, entities.StatusNormal, sub.Status)
	assert.Equal(t, entities.StatusWarning, child(t, s.Root, "FAST").Status) // 5 days over
	assert.Equal(t, entities.StatusCritical, child(t, sub, "SLOW").Status)   // 15 days over

	assert.Equal(t, day(21), s.ProjectedEnd)
	assert.Equal(t, 20, s.TotalCycleDays)
	assert.False(t, s.Feasible)
	assert.Equal(t, 15, s.OverdueDays)
	assert.Equal(t, []entities.MaterialCode{"P", "SUB", "SLOW"}, s.CriticalPath)
}

func TestGenerate_ForwardWithoutTarget(t *testing.T) {
	tree, materials := droneFixture(t)

	s, err := newGenerator(day(1)).Generate(context.Background(), Request{
		Tree: tree, Materials: materials, Policy: entities.PolicyForward, ReferenceDate: day(3),
	})
	require.NoError(t, err)

	assert.Equal(t, 1.0, s.Quantity)
	assert.True(t, s.Feasible)
	assert.Nil(t, s.TargetDate)
	for _, task := range s.Tasks() {
		assert.Equal(t, entities.StatusNormal, task.Status)
	}
	assert.Equal(t, day(13), s.ProjectedEnd)
	assert.NotEqual(t, [16]byte{}, [16]byte(s.RunID))
}

func TestGenerate_Diagnostics(t *testing.T) {
	tree := buildTree(t, "P", []*entities.BOMEdge{edge("P", "A", 1), edge("P", "B", 1)}, nil)
	materials := map[entities.MaterialCode]*entities.MaterialInfo{
		"P": material("P", entities.SelfMade, "1000/day"),
		"A": material("A", entities.Purchased, "whenever"),
	}

	s, err := newGenerator(day(1)).Generate(context.Background(), Request{
		Tree: tree, Materials: materials, Policy: entities.PolicyBackward, ReferenceDate: day(30),
	})
	require.NoError(t, err)

	kinds := map[entities.DiagnosticKind][]entities.MaterialCode{}
	for _, d := range s.Diagnostics {
		kinds[d.Kind] = append(kinds[d.Kind], d.Code)
	}
	assert.Equal(t, []entities.MaterialCode{"A"}, kinds[entities.DiagMalformedLeadTime])
	assert.Equal(t, []entities.MaterialCode{"B"}, kinds[entities.DiagMissingMaterial])
	assert.ElementsMatch(t, []entities.MaterialCode{"A", "B"}, kinds[entities.DiagMissingInventory])

	// both fall back to the default delivery time
	assert.Equal(t, leadtime.DefaultDeliveryDays, child(t, s.Root, "A").Duration)
	assert.Equal(t, leadtime.DefaultDeliveryDays, child(t, s.Root, "B").Duration)
}

func TestGenerate_Errors(t *testing.T) {
	g := newGenerator(day(1))
	tree, materials := droneFixture(t)

	_, err := g.Generate(context.Background(), Request{Policy: entities.PolicyForward})
	assert.ErrorIs(t, err, entities.ErrNilTree)

	_, err = g.Generate(context.Background(), Request{Tree: tree, Policy: "sideways"})
	assert.ErrorIs(t, err, entities.ErrUnknownPolicy)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = g.Generate(ctx, Request{Tree: tree, Materials: materials, Policy: entities.PolicyBackward, ReferenceDate: day(30)})
	assert.ErrorIs(t, err, context.Canceled)
}
