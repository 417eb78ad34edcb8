package services

import (
	"testing"

	"github.com/vsinha/mps/pkg/domain/entities"
)

func edge(parent, child entities.MaterialCode, qty float64) entities.BOMEdge {
	return entities.BOMEdge{ParentCode: parent, ChildCode: child, ChildQuantity: qty, Unit: "pcs"}
}

func TestBOMValidator_DetectSimpleCycle(t *testing.T) {
	// A -> B -> A
	edges := []entities.BOMEdge{edge("A", "B", 1), edge("B", "A", 1)}

	result := NewBOMValidator().ValidateBOM(edges)

	if !result.HasCycles {
		t.Fatal("Expected cycle to be detected")
	}
	if len(result.CyclePaths) != 1 {
		t.Fatalf("Expected one cycle path, got %d", len(result.CyclePaths))
	}
	path := result.CyclePaths[0]
	if path[0] != "A" || path[len(path)-1] != "A" {
		t.Errorf("Expected cycle to start and end at A, got %v", path)
	}
	if result.Valid() {
		t.Error("Expected validation errors for cycles")
	}
}

func TestBOMValidator_DetectLongerCycle(t *testing.T) {
	// A -> B -> C -> B
	edges := []entities.BOMEdge{edge("A", "B", 1), edge("B", "C", 1), edge("C", "B", 1)}

	result := NewBOMValidator().ValidateBOM(edges)

	if !result.HasCycles {
		t.Fatal("Expected cycle to be detected")
	}
	want := []entities.MaterialCode{"B", "C", "B"}
	got := result.CyclePaths[0]
	if len(got) != len(want) {
		t.Fatalf("Expected cycle %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Expected cycle %v, got %v", want, got)
		}
	}
}

func TestBOMValidator_AcyclicDiamond(t *testing.T) {
	// A -> B -> D, A -> C -> D
	edges := []entities.BOMEdge{edge("A", "B", 1), edge("A", "C", 1), edge("B", "D", 2), edge("C", "D", 3)}

	result := NewBOMValidator().ValidateBOM(edges)

	if result.HasCycles {
		t.Errorf("Expected no cycles in a shared-component BOM, got %v", result.CyclePaths)
	}
	if !result.Valid() {
		t.Errorf("Expected valid BOM, got errors %v", result.Errors)
	}
	if len(result.Warnings) != 0 {
		t.Errorf("Expected no warnings, got %v", result.Warnings)
	}
}

func TestBOMValidator_DuplicatesAndZeroQuantity(t *testing.T) {
	edges := []entities.BOMEdge{
		edge("A", "B", 1),
		edge("A", "B", 2),
		edge("A", "C", 0),
	}

	result := NewBOMValidator().ValidateBOM(edges)

	if len(result.DuplicateEdges) != 1 {
		t.Fatalf("Expected 1 duplicate edge, got %d", len(result.DuplicateEdges))
	}
	if result.DuplicateEdges[0].ChildQuantity != 2 {
		t.Errorf("Expected the later edge to be reported as duplicate")
	}

	kinds := map[entities.DiagnosticKind]int{}
	for _, w := range result.Warnings {
		kinds[w.Kind]++
	}
	if kinds[entities.DiagDuplicateEdge] != 1 {
		t.Errorf("Expected a duplicate_edge warning, got %v", result.Warnings)
	}
	if kinds[entities.DiagZeroQuantity] != 1 {
		t.Errorf("Expected a zero_quantity warning, got %v", result.Warnings)
	}
	if !result.Valid() {
		t.Errorf("Duplicates and zero quantities should only warn")
	}
}

func TestBOMValidator_AlternativeGroups(t *testing.T) {
	primary := edge("P", "BAT-A", 1)
	primary.AlternativeGroup = "G1"
	alt := edge("P", "BAT-B", 1)
	alt.AlternativeGroup = "G1"
	alt.AlternativePart = "Y"

	onlyAlt := edge("P", "CHG-B", 1)
	onlyAlt.AlternativeGroup = "G2"
	onlyAlt.AlternativePart = "Y"

	stray := edge("P", "SCREW", 4)
	stray.AlternativePart = "Y"

	result := NewBOMValidator().ValidateBOM([]entities.BOMEdge{primary, alt, onlyAlt, stray})

	if len(result.DuplicateEdges) != 0 {
		t.Errorf("Group members must not count as duplicates: %v", result.DuplicateEdges)
	}

	var malformed []entities.Diagnostic
	for _, w := range result.Warnings {
		if w.Kind == entities.DiagMalformedGroup {
			malformed = append(malformed, w)
		}
	}
	// stray alternative part, G2 without primary, G2 with a single member
	if len(malformed) != 3 {
		t.Fatalf("Expected 3 malformed group warnings, got %d: %v", len(malformed), malformed)
	}
	if malformed[0].Code != "SCREW" {
		t.Errorf("Expected first warning for SCREW, got %s", malformed[0].Code)
	}
}

func TestBOMValidator_ValidateMaterials(t *testing.T) {
	materials := []entities.MaterialInfo{
		{Code: "A", Type: entities.SelfMade},
		{Code: "B", Type: entities.Purchased},
		{Code: "B", Type: entities.Purchased},
	}
	edges := []entities.BOMEdge{edge("A", "B", 1), edge("A", "C", 1)}

	result := NewBOMValidator().ValidateMaterials(materials, edges)

	if len(result.Errors) != 1 || result.Errors[0].Code != "B" {
		t.Errorf("Expected duplicate material error for B, got %v", result.Errors)
	}
	if len(result.Warnings) != 1 || result.Warnings[0].Code != "C" {
		t.Errorf("Expected missing metadata warning for C, got %v", result.Warnings)
	}
}
