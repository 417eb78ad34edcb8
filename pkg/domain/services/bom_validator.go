package services

import (
	"fmt"
	"sort"

	"github.com/vsinha/mps/pkg/domain/entities"
)

// BOMValidator provides validation for BOM structure integrity
type BOMValidator struct{}

// NewBOMValidator creates a new BOM validator
func NewBOMValidator() *BOMValidator {
	return &BOMValidator{}
}

// ValidationResult contains the results of BOM validation.
// Errors are structural problems; Warnings are data the calculators tolerate.
type ValidationResult struct {
	HasCycles      bool
	CyclePaths     [][]entities.MaterialCode
	DuplicateEdges []entities.BOMEdge
	Errors         []entities.Diagnostic
	Warnings       []entities.Diagnostic
}

// Valid reports whether no structural errors were found
func (r *ValidationResult) Valid() bool {
	return len(r.Errors) == 0
}

// ValidateBOM performs comprehensive validation on a set of BOM edges
func (v *BOMValidator) ValidateBOM(edges []entities.BOMEdge) *ValidationResult {
	result := &ValidationResult{
		CyclePaths:     make([][]entities.MaterialCode, 0),
		DuplicateEdges: make([]entities.BOMEdge, 0),
	}

	parents, adjacency := v.buildAdjacencyMap(edges)

	cycles := v.detectCycles(parents, adjacency)
	result.HasCycles = len(cycles) > 0
	result.CyclePaths = cycles
	for _, cycle := range cycles {
		result.Errors = append(result.Errors, entities.NewDiagnostic(
			entities.DiagCycleDetected, cycle[0], "BOM cycle detected: %v", cycle))
	}

	result.DuplicateEdges = v.detectDuplicateEdges(edges)
	for _, dup := range result.DuplicateEdges {
		result.Warnings = append(result.Warnings, entities.NewDiagnostic(
			entities.DiagDuplicateEdge, dup.ChildCode,
			"duplicate edge %s -> %s, only the first is used", dup.ParentCode, dup.ChildCode))
	}

	for _, e := range edges {
		if e.ChildQuantity <= 0 {
			result.Warnings = append(result.Warnings, entities.NewDiagnostic(
				entities.DiagZeroQuantity, e.ChildCode,
				"edge %s -> %s has quantity %g and will not constrain its parent", e.ParentCode, e.ChildCode, e.ChildQuantity))
		}
	}

	result.Warnings = append(result.Warnings, v.checkAlternativeGroups(edges)...)

	return result
}

// buildAdjacencyMap creates parent -> children relationships, keeping first-seen order
func (v *BOMValidator) buildAdjacencyMap(edges []entities.BOMEdge) ([]entities.MaterialCode, map[entities.MaterialCode][]entities.MaterialCode) {
	adjacency := make(map[entities.MaterialCode][]entities.MaterialCode)
	parents := make([]entities.MaterialCode, 0)

	for _, e := range edges {
		children, exists := adjacency[e.ParentCode]
		if !exists {
			parents = append(parents, e.ParentCode)
		}

		found := false
		for _, child := range children {
			if child == e.ChildCode {
				found = true
				break
			}
		}

		if !found {
			adjacency[e.ParentCode] = append(children, e.ChildCode)
		}
	}

	return parents, adjacency
}

// detectCycles uses DFS to find cycles in the BOM structure
func (v *BOMValidator) detectCycles(parents []entities.MaterialCode, adjacency map[entities.MaterialCode][]entities.MaterialCode) [][]entities.MaterialCode {
	visited := make(map[entities.MaterialCode]bool)
	onStack := make(map[entities.MaterialCode]bool)
	cycles := make([][]entities.MaterialCode, 0)

	for _, parent := range parents {
		if !visited[parent] {
			v.dfsDetectCycle(parent, adjacency, visited, onStack, nil, &cycles)
		}
	}

	return cycles
}

func (v *BOMValidator) dfsDetectCycle(
	current entities.MaterialCode,
	adjacency map[entities.MaterialCode][]entities.MaterialCode,
	visited map[entities.MaterialCode]bool,
	onStack map[entities.MaterialCode]bool,
	path []entities.MaterialCode,
	cycles *[][]entities.MaterialCode,
) {
	visited[current] = true
	onStack[current] = true
	path = append(path, current)

	for _, child := range adjacency[current] {
		if !visited[child] {
			v.dfsDetectCycle(child, adjacency, visited, onStack, path, cycles)
			continue
		}
		if !onStack[child] {
			continue
		}
		for i, code := range path {
			if code == child {
				cycle := make([]entities.MaterialCode, 0, len(path)-i+1)
				cycle = append(cycle, path[i:]...)
				cycle = append(cycle, child)
				*cycles = append(*cycles, cycle)
				break
			}
		}
	}

	onStack[current] = false
}

// detectDuplicateEdges finds repeated edges (same parent, child and group tag)
func (v *BOMValidator) detectDuplicateEdges(edges []entities.BOMEdge) []entities.BOMEdge {
	seen := make(map[string]bool)
	duplicates := make([]entities.BOMEdge, 0)

	for _, e := range edges {
		key := fmt.Sprintf("%s|%s|%s", e.ParentCode, e.ChildCode, e.GroupKey())
		if seen[key] {
			duplicates = append(duplicates, e)
			continue
		}
		seen[key] = true
	}

	return duplicates
}

// checkAlternativeGroups flags groups that the calculators will handle by fallback
func (v *BOMValidator) checkAlternativeGroups(edges []entities.BOMEdge) []entities.Diagnostic {
	type groupInfo struct {
		parent  entities.MaterialCode
		tag     string
		members []entities.BOMEdge
	}
	groups := make(map[string]*groupInfo)
	order := make([]string, 0)
	var warnings []entities.Diagnostic

	for _, e := range edges {
		if !e.InAlternativeGroup() {
			if e.IsAlternativePart() {
				warnings = append(warnings, entities.NewDiagnostic(entities.DiagMalformedGroup, e.ChildCode,
					"%s is marked as an alternative part of %s but has no alternative group", e.ChildCode, e.ParentCode))
			}
			continue
		}
		key := string(e.ParentCode) + "|" + e.GroupKey()
		g, ok := groups[key]
		if !ok {
			g = &groupInfo{parent: e.ParentCode, tag: e.AlternativeGroup}
			groups[key] = g
			order = append(order, key)
		}
		g.members = append(g.members, e)
	}

	for _, key := range order {
		g := groups[key]
		hasPrimary := false
		for _, m := range g.members {
			if !m.IsAlternativePart() {
				hasPrimary = true
				break
			}
		}
		if !hasPrimary {
			warnings = append(warnings, entities.NewDiagnostic(entities.DiagMalformedGroup, g.members[0].ChildCode,
				"alternative group %s under %s has no primary member, using %s", g.tag, g.parent, g.members[0].ChildCode))
		}
		if len(g.members) == 1 {
			warnings = append(warnings, entities.NewDiagnostic(entities.DiagMalformedGroup, g.members[0].ChildCode,
				"alternative group %s under %s has a single member", g.tag, g.parent))
		}
	}

	return warnings
}

// ValidateMaterials checks material codes are unique and that every BOM code has metadata
func (v *BOMValidator) ValidateMaterials(materials []entities.MaterialInfo, edges []entities.BOMEdge) *ValidationResult {
	result := &ValidationResult{}

	seen := make(map[entities.MaterialCode]bool)
	for _, m := range materials {
		if seen[m.Code] {
			result.Errors = append(result.Errors, entities.NewDiagnostic(
				entities.DiagDuplicateMaterial, m.Code, "duplicate material code: %s", m.Code))
			continue
		}
		seen[m.Code] = true
	}

	missing := make(map[entities.MaterialCode]bool)
	for _, e := range edges {
		for _, code := range []entities.MaterialCode{e.ParentCode, e.ChildCode} {
			if !seen[code] {
				missing[code] = true
			}
		}
	}
	codes := make([]string, 0, len(missing))
	for code := range missing {
		codes = append(codes, string(code))
	}
	sort.Strings(codes)
	for _, code := range codes {
		result.Warnings = append(result.Warnings, entities.NewDiagnostic(
			entities.DiagMissingMaterial, entities.MaterialCode(code),
			"no material metadata for %s, default lead time applies", code))
	}

	return result
}
