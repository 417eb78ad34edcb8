package assembly

import (
	"fmt"

	"github.com/vsinha/mps/pkg/domain/entities"
)

// DefaultMaxDepth is the deepest level that is expanded; deeper nodes become unconstrained leaves
const DefaultMaxDepth = 5

// DefaultUnit is used when an edge carries no unit
const DefaultUnit = "pcs"

// TreeBuilder converts a flat BOM edge list into a rooted structure tree
type TreeBuilder struct {
	maxDepth int
}

// NewTreeBuilder creates a tree builder; a non-positive maxDepth selects DefaultMaxDepth
func NewTreeBuilder(maxDepth int) *TreeBuilder {
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}
	return &TreeBuilder{maxDepth: maxDepth}
}

// MaxDepth returns the configured expansion ceiling
func (b *TreeBuilder) MaxDepth() int {
	return b.maxDepth
}

// buildContext holds the read-only inputs and the diagnostics of one build
type buildContext struct {
	children    map[entities.MaterialCode][]*entities.BOMEdge
	inventory   map[entities.MaterialCode]float64
	materials   map[entities.MaterialCode]*entities.MaterialInfo
	names       map[entities.MaterialCode]string
	diagnostics []entities.Diagnostic
}

// Build expands rootCode using edges, annotating every node with on-hand inventory.
// Missing inventory, cycles and excessive depth are recorded as diagnostics, never errors.
func (b *TreeBuilder) Build(
	rootCode entities.MaterialCode,
	edges []*entities.BOMEdge,
	inventory map[entities.MaterialCode]float64,
	materials map[entities.MaterialCode]*entities.MaterialInfo,
) (*entities.BOMTree, error) {
	if rootCode == "" {
		return nil, fmt.Errorf("root code cannot be empty")
	}

	bc := &buildContext{
		children:  make(map[entities.MaterialCode][]*entities.BOMEdge),
		inventory: inventory,
		materials: materials,
		names:     make(map[entities.MaterialCode]string),
	}
	for _, e := range edges {
		if e == nil {
			continue
		}
		bc.children[e.ParentCode] = append(bc.children[e.ParentCode], e)
		if e.ParentName != "" && bc.names[e.ParentCode] == "" {
			bc.names[e.ParentCode] = e.ParentName
		}
		if e.ChildName != "" && bc.names[e.ChildCode] == "" {
			bc.names[e.ChildCode] = e.ChildName
		}
	}

	root := b.buildNode(bc, nodeSpec{
		code:           rootCode,
		unit:           DefaultUnit,
		requiredPerSet: 1,
	}, 0, map[entities.MaterialCode]bool{})

	return &entities.BOMTree{Root: root, Diagnostics: bc.diagnostics}, nil
}

// nodeSpec is what a parent edge says about a child
type nodeSpec struct {
	code            entities.MaterialCode
	unit            string
	requiredPerSet  float64
	lossRate        float64
	alternativePart bool
	groupTag        string
}

func (b *TreeBuilder) buildNode(bc *buildContext, spec nodeSpec, level int, path map[entities.MaterialCode]bool) *entities.StructureNode {
	inv, hasRecord := bc.inventory[spec.code]
	node := &entities.StructureNode{
		Code:               spec.code,
		Name:               bc.nameOf(spec.code),
		Unit:               spec.unit,
		Level:              level,
		Inventory:          inv,
		HasInventoryRecord: hasRecord,
		RequiredPerSet:     spec.requiredPerSet,
		LossRate:           entities.NormalizeLossRate(spec.lossRate),
		AlternativePart:    spec.alternativePart,
		GroupTag:           spec.groupTag,
	}

	if path[spec.code] {
		node.Truncated = entities.TruncatedCycle
		bc.diagnose(entities.DiagCycleDetected, spec.code,
			"%s is its own ancestor, expansion stopped at level %d", spec.code, level)
		return node
	}
	if level > b.maxDepth {
		node.Truncated = entities.TruncatedDepth
		bc.diagnose(entities.DiagDepthExceeded, spec.code,
			"%s at level %d is deeper than %d and is treated as unconstrained", spec.code, level, b.maxDepth)
		return node
	}

	edges := bc.children[spec.code]
	if len(edges) == 0 && !hasRecord {
		bc.diagnose(entities.DiagMissingInventory, spec.code, "no inventory record for %s, assuming 0", spec.code)
	}

	path[spec.code] = true
	node.Groups = b.buildGroups(bc, spec.code, edges, level, path)
	delete(path, spec.code)

	return node
}

// buildGroups groups the child edges of one parent into component slots, in first-seen order
func (b *TreeBuilder) buildGroups(
	bc *buildContext,
	parent entities.MaterialCode,
	edges []*entities.BOMEdge,
	level int,
	path map[entities.MaterialCode]bool,
) []*entities.ComponentGroup {
	var groups []*entities.ComponentGroup
	byKey := make(map[string]*entities.ComponentGroup)
	primaryEdge := make(map[string]*entities.BOMEdge)
	seenMember := make(map[string]bool)

	for _, e := range edges {
		key := e.GroupKey()
		memberKey := key + "|" + string(e.ChildCode)
		if seenMember[memberKey] {
			bc.diagnose(entities.DiagDuplicateEdge, e.ChildCode,
				"duplicate edge %s -> %s ignored", parent, e.ChildCode)
			continue
		}
		seenMember[memberKey] = true

		if e.ChildQuantity <= 0 {
			bc.diagnose(entities.DiagZeroQuantity, e.ChildCode,
				"edge %s -> %s has quantity %g, treated as unconstrained", parent, e.ChildCode, e.ChildQuantity)
		}

		g, ok := byKey[key]
		if !ok {
			g = &entities.ComponentGroup{Kind: entities.SingleComponent, Key: key}
			if e.InAlternativeGroup() {
				g.Kind = entities.AlternativeGroup
				g.Tag = e.AlternativeGroup
			}
			byKey[key] = g
			groups = append(groups, g)
		}

		unit := e.Unit
		if unit == "" {
			unit = DefaultUnit
		}
		member := b.buildNode(bc, nodeSpec{
			code:            e.ChildCode,
			unit:            unit,
			requiredPerSet:  e.ChildQuantity,
			lossRate:        e.LossRate,
			alternativePart: e.IsAlternativePart(),
			groupTag:        g.Tag,
		}, level+1, path)

		// the first member without an alternative-part marker defines the slot quantity
		if _, has := primaryEdge[key]; !has && !e.IsAlternativePart() {
			primaryEdge[key] = e
			g.Primary = len(g.Members)
		}
		g.Members = append(g.Members, member)
	}

	for _, g := range groups {
		p := g.PrimaryMember()
		g.RequiredPerSet = p.RequiredPerSet
		g.LossRate = p.LossRate
	}

	return groups
}

func (bc *buildContext) nameOf(code entities.MaterialCode) string {
	if name := bc.names[code]; name != "" {
		return name
	}
	if m, ok := bc.materials[code]; ok && m != nil && m.Name != "" {
		return m.Name
	}
	return string(code)
}

func (bc *buildContext) diagnose(kind entities.DiagnosticKind, code entities.MaterialCode, format string, args ...any) {
	bc.diagnostics = append(bc.diagnostics, entities.NewDiagnostic(kind, code, format, args...))
}
