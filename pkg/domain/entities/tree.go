package entities

// GroupKind distinguishes a plain component slot from an alternative group
type GroupKind int

const (
	SingleComponent GroupKind = iota
	AlternativeGroup
)

func (k GroupKind) String() string {
	switch k {
	case SingleComponent:
		return "component"
	case AlternativeGroup:
		return "alternative_group"
	default:
		return "unknown"
	}
}

// ComponentGroup is one slot of a parent's recipe. A slot is filled either by a
// single component or by any mix of the interchangeable members of an alternative group.
type ComponentGroup struct {
	Kind           GroupKind
	Key            string
	Tag            string
	RequiredPerSet float64
	LossRate       float64
	Members        []*StructureNode
	// Primary indexes the member whose quantity defines RequiredPerSet
	Primary int
}

// PrimaryMember returns the member defining the group's per-set quantity
func (g *ComponentGroup) PrimaryMember() *StructureNode {
	if len(g.Members) == 0 {
		return nil
	}
	if g.Primary < 0 || g.Primary >= len(g.Members) {
		return g.Members[0]
	}
	return g.Members[g.Primary]
}

// StructureNode is a material expanded from BOM edges, annotated with inventory
type StructureNode struct {
	Code               MaterialCode
	Name               string
	Unit               string
	Level              int
	Inventory          float64
	HasInventoryRecord bool
	// RequiredPerSet is the quantity of this node per one unit of its parent
	RequiredPerSet  float64
	LossRate        float64
	AlternativePart bool
	GroupTag        string
	Truncated       TruncationReason
	Groups          []*ComponentGroup
}

// IsLeaf reports whether the node has no expanded components
func (n *StructureNode) IsLeaf() bool {
	return len(n.Groups) == 0
}

// Walk visits the node and its descendants depth-first in BOM order
func (n *StructureNode) Walk(visit func(*StructureNode)) {
	if n == nil {
		return
	}
	visit(n)
	for _, g := range n.Groups {
		for _, m := range g.Members {
			m.Walk(visit)
		}
	}
}

// BOMTree is the expanded product structure with the diagnostics gathered while building it
type BOMTree struct {
	Root        *StructureNode
	Diagnostics []Diagnostic
}

// Find returns the first node with the given code in depth-first order
func (t *BOMTree) Find(code MaterialCode) *StructureNode {
	if t == nil {
		return nil
	}
	var found *StructureNode
	t.Root.Walk(func(n *StructureNode) {
		if found == nil && n.Code == code {
			found = n
		}
	})
	return found
}
