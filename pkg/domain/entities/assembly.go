package entities

// NodeKind distinguishes real components from virtual alternative-group nodes
type NodeKind int

const (
	ComponentNode NodeKind = iota
	AlternativeGroupNode
)

func (k NodeKind) String() string {
	switch k {
	case ComponentNode:
		return "component"
	case AlternativeGroupNode:
		return "alternative_group"
	default:
		return "unknown"
	}
}

func (k NodeKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// AssemblyNode carries the feasibility figures of one node of the assembly tree
type AssemblyNode struct {
	Code      MaterialCode `json:"code"`
	Name      string       `json:"name"`
	Unit      string       `json:"unit"`
	Level     int          `json:"level"`
	Kind      NodeKind     `json:"kind"`
	GroupName string       `json:"group_name,omitempty"`

	Inventory      float64 `json:"inventory"`
	RequiredPerSet float64 `json:"required_per_set"`
	// Producible is the number of units that could be built from components
	Producible     int64   `json:"producible"`
	TotalAvailable float64 `json:"total_available"`
	// MaxSets is how many parent units this node can supply
	MaxSets int64 `json:"max_sets"`

	LimitingFactor *AssemblyNode    `json:"-"`
	LimitingCode   MaterialCode     `json:"limiting_factor,omitempty"`
	Truncated      TruncationReason `json:"truncated,omitempty"`
	Children       []*AssemblyNode  `json:"children,omitempty"`
}

// IsAlternativeGroup reports whether the node is a virtual group of interchangeable parts
func (n *AssemblyNode) IsAlternativeGroup() bool {
	return n.Kind == AlternativeGroupNode
}

// Unconstrained reports whether nothing limits the sets this node can supply
func (n *AssemblyNode) Unconstrained() bool {
	return n.MaxSets == Unlimited
}

// Walk visits the node and its descendants depth-first
func (n *AssemblyNode) Walk(visit func(*AssemblyNode)) {
	if n == nil {
		return
	}
	visit(n)
	for _, c := range n.Children {
		c.Walk(visit)
	}
}

// BottleneckChain follows limiting factors from n down to the deepest constraint
func (n *AssemblyNode) BottleneckChain() []*AssemblyNode {
	var chain []*AssemblyNode
	for cur := n.LimitingFactor; cur != nil; cur = cur.LimitingFactor {
		chain = append(chain, cur)
	}
	return chain
}
