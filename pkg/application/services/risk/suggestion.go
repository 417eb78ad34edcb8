package risk

import (
	"fmt"
	"strings"

	"github.com/vsinha/mps/pkg/domain/entities"
)

// treeIndex looks up stock and alternative-group siblings by code
type treeIndex struct {
	nodes        map[entities.MaterialCode]*entities.StructureNode
	alternatives map[entities.MaterialCode][]entities.MaterialCode
}

func newTreeIndex(tree *entities.BOMTree) *treeIndex {
	idx := &treeIndex{
		nodes:        make(map[entities.MaterialCode]*entities.StructureNode),
		alternatives: make(map[entities.MaterialCode][]entities.MaterialCode),
	}
	if tree == nil {
		return idx
	}
	tree.Root.Walk(func(n *entities.StructureNode) {
		if _, ok := idx.nodes[n.Code]; !ok {
			idx.nodes[n.Code] = n
		}
		for _, g := range n.Groups {
			if g.Kind != entities.AlternativeGroup {
				continue
			}
			for _, m := range g.Members {
				if _, ok := idx.alternatives[m.Code]; ok {
					continue
				}
				for _, other := range g.Members {
					if other != m {
						idx.alternatives[m.Code] = append(idx.alternatives[m.Code], other.Code)
					}
				}
			}
		}
	})
	return idx
}

func (idx *treeIndex) suggest(code entities.MaterialCode, inventory, required float64) string {
	return idx.suggestWith(code, inventory, required, idx.alternatives[code])
}

// suggestWith proposes in-stock alternatives first, then procurement depending on current stock
func (idx *treeIndex) suggestWith(code entities.MaterialCode, inventory, required float64, alternatives []entities.MaterialCode) string {
	var available []string
	for _, alt := range alternatives {
		if n, ok := idx.nodes[alt]; ok && n.Inventory >= required {
			available = append(available, fmt.Sprintf("%s (stock %g)", alt, n.Inventory))
		}
	}

	switch {
	case len(available) > 0:
		return fmt.Sprintf("Use alternative material %s. Current stock of %s (%g) does not cover the requirement (%g), but the alternative does.",
			strings.Join(available, ", "), code, inventory, required)
	case len(alternatives) > 0:
		return fmt.Sprintf("Stock of %s (%g) does not cover the requirement (%g) and alternatives %s are short as well. Start procurement now.",
			code, inventory, required, strings.Join(codes(alternatives), ", "))
	case inventory <= 0:
		return fmt.Sprintf("%s has no stock and no alternative. Start procurement immediately and consider a second supplier with a shorter delivery time.", code)
	default:
		return fmt.Sprintf("Procure %s ahead of time: stock (%g) does not cover the requirement (%g). A larger batch may lower the unit cost.",
			code, inventory, required)
	}
}
