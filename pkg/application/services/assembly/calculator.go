package assembly

import (
	"github.com/vsinha/mps/pkg/domain/entities"
)

// Calculator computes assembly feasibility over a structure tree.
// It is stateless; every call builds a new AssemblyNode tree and never mutates its input.
type Calculator struct{}

// NewCalculator creates a feasibility calculator
func NewCalculator() *Calculator {
	return &Calculator{}
}

// Calculate returns the feasibility tree of tree.Root, whose requiredPerSet is 1
func (c *Calculator) Calculate(tree *entities.BOMTree) (*entities.AssemblyNode, error) {
	if tree == nil || tree.Root == nil {
		return nil, entities.ErrNilTree
	}
	return c.compute(tree.Root, 1), nil
}

func (c *Calculator) compute(node *entities.StructureNode, requiredPerSet float64) *entities.AssemblyNode {
	result := &entities.AssemblyNode{
		Code:           node.Code,
		Name:           node.Name,
		Unit:           node.Unit,
		Level:          node.Level,
		Kind:           entities.ComponentNode,
		Inventory:      node.Inventory,
		RequiredPerSet: requiredPerSet,
		Truncated:      node.Truncated,
	}

	if node.Truncated != entities.NotTruncated {
		result.TotalAvailable = node.Inventory
		result.MaxSets = entities.Unlimited
		return result
	}

	if node.IsLeaf() {
		result.TotalAvailable = node.Inventory
		result.MaxSets = entities.FloorSets(node.Inventory, requiredPerSet)
		return result
	}

	minSets := entities.Unlimited
	var limiting *entities.AssemblyNode
	for _, group := range node.Groups {
		candidate := c.computeGroup(group)
		if candidate == nil {
			continue
		}
		result.Children = append(result.Children, candidate)

		// strict comparison keeps the first group in BOM order on ties
		if candidate.MaxSets < minSets {
			minSets = candidate.MaxSets
			limiting = candidate
		}
	}

	if limiting != nil {
		result.Producible = minSets
		result.LimitingFactor = limiting
		result.LimitingCode = limiting.Code
	}
	result.TotalAvailable = node.Inventory + float64(result.Producible)
	result.MaxSets = entities.FloorSets(result.TotalAvailable, requiredPerSet)

	return result
}

// computeGroup returns the node representing one component slot: the single child
// itself, or a virtual node pooling the availability of all alternative members.
func (c *Calculator) computeGroup(group *entities.ComponentGroup) *entities.AssemblyNode {
	if len(group.Members) == 0 {
		return nil
	}

	if group.Kind == entities.SingleComponent {
		member := group.Members[0]
		return c.compute(member, member.RequiredPerSet)
	}

	groupNode := &entities.AssemblyNode{
		Code:           entities.MaterialCode(group.Key),
		Name:           "Alternative group " + group.Tag,
		Unit:           group.PrimaryMember().Unit,
		Level:          group.PrimaryMember().Level,
		Kind:           entities.AlternativeGroupNode,
		GroupName:      group.Tag,
		RequiredPerSet: group.RequiredPerSet,
	}

	pool := 0.0
	unconstrained := false
	for _, member := range group.Members {
		child := c.compute(member, member.RequiredPerSet)
		groupNode.Children = append(groupNode.Children, child)
		groupNode.Inventory += child.Inventory
		if child.Unconstrained() && child.Truncated != entities.NotTruncated {
			unconstrained = true
		}
		pool += child.TotalAvailable
	}

	groupNode.TotalAvailable = pool
	if unconstrained {
		groupNode.MaxSets = entities.Unlimited
	} else {
		groupNode.MaxSets = entities.FloorSets(pool, group.RequiredPerSet)
	}

	return groupNode
}
