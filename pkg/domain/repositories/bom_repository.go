package repositories

import "github.com/vsinha/mps/pkg/domain/entities"

// BOMRepository provides access to Bill of Materials edges
type BOMRepository interface {
	// GetChildEdges returns the edges whose parent is the given code, in source order
	GetChildEdges(parentCode entities.MaterialCode) ([]*entities.BOMEdge, error)
	GetAllEdges() ([]*entities.BOMEdge, error)
	LoadEdges(edges []*entities.BOMEdge) error

	// GetProductEdges returns every edge reachable from the product, in source order.
	// Reachability stops at codes already collected, so cyclic data terminates.
	GetProductEdges(productCode entities.MaterialCode) ([]*entities.BOMEdge, error)
}
