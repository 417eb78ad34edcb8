package memory

import (
	"fmt"
	"sync"

	"github.com/vsinha/mps/pkg/domain/entities"
	"github.com/vsinha/mps/pkg/domain/repositories"
)

// BOMRepository provides in-memory BOM edge and material master storage
type BOMRepository struct {
	mu           sync.RWMutex
	edges        []entities.BOMEdge
	edgeIndexes  map[entities.MaterialCode][]int
	materials    []entities.MaterialInfo
	materialsMap map[entities.MaterialCode]int
}

// NewBOMRepository creates a BOM repository sized for the expected number of edges
func NewBOMRepository(expectedEdges int) *BOMRepository {
	return &BOMRepository{
		edges:        make([]entities.BOMEdge, 0, expectedEdges),
		edgeIndexes:  make(map[entities.MaterialCode][]int),
		materialsMap: make(map[entities.MaterialCode]int),
	}
}

// Verify interface compliance
var _ repositories.BOMRepository = (*BOMRepository)(nil)
var _ repositories.MaterialRepository = (*BOMRepository)(nil)

// LoadEdges loads BOM edges into the repository
func (r *BOMRepository) LoadEdges(edges []*entities.BOMEdge) error {
	for _, e := range edges {
		if e == nil {
			return fmt.Errorf("nil BOM edge")
		}
		r.AddEdge(*e)
	}
	return nil
}

// AddEdge adds a BOM edge to the repository
func (r *BOMRepository) AddEdge(edge entities.BOMEdge) {
	r.mu.Lock()
	defer r.mu.Unlock()

	index := len(r.edges)
	r.edges = append(r.edges, edge)
	r.edgeIndexes[edge.ParentCode] = append(r.edgeIndexes[edge.ParentCode], index)
}

// GetChildEdges returns all edges under a parent in load order
func (r *BOMRepository) GetChildEdges(parentCode entities.MaterialCode) ([]*entities.BOMEdge, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.childEdges(parentCode), nil
}

func (r *BOMRepository) childEdges(parentCode entities.MaterialCode) []*entities.BOMEdge {
	indexes := r.edgeIndexes[parentCode]
	edges := make([]*entities.BOMEdge, 0, len(indexes))
	for _, index := range indexes {
		e := r.edges[index]
		edges = append(edges, &e)
	}
	return edges
}

// GetAllEdges returns all BOM edges
func (r *BOMRepository) GetAllEdges() ([]*entities.BOMEdge, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	edges := make([]*entities.BOMEdge, 0, len(r.edges))
	for i := range r.edges {
		e := r.edges[i]
		edges = append(edges, &e)
	}
	return edges, nil
}

// GetProductEdges returns the edges reachable from a product, breadth-first by parent
func (r *BOMRepository) GetProductEdges(productCode entities.MaterialCode) ([]*entities.BOMEdge, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if _, ok := r.edgeIndexes[productCode]; !ok {
		if _, known := r.materialsMap[productCode]; !known {
			return nil, fmt.Errorf("%w: %s", entities.ErrProductNotFound, productCode)
		}
		return []*entities.BOMEdge{}, nil
	}

	var result []*entities.BOMEdge
	seen := map[entities.MaterialCode]bool{productCode: true}
	queue := []entities.MaterialCode{productCode}
	for len(queue) > 0 {
		parent := queue[0]
		queue = queue[1:]
		for _, e := range r.childEdges(parent) {
			result = append(result, e)
			if !seen[e.ChildCode] {
				seen[e.ChildCode] = true
				queue = append(queue, e.ChildCode)
			}
		}
	}
	return result, nil
}

// LoadMaterials loads material master data (MaterialRepository interface)
func (r *BOMRepository) LoadMaterials(materials []*entities.MaterialInfo) error {
	for _, m := range materials {
		if m == nil {
			return fmt.Errorf("nil material")
		}
		r.AddMaterial(*m)
	}
	return nil
}

// AddMaterial adds or replaces a material
func (r *BOMRepository) AddMaterial(material entities.MaterialInfo) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if index, exists := r.materialsMap[material.Code]; exists {
		r.materials[index] = material
		return
	}
	r.materialsMap[material.Code] = len(r.materials)
	r.materials = append(r.materials, material)
}

// GetMaterial returns material master data for a code
func (r *BOMRepository) GetMaterial(code entities.MaterialCode) (*entities.MaterialInfo, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	index, exists := r.materialsMap[code]
	if !exists {
		return nil, fmt.Errorf("material not found: %s", code)
	}
	m := r.materials[index]
	return &m, nil
}

// GetAllMaterials returns all materials keyed by code
func (r *BOMRepository) GetAllMaterials() (map[entities.MaterialCode]*entities.MaterialInfo, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	materials := make(map[entities.MaterialCode]*entities.MaterialInfo, len(r.materials))
	for i := range r.materials {
		m := r.materials[i]
		materials[m.Code] = &m
	}
	return materials, nil
}
