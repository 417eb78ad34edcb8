package memory

import (
	"fmt"
	"sync"

	"github.com/vsinha/mps/pkg/domain/entities"
	"github.com/vsinha/mps/pkg/domain/repositories"
)

// InventoryRepository provides in-memory on-hand quantities with a snapshot version
type InventoryRepository struct {
	mu         sync.RWMutex
	quantities map[entities.MaterialCode]float64
	version    uint64
}

// NewInventoryRepository creates a new in-memory inventory repository
func NewInventoryRepository() *InventoryRepository {
	return &InventoryRepository{
		quantities: make(map[entities.MaterialCode]float64),
	}
}

// Verify interface compliance
var _ repositories.InventoryRepository = (*InventoryRepository)(nil)

// LoadRecords loads inventory records; repeated codes are summed
func (r *InventoryRepository) LoadRecords(records []*entities.InventoryRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, rec := range records {
		if rec == nil {
			return fmt.Errorf("nil inventory record")
		}
		r.quantities[rec.Code] += rec.Quantity
	}
	r.version++
	return nil
}

// SetQuantity replaces the on-hand quantity of one material
func (r *InventoryRepository) SetQuantity(code entities.MaterialCode, quantity float64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.quantities[code] = quantity
	r.version++
}

// GetQuantity returns the on-hand quantity and whether a record exists
func (r *InventoryRepository) GetQuantity(code entities.MaterialCode) (float64, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	q, ok := r.quantities[code]
	return q, ok, nil
}

// GetSnapshot returns a copy of all quantities
func (r *InventoryRepository) GetSnapshot() (map[entities.MaterialCode]float64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	snapshot := make(map[entities.MaterialCode]float64, len(r.quantities))
	for code, q := range r.quantities {
		snapshot[code] = q
	}
	return snapshot, nil
}

// Version increases on every change to the stored quantities
func (r *InventoryRepository) Version() uint64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.version
}
