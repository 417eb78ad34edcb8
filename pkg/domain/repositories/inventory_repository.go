package repositories

import "github.com/vsinha/mps/pkg/domain/entities"

// InventoryRepository provides access to on-hand quantities.
// Version changes whenever the snapshot changes, so results can be memoised per version.
type InventoryRepository interface {
	GetQuantity(code entities.MaterialCode) (float64, bool, error)
	GetSnapshot() (map[entities.MaterialCode]float64, error)
	LoadRecords(records []*entities.InventoryRecord) error
	Version() uint64
}
