package repositories

import "github.com/vsinha/mps/pkg/domain/entities"

// MaterialRepository provides access to material master data
type MaterialRepository interface {
	GetMaterial(code entities.MaterialCode) (*entities.MaterialInfo, error)
	GetAllMaterials() (map[entities.MaterialCode]*entities.MaterialInfo, error)
	LoadMaterials(materials []*entities.MaterialInfo) error
}
