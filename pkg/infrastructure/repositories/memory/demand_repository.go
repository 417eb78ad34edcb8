package memory

import (
	"github.com/vsinha/mps/pkg/domain/entities"
	"github.com/vsinha/mps/pkg/domain/repositories"
)

// DemandRepository provides in-memory demand storage
type DemandRepository struct {
	demands []entities.Demand
}

// NewDemandRepository creates a new in-memory demand repository
func NewDemandRepository() *DemandRepository {
	return &DemandRepository{
		demands: []entities.Demand{},
	}
}

// Verify interface compliance
var _ repositories.DemandRepository = (*DemandRepository)(nil)

// LoadDemands loads demands into the repository
func (r *DemandRepository) LoadDemands(demands []*entities.Demand) error {
	for _, demand := range demands {
		r.demands = append(r.demands, *demand)
	}
	return nil
}

// GetDemands returns all demands in load order
func (r *DemandRepository) GetDemands() ([]*entities.Demand, error) {
	demands := make([]*entities.Demand, 0, len(r.demands))
	for i := range r.demands {
		demands = append(demands, &r.demands[i])
	}
	return demands, nil
}
