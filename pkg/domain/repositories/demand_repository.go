package repositories

import "github.com/vsinha/mps/pkg/domain/entities"

// DemandRepository provides access to production demands to plan
type DemandRepository interface {
	GetDemands() ([]*entities.Demand, error)
	LoadDemands(demands []*entities.Demand) error
}
