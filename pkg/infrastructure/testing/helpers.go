package testing

import (
	"time"

	"github.com/vsinha/mps/pkg/domain/entities"
	"github.com/vsinha/mps/pkg/infrastructure/repositories/memory"
)

// Date returns midnight UTC of the given day
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// DroneEdges is a two-level drone BOM with one alternative battery group.
//
//	DRONE
//	├── FRAME x1
//	├── MOTOR x4
//	│   ├── STATOR x1
//	│   └── MAGNET x2
//	├── BAT_A x1 (group 1, primary)
//	├── BAT_B x1 (group 1, alternative)
//	└── PCB x1
func DroneEdges() []*entities.BOMEdge {
	return []*entities.BOMEdge{
		{ParentCode: "DRONE", ParentName: "Quadcopter", ChildCode: "FRAME", ChildName: "Carbon frame", ChildQuantity: 1, Unit: "pcs"},
		{ParentCode: "DRONE", ParentName: "Quadcopter", ChildCode: "MOTOR", ChildName: "Brushless motor", ChildQuantity: 4, Unit: "pcs"},
		{ParentCode: "MOTOR", ParentName: "Brushless motor", ChildCode: "STATOR", ChildName: "Stator", ChildQuantity: 1, Unit: "pcs"},
		{ParentCode: "MOTOR", ParentName: "Brushless motor", ChildCode: "MAGNET", ChildName: "Magnet", ChildQuantity: 2, Unit: "pcs"},
		{ParentCode: "DRONE", ParentName: "Quadcopter", ChildCode: "BAT_A", ChildName: "Battery 4S", ChildQuantity: 1, Unit: "pcs", AlternativeGroup: "1"},
		{ParentCode: "DRONE", ParentName: "Quadcopter", ChildCode: "BAT_B", ChildName: "Battery 4S (alt)", ChildQuantity: 1, Unit: "pcs", AlternativeGroup: "1", AlternativePart: "BAT_A"},
		{ParentCode: "DRONE", ParentName: "Quadcopter", ChildCode: "PCB", ChildName: "Flight controller", ChildQuantity: 1, Unit: "pcs"},
	}
}

// DroneInventory supports 4 drones, limited by MOTOR and below it STATOR
func DroneInventory() []*entities.InventoryRecord {
	return []*entities.InventoryRecord{
		{Code: "FRAME", Quantity: 20},
		{Code: "MOTOR", Quantity: 8},
		{Code: "STATOR", Quantity: 10},
		{Code: "MAGNET", Quantity: 30},
		{Code: "BAT_A", Quantity: 3},
		{Code: "BAT_B", Quantity: 4},
		{Code: "PCB", Quantity: 50},
	}
}

// DroneMaterials is the material master of the drone BOM
func DroneMaterials() []*entities.MaterialInfo {
	return []*entities.MaterialInfo{
		{Code: "DRONE", Name: "Quadcopter", Type: entities.SelfMade, LeadTime: "500/day"},
		{Code: "FRAME", Name: "Carbon frame", Type: entities.Purchased, LeadTime: "10 days"},
		{Code: "MOTOR", Name: "Brushless motor", Type: entities.SelfMade, LeadTime: "100/day"},
		{Code: "STATOR", Name: "Stator", Type: entities.Purchased, LeadTime: "20 days"},
		{Code: "MAGNET", Name: "Magnet", Type: entities.Purchased, LeadTime: "5 days"},
		{Code: "BAT_A", Name: "Battery 4S", Type: entities.Purchased, LeadTime: "15 days"},
		{Code: "BAT_B", Name: "Battery 4S (alt)", Type: entities.Purchased, LeadTime: "12 days"},
		{Code: "PCB", Name: "Flight controller", Type: entities.Outsourced, LeadTime: "7 days"},
	}
}

// BuildDroneTestData loads the drone scenario into fresh in-memory repositories.
// The BOM repository also serves the material master.
func BuildDroneTestData() (*memory.BOMRepository, *memory.InventoryRepository, *memory.DemandRepository) {
	bomRepo := memory.NewBOMRepository(len(DroneEdges()))
	inventoryRepo := memory.NewInventoryRepository()
	demandRepo := memory.NewDemandRepository()

	if err := bomRepo.LoadEdges(DroneEdges()); err != nil {
		panic(err)
	}
	if err := bomRepo.LoadMaterials(DroneMaterials()); err != nil {
		panic(err)
	}
	if err := inventoryRepo.LoadRecords(DroneInventory()); err != nil {
		panic(err)
	}

	return bomRepo, inventoryRepo, demandRepo
}

// BuildSimpleTestData creates a one-level assembly of 2 x COMPONENT_A with 10 in stock
func BuildSimpleTestData() (*memory.BOMRepository, *memory.InventoryRepository, *memory.DemandRepository) {
	bomRepo := memory.NewBOMRepository(1)
	inventoryRepo := memory.NewInventoryRepository()
	demandRepo := memory.NewDemandRepository()

	bomRepo.AddEdge(entities.BOMEdge{ParentCode: "ASSEMBLY_A", ChildCode: "COMPONENT_A", ChildQuantity: 2, Unit: "pcs"})
	bomRepo.AddMaterial(entities.MaterialInfo{Code: "ASSEMBLY_A", Name: "Test Assembly A", Type: entities.SelfMade, LeadTime: "10/day"})
	bomRepo.AddMaterial(entities.MaterialInfo{Code: "COMPONENT_A", Name: "Test Component A", Type: entities.Purchased, LeadTime: "15 days"})
	inventoryRepo.SetQuantity("COMPONENT_A", 10)

	return bomRepo, inventoryRepo, demandRepo
}
