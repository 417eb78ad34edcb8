package memory

import (
	"errors"
	"testing"

	"github.com/vsinha/mps/pkg/domain/entities"
)

func TestBOMRepository_GetChildEdges(t *testing.T) {
	repo := NewBOMRepository(4)

	err := repo.LoadEdges([]*entities.BOMEdge{
		{ParentCode: "DRONE", ChildCode: "FRAME", ChildQuantity: 1},
		{ParentCode: "DRONE", ChildCode: "MOTOR", ChildQuantity: 4},
		{ParentCode: "FRAME", ChildCode: "CARBON", ChildQuantity: 2},
	})
	if err != nil {
		t.Fatalf("Failed to load edges: %v", err)
	}

	edges, err := repo.GetChildEdges("DRONE")
	if err != nil {
		t.Fatalf("Failed to get edges: %v", err)
	}
	if len(edges) != 2 {
		t.Fatalf("Expected 2 edges, got %d", len(edges))
	}
	if edges[0].ChildCode != "FRAME" || edges[1].ChildCode != "MOTOR" {
		t.Errorf("Expected load order FRAME, MOTOR; got %s, %s", edges[0].ChildCode, edges[1].ChildCode)
	}

	// returned edges are copies
	edges[0].ChildQuantity = 99
	again, _ := repo.GetChildEdges("DRONE")
	if again[0].ChildQuantity != 1 {
		t.Error("Mutating a returned edge must not change the repository")
	}

	none, err := repo.GetChildEdges("CARBON")
	if err != nil || len(none) != 0 {
		t.Errorf("Expected no edges for a leaf, got %v (err %v)", none, err)
	}
}

func TestBOMRepository_GetProductEdges(t *testing.T) {
	repo := NewBOMRepository(8)
	repo.AddEdge(entities.BOMEdge{ParentCode: "A", ChildCode: "B", ChildQuantity: 1})
	repo.AddEdge(entities.BOMEdge{ParentCode: "A", ChildCode: "C", ChildQuantity: 1})
	repo.AddEdge(entities.BOMEdge{ParentCode: "B", ChildCode: "D", ChildQuantity: 1})
	repo.AddEdge(entities.BOMEdge{ParentCode: "D", ChildCode: "B", ChildQuantity: 1})
	repo.AddEdge(entities.BOMEdge{ParentCode: "X", ChildCode: "Y", ChildQuantity: 1})

	edges, err := repo.GetProductEdges("A")
	if err != nil {
		t.Fatalf("Failed to get product edges: %v", err)
	}
	if len(edges) != 4 {
		t.Fatalf("Expected 4 reachable edges (cycle included once), got %d", len(edges))
	}
	for _, e := range edges {
		if e.ParentCode == "X" {
			t.Error("Unrelated product edges must not be returned")
		}
	}

	_, err = repo.GetProductEdges("NOPE")
	if !errors.Is(err, entities.ErrProductNotFound) {
		t.Errorf("Expected ErrProductNotFound, got %v", err)
	}

	// a known material without a BOM is a valid single-node product
	repo.AddMaterial(entities.MaterialInfo{Code: "RAW"})
	edges, err = repo.GetProductEdges("RAW")
	if err != nil || len(edges) != 0 {
		t.Errorf("Expected empty edge list for RAW, got %v (err %v)", edges, err)
	}
}

func TestBOMRepository_Materials(t *testing.T) {
	repo := NewBOMRepository(0)
	err := repo.LoadMaterials([]*entities.MaterialInfo{
		{Code: "MOTOR", Name: "Motor", Type: entities.Purchased, LeadTime: "10 days"},
		{Code: "DRONE", Name: "Drone", Type: entities.SelfMade, LeadTime: "50/day"},
	})
	if err != nil {
		t.Fatalf("Failed to load materials: %v", err)
	}

	m, err := repo.GetMaterial("MOTOR")
	if err != nil {
		t.Fatalf("Failed to get material: %v", err)
	}
	if m.LeadTime != "10 days" {
		t.Errorf("Expected lead time '10 days', got %q", m.LeadTime)
	}

	repo.AddMaterial(entities.MaterialInfo{Code: "MOTOR", LeadTime: "12 days"})
	all, _ := repo.GetAllMaterials()
	if len(all) != 2 {
		t.Fatalf("Expected 2 materials after replace, got %d", len(all))
	}
	if all["MOTOR"].LeadTime != "12 days" {
		t.Errorf("Expected replaced lead time, got %q", all["MOTOR"].LeadTime)
	}

	if _, err := repo.GetMaterial("GHOST"); err == nil {
		t.Error("Expected error for unknown material")
	}
}
