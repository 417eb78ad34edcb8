package csv

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/vsinha/mps/pkg/domain/entities"
)

const dateLayout = "2006-01-02"

var (
	bomColumns       = []string{"parent_code", "child_code", "child_quantity"}
	inventoryColumns = []string{"material_code", "available_quantity"}
	materialColumns  = []string{"material_code", "material_type"}
	demandColumns    = []string{"product_code", "quantity"}
)

// Loader reads planning data from CSV or XLSX files.
// Columns are matched by header name; optional columns may be omitted.
type Loader struct{}

// NewLoader creates a new loader
func NewLoader() *Loader {
	return &Loader{}
}

// LoadBOM loads BOM edges. Columns: parent_code, parent_name, child_code, child_name,
// child_quantity, unit, loss_rate, alternative_group, alternative_part.
func (l *Loader) LoadBOM(filename string) ([]*entities.BOMEdge, error) {
	t, err := readTable(filename)
	if err != nil {
		return nil, fmt.Errorf("BOM file: %w", err)
	}
	if err := t.require(bomColumns...); err != nil {
		return nil, fmt.Errorf("BOM file %s: %w", filename, err)
	}

	edges := make([]*entities.BOMEdge, 0, len(t.rows))
	for i, row := range t.rows {
		edge, err := parseBOMEdge(t, row)
		if err != nil {
			return nil, fmt.Errorf("BOM file row %d: %w", i+2, err)
		}
		edges = append(edges, edge)
	}
	return edges, nil
}

// LoadInventory loads on-hand quantities. Columns: material_code, material_name, available_quantity.
func (l *Loader) LoadInventory(filename string) ([]*entities.InventoryRecord, error) {
	t, err := readTable(filename)
	if err != nil {
		return nil, fmt.Errorf("inventory file: %w", err)
	}
	if err := t.require(inventoryColumns...); err != nil {
		return nil, fmt.Errorf("inventory file %s: %w", filename, err)
	}

	records := make([]*entities.InventoryRecord, 0, len(t.rows))
	for i, row := range t.rows {
		code := t.get(row, "material_code")
		if code == "" {
			return nil, fmt.Errorf("inventory file row %d: material_code cannot be empty", i+2)
		}
		quantity, err := parseNumber(t.get(row, "available_quantity"), 0)
		if err != nil {
			return nil, fmt.Errorf("inventory file row %d: invalid available_quantity: %w", i+2, err)
		}
		records = append(records, &entities.InventoryRecord{
			Code:     entities.MaterialCode(code),
			Name:     t.get(row, "material_name"),
			Quantity: quantity,
		})
	}
	return records, nil
}

// LoadMaterials loads the material master. Columns: material_code, material_name,
// material_type, delivery_duration.
func (l *Loader) LoadMaterials(filename string) ([]*entities.MaterialInfo, error) {
	t, err := readTable(filename)
	if err != nil {
		return nil, fmt.Errorf("materials file: %w", err)
	}
	if err := t.require(materialColumns...); err != nil {
		return nil, fmt.Errorf("materials file %s: %w", filename, err)
	}

	materials := make([]*entities.MaterialInfo, 0, len(t.rows))
	for i, row := range t.rows {
		materialType, err := entities.ParseMaterialType(t.get(row, "material_type"))
		if err != nil {
			return nil, fmt.Errorf("materials file row %d: %w", i+2, err)
		}
		info, err := entities.NewMaterialInfo(
			entities.MaterialCode(t.get(row, "material_code")),
			t.get(row, "material_name"),
			materialType,
			t.get(row, "delivery_duration"),
		)
		if err != nil {
			return nil, fmt.Errorf("materials file row %d: %w", i+2, err)
		}
		materials = append(materials, info)
	}
	return materials, nil
}

// LoadDemands loads product demands. Columns: product_code, quantity, due_date (YYYY-MM-DD), policy.
func (l *Loader) LoadDemands(filename string) ([]*entities.Demand, error) {
	t, err := readTable(filename)
	if err != nil {
		return nil, fmt.Errorf("demands file: %w", err)
	}
	if err := t.require(demandColumns...); err != nil {
		return nil, fmt.Errorf("demands file %s: %w", filename, err)
	}

	demands := make([]*entities.Demand, 0, len(t.rows))
	for i, row := range t.rows {
		demand, err := parseDemand(t, row)
		if err != nil {
			return nil, fmt.Errorf("demands file row %d: %w", i+2, err)
		}
		demands = append(demands, demand)
	}
	return demands, nil
}

func parseBOMEdge(t *table, row []string) (*entities.BOMEdge, error) {
	quantity, err := parseNumber(t.get(row, "child_quantity"), -1)
	if err != nil || quantity < 0 {
		return nil, fmt.Errorf("invalid child_quantity: %q", t.get(row, "child_quantity"))
	}
	lossRate, err := parseLossRate(t.get(row, "loss_rate"))
	if err != nil {
		return nil, err
	}

	edge, err := entities.NewBOMEdge(
		entities.MaterialCode(t.get(row, "parent_code")),
		entities.MaterialCode(t.get(row, "child_code")),
		quantity,
		t.get(row, "unit"),
		lossRate,
		t.get(row, "alternative_group"),
		t.get(row, "alternative_part"),
	)
	if err != nil {
		return nil, err
	}
	edge.ParentName = t.get(row, "parent_name")
	edge.ChildName = t.get(row, "child_name")
	return edge, nil
}

func parseDemand(t *table, row []string) (*entities.Demand, error) {
	quantity, err := parseNumber(t.get(row, "quantity"), 0)
	if err != nil {
		return nil, fmt.Errorf("invalid quantity: %q", t.get(row, "quantity"))
	}

	var due *time.Time
	if s := t.get(row, "due_date"); s != "" {
		d, err := time.Parse(dateLayout, s)
		if err != nil {
			return nil, fmt.Errorf("invalid due_date format: %s (expected YYYY-MM-DD)", s)
		}
		due = &d
	}

	var policy entities.Policy
	if s := t.get(row, "policy"); s != "" {
		policy, err = entities.ParsePolicy(s)
		if err != nil {
			return nil, err
		}
	}

	return entities.NewDemand(entities.MaterialCode(t.get(row, "product_code")), quantity, due, policy)
}

// parseNumber parses a decimal cell; an empty cell yields def
func parseNumber(s string, def float64) (float64, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	if s == "" {
		return def, nil
	}
	return strconv.ParseFloat(s, 64)
}

// parseLossRate accepts a fraction (0.05), a percentage (5) or a percent string (5%)
func parseLossRate(s string) (float64, error) {
	s = strings.TrimSpace(s)
	percent := strings.HasSuffix(s, "%")
	value, err := parseNumber(strings.TrimSuffix(s, "%"), 0)
	if err != nil || value < 0 {
		return 0, fmt.Errorf("invalid loss_rate: %q", s)
	}
	if percent {
		value /= 100
	}
	return entities.NormalizeLossRate(value), nil
}
