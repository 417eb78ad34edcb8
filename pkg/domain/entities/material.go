package entities

import (
	"fmt"
	"strings"
)

// MaterialCode represents a unique material or product identifier
type MaterialCode string

// MaterialType represents how a material is sourced
type MaterialType int

const (
	Purchased MaterialType = iota
	SelfMade
	Outsourced
)

// String method for MaterialType enum
func (m MaterialType) String() string {
	switch m {
	case Purchased:
		return "Purchased"
	case SelfMade:
		return "SelfMade"
	case Outsourced:
		return "Outsourced"
	default:
		return "Unknown"
	}
}

// MarshalText renders the material type for JSON and YAML output
func (m MaterialType) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// ParseMaterialType maps the source system's material type labels.
// Empty input defaults to Purchased.
func ParseMaterialType(s string) (MaterialType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "purchased", "buy", "外购":
		return Purchased, nil
	case "selfmade", "self-made", "self_made", "make", "自制":
		return SelfMade, nil
	case "outsourced", "subcontract", "委外":
		return Outsourced, nil
	default:
		return Purchased, fmt.Errorf("invalid material type: %s (expected: SelfMade, Purchased, or Outsourced)", s)
	}
}

// MaterialInfo is the scheduling metadata of a material or product.
// LeadTime holds the raw duration expression, e.g. "1000/day" or "15 days".
type MaterialInfo struct {
	Code     MaterialCode `json:"material_code"`
	Name     string       `json:"material_name,omitempty"`
	Type     MaterialType `json:"material_type"`
	LeadTime string       `json:"lead_time,omitempty"`
}

// NewMaterialInfo creates a validated MaterialInfo
func NewMaterialInfo(code MaterialCode, name string, materialType MaterialType, leadTime string) (*MaterialInfo, error) {
	if strings.TrimSpace(string(code)) == "" {
		return nil, fmt.Errorf("material code cannot be empty")
	}

	return &MaterialInfo{
		Code:     code,
		Name:     name,
		Type:     materialType,
		LeadTime: strings.TrimSpace(leadTime),
	}, nil
}

// InventoryRecord is the on-hand quantity of one material
type InventoryRecord struct {
	Code     MaterialCode
	Name     string
	Quantity float64
}
