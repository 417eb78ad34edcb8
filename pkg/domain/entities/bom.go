package entities

import (
	"fmt"
	"strings"
)

// BOMEdge represents a single parent→child line in a Bill of Materials
type BOMEdge struct {
	ParentCode       MaterialCode `json:"parent_code"`
	ParentName       string       `json:"parent_name,omitempty"`
	ChildCode        MaterialCode `json:"child_code"`
	ChildName        string       `json:"child_name,omitempty"`
	ChildQuantity    float64      `json:"child_quantity"`
	Unit             string       `json:"unit,omitempty"`
	LossRate         float64      `json:"loss_rate"`
	AlternativeGroup string       `json:"alternative_group,omitempty"`
	AlternativePart  string       `json:"alternative_part,omitempty"`
}

// NewBOMEdge creates a validated BOMEdge.
// A zero child quantity is accepted; the calculators treat it as unconstrained.
func NewBOMEdge(parentCode, childCode MaterialCode, childQuantity float64, unit string, lossRate float64, alternativeGroup, alternativePart string) (*BOMEdge, error) {
	if string(parentCode) == "" {
		return nil, fmt.Errorf("parent code cannot be empty")
	}
	if string(childCode) == "" {
		return nil, fmt.Errorf("child code cannot be empty")
	}
	if parentCode == childCode {
		return nil, fmt.Errorf("parent and child codes cannot be the same: %s", parentCode)
	}
	if childQuantity < 0 {
		return nil, fmt.Errorf("child quantity cannot be negative, got %g", childQuantity)
	}
	if lossRate < 0 {
		return nil, fmt.Errorf("loss rate cannot be negative, got %g", lossRate)
	}

	return &BOMEdge{
		ParentCode:       parentCode,
		ChildCode:        childCode,
		ChildQuantity:    childQuantity,
		Unit:             unit,
		LossRate:         lossRate,
		AlternativeGroup: strings.TrimSpace(alternativeGroup),
		AlternativePart:  strings.TrimSpace(alternativePart),
	}, nil
}

// InAlternativeGroup reports whether the edge carries a substitution group tag.
// The source data uses "0" for "no group".
func (e BOMEdge) InAlternativeGroup() bool {
	tag := strings.TrimSpace(e.AlternativeGroup)
	return tag != "" && tag != "0"
}

// IsAlternativePart reports whether the edge is a non-primary member of its group
func (e BOMEdge) IsAlternativePart() bool {
	return strings.TrimSpace(e.AlternativePart) != ""
}

// GroupKey returns the key that sibling edges are grouped by under one parent
func (e BOMEdge) GroupKey() string {
	if e.InAlternativeGroup() {
		return "GROUP_" + strings.TrimSpace(e.AlternativeGroup)
	}
	return string(e.ChildCode)
}
