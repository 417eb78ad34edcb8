package entities

import "testing"

func TestBOMEdge_Validation(t *testing.T) {
	validEdge, err := NewBOMEdge("PARENT", "CHILD", 2, "pcs", 0.05, "", "")
	if err != nil {
		t.Fatalf("Expected valid BOM edge creation to succeed: %v", err)
	}
	if validEdge.ChildQuantity != 2 {
		t.Errorf("Expected child quantity 2, got %g", validEdge.ChildQuantity)
	}

	testCases := []struct {
		name          string
		parentCode    MaterialCode
		childCode     MaterialCode
		childQuantity float64
		lossRate      float64
		expectError   string
	}{
		{"empty parent", "", "CHILD", 1, 0, "parent code cannot be empty"},
		{"empty child", "PARENT", "", 1, 0, "child code cannot be empty"},
		{"parent equals child", "SAME", "SAME", 1, 0, "parent and child codes cannot be the same: SAME"},
		{"negative quantity", "PARENT", "CHILD", -1, 0, "child quantity cannot be negative, got -1"},
		{"negative loss rate", "PARENT", "CHILD", 1, -0.5, "loss rate cannot be negative, got -0.5"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewBOMEdge(tc.parentCode, tc.childCode, tc.childQuantity, "pcs", tc.lossRate, "", "")
			if err == nil {
				t.Fatalf("Expected error for %s, but got none", tc.name)
			}
			if err.Error() != tc.expectError {
				t.Errorf("Expected error '%s', got '%s'", tc.expectError, err.Error())
			}
		})
	}

	// zero quantity is tolerated and handled as unconstrained downstream
	if _, err := NewBOMEdge("PARENT", "CHILD", 0, "pcs", 0, "", ""); err != nil {
		t.Errorf("Expected zero quantity to be accepted, got %v", err)
	}
}

func TestBOMEdge_AlternativeGroup(t *testing.T) {
	tests := []struct {
		group     string
		part      string
		inGroup   bool
		isAltPart bool
		key       string
	}{
		{"", "", false, false, "CHILD"},
		{"0", "", false, false, "CHILD"},
		{" 0 ", "", false, false, "CHILD"},
		{"A1", "", true, false, "GROUP_A1"},
		{"A1", "Y", true, true, "GROUP_A1"},
	}

	for _, tt := range tests {
		edge, err := NewBOMEdge("PARENT", "CHILD", 1, "pcs", 0, tt.group, tt.part)
		if err != nil {
			t.Fatalf("Failed to create edge: %v", err)
		}
		if edge.InAlternativeGroup() != tt.inGroup {
			t.Errorf("group %q: expected InAlternativeGroup %v", tt.group, tt.inGroup)
		}
		if edge.IsAlternativePart() != tt.isAltPart {
			t.Errorf("part %q: expected IsAlternativePart %v", tt.part, tt.isAltPart)
		}
		if edge.GroupKey() != tt.key {
			t.Errorf("group %q: expected key %s, got %s", tt.group, tt.key, edge.GroupKey())
		}
	}
}

func TestParseMaterialType(t *testing.T) {
	tests := []struct {
		input    string
		expected MaterialType
		wantErr  bool
	}{
		{"", Purchased, false},
		{"Purchased", Purchased, false},
		{"外购", Purchased, false},
		{"SelfMade", SelfMade, false},
		{"self-made", SelfMade, false},
		{"自制", SelfMade, false},
		{"Outsourced", Outsourced, false},
		{"委外", Outsourced, false},
		{"Gifted", Purchased, true},
	}

	for _, tt := range tests {
		got, err := ParseMaterialType(tt.input)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseMaterialType(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
		}
		if got != tt.expected {
			t.Errorf("ParseMaterialType(%q) = %v, want %v", tt.input, got, tt.expected)
		}
	}
}

func TestNewMaterialInfo(t *testing.T) {
	info, err := NewMaterialInfo("M-1", "Motor", SelfMade, " 1000/day ")
	if err != nil {
		t.Fatalf("Expected valid material info: %v", err)
	}
	if info.LeadTime != "1000/day" {
		t.Errorf("Expected trimmed lead time, got %q", info.LeadTime)
	}

	if _, err := NewMaterialInfo("  ", "", Purchased, ""); err == nil {
		t.Error("Expected error for empty material code")
	}
}
