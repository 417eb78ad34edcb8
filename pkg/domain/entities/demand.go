package entities

import (
	"fmt"
	"time"
)

// Demand asks for a quantity of a product, optionally by a due date
type Demand struct {
	ProductCode MaterialCode `json:"product_code"`
	Quantity    float64      `json:"quantity"`
	DueDate     *time.Time   `json:"due_date,omitempty"`
	Policy      Policy       `json:"policy,omitempty"`
}

// NewDemand creates a validated Demand
func NewDemand(productCode MaterialCode, quantity float64, dueDate *time.Time, policy Policy) (*Demand, error) {
	if productCode == "" {
		return nil, fmt.Errorf("product code cannot be empty")
	}
	if quantity <= 0 {
		return nil, fmt.Errorf("quantity must be positive, got %g", quantity)
	}
	if policy == PolicyBackward && dueDate == nil {
		return nil, fmt.Errorf("backward planning of %s requires a due date", productCode)
	}

	return &Demand{
		ProductCode: productCode,
		Quantity:    quantity,
		DueDate:     dueDate,
		Policy:      policy,
	}, nil
}
