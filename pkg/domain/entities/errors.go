package entities

import "errors"

var (
	// ErrNilTree is returned when a calculation receives no BOM tree
	ErrNilTree = errors.New("bom tree is nil")
	// ErrUnknownPolicy is returned for a schedule policy outside forward/backward
	ErrUnknownPolicy = errors.New("unknown schedule policy")
	// ErrProductNotFound is returned when a product has neither BOM lines nor metadata
	ErrProductNotFound = errors.New("product not found")
)
