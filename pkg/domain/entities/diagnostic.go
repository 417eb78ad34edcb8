package entities

import "fmt"

// DiagnosticKind classifies a recoverable data problem found during a calculation
type DiagnosticKind string

const (
	DiagMissingInventory  DiagnosticKind = "missing_inventory"
	DiagMissingMaterial   DiagnosticKind = "missing_material"
	DiagMalformedLeadTime DiagnosticKind = "malformed_lead_time"
	DiagDepthExceeded     DiagnosticKind = "depth_exceeded"
	DiagCycleDetected     DiagnosticKind = "cycle_detected"
	DiagZeroQuantity      DiagnosticKind = "zero_quantity"
	DiagDuplicateEdge     DiagnosticKind = "duplicate_edge"
	DiagMalformedGroup    DiagnosticKind = "malformed_group"
	DiagDuplicateMaterial DiagnosticKind = "duplicate_material"
)

// Diagnostic records a degraded input that the calculation recovered from
type Diagnostic struct {
	Kind    DiagnosticKind `json:"kind"`
	Code    MaterialCode   `json:"code"`
	Message string         `json:"message"`
}

// NewDiagnostic creates a Diagnostic with a formatted message
func NewDiagnostic(kind DiagnosticKind, code MaterialCode, format string, args ...any) Diagnostic {
	return Diagnostic{
		Kind:    kind,
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// TruncationReason explains why a node's subtree was not expanded
type TruncationReason string

const (
	NotTruncated   TruncationReason = ""
	TruncatedDepth TruncationReason = "depth_exceeded"
	TruncatedCycle TruncationReason = "cycle_detected"
)
