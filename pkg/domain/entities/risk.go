package entities

// AlertLevel is the severity of a risk alert
type AlertLevel string

const (
	AlertWarning  AlertLevel = "warning"
	AlertCritical AlertLevel = "critical"
)

// AlertType classifies what produced an alert
type AlertType string

const (
	AlertBottleneck      AlertType = "bottleneck"
	AlertMaterialDelay   AlertType = "material_delay"
	AlertScheduleOverdue AlertType = "schedule_overdue"
	AlertDataQuality     AlertType = "data_quality"
)

// RiskAlert is a human-readable finding derived from feasibility and schedule results
type RiskAlert struct {
	Level        AlertLevel   `json:"level"`
	Type         AlertType    `json:"type"`
	ItemID       MaterialCode `json:"item_id"`
	ItemName     string       `json:"item_name"`
	Message      string       `json:"message"`
	AISuggestion string       `json:"ai_suggestion,omitempty"`
}

// IsCritical reports whether the alert is critical
func (a RiskAlert) IsCritical() bool {
	return a.Level == AlertCritical
}
