package entities

// LeadTimeSource tells how a lead time was derived
type LeadTimeSource int

const (
	// SourceRate durations scale with quantity: ceil(quantity / rate)
	SourceRate LeadTimeSource = iota
	// SourceFixedDuration durations are constant regardless of quantity
	SourceFixedDuration
	// SourceDefault durations come from configuration because the raw string was unusable
	SourceDefault
)

func (s LeadTimeSource) String() string {
	switch s {
	case SourceRate:
		return "production_rate"
	case SourceFixedDuration:
		return "fixed_duration"
	case SourceDefault:
		return "default"
	default:
		return "unknown"
	}
}

func (s LeadTimeSource) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// ResolvedLeadTime is a normalised duration for one material and quantity
type ResolvedLeadTime struct {
	Days   int            `json:"days"`
	Source LeadTimeSource `json:"source"`
	// Rate is the per-day production rate used, if any
	Rate    float64 `json:"rate,omitempty"`
	Warning string  `json:"warning,omitempty"`
}

// Defaulted reports whether the resolver fell back to a configured default
func (r ResolvedLeadTime) Defaulted() bool {
	return r.Source == SourceDefault
}
