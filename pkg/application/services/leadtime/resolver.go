package leadtime

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/vsinha/mps/pkg/domain/entities"
)

const (
	// DefaultProductionRate is the per-day rate assumed for self-made items without a usable rate
	DefaultProductionRate = 1000.0
	// DefaultDeliveryDays is the procurement time assumed for bought items without a usable duration
	DefaultDeliveryDays = 15
)

// Kind is the encoding a raw lead-time string uses
type Kind int

const (
	KindUnknown Kind = iota
	KindRate
	KindDuration
)

var (
	// "1000/day", "1000 pcs/day", "1000个/天"
	ratePattern = regexp.MustCompile(`(?i)^\s*(\d+(?:\.\d+)?)\s*[^\d/]*/\s*(?:day|days|d|天|日)\s*$`)
	// "15", "15 days", "15天", "15 days delivery", "delivery 15 days", "交期15天"
	durationPattern = regexp.MustCompile(`(?i)^[^\d\-]*?(\d+(?:\.\d+)?)\s*(?:days?|d|天|日|工作日)?\s*(?:delivery|lead\s*time|交期|交付)?\s*$`)
)

// Parsed is the result of parsing a raw lead-time string
type Parsed struct {
	Kind  Kind
	Value float64
}

// Parse recognises the production-rate and delivery-duration encodings.
// A zero rate is reported as unknown since it would never finish.
func Parse(raw string) Parsed {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Parsed{Kind: KindUnknown}
	}

	if m := ratePattern.FindStringSubmatch(raw); m != nil {
		v, err := strconv.ParseFloat(m[1], 64)
		if err == nil && v > 0 && !math.IsInf(v, 0) {
			return Parsed{Kind: KindRate, Value: v}
		}
		return Parsed{Kind: KindUnknown}
	}

	if m := durationPattern.FindStringSubmatch(raw); m != nil {
		v, err := strconv.ParseFloat(m[1], 64)
		if err == nil && !math.IsInf(v, 0) {
			return Parsed{Kind: KindDuration, Value: v}
		}
	}

	return Parsed{Kind: KindUnknown}
}

// Resolver turns raw lead-time strings into day counts for a quantity
type Resolver struct {
	defaultRate         float64
	defaultDeliveryDays int
}

// NewResolver creates a resolver with fallback values; non-positive values select the package defaults
func NewResolver(defaultRate float64, defaultDeliveryDays int) *Resolver {
	if defaultRate <= 0 {
		defaultRate = DefaultProductionRate
	}
	if defaultDeliveryDays < 0 {
		defaultDeliveryDays = DefaultDeliveryDays
	}
	return &Resolver{
		defaultRate:         defaultRate,
		defaultDeliveryDays: defaultDeliveryDays,
	}
}

// Resolve returns the days needed to make or procure requiredQuantity.
// Rate strings give ceil(quantity / rate); duration strings give a constant.
// Unusable strings fall back by material type and carry a warning instead of failing.
func (r *Resolver) Resolve(materialType entities.MaterialType, raw string, requiredQuantity float64) entities.ResolvedLeadTime {
	parsed := Parse(raw)
	warning := fmt.Sprintf("unparseable lead time %q, using default", raw)

	switch parsed.Kind {
	case KindRate:
		lt := entities.ResolvedLeadTime{
			Days:   entities.CeilDays(requiredQuantity, parsed.Value),
			Source: entities.SourceRate,
			Rate:   parsed.Value,
		}
		if requiredQuantity/parsed.Value > entities.MaxLeadTimeDays {
			lt.Warning = fmt.Sprintf("%g units at %q exceed %d days, capped", requiredQuantity, raw, entities.MaxLeadTimeDays)
		}
		return lt
	case KindDuration:
		if parsed.Value <= entities.MaxLeadTimeDays {
			return entities.ResolvedLeadTime{
				Days:   entities.CeilDays(parsed.Value, 1),
				Source: entities.SourceFixedDuration,
			}
		}
		warning = fmt.Sprintf("lead time %q exceeds %d days, using default", raw, entities.MaxLeadTimeDays)
	}

	if strings.TrimSpace(raw) == "" {
		warning = "no lead time given, using default"
	}

	if materialType == entities.SelfMade {
		return entities.ResolvedLeadTime{
			Days:    entities.CeilDays(requiredQuantity, r.defaultRate),
			Source:  entities.SourceDefault,
			Rate:    r.defaultRate,
			Warning: warning,
		}
	}
	return entities.ResolvedLeadTime{
		Days:    r.defaultDeliveryDays,
		Source:  entities.SourceDefault,
		Warning: warning,
	}
}

// ResolveMaterial resolves the lead time of a material record.
// A nil record resolves with fallbackType and an empty lead-time string.
func (r *Resolver) ResolveMaterial(info *entities.MaterialInfo, fallbackType entities.MaterialType, requiredQuantity float64) entities.ResolvedLeadTime {
	if info == nil {
		return r.Resolve(fallbackType, "", requiredQuantity)
	}
	return r.Resolve(info.Type, info.LeadTime, requiredQuantity)
}
