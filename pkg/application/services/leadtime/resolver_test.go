package leadtime

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/vsinha/mps/pkg/domain/entities"
)

func TestParse(t *testing.T) {
	tests := []struct {
		raw   string
		kind  Kind
		value float64
	}{
		{"1000/day", KindRate, 1000},
		{"1000 / Day", KindRate, 1000},
		{"250 pcs/day", KindRate, 250},
		{"1000个/天", KindRate, 1000},
		{"12.5/d", KindRate, 12.5},
		{"0/day", KindUnknown, 0},
		{"15 days", KindDuration, 15},
		{"15天", KindDuration, 15},
		{"10 days delivery", KindDuration, 10},
		{"delivery 7 days", KindDuration, 7},
		{"交期20天", KindDuration, 20},
		{"30", KindDuration, 30},
		{"1 day", KindDuration, 1},
		{"", KindUnknown, 0},
		{"soon", KindUnknown, 0},
		{"3 weeks", KindUnknown, 0},
		{"-5 days", KindUnknown, 0},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got := Parse(tt.raw)
			assert.Equal(t, tt.kind, got.Kind)
			if tt.kind != KindUnknown {
				assert.Equal(t, tt.value, got.Value)
			}
		})
	}
}

func TestResolver_Resolve(t *testing.T) {
	r := NewResolver(0, -1)

	t.Run("rate scales with quantity", func(t *testing.T) {
		got := r.Resolve(entities.SelfMade, "1000/day", 2500)
		assert.Equal(t, 3, got.Days)
		assert.Equal(t, entities.SourceRate, got.Source)
		assert.Equal(t, 1000.0, got.Rate)
		assert.Empty(t, got.Warning)
	})

	t.Run("rate with small quantity takes one day", func(t *testing.T) {
		assert.Equal(t, 1, r.Resolve(entities.SelfMade, "1000/day", 1).Days)
	})

	t.Run("rate with nothing to make takes no time", func(t *testing.T) {
		assert.Equal(t, 0, r.Resolve(entities.SelfMade, "1000/day", 0).Days)
	})

	t.Run("fixed duration ignores quantity", func(t *testing.T) {
		small := r.Resolve(entities.Purchased, "10 days", 1)
		large := r.Resolve(entities.Purchased, "10 days", 1e6)
		assert.Equal(t, 10, small.Days)
		assert.Equal(t, small, large)
		assert.Equal(t, entities.SourceFixedDuration, small.Source)
	})

	t.Run("fractional duration rounds up", func(t *testing.T) {
		assert.Equal(t, 3, r.Resolve(entities.Outsourced, "2.5 days", 1).Days)
	})

	t.Run("duration just above a whole day rounds up", func(t *testing.T) {
		got := r.Resolve(entities.Purchased, "2.0000001 days", 1)
		assert.Equal(t, 3, got.Days)
		assert.Equal(t, entities.SourceFixedDuration, got.Source)
	})

	t.Run("duration beyond the bound falls back to default", func(t *testing.T) {
		got := r.Resolve(entities.Purchased, "99999999999999999999 days", 1)
		assert.Equal(t, DefaultDeliveryDays, got.Days)
		assert.Equal(t, entities.SourceDefault, got.Source)
		assert.True(t, got.Defaulted())
		assert.Contains(t, got.Warning, "exceeds 3650 days")

		made := r.Resolve(entities.SelfMade, "3651 days", 2000)
		assert.Equal(t, 2, made.Days)
		assert.Equal(t, entities.SourceDefault, made.Source)
	})

	t.Run("duration at the bound is kept", func(t *testing.T) {
		got := r.Resolve(entities.Outsourced, "3650 days", 1)
		assert.Equal(t, entities.MaxLeadTimeDays, got.Days)
		assert.Equal(t, entities.SourceFixedDuration, got.Source)
		assert.Empty(t, got.Warning)
	})

	t.Run("rate over a huge quantity is capped", func(t *testing.T) {
		got := r.Resolve(entities.SelfMade, "1/day", 1e12)
		assert.Equal(t, entities.MaxLeadTimeDays, got.Days)
		assert.Equal(t, entities.SourceRate, got.Source)
		assert.False(t, got.Defaulted())
		assert.Contains(t, got.Warning, "capped")
	})

	t.Run("malformed self-made falls back to default rate", func(t *testing.T) {
		got := r.Resolve(entities.SelfMade, "fast", 1500)
		assert.Equal(t, 2, got.Days)
		assert.Equal(t, entities.SourceDefault, got.Source)
		assert.True(t, got.Defaulted())
		assert.Contains(t, got.Warning, `"fast"`)
	})

	t.Run("missing purchased falls back to default delivery", func(t *testing.T) {
		got := r.Resolve(entities.Purchased, "", 5)
		assert.Equal(t, DefaultDeliveryDays, got.Days)
		assert.Equal(t, entities.SourceDefault, got.Source)
		assert.Equal(t, "no lead time given, using default", got.Warning)
	})
}

func TestResolver_CustomDefaults(t *testing.T) {
	r := NewResolver(100, 3)

	assert.Equal(t, 5, r.Resolve(entities.SelfMade, "", 450).Days)
	assert.Equal(t, 3, r.Resolve(entities.Outsourced, "n/a", 450).Days)
	assert.Equal(t, 5, r.ResolveMaterial(nil, entities.SelfMade, 450).Days)
	assert.Equal(t, 3, r.ResolveMaterial(nil, entities.Purchased, 450).Days)

	info := &entities.MaterialInfo{Code: "M", Type: entities.Purchased, LeadTime: "8 days"}
	assert.Equal(t, 8, r.ResolveMaterial(info, entities.SelfMade, 1).Days)
}
