package fusion

import (
	"math"
	"testing"

	"ai-recommendation-be/internal/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr(v float64) *float64 { return &v }

func TestNormalizeBudget(t *testing.T) {
	tests := []struct {
		name     string
		min, max *float64
		want     *entity.BudgetRange
	}{
		{name: "none", want: nil},
		{name: "valid", min: ptr(100), max: ptr(200), want: &entity.BudgetRange{Min: 100, Max: 200}},
		{name: "swapped", min: ptr(200), max: ptr(100), want: &entity.BudgetRange{Min: 100, Max: 200}},
		{name: "negative min", min: ptr(-5), max: ptr(50), want: &entity.BudgetRange{Min: 0, Max: 50}},
		{name: "both negative", min: ptr(-5), max: ptr(-1), want: &entity.BudgetRange{Min: 0, Max: 0}},
		{name: "only max", max: ptr(80), want: &entity.BudgetRange{Min: 0, Max: 80}},
		{name: "only min", min: ptr(30), want: &entity.BudgetRange{Min: 30, Max: math.MaxFloat64}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeBudget(tt.min, tt.max))
		})
	}
}

func TestApplyPreferences(t *testing.T) {
	sc := entity.NewSessionContext("s-1", now)
	sc.Preferences["color"] = "red"
	sc.Preferences["brand"] = "acme"

	next := NewPolicy(DefaultLimits()).ApplyPreferences(sc, PreferenceUpdate{
		BudgetMin:   ptr(300),
		BudgetMax:   ptr(100),
		Preferences: map[string]interface{}{"color": "blue", "brand": nil},
	})

	require.NotNil(t, next.BudgetRange)
	assert.Equal(t, entity.BudgetRange{Min: 100, Max: 300}, *next.BudgetRange)
	assert.Equal(t, map[string]interface{}{"color": "blue"}, next.Preferences)

	// original untouched
	assert.Nil(t, sc.BudgetRange)
	assert.Equal(t, "red", sc.Preferences["color"])

	cleared := NewPolicy(DefaultLimits()).ApplyPreferences(next, PreferenceUpdate{ClearBudget: true})
	assert.Nil(t, cleared.BudgetRange)

	unchanged := NewPolicy(DefaultLimits()).ApplyPreferences(next, PreferenceUpdate{})
	assert.Equal(t, next.BudgetRange, unchanged.BudgetRange)
}
