package fusion

import (
	"math"

	"ai-recommendation-be/internal/entity"
)

// NormalizeBudget turns user supplied bounds into a usable range. Negative
// bounds become 0, a reversed range is swapped, a missing lower bound is 0
// and a missing upper bound is unbounded. Both nil means no budget.
func NormalizeBudget(lower, upper *float64) *entity.BudgetRange {
	if lower == nil && upper == nil {
		return nil
	}

	lo, hi := 0.0, math.MaxFloat64
	if lower != nil {
		lo = *lower
	}
	if upper != nil {
		hi = *upper
	}
	lo = math.Max(lo, 0)
	hi = math.Max(hi, 0)
	if lo > hi {
		lo, hi = hi, lo
	}
	return &entity.BudgetRange{Min: lo, Max: hi}
}

// PreferenceUpdate is an explicit user edit of the session's shopping profile.
type PreferenceUpdate struct {
	BudgetMin   *float64
	BudgetMax   *float64
	ClearBudget bool
	// Preferences are merged key by key; a nil value removes the key.
	Preferences map[string]interface{}
}

// ApplyPreferences is the only writer of BudgetRange and Preferences.
func (p *Policy) ApplyPreferences(sc *entity.SessionContext, update PreferenceUpdate) *entity.SessionContext {
	next := sc.Clone()

	switch {
	case update.ClearBudget:
		next.BudgetRange = nil
	case update.BudgetMin != nil || update.BudgetMax != nil:
		next.BudgetRange = NormalizeBudget(update.BudgetMin, update.BudgetMax)
	}

	for k, v := range update.Preferences {
		if v == nil {
			delete(next.Preferences, k)
			continue
		}
		next.Preferences[k] = v
	}

	return next
}
