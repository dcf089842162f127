package ranking

import (
	"testing"
	"time"

	"ai-recommendation-be/internal/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC)

func result(id int64, categories []string, price string, score float64) entity.RankedResult {
	return entity.RankedResult{
		Item: &entity.CatalogItem{
			ProductId:   id,
			Name:        "item",
			Description: "desc",
			Categories:  categories,
			Price:       price,
		},
		Score: score,
	}
}

func scenarioContext() *entity.SessionContext {
	sc := entity.NewSessionContext("s-1", fixedNow)
	sc.InterestedCategories = []string{"Mobility"}
	sc.BudgetRange = &entity.BudgetRange{Min: 1000, Max: 5000}
	sc.ViewedItems = []int64{42}
	return sc
}

func TestRankScenario(t *testing.T) {
	results := []entity.RankedResult{
		result(42, []string{"Mobility"}, "3000", 0.80),
		result(7, []string{"Electronics"}, "6000", 0.85),
	}

	ranked := NewDefaultRanker().Rank(results, scenarioContext())

	require.Len(t, ranked, 2)
	assert.Equal(t, int64(42), ranked[0].Item.ProductId)
	assert.InDelta(t, 0.93, ranked[0].Score, 1e-9)
	assert.Equal(t, int64(7), ranked[1].Item.ProductId)
	assert.InDelta(t, 0.75, ranked[1].Score, 1e-9)

	// inputs stay untouched
	assert.Equal(t, 0.80, results[0].Score)
	assert.Equal(t, int64(42), results[0].Item.ProductId)
}

func TestRankIsDeterministic(t *testing.T) {
	results := []entity.RankedResult{
		result(1, []string{"Mobility"}, "₹1,200", 0.5),
		result(2, []string{"Home"}, "₹900", 0.6),
		result(3, []string{"Mobility", "Home"}, "₹7,000", 0.55),
	}
	ranker := NewDefaultRanker()
	sc := scenarioContext()

	first := ranker.Rank(results, sc)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, ranker.Rank(results, sc))
	}
}

func TestRankBudgetAdjustments(t *testing.T) {
	tests := []struct {
		name  string
		price string
		want  float64
	}{
		{name: "exactly upper bound is in range", price: "5000", want: 0.55},
		{name: "exactly lower bound is in range", price: "1000", want: 0.55},
		{name: "over budget", price: "5000.01", want: 0.40},
		{name: "under budget is neutral", price: "999", want: 0.50},
		{name: "currency and separators", price: "₹4,999.00", want: 0.55},
		{name: "unparseable price is skipped", price: "call for price?", want: 0.50},
		{name: "empty price is skipped", price: "", want: 0.50},
	}

	sc := entity.NewSessionContext("s-1", fixedNow)
	sc.BudgetRange = &entity.BudgetRange{Min: 1000, Max: 5000}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ranked := NewDefaultRanker().Rank([]entity.RankedResult{result(1, nil, tt.price, 0.5)}, sc)
			assert.InDelta(t, tt.want, ranked[0].Score, 1e-9)
		})
	}
}

func TestRankCategoryBoostIsCapped(t *testing.T) {
	sc := entity.NewSessionContext("s-1", fixedNow)
	sc.InterestedCategories = []string{"Mobility", "Outdoor", "Sports"}

	ranked := NewDefaultRanker().Rank([]entity.RankedResult{
		result(1, []string{"Mobility", "Outdoor", "Sports"}, "10", 0.5),
	}, sc)

	assert.InDelta(t, 0.60, ranked[0].Score, 1e-9)
}

func TestRankStableOnTies(t *testing.T) {
	results := []entity.RankedResult{
		result(3, nil, "10", 0.5),
		result(1, nil, "10", 0.5),
		result(2, nil, "10", 0.5),
	}

	ranked := NewDefaultRanker().Rank(results, entity.NewSessionContext("s", fixedNow))

	ids := []int64{ranked[0].Item.ProductId, ranked[1].Item.ProductId, ranked[2].Item.ProductId}
	assert.Equal(t, []int64{3, 1, 2}, ids)
}

func TestRankWithoutContextOnlySorts(t *testing.T) {
	ranked := NewDefaultRanker().Rank([]entity.RankedResult{
		result(1, []string{"Mobility"}, "10", 0.2),
		result(2, nil, "10", 0.9),
	}, nil)

	assert.Equal(t, int64(2), ranked[0].Item.ProductId)
	assert.Equal(t, 0.9, ranked[0].Score)
	assert.Equal(t, 0.2, ranked[1].Score)
}

func TestRankNeverDrops(t *testing.T) {
	results := make([]entity.RankedResult, 0, 30)
	for i := int64(1); i <= 30; i++ {
		results = append(results, result(i, nil, "bad", float64(i)/100))
	}
	assert.Len(t, NewDefaultRanker().Rank(results, scenarioContext()), 30)
	assert.Empty(t, NewDefaultRanker().Rank(nil, scenarioContext()))
}

func TestRankNormalize(t *testing.T) {
	ranker := NewRanker(Options{Weights: DefaultWeights(), Normalize: true})

	ranked := ranker.Rank([]entity.RankedResult{
		result(42, []string{"Mobility"}, "3000", 0.80),
		result(7, []string{"Electronics"}, "6000", 0.85),
		result(9, nil, "x", 0.84),
	}, scenarioContext())

	require.Len(t, ranked, 3)
	assert.Equal(t, int64(42), ranked[0].Item.ProductId)
	assert.InDelta(t, 1.0, ranked[0].Score, 1e-9)
	assert.Equal(t, int64(7), ranked[2].Item.ProductId)
	assert.InDelta(t, 0.0, ranked[2].Score, 1e-9)
	assert.InDelta(t, (0.84-0.75)/(0.93-0.75), ranked[1].Score, 1e-9)
}

func TestRankLeadingDecimalPriceIsInBudget(t *testing.T) {
	sc := entity.NewSessionContext("s-1", fixedNow)
	sc.BudgetRange = &entity.BudgetRange{Min: 0, Max: 50}

	ranked := NewDefaultRanker().Rank([]entity.RankedResult{result(1, nil, "$.99", 0.5)}, sc)

	require.Len(t, ranked, 1)
	assert.InDelta(t, 0.55, ranked[0].Score, 1e-9)
}
