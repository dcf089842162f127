package ranking

import (
	"slices"
	"sort"

	"ai-recommendation-be/internal/entity"
	"ai-recommendation-be/pkg/price"
)

// Weights are the additive adjustments applied on top of raw similarity.
type Weights struct {
	CategoryBoost float64
	BudgetFit     float64
	OverBudget    float64
	ViewedPenalty float64
}

func DefaultWeights() Weights {
	return Weights{
		CategoryBoost: 0.10,
		BudgetFit:     0.05,
		OverBudget:    -0.10,
		ViewedPenalty: -0.02,
	}
}

type Options struct {
	Weights Weights
	// Normalize min-max rescales the final scores into [0,1]. Order is unchanged.
	Normalize bool
}

// Ranker re-scores retrieval results with session signals. It is pure: same
// inputs always produce the same output, and inputs are never mutated.
type Ranker struct {
	opts Options
}

func NewRanker(opts Options) *Ranker {
	return &Ranker{opts: opts}
}

func NewDefaultRanker() *Ranker {
	return NewRanker(Options{Weights: DefaultWeights()})
}

// Rank applies category affinity, budget fit and novelty adjustments, then
// stable-sorts by score descending. Results are never dropped or truncated.
func (r *Ranker) Rank(results []entity.RankedResult, sc *entity.SessionContext) []entity.RankedResult {
	ranked := make([]entity.RankedResult, len(results))
	copy(ranked, results)

	if sc != nil {
		for i := range ranked {
			ranked[i].Score += r.adjustment(ranked[i].Item, sc)
		}
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})

	if r.opts.Normalize {
		normalize(ranked)
	}
	return ranked
}

func (r *Ranker) adjustment(item *entity.CatalogItem, sc *entity.SessionContext) float64 {
	if item == nil {
		return 0
	}
	w := r.opts.Weights
	var delta float64

	if len(sc.InterestedCategories) > 0 {
		for _, category := range item.Categories {
			if slices.Contains(sc.InterestedCategories, category) {
				delta += w.CategoryBoost
				break
			}
		}
	}

	if sc.BudgetRange != nil {
		if amount, ok := price.Parse(item.Price); ok {
			switch {
			case sc.BudgetRange.Contains(amount):
				delta += w.BudgetFit
			case amount > sc.BudgetRange.Max:
				delta += w.OverBudget
			}
		}
	}

	if sc.HasViewed(item.ProductId) {
		delta += w.ViewedPenalty
	}
	return delta
}

func normalize(ranked []entity.RankedResult) {
	if len(ranked) == 0 {
		return
	}
	// sorted descending, so the extremes sit at the ends
	hi, lo := ranked[0].Score, ranked[len(ranked)-1].Score
	span := hi - lo
	for i := range ranked {
		if span == 0 {
			ranked[i].Score = 1
			continue
		}
		ranked[i].Score = (ranked[i].Score - lo) / span
	}
}
