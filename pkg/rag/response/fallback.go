package response

import (
	"fmt"
	"hash/fnv"
	"strings"

	"ai-recommendation-be/internal/entity"
)

const maxSuggestions = 3

var replyTemplates = []func(count int, query string, top *entity.CatalogItem) string{
	func(count int, query string, top *entity.CatalogItem) string {
		return fmt.Sprintf("I found %d great options for '%s'! The top match is %s with a %.1f/5 rating.", count, query, top.Name, top.Rating)
	},
	func(count int, query string, top *entity.CatalogItem) string {
		return fmt.Sprintf("Perfect! I discovered %d products that match '%s'. %s looks particularly suitable.", count, query, top.Name)
	},
	func(count int, query string, top *entity.CatalogItem) string {
		return fmt.Sprintf("Great search! Here are %d products for '%s'. %s is highly recommended.", count, query, top.Name)
	},
}

var noResultSuggestions = []string{
	"Try more general terms",
	"Browse by category",
	"Tell me about your specific needs",
}

// Fallback builds a reply from the results and session alone. The template
// is picked by hashing the query so the same request reads the same way.
func Fallback(req Request) Reply {
	if len(req.Results) == 0 {
		return Reply{
			Text: fmt.Sprintf("I couldn't find any products matching '%s'. "+
				"Could you try different keywords or let me know more about what you're looking for?", req.Query),
			Suggestions: append([]string(nil), noResultSuggestions...),
			Source:      SourceFallback,
		}
	}

	pick := replyTemplates[templateIndex(req.Query)]
	return Reply{
		Text:        pick(len(req.Results), req.Query, req.Results[0].Item),
		Suggestions: Suggestions(req.Results, req.Session),
		Source:      SourceFallback,
	}
}

// Suggestions derives follow-up prompts from categories, budget and stock.
func Suggestions(results []entity.RankedResult, session *entity.SessionContext) []string {
	suggestions := make([]string, 0, maxSuggestions)

	if categories := topCategories(results, 3); len(categories) > 0 {
		if len(categories) > 2 {
			categories = categories[:2]
		}
		suggestions = append(suggestions, "Also explore: "+strings.Join(categories, ", "))
	}

	if session != nil && session.BudgetRange != nil {
		suggestions = append(suggestions, "Show products in my budget")
	} else {
		suggestions = append(suggestions, "Set a budget range")
	}

	inStock := 0
	for _, r := range results {
		if r.Item != nil && r.Item.StockStatus == entity.StockStatusInStock {
			inStock++
		}
	}
	if inStock < len(results) {
		suggestions = append(suggestions, fmt.Sprintf("%d items available now", inStock))
	}

	if len(suggestions) > maxSuggestions {
		suggestions = suggestions[:maxSuggestions]
	}
	return suggestions
}

// topCategories returns the distinct categories of the first n results in
// first-seen order.
func topCategories(results []entity.RankedResult, n int) []string {
	seen := map[string]struct{}{}
	var out []string
	for i, r := range results {
		if i >= n {
			break
		}
		if r.Item == nil {
			continue
		}
		for _, c := range r.Item.Categories {
			if _, ok := seen[c]; ok {
				continue
			}
			seen[c] = struct{}{}
			out = append(out, c)
		}
	}
	return out
}

func templateIndex(query string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(query))
	return int(h.Sum32() % uint32(len(replyTemplates)))
}
