package fusion

import (
	"slices"
	"time"

	"ai-recommendation-be/internal/entity"
)

// Limits bound the collections a session context may accumulate.
// Oldest entries are evicted first.
type Limits struct {
	MaxHistory    int
	MaxViewed     int
	MaxCategories int
}

func DefaultLimits() Limits {
	return Limits{
		MaxHistory:    20,
		MaxViewed:     50,
		MaxCategories: 10,
	}
}

// Policy folds a completed turn into a session context. Every method works on
// a deep copy and returns it, so a failed persist leaves the stored state intact.
type Policy struct {
	limits Limits
}

func NewPolicy(limits Limits) *Policy {
	defaults := DefaultLimits()
	if limits.MaxHistory < 1 {
		limits.MaxHistory = defaults.MaxHistory
	}
	if limits.MaxViewed < 1 {
		limits.MaxViewed = defaults.MaxViewed
	}
	if limits.MaxCategories < 1 {
		limits.MaxCategories = defaults.MaxCategories
	}
	return &Policy{limits: limits}
}

// Fuse records the query and the reply, sets the last query, and learns the
// categories of every ranked candidate. Viewed items are left alone.
func (p *Policy) Fuse(sc *entity.SessionContext, query string, results []entity.RankedResult, responseText string, now time.Time) *entity.SessionContext {
	next := sc.Clone()

	next.ConversationHistory = append(next.ConversationHistory,
		entity.ConversationMessage{Role: entity.RoleUser, Content: query, Timestamp: now},
		entity.ConversationMessage{Role: entity.RoleAssistant, Content: responseText, Timestamp: now},
	)
	next.ConversationHistory = keepLast(next.ConversationHistory, p.limits.MaxHistory)

	q := query
	next.LastQuery = &q

	for _, category := range CandidateCategories(results) {
		if !slices.Contains(next.InterestedCategories, category) {
			next.InterestedCategories = append(next.InterestedCategories, category)
		}
	}
	next.InterestedCategories = keepLast(next.InterestedCategories, p.limits.MaxCategories)

	return next
}

// RecordView appends the item when absent. A repeat view does not refresh its position.
func (p *Policy) RecordView(sc *entity.SessionContext, productId int64) *entity.SessionContext {
	next := sc.Clone()
	if !next.HasViewed(productId) {
		next.ViewedItems = append(next.ViewedItems, productId)
	}
	next.ViewedItems = keepLast(next.ViewedItems, p.limits.MaxViewed)
	return next
}

// CandidateCategories lists distinct categories across results in first-seen order.
func CandidateCategories(results []entity.RankedResult) []string {
	var out []string
	for _, r := range results {
		if r.Item == nil {
			continue
		}
		for _, c := range r.Item.Categories {
			if c != "" && !slices.Contains(out, c) {
				out = append(out, c)
			}
		}
	}
	return out
}

func keepLast[T any](items []T, n int) []T {
	if len(items) <= n {
		return items
	}
	return slices.Clone(items[len(items)-n:])
}
