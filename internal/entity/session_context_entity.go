package entity

import (
	"slices"
	"time"
)

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

type ConversationMessage struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

type BudgetRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Contains is inclusive on both bounds.
func (b *BudgetRange) Contains(price float64) bool {
	return price >= b.Min && price <= b.Max
}

// SessionContext is the accumulated personalization state of one conversation.
type SessionContext struct {
	SessionId            string                 `json:"session_id"`
	Preferences          map[string]interface{} `json:"preferences"`
	ConversationHistory  []ConversationMessage  `json:"conversation_history"`
	LastQuery            *string                `json:"last_query,omitempty"`
	ViewedItems          []int64                `json:"viewed_items"`
	InterestedCategories []string               `json:"interested_categories"`
	BudgetRange          *BudgetRange           `json:"budget_range,omitempty"`
	CreatedAt            time.Time              `json:"created_at"`
	UpdatedAt            time.Time              `json:"updated_at"`
}

func NewSessionContext(sessionId string, now time.Time) *SessionContext {
	return &SessionContext{
		SessionId:            sessionId,
		Preferences:          map[string]interface{}{},
		ConversationHistory:  []ConversationMessage{},
		ViewedItems:          []int64{},
		InterestedCategories: []string{},
		CreatedAt:            now,
		UpdatedAt:            now,
	}
}

// Clone returns a deep copy so callers can mutate it without touching the original.
func (s *SessionContext) Clone() *SessionContext {
	if s == nil {
		return nil
	}
	c := *s
	c.Preferences = make(map[string]interface{}, len(s.Preferences))
	for k, v := range s.Preferences {
		c.Preferences[k] = v
	}
	c.ConversationHistory = slices.Clone(s.ConversationHistory)
	c.ViewedItems = slices.Clone(s.ViewedItems)
	c.InterestedCategories = slices.Clone(s.InterestedCategories)
	if s.LastQuery != nil {
		q := *s.LastQuery
		c.LastQuery = &q
	}
	if s.BudgetRange != nil {
		b := *s.BudgetRange
		c.BudgetRange = &b
	}
	if c.ConversationHistory == nil {
		c.ConversationHistory = []ConversationMessage{}
	}
	if c.ViewedItems == nil {
		c.ViewedItems = []int64{}
	}
	if c.InterestedCategories == nil {
		c.InterestedCategories = []string{}
	}
	return &c
}

func (s *SessionContext) HasViewed(productId int64) bool {
	return slices.Contains(s.ViewedItems, productId)
}

// UserMessagesInLast returns the content of the user messages among the last
// n history entries, oldest first.
func (s *SessionContext) UserMessagesInLast(n int) []string {
	history := s.ConversationHistory
	if n < len(history) {
		history = history[len(history)-n:]
	}
	var out []string
	for _, m := range history {
		if m.Role == RoleUser {
			out = append(out, m.Content)
		}
	}
	return out
}
