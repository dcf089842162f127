package mapper

import (
	"encoding/json"
	"fmt"

	"ai-recommendation-be/internal/entity"
	"ai-recommendation-be/internal/model"

	"gorm.io/datatypes"
)

type SessionContextMapper struct{}

func NewSessionContextMapper() *SessionContextMapper {
	return &SessionContextMapper{}
}

// ToEntity fails on an unreadable history column so the row is treated as a
// load failure and never silently replaced by an empty conversation.
func (m *SessionContextMapper) ToEntity(s *model.SessionContext) (*entity.SessionContext, error) {
	if s == nil {
		return nil, nil
	}

	history := []entity.ConversationMessage{}
	if len(s.ConversationHistory) > 0 {
		if err := json.Unmarshal(s.ConversationHistory, &history); err != nil {
			return nil, fmt.Errorf("session %s: decode conversation history: %w", s.SessionId, err)
		}
	}

	var budget *entity.BudgetRange
	if s.BudgetMin != nil && s.BudgetMax != nil {
		budget = &entity.BudgetRange{Min: *s.BudgetMin, Max: *s.BudgetMax}
	}

	preferences := map[string]interface{}{}
	for k, v := range s.Preferences {
		preferences[k] = v
	}

	return &entity.SessionContext{
		SessionId:            s.SessionId,
		Preferences:          preferences,
		ConversationHistory:  history,
		LastQuery:            s.LastQuery,
		ViewedItems:          nonNil([]int64(s.ViewedItems)),
		InterestedCategories: nonNil([]string(s.InterestedCategories)),
		BudgetRange:          budget,
		CreatedAt:            s.CreatedAt,
		UpdatedAt:            s.UpdatedAt,
	}, nil
}

func (m *SessionContextMapper) ToModel(e *entity.SessionContext) *model.SessionContext {
	if e == nil {
		return nil
	}

	history, err := json.Marshal(nonNil(e.ConversationHistory))
	if err != nil {
		history = []byte("[]")
	}

	var budgetMin, budgetMax *float64
	if e.BudgetRange != nil {
		lo, hi := e.BudgetRange.Min, e.BudgetRange.Max
		budgetMin, budgetMax = &lo, &hi
	}

	preferences := datatypes.JSONMap{}
	for k, v := range e.Preferences {
		preferences[k] = v
	}

	return &model.SessionContext{
		SessionId:            e.SessionId,
		Preferences:          preferences,
		ConversationHistory:  datatypes.JSON(history),
		LastQuery:            e.LastQuery,
		ViewedItems:          datatypes.JSONSlice[int64](nonNil(e.ViewedItems)),
		InterestedCategories: datatypes.JSONSlice[string](nonNil(e.InterestedCategories)),
		BudgetMin:            budgetMin,
		BudgetMax:            budgetMax,
		CreatedAt:            e.CreatedAt,
		UpdatedAt:            e.UpdatedAt,
	}
}
