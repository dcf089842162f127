package response

import (
	"ai-recommendation-be/internal/entity"
)

const (
	contextProducts    = 3
	contextHistory     = 3
	descriptionPreview = 200
)

type ContextProduct struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Categories  []string `json:"categories"`
	Price       string   `json:"price"`
	Rating      float64  `json:"rating"`
	Similarity  float64  `json:"similarity"`
}

// ContextData is the document handed to the reply generator alongside the query.
type ContextData struct {
	UserQuery            string                       `json:"user_query"`
	ProductsFound        int                          `json:"products_found"`
	TopProducts          []ContextProduct             `json:"top_products"`
	ConversationHistory  []entity.ConversationMessage `json:"conversation_history,omitempty"`
	UserPreferences      map[string]interface{}       `json:"user_preferences,omitempty"`
	InterestedCategories []string                     `json:"interested_categories,omitempty"`
	BudgetRange          *entity.BudgetRange          `json:"budget_range,omitempty"`
}

func BuildContextData(req Request) ContextData {
	data := ContextData{
		UserQuery:     req.Query,
		ProductsFound: len(req.Results),
		TopProducts:   make([]ContextProduct, 0, contextProducts),
	}

	for _, r := range req.Results {
		if len(data.TopProducts) == contextProducts {
			break
		}
		if r.Item == nil {
			continue
		}
		data.TopProducts = append(data.TopProducts, ContextProduct{
			Name:        r.Item.Name,
			Description: truncate(r.Item.Description, descriptionPreview),
			Categories:  r.Item.Categories,
			Price:       r.Item.Price,
			Rating:      r.Item.Rating,
			Similarity:  r.Score,
		})
	}

	if s := req.Session; s != nil {
		history := s.ConversationHistory
		if len(history) > contextHistory {
			history = history[len(history)-contextHistory:]
		}
		data.ConversationHistory = history
		data.UserPreferences = s.Preferences
		data.InterestedCategories = s.InterestedCategories
		data.BudgetRange = s.BudgetRange
	}

	return data
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
