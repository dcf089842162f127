package dto

import (
	"time"

	"ai-recommendation-be/internal/entity"
)

type IntelligentSearchRequest struct {
	Query     string                 `json:"query" validate:"required,max=500"`
	SessionId *string                `json:"session_id" validate:"omitempty,max=128"`
	Limit     int                    `json:"limit"`
	Filters   map[string]interface{} `json:"filters"`
}

// ProductDto is the public view of a catalog item; it never carries the vector.
type ProductDto struct {
	Id          int64    `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Categories  []string `json:"categories"`
	Tags        []string `json:"tags"`
	Price       string   `json:"price"`
	Image       *string  `json:"image"`
	Permalink   *string  `json:"permalink"`
	Similarity  float64  `json:"similarity"`
	InStock     bool     `json:"inStock"`
	Rating      float64  `json:"rating"`
}

type RecommendationResponse struct {
	Products             []ProductDto `json:"products"`
	ConversationResponse string       `json:"conversation_response"`
	Suggestions          []string     `json:"suggestions"`
	SessionId            string       `json:"session_id"`
	ContextUpdated       bool         `json:"context_updated"`
}

type ProductRecommendationsResponse struct {
	Recommendations []ProductDto `json:"recommendations"`
}

type TrendingResponse struct {
	Products []ProductDto `json:"products"`
}

type RecordViewRequest struct {
	ProductId int64 `json:"product_id" validate:"required,gt=0"`
}

type RecordViewResponse struct {
	SessionId      string `json:"session_id"`
	ProductId      int64  `json:"product_id"`
	ContextUpdated bool   `json:"context_updated"`
}

type UpdatePreferencesRequest struct {
	SessionId   string
	BudgetMin   *float64               `json:"budget_min"`
	BudgetMax   *float64               `json:"budget_max"`
	ClearBudget bool                   `json:"clear_budget"`
	Preferences map[string]interface{} `json:"preferences"`
}

type SessionContextResponse struct {
	SessionId            string                       `json:"session_id"`
	Preferences          map[string]interface{}       `json:"preferences"`
	ConversationHistory  []entity.ConversationMessage `json:"conversation_history"`
	LastQuery            *string                      `json:"last_query"`
	ViewedItems          []int64                      `json:"viewed_items"`
	InterestedCategories []string                     `json:"interested_categories"`
	BudgetRange          *entity.BudgetRange          `json:"budget_range"`
	CreatedAt            time.Time                    `json:"created_at"`
	UpdatedAt            time.Time                    `json:"updated_at"`
}

type HealthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
}

func NewProductDto(r entity.RankedResult) ProductDto {
	item := r.Item
	return ProductDto{
		Id:          item.ProductId,
		Name:        item.Name,
		Description: item.Description,
		Categories:  nonNilStrings(item.Categories),
		Tags:        nonNilStrings(item.Tags),
		Price:       item.Price,
		Image:       item.ImageUrl,
		Permalink:   item.Permalink,
		Similarity:  r.Score,
		InStock:     item.StockStatus == entity.StockStatusInStock,
		Rating:      item.Rating,
	}
}

func NewProductDtos(results []entity.RankedResult) []ProductDto {
	out := make([]ProductDto, 0, len(results))
	for _, r := range results {
		if r.Item == nil {
			continue
		}
		out = append(out, NewProductDto(r))
	}
	return out
}

func NewSessionContextResponse(sc *entity.SessionContext) *SessionContextResponse {
	return &SessionContextResponse{
		SessionId:            sc.SessionId,
		Preferences:          sc.Preferences,
		ConversationHistory:  sc.ConversationHistory,
		LastQuery:            sc.LastQuery,
		ViewedItems:          sc.ViewedItems,
		InterestedCategories: sc.InterestedCategories,
		BudgetRange:          sc.BudgetRange,
		CreatedAt:            sc.CreatedAt,
		UpdatedAt:            sc.UpdatedAt,
	}
}

func nonNilStrings(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
