package mapper

import (
	"time"

	"ai-recommendation-be/internal/entity"
	"ai-recommendation-be/internal/model"
	"ai-recommendation-be/pkg/price"

	"github.com/pgvector/pgvector-go"
)

type CatalogItemMapper struct{}

func NewCatalogItemMapper() *CatalogItemMapper {
	return &CatalogItemMapper{}
}

func (m *CatalogItemMapper) ToEntity(c *model.CatalogItem) *entity.CatalogItem {
	if c == nil {
		return nil
	}

	var updatedAt *time.Time
	if !c.UpdatedAt.IsZero() {
		t := c.UpdatedAt
		updatedAt = &t
	}

	var embeddingValue []float32
	if c.EmbeddingValue != nil {
		embeddingValue = c.EmbeddingValue.Slice()
	}

	return &entity.CatalogItem{
		ProductId:        c.ProductId,
		Name:             c.Name,
		Description:      c.Description,
		ShortDescription: c.ShortDescription,
		Categories:       nonNil(c.Categories),
		Tags:             nonNil(c.Tags),
		Price:            c.Price,
		RegularPrice:     c.RegularPrice,
		SalePrice:        c.SalePrice,
		StockStatus:      c.StockStatus,
		Rating:           c.Rating,
		ReviewCount:      c.ReviewCount,
		ImageUrl:         c.ImageUrl,
		Permalink:        c.Permalink,
		Status:           c.Status,
		EmbeddingText:    c.EmbeddingText,
		EmbeddingValue:   embeddingValue,
		CreatedAt:        c.CreatedAt,
		UpdatedAt:        updatedAt,
	}
}

func (m *CatalogItemMapper) ToModel(e *entity.CatalogItem) *model.CatalogItem {
	if e == nil {
		return nil
	}

	var updatedAt time.Time
	if e.UpdatedAt != nil {
		updatedAt = *e.UpdatedAt
	}

	var embeddingValue *pgvector.Vector
	if len(e.EmbeddingValue) > 0 {
		v := pgvector.NewVector(e.EmbeddingValue)
		embeddingValue = &v
	}

	return &model.CatalogItem{
		ProductId:        e.ProductId,
		Name:             e.Name,
		Description:      e.Description,
		ShortDescription: e.ShortDescription,
		Categories:       nonNil(e.Categories),
		Tags:             nonNil(e.Tags),
		Price:            e.Price,
		PriceValue:       price.Ptr(e.Price),
		RegularPrice:     e.RegularPrice,
		SalePrice:        e.SalePrice,
		StockStatus:      e.StockStatus,
		Rating:           e.Rating,
		ReviewCount:      e.ReviewCount,
		ImageUrl:         e.ImageUrl,
		Permalink:        e.Permalink,
		Status:           e.Status,
		EmbeddingText:    e.EmbeddingText,
		EmbeddingValue:   embeddingValue,
		CreatedAt:        e.CreatedAt,
		UpdatedAt:        updatedAt,
	}
}

func (m *CatalogItemMapper) ToEntities(items []*model.CatalogItem) []*entity.CatalogItem {
	entities := make([]*entity.CatalogItem, len(items))
	for i, c := range items {
		entities[i] = m.ToEntity(c)
	}
	return entities
}

func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
