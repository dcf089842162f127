package contract

import (
	"context"

	"ai-recommendation-be/internal/entity"
	"ai-recommendation-be/internal/repository/specification"
)

// ScoredCatalogItem wraps a CatalogItem with its cosine similarity to the query.
type ScoredCatalogItem struct {
	Item       *entity.CatalogItem
	Similarity float64
}

type CatalogItemRepository interface {
	// Upsert inserts or replaces the item keyed by product id.
	Upsert(ctx context.Context, item *entity.CatalogItem) error
	UpsertBulk(ctx context.Context, items []*entity.CatalogItem) error
	Delete(ctx context.Context, productId int64) (bool, error)
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.CatalogItem, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.CatalogItem, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
	// NearestNeighbors returns up to k items ordered by cosine similarity to vec.
	NearestNeighbors(ctx context.Context, vec []float32, k int, specs ...specification.Specification) ([]*ScoredCatalogItem, error)
}
