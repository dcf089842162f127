package implementation

import (
	"context"
	"errors"

	"ai-recommendation-be/internal/entity"
	"ai-recommendation-be/internal/mapper"
	"ai-recommendation-be/internal/model"
	"ai-recommendation-be/internal/repository/contract"
	"ai-recommendation-be/internal/repository/specification"

	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CatalogItemRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.CatalogItemMapper
}

func NewCatalogItemRepository(db *gorm.DB) contract.CatalogItemRepository {
	return &CatalogItemRepositoryImpl{
		db:     db,
		mapper: mapper.NewCatalogItemMapper(),
	}
}

func (r *CatalogItemRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

// catalogContentColumns are rewritten on every upsert. The embedding columns
// are only rewritten when the incoming row carries a vector, so a failed
// embedding never erases the vector already stored for the product.
var catalogContentColumns = []string{
	"name", "description", "short_description", "categories", "tags",
	"price", "price_value", "regular_price", "sale_price", "stock_status",
	"rating", "review_count", "image_url", "permalink", "status", "updated_at",
}

func upsertClause(withEmbedding bool) clause.OnConflict {
	columns := catalogContentColumns
	if withEmbedding {
		columns = append(append([]string{}, columns...), "embedding_text", "embedding_value")
	}
	return clause.OnConflict{
		Columns:   []clause.Column{{Name: "product_id"}},
		DoUpdates: clause.AssignmentColumns(columns),
	}
}

func (r *CatalogItemRepositoryImpl) Upsert(ctx context.Context, item *entity.CatalogItem) error {
	m := r.mapper.ToModel(item)
	if err := r.db.WithContext(ctx).Clauses(upsertClause(m.EmbeddingValue != nil)).Create(m).Error; err != nil {
		return err
	}
	*item = *r.mapper.ToEntity(m)
	return nil
}

func (r *CatalogItemRepositoryImpl) UpsertBulk(ctx context.Context, items []*entity.CatalogItem) error {
	if len(items) == 0 {
		return nil
	}
	var embedded, unembedded []*model.CatalogItem
	for _, e := range items {
		m := r.mapper.ToModel(e)
		if m.EmbeddingValue != nil {
			embedded = append(embedded, m)
		} else {
			unembedded = append(unembedded, m)
		}
	}

	db := r.db.WithContext(ctx)
	if len(embedded) > 0 {
		if err := db.Clauses(upsertClause(true)).CreateInBatches(embedded, 100).Error; err != nil {
			return err
		}
	}
	if len(unembedded) > 0 {
		return db.Clauses(upsertClause(false)).CreateInBatches(unembedded, 100).Error
	}
	return nil
}

func (r *CatalogItemRepositoryImpl) Delete(ctx context.Context, productId int64) (bool, error) {
	res := r.db.WithContext(ctx).Where("product_id = ?", productId).Delete(&model.CatalogItem{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *CatalogItemRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.CatalogItem, error) {
	var m model.CatalogItem
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *CatalogItemRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.CatalogItem, error) {
	var models []*model.CatalogItem
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(models), nil
}

func (r *CatalogItemRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	err := query.Model(&model.CatalogItem{}).Count(&count).Error
	return count, err
}

// NearestNeighbors ranks by pgvector cosine distance; similarity = 1 - distance.
func (r *CatalogItemRepositoryImpl) NearestNeighbors(ctx context.Context, vec []float32, k int, specs ...specification.Specification) ([]*contract.ScoredCatalogItem, error) {
	if k <= 0 {
		k = 10
	}

	type result struct {
		model.CatalogItem
		Similarity float64
	}
	var results []result

	queryVector := pgvector.NewVector(vec)

	query := r.db.WithContext(ctx).
		Table("catalog_items").
		Select("catalog_items.*, 1 - (embedding_value <=> ?) as similarity", queryVector).
		Where("embedding_value IS NOT NULL")
	query = r.applySpecifications(query, specs...)

	err := query.
		Order(gorm.Expr("embedding_value <=> ?", queryVector)).
		Limit(k).
		Scan(&results).Error
	if err != nil {
		return nil, err
	}

	scored := make([]*contract.ScoredCatalogItem, len(results))
	for i := range results {
		scored[i] = &contract.ScoredCatalogItem{
			Item:       r.mapper.ToEntity(&results[i].CatalogItem),
			Similarity: results[i].Similarity,
		}
	}
	return scored, nil
}
