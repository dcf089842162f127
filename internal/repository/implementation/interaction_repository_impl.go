package implementation

import (
	"context"

	"ai-recommendation-be/internal/entity"
	"ai-recommendation-be/internal/mapper"
	"ai-recommendation-be/internal/model"
	"ai-recommendation-be/internal/repository/contract"
	"ai-recommendation-be/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type InteractionRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.InteractionMapper
}

func NewInteractionRepository(db *gorm.DB) contract.InteractionRepository {
	return &InteractionRepositoryImpl{
		db:     db,
		mapper: mapper.NewInteractionMapper(),
	}
}

func (r *InteractionRepositoryImpl) Append(ctx context.Context, interaction *entity.Interaction) error {
	if interaction.Id == uuid.Nil {
		interaction.Id = uuid.New()
	}
	return r.db.WithContext(ctx).Create(r.mapper.ToModel(interaction)).Error
}

func (r *InteractionRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.db.WithContext(ctx)
	for _, spec := range specs {
		query = spec.Apply(query)
	}
	err := query.Model(&model.Interaction{}).Count(&count).Error
	return count, err
}
