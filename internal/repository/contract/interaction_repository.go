package contract

import (
	"context"

	"ai-recommendation-be/internal/entity"
	"ai-recommendation-be/internal/repository/specification"
)

type InteractionRepository interface {
	Append(ctx context.Context, interaction *entity.Interaction) error
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}
