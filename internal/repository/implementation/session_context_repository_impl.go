package implementation

import (
	"context"
	"errors"

	"ai-recommendation-be/internal/entity"
	"ai-recommendation-be/internal/mapper"
	"ai-recommendation-be/internal/model"
	"ai-recommendation-be/internal/repository/contract"

	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type SessionContextRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.SessionContextMapper
}

func NewSessionContextRepository(db *gorm.DB) *SessionContextRepositoryImpl {
	return &SessionContextRepositoryImpl{
		db:     db,
		mapper: mapper.NewSessionContextMapper(),
	}
}

var (
	_ contract.SessionContextRepository   = (*SessionContextRepositoryImpl)(nil)
	_ contract.PreferenceVectorRepository = (*SessionContextRepositoryImpl)(nil)
)

func (r *SessionContextRepositoryImpl) Get(ctx context.Context, sessionId string) (*entity.SessionContext, error) {
	var m model.SessionContext
	if err := r.db.WithContext(ctx).Where("session_id = ?", sessionId).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m)
}

// Upsert writes the document in one statement. The preference vector is
// maintained separately and survives the overwrite.
func (r *SessionContextRepositoryImpl) Upsert(ctx context.Context, sc *entity.SessionContext) error {
	m := r.mapper.ToModel(sc)
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "session_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"preferences",
			"conversation_history",
			"last_query",
			"viewed_items",
			"interested_categories",
			"budget_min",
			"budget_max",
			"updated_at",
		}),
	}).Create(m).Error
}

func (r *SessionContextRepositoryImpl) UpdatePreferenceEmbedding(ctx context.Context, sessionId string, vec []float32) error {
	return r.db.WithContext(ctx).
		Model(&model.SessionContext{}).
		Where("session_id = ?", sessionId).
		UpdateColumn("preference_embedding", pgvector.NewVector(vec)).Error
}
