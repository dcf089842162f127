package model

import (
	"time"

	"github.com/pgvector/pgvector-go"
	"gorm.io/datatypes"
)

type SessionContext struct {
	SessionId            string                      `gorm:"type:varchar(64);primaryKey"`
	Preferences          datatypes.JSONMap           `gorm:"type:jsonb"`
	ConversationHistory  datatypes.JSON              `gorm:"type:jsonb"`
	LastQuery            *string                     `gorm:"type:text"`
	ViewedItems          datatypes.JSONSlice[int64]  `gorm:"type:jsonb"`
	InterestedCategories datatypes.JSONSlice[string] `gorm:"type:jsonb"`
	BudgetMin            *float64
	BudgetMax            *float64
	PreferenceEmbedding  *pgvector.Vector `gorm:"type:vector(1536)"`
	CreatedAt            time.Time
	UpdatedAt            time.Time `gorm:"index"`
}

func (SessionContext) TableName() string {
	return "session_contexts"
}
