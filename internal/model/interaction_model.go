package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type Interaction struct {
	Id        uuid.UUID         `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	SessionId string            `gorm:"type:varchar(64);not null;index:idx_interactions_session_time,priority:1"`
	Type      string            `gorm:"type:varchar(32);not null;index"`
	Payload   datatypes.JSONMap `gorm:"type:jsonb"`
	Timestamp time.Time         `gorm:"not null;index:idx_interactions_session_time,priority:2"`
}

func (Interaction) TableName() string {
	return "user_interactions"
}
