package mapper

import (
	"ai-recommendation-be/internal/entity"
	"ai-recommendation-be/internal/model"

	"gorm.io/datatypes"
)

type InteractionMapper struct{}

func NewInteractionMapper() *InteractionMapper {
	return &InteractionMapper{}
}

func (m *InteractionMapper) ToEntity(i *model.Interaction) *entity.Interaction {
	if i == nil {
		return nil
	}
	return &entity.Interaction{
		Id:        i.Id,
		SessionId: i.SessionId,
		Type:      i.Type,
		Payload:   map[string]interface{}(i.Payload),
		Timestamp: i.Timestamp,
	}
}

func (m *InteractionMapper) ToModel(e *entity.Interaction) *model.Interaction {
	if e == nil {
		return nil
	}
	return &model.Interaction{
		Id:        e.Id,
		SessionId: e.SessionId,
		Type:      e.Type,
		Payload:   datatypes.JSONMap(e.Payload),
		Timestamp: e.Timestamp,
	}
}
