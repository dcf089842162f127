package events

import "time"

const (
	TypeInteractionRecorded = "interaction.recorded"
	TypeCatalogItemChanged  = "catalog.item_changed"
	TypeCatalogItemDeleted  = "catalog.item_deleted"
)

// NewInteractionRecorded announces a logged search or product view.
func NewInteractionRecorded(sessionId, interactionType string, payload map[string]interface{}, at time.Time) BaseEvent {
	return BaseEvent{
		Type: TypeInteractionRecorded,
		Data: map[string]interface{}{
			"session_id":       sessionId,
			"interaction_type": interactionType,
			"data":             payload,
			"timestamp":        at.UTC().Format(time.RFC3339Nano),
		},
		OccurredAt: at,
	}
}

// ProductIDFromPayload reads product_id from a catalog event. JSON numbers
// arrive as float64.
func ProductIDFromPayload(data map[string]interface{}) (int64, bool) {
	switch v := data["product_id"].(type) {
	case float64:
		return int64(v), v > 0
	case int64:
		return v, v > 0
	case int:
		return int64(v), v > 0
	default:
		return 0, false
	}
}
