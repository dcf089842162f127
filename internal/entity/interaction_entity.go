package entity

import (
	"time"

	"github.com/google/uuid"
)

const (
	InteractionTypeSearch      = "search"
	InteractionTypeProductView = "product_view"
)

// Interaction is an append-only analytics record. The engine never reads it back.
type Interaction struct {
	Id        uuid.UUID
	SessionId string
	Type      string
	Payload   map[string]interface{}
	Timestamp time.Time
}
