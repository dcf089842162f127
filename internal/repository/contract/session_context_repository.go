package contract

import (
	"context"

	"ai-recommendation-be/internal/entity"
)

type SessionContextRepository interface {
	// Get returns nil, nil when no context exists for the id.
	Get(ctx context.Context, sessionId string) (*entity.SessionContext, error)
	// Upsert writes the whole document, replacing any previous version.
	Upsert(ctx context.Context, sc *entity.SessionContext) error
}

// PreferenceVectorRepository stores a vector summarising a session's recent asks.
type PreferenceVectorRepository interface {
	UpdatePreferenceEmbedding(ctx context.Context, sessionId string, vec []float32) error
}
