package distributed

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"ai-recommendation-be/internal/entity"
	"ai-recommendation-be/internal/repository/contract"

	"github.com/redis/go-redis/v9"
)

const sessionKeyPrefix = "session_context:"

// SessionContextRepository stores each context as one JSON document so a
// write is never partially applied.
type SessionContextRepository struct {
	client *redis.Client
	ttl    time.Duration
}

var _ contract.SessionContextRepository = (*SessionContextRepository)(nil)

func NewSessionContextRepository(client *redis.Client, ttl time.Duration) *SessionContextRepository {
	return &SessionContextRepository{client: client, ttl: ttl}
}

func sessionKey(sessionId string) string {
	return sessionKeyPrefix + sessionId
}

func (r *SessionContextRepository) Get(ctx context.Context, sessionId string) (*entity.SessionContext, error) {
	raw, err := r.client.Get(ctx, sessionKey(sessionId)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("redis get session context: %w", err)
	}

	var sc entity.SessionContext
	if err := json.Unmarshal(raw, &sc); err != nil {
		return nil, fmt.Errorf("decode session context %s: %w", sessionId, err)
	}
	// restore the invariants that JSON null would break
	return sc.Clone(), nil
}

// Upsert replaces the document. A positive ttl is refreshed on every write.
func (r *SessionContextRepository) Upsert(ctx context.Context, sc *entity.SessionContext) error {
	raw, err := json.Marshal(sc)
	if err != nil {
		return fmt.Errorf("encode session context: %w", err)
	}
	if err := r.client.Set(ctx, sessionKey(sc.SessionId), raw, r.ttl).Err(); err != nil {
		return fmt.Errorf("redis set session context: %w", err)
	}
	return nil
}
