package memory

import (
	"context"
	"time"

	"ai-recommendation-be/internal/entity"
	"ai-recommendation-be/internal/repository/contract"

	"github.com/patrickmn/go-cache"
)

// SessionContextRepository keeps contexts in process memory. Contents are lost
// on restart and not shared between replicas.
type SessionContextRepository struct {
	cache *cache.Cache
}

var _ contract.SessionContextRepository = (*SessionContextRepository)(nil)

// NewSessionContextRepository expires idle contexts after ttl; a zero ttl keeps them forever.
func NewSessionContextRepository(ttl time.Duration) *SessionContextRepository {
	expiration := cache.NoExpiration
	if ttl > 0 {
		expiration = ttl
	}
	return &SessionContextRepository{
		cache: cache.New(expiration, 10*time.Minute),
	}
}

func (r *SessionContextRepository) Get(ctx context.Context, sessionId string) (*entity.SessionContext, error) {
	if x, found := r.cache.Get(sessionId); found {
		return x.(*entity.SessionContext).Clone(), nil
	}
	return nil, nil
}

func (r *SessionContextRepository) Upsert(ctx context.Context, sc *entity.SessionContext) error {
	r.cache.Set(sc.SessionId, sc.Clone(), cache.DefaultExpiration)
	return nil
}
