package session

import (
	"context"
	"fmt"
	"time"

	"ai-recommendation-be/internal/entity"
	"ai-recommendation-be/internal/repository/contract"
)

// Manager loads and saves session contexts through whichever backend the
// process was configured with.
type Manager struct {
	store contract.SessionContextRepository
	now   func() time.Time
}

// NewManager creates a new session manager
func NewManager(store contract.SessionContextRepository) *Manager {
	return &Manager{store: store, now: time.Now}
}

// WithClock overrides the time source.
func (m *Manager) WithClock(now func() time.Time) *Manager {
	m.now = now
	return m
}

// Load returns nil, nil for an unknown session.
func (m *Manager) Load(ctx context.Context, sessionId string) (*entity.SessionContext, error) {
	sc, err := m.store.Get(ctx, sessionId)
	if err != nil {
		return nil, fmt.Errorf("load session context %s: %w", sessionId, err)
	}
	return sc, nil
}

// LoadOrNew returns the stored context or a fresh empty one. The bool reports
// whether the context already existed.
func (m *Manager) LoadOrNew(ctx context.Context, sessionId string) (*entity.SessionContext, bool, error) {
	sc, err := m.Load(ctx, sessionId)
	if err != nil {
		return nil, false, err
	}
	if sc == nil {
		return entity.NewSessionContext(sessionId, m.now()), false, nil
	}
	return sc, true, nil
}

// Save stamps UpdatedAt and upserts the whole context.
func (m *Manager) Save(ctx context.Context, sc *entity.SessionContext) error {
	now := m.now()
	if sc.CreatedAt.IsZero() {
		sc.CreatedAt = now
	}
	sc.UpdatedAt = now
	if err := m.store.Upsert(ctx, sc); err != nil {
		return fmt.Errorf("save session context %s: %w", sc.SessionId, err)
	}
	return nil
}

func (m *Manager) Now() time.Time {
	return m.now()
}
