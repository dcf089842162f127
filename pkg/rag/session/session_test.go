package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"ai-recommendation-be/internal/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mapStore struct {
	mu      sync.Mutex
	docs    map[string]*entity.SessionContext
	failPut error
}

func newMapStore() *mapStore {
	return &mapStore{docs: map[string]*entity.SessionContext{}}
}

func (s *mapStore) Get(ctx context.Context, id string) (*entity.SessionContext, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.docs[id].Clone(), nil
}

func (s *mapStore) Upsert(ctx context.Context, sc *entity.SessionContext) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failPut != nil {
		return s.failPut
	}
	s.docs[sc.SessionId] = sc.Clone()
	return nil
}

var fixed = time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC)

func TestManagerUnknownThenSave(t *testing.T) {
	store := newMapStore()
	m := NewManager(store).WithClock(func() time.Time { return fixed })
	ctx := context.Background()

	sc, err := m.Load(ctx, "new")
	require.NoError(t, err)
	assert.Nil(t, sc)

	fresh, existed, err := m.LoadOrNew(ctx, "new")
	require.NoError(t, err)
	assert.False(t, existed)

	fresh.ConversationHistory = append(fresh.ConversationHistory,
		entity.ConversationMessage{Role: entity.RoleUser, Content: "q", Timestamp: fixed},
		entity.ConversationMessage{Role: entity.RoleAssistant, Content: "a", Timestamp: fixed},
	)
	require.NoError(t, m.Save(ctx, fresh))

	stored, err := m.Load(ctx, "new")
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Len(t, stored.ConversationHistory, 2)
	assert.Empty(t, stored.ViewedItems)
	assert.Empty(t, stored.InterestedCategories)
	assert.Empty(t, stored.Preferences)
	assert.Nil(t, stored.BudgetRange)
	assert.Equal(t, fixed, stored.UpdatedAt)
}

func TestManagerSaveWrapsStoreError(t *testing.T) {
	store := newMapStore()
	store.failPut = errors.New("disk full")

	err := NewManager(store).Save(context.Background(), entity.NewSessionContext("s", fixed))
	assert.ErrorContains(t, err, "disk full")
}

func TestKeyedMutexSerializesSameKey(t *testing.T) {
	km := NewKeyedMutex()
	counter := 0
	var wg sync.WaitGroup

	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock, err := km.Lock(context.Background(), "s-1")
			if !assert.NoError(t, err) {
				return
			}
			v := counter
			time.Sleep(time.Microsecond)
			counter = v + 1
			unlock()
		}()
	}
	wg.Wait()

	assert.Equal(t, 50, counter)
	assert.Equal(t, 0, km.size())
}

func TestKeyedMutexIndependentKeys(t *testing.T) {
	km := NewKeyedMutex()

	unlockA, err := km.Lock(context.Background(), "a")
	require.NoError(t, err)
	defer unlockA()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	unlockB, err := km.Lock(ctx, "b")
	require.NoError(t, err)
	unlockB()
}

func TestKeyedMutexTimeout(t *testing.T) {
	km := NewKeyedMutex()

	unlock, err := km.Lock(context.Background(), "s-1")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err = km.Lock(ctx, "s-1")
	assert.ErrorIs(t, err, ErrLockTimeout)

	unlock()
	unlock() // idempotent
	assert.Equal(t, 0, km.size())
}
