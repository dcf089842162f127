package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// ErrLockTimeout is returned when a session lock could not be taken before the context ended.
var ErrLockTimeout = errors.New("session lock not acquired")

// Locker gives mutual exclusion per session id. The returned func releases it.
type Locker interface {
	Lock(ctx context.Context, sessionId string) (func(), error)
}

// KeyedMutex is an in-process Locker. Entries are reference counted and
// dropped when the last waiter leaves, so idle sessions cost nothing.
type KeyedMutex struct {
	mu    sync.Mutex
	locks map[string]*keyedEntry
}

type keyedEntry struct {
	ch   chan struct{} // buffered(1): holding the token means holding the lock
	refs int
}

func NewKeyedMutex() *KeyedMutex {
	return &KeyedMutex{locks: make(map[string]*keyedEntry)}
}

func (k *KeyedMutex) acquireEntry(key string) *keyedEntry {
	k.mu.Lock()
	defer k.mu.Unlock()
	e, ok := k.locks[key]
	if !ok {
		e = &keyedEntry{ch: make(chan struct{}, 1)}
		k.locks[key] = e
	}
	e.refs++
	return e
}

func (k *KeyedMutex) releaseEntry(key string, e *keyedEntry) {
	k.mu.Lock()
	defer k.mu.Unlock()
	e.refs--
	if e.refs == 0 {
		delete(k.locks, key)
	}
}

func (k *KeyedMutex) Lock(ctx context.Context, sessionId string) (func(), error) {
	e := k.acquireEntry(sessionId)

	select {
	case e.ch <- struct{}{}:
	case <-ctx.Done():
		k.releaseEntry(sessionId, e)
		return nil, fmt.Errorf("%w: %s", ErrLockTimeout, sessionId)
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			<-e.ch
			k.releaseEntry(sessionId, e)
		})
	}, nil
}

// size reports tracked keys; used by tests.
func (k *KeyedMutex) size() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return len(k.locks)
}
