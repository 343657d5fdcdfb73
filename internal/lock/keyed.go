// Package lock provides per-key mutual exclusion with first-in-first-out hand-off.
package lock

import (
	"context"
	"sync"
)

type entry struct {
	waiters []chan struct{}
}

// KeyedMutex serializes holders of the same key and lets different keys proceed
// independently. Entries are created on first use and dropped when the last holder
// releases. Ownership passes to waiters in arrival order.
type KeyedMutex struct {
	mu      sync.Mutex
	entries map[int64]*entry
}

// NewKeyedMutex constructs an empty KeyedMutex.
func NewKeyedMutex() *KeyedMutex {
	return &KeyedMutex{entries: make(map[int64]*entry)}
}

// Lock blocks until key is owned by the caller or ctx is done. The returned unlock
// must be called exactly once.
func (k *KeyedMutex) Lock(ctx context.Context, key int64) (func(), error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	k.mu.Lock()
	e, held := k.entries[key]
	if !held {
		k.entries[key] = &entry{}
		k.mu.Unlock()
		return k.unlocker(key), nil
	}
	ready := make(chan struct{})
	e.waiters = append(e.waiters, ready)
	k.mu.Unlock()

	select {
	case <-ready:
		return k.unlocker(key), nil
	case <-ctx.Done():
	}

	k.mu.Lock()
	for i, w := range e.waiters {
		if w == ready {
			e.waiters = append(e.waiters[:i], e.waiters[i+1:]...)
			k.mu.Unlock()
			return nil, ctx.Err()
		}
	}
	k.mu.Unlock()

	// Ownership was handed over while cancelling; pass it on.
	k.release(key)
	return nil, ctx.Err()
}

func (k *KeyedMutex) unlocker(key int64) func() {
	var once sync.Once
	return func() {
		once.Do(func() { k.release(key) })
	}
}

func (k *KeyedMutex) release(key int64) {
	k.mu.Lock()
	defer k.mu.Unlock()

	e, ok := k.entries[key]
	if !ok {
		return
	}
	if len(e.waiters) == 0 {
		delete(k.entries, key)
		return
	}
	next := e.waiters[0]
	e.waiters[0] = nil
	e.waiters = e.waiters[1:]
	close(next)
}

// size returns the number of keys currently held.
func (k *KeyedMutex) size() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return len(k.entries)
}

func (k *KeyedMutex) waiting(key int64) int {
	k.mu.Lock()
	defer k.mu.Unlock()
	if e, ok := k.entries[key]; ok {
		return len(e.waiters)
	}
	return 0
}
