package memory

import (
	"context"
	"fmt"
	"sync"

	errs "github.com/amirhossein-jamali/loan-ledger/internal/domain/error"
)

type rowLock struct {
	owner    uint64
	released chan struct{}
}

// lockManager hands out exclusive row locks owned by a unit of work.
// A unit of work may re-acquire a lock it already holds.
type lockManager struct {
	mu    sync.Mutex
	locks map[rowKey]*rowLock
	held  map[uint64][]rowKey
}

func newLockManager() *lockManager {
	return &lockManager{
		locks: make(map[rowKey]*rowLock),
		held:  make(map[uint64][]rowKey),
	}
}

// acquire blocks until key is free or owned by txID, or ctx is done
func (m *lockManager) acquire(ctx context.Context, key rowKey, txID uint64) error {
	for {
		m.mu.Lock()
		current, ok := m.locks[key]
		if !ok {
			m.locks[key] = &rowLock{owner: txID, released: make(chan struct{})}
			m.held[txID] = append(m.held[txID], key)
			m.mu.Unlock()
			return nil
		}
		if current.owner == txID {
			m.mu.Unlock()
			return nil
		}
		wait := current.released
		m.mu.Unlock()

		select {
		case <-wait:
		case <-ctx.Done():
			return fmt.Errorf("%w: waiting for %s row %d: %v", errs.ErrConcurrentUpdate, key.table, key.id, ctx.Err())
		}
	}
}

// releaseAll frees every lock held by txID and wakes its waiters
func (m *lockManager) releaseAll(txID uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, key := range m.held[txID] {
		if current, ok := m.locks[key]; ok && current.owner == txID {
			delete(m.locks, key)
			close(current.released)
		}
	}
	delete(m.held, txID)
}

// holds reports whether txID owns the lock on key
func (m *lockManager) holds(key rowKey, txID uint64) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	current, ok := m.locks[key]
	return ok && current.owner == txID
}
