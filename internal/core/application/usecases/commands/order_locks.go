package commands

import (
	"sync"

	"fulfillment/internal/core/domain/model/kernel"
)

// OrderLocks serializes saves per order within the process. A recorder holds
// the order's lock across read-validate-write so concurrent saves against the
// same order cannot interleave; saves against different orders proceed in
// parallel.
//
// Entries are never evicted: one mutex per order seen by the process is cheap
// and keeps locking race-free without reference counting.
type OrderLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewOrderLocks creates an empty lock registry shared by all recorders.
func NewOrderLocks() *OrderLocks {
	return &OrderLocks{locks: make(map[string]*sync.Mutex)}
}

// Lock acquires the order's save lock, creating it on first use.
func (l *OrderLocks) Lock(orderID kernel.UUID) {
	l.get(orderID).Lock()
}

// Unlock releases the order's save lock.
func (l *OrderLocks) Unlock(orderID kernel.UUID) {
	l.get(orderID).Unlock()
}

func (l *OrderLocks) get(orderID kernel.UUID) *sync.Mutex {
	l.mu.Lock()
	defer l.mu.Unlock()

	key := orderID.String()
	m, ok := l.locks[key]
	if !ok {
		m = &sync.Mutex{}
		l.locks[key] = m
	}
	return m
}
