// Package cache holds a TTL read cache of orders. Writers invalidate after
// every committed mutation, so a stale entry lives at most one TTL.
package cache

import (
	"sync"
	"time"

	"delivery-tracking/internal/domain"
)

type entry struct {
	order     domain.Order
	expiresAt time.Time
}

// OrderCache caches orders by ID. Entries are stored and returned by value,
// so callers can never mutate a cached order in place.
type OrderCache struct {
	mu      sync.RWMutex
	entries map[int64]entry
	ttl     time.Duration
	now     func() time.Time
}

// NewOrderCache creates a cache whose entries expire after ttl.
func NewOrderCache(ttl time.Duration) *OrderCache {
	return &OrderCache{
		entries: make(map[int64]entry),
		ttl:     ttl,
		now:     time.Now,
	}
}

// Get returns a copy of the cached order if it is present and fresh.
func (c *OrderCache) Get(orderID int64) (*domain.Order, bool) {
	c.mu.RLock()
	e, ok := c.entries[orderID]
	c.mu.RUnlock()
	if !ok || c.now().After(e.expiresAt) {
		return nil, false
	}
	cp := e.order
	cp.Items = append([]domain.OrderItem(nil), e.order.Items...)
	return &cp, true
}

// Set stores a copy of the order.
func (c *OrderCache) Set(o *domain.Order) {
	cp := *o
	cp.Items = append([]domain.OrderItem(nil), o.Items...)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[o.ID] = entry{order: cp, expiresAt: c.now().Add(c.ttl)}
}

// Invalidate drops the order from the cache.
func (c *OrderCache) Invalidate(orderID int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, orderID)
}
