// Package store keeps the console's push subscriptions. The registry is
// in-memory and session-scoped: the console owns no durable state, so a
// restart simply asks browsers to resubscribe.
package store

import "sync"

// Subscription is a browser push subscription bound to the work orders the
// console user wants completion events for.
type Subscription struct {
	Endpoint string  `json:"endpoint"`
	P256DH   string  `json:"p256dh"`
	Auth     string  `json:"auth"`
	OrderIDs []int64 `json:"subscribed_orders"`
}

// SubscriptionStore is the interface the notifier and handlers depend on.
type SubscriptionStore interface {
	Put(sub Subscription)
	Get(endpoint string) (Subscription, bool)
	Delete(endpoint string)
	ForOrder(orderID int64) []Subscription
}

type memoryStore struct {
	mu   sync.RWMutex
	subs map[string]Subscription
}

// NewSubscriptionStore creates an empty in-memory registry.
func NewSubscriptionStore() SubscriptionStore {
	return &memoryStore{subs: make(map[string]Subscription)}
}

// Put creates or replaces the subscription for an endpoint.
func (s *memoryStore) Put(sub Subscription) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subs[sub.Endpoint] = sub
}

// Get returns the subscription for an endpoint.
func (s *memoryStore) Get(endpoint string) (Subscription, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sub, ok := s.subs[endpoint]
	return sub, ok
}

// Delete removes the subscription for an endpoint.
func (s *memoryStore) Delete(endpoint string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.subs, endpoint)
}

// ForOrder returns every subscription watching the given work order.
func (s *memoryStore) ForOrder(orderID int64) []Subscription {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []Subscription
	for _, sub := range s.subs {
		for _, id := range sub.OrderIDs {
			if id == orderID {
				out = append(out, sub)
				break
			}
		}
	}
	return out
}
