// Package memory provides in-memory storage implementations used by
// tests, the simulate command, and the server's in-memory mode.
package memory

import (
	"context"
	"sort"
	"sync"

	"swapchain/internal/domain"
	"swapchain/internal/storage"
)

// OrderStore is an in-memory implementation of storage.OrderStore.
type OrderStore struct {
	mu     sync.RWMutex
	data   map[domain.OrderID]*domain.Order // keyed by order id
	nextID domain.OrderID
}

// NewOrderStore creates a new in-memory order store.
func NewOrderStore() *OrderStore {
	return &OrderStore{
		data:   make(map[domain.OrderID]*domain.Order),
		nextID: 1,
	}
}

// Create inserts a new order with a freshly assigned id and returns it.
func (s *OrderStore) Create(_ context.Context, o *domain.Order) (domain.OrderID, error) {
	if o == nil || o.Maker == "" {
		return 0, storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextID
	if _, exists := s.data[id]; exists {
		return 0, storage.ErrDuplicateKey
	}
	s.nextID++

	// Store a copy to prevent external mutation
	orderCopy := *o
	orderCopy.ID = id
	s.data[id] = &orderCopy
	return id, nil
}

// GetByID retrieves an order by its id. Returns ErrNotFound if absent.
func (s *OrderStore) GetByID(_ context.Context, id domain.OrderID) (*domain.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	o, exists := s.data[id]
	if !exists {
		return nil, storage.ErrNotFound
	}

	// Return a copy
	orderCopy := *o
	return &orderCopy, nil
}

// SetStatus transitions an order from Open to a terminal status.
// All status changes go through this one-shot transition check.
func (s *OrderStore) SetStatus(_ context.Context, id domain.OrderID, status domain.OrderStatus) error {
	if !status.Terminal() {
		return storage.ErrInvalidTransition
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	o, exists := s.data[id]
	if !exists {
		return storage.ErrNotFound
	}
	if o.Status != domain.StatusOpen {
		return storage.ErrInvalidTransition
	}

	o.Status = status
	return nil
}

// GetByStatus retrieves all orders with the given status, ordered by id ASC.
func (s *OrderStore) GetByStatus(_ context.Context, status domain.OrderStatus) ([]*domain.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.Order
	for _, o := range s.data {
		if o.Status == status {
			orderCopy := *o
			result = append(result, &orderCopy)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].ID < result[j].ID
	})

	return result, nil
}

// GetByMaker retrieves all orders created by a maker, ordered by id ASC.
func (s *OrderStore) GetByMaker(_ context.Context, maker domain.Identity) ([]*domain.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.Order
	for _, o := range s.data {
		if o.Maker == maker {
			orderCopy := *o
			result = append(result, &orderCopy)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].ID < result[j].ID
	})

	return result, nil
}

// Verify interface compliance at compile time.
var _ storage.OrderStore = (*OrderStore)(nil)
