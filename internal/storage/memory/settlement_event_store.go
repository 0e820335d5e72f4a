package memory

import (
	"context"
	"sort"
	"sync"

	"swapchain/internal/domain"
	"swapchain/internal/storage"
)

// SettlementEventStore is an in-memory implementation of
// storage.SettlementEventStore.
type SettlementEventStore struct {
	mu   sync.RWMutex
	data []*domain.SettlementEvent
}

// NewSettlementEventStore creates a new in-memory settlement event store.
func NewSettlementEventStore() *SettlementEventStore {
	return &SettlementEventStore{}
}

// Insert appends a settlement event.
func (s *SettlementEventStore) Insert(_ context.Context, e *domain.SettlementEvent) error {
	if e == nil || e.OrderID == 0 {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	eventCopy := *e
	s.data = append(s.data, &eventCopy)
	return nil
}

// GetByOrderID retrieves all events for an order, ordered by occurred_at ASC.
func (s *SettlementEventStore) GetByOrderID(_ context.Context, id domain.OrderID) ([]*domain.SettlementEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.SettlementEvent
	for _, e := range s.data {
		if e.OrderID == id {
			eventCopy := *e
			result = append(result, &eventCopy)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].OccurredAt < result[j].OccurredAt
	})

	return result, nil
}

// Verify interface compliance at compile time.
var _ storage.SettlementEventStore = (*SettlementEventStore)(nil)
