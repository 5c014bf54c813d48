package memory

import (
	"context"
	"sort"
	"sync"

	"currency-swap/internal/domain"
	"currency-swap/internal/storage"
)

// ReceiptStore is an in-memory implementation of storage.ReceiptStore.
// Receipts live as long as the process.
type ReceiptStore struct {
	mu   sync.RWMutex
	data map[string]*domain.Receipt // keyed by receipt ID
}

// NewReceiptStore creates a new in-memory receipt store.
func NewReceiptStore() *ReceiptStore {
	return &ReceiptStore{
		data: make(map[string]*domain.Receipt),
	}
}

// Insert adds a new receipt. Returns ErrDuplicateKey if the ID exists.
func (s *ReceiptStore) Insert(_ context.Context, r *domain.Receipt) error {
	if r == nil || r.ID == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[r.ID]; exists {
		return storage.ErrDuplicateKey
	}

	rc := *r
	s.data[r.ID] = &rc
	return nil
}

// GetByID retrieves a receipt by ID. Returns ErrNotFound if not exists.
func (s *ReceiptStore) GetByID(_ context.Context, id string) (*domain.Receipt, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, exists := s.data[id]
	if !exists {
		return nil, storage.ErrNotFound
	}

	rc := *r
	return &rc, nil
}

// List returns all receipts ordered by completion time, oldest first.
func (s *ReceiptStore) List(_ context.Context) ([]*domain.Receipt, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*domain.Receipt, 0, len(s.data))
	for _, r := range s.data {
		rc := *r
		result = append(result, &rc)
	}

	// Sort by (completed_at, id) for deterministic ordering
	sort.Slice(result, func(i, j int) bool {
		if !result[i].CompletedAt.Equal(result[j].CompletedAt) {
			return result[i].CompletedAt.Before(result[j].CompletedAt)
		}
		return result[i].ID < result[j].ID
	})

	return result, nil
}

var _ storage.ReceiptStore = (*ReceiptStore)(nil)
