package storage

import (
	"context"

	"currency-swap/internal/domain"
)

// ReceiptStore keeps the swaps confirmed during a session.
type ReceiptStore interface {
	// Insert adds a new receipt. Returns ErrDuplicateKey if the ID exists.
	Insert(ctx context.Context, r *domain.Receipt) error

	// GetByID retrieves a receipt by ID. Returns ErrNotFound if not exists.
	GetByID(ctx context.Context, id string) (*domain.Receipt, error)

	// List returns all receipts ordered by completion time, oldest first.
	List(ctx context.Context) ([]*domain.Receipt, error)
}
