package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"currency-swap/internal/domain"
	"currency-swap/internal/storage"
)

func TestReceiptStore_InsertAndGetByID(t *testing.T) {
	store := NewReceiptStore()
	ctx := context.Background()

	r := &domain.Receipt{
		ID:          "r1",
		From:        "ETH",
		To:          "USDC",
		AmountIn:    100,
		AmountOut:   300000,
		Rate:        3000,
		CompletedAt: time.Unix(1700000000, 0),
	}

	if err := store.Insert(ctx, r); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	got, err := store.GetByID(ctx, "r1")
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}

	if got.AmountOut != 300000 {
		t.Errorf("AmountOut mismatch: got %v, want 300000", got.AmountOut)
	}

	// Returned value is a copy
	got.AmountOut = 0
	again, _ := store.GetByID(ctx, "r1")
	if again.AmountOut != 300000 {
		t.Errorf("store was mutated through returned pointer")
	}
}

func TestReceiptStore_Duplicate(t *testing.T) {
	store := NewReceiptStore()
	ctx := context.Background()

	if err := store.Insert(ctx, &domain.Receipt{ID: "r1"}); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	err := store.Insert(ctx, &domain.Receipt{ID: "r1"})
	if !errors.Is(err, storage.ErrDuplicateKey) {
		t.Errorf("expected ErrDuplicateKey, got %v", err)
	}
}

func TestReceiptStore_InvalidInput(t *testing.T) {
	store := NewReceiptStore()
	ctx := context.Background()

	if err := store.Insert(ctx, nil); !errors.Is(err, storage.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput for nil, got %v", err)
	}
	if err := store.Insert(ctx, &domain.Receipt{}); !errors.Is(err, storage.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput for empty ID, got %v", err)
	}
}

func TestReceiptStore_NotFound(t *testing.T) {
	_, err := NewReceiptStore().GetByID(context.Background(), "missing")
	if !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestReceiptStore_ListOrdering(t *testing.T) {
	store := NewReceiptStore()
	ctx := context.Background()
	base := time.Unix(1700000000, 0)

	receipts := []*domain.Receipt{
		{ID: "c", CompletedAt: base.Add(2 * time.Second)},
		{ID: "b", CompletedAt: base},
		{ID: "a", CompletedAt: base},
	}
	for _, r := range receipts {
		if err := store.Insert(ctx, r); err != nil {
			t.Fatalf("Insert failed: %v", err)
		}
	}

	list, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}

	want := []string{"a", "b", "c"}
	if len(list) != len(want) {
		t.Fatalf("expected %d receipts, got %d", len(want), len(list))
	}
	for i, id := range want {
		if list[i].ID != id {
			t.Errorf("position %d: got %s, want %s", i, list[i].ID, id)
		}
	}
}
