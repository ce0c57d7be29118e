package cartstore

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"minishop/internal/domain"
)

func TestMemory_LoadMissing(t *testing.T) {
	repo := NewMemory()
	items, found, err := repo.Load(context.Background())
	if err != nil || found || items != nil {
		t.Fatalf("expected empty slot, got items=%v found=%v err=%v", items, found, err)
	}
}

func TestMemory_SaveLoadClear(t *testing.T) {
	ctx := context.Background()
	repo := NewMemory()
	img := "/uploads/1-a.png"
	saved := []domain.CartItem{
		{ID: 2, Name: "B", Price: decimal.RequireFromString("4.20"), Quantity: 1},
		{ID: 1, Name: "A", Price: decimal.NewFromInt(3), Image: &img, Category: "Tools", Quantity: 2},
	}
	if err := repo.Save(ctx, saved); err != nil {
		t.Fatalf("Save: %v", err)
	}
	saved[0].Quantity = 99

	items, found, err := repo.Load(ctx)
	if err != nil || !found {
		t.Fatalf("Load: found=%v err=%v", found, err)
	}
	if len(items) != 2 || items[0].ID != 2 || items[0].Quantity != 1 || items[1].ID != 1 {
		t.Fatalf("unexpected items %+v", items)
	}
	if !items[0].Price.Equal(decimal.RequireFromString("4.2")) || items[1].Image == nil || *items[1].Image != img {
		t.Fatalf("fields lost in round trip %+v", items)
	}

	if err := repo.Clear(ctx); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if _, found, _ := repo.Load(ctx); found {
		t.Fatalf("expected slot cleared")
	}
}

func TestMemory_SaveEmptyIsFound(t *testing.T) {
	ctx := context.Background()
	repo := NewMemory()
	if err := repo.Save(ctx, nil); err != nil {
		t.Fatalf("Save: %v", err)
	}
	items, found, err := repo.Load(ctx)
	if err != nil || !found || len(items) != 0 {
		t.Fatalf("unexpected load items=%v found=%v err=%v", items, found, err)
	}
}

func TestDecode_Malformed(t *testing.T) {
	_, err := decode([]byte(`{"not":"a list"`))
	if !errors.Is(err, ErrMalformedCart) {
		t.Fatalf("expected ErrMalformedCart, got %v", err)
	}
}

func TestMemory_MalformedPropagates(t *testing.T) {
	repo := &memoryRepo{data: []byte("[{")}
	if _, _, err := repo.Load(context.Background()); !errors.Is(err, ErrMalformedCart) {
		t.Fatalf("expected ErrMalformedCart, got %v", err)
	}
}
