package product

import (
	"context"
	"errors"
	"testing"

	"minishop/internal/domain"
	"github.com/shopspring/decimal"
)

func TestMemory_CreateListGet(t *testing.T) {
	ctx := context.Background()
	repo := NewMemory()

	a, _ := repo.Create(ctx, domain.Product{Name: "A", Price: decimal.NewFromInt(1), Category: "x"})
	b, _ := repo.Create(ctx, domain.Product{Name: "B", Price: decimal.NewFromInt(2), Category: "y"})
	if a.ID != 1 || b.ID != 2 {
		t.Fatalf("unexpected ids %d %d", a.ID, b.ID)
	}

	all, err := repo.List(ctx, "")
	if err != nil || len(all) != 2 || all[0].ID != b.ID {
		t.Fatalf("expected newest first, got %+v err=%v", all, err)
	}
	ys, _ := repo.List(ctx, "y")
	if len(ys) != 1 || ys[0].Name != "B" {
		t.Fatalf("unexpected filter result %+v", ys)
	}
	none, _ := repo.List(ctx, "z")
	if none == nil || len(none) != 0 {
		t.Fatalf("expected empty non-nil list, got %#v", none)
	}

	got, err := repo.GetByID(ctx, a.ID)
	if err != nil || got.Name != "A" {
		t.Fatalf("GetByID: %+v %v", got, err)
	}
	if _, err := repo.GetByID(ctx, 77); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestMemory_UpsertKeepsIDAndAdvances(t *testing.T) {
	ctx := context.Background()
	repo := NewMemory()
	if _, err := repo.Upsert(ctx, domain.Product{ID: 10, Name: "Imported"}); err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	p, _ := repo.Upsert(ctx, domain.Product{ID: 10, Name: "Renamed"})
	if p.Name != "Renamed" {
		t.Fatalf("upsert did not overwrite: %+v", p)
	}
	next, _ := repo.Create(ctx, domain.Product{Name: "New"})
	if next.ID != 11 {
		t.Fatalf("expected id 11, got %d", next.ID)
	}
}
